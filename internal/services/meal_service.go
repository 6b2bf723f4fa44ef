package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// MealStore is the persistence the meal service needs
type MealStore interface {
	interfaces.ActivityStore
	interfaces.FavoriteStore
}

// MealResult describes a stored meal and the day it belongs to
type MealResult struct {
	Meal     database.Meal
	Analysis domain.MealAnalysis
	Type     domain.MealType
	Today    *domain.DailyStats // nil when the day's totals could not be read
}

type MealService struct {
	store MealStore
	ai    interfaces.AIGateway
	now   func() time.Time
}

func NewMealService(store MealStore, ai interfaces.AIGateway, now func() time.Time) *MealService {
	if now == nil {
		now = time.Now
	}
	return &MealService{store: store, ai: ai, now: now}
}

// LogText analyses a written description and stores the meal.
// No meal is stored when the analysis fails.
func (s *MealService) LogText(ctx context.Context, user *database.User, description string) (*MealResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewMalformedInputError("empty meal description")
	}

	analysis, err := s.ai.AnalyzeMealText(ctx, description)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, user, analysis, nil)
}

// LogImage analyses a meal photo and stores the meal with its image reference
func (s *MealService) LogImage(ctx context.Context, user *database.User, ref domain.ImageRef) (*MealResult, error) {
	analysis, err := s.ai.AnalyzeMealImage(ctx, ref)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	switch {
	case ref.URL != "":
		imageURL = &ref.URL
	case ref.MediaID != "":
		imageURL = &ref.MediaID
	}
	return s.record(ctx, user, analysis, imageURL)
}

// LogFavorite stores a saved favorite as today's meal.
// apperrors.ErrNotFound is returned for an unknown name.
func (s *MealService) LogFavorite(ctx context.Context, user *database.User, name string) (*MealResult, error) {
	fav, err := s.store.GetFavorite(ctx, user.Phone, normalizeFavoriteName(name))
	if err != nil {
		return nil, err
	}

	analysis := domain.MealAnalysis{
		FoodName:    fav.Name,
		Calories:    fav.Calories,
		Description: fav.Description,
		Provider:    "favorite",
	}
	return s.record(ctx, user, analysis, nil)
}

// AddFavorite estimates the calories of description and saves it under name
func (s *MealService) AddFavorite(ctx context.Context, user *database.User, name, description string) (*database.FavoriteMeal, error) {
	name = normalizeFavoriteName(name)
	if !ValidFavoriteName(name) {
		return nil, apperrors.NewMalformedInputError("favorite name may only hold letters, digits and _")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewMalformedInputError("empty favorite description")
	}

	analysis, err := s.ai.AnalyzeMealText(ctx, description)
	if err != nil {
		return nil, err
	}

	fav := &database.FavoriteMeal{
		UserPhone:   user.Phone,
		Name:        name,
		Description: analysis.Description,
		Calories:    analysis.Calories,
	}
	if err := s.store.SaveFavorite(ctx, fav); err != nil {
		return nil, err
	}
	logger.WithPhone(ctx, user.Phone).Info("Favorite saved", "name", name, "calories", analysis.Calories)
	return fav, nil
}

// RemoveFavorite reports whether a favorite with name existed
func (s *MealService) RemoveFavorite(ctx context.Context, user *database.User, name string) (bool, error) {
	return s.store.DeleteFavorite(ctx, user.Phone, normalizeFavoriteName(name))
}

func (s *MealService) Favorites(ctx context.Context, user *database.User) ([]database.FavoriteMeal, error) {
	return s.store.ListFavorites(ctx, user.Phone)
}

func (s *MealService) record(ctx context.Context, user *database.User, analysis domain.MealAnalysis, imageURL *string) (*MealResult, error) {
	if analysis.Calories <= 0 {
		return nil, apperrors.NewAIUnavailableError(fmt.Errorf("analysis returned %.0f kcal", analysis.Calories), "record_meal")
	}

	now := s.now().In(user.Location())
	from, to := utils.DayBounds(now)

	taken, err := s.store.MealTypesBetween(ctx, user.Phone, from, to)
	if err != nil {
		return nil, err
	}
	mealType := DetectMealType(user, now, taken)

	meal := database.Meal{
		UserPhone:   user.Phone,
		MealType:    string(mealType),
		Calories:    analysis.Calories,
		Description: analysis.Description,
		ImageURL:    imageURL,
		CreatedAt:   now.UTC(),
	}
	if err := s.store.InsertMeal(ctx, &meal, user.PendingCommand != nil); err != nil {
		return nil, err
	}

	log := logger.WithPhone(ctx, user.Phone)
	res := &MealResult{Meal: meal, Analysis: analysis, Type: mealType}
	if today, err := s.store.DailyStats(ctx, user.Phone, from, to); err != nil {
		log.Warn("Meal stored but daily totals unavailable", "error", err)
	} else {
		res.Today = &today
	}

	log.Info("Meal logged",
		"meal_type", mealType,
		"calories", analysis.Calories,
		"provider", analysis.Provider)

	return res, nil
}

func normalizeFavoriteName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidFavoriteName accepts letters, digits and underscores
func ValidFavoriteName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
