package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// Onboarding steps, in order
const (
	StepBreakfastTime = "breakfast_time"
	StepLunchTime     = "lunch_time"
	StepDinnerTime    = "dinner_time"
)

// Accepted ranges of the settings commands
const (
	WaterIntervalMin = 1
	WaterIntervalMax = 480
	WaterGoalMin     = 500
	WaterGoalMax     = 10000
	CalorieGoalMin   = 500
	CalorieGoalMax   = 5000
)

// OnboardingResult describes one answered onboarding question
type OnboardingResult struct {
	Answered  string
	Clock     domain.ClockTime
	Next      string // empty once onboarding is complete
	Completed bool
	Breakfast string
	Lunch     string
}

type UserService struct {
	store interfaces.UserStore
	ai    interfaces.AIGateway
}

func NewUserService(store interfaces.UserStore, ai interfaces.AIGateway) *UserService {
	return &UserService{store: store, ai: ai}
}

// RegisterUser gets the user behind a chat address, creating it with defaults
func (s *UserService) RegisterUser(ctx context.Context, phone, name string) (*database.User, error) {
	user, err := s.store.GetOrCreateUser(ctx, phone, name)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// SetPending stores the command waiting for a yes/no answer, replacing any older one
func (s *UserService) SetPending(ctx context.Context, user *database.User, command string) error {
	return s.store.SetPendingCommand(ctx, user.Phone, &command)
}

// ClearPending drops the pending command if there is one
func (s *UserService) ClearPending(ctx context.Context, user *database.User) error {
	if user.PendingCommand == nil {
		return nil
	}
	return s.store.SetPendingCommand(ctx, user.Phone, nil)
}

func (s *UserService) SetMealTime(ctx context.Context, user *database.User, meal domain.MealType, clock domain.ClockTime) error {
	value := clock.String()
	upd := domain.SettingsUpdate{ClearPending: true}
	switch meal {
	case domain.MealBreakfast:
		upd.BreakfastTime = &value
	case domain.MealLunch:
		upd.LunchTime = &value
	case domain.MealDinner:
		upd.DinnerTime = &value
	default:
		return apperrors.NewMalformedInputError(fmt.Sprintf("meal %q has no configurable time", meal))
	}
	return s.update(ctx, user, upd)
}

// SetTimezone accepts IANA zone names only
func (s *UserService) SetTimezone(ctx context.Context, user *database.User, name string) error {
	if name == "" || name == "Local" {
		return apperrors.NewMalformedInputError("empty timezone")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return apperrors.NewMalformedInputError(fmt.Sprintf("unknown timezone %q", name))
	}
	return s.update(ctx, user, domain.SettingsUpdate{Timezone: &name, ClearPending: true})
}

func (s *UserService) SetWaterInterval(ctx context.Context, user *database.User, minutes int) error {
	if minutes < WaterIntervalMin || minutes > WaterIntervalMax {
		return apperrors.NewMalformedInputError(fmt.Sprintf("water interval %d out of range", minutes))
	}
	return s.update(ctx, user, domain.SettingsUpdate{WaterReminderInterval: &minutes, ClearPending: true})
}

func (s *UserService) SetWaterGoal(ctx context.Context, user *database.User, ml int) error {
	if ml < WaterGoalMin || ml > WaterGoalMax {
		return apperrors.NewMalformedInputError(fmt.Sprintf("water goal %d out of range", ml))
	}
	return s.update(ctx, user, domain.SettingsUpdate{WaterGoal: &ml, ClearPending: true})
}

func (s *UserService) SetCalorieGoal(ctx context.Context, user *database.User, kcal int) error {
	if kcal < CalorieGoalMin || kcal > CalorieGoalMax {
		return apperrors.NewMalformedInputError(fmt.Sprintf("calorie goal %d out of range", kcal))
	}
	return s.update(ctx, user, domain.SettingsUpdate{CalorieGoal: &kcal, ClearPending: true})
}

func (s *UserService) SetSilentHours(ctx context.Context, user *database.User, start, end domain.ClockTime) error {
	from, to := start.String(), end.String()
	return s.update(ctx, user, domain.SettingsUpdate{SilentStart: &from, SilentEnd: &to, ClearPending: true})
}

// StartOnboarding asks for the breakfast time first
func (s *UserService) StartOnboarding(ctx context.Context, user *database.User) error {
	step := StepBreakfastTime
	completed := false
	err := s.update(ctx, user, domain.SettingsUpdate{
		OnboardingStep:      &step,
		OnboardingCompleted: &completed,
		ClearPending:        true,
	})
	if err != nil {
		return err
	}
	logger.WithPhone(ctx, user.Phone).Info("Onboarding started")
	return nil
}

// InOnboarding reports whether the user still owes an onboarding answer
func InOnboarding(user *database.User) bool {
	if user.OnboardingStep == nil {
		return false
	}
	switch *user.OnboardingStep {
	case StepBreakfastTime, StepLunchTime, StepDinnerTime:
		return true
	}
	return false
}

// ParseTime reads a time of day from free text, asking the AI only when the
// text holds no number. Invalid values fail with apperrors.ErrMalformedInput.
func (s *UserService) ParseTime(ctx context.Context, text string) (domain.ClockTime, error) {
	clock, found, err := utils.ParseNaturalTime(text)
	if found {
		if err != nil {
			return domain.ClockTime{}, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "MALFORMED_INPUT", "Invalid time")
		}
		return clock, nil
	}

	clock, err = s.ai.ParseNaturalTime(ctx, text)
	if err != nil {
		logger.WithContext(ctx).Warn("AI time parse failed", "error", err)
		return domain.ClockTime{}, apperrors.NewMalformedInputError("no time found")
	}
	return clock, nil
}

// AnswerOnboarding stores the time answered for the current step and moves on.
// An unparseable answer returns apperrors.ErrMalformedInput and changes nothing.
func (s *UserService) AnswerOnboarding(ctx context.Context, user *database.User, text string) (*OnboardingResult, error) {
	if !InOnboarding(user) {
		return nil, apperrors.NewMalformedInputError("user is not onboarding")
	}

	clock, err := s.ParseTime(ctx, text)
	if err != nil {
		return nil, err
	}

	value := clock.String()
	res := &OnboardingResult{Answered: *user.OnboardingStep, Clock: clock}
	upd := domain.SettingsUpdate{ClearPending: true}

	switch *user.OnboardingStep {
	case StepBreakfastTime:
		upd.BreakfastTime = &value
		res.Next = StepLunchTime
	case StepLunchTime:
		upd.LunchTime = &value
		res.Next = StepDinnerTime
	case StepDinnerTime:
		upd.DinnerTime = &value
		res.Completed = true
	}

	if res.Completed {
		done := true
		upd.ClearOnboardingStep = true
		upd.OnboardingCompleted = &done
	} else {
		upd.OnboardingStep = &res.Next
	}

	if err := s.update(ctx, user, upd); err != nil {
		return nil, err
	}

	if user.BreakfastTime != nil {
		res.Breakfast = *user.BreakfastTime
	}
	if user.LunchTime != nil {
		res.Lunch = *user.LunchTime
	}
	if res.Answered == StepBreakfastTime {
		res.Breakfast = value
	}

	logger.WithPhone(ctx, user.Phone).Info("Onboarding answered", "step", res.Answered, "time", value, "completed", res.Completed)
	return res, nil
}

func (s *UserService) update(ctx context.Context, user *database.User, upd domain.SettingsUpdate) error {
	if user.PendingCommand == nil {
		upd.ClearPending = false
	}
	if err := s.store.UpdateSettings(ctx, user.Phone, upd); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
