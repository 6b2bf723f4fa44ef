package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// UserStore covers user rows and the pending command
type UserStore interface {
	GetOrCreateUser(ctx context.Context, phone, name string) (*database.User, error)
	SetPendingCommand(ctx context.Context, phone string, cmd *string) error
	UpdateSettings(ctx context.Context, phone string, upd domain.SettingsUpdate) error
}

// ActivityStore covers meals and water logs
type ActivityStore interface {
	InsertMeal(ctx context.Context, meal *database.Meal, clearPending bool) error
	InsertWater(ctx context.Context, log *database.WaterLog, clearPending bool) error
	DailyStats(ctx context.Context, phone string, from, to time.Time) (domain.DailyStats, error)
	MealTypesBetween(ctx context.Context, phone string, from, to time.Time) ([]domain.MealType, error)
	RecentMeals(ctx context.Context, phone string, limit int) ([]database.Meal, error)
	DailyTotals(ctx context.Context, phone string, from, to time.Time, loc *time.Location) ([]domain.DayTotal, error)
}

// FavoriteStore covers saved favorite meals
type FavoriteStore interface {
	ListFavorites(ctx context.Context, phone string) ([]database.FavoriteMeal, error)
	GetFavorite(ctx context.Context, phone, name string) (*database.FavoriteMeal, error)
	SaveFavorite(ctx context.Context, fav *database.FavoriteMeal) error
	DeleteFavorite(ctx context.Context, phone, name string) (bool, error)
}

// ConversationLog records the audit trail of every message
type ConversationLog interface {
	LogConversation(ctx context.Context, phone, direction, messageType, content string, metadata map[string]any, at time.Time) error
}

// Store is the full persistence gateway
type Store interface {
	UserStore
	ActivityStore
	FavoriteStore
	ConversationLog
}

// AIGateway defines the contract for AI operations. Every method fails with
// an error matching apperrors.ErrAIUnavailable.
type AIGateway interface {
	DetectIntent(ctx context.Context, text string) (domain.Intent, error)
	AnalyzeMealText(ctx context.Context, description string) (domain.MealAnalysis, error)
	AnalyzeMealImage(ctx context.Context, ref domain.ImageRef) (domain.MealAnalysis, error)
	SuggestCommand(ctx context.Context, token string, allowed []string) (domain.CommandSuggestion, error)
	ParseNaturalTime(ctx context.Context, text string) (domain.ClockTime, error)
	NutritionAdvice(ctx context.Context, stats domain.DailyStats, waterGoal int) (string, error)
}

// Messenger sends outbound chat messages
type Messenger interface {
	Send(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to string, reply domain.Reply) error
}

// StateStore keeps short-lived counters and markers outside the database
type StateStore interface {
	// MarkProcessed returns false when id was already marked within ttl
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// IncrDaily increments the counter of key for day and returns the new value
	IncrDaily(ctx context.Context, key, day string) (int64, error)
	// DailyCount reads the counter without changing it
	DailyCount(ctx context.Context, key, day string) (int64, error)
}
