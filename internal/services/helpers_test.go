package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/repository"
)

const testPhone = "+905550000001"

// fakeAI answers from fixed fields and records what it was asked
type fakeAI struct {
	analysis  domain.MealAnalysis
	clock     domain.ClockTime
	advice    string
	err       error
	mealCalls int
	timeCalls int
}

func (f *fakeAI) DetectIntent(context.Context, string) (domain.Intent, error) {
	return domain.UnknownIntent(), f.err
}

func (f *fakeAI) AnalyzeMealText(context.Context, string) (domain.MealAnalysis, error) {
	f.mealCalls++
	if f.err != nil {
		return domain.MealAnalysis{}, f.err
	}
	return f.analysis, nil
}

func (f *fakeAI) AnalyzeMealImage(context.Context, domain.ImageRef) (domain.MealAnalysis, error) {
	f.mealCalls++
	if f.err != nil {
		return domain.MealAnalysis{}, f.err
	}
	return f.analysis, nil
}

func (f *fakeAI) SuggestCommand(context.Context, string, []string) (domain.CommandSuggestion, error) {
	return domain.CommandSuggestion{}, f.err
}

func (f *fakeAI) ParseNaturalTime(context.Context, string) (domain.ClockTime, error) {
	f.timeCalls++
	if f.err != nil {
		return domain.ClockTime{}, f.err
	}
	return f.clock, nil
}

func (f *fakeAI) NutritionAdvice(context.Context, domain.DailyStats, int) (string, error) {
	return f.advice, f.err
}

var errAIDown = apperrors.NewAIUnavailableError(errors.New("provider down"), "test")

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(config.DBConfig{
		Driver:     config.DriverSQLite,
		SqlitePath: filepath.Join(t.TempDir(), "services.db"),
	})
	require.NoError(t, err)
	return repository.NewStore(db)
}

func newUser(t *testing.T, store *repository.Store) *database.User {
	t.Helper()
	user, err := store.GetOrCreateUser(context.Background(), testPhone, "")
	require.NoError(t, err)
	return user
}

// fixedClock returns a now func frozen at the given Istanbul wall time
func fixedClock(hour, minute int) func() time.Time {
	loc, _ := time.LoadLocation(database.DefaultTimezone)
	at := time.Date(2026, 3, 10, hour, minute, 0, 0, loc)
	return func() time.Time { return at }
}

func reload(t *testing.T, store *repository.Store) *database.User {
	t.Helper()
	user, err := store.GetUser(context.Background(), testPhone)
	require.NoError(t, err)
	return user
}
