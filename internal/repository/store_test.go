package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

const phone = "+905551112233"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(config.DBConfig{
		Driver:     config.DriverSQLite,
		SqlitePath: filepath.Join(t.TempDir(), "store.db"),
	})
	require.NoError(t, err)
	return NewStore(db)
}

func strPtr(s string) *string { return &s }

func TestGetOrCreateUserIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)
	assert.Nil(t, u1.Name)
	assert.Equal(t, 120, u1.WaterReminderInterval)

	u2, err := s.GetOrCreateUser(ctx, phone, "Ayşe")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", u2.DisplayName())

	u3, err := s.GetOrCreateUser(ctx, phone, "Other")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", u3.DisplayName())

	var count int64
	require.NoError(t, s.DB().Model(&database.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPendingCommandRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)

	require.NoError(t, s.SetPendingCommand(ctx, phone, strPtr("rapor")))
	u, err := s.GetUser(ctx, phone)
	require.NoError(t, err)
	require.NotNil(t, u.PendingCommand)
	assert.Equal(t, "rapor", *u.PendingCommand)

	require.NoError(t, s.SetPendingCommand(ctx, phone, nil))
	u, err = s.GetUser(ctx, phone)
	require.NoError(t, err)
	assert.Nil(t, u.PendingCommand)
}

func TestSetPendingCommandUnknownUser(t *testing.T) {
	s := newTestStore(t)
	err := s.SetPendingCommand(context.Background(), "+1000", strPtr("rapor"))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestInsertMealClearsPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)
	require.NoError(t, s.SetPendingCommand(ctx, phone, strPtr("rapor")))

	meal := &database.Meal{
		UserPhone:   phone,
		MealType:    string(domain.MealLunch),
		Calories:    650,
		Description: "Mercimek çorbası",
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.InsertMeal(ctx, meal, true))
	assert.NotZero(t, meal.ID)

	u, err := s.GetUser(ctx, phone)
	require.NoError(t, err)
	assert.Nil(t, u.PendingCommand)
}

func TestInsertWaterKeepsPendingWhenAsked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)
	require.NoError(t, s.SetPendingCommand(ctx, phone, strPtr("rapor")))

	require.NoError(t, s.InsertWater(ctx, &database.WaterLog{UserPhone: phone, AmountML: 250}, false))

	u, err := s.GetUser(ctx, phone)
	require.NoError(t, err)
	require.NotNil(t, u.PendingCommand)
}

func TestInsertForUnknownUserFails(t *testing.T) {
	s := newTestStore(t)
	err := s.InsertWater(context.Background(), &database.WaterLog{UserPhone: "+1", AmountML: 250}, false)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDailyStatsAndMealTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertMeal(ctx, &database.Meal{UserPhone: phone, MealType: "breakfast", Calories: 400, Description: "a", CreatedAt: day.Add(7 * time.Hour)}, false))
	require.NoError(t, s.InsertMeal(ctx, &database.Meal{UserPhone: phone, MealType: "lunch", Calories: 600.5, Description: "b", CreatedAt: day.Add(11 * time.Hour)}, false))
	require.NoError(t, s.InsertMeal(ctx, &database.Meal{UserPhone: phone, MealType: "dinner", Calories: 900, Description: "c", CreatedAt: day.Add(30 * time.Hour)}, false))
	require.NoError(t, s.InsertWater(ctx, &database.WaterLog{UserPhone: phone, AmountML: 250, CreatedAt: day.Add(8 * time.Hour)}, false))
	require.NoError(t, s.InsertWater(ctx, &database.WaterLog{UserPhone: phone, AmountML: 500, CreatedAt: day.Add(9 * time.Hour)}, false))

	stats, err := s.DailyStats(ctx, phone, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 1000.5, stats.Calories, 0.001)
	assert.Equal(t, 2, stats.MealCount)
	assert.Equal(t, 750, stats.WaterML)
	assert.Equal(t, 2, stats.WaterCount)

	types, err := s.MealTypesBetween(ctx, phone, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.MealType{domain.MealBreakfast, domain.MealLunch}, types)

	empty, err := s.DailyStats(ctx, phone, day.Add(72*time.Hour), day.Add(96*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.Calories)
	assert.Zero(t, empty.WaterML)
}

func TestRecentMealsAndDailyTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, s.InsertMeal(ctx, &database.Meal{
			UserPhone: phone, MealType: "lunch", Calories: float64(100 * (i + 1)),
			Description: "meal", CreatedAt: base.AddDate(0, 0, i),
		}, false))
	}
	require.NoError(t, s.InsertWater(ctx, &database.WaterLog{UserPhone: phone, AmountML: 300, CreatedAt: base}, false))

	recent, err := s.RecentMeals(ctx, phone, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, float64(700), recent[0].Calories)

	days, err := s.DailyTotals(ctx, phone, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, float64(100), days[0].Calories)
	assert.Equal(t, 300, days[0].WaterML)
	assert.Equal(t, float64(700), days[6].Calories)
}

func TestUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)
	require.NoError(t, s.SetPendingCommand(ctx, phone, strPtr("rapor")))

	goal := 2500
	require.NoError(t, s.UpdateSettings(ctx, phone, domain.SettingsUpdate{
		WaterGoal:      &goal,
		BreakfastTime:  strPtr("08:30"),
		OnboardingStep: strPtr("lunch_time"),
		ClearPending:   true,
	}))

	u, err := s.GetUser(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, 2500, u.WaterGoal)
	require.NotNil(t, u.BreakfastTime)
	assert.Equal(t, "08:30", *u.BreakfastTime)
	assert.Nil(t, u.PendingCommand)

	done := true
	require.NoError(t, s.UpdateSettings(ctx, phone, domain.SettingsUpdate{ClearOnboardingStep: true, OnboardingCompleted: &done}))
	u, err = s.GetUser(ctx, phone)
	require.NoError(t, err)
	assert.Nil(t, u.OnboardingStep)
	assert.True(t, u.OnboardingCompleted)

	assert.NoError(t, s.UpdateSettings(ctx, phone, domain.SettingsUpdate{}))
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)

	require.NoError(t, s.SaveFavorite(ctx, &database.FavoriteMeal{UserPhone: phone, Name: "menemen", Description: "2 yumurtalı menemen", Calories: 350}))
	require.NoError(t, s.SaveFavorite(ctx, &database.FavoriteMeal{UserPhone: phone, Name: "menemen", Description: "3 yumurtalı menemen", Calories: 450}))
	require.NoError(t, s.SaveFavorite(ctx, &database.FavoriteMeal{UserPhone: phone, Name: "ayran", Description: "1 bardak ayran", Calories: 80}))

	favs, err := s.ListFavorites(ctx, phone)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "ayran", favs[0].Name)

	fav, err := s.GetFavorite(ctx, phone, "menemen")
	require.NoError(t, err)
	assert.Equal(t, float64(450), fav.Calories)

	_, err = s.GetFavorite(ctx, phone, "pilav")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	deleted, err := s.DeleteFavorite(ctx, phone, "ayran")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteFavorite(ctx, phone, "ayran")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLogConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateUser(ctx, phone, "")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, s.LogConversation(ctx, phone, database.DirectionIncoming, "text", "rapor", map[string]any{"message_id": "m1"}, now))
	require.NoError(t, s.LogConversation(ctx, phone, database.DirectionOutgoing, "text", "📊 ...", nil, now.Add(time.Second)))

	rows, err := s.RecentConversations(ctx, phone, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, database.DirectionOutgoing, rows[0].Direction)
	assert.JSONEq(t, `{"message_id":"m1"}`, string(rows[1].Metadata))
}
