package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

func TestUserServiceSettings(t *testing.T) {
	store := newStore(t)
	svc := NewUserService(store, &fakeAI{})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, testPhone, "Mehmet")
	require.NoError(t, err)

	require.NoError(t, svc.SetMealTime(ctx, user, domain.MealLunch, domain.ClockTime{Hour: 12, Minute: 30}))
	require.NoError(t, svc.SetTimezone(ctx, user, "Europe/Berlin"))
	require.NoError(t, svc.SetWaterInterval(ctx, user, 90))
	require.NoError(t, svc.SetWaterGoal(ctx, user, 3000))
	require.NoError(t, svc.SetCalorieGoal(ctx, user, 1800))
	require.NoError(t, svc.SetSilentHours(ctx, user, domain.ClockTime{Hour: 22}, domain.ClockTime{Hour: 6, Minute: 30}))

	got := reload(t, store)
	require.NotNil(t, got.LunchTime)
	assert.Equal(t, "12:30", *got.LunchTime)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.Equal(t, 90, got.WaterReminderInterval)
	assert.Equal(t, 3000, got.WaterGoal)
	assert.Equal(t, 1800, got.CalorieGoal)
	assert.Equal(t, "22:00", got.SilentStart)
	assert.Equal(t, "06:30", got.SilentEnd)
}

func TestUserServiceRejectsOutOfRange(t *testing.T) {
	store := newStore(t)
	user := newUser(t, store)
	svc := NewUserService(store, &fakeAI{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetTimezone(ctx, user, "Mars/Olympus"), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetTimezone(ctx, user, "Local"), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetWaterInterval(ctx, user, 0), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetWaterInterval(ctx, user, 481), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetWaterGoal(ctx, user, 499), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetCalorieGoal(ctx, user, 5001), apperrors.ErrMalformedInput)
	assert.ErrorIs(t, svc.SetMealTime(ctx, user, domain.MealSnack, domain.ClockTime{Hour: 16}), apperrors.ErrMalformedInput)

	got := reload(t, store)
	assert.Equal(t, 120, got.WaterReminderInterval)
	assert.Equal(t, 2000, got.WaterGoal)
	assert.Equal(t, 2000, got.CalorieGoal)
}

func TestUserServiceSettingsClearPending(t *testing.T) {
	store := newStore(t)
	newUser(t, store)
	svc := NewUserService(store, &fakeAI{})
	ctx := context.Background()

	user := reload(t, store)
	require.NoError(t, svc.SetPending(ctx, user, "rapor"))
	user = reload(t, store)
	require.NotNil(t, user.PendingCommand)

	require.NoError(t, svc.SetWaterGoal(ctx, user, 2500))
	assert.Nil(t, reload(t, store).PendingCommand)
}

func TestUserServiceOnboardingFlow(t *testing.T) {
	store := newStore(t)
	user := newUser(t, store)
	ai := &fakeAI{clock: domain.ClockTime{Hour: 12}}
	svc := NewUserService(store, ai)
	ctx := context.Background()

	assert.False(t, InOnboarding(user))
	require.NoError(t, svc.StartOnboarding(ctx, user))

	user = reload(t, store)
	require.True(t, InOnboarding(user))

	res, err := svc.AnswerOnboarding(ctx, user, "sabah 8'de")
	require.NoError(t, err)
	assert.Equal(t, StepLunchTime, res.Next)
	assert.Equal(t, "08:00", res.Breakfast)

	user = reload(t, store)
	res, err = svc.AnswerOnboarding(ctx, user, "öğlen")
	require.NoError(t, err)
	assert.Equal(t, 1, ai.timeCalls)
	assert.Equal(t, "12:00", res.Clock.String())
	assert.Equal(t, StepDinnerTime, res.Next)

	user = reload(t, store)
	res, err = svc.AnswerOnboarding(ctx, user, "akşam 7")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "19:00", res.Clock.String())
	assert.Equal(t, "08:00", res.Breakfast)
	assert.Equal(t, "12:00", res.Lunch)

	user = reload(t, store)
	assert.False(t, InOnboarding(user))
	assert.True(t, user.OnboardingCompleted)
	assert.Nil(t, user.OnboardingStep)
	require.NotNil(t, user.DinnerTime)
	assert.Equal(t, "19:00", *user.DinnerTime)
}

func TestUserServiceOnboardingInvalidAnswer(t *testing.T) {
	store := newStore(t)
	user := newUser(t, store)
	svc := NewUserService(store, &fakeAI{err: errAIDown})
	ctx := context.Background()
	require.NoError(t, svc.StartOnboarding(ctx, user))
	user = reload(t, store)

	_, err := svc.AnswerOnboarding(ctx, user, "25:00")
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)

	_, err = svc.AnswerOnboarding(ctx, user, "bilmiyorum")
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)

	user = reload(t, store)
	require.NotNil(t, user.OnboardingStep)
	assert.Equal(t, StepBreakfastTime, *user.OnboardingStep)
	assert.Nil(t, user.BreakfastTime)
}
