package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

func TestParseWaterAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 200, true},
		{" 2 ", 250, true},
		{"3", 500, true},
		{"4", 0, false},
		{"250 ml", 250, true},
		{"250ml", 250, true},
		{"330 ML içtim", 330, true},
		{"2 bardak su içtim", 500, true},
		{"3 bardak ictim", 750, true},
		{"2 bardak", 0, false},
		{"9000 ml", 9000, true},
		{"0 ml", 0, true},
		{"pizza yedim", 0, false},
		{"su", 0, false},
		{"bugün 250 ml su içtim", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseWaterAmount(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWaterServiceLog(t *testing.T) {
	store := newStore(t)
	user := newUser(t, store)
	svc := NewWaterService(store, fixedClock(10, 0))
	ctx := context.Background()

	res, err := svc.Log(ctx, user, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, res.TodayML)

	res, err = svc.Log(ctx, user, 500)
	require.NoError(t, err)
	assert.Equal(t, 750, res.TodayML)
	assert.Equal(t, 2000, res.Goal)
	assert.Equal(t, 1250, res.Remaining())
}

func TestWaterServiceRejectsOutOfRange(t *testing.T) {
	store := newStore(t)
	user := newUser(t, store)
	svc := NewWaterService(store, fixedClock(10, 0))

	for _, ml := range []int{0, -5, 5001} {
		_, err := svc.Log(context.Background(), user, ml)
		assert.ErrorIs(t, err, apperrors.ErrMalformedInput, ml)
	}

	stats, err := NewReportService(store, nil, fixedClock(10, 0)).Daily(context.Background(), user)
	require.NoError(t, err)
	assert.Zero(t, stats.WaterCount)
}

func TestWaterServiceClearsPending(t *testing.T) {
	store := newStore(t)
	newUser(t, store)
	ctx := context.Background()
	cmd := "rapor"
	require.NoError(t, store.SetPendingCommand(ctx, testPhone, &cmd))
	user := reload(t, store)

	_, err := NewWaterService(store, fixedClock(10, 0)).Log(ctx, user, 200)
	require.NoError(t, err)
	assert.Nil(t, reload(t, store).PendingCommand)
}

func TestWaterResultRemainingNeverNegative(t *testing.T) {
	assert.Zero(t, WaterResult{TodayML: 2500, Goal: 2000}.Remaining())
}
