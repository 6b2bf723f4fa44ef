package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

const (
	MinWaterML = 1
	MaxWaterML = 5000
)

// WaterResult describes a stored water log and today's progress
type WaterResult struct {
	AmountML int
	TodayML  int
	Goal     int
}

// Remaining returns how much is left to reach the goal, never negative
func (r WaterResult) Remaining() int {
	if r.TodayML >= r.Goal {
		return 0
	}
	return r.Goal - r.TodayML
}

type WaterService struct {
	store interfaces.ActivityStore
	now   func() time.Time
}

func NewWaterService(store interfaces.ActivityStore, now func() time.Time) *WaterService {
	if now == nil {
		now = time.Now
	}
	return &WaterService{store: store, now: now}
}

// Log stores amountML for the user. Amounts outside 1..5000 ml are rejected
// with apperrors.ErrMalformedInput and nothing is written.
func (s *WaterService) Log(ctx context.Context, user *database.User, amountML int) (*WaterResult, error) {
	if amountML < MinWaterML || amountML > MaxWaterML {
		return nil, apperrors.NewMalformedInputError(fmt.Sprintf("water amount %d ml out of range", amountML))
	}

	now := s.now()
	entry := &database.WaterLog{
		UserPhone: user.Phone,
		AmountML:  amountML,
		CreatedAt: now.UTC(),
	}
	if err := s.store.InsertWater(ctx, entry, user.PendingCommand != nil); err != nil {
		return nil, err
	}

	from, to := utils.DayBounds(now.In(user.Location()))
	stats, err := s.store.DailyStats(ctx, user.Phone, from, to)
	if err != nil {
		return nil, err
	}

	logger.WithPhone(ctx, user.Phone).Info("Water logged", "amount_ml", amountML, "today_ml", stats.WaterML)
	return &WaterResult{AmountML: amountML, TodayML: stats.WaterML, Goal: user.WaterGoal}, nil
}
