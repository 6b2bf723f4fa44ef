package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

const (
	historyLimit = 5
	weekDays     = 7
)

// ReportService builds the read-only summaries. None of its methods write.
type ReportService struct {
	store interfaces.ActivityStore
	ai    interfaces.AIGateway
	now   func() time.Time
}

func NewReportService(store interfaces.ActivityStore, ai interfaces.AIGateway, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{store: store, ai: ai, now: now}
}

// Daily returns today's totals in the user's timezone
func (s *ReportService) Daily(ctx context.Context, user *database.User) (domain.DailyStats, error) {
	from, to := utils.DayBounds(s.now().In(user.Location()))
	return s.store.DailyStats(ctx, user.Phone, from, to)
}

// History returns the last five meals, newest first
func (s *ReportService) History(ctx context.Context, user *database.User) ([]database.Meal, error) {
	return s.store.RecentMeals(ctx, user.Phone, historyLimit)
}

// Weekly returns one total per local day for the last seven days, today last
func (s *ReportService) Weekly(ctx context.Context, user *database.User) ([]domain.DayTotal, error) {
	loc := user.Location()
	todayStart, tomorrow := utils.DayBounds(s.now().In(loc))
	from := todayStart.AddDate(0, 0, -(weekDays - 1))
	return s.store.DailyTotals(ctx, user.Phone, from, tomorrow, loc)
}

// Advice asks the AI for a short note on today's numbers
func (s *ReportService) Advice(ctx context.Context, user *database.User) (string, error) {
	stats, err := s.Daily(ctx, user)
	if err != nil {
		return "", err
	}
	return s.ai.NutritionAdvice(ctx, stats, user.WaterGoal)
}
