package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// InsertMeal stores an analysed meal. With clearPending the user's pending
// command is dropped in the same transaction.
func (s *Store) InsertMeal(ctx context.Context, meal *database.Meal, clearPendingCmd bool) error {
	err := s.withUserTx(ctx, meal.UserPhone, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(meal).Error; err != nil {
			return err
		}
		if clearPendingCmd {
			return clearPending(tx, meal.UserPhone)
		}
		return nil
	})
	return wrap("insert meal", err)
}

// InsertWater stores a water log, optionally clearing the pending command
func (s *Store) InsertWater(ctx context.Context, log *database.WaterLog, clearPendingCmd bool) error {
	err := s.withUserTx(ctx, log.UserPhone, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(log).Error; err != nil {
			return err
		}
		if clearPendingCmd {
			return clearPending(tx, log.UserPhone)
		}
		return nil
	})
	return wrap("insert water", err)
}

// DailyStats sums the meals and water logged in [from, to)
func (s *Store) DailyStats(ctx context.Context, phone string, from, to time.Time) (domain.DailyStats, error) {
	db := s.db.WithContext(ctx)
	var stats domain.DailyStats

	var meals struct {
		Calories float64
		Count    int
	}
	err := db.Model(&database.Meal{}).
		Select("COALESCE(SUM(calories), 0) AS calories, COUNT(*) AS count").
		Where("user_phone = ? AND created_at >= ? AND created_at < ?", phone, from.UTC(), to.UTC()).
		Scan(&meals).Error
	if err != nil {
		return stats, wrap("sum meals", err)
	}

	var water struct {
		Total int
		Count int
	}
	err = db.Model(&database.WaterLog{}).
		Select("COALESCE(SUM(amount_ml), 0) AS total, COUNT(*) AS count").
		Where("user_phone = ? AND created_at >= ? AND created_at < ?", phone, from.UTC(), to.UTC()).
		Scan(&water).Error
	if err != nil {
		return stats, wrap("sum water", err)
	}

	stats.Calories = meals.Calories
	stats.MealCount = meals.Count
	stats.WaterML = water.Total
	stats.WaterCount = water.Count
	return stats, nil
}

// MealTypesBetween returns the distinct meal types logged in [from, to)
func (s *Store) MealTypesBetween(ctx context.Context, phone string, from, to time.Time) ([]domain.MealType, error) {
	var raw []string
	err := s.db.WithContext(ctx).Model(&database.Meal{}).
		Distinct("meal_type").
		Where("user_phone = ? AND created_at >= ? AND created_at < ?", phone, from.UTC(), to.UTC()).
		Pluck("meal_type", &raw).Error
	if err != nil {
		return nil, wrap("list meal types", err)
	}

	types := make([]domain.MealType, 0, len(raw))
	for _, t := range raw {
		types = append(types, domain.MealType(t))
	}
	return types, nil
}

// RecentMeals returns the newest meals first
func (s *Store) RecentMeals(ctx context.Context, phone string, limit int) ([]database.Meal, error) {
	var meals []database.Meal
	err := s.db.WithContext(ctx).
		Where("user_phone = ?", phone).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&meals).Error
	if err != nil {
		return nil, wrap("list recent meals", err)
	}
	return meals, nil
}

// DailyTotals buckets meals and water of [from, to) into local days of loc
func (s *Store) DailyTotals(ctx context.Context, phone string, from, to time.Time, loc *time.Location) ([]domain.DayTotal, error) {
	db := s.db.WithContext(ctx)

	var meals []database.Meal
	if err := db.Select("calories", "created_at").
		Where("user_phone = ? AND created_at >= ? AND created_at < ?", phone, from.UTC(), to.UTC()).
		Find(&meals).Error; err != nil {
		return nil, wrap("list meals", err)
	}
	var logs []database.WaterLog
	if err := db.Select("amount_ml", "created_at").
		Where("user_phone = ? AND created_at >= ? AND created_at < ?", phone, from.UTC(), to.UTC()).
		Find(&logs).Error; err != nil {
		return nil, wrap("list water logs", err)
	}

	var days []domain.DayTotal
	index := make(map[string]int)
	start := from.In(loc)
	for d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc); d.Before(to); d = d.AddDate(0, 0, 1) {
		index[d.Format("2006-01-02")] = len(days)
		days = append(days, domain.DayTotal{Date: d})
	}

	for _, m := range meals {
		if i, ok := index[m.CreatedAt.In(loc).Format("2006-01-02")]; ok {
			days[i].Calories += m.Calories
		}
	}
	for _, w := range logs {
		if i, ok := index[w.CreatedAt.In(loc).Format("2006-01-02")]; ok {
			days[i].WaterML += w.AmountML
		}
	}
	return days, nil
}
