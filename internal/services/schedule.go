package services

import (
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

const mealTimeTolerance = 2 * time.Hour

var (
	defaultBreakfast = domain.ClockTime{Hour: 9}
	defaultLunch     = domain.ClockTime{Hour: 13}
	defaultDinner    = domain.ClockTime{Hour: 19}
)

// MealClock returns the user's configured time for a main meal, or its default
func MealClock(user *database.User, meal domain.MealType) domain.ClockTime {
	var configured *string
	fallback := defaultBreakfast
	switch meal {
	case domain.MealLunch:
		configured, fallback = user.LunchTime, defaultLunch
	case domain.MealDinner:
		configured, fallback = user.DinnerTime, defaultDinner
	default:
		configured = user.BreakfastTime
	}
	if configured == nil {
		return fallback
	}
	clock, err := utils.ParseClock(*configured)
	if err != nil {
		return fallback
	}
	return clock
}

// DetectMealType picks the meal a new entry belongs to. Main meals are taken
// in order (breakfast, lunch, dinner) and only within two hours of their
// time; everything else is a snack. now must already be in the user's zone.
func DetectMealType(user *database.User, now time.Time, taken []domain.MealType) domain.MealType {
	has := make(map[domain.MealType]bool, len(taken))
	for _, t := range taken {
		has[t] = true
	}
	current := utils.ClockOf(now)

	switch {
	case !has[domain.MealBreakfast] &&
		utils.WithinTolerance(current, MealClock(user, domain.MealBreakfast), mealTimeTolerance):
		return domain.MealBreakfast
	case has[domain.MealBreakfast] && !has[domain.MealLunch] &&
		utils.WithinTolerance(current, MealClock(user, domain.MealLunch), mealTimeTolerance):
		return domain.MealLunch
	case has[domain.MealBreakfast] && has[domain.MealLunch] && !has[domain.MealDinner] &&
		utils.WithinTolerance(current, MealClock(user, domain.MealDinner), mealTimeTolerance):
		return domain.MealDinner
	}
	return domain.MealSnack
}

// InSilentHours reports whether now, taken in the user's zone, falls inside
// the configured quiet window
func InSilentHours(user *database.User, now time.Time) bool {
	start, err := utils.ParseClock(user.SilentStart)
	if err != nil {
		return false
	}
	end, err := utils.ParseClock(user.SilentEnd)
	if err != nil {
		return false
	}
	return utils.InWindow(utils.ClockOf(now.In(user.Location())), start, end)
}
