package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// GetOrCreateUser gets an existing user or creates one with defaults.
// A contact name is stored the first time one is seen.
func (s *Store) GetOrCreateUser(ctx context.Context, phone, name string) (*database.User, error) {
	db := s.db.WithContext(ctx)

	fresh := database.NewUser(phone)
	if name != "" {
		fresh.Name = &name
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, wrap("create user", err)
	}

	var user database.User
	if err := db.First(&user, "phone = ?", phone).Error; err != nil {
		return nil, wrap("get user", err)
	}

	if name != "" && user.Name == nil {
		if err := db.Model(&user).Update("name", name).Error; err != nil {
			return nil, wrap("store user name", err)
		}
		user.Name = &name
	}
	return &user, nil
}

// GetUser gets a user by phone
func (s *Store) GetUser(ctx context.Context, phone string) (*database.User, error) {
	var user *database.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.lockUser(tx, phone)
		user = u
		return err
	})
	if err != nil {
		return nil, wrap("get user", err)
	}
	return user, nil
}

// SetPendingCommand stores or clears (cmd == nil) the command awaiting confirmation
func (s *Store) SetPendingCommand(ctx context.Context, phone string, cmd *string) error {
	err := s.withUserTx(ctx, phone, func(tx *gorm.DB) error {
		if cmd == nil {
			return clearPending(tx, phone)
		}
		return tx.Model(&database.User{}).Where("phone = ?", phone).Update("pending_command", *cmd).Error
	})
	return wrap("set pending command", err)
}

// UpdateSettings applies every non-nil field of upd in one statement
func (s *Store) UpdateSettings(ctx context.Context, phone string, upd domain.SettingsUpdate) error {
	columns := settingsColumns(upd)
	if len(columns) == 0 {
		return nil
	}
	err := s.withUserTx(ctx, phone, func(tx *gorm.DB) error {
		return tx.Model(&database.User{}).Where("phone = ?", phone).Updates(columns).Error
	})
	return wrap("update settings", err)
}

func settingsColumns(upd domain.SettingsUpdate) map[string]interface{} {
	columns := make(map[string]interface{})
	setString := func(col string, v *string) {
		if v != nil {
			columns[col] = *v
		}
	}
	setInt := func(col string, v *int) {
		if v != nil {
			columns[col] = *v
		}
	}
	setBool := func(col string, v *bool) {
		if v != nil {
			columns[col] = *v
		}
	}

	setString("name", upd.Name)
	setString("timezone", upd.Timezone)
	setString("breakfast_time", upd.BreakfastTime)
	setString("lunch_time", upd.LunchTime)
	setString("dinner_time", upd.DinnerTime)
	setInt("water_reminder_interval", upd.WaterReminderInterval)
	setInt("water_goal", upd.WaterGoal)
	setInt("calorie_goal", upd.CalorieGoal)
	setString("silent_start", upd.SilentStart)
	setString("silent_end", upd.SilentEnd)
	setString("onboarding_step", upd.OnboardingStep)
	if upd.ClearOnboardingStep {
		columns["onboarding_step"] = gorm.Expr("NULL")
	}
	setBool("onboarding_completed", upd.OnboardingCompleted)
	setBool("is_active", upd.IsActive)
	setString("pending_command", upd.PendingCommand)
	if upd.ClearPending {
		columns["pending_command"] = gorm.Expr("NULL")
	}
	return columns
}
