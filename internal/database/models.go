package database

import (
	"time"
	_ "time/tzdata"

	"gorm.io/datatypes"
)

const DefaultTimezone = "Europe/Istanbul"

// User is keyed by the chat address (E.164 phone or "tg:<chat id>")
type User struct {
	Phone     string `gorm:"primaryKey;size:64"`
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Timezone      string  `gorm:"size:64;not null;default:Europe/Istanbul"`
	BreakfastTime *string `gorm:"size:5"`
	LunchTime     *string `gorm:"size:5"`
	DinnerTime    *string `gorm:"size:5"`

	BreakfastReminder     bool `gorm:"not null;default:true"`
	LunchReminder         bool `gorm:"not null;default:true"`
	DinnerReminder        bool `gorm:"not null;default:true"`
	WaterReminder         bool `gorm:"not null;default:true"`
	WaterReminderInterval int  `gorm:"not null;default:120"` // minutes
	WaterGoal             int  `gorm:"not null;default:2000"` // ml
	CalorieGoal           int  `gorm:"not null;default:2000"` // kcal

	SilentStart string `gorm:"size:5;not null;default:23:00"`
	SilentEnd   string `gorm:"size:5;not null;default:07:00"`

	OnboardingStep      *string `gorm:"size:32"`
	OnboardingCompleted bool    `gorm:"not null;default:false"`
	IsActive            bool    `gorm:"not null;default:true"`

	PendingCommand *string `gorm:"size:64"`
}

// NewUser returns a user with every default applied
func NewUser(phone string) *User {
	return &User{
		Phone:                 phone,
		Timezone:              DefaultTimezone,
		BreakfastReminder:     true,
		LunchReminder:         true,
		DinnerReminder:        true,
		WaterReminder:         true,
		WaterReminderInterval: 120,
		WaterGoal:             2000,
		CalorieGoal:           2000,
		SilentStart:           "23:00",
		SilentEnd:             "07:00",
		IsActive:              true,
	}
}

// Location resolves the user's timezone, falling back to the default zone
func (u *User) Location() *time.Location {
	if loc, err := time.LoadLocation(u.Timezone); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// DisplayName returns the captured contact name or an empty string
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

type Meal struct {
	ID          uint    `gorm:"primaryKey"`
	UserPhone   string  `gorm:"size:64;not null;index"`
	User        User    `gorm:"foreignKey:UserPhone;references:Phone;constraint:OnDelete:CASCADE"`
	MealType    string  `gorm:"size:16;not null"`
	Calories    float64 `gorm:"not null"`
	Description string  `gorm:"type:text;not null"`
	ImageURL    *string `gorm:"type:text"`
	CreatedAt   time.Time
}

type WaterLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserPhone string `gorm:"size:64;not null;index"`
	User      User   `gorm:"foreignKey:UserPhone;references:Phone;constraint:OnDelete:CASCADE"`
	AmountML  int    `gorm:"column:amount_ml;not null"`
	CreatedAt time.Time
}

type FavoriteMeal struct {
	ID          uint    `gorm:"primaryKey"`
	UserPhone   string  `gorm:"size:64;not null;uniqueIndex:idx_favorite_user_name"`
	User        User    `gorm:"foreignKey:UserPhone;references:Phone;constraint:OnDelete:CASCADE"`
	Name        string  `gorm:"size:64;not null;uniqueIndex:idx_favorite_user_name"`
	Description string  `gorm:"type:text;not null"`
	Calories    float64 `gorm:"not null"`
	CreatedAt   time.Time
}

// Conversation is an audit row for every inbound and outbound message
type Conversation struct {
	ID          uint   `gorm:"primaryKey"`
	UserPhone   string `gorm:"size:64;not null;index"`
	User        User   `gorm:"foreignKey:UserPhone;references:Phone;constraint:OnDelete:CASCADE"`
	Direction   string `gorm:"size:16;not null"`
	MessageType string `gorm:"size:16;not null"`
	Content     string `gorm:"type:text"`
	Metadata    datatypes.JSON
	CreatedAt   time.Time
}

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)
