package domain

import (
	"fmt"
	"time"
)

// MealType classifies a meal by the time of day it was eaten
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// DisplayName returns the Turkish label shown to users
func (m MealType) DisplayName() string {
	switch m {
	case MealBreakfast:
		return "Kahvaltı"
	case MealLunch:
		return "Öğle Yemeği"
	case MealDinner:
		return "Akşam Yemeği"
	default:
		return "Ara Öğün"
	}
}

// ParseMealType accepts the stored value or a Turkish meal word
func ParseMealType(s string) (MealType, bool) {
	switch s {
	case "breakfast", "kahvalti", "sabah":
		return MealBreakfast, true
	case "lunch", "ogle", "oglen", "ogle_yemegi":
		return MealLunch, true
	case "dinner", "aksam", "aksam_yemegi":
		return MealDinner, true
	case "snack", "ara", "ara_ogun":
		return MealSnack, true
	}
	return "", false
}

// IntentKind enumerates the closed set of intents the AI may return
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentMeal
	IntentWater
	IntentCommand
)

func (k IntentKind) String() string {
	switch k {
	case IntentMeal:
		return "meal"
	case IntentWater:
		return "water"
	case IntentCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Intent is the classification of a free-text message.
// Only the fields of the matching Kind are set.
type Intent struct {
	Kind        IntentKind
	Description string   // IntentMeal
	AmountML    int      // IntentWater
	Command     string   // IntentCommand
	Args        []string // IntentCommand
}

func MealIntent(description string) Intent { return Intent{Kind: IntentMeal, Description: description} }
func WaterIntent(ml int) Intent            { return Intent{Kind: IntentWater, AmountML: ml} }
func UnknownIntent() Intent                { return Intent{Kind: IntentUnknown} }

func CommandIntent(name string, args ...string) Intent {
	return Intent{Kind: IntentCommand, Command: name, Args: args}
}

// MealAnalysis is the AI estimate for a meal
type MealAnalysis struct {
	FoodName    string
	Calories    float64
	Portion     string
	Description string
	Provider    string
}

// CommandSuggestion is the AI guess for a mistyped command
type CommandSuggestion struct {
	Command    string
	Confidence float64
}

// ClockTime is a wall-clock time of day
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime validates the hour and minute ranges
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("time %02d:%02d out of range", hour, minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the number of minutes since midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ImageRef points to an inbound image. MediaID is set when the provider
// needs a lookup before the bytes can be downloaded.
type ImageRef struct {
	URL     string
	MediaID string
	Caption string
}

// Chat channels an inbound message can arrive on
const (
	ChannelWhatsApp = "whatsapp"
	ChannelTelegram = "telegram"
)

// InboundMessage is a provider-neutral inbound chat message
type InboundMessage struct {
	ID         string
	Channel    string
	Phone      string
	Name       string
	Text       string
	Image      *ImageRef
	ReceivedAt time.Time
}

// MessageType returns the audit type of the message
func (m InboundMessage) MessageType() string {
	if m.Image != nil {
		return "image"
	}
	return "text"
}

// Button is one selectable row of an interactive message
type Button struct {
	ID          string
	Title       string
	Description string
}

// Reply is the single outbound answer to an inbound message
type Reply struct {
	Text    string
	Header  string
	Buttons []Button
}

// DailyStats aggregates one local day of activity
type DailyStats struct {
	Calories   float64
	MealCount  int
	WaterML    int
	WaterCount int
}

// DayTotal is one row of the weekly summary
type DayTotal struct {
	Date     time.Time
	Calories float64
	WaterML  int
}

// SettingsUpdate lists the user columns to change. Nil fields are left alone.
type SettingsUpdate struct {
	Name                  *string
	Timezone              *string
	BreakfastTime         *string
	LunchTime             *string
	DinnerTime            *string
	WaterReminderInterval *int
	WaterGoal             *int
	CalorieGoal           *int
	SilentStart           *string
	SilentEnd             *string
	OnboardingStep        *string
	ClearOnboardingStep   bool
	OnboardingCompleted   *bool
	IsActive              *bool
	PendingCommand        *string
	ClearPending          bool
}

// Empty reports whether the update changes nothing
func (u SettingsUpdate) Empty() bool {
	return u == SettingsUpdate{}
}
