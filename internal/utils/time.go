package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

const minutesPerDay = 24 * 60

// ParseClock parses a strict "HH:MM" value
func ParseClock(s string) (domain.ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return domain.ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return domain.ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// CircularDistance returns the distance in minutes between two times of day,
// measured the short way around midnight
func CircularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= minutesPerDay
	if d > minutesPerDay/2 {
		d = minutesPerDay - d
	}
	return d
}

// WithinTolerance reports whether current is at most tolerance away from target
func WithinTolerance(current, target domain.ClockTime, tolerance time.Duration) bool {
	return CircularDistance(current.Minutes(), target.Minutes()) <= int(tolerance.Minutes())
}

// InWindow reports whether t falls into [start, end), where the window may wrap midnight
func InWindow(t, start, end domain.ClockTime) bool {
	m, s, e := t.Minutes(), start.Minutes(), end.Minutes()
	if s == e {
		return false
	}
	if s < e {
		return m >= s && m < e
	}
	return m >= s || m < e
}

// ClockOf returns the wall clock of t
func ClockOf(t time.Time) domain.ClockTime {
	return domain.ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// DayBounds returns local midnight of t's day and of the following day
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

var clockPattern = regexp.MustCompile(`(\d+)(?:\s*[:.]\s*(\d+))?`)

// ParseNaturalTime extracts a time of day from free text such as "9",
// "19:30", "7.15", "sabah 9'da" or "akşam 7". found is false when the text
// holds no number at all; an out-of-range value is an error and never clamped.
func ParseNaturalTime(text string) (clock domain.ClockTime, found bool, err error) {
	folded := Fold(text)
	match := clockPattern.FindStringSubmatch(folded)
	if match == nil {
		return domain.ClockTime{}, false, nil
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil || len(match[1]) > 2 {
		return domain.ClockTime{}, true, fmt.Errorf("invalid hour %q", match[1])
	}
	minute := 0
	if match[2] != "" {
		if len(match[2]) != 2 {
			return domain.ClockTime{}, true, fmt.Errorf("invalid minute %q", match[2])
		}
		minute, _ = strconv.Atoi(match[2])
	}

	switch {
	case containsAny(folded, "aksam", "gece"):
		if hour >= 1 && hour <= 11 {
			hour += 12
		}
	case containsAny(folded, "ogle", "oglen"):
		if hour >= 1 && hour <= 5 {
			hour += 12
		}
	}

	clock, err = domain.NewClockTime(hour, minute)
	return clock, true, err
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
