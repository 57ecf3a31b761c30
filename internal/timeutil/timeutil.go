// Package timeutil holds the wire layouts and weekday keys shared by the
// directory, booking and agenda packages.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02" // YYYY-MM-DD
	TimeLayout     = "15:04"      // HH:mm, 24-hour
	DateTimeLayout = "2006-01-02 15:04"
)

// Weekday join keys are lowercase English names, matched exactly.
var Weekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// WeekdayKey returns the lowercase English weekday of t, the join key
// between availability templates and calendar days.
func WeekdayKey(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// ParseDate parses a YYYY-MM-DD civil date. The result is anchored at
// midnight UTC and is only used for calendar arithmetic, never as an
// instant.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	// time.Parse tolerates missing zero padding; the round-trip check
	// keeps the wire format strict.
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// ValidTime reports whether s is a well-formed HH:mm time of day.
func ValidTime(s string) bool {
	t, err := time.Parse(TimeLayout, s)
	return err == nil && t.Format(TimeLayout) == s
}

// SlotInstant anchors a (date, time-of-day) pair in loc, producing the
// absolute instant the slot starts.
func SlotInstant(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, date+" "+timeOfDay, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %s %s: %w", date, timeOfDay, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }
