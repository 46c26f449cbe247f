// Package clock holds the wall-clock helpers shared by tasks, routines and the
// daily menu: HH:mm and YYYY-MM-DD parsing, and the time-of-day slots lists are
// grouped by.
package clock

import (
	"fmt"
	"time"
)

const (
	// TimeLayout is the 24-hour HH:mm layout used for every stored time.
	TimeLayout = "15:04"
	// DateLayout is the calendar date layout used for every stored date.
	DateLayout = "2006-01-02"
)

// Slot is a coarse part of the day.
type Slot string

const (
	Morning     Slot = "morning"
	Afternoon   Slot = "afternoon"
	Evening     Slot = "evening"
	Unscheduled Slot = "unscheduled"
)

// ParseTime parses an HH:mm string and returns minutes since midnight. Only
// the zero-padded form is accepted, so stored times sort as strings.
func ParseTime(s string) (int, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil || t.Format(TimeLayout) != s {
		return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidTime reports whether s is a well-formed HH:mm value.
func ValidTime(s string) bool {
	_, err := ParseTime(s)
	return err == nil
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD value.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Format renders t as HH:mm.
func Format(t time.Time) string {
	return t.Format(TimeLayout)
}

// Today renders t's calendar date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// SlotOf buckets an HH:mm time: before 12 is morning, before 17 afternoon,
// anything later evening. An empty or malformed time is Unscheduled.
func SlotOf(hhmm string) Slot {
	m, err := ParseTime(hhmm)
	if err != nil {
		return Unscheduled
	}
	switch h := m / 60; {
	case h < 12:
		return Morning
	case h < 17:
		return Afternoon
	default:
		return Evening
	}
}
