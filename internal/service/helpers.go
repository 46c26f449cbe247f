package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/daypilot/backend/internal/clock"
	"github.com/daypilot/backend/internal/live"
)

func publish(pub live.Publisher, userID uuid.UUID, collection, action, id string, data any) {
	if pub == nil {
		return
	}
	pub.Publish(live.Event{
		Collection: collection,
		Action:     action,
		ID:         id,
		UserID:     userID,
		Data:       data,
	})
}

// emptyToNil turns a blank optional string into nil.
func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func checkDate(field, date string) error {
	if !clock.ValidDate(date) {
		return invalid(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

func checkTime(field, hhmm string) error {
	if !clock.ValidTime(hhmm) {
		return invalid(field, "must be an HH:mm time")
	}
	return nil
}

// optionalTime validates a nullable time; blank means unscheduled.
func optionalTime(field string, hhmm *string) (*string, error) {
	if hhmm == nil {
		return nil, nil
	}
	t := emptyToNil(*hhmm)
	if t == nil {
		return nil, nil
	}
	if err := checkTime(field, *t); err != nil {
		return nil, err
	}
	return t, nil
}
