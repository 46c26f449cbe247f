package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrBlockLocked        = errors.New("cannot delete locked routine block")
	ErrBlockNotEditable   = errors.New("routine block title and times are not editable")
	ErrVersionConflict    = errors.New("document was modified by another request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUploadsDisabled    = errors.New("uploads are not configured")
)

// ValidationError reports a bad input field. It is raised before any store
// call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound maps gorm's record-not-found onto ErrNotFound and wraps anything
// else with op.
func notFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
