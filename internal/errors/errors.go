package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by every core operation. Callers match them with errors.Is.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidPair             = errors.New("invalid pair: user cannot act on themself")
	ErrInvalidState            = errors.New("invalid state: no transition matches the current statuses")
	ErrInvalidRelationshipType = errors.New("invalid relationship type")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrForbidden               = errors.New("forbidden")
	ErrNoConnection            = errors.New("no connection")
	ErrNoCandidate             = errors.New("no candidate")
	ErrConflict                = errors.New("conflict: connection was modified concurrently")
	ErrTransient               = errors.New("transient store failure")
)

// Retryable reports whether the caller may retry the request.
// Only concurrent-write conflicts and transient store failures qualify.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTransient)
}

// IsNoCandidate reports whether err means the feed is simply empty.
func IsNoCandidate(err error) bool {
	return errors.Is(err, ErrNoCandidate)
}

// Translate converts gorm, driver and context errors into the taxonomy above.
// Errors already carrying a kind are returned untouched.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoConnection),
		errors.Is(err, ErrConflict), errors.Is(err, ErrTransient):
		return err

	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %w", ErrTransient, err)

	default:
		return err
	}
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted message.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
