package session

import (
	"errors"
	"fmt"
)

// Validation outcomes. Any other error returned by Manager comes from the
// Store and is an infrastructure fault.
var (
	ErrTokenMissing     = errors.New("token missing")
	ErrNoSession        = errors.New("no session token found")
	ErrTokenMismatch    = errors.New("token mismatch")
	ErrReplayDetected   = errors.New("token already used")
	ErrTokenExpired     = errors.New("token expired")
	ErrFieldMapInvalid  = errors.New("invalid field mapping")
	ErrFieldMapMismatch = errors.New("field mapping verification failed")
	ErrTooFast          = errors.New("submission too fast")
	ErrTooSlow          = errors.New("submission took too long")
	ErrDuplicateContent = errors.New("duplicate content")
)

// TimingError carries the measured submit time with ErrTooFast or ErrTooSlow.
type TimingError struct {
	Kind    error
	Seconds int64
}

func (e *TimingError) Error() string { return fmt.Sprintf("%v (%d seconds)", e.Kind, e.Seconds) }

func (e *TimingError) Unwrap() error { return e.Kind }

// IsOutcome reports whether err is one of the validation outcomes above
// rather than a store failure.
func IsOutcome(err error) bool {
	for _, o := range []error{
		ErrTokenMissing, ErrNoSession, ErrTokenMismatch, ErrReplayDetected,
		ErrTokenExpired, ErrFieldMapInvalid, ErrFieldMapMismatch, ErrTooFast,
		ErrTooSlow, ErrDuplicateContent,
	} {
		if errors.Is(err, o) {
			return true
		}
	}
	return false
}
