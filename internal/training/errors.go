package training

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("you do not have permission to perform this action")
	ErrMovementNotFound       = errors.New("movement not found")
	ErrWorkoutNotFound        = errors.New("workout not found")
	ErrMovementLogNotFound    = errors.New("movement log not found")
	ErrNoCurrentWorkout       = errors.New("current workout does not exist")
)

// ValidationError rejects a request payload. Several may be combined with multierr.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ValidationMessage joins all validation errors contained in err, one per line.
func ValidationMessage(err error) string {
	var lines []string
	for _, e := range multierr.Errors(err) {
		var vErr *ValidationError
		if errors.As(e, &vErr) {
			lines = append(lines, vErr.Error())
		}
	}
	return strings.Join(lines, "\n")
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrMovementNotFound) ||
		errors.Is(err, ErrWorkoutNotFound) ||
		errors.Is(err, ErrMovementLogNotFound) ||
		errors.Is(err, ErrNoCurrentWorkout)
}
