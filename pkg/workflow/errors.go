package workflow

import (
	"errors"
	"fmt"
)

// Transition error taxonomy. Every rejection maps onto exactly one of these
// sentinels so callers can translate them into user-facing responses.
var (
	// ErrNotFound is returned when the ticket, transition or acting user is missing.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the acting user's role is not in the transition's allowed set.
	ErrForbidden = errors.New("role not permitted for transition")
	// ErrInvalidTransition is returned on a topology mismatch, including lost-update races.
	ErrInvalidTransition = errors.New("transition not valid from current status")
	// ErrPreconditionFailed is returned when a required comment or assignment is missing.
	ErrPreconditionFailed = errors.New("transition precondition failed")
	// ErrConditionsNotMet is returned when guard condition groups reject the transition.
	ErrConditionsNotMet = errors.New("transition conditions not met")
	// ErrConfiguration is returned for malformed definitions detected before execution.
	ErrConfiguration = errors.New("invalid workflow configuration")
)

// ConditionsError carries which condition groups failed so the caller can
// render a meaningful rejection.
type ConditionsError struct {
	FailedGroups []int
	Results      map[string]bool
}

func (e *ConditionsError) Error() string {
	return fmt.Sprintf("%v: failing groups %v", ErrConditionsNotMet, e.FailedGroups)
}

func (e *ConditionsError) Unwrap() error {
	return ErrConditionsNotMet
}

// IsRejection reports whether err is one of the pre-mutation rejections, as
// opposed to an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrPreconditionFailed) ||
		errors.Is(err, ErrConditionsNotMet) ||
		errors.Is(err, ErrConfiguration)
}
