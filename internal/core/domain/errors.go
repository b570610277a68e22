package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Services wrap these bases with context via Validationf and
// friends; handlers dispatch on errors.Is to pick the HTTP status.
var (
	// ErrValidation marks malformed input (session count out of range, past
	// date, missing field). Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition marks an action attempted from a state or role that
	// does not allow it.
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict marks a lost race: the double-booking guard, the
	// one-booking-per-day rule, or a stale aggregate version.
	ErrConflict = errors.New("conflict")

	// ErrPolicy marks a business-policy refusal, e.g. a reschedule requested
	// inside the lead-time window.
	ErrPolicy = errors.New("policy violation")

	// ErrDependency marks a failed external collaborator call (payment
	// gateway, wallet ledger). The triggering transition is not applied and
	// the caller may retry.
	ErrDependency = errors.New("dependency failure")

	// ErrNotFound marks a missing aggregate.
	ErrNotFound = errors.New("resource not found")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Policyf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPolicy, fmt.Sprintf(format, args...))
}

func Dependencyf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDependency, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
