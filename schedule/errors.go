/*
errors.go - Failure taxonomy for the scheduler

ERROR CATEGORIES:
  1. Validation errors - Missing caller input; user-correctable
  2. Integrity errors  - Malformed stored data or a broken rule definition;
                         fatal to the request
  3. Store errors      - Persistence failures; wrapped where they occur and
                         propagated unchanged

The evaluator never swallows an error it cannot resolve; handlers classify
with IsClientError / IsIntegrityError to pick a status code.
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoPurchaseDate is returned when no vehicle profile is on record.
	// Callers must surface this before ever invoking the evaluator.
	ErrNoPurchaseDate = errors.New("no purchase date on record")

	// ErrMissingMileage is returned when a query omits the current odometer
	// reading or supplies a negative one.
	ErrMissingMileage = errors.New("current mileage missing or negative")

	// ErrMalformedDate is returned when a stored date cannot be parsed.
	ErrMalformedDate = errors.New("malformed stored date")

	// ErrRuleWithoutInterval is returned when a catalog rule defines neither
	// a time nor a mileage interval.
	ErrRuleWithoutInterval = errors.New("rule defines no interval")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// IntegrityError reports data the evaluator refuses to compute over: a
// malformed history date or an incomplete rule definition.
type IntegrityError struct {
	Rule  string // rule or item name involved
	Value string // offending stored value, if any
	Err   error  // sentinel cause
}

func (e *IntegrityError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (value %q)", e.Rule, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Rule, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is user-correctable input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoPurchaseDate) ||
		errors.Is(err, ErrMissingMileage)
}

// IsIntegrityError reports whether the error is a data-integrity failure.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrRuleWithoutInterval)
}
