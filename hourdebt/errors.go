/*
errors.go - Centralized error types for the debt engine

PURPOSE:
  All error types in one place. The API layer classifies them with the
  helpers at the bottom to pick HTTP status codes; callers use errors.Is.

ERROR CATEGORIES:
  1. Validation errors - bad input, rejected before anything is written
  2. State errors - operation conflicts with the entity's lifecycle
  3. Integrity errors - conservation-law violations; fatal, never corrected
     silently
*/
package hourdebt

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDebtNotFound is returned when a debt id does not exist within the
	// caller's tenant. A debt belonging to another tenant is indistinguishable
	// from a missing one on purpose.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrValidation is the base for input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrDebtCancelled is returned when an operation targets a cancelled debt.
	ErrDebtCancelled = errors.New("debt is cancelled")

	// ErrAlreadyAllocated is returned when a work record that already has
	// deduction rows is approved again. Callers must reverse first.
	ErrAlreadyAllocated = errors.New("work record already allocated")

	// ErrAdminReasonRequired is returned when an admin edit omits its
	// mandatory justification.
	ErrAdminReasonRequired = errors.New("admin reason is required")

	// ErrConservationViolated means sum(deductions) != minutesOwed - remaining
	// for some debt. The engine is the sole writer, so this should never
	// happen; it is surfaced, never silently repaired.
	ErrConservationViolated = errors.New("deduction conservation violated")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AlreadyAllocatedError reports the deductions that block a re-allocation.
type AlreadyAllocatedError struct {
	WorkRecordID string
	Existing     []Deduction
}

func (e *AlreadyAllocatedError) Error() string {
	return fmt.Sprintf("work record %s already has %d deduction(s); reverse before re-allocating",
		e.WorkRecordID, len(e.Existing))
}

func (e *AlreadyAllocatedError) Unwrap() error { return ErrAlreadyAllocated }

// ConservationError pinpoints the debt whose ledger no longer balances.
type ConservationError struct {
	DebtID           DebtID
	MinutesOwed      int
	RemainingMinutes int
	DeductedTotal    int
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("debt %d: deductions total %d but owed-remaining is %d",
		e.DebtID, e.DeductedTotal, e.MinutesOwed-e.RemainingMinutes)
}

func (e *ConservationError) Unwrap() error { return ErrConservationViolated }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAdminReasonRequired)
}

// IsConflict returns true for state errors the caller can resolve by
// changing the request (reverse first, pick a non-cancelled debt).
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyAllocated) ||
		errors.Is(err, ErrDebtCancelled)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDebtNotFound)
}
