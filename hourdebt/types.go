/*
Package hourdebt implements the hour-debt compensation engine.

PURPOSE:
  Employees can owe the business time ("hour debts"). When an approved work
  record exceeds the tenant's daily threshold, the excess minutes pay down
  outstanding debts oldest-first. This package contains the entities and the
  three operations that are allowed to mutate them: allocation, reversal,
  and monthly reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Debt: minutes a user owes, with a remaining balance and a status
  - Deduction: one application of a work record's excess to one debt
  - WorkRecord: the approved time entry that produced the excess (read-only
    input, mirrored from the time-tracking subsystem)

DESIGN PRINCIPLES:
  1. Conservation: sum of a debt's deductions == minutesOwed - remainingMinutes
  2. Precision: decimal.Decimal for hours, integer minutes everywhere else
  3. Tenant scoping: every query carries an explicit tenant id
  4. Single writer: only allocate/reverse/reconcile touch balances

SEE ALSO:
  - excess.go: hours-over-threshold calculation
  - allocator.go: FIFO distribution of excess across debts
  - reversal.go: undoing a work record's deductions
  - reconcile.go: monthly review sweep
*/
package hourdebt

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type DebtID int64
type DeductionID int64

// =============================================================================
// DEBT - Minutes a user owes the business
// =============================================================================

type DebtStatus string

const (
	DebtActive    DebtStatus = "active"
	DebtFullyPaid DebtStatus = "fully_paid"
	DebtCancelled DebtStatus = "cancelled" // terminal; no further deductions
)

type Debt struct {
	ID       DebtID
	TenantID string
	UserID   string

	// Date the debt was incurred. FIFO order key (ties broken by ID).
	Date time.Time

	MinutesOwed      int
	RemainingMinutes int
	Status           DebtStatus

	Reason      string
	AdminReason string // last admin-edit justification, empty until edited
	CreatedAt   time.Time
}

// IsOpen reports whether the debt can still receive deductions.
func (d *Debt) IsOpen() bool {
	return d.Status == DebtActive && d.RemainingMinutes > 0
}

// PaidMinutes returns how much of the debt has been worked off.
func (d *Debt) PaidMinutes() int {
	return d.MinutesOwed - d.RemainingMinutes
}

// =============================================================================
// DEDUCTION - Ledger row: one application of excess to one debt
// =============================================================================

// Deduction records that MinutesDeducted of the excess produced by
// WorkRecordID were applied to DebtID. A single work record may produce
// several deductions (one per debt it partially paid), but the sum of
// MinutesDeducted across them never exceeds ExcessMinutes.
type Deduction struct {
	ID           DeductionID
	DebtID       DebtID
	WorkRecordID string

	MinutesDeducted int
	// ExcessMinutes is the day's total excess for the work record, repeated
	// on every row it produced. MinutesDeducted <= ExcessMinutes.
	ExcessMinutes int

	DeductedAt time.Time
}

// =============================================================================
// WORK RECORD - Approved time entry (external collaborator, mirrored)
// =============================================================================

// WorkRecord is the slice of the time-tracking subsystem's record that the
// engine consumes. The engine never mutates hours or dates; it only learns
// about approval/rejection transitions and keeps a mirror of approved
// records so reconciliation can re-scan them.
type WorkRecord struct {
	ID       string
	TenantID string
	UserID   string
	Date     time.Time
	Hours    decimal.Decimal
}

// =============================================================================
// REVIEW - Monthly reconciliation run summary
// =============================================================================

// ReviewSummary is the outcome of one monthly review sweep over a tenant.
// An unresolved gap is an expected, displayable outcome, not an error.
type ReviewSummary struct {
	RunID    string
	TenantID string

	AutoAppliedMinutes  int // minutes newly applied by this sweep
	RemainingGapMinutes int // outstanding active debt left after the sweep
	UsersWithGaps       int // users still owing after the sweep
	UsersFailed         int // users whose sub-operation rolled back

	StartedAt   time.Time
	CompletedAt time.Time
}
