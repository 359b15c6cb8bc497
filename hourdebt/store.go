/*
store.go - Persistence interface for debts, deductions, and mirrored records

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite, PostgreSQL, or in-memory storage.

TENANT SCOPING:
  Every debt query carries an explicit tenant id. There is no ambient
  tenant context; a debt outside the caller's tenant behaves like a
  missing row.

ORDERING CONTRACT:
  OpenDebts MUST return debts ordered by date ascending, id ascending.
  FIFO allocation is a correctness invariant, so the ordering lives in the
  query, never in an assumption about insertion order.

WRITE DISCIPLINE:
  Balance mutations and deduction inserts/deletes only happen inside
  WithTx, driven by the allocator, the reversal handler, or reconciliation.
  No other code path writes RemainingMinutes.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - hourdebt/store/memory.go: in-memory for tests
*/
package hourdebt

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Debt and deduction persistence
// =============================================================================

// DebtFilter narrows ListDebts. Zero values mean "any".
type DebtFilter struct {
	UserID string
	Status DebtStatus
}

type Store interface {
	// InsertDebt persists a new debt and assigns its ID.
	InsertDebt(ctx context.Context, d *Debt) error

	// GetDebt returns the debt with the given id within a tenant, or nil.
	GetDebt(ctx context.Context, tenantID string, id DebtID) (*Debt, error)

	// GetDebtByID returns a debt regardless of tenant, or nil. Internal use
	// only: reversal walks deduction->debt references that are already
	// tenant-consistent.
	GetDebtByID(ctx context.Context, id DebtID) (*Debt, error)

	// ListDebts returns a tenant's debts ordered by date asc, id asc.
	ListDebts(ctx context.Context, tenantID string, f DebtFilter) ([]Debt, error)

	// OpenDebts returns a user's ACTIVE debts with remaining minutes,
	// ordered by date asc, id asc (FIFO order).
	OpenDebts(ctx context.Context, tenantID, userID string) ([]Debt, error)

	// NonCancelledDebts returns a user's ACTIVE and FULLY_PAID debts,
	// ordered by date asc, id asc. Used by reconciliation.
	NonCancelledDebts(ctx context.Context, tenantID, userID string) ([]Debt, error)

	// UpdateDebt persists balance, status, and admin-edit fields.
	UpdateDebt(ctx context.Context, d *Debt) error

	// DeleteDebt removes a debt row. Callers cascade deductions first.
	DeleteDebt(ctx context.Context, tenantID string, id DebtID) error

	// InsertDeduction persists a ledger row and assigns its ID.
	InsertDeduction(ctx context.Context, d *Deduction) error

	// DeductionsByDebt returns a debt's deductions ordered by deducted_at
	// asc, id asc.
	DeductionsByDebt(ctx context.Context, debtID DebtID) ([]Deduction, error)

	// DeductionsByWorkRecord returns every deduction a work record produced.
	DeductionsByWorkRecord(ctx context.Context, workRecordID string) ([]Deduction, error)

	// DeleteDeduction removes a ledger row (reversal only).
	DeleteDeduction(ctx context.Context, id DeductionID) error

	// MinutesDeductedForWorkRecord sums MinutesDeducted across all debts for
	// one work record.
	MinutesDeductedForWorkRecord(ctx context.Context, workRecordID string) (int, error)

	// UpsertWorkRecord mirrors an approved work record for reconciliation.
	UpsertWorkRecord(ctx context.Context, wr WorkRecord) error

	// DeleteWorkRecord drops the mirror when a record leaves the approved
	// state.
	DeleteWorkRecord(ctx context.Context, id string) error

	// ApprovedWorkRecords returns a user's mirrored records with
	// date >= since, ordered by date asc, id asc.
	ApprovedWorkRecords(ctx context.Context, tenantID, userID string, since time.Time) ([]WorkRecord, error)

	// Debtors returns the distinct users of a tenant that have at least one
	// non-cancelled debt.
	Debtors(ctx context.Context, tenantID string) ([]string, error)

	// SaveReview persists a reconciliation run summary.
	SaveReview(ctx context.Context, s ReviewSummary) error

	// ListReviews returns a tenant's run summaries, newest first.
	ListReviews(ctx context.Context, tenantID string) ([]ReviewSummary, error)
}

// =============================================================================
// TRANSACTIONAL STORE - Atomic units of work
// =============================================================================

// TxStore wraps Store with transaction support. One allocation, one
// reversal, and one user's reconciliation pass each run inside a single
// WithTx call; the implementation must serialize conflicting writers so two
// concurrent approvals for the same user cannot both read a stale
// RemainingMinutes (lost-update anomaly).
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
