/*
engine.go - Entry points of the hour-debt engine

PURPOSE:
  The Engine is the only surface through which debts and deductions are
  mutated. The time-tracking subsystem notifies it of work-record
  transitions; the admin API drives debt CRUD and the monthly review.

ENTRY POINTS:
  OnWorkRecordApproved      compute excess, guard double-application, allocate
  ReverseWorkRecord         undo a rejected/deleted record's deductions
  CreateDebt / UpdateDebt / CancelDebt / DeleteDebt
  Balance / DeductionHistory / Outstanding
  MonthlyReview             reconciliation sweep (reconcile.go)

ATOMICITY:
  Each mutating entry point is one TxStore.WithTx unit: it commits fully or
  not at all. The store serializes conflicting writers, so two concurrent
  approvals for the same user cannot over-credit a debt.
*/
package hourdebt

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store      TxStore
	thresholds ThresholdSource
	now        func() time.Time
}

// NewEngine creates an engine over the given store. thresholds may be nil,
// in which case every tenant uses DefaultDailyThresholdHours.
func NewEngine(store TxStore, thresholds ThresholdSource) *Engine {
	if thresholds == nil {
		thresholds = ThresholdFunc(func(string) decimal.Decimal { return DefaultDailyThresholdHours })
	}
	return &Engine{
		store:      store,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Store exposes read access for the API layer. Mutations must go through
// the engine's entry points.
func (e *Engine) Store() Store { return e.store }

// =============================================================================
// WORK RECORD LIFECYCLE
// =============================================================================

// OnWorkRecordApproved handles the approved transition of a work record:
// compute the day's excess, guard against double application, and allocate
// the excess across the user's active debts oldest-first.
//
// Returns the deduction rows written (empty when there was no excess or no
// open debt). Re-approving a record that already has deductions fails with
// AlreadyAllocatedError; reverse it first.
func (e *Engine) OnWorkRecordApproved(ctx context.Context, wr WorkRecord) ([]Deduction, error) {
	if err := validateWorkRecord(wr); err != nil {
		return nil, err
	}

	threshold := e.thresholds.DailyThresholdHours(wr.TenantID)
	excess := ComputeExcess(wr.Hours, threshold)

	var out []Deduction
	err := e.store.WithTx(ctx, func(s Store) error {
		existing, err := s.DeductionsByWorkRecord(ctx, wr.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return &AlreadyAllocatedError{WorkRecordID: wr.ID, Existing: existing}
		}

		// Mirror the approved record so reconciliation can re-scan it,
		// excess or not.
		if err := s.UpsertWorkRecord(ctx, wr); err != nil {
			return err
		}

		out, err = applyExcess(ctx, s, wr.TenantID, wr.UserID, wr.ID, excess, excess, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReverseWorkRecord undoes all deductions tied to a work record. Invoked on
// every transition into rejected or deleted from approved. Idempotent: a
// second reversal finds no deduction rows and is a no-op.
func (e *Engine) ReverseWorkRecord(ctx context.Context, workRecordID string) error {
	if workRecordID == "" {
		return &ValidationError{Field: "workRecordId", Message: "must not be empty"}
	}
	return e.store.WithTx(ctx, func(s Store) error {
		return reverseWorkRecord(ctx, s, workRecordID)
	})
}

// =============================================================================
// DEBT CRUD
// =============================================================================

// CreateDebtInput carries the fields of a new debt.
type CreateDebtInput struct {
	TenantID    string
	UserID      string
	MinutesOwed int
	Date        time.Time
	Reason      string
}

// CreateDebt inserts a new ACTIVE debt with the full amount remaining.
func (e *Engine) CreateDebt(ctx context.Context, in CreateDebtInput) (*Debt, error) {
	switch {
	case in.TenantID == "":
		return nil, &ValidationError{Field: "tenantId", Message: "must not be empty"}
	case in.UserID == "":
		return nil, &ValidationError{Field: "userId", Message: "must not be empty"}
	case in.MinutesOwed < 1:
		return nil, &ValidationError{Field: "minutesOwed", Message: "must be at least 1"}
	case in.Date.IsZero():
		return nil, &ValidationError{Field: "date", Message: "must be set"}
	}

	debt := &Debt{
		TenantID:         in.TenantID,
		UserID:           in.UserID,
		Date:             in.Date,
		MinutesOwed:      in.MinutesOwed,
		RemainingMinutes: in.MinutesOwed,
		Status:           DebtActive,
		Reason:           in.Reason,
		CreatedAt:        e.now(),
	}
	if err := e.store.InsertDebt(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

// UpdateDebtInput is an admin override. Nil fields are left unchanged.
type UpdateDebtInput struct {
	MinutesOwed      *int
	RemainingMinutes *int
	AdminReason      string
}

// UpdateDebt applies an admin edit. The reason is mandatory and the edit
// must keep 0 <= remaining <= owed. Status is recomputed from the new
// balance unless the debt is cancelled.
func (e *Engine) UpdateDebt(ctx context.Context, tenantID string, id DebtID, in UpdateDebtInput) (*Debt, error) {
	if strings.TrimSpace(in.AdminReason) == "" {
		return nil, ErrAdminReasonRequired
	}

	var out *Debt
	err := e.store.WithTx(ctx, func(s Store) error {
		debt, err := s.GetDebt(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if debt == nil {
			return ErrDebtNotFound
		}

		owed := debt.MinutesOwed
		remaining := debt.RemainingMinutes
		if in.MinutesOwed != nil {
			owed = *in.MinutesOwed
		}
		if in.RemainingMinutes != nil {
			remaining = *in.RemainingMinutes
		}

		switch {
		case owed < 1:
			return &ValidationError{Field: "minutesOwed", Message: "must be at least 1"}
		case remaining < 0:
			return &ValidationError{Field: "remainingMinutes", Message: "must not be negative"}
		case remaining > owed:
			return &ValidationError{Field: "remainingMinutes", Message: "must not exceed minutesOwed"}
		}

		debt.MinutesOwed = owed
		debt.RemainingMinutes = remaining
		debt.AdminReason = in.AdminReason
		if debt.Status != DebtCancelled {
			if remaining == 0 {
				debt.Status = DebtFullyPaid
			} else {
				debt.Status = DebtActive
			}
		}

		out = debt
		return s.UpdateDebt(ctx, debt)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelDebt sets the terminal CANCELLED status. Already-applied deductions
// are kept; the remaining balance freezes as bookkeeping.
func (e *Engine) CancelDebt(ctx context.Context, tenantID string, id DebtID, reason string) (*Debt, error) {
	var out *Debt
	err := e.store.WithTx(ctx, func(s Store) error {
		debt, err := s.GetDebt(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if debt == nil {
			return ErrDebtNotFound
		}
		if debt.Status == DebtCancelled {
			return ErrDebtCancelled
		}

		debt.Status = DebtCancelled
		if reason != "" {
			debt.AdminReason = reason
		}
		out = debt
		return s.UpdateDebt(ctx, debt)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDebt removes a debt and cascades its deduction rows in the same
// transaction. Other debts paid by the same work records are untouched.
func (e *Engine) DeleteDebt(ctx context.Context, tenantID string, id DebtID) error {
	return e.store.WithTx(ctx, func(s Store) error {
		debt, err := s.GetDebt(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if debt == nil {
			return ErrDebtNotFound
		}

		deds, err := s.DeductionsByDebt(ctx, debt.ID)
		if err != nil {
			return err
		}
		for _, ded := range deds {
			if err := s.DeleteDeduction(ctx, ded.ID); err != nil {
				return err
			}
		}
		return s.DeleteDebt(ctx, tenantID, debt.ID)
	})
}

// =============================================================================
// READS
// =============================================================================

// Balance returns the sum of remaining minutes over a user's ACTIVE debts.
func (e *Engine) Balance(ctx context.Context, tenantID, userID string) (int, error) {
	debts, err := e.store.OpenDebts(ctx, tenantID, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, d := range debts {
		total += d.RemainingMinutes
	}
	return total, nil
}

// DeductionHistory returns a debt's ledger rows for display/audit, oldest
// first. The debt must belong to the caller's tenant.
func (e *Engine) DeductionHistory(ctx context.Context, tenantID string, id DebtID) ([]Deduction, error) {
	debt, err := e.store.GetDebt(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}
	return e.store.DeductionsByDebt(ctx, debt.ID)
}

// OutstandingEntry is one user's open balance within a tenant.
type OutstandingEntry struct {
	UserID           string
	OutstandingMinutes int
	OpenDebts        int
}

// Outstanding returns per-user outstanding minutes for a tenant's dashboard,
// one entry per user with at least one non-cancelled debt.
func (e *Engine) Outstanding(ctx context.Context, tenantID string) ([]OutstandingEntry, error) {
	users, err := e.store.Debtors(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	entries := make([]OutstandingEntry, 0, len(users))
	for _, userID := range users {
		debts, err := e.store.OpenDebts(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		entry := OutstandingEntry{UserID: userID, OpenDebts: len(debts)}
		for _, d := range debts {
			entry.OutstandingMinutes += d.RemainingMinutes
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// VerifyDebt checks the conservation law for one debt: the sum of its
// deductions must equal minutesOwed - remainingMinutes. Returns a
// ConservationError on mismatch. The engine is the sole writer, so a
// violation indicates external tampering and is treated as fatal by
// callers, never silently corrected.
func (e *Engine) VerifyDebt(ctx context.Context, tenantID string, id DebtID) error {
	debt, err := e.store.GetDebt(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if debt == nil {
		return ErrDebtNotFound
	}

	deds, err := e.store.DeductionsByDebt(ctx, debt.ID)
	if err != nil {
		return err
	}
	if got, want := appliedTotal(deds), debt.PaidMinutes(); got != want {
		return &ConservationError{
			DebtID:           debt.ID,
			MinutesOwed:      debt.MinutesOwed,
			RemainingMinutes: debt.RemainingMinutes,
			DeductedTotal:    got,
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateWorkRecord(wr WorkRecord) error {
	switch {
	case wr.ID == "":
		return &ValidationError{Field: "workRecordId", Message: "must not be empty"}
	case wr.TenantID == "":
		return &ValidationError{Field: "tenantId", Message: "must not be empty"}
	case wr.UserID == "":
		return &ValidationError{Field: "userId", Message: "must not be empty"}
	case wr.Date.IsZero():
		return &ValidationError{Field: "date", Message: "must be set"}
	case wr.Hours.IsNegative():
		return &ValidationError{Field: "hours", Message: "must not be negative"}
	}
	return nil
}
