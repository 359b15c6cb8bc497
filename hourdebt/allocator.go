/*
allocator.go - FIFO distribution of excess minutes across active debts

PURPOSE:
  Given a user's excess minutes for one work record, pay down that user's
  ACTIVE debts oldest-first until the excess or the debts run out.

ALGORITHM:
  1. Fetch ACTIVE debts ordered by date asc, id asc (the store's contract).
  2. For each debt: applied = min(excess, remaining). Decrement the balance,
     flip to FULLY_PAID at zero, write one Deduction row.
  3. Unconsumed excess is not recorded anywhere - there is nothing left to
     pay, so it is simply lost to the system.

ATOMICITY:
  applyExcess runs inside the caller's transaction (Engine.WithTx). All
  balance updates and deduction inserts for one work record commit or roll
  back together.
*/
package hourdebt

import (
	"context"
	"time"
)

// applyExcess distributes amount minutes across the user's active debts,
// oldest first. dayExcess is the work record's total excess for the day and
// is stamped on every deduction row; on the approval path amount == dayExcess,
// while reconciliation passes only the still-unapplied remainder as amount.
// Zero amount or zero active debts is a no-op with an empty result.
//
// The caller guarantees at-most-once invocation per work record approval;
// Engine.OnWorkRecordApproved enforces that by checking for existing
// deductions before calling in.
func applyExcess(ctx context.Context, s Store, tenantID, userID, workRecordID string, amount, dayExcess int, at time.Time) ([]Deduction, error) {
	if amount <= 0 {
		return nil, nil
	}

	debts, err := s.OpenDebts(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	var out []Deduction
	remaining := amount

	for i := range debts {
		if remaining == 0 {
			break
		}
		debt := &debts[i]

		applied := min(remaining, debt.RemainingMinutes)
		if applied == 0 {
			continue
		}

		debt.RemainingMinutes -= applied
		if debt.RemainingMinutes == 0 {
			debt.Status = DebtFullyPaid
		}
		if err := s.UpdateDebt(ctx, debt); err != nil {
			return nil, err
		}

		ded := Deduction{
			DebtID:          debt.ID,
			WorkRecordID:    workRecordID,
			MinutesDeducted: applied,
			ExcessMinutes:   dayExcess,
			DeductedAt:      at,
		}
		if err := s.InsertDeduction(ctx, &ded); err != nil {
			return nil, err
		}
		out = append(out, ded)

		remaining -= applied
	}

	return out, nil
}

// appliedTotal sums MinutesDeducted over a slice of deductions.
func appliedTotal(deds []Deduction) int {
	total := 0
	for _, d := range deds {
		total += d.MinutesDeducted
	}
	return total
}
