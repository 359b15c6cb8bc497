/*
reversal.go - Undoing a work record's deductions

PURPOSE:
  When an approved work record is later rejected or deleted, every
  deduction it produced is reversed: the referenced debts get their minutes
  back and the ledger rows are removed.

STATUS RULES:
  FULLY_PAID reverts to ACTIVE when minutes come back. CANCELLED takes
  precedence: its bookkeeping is restored but the status never flips away
  from CANCELLED.

IDEMPOTENCE:
  Reversing twice is a no-op the second time - the deduction rows are gone.
*/
package hourdebt

import "context"

// reverseWorkRecord undoes all deductions referencing workRecordID and drops
// the approved-record mirror. Runs inside the caller's transaction. No-op if
// the record never produced deductions.
func reverseWorkRecord(ctx context.Context, s Store, workRecordID string) error {
	deds, err := s.DeductionsByWorkRecord(ctx, workRecordID)
	if err != nil {
		return err
	}

	for _, ded := range deds {
		debt, err := s.GetDebtByID(ctx, ded.DebtID)
		if err != nil {
			return err
		}
		if debt == nil {
			// Debt was cascade-deleted along with its deductions; nothing
			// to restore for this row.
			continue
		}

		debt.RemainingMinutes += ded.MinutesDeducted
		if debt.RemainingMinutes > debt.MinutesOwed {
			debt.RemainingMinutes = debt.MinutesOwed
		}
		if debt.Status == DebtFullyPaid {
			debt.Status = DebtActive
		}
		if err := s.UpdateDebt(ctx, debt); err != nil {
			return err
		}

		if err := s.DeleteDeduction(ctx, ded.ID); err != nil {
			return err
		}
	}

	return s.DeleteWorkRecord(ctx, workRecordID)
}
