/*
reconcile.go - Monthly review: find and apply missed excess

PURPOSE:
  Detects drift between what should have been deducted and what was -
  records approved out of order, thresholds changed retroactively, manual
  data fixes - and corrects it by running the missed excess through the
  same FIFO allocator the approval path uses.

SCAN WINDOW:
  Per user, approved work records with date >= the oldest non-cancelled
  debt's date are candidates. The debt's business date is the anchor, not
  createdAt: a debt backfilled today for last month must still see last
  month's overtime.

IDEMPOTENCE:
  For each candidate record the sweep only applies
    excess(record) - sum(minutes already deducted for that record)
  so a second run with no new approvals applies zero minutes.

FAILURE ISOLATION:
  The sweep is a sequence of per-user transactions. One user's failure
  rolls back only that user and is counted in UsersFailed; the run keeps
  going, and partial progress is valid.
*/
package hourdebt

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// MonthlyReview sweeps a tenant for excess that was never applied and feeds
// it through the FIFO allocator. Returns the run summary; the summary is
// also persisted for the review history endpoint.
func (e *Engine) MonthlyReview(ctx context.Context, tenantID string) (ReviewSummary, error) {
	if tenantID == "" {
		return ReviewSummary{}, &ValidationError{Field: "tenantId", Message: "must not be empty"}
	}

	summary := ReviewSummary{
		RunID:     uuid.NewString(),
		TenantID:  tenantID,
		StartedAt: e.now(),
	}

	users, err := e.store.Debtors(ctx, tenantID)
	if err != nil {
		return ReviewSummary{}, err
	}

	for _, userID := range users {
		// Interruptible between users; committed progress stands.
		if err := ctx.Err(); err != nil {
			return ReviewSummary{}, err
		}

		applied, gap, err := e.reviewUser(ctx, tenantID, userID)
		if err != nil {
			log.Printf("monthly review: tenant=%s user=%s failed: %v", tenantID, userID, err)
			summary.UsersFailed++
			continue
		}

		summary.AutoAppliedMinutes += applied
		if gap > 0 {
			summary.RemainingGapMinutes += gap
			summary.UsersWithGaps++
		}
	}

	summary.CompletedAt = e.now()
	if err := e.store.SaveReview(ctx, summary); err != nil {
		return ReviewSummary{}, err
	}
	return summary, nil
}

// reviewUser runs one user's reconciliation pass in a single transaction.
// Returns (minutes newly applied, outstanding active minutes after the pass).
func (e *Engine) reviewUser(ctx context.Context, tenantID, userID string) (applied, gap int, err error) {
	threshold := e.thresholds.DailyThresholdHours(tenantID)

	err = e.store.WithTx(ctx, func(s Store) error {
		debts, err := s.NonCancelledDebts(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		if len(debts) == 0 {
			return nil
		}

		// Debts come back date asc, so the first one anchors the scan.
		since := debts[0].Date

		records, err := s.ApprovedWorkRecords(ctx, tenantID, userID, since)
		if err != nil {
			return err
		}

		for _, wr := range records {
			excess := ComputeExcess(wr.Hours, threshold)
			if excess == 0 {
				continue
			}

			already, err := s.MinutesDeductedForWorkRecord(ctx, wr.ID)
			if err != nil {
				return err
			}
			missed := excess - already
			if missed <= 0 {
				continue
			}

			deds, err := applyExcess(ctx, s, tenantID, userID, wr.ID, missed, excess, e.now())
			if err != nil {
				return err
			}
			applied += appliedTotal(deds)
		}

		open, err := s.OpenDebts(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		for _, d := range open {
			gap += d.RemainingMinutes
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return applied, gap, nil
}
