/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

UNITS:
  Minutes are integers everywhere. Hours appear only on the work-record
  approval request, as a decimal string to avoid float drift ("9.5").

VALIDATION:
  Handlers parse and hand off; the engine owns domain validation. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - hourdebt/types.go: Domain entities these mirror
*/
package api

import (
	"time"

	"github.com/zaiken/debt-engine/hourdebt"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// DebtDTO represents an hour debt in API responses.
type DebtDTO struct {
	ID               int64  `json:"id"`
	TenantID         string `json:"tenant_id"`
	UserID           string `json:"user_id"`
	Date             string `json:"date"`
	MinutesOwed      int    `json:"minutes_owed"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Status           string `json:"status"`
	Reason           string `json:"reason,omitempty"`
	AdminReason      string `json:"admin_reason,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// CreateDebtRequest is the request to record a new debt.
type CreateDebtRequest struct {
	TenantID    string `json:"tenant_id"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"` // ISO date
	MinutesOwed int    `json:"minutes_owed"`
	Reason      string `json:"reason,omitempty"`
}

// UpdateDebtRequest is an admin edit. Nil fields are left unchanged;
// admin_reason is mandatory.
type UpdateDebtRequest struct {
	MinutesOwed      *int   `json:"minutes_owed,omitempty"`
	RemainingMinutes *int   `json:"remaining_minutes,omitempty"`
	AdminReason      string `json:"admin_reason"`
}

// CancelDebtRequest carries the optional cancellation note.
type CancelDebtRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ApprovedWorkRecordRequest notifies the engine that a work record entered
// the approved state.
type ApprovedWorkRecordRequest struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Date     string `json:"date"`  // ISO date
	Hours    string `json:"hours"` // decimal string, e.g. "9.5"
}

// AllocationResultDTO is the outcome of one approval.
type AllocationResultDTO struct {
	WorkRecordID    string         `json:"work_record_id"`
	ExcessMinutes   int            `json:"excess_minutes"`
	AppliedMinutes  int            `json:"applied_minutes"`
	Deductions      []DeductionDTO `json:"deductions"`
}

// DeductionDTO represents one ledger row.
type DeductionDTO struct {
	ID              int64  `json:"id"`
	DebtID          int64  `json:"debt_id"`
	WorkRecordID    string `json:"work_record_id"`
	MinutesDeducted int    `json:"minutes_deducted"`
	ExcessMinutes   int    `json:"excess_minutes"`
	DeductedAt      string `json:"deducted_at"`
}

// BalanceDTO is a user's outstanding balance.
type BalanceDTO struct {
	TenantID           string `json:"tenant_id"`
	UserID             string `json:"user_id"`
	OutstandingMinutes int    `json:"outstanding_minutes"`
}

// OutstandingEntryDTO is one row of the tenant dashboard.
type OutstandingEntryDTO struct {
	UserID             string `json:"user_id"`
	OutstandingMinutes int    `json:"outstanding_minutes"`
	OpenDebts          int    `json:"open_debts"`
}

// ReviewSummaryDTO is the outcome of one monthly review run.
type ReviewSummaryDTO struct {
	RunID               string `json:"run_id"`
	TenantID            string `json:"tenant_id"`
	AutoAppliedMinutes  int    `json:"auto_applied_minutes"`
	RemainingGapMinutes int    `json:"remaining_gap_minutes"`
	UsersWithGaps       int    `json:"users_with_gaps"`
	UsersFailed         int    `json:"users_failed"`
	StartedAt           string `json:"started_at"`
	CompletedAt         string `json:"completed_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDebtDTO(d *hourdebt.Debt) DebtDTO {
	return DebtDTO{
		ID:               int64(d.ID),
		TenantID:         d.TenantID,
		UserID:           d.UserID,
		Date:             d.Date.Format("2006-01-02"),
		MinutesOwed:      d.MinutesOwed,
		RemainingMinutes: d.RemainingMinutes,
		Status:           string(d.Status),
		Reason:           d.Reason,
		AdminReason:      d.AdminReason,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
	}
}

func toDeductionDTO(d hourdebt.Deduction) DeductionDTO {
	return DeductionDTO{
		ID:              int64(d.ID),
		DebtID:          int64(d.DebtID),
		WorkRecordID:    d.WorkRecordID,
		MinutesDeducted: d.MinutesDeducted,
		ExcessMinutes:   d.ExcessMinutes,
		DeductedAt:      d.DeductedAt.Format(time.RFC3339),
	}
}

func toDeductionDTOs(deds []hourdebt.Deduction) []DeductionDTO {
	dtos := make([]DeductionDTO, len(deds))
	for i, d := range deds {
		dtos[i] = toDeductionDTO(d)
	}
	return dtos
}

func toReviewSummaryDTO(s hourdebt.ReviewSummary) ReviewSummaryDTO {
	return ReviewSummaryDTO{
		RunID:               s.RunID,
		TenantID:            s.TenantID,
		AutoAppliedMinutes:  s.AutoAppliedMinutes,
		RemainingGapMinutes: s.RemainingGapMinutes,
		UsersWithGaps:       s.UsersWithGaps,
		UsersFailed:         s.UsersFailed,
		StartedAt:           s.StartedAt.Format(time.RFC3339),
		CompletedAt:         s.CompletedAt.Format(time.RFC3339),
	}
}
