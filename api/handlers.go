/*
handlers.go - HTTP API handlers for the hour-debt engine

PURPOSE:
  Exposes the debt engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine.

ENDPOINTS:
  Work records (called by the time-tracking subsystem):
    POST   /api/work-records/approved      Record approved, allocate excess
    POST   /api/work-records/{id}/reverse  Record left approved, undo

  Debts (admin):
    GET    /api/debts                      List a tenant's debts
    POST   /api/debts                      Record a new debt
    GET    /api/debts/{id}                 Get one debt
    PUT    /api/debts/{id}                 Admin edit (reason mandatory)
    DELETE /api/debts/{id}                 Delete debt + its deductions
    POST   /api/debts/{id}/cancel          Cancel (terminal)
    GET    /api/debts/{id}/deductions      Deduction history

  Balances:
    GET    /api/users/{id}/balance         One user's outstanding minutes
    GET    /api/tenants/{id}/outstanding   Per-user dashboard rows

  Monthly review:
    POST   /api/tenants/{id}/review        Run the reconciliation sweep
    GET    /api/tenants/{id}/reviews       Past run summaries

TENANT SCOPING:
  Tenant-scoped routes take the tenant id from the URL or the mandatory
  tenant_id query parameter. A debt outside that tenant is a 404, never a
  hint that the id exists elsewhere.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Debt not found (or wrong tenant)
  - 409: Conflict (already allocated, cancelled debt)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. The engine sits behind the
  admin app's gateway, which owns authn/authz.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - hourdebt/engine.go: The operations these handlers expose
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/zaiken/debt-engine/hourdebt"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *hourdebt.Engine
}

// NewHandler creates a new handler around the engine.
func NewHandler(engine *hourdebt.Engine) *Handler {
	return &Handler{Engine: engine}
}

// =============================================================================
// WORK RECORD HANDLERS
// =============================================================================

// ApproveWorkRecord handles the approved transition of a work record:
// compute the day's excess and allocate it FIFO across the user's debts.
// POST /api/work-records/approved
func (h *Handler) ApproveWorkRecord(w http.ResponseWriter, r *http.Request) {
	var req ApprovedWorkRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD", err)
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours, want a decimal string", err)
		return
	}

	deds, err := h.Engine.OnWorkRecordApproved(r.Context(), hourdebt.WorkRecord{
		ID:       req.ID,
		TenantID: req.TenantID,
		UserID:   req.UserID,
		Date:     date,
		Hours:    hours,
	})
	if err != nil {
		writeEngineError(w, "Failed to allocate work record", err)
		return
	}

	applied := 0
	excess := 0
	for _, d := range deds {
		applied += d.MinutesDeducted
		excess = d.ExcessMinutes
	}
	if applied > 0 {
		AllocationsTotal.Inc()
		AllocatedMinutesTotal.Add(float64(applied))
	}

	writeJSON(w, http.StatusOK, AllocationResultDTO{
		WorkRecordID:   req.ID,
		ExcessMinutes:  excess,
		AppliedMinutes: applied,
		Deductions:     toDeductionDTOs(deds),
	})
}

// ReverseWorkRecord undoes all deductions tied to a work record. Idempotent.
// POST /api/work-records/{id}/reverse
func (h *Handler) ReverseWorkRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Engine.ReverseWorkRecord(r.Context(), id); err != nil {
		writeEngineError(w, "Failed to reverse work record", err)
		return
	}
	ReversalsTotal.Inc()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reversed"})
}

// =============================================================================
// DEBT HANDLERS
// =============================================================================

// ListDebts returns a tenant's debts, optionally filtered by user and status.
// GET /api/debts?tenant_id=&user_id=&status=
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	filter := hourdebt.DebtFilter{
		UserID: r.URL.Query().Get("user_id"),
		Status: hourdebt.DebtStatus(r.URL.Query().Get("status")),
	}

	debts, err := h.Engine.Store().ListDebts(r.Context(), tenantID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list debts", err)
		return
	}

	dtos := make([]DebtDTO, len(debts))
	for i := range debts {
		dtos[i] = toDebtDTO(&debts[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDebt records a new debt.
// POST /api/debts
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD", err)
		return
	}

	debt, err := h.Engine.CreateDebt(r.Context(), hourdebt.CreateDebtInput{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		MinutesOwed: req.MinutesOwed,
		Date:        date,
		Reason:      req.Reason,
	})
	if err != nil {
		writeEngineError(w, "Failed to create debt", err)
		return
	}

	writeJSON(w, http.StatusCreated, toDebtDTO(debt))
}

// GetDebt returns a single debt within the caller's tenant.
// GET /api/debts/{id}?tenant_id=
func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	debt, err := h.Engine.Store().GetDebt(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get debt", err)
		return
	}
	if debt == nil {
		writeError(w, http.StatusNotFound, "Debt not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toDebtDTO(debt))
}

// UpdateDebt applies an admin edit. admin_reason is mandatory.
// PUT /api/debts/{id}?tenant_id=
func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	var req UpdateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	debt, err := h.Engine.UpdateDebt(r.Context(), tenantID, id, hourdebt.UpdateDebtInput{
		MinutesOwed:      req.MinutesOwed,
		RemainingMinutes: req.RemainingMinutes,
		AdminReason:      req.AdminReason,
	})
	if err != nil {
		writeEngineError(w, "Failed to update debt", err)
		return
	}

	writeJSON(w, http.StatusOK, toDebtDTO(debt))
}

// CancelDebt sets the terminal CANCELLED status.
// POST /api/debts/{id}/cancel?tenant_id=
func (h *Handler) CancelDebt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	var req CancelDebtRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	debt, err := h.Engine.CancelDebt(r.Context(), tenantID, id, req.Reason)
	if err != nil {
		writeEngineError(w, "Failed to cancel debt", err)
		return
	}

	writeJSON(w, http.StatusOK, toDebtDTO(debt))
}

// DeleteDebt removes a debt and its deduction rows.
// DELETE /api/debts/{id}?tenant_id=
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	if err := h.Engine.DeleteDebt(r.Context(), tenantID, id); err != nil {
		writeEngineError(w, "Failed to delete debt", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetDeductions returns a debt's ledger rows, oldest first.
// GET /api/debts/{id}/deductions?tenant_id=
func (h *Handler) GetDeductions(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	deds, err := h.Engine.DeductionHistory(r.Context(), tenantID, id)
	if err != nil {
		writeEngineError(w, "Failed to get deductions", err)
		return
	}

	writeJSON(w, http.StatusOK, toDeductionDTOs(deds))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns a user's outstanding minutes.
// GET /api/users/{id}/balance?tenant_id=
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "id")

	minutes, err := h.Engine.Balance(r.Context(), tenantID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		TenantID:           tenantID,
		UserID:             userID,
		OutstandingMinutes: minutes,
	})
}

// GetOutstanding returns per-user outstanding minutes for a tenant.
// GET /api/tenants/{id}/outstanding
func (h *Handler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")

	entries, err := h.Engine.Outstanding(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get outstanding balances", err)
		return
	}

	dtos := make([]OutstandingEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = OutstandingEntryDTO{
			UserID:             e.UserID,
			OutstandingMinutes: e.OutstandingMinutes,
			OpenDebts:          e.OpenDebts,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MONTHLY REVIEW HANDLERS
// =============================================================================

// RunReview triggers the reconciliation sweep for a tenant.
// POST /api/tenants/{id}/review
func (h *Handler) RunReview(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")

	summary, err := h.Engine.MonthlyReview(r.Context(), tenantID)
	if err != nil {
		ReviewRunsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "Review run failed", err)
		return
	}
	if summary.UsersFailed > 0 {
		ReviewRunsTotal.WithLabelValues("partial").Inc()
	} else {
		ReviewRunsTotal.WithLabelValues("ok").Inc()
	}

	writeJSON(w, http.StatusOK, toReviewSummaryDTO(summary))
}

// ListReviews returns a tenant's past run summaries, newest first.
// GET /api/tenants/{id}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")

	runs, err := h.Engine.Store().ListReviews(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reviews", err)
		return
	}

	dtos := make([]ReviewSummaryDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toReviewSummaryDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id query parameter is required", nil)
		return "", false
	}
	return tenantID, true
}

func debtID(w http.ResponseWriter, r *http.Request) (hourdebt.DebtID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debt id", err)
		return 0, false
	}
	return hourdebt.DebtID(id), true
}

// writeEngineError maps engine errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case hourdebt.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case hourdebt.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case hourdebt.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
