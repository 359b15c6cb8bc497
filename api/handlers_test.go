/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Work-record approval and reversal over HTTP
- Debt CRUD status codes and tenant scoping
- Balance and review endpoints
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaiken/debt-engine/hourdebt"
	"github.com/zaiken/debt-engine/hourdebt/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := hourdebt.NewEngine(store.NewMemory(), nil)
	srv := httptest.NewServer(NewRouter(NewHandler(engine)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createDebt(t *testing.T, srv *httptest.Server, tenant, user string, minutes int, date string) DebtDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/debts", CreateDebtRequest{
		TenantID:    tenant,
		UserID:      user,
		Date:        date,
		MinutesOwed: minutes,
		Reason:      "left early",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[DebtDTO](t, resp)
}

// =============================================================================
// WORK RECORD ENDPOINTS
// =============================================================================

func TestApproveWorkRecord_Allocates(t *testing.T) {
	// GIVEN: A debt of 120 minutes
	// WHEN: POST /api/work-records/approved with a 9.5h day
	// THEN: 90 minutes are applied and returned
	srv := newTestServer(t)
	createDebt(t, srv, "acme", "u1", 120, "2026-07-01")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", ApprovedWorkRecordRequest{
		ID: "wr-1", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "9.5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[AllocationResultDTO](t, resp)
	assert.Equal(t, "wr-1", result.WorkRecordID)
	assert.Equal(t, 90, result.ExcessMinutes)
	assert.Equal(t, 90, result.AppliedMinutes)
	require.Len(t, result.Deductions, 1)
	assert.Equal(t, 90, result.Deductions[0].MinutesDeducted)
}

func TestApproveWorkRecord_DoubleApprovalConflicts(t *testing.T) {
	srv := newTestServer(t)
	createDebt(t, srv, "acme", "u1", 120, "2026-07-01")

	req := ApprovedWorkRecordRequest{
		ID: "wr-1", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "9.5",
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestApproveWorkRecord_BadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  ApprovedWorkRecordRequest
	}{
		{"bad date", ApprovedWorkRecordRequest{ID: "wr", TenantID: "acme", UserID: "u1", Date: "July 10", Hours: "9"}},
		{"bad hours", ApprovedWorkRecordRequest{ID: "wr", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "lots"}},
		{"missing tenant", ApprovedWorkRecordRequest{ID: "wr", UserID: "u1", Date: "2026-07-10", Hours: "9"}},
		{"negative hours", ApprovedWorkRecordRequest{ID: "wr", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestReverseWorkRecord_RestoresBalance(t *testing.T) {
	// GIVEN: A debt partially paid by a work record
	// WHEN: POST /api/work-records/{id}/reverse
	// THEN: The balance is restored; reversing again is still 200
	srv := newTestServer(t)
	createDebt(t, srv, "acme", "u1", 120, "2026-07-01")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", ApprovedWorkRecordRequest{
		ID: "wr-1", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "9.5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/work-records/wr-1/reverse", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/balance?tenant_id=acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decode[BalanceDTO](t, resp)
	assert.Equal(t, 120, balance.OutstandingMinutes)

	// Idempotent
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/work-records/wr-1/reverse", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// DEBT ENDPOINTS
// =============================================================================

func TestDebtCRUD(t *testing.T) {
	srv := newTestServer(t)

	debt := createDebt(t, srv, "acme", "u1", 90, "2026-07-01")
	assert.Equal(t, "active", debt.Status)
	assert.Equal(t, 90, debt.RemainingMinutes)

	// List requires tenant_id
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/debts", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/debts?tenant_id=acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	debts := decode[[]DebtDTO](t, resp)
	require.Len(t, debts, 1)

	// Get within the wrong tenant is 404
	url := fmt.Sprintf("%s/api/debts/%d?tenant_id=globex", srv.URL, debt.ID)
	resp = doJSON(t, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Update without admin_reason is 400
	url = fmt.Sprintf("%s/api/debts/%d?tenant_id=acme", srv.URL, debt.ID)
	remaining := 45
	resp = doJSON(t, http.MethodPut, url, UpdateDebtRequest{RemainingMinutes: &remaining})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// With a reason it succeeds
	resp = doJSON(t, http.MethodPut, url, UpdateDebtRequest{RemainingMinutes: &remaining, AdminReason: "agreed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[DebtDTO](t, resp)
	assert.Equal(t, 45, updated.RemainingMinutes)
	assert.Equal(t, "agreed", updated.AdminReason)

	// Cancel, then a second cancel conflicts
	cancelURL := fmt.Sprintf("%s/api/debts/%d/cancel?tenant_id=acme", srv.URL, debt.ID)
	resp = doJSON(t, http.MethodPost, cancelURL, CancelDebtRequest{Reason: "waived"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decode[DebtDTO](t, resp)
	assert.Equal(t, "cancelled", cancelled.Status)

	resp = doJSON(t, http.MethodPost, cancelURL, CancelDebtRequest{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Delete
	resp = doJSON(t, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateDebt_InvalidMinutes(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/debts", CreateDebtRequest{
		TenantID: "acme", UserID: "u1", Date: "2026-07-01", MinutesOwed: 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetDeductions(t *testing.T) {
	srv := newTestServer(t)
	debt := createDebt(t, srv, "acme", "u1", 120, "2026-07-01")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", ApprovedWorkRecordRequest{
		ID: "wr-1", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "9.5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	url := fmt.Sprintf("%s/api/debts/%d/deductions?tenant_id=acme", srv.URL, debt.ID)
	resp = doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deds := decode[[]DeductionDTO](t, resp)
	require.Len(t, deds, 1)
	assert.Equal(t, "wr-1", deds[0].WorkRecordID)
	assert.Equal(t, 90, deds[0].MinutesDeducted)
}

// =============================================================================
// TENANT ENDPOINTS
// =============================================================================

func TestOutstandingDashboard(t *testing.T) {
	srv := newTestServer(t)
	createDebt(t, srv, "acme", "u1", 60, "2026-06-01")
	createDebt(t, srv, "acme", "u1", 30, "2026-07-01")
	createDebt(t, srv, "acme", "u2", 45, "2026-07-01")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/tenants/acme/outstanding", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]OutstandingEntryDTO](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, 90, entries[0].OutstandingMinutes)
	assert.Equal(t, 2, entries[0].OpenDebts)
}

func TestReviewEndpoints(t *testing.T) {
	// GIVEN: Overtime approved before any debt existed
	// WHEN: POST /api/tenants/{id}/review
	// THEN: The sweep applies it, and the run shows up in the history
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-records/approved", ApprovedWorkRecordRequest{
		ID: "wr-1", TenantID: "acme", UserID: "u1", Date: "2026-07-10", Hours: "9.5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	createDebt(t, srv, "acme", "u1", 120, "2026-07-01")

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tenants/acme/review", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[ReviewSummaryDTO](t, resp)
	assert.Equal(t, 90, summary.AutoAppliedMinutes)
	assert.Equal(t, 30, summary.RemainingGapMinutes)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tenants/acme/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	runs := decode[[]ReviewSummaryDTO](t, resp)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].RunID)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
