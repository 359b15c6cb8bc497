// Package store provides an in-memory Store implementation (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zaiken/debt-engine/hourdebt"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements hourdebt.TxStore with plain maps. WithTx snapshots the
// state and restores it when fn fails, which gives tests real rollback
// semantics; a single mutex serializes writers the way row locks would in
// a relational store.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	nextDebtID      hourdebt.DebtID
	nextDeductionID hourdebt.DeductionID

	debts       map[hourdebt.DebtID]hourdebt.Debt
	deductions  map[hourdebt.DeductionID]hourdebt.Deduction
	workRecords map[string]hourdebt.WorkRecord
	reviews     []hourdebt.ReviewSummary
}

func NewMemory() *Memory {
	return &Memory{
		nextDebtID:      1,
		nextDeductionID: 1,
		debts:           make(map[hourdebt.DebtID]hourdebt.Debt),
		deductions:      make(map[hourdebt.DeductionID]hourdebt.Deduction),
		workRecords:     make(map[string]hourdebt.WorkRecord),
	}
}

// =============================================================================
// DEBTS
// =============================================================================

func (m *Memory) InsertDebt(_ context.Context, d *hourdebt.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.ID = m.nextDebtID
	m.nextDebtID++
	m.debts[d.ID] = *d
	return nil
}

func (m *Memory) GetDebt(_ context.Context, tenantID string, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.debts[id]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	out := d
	return &out, nil
}

func (m *Memory) GetDebtByID(_ context.Context, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.debts[id]
	if !ok {
		return nil, nil
	}
	out := d
	return &out, nil
}

func (m *Memory) ListDebts(_ context.Context, tenantID string, f hourdebt.DebtFilter) ([]hourdebt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.Debt
	for _, d := range m.debts {
		if d.TenantID != tenantID {
			continue
		}
		if f.UserID != "" && d.UserID != f.UserID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	sortDebtsFIFO(out)
	return out, nil
}

func (m *Memory) OpenDebts(_ context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.Debt
	for _, d := range m.debts {
		if d.TenantID == tenantID && d.UserID == userID && d.Status == hourdebt.DebtActive && d.RemainingMinutes > 0 {
			out = append(out, d)
		}
	}
	sortDebtsFIFO(out)
	return out, nil
}

func (m *Memory) NonCancelledDebts(_ context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.Debt
	for _, d := range m.debts {
		if d.TenantID == tenantID && d.UserID == userID && d.Status != hourdebt.DebtCancelled {
			out = append(out, d)
		}
	}
	sortDebtsFIFO(out)
	return out, nil
}

func (m *Memory) UpdateDebt(_ context.Context, d *hourdebt.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.debts[d.ID]; !ok {
		return hourdebt.ErrDebtNotFound
	}
	m.debts[d.ID] = *d
	return nil
}

func (m *Memory) DeleteDebt(_ context.Context, tenantID string, id hourdebt.DebtID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.debts[id]
	if !ok || d.TenantID != tenantID {
		return hourdebt.ErrDebtNotFound
	}
	delete(m.debts, id)
	return nil
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

func (m *Memory) InsertDeduction(_ context.Context, d *hourdebt.Deduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.ID = m.nextDeductionID
	m.nextDeductionID++
	m.deductions[d.ID] = *d
	return nil
}

func (m *Memory) DeductionsByDebt(_ context.Context, debtID hourdebt.DebtID) ([]hourdebt.Deduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.Deduction
	for _, d := range m.deductions {
		if d.DebtID == debtID {
			out = append(out, d)
		}
	}
	sortDeductions(out)
	return out, nil
}

func (m *Memory) DeductionsByWorkRecord(_ context.Context, workRecordID string) ([]hourdebt.Deduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.Deduction
	for _, d := range m.deductions {
		if d.WorkRecordID == workRecordID {
			out = append(out, d)
		}
	}
	sortDeductions(out)
	return out, nil
}

func (m *Memory) DeleteDeduction(_ context.Context, id hourdebt.DeductionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.deductions, id)
	return nil
}

func (m *Memory) MinutesDeductedForWorkRecord(_ context.Context, workRecordID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, d := range m.deductions {
		if d.WorkRecordID == workRecordID {
			total += d.MinutesDeducted
		}
	}
	return total, nil
}

// =============================================================================
// WORK RECORD MIRROR
// =============================================================================

func (m *Memory) UpsertWorkRecord(_ context.Context, wr hourdebt.WorkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workRecords[wr.ID] = wr
	return nil
}

func (m *Memory) DeleteWorkRecord(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.workRecords, id)
	return nil
}

func (m *Memory) ApprovedWorkRecords(_ context.Context, tenantID, userID string, since time.Time) ([]hourdebt.WorkRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.WorkRecord
	for _, wr := range m.workRecords {
		if wr.TenantID == tenantID && wr.UserID == userID && !wr.Date.Before(since) {
			out = append(out, wr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Debtors(_ context.Context, tenantID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, d := range m.debts {
		if d.TenantID == tenantID && d.Status != hourdebt.DebtCancelled {
			seen[d.UserID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

// =============================================================================
// REVIEW RUNS
// =============================================================================

func (m *Memory) SaveReview(_ context.Context, s hourdebt.ReviewSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reviews = append(m.reviews, s)
	return nil
}

func (m *Memory) ListReviews(_ context.Context, tenantID string) ([]hourdebt.ReviewSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []hourdebt.ReviewSummary
	for _, s := range m.reviews {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx serializes the unit of work and restores a snapshot if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(hourdebt.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txView{m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

var _ hourdebt.TxStore = (*Memory)(nil)

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := memorySnapshot{
		nextDebtID:      m.nextDebtID,
		nextDeductionID: m.nextDeductionID,
		debts:           make(map[hourdebt.DebtID]hourdebt.Debt, len(m.debts)),
		deductions:      make(map[hourdebt.DeductionID]hourdebt.Deduction, len(m.deductions)),
		workRecords:     make(map[string]hourdebt.WorkRecord, len(m.workRecords)),
	}
	for k, v := range m.debts {
		snap.debts[k] = v
	}
	for k, v := range m.deductions {
		snap.deductions[k] = v
	}
	for k, v := range m.workRecords {
		snap.workRecords[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextDebtID = snap.nextDebtID
	m.nextDeductionID = snap.nextDeductionID
	m.debts = snap.debts
	m.deductions = snap.deductions
	m.workRecords = snap.workRecords
}

type memorySnapshot struct {
	nextDebtID      hourdebt.DebtID
	nextDeductionID hourdebt.DeductionID
	debts           map[hourdebt.DebtID]hourdebt.Debt
	deductions      map[hourdebt.DeductionID]hourdebt.Deduction
	workRecords     map[string]hourdebt.WorkRecord
}

// txView is the Store handed to WithTx callbacks. It delegates to the
// parent; isolation comes from txMu serializing whole transactions.
type txView struct {
	*Memory
}

// =============================================================================
// SORT HELPERS
// =============================================================================

func sortDebtsFIFO(debts []hourdebt.Debt) {
	sort.Slice(debts, func(i, j int) bool {
		if !debts[i].Date.Equal(debts[j].Date) {
			return debts[i].Date.Before(debts[j].Date)
		}
		return debts[i].ID < debts[j].ID
	})
}

func sortDeductions(deds []hourdebt.Deduction) {
	sort.Slice(deds, func(i, j int) bool {
		if !deds[i].DeductedAt.Equal(deds[j].DeductedAt) {
			return deds[i].DeductedAt.Before(deds[j].DeductedAt)
		}
		return deds[i].ID < deds[j].ID
	})
}
