/*
Package sqlite provides a SQLite-backed implementation of hourdebt.TxStore.

PURPOSE:
  Production persistence for debts, deductions, the approved work-record
  mirror, and monthly review runs. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  debts:        one row per hour debt, balance mutated only via the engine
  deductions:   ledger rows tying a work record's excess to a debt
  work_records: mirror of approved records, scanned by reconciliation
  reviews:      monthly review run summaries

ORDERING:
  FIFO order is enforced at the query level (ORDER BY date ASC, id ASC),
  never assumed from insertion order.

CONCURRENCY:
  A single writer mutex is held for the duration of each WithTx unit, which
  serializes concurrent allocation units the way SELECT ... FOR UPDATE row
  locks would on PostgreSQL. Two concurrent approvals for the same user
  therefore observe each other's committed balances instead of racing on a
  stale remaining_minutes.

WAL MODE:
  SQLite is opened with WAL so readers don't block behind the writer.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool with versioned migrations.

SEE ALSO:
  - hourdebt/store.go: interface definitions
  - hourdebt/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/zaiken/debt-engine/hourdebt"
)

// Store implements hourdebt.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS debts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		minutes_owed INTEGER NOT NULL,
		remaining_minutes INTEGER NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		admin_reason TEXT,
		created_at TEXT NOT NULL,
		CHECK (remaining_minutes >= 0),
		CHECK (remaining_minutes <= minutes_owed)
	);

	-- FIFO selection (hot path): active debts for one user, oldest first
	CREATE INDEX IF NOT EXISTS idx_debts_tenant_user_status
		ON debts(tenant_id, user_id, status, date ASC, id ASC);
	CREATE INDEX IF NOT EXISTS idx_debts_tenant_status
		ON debts(tenant_id, status);

	CREATE TABLE IF NOT EXISTS deductions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debt_id INTEGER NOT NULL REFERENCES debts(id),
		work_record_id TEXT NOT NULL,
		minutes_deducted INTEGER NOT NULL,
		excess_minutes INTEGER NOT NULL,
		deducted_at TEXT NOT NULL,
		CHECK (minutes_deducted > 0),
		CHECK (minutes_deducted <= excess_minutes)
	);

	CREATE INDEX IF NOT EXISTS idx_deductions_debt
		ON deductions(debt_id);
	-- Reversal and double-application guard
	CREATE INDEX IF NOT EXISTS idx_deductions_work_record
		ON deductions(work_record_id);

	-- Mirror of approved work records, scanned by reconciliation
	CREATE TABLE IF NOT EXISTS work_records (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_records_tenant_user_date
		ON work_records(tenant_id, user_id, date);

	CREATE TABLE IF NOT EXISTS reviews (
		run_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		auto_applied_minutes INTEGER NOT NULL,
		remaining_gap_minutes INTEGER NOT NULL,
		users_with_gaps INTEGER NOT NULL,
		users_failed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_tenant
		ON reviews(tenant_id, started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EXECUTOR - Shared query surface for *sql.DB and *sql.Tx
// =============================================================================

// executor lets every query run either on the pooled connection or inside a
// transaction. Reads within WithTx must see the unit's own uncommitted
// writes (reconciliation re-reads balances it just updated), so reads route
// through the executor too.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const dateLayout = "2006-01-02"

// =============================================================================
// DEBTS
// =============================================================================

func (s *Store) InsertDebt(ctx context.Context, d *hourdebt.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertDebt(ctx, s.db, d)
}

func insertDebt(ctx context.Context, ex executor, d *hourdebt.Debt) error {
	res, err := ex.ExecContext(ctx, `
		INSERT INTO debts
		(tenant_id, user_id, date, minutes_owed, remaining_minutes, status, reason, admin_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.TenantID, d.UserID, d.Date.Format(dateLayout),
		d.MinutesOwed, d.RemainingMinutes, d.Status,
		d.Reason, d.AdminReason, d.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = hourdebt.DebtID(id)
	return nil
}

const debtColumns = `id, tenant_id, user_id, date, minutes_owed, remaining_minutes, status, reason, admin_reason, created_at`

func (s *Store) GetDebt(ctx context.Context, tenantID string, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDebt(ctx, s.db, `WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) GetDebtByID(ctx context.Context, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDebt(ctx, s.db, `WHERE id = ?`, id)
}

func getDebt(ctx context.Context, ex executor, where string, args ...any) (*hourdebt.Debt, error) {
	row := ex.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts `+where, args...)
	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func listDebtsQuery(tenantID string, f hourdebt.DebtFilter) (string, []any) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY date ASC, id ASC`
	return query, args
}

func (s *Store) ListDebts(ctx context.Context, tenantID string, f hourdebt.DebtFilter) ([]hourdebt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query, args := listDebtsQuery(tenantID, f)
	return queryDebts(ctx, s.db, query, args...)
}

func (s *Store) OpenDebts(ctx context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openDebts(ctx, s.db, tenantID, userID)
}

func openDebts(ctx context.Context, ex executor, tenantID, userID string) ([]hourdebt.Debt, error) {
	// Explicit FIFO order: oldest debt first, ids break ties.
	return queryDebts(ctx, ex, `
		SELECT `+debtColumns+` FROM debts
		WHERE tenant_id = ? AND user_id = ? AND status = ? AND remaining_minutes > 0
		ORDER BY date ASC, id ASC`,
		tenantID, userID, hourdebt.DebtActive)
}

func (s *Store) NonCancelledDebts(ctx context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonCancelledDebts(ctx, s.db, tenantID, userID)
}

func nonCancelledDebts(ctx context.Context, ex executor, tenantID, userID string) ([]hourdebt.Debt, error) {
	return queryDebts(ctx, ex, `
		SELECT `+debtColumns+` FROM debts
		WHERE tenant_id = ? AND user_id = ? AND status != ?
		ORDER BY date ASC, id ASC`,
		tenantID, userID, hourdebt.DebtCancelled)
}

func (s *Store) UpdateDebt(ctx context.Context, d *hourdebt.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateDebt(ctx, s.db, d)
}

func updateDebt(ctx context.Context, ex executor, d *hourdebt.Debt) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE debts
		SET minutes_owed = ?, remaining_minutes = ?, status = ?, admin_reason = ?
		WHERE id = ?`,
		d.MinutesOwed, d.RemainingMinutes, d.Status, d.AdminReason, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt %d: %w", d.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hourdebt.ErrDebtNotFound
	}
	return nil
}

func (s *Store) DeleteDebt(ctx context.Context, tenantID string, id hourdebt.DebtID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteDebt(ctx, s.db, tenantID, id)
}

func deleteDebt(ctx context.Context, ex executor, tenantID string, id hourdebt.DebtID) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM debts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hourdebt.ErrDebtNotFound
	}
	return nil
}

func queryDebts(ctx context.Context, ex executor, query string, args ...any) ([]hourdebt.Debt, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var debts []hourdebt.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*hourdebt.Debt, error) {
	var (
		d         hourdebt.Debt
		date      string
		reason    sql.NullString
		adminNote sql.NullString
		createdAt string
	)
	err := row.Scan(
		&d.ID, &d.TenantID, &d.UserID, &date,
		&d.MinutesOwed, &d.RemainingMinutes, &d.Status,
		&reason, &adminNote, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	d.Date, _ = time.Parse(dateLayout, date)
	d.Reason = reason.String
	d.AdminReason = adminNote.String
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &d, nil
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

func (s *Store) InsertDeduction(ctx context.Context, d *hourdebt.Deduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertDeduction(ctx, s.db, d)
}

func insertDeduction(ctx context.Context, ex executor, d *hourdebt.Deduction) error {
	res, err := ex.ExecContext(ctx, `
		INSERT INTO deductions (debt_id, work_record_id, minutes_deducted, excess_minutes, deducted_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.DebtID, d.WorkRecordID, d.MinutesDeducted, d.ExcessMinutes,
		d.DeductedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert deduction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = hourdebt.DeductionID(id)
	return nil
}

const deductionColumns = `id, debt_id, work_record_id, minutes_deducted, excess_minutes, deducted_at`

func (s *Store) DeductionsByDebt(ctx context.Context, debtID hourdebt.DebtID) ([]hourdebt.Deduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deductionsByDebt(ctx, s.db, debtID)
}

func deductionsByDebt(ctx context.Context, ex executor, debtID hourdebt.DebtID) ([]hourdebt.Deduction, error) {
	return queryDeductions(ctx, ex, `
		SELECT `+deductionColumns+` FROM deductions
		WHERE debt_id = ?
		ORDER BY deducted_at ASC, id ASC`, debtID)
}

func (s *Store) DeductionsByWorkRecord(ctx context.Context, workRecordID string) ([]hourdebt.Deduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deductionsByWorkRecord(ctx, s.db, workRecordID)
}

func deductionsByWorkRecord(ctx context.Context, ex executor, workRecordID string) ([]hourdebt.Deduction, error) {
	return queryDeductions(ctx, ex, `
		SELECT `+deductionColumns+` FROM deductions
		WHERE work_record_id = ?
		ORDER BY deducted_at ASC, id ASC`, workRecordID)
}

func (s *Store) DeleteDeduction(ctx context.Context, id hourdebt.DeductionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM deductions WHERE id = ?`, id)
	return err
}

func (s *Store) MinutesDeductedForWorkRecord(ctx context.Context, workRecordID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return minutesDeductedForWorkRecord(ctx, s.db, workRecordID)
}

func minutesDeductedForWorkRecord(ctx context.Context, ex executor, workRecordID string) (int, error) {
	var total int
	err := ex.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(minutes_deducted), 0) FROM deductions WHERE work_record_id = ?`,
		workRecordID,
	).Scan(&total)
	return total, err
}

func queryDeductions(ctx context.Context, ex executor, query string, args ...any) ([]hourdebt.Deduction, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deductions: %w", err)
	}
	defer rows.Close()

	var deds []hourdebt.Deduction
	for rows.Next() {
		var (
			d          hourdebt.Deduction
			deductedAt string
		)
		if err := rows.Scan(&d.ID, &d.DebtID, &d.WorkRecordID, &d.MinutesDeducted, &d.ExcessMinutes, &deductedAt); err != nil {
			return nil, err
		}
		d.DeductedAt, _ = time.Parse(time.RFC3339, deductedAt)
		deds = append(deds, d)
	}
	return deds, rows.Err()
}

// =============================================================================
// WORK RECORD MIRROR
// =============================================================================

func (s *Store) UpsertWorkRecord(ctx context.Context, wr hourdebt.WorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertWorkRecord(ctx, s.db, wr)
}

func upsertWorkRecord(ctx context.Context, ex executor, wr hourdebt.WorkRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO work_records (id, tenant_id, user_id, date, hours)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			user_id = excluded.user_id,
			date = excluded.date,
			hours = excluded.hours`,
		wr.ID, wr.TenantID, wr.UserID, wr.Date.Format(dateLayout), wr.Hours.String(),
	)
	return err
}

func (s *Store) DeleteWorkRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteWorkRecord(ctx, s.db, id)
}

func deleteWorkRecord(ctx context.Context, ex executor, id string) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM work_records WHERE id = ?`, id)
	return err
}

func (s *Store) ApprovedWorkRecords(ctx context.Context, tenantID, userID string, since time.Time) ([]hourdebt.WorkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return approvedWorkRecords(ctx, s.db, tenantID, userID, since)
}

func approvedWorkRecords(ctx context.Context, ex executor, tenantID, userID string, since time.Time) ([]hourdebt.WorkRecord, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, tenant_id, user_id, date, hours FROM work_records
		WHERE tenant_id = ? AND user_id = ? AND date >= ?
		ORDER BY date ASC, id ASC`,
		tenantID, userID, since.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query work records: %w", err)
	}
	defer rows.Close()

	var records []hourdebt.WorkRecord
	for rows.Next() {
		var (
			wr    hourdebt.WorkRecord
			date  string
			hours string
		)
		if err := rows.Scan(&wr.ID, &wr.TenantID, &wr.UserID, &date, &hours); err != nil {
			return nil, err
		}
		wr.Date, _ = time.Parse(dateLayout, date)
		wr.Hours, err = decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("bad hours value for work record %s: %w", wr.ID, err)
		}
		records = append(records, wr)
	}
	return records, rows.Err()
}

func (s *Store) Debtors(ctx context.Context, tenantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return debtors(ctx, s.db, tenantID)
}

func debtors(ctx context.Context, ex executor, tenantID string) ([]string, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM debts
		WHERE tenant_id = ? AND status != ?
		ORDER BY user_id ASC`,
		tenantID, hourdebt.DebtCancelled,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// REVIEW RUNS
// =============================================================================

func (s *Store) SaveReview(ctx context.Context, sum hourdebt.ReviewSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveReview(ctx, s.db, sum)
}

func saveReview(ctx context.Context, ex executor, sum hourdebt.ReviewSummary) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO reviews
		(run_id, tenant_id, auto_applied_minutes, remaining_gap_minutes, users_with_gaps, users_failed, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.TenantID,
		sum.AutoAppliedMinutes, sum.RemainingGapMinutes, sum.UsersWithGaps, sum.UsersFailed,
		sum.StartedAt.UTC().Format(time.RFC3339), sum.CompletedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListReviews(ctx context.Context, tenantID string) ([]hourdebt.ReviewSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listReviews(ctx, s.db, tenantID)
}

func listReviews(ctx context.Context, ex executor, tenantID string) ([]hourdebt.ReviewSummary, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT run_id, tenant_id, auto_applied_minutes, remaining_gap_minutes, users_with_gaps, users_failed, started_at, completed_at
		FROM reviews
		WHERE tenant_id = ?
		ORDER BY started_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hourdebt.ReviewSummary
	for rows.Next() {
		var (
			sum                    hourdebt.ReviewSummary
			startedAt, completedAt string
		)
		if err := rows.Scan(&sum.RunID, &sum.TenantID, &sum.AutoAppliedMinutes, &sum.RemainingGapMinutes,
			&sum.UsersWithGaps, &sum.UsersFailed, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		sum.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		sum.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes a function within a database transaction. The writer
// mutex is held for the whole unit, serializing concurrent allocation and
// reversal units (see package comment).
func (s *Store) WithTx(ctx context.Context, fn func(hourdebt.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

var _ hourdebt.TxStore = (*Store)(nil)

// txStore runs every Store method on the open transaction so reads observe
// the unit's own writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) InsertDebt(ctx context.Context, d *hourdebt.Debt) error {
	return insertDebt(ctx, ts.tx, d)
}

func (ts *txStore) GetDebt(ctx context.Context, tenantID string, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	return getDebt(ctx, ts.tx, `WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (ts *txStore) GetDebtByID(ctx context.Context, id hourdebt.DebtID) (*hourdebt.Debt, error) {
	return getDebt(ctx, ts.tx, `WHERE id = ?`, id)
}

func (ts *txStore) ListDebts(ctx context.Context, tenantID string, f hourdebt.DebtFilter) ([]hourdebt.Debt, error) {
	query, args := listDebtsQuery(tenantID, f)
	return queryDebts(ctx, ts.tx, query, args...)
}

func (ts *txStore) OpenDebts(ctx context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	return openDebts(ctx, ts.tx, tenantID, userID)
}

func (ts *txStore) NonCancelledDebts(ctx context.Context, tenantID, userID string) ([]hourdebt.Debt, error) {
	return nonCancelledDebts(ctx, ts.tx, tenantID, userID)
}

func (ts *txStore) UpdateDebt(ctx context.Context, d *hourdebt.Debt) error {
	return updateDebt(ctx, ts.tx, d)
}

func (ts *txStore) DeleteDebt(ctx context.Context, tenantID string, id hourdebt.DebtID) error {
	return deleteDebt(ctx, ts.tx, tenantID, id)
}

func (ts *txStore) InsertDeduction(ctx context.Context, d *hourdebt.Deduction) error {
	return insertDeduction(ctx, ts.tx, d)
}

func (ts *txStore) DeductionsByDebt(ctx context.Context, debtID hourdebt.DebtID) ([]hourdebt.Deduction, error) {
	return deductionsByDebt(ctx, ts.tx, debtID)
}

func (ts *txStore) DeductionsByWorkRecord(ctx context.Context, workRecordID string) ([]hourdebt.Deduction, error) {
	return deductionsByWorkRecord(ctx, ts.tx, workRecordID)
}

func (ts *txStore) DeleteDeduction(ctx context.Context, id hourdebt.DeductionID) error {
	_, err := ts.tx.ExecContext(ctx, `DELETE FROM deductions WHERE id = ?`, id)
	return err
}

func (ts *txStore) MinutesDeductedForWorkRecord(ctx context.Context, workRecordID string) (int, error) {
	return minutesDeductedForWorkRecord(ctx, ts.tx, workRecordID)
}

func (ts *txStore) UpsertWorkRecord(ctx context.Context, wr hourdebt.WorkRecord) error {
	return upsertWorkRecord(ctx, ts.tx, wr)
}

func (ts *txStore) DeleteWorkRecord(ctx context.Context, id string) error {
	return deleteWorkRecord(ctx, ts.tx, id)
}

func (ts *txStore) ApprovedWorkRecords(ctx context.Context, tenantID, userID string, since time.Time) ([]hourdebt.WorkRecord, error) {
	return approvedWorkRecords(ctx, ts.tx, tenantID, userID, since)
}

func (ts *txStore) Debtors(ctx context.Context, tenantID string) ([]string, error) {
	return debtors(ctx, ts.tx, tenantID)
}

func (ts *txStore) SaveReview(ctx context.Context, sum hourdebt.ReviewSummary) error {
	return saveReview(ctx, ts.tx, sum)
}

func (ts *txStore) ListReviews(ctx context.Context, tenantID string) ([]hourdebt.ReviewSummary, error) {
	return listReviews(ctx, ts.tx, tenantID)
}
