package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaiken/debt-engine/hourdebt"
)

func newDebt(tenant, user string, minutes int, d time.Time) *hourdebt.Debt {
	return &hourdebt.Debt{
		TenantID:         tenant,
		UserID:           user,
		Date:             d,
		MinutesOwed:      minutes,
		RemainingMinutes: minutes,
		Status:           hourdebt.DebtActive,
		CreatedAt:        time.Now(),
	}
}

func TestMemory_WithTxRollback(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.InsertDebt(ctx, newDebt("acme", "u1", 60, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(s hourdebt.Store) error {
		debts, err := s.OpenDebts(ctx, "acme", "u1")
		if err != nil {
			return err
		}
		debts[0].RemainingMinutes = 0
		debts[0].Status = hourdebt.DebtFullyPaid
		if err := s.UpdateDebt(ctx, &debts[0]); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	debts, err := m.OpenDebts(ctx, "acme", "u1")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 60, debts[0].RemainingMinutes, "rolled-back write must not stick")
}

func TestMemory_FIFOOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	newer := newDebt("acme", "u1", 60, time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, m.InsertDebt(ctx, newer))
	older := newDebt("acme", "u1", 60, time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, m.InsertDebt(ctx, older))

	debts, err := m.OpenDebts(ctx, "acme", "u1")
	require.NoError(t, err)
	require.Len(t, debts, 2)
	assert.Equal(t, older.ID, debts[0].ID)
	assert.Equal(t, newer.ID, debts[1].ID)
}
