package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/amqp"
	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/sheets"
	"payplan/internal/sheets/memory"
)

type fakeStore struct {
	expenses     map[int64]core.Expense
	transactions map[int64]core.Transaction
}

func (f *fakeStore) GetExpense(_ context.Context, userID string, id int64) (core.Expense, error) {
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, userID string, id int64) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	var out []core.Expense
	for id := int64(1); id <= int64(len(f.expenses)); id++ {
		if e, ok := f.expenses[id]; ok && e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type countingLedger struct {
	*memory.Store
	appends int
	reads   int
	fail    error
}

func (c *countingLedger) AppendPaid(ctx context.Context, row sheets.LedgerRow) (string, error) {
	if c.fail != nil {
		return "", c.fail
	}
	c.appends++
	return c.Store.AppendPaid(ctx, row)
}

func (c *countingLedger) ListPaid(ctx context.Context, year int) ([]sheets.LedgerRow, error) {
	c.reads++
	return c.Store.ListPaid(ctx, year)
}

func int64p(v int64) *int64 { return &v }

func fixture() *fakeStore {
	return &fakeStore{
		expenses: map[int64]core.Expense{
			1: {ID: 1, UserID: "u1", Name: "Rent", Amount: core.Cents(150000), Status: core.StatusPaid, TransactionID: int64p(10)},
			2: {ID: 2, UserID: "u1", Name: "Phone", Amount: core.Cents(6000), Status: core.StatusPlanned},
			3: {ID: 3, UserID: "u1", Name: "Gym", Amount: core.Cents(4000), Status: core.StatusPaid, TransactionID: int64p(11)},
		},
		transactions: map[int64]core.Transaction{
			10: {ID: 10, UserID: "u1", Name: "Rent", Amount: core.Cents(150000), Source: core.SourceManual, Posted: core.NewDate(2025, 3, 1)},
			11: {ID: 11, UserID: "u1", Name: "Gym", Amount: core.Cents(4000), Source: core.SourceManual, Posted: core.NewDate(2025, 3, 7)},
		},
	}
}

func TestHandleExpensePaid_ExportsOnce(t *testing.T) {
	ledger := &countingLedger{Store: memory.New(nil)}
	w := NewLedgerWorker(fixture(), ledger, applog.Discard())
	ctx := context.Background()

	msg := amqp.NewExpensePaidMessage("u1", 1, 10, core.Cents(150000), core.NewDate(2025, 3, 1))
	require.NoError(t, w.HandleExpensePaid(ctx, msg))
	require.NoError(t, w.HandleExpensePaid(ctx, msg))

	assert.Equal(t, 1, ledger.appends)
	assert.Equal(t, 1, ledger.reads, "ledger year read once then cached")

	rows, err := ledger.Store.ListPaid(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rent", rows[0].Name)
}

func TestHandleExpensePaid_FallsBackToTransactionDate(t *testing.T) {
	ledger := &countingLedger{Store: memory.New(nil)}
	w := NewLedgerWorker(fixture(), ledger, applog.Discard())

	msg := &amqp.ExpensePaidMessage{UserID: "u1", ExpenseID: 3, TransactionID: 11}
	require.NoError(t, w.HandleExpensePaid(context.Background(), msg))

	rows, _ := ledger.Store.ListPaid(context.Background(), 2025)
	require.Len(t, rows, 1)
	assert.Equal(t, core.NewDate(2025, 3, 7), rows[0].Posted)
}

func TestHandleExpensePaid_Rejects(t *testing.T) {
	ledger := &countingLedger{Store: memory.New(nil)}
	w := NewLedgerWorker(fixture(), ledger, applog.Discard())
	ctx := context.Background()

	err := w.HandleExpensePaid(ctx, &amqp.ExpensePaidMessage{UserID: "u1", ExpenseID: 2})
	assert.ErrorIs(t, err, core.ErrValidation)

	err = w.HandleExpensePaid(ctx, &amqp.ExpensePaidMessage{UserID: "u2", ExpenseID: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)

	ledger.fail = errors.New("quota exceeded")
	err = w.HandleExpensePaid(ctx, amqp.NewExpensePaidMessage("u1", 1, 10, core.Cents(150000), core.NewDate(2025, 3, 1)))
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Zero(t, ledger.appends)
}

func TestBackfill(t *testing.T) {
	ledger := &countingLedger{Store: memory.New(nil)}
	ctx := context.Background()
	_, err := ledger.Store.AppendPaid(ctx, sheets.LedgerRow{ExpenseID: 1, Name: "Rent", Amount: core.Cents(150000), Posted: core.NewDate(2025, 3, 1)})
	require.NoError(t, err)

	w := NewLedgerWorker(fixture(), ledger, applog.Discard())
	n, err := w.Backfill(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the gym expense was missing")

	n, err = w.Backfill(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
