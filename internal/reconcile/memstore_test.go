package reconcile_test

import (
	"context"
	"fmt"
	"sync"

	"payplan/internal/core"
	"payplan/internal/reconcile"
)

// memStore is a serialized in-memory Store. WithinTx snapshots the state and
// restores it when fn fails, the way a SQL rollback would.
type memStore struct {
	mu       sync.Mutex
	state    memState
	failStep string
}

type memState struct {
	nextID   int64
	expenses map[int64]core.Expense
	txs      map[int64]core.Transaction
	activity []core.VaultActivity
	links    []core.ExpenseTransactionLink
}

func newMemStore(expenses ...core.Expense) *memStore {
	s := &memStore{state: memState{nextID: 100, expenses: map[int64]core.Expense{}, txs: map[int64]core.Transaction{}}}
	for _, e := range expenses {
		s.state.expenses[e.ID] = e
	}
	return s
}

func (s memState) clone() memState {
	c := memState{nextID: s.nextID, expenses: map[int64]core.Expense{}, txs: map[int64]core.Transaction{}}
	for k, v := range s.expenses {
		c.expenses[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	c.activity = append(c.activity, s.activity...)
	c.links = append(c.links, s.links...)
	return c
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx reconcile.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(&memTx{s: s}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *memStore) ListExpenses(context.Context, string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.state.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (s *memStore) ListTransactions(context.Context, string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.state.txs {
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) ListLinks(context.Context, string) ([]core.ExpenseTransactionLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseTransactionLink(nil), s.state.links...), nil
}

func (s *memStore) ListVaultActivity(_ context.Context, _ string, vaultID int64) ([]core.VaultActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.VaultActivity
	for _, a := range s.state.activity {
		if a.VaultID == vaultID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memTx struct{ s *memStore }

func (t *memTx) fail(step string) error {
	if t.s.failStep == step {
		return fmt.Errorf("%s: disk I/O error", step)
	}
	return nil
}

func (t *memTx) id() int64 {
	t.s.state.nextID++
	return t.s.state.nextID
}

func (t *memTx) GetExpense(_ context.Context, _ string, id int64) (core.Expense, error) {
	e, ok := t.s.state.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (t *memTx) MarkExpensePaid(_ context.Context, _ string, id int64) (bool, error) {
	if err := t.fail("status"); err != nil {
		return false, err
	}
	e := t.s.state.expenses[id]
	if e.Status != core.StatusPlanned {
		return false, nil
	}
	e.Status = core.StatusPaid
	t.s.state.expenses[id] = e
	return true, nil
}

func (t *memTx) GetTransaction(_ context.Context, _ string, id int64) (core.Transaction, error) {
	tr, ok := t.s.state.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return tr, nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr core.Transaction) (int64, error) {
	if err := t.fail("tx"); err != nil {
		return 0, err
	}
	tr.ID = t.id()
	t.s.state.txs[tr.ID] = tr
	return tr.ID, nil
}

func (t *memTx) AppendVaultActivity(_ context.Context, a core.VaultActivity) (int64, error) {
	if err := t.fail("vault"); err != nil {
		return 0, err
	}
	a.ID = t.id()
	t.s.state.activity = append(t.s.state.activity, a)
	return a.ID, nil
}

func (t *memTx) SetExpenseTransaction(_ context.Context, _ string, expenseID, transactionID int64) error {
	if err := t.fail("writeback"); err != nil {
		return err
	}
	e := t.s.state.expenses[expenseID]
	e.TransactionID = &transactionID
	t.s.state.expenses[expenseID] = e
	return nil
}

func (t *memTx) InsertLink(_ context.Context, l core.ExpenseTransactionLink) (int64, error) {
	if err := t.fail("link"); err != nil {
		return 0, err
	}
	for _, existing := range t.s.state.links {
		if existing.ExpenseID == l.ExpenseID && existing.TransactionID == l.TransactionID {
			return existing.ID, nil
		}
	}
	l.ID = t.id()
	t.s.state.links = append(t.s.state.links, l)
	return l.ID, nil
}

func (t *memTx) ExpenseLinks(_ context.Context, expenseID int64) ([]core.ExpenseTransactionLink, error) {
	var out []core.ExpenseTransactionLink
	for _, l := range t.s.state.links {
		if l.ExpenseID == expenseID {
			out = append(out, l)
		}
	}
	return out, nil
}
