package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payplan/internal/amqp"
	"payplan/internal/cache"
	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/sheets"
)

// Store is what the worker reads back from the database.
type Store interface {
	GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error)
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
}

// Ledger is the spreadsheet side: rows are appended and read back to skip
// redelivered messages.
type Ledger interface {
	sheets.LedgerWriter
	sheets.LedgerReader
}

// LedgerWorker exports paid expenses to the spreadsheet ledger.
type LedgerWorker struct {
	store    Store
	ledger   Ledger
	exported *cache.LRUCache[int, map[int64]struct{}]
	mu       sync.Mutex
	logger   *applog.Logger
}

// NewLedgerWorker returns a worker copying paid expenses from store to ledger.
func NewLedgerWorker(store Store, ledger Ledger, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.Default()
	}
	return &LedgerWorker{
		store:    store,
		ledger:   ledger,
		exported: cache.NewLRUCache[int, map[int64]struct{}](4, time.Hour),
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Cache exposes the exported-id cache so a cache.Manager can sweep it.
func (w *LedgerWorker) Cache() *cache.LRUCache[int, map[int64]struct{}] {
	return w.exported
}

// HandleExpensePaid processes one ExpensePaidMessage. Messages for rows
// already in the ledger are acknowledged without writing.
func (w *LedgerWorker) HandleExpensePaid(ctx context.Context, msg *amqp.ExpensePaidMessage) error {
	w.logger.InfoContext(ctx, "Processing expense paid message",
		applog.FieldUserID, msg.UserID,
		applog.FieldExpenseID, msg.ExpenseID,
		applog.FieldTransactionID, msg.TransactionID)

	expense, err := w.store.GetExpense(ctx, msg.UserID, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}
	if !expense.IsPaid() {
		return core.NewValidationError("status", string(expense.Status), "expense is not paid")
	}

	posted := msg.Posted
	if posted.IsZero() {
		tx, err := w.store.GetTransaction(ctx, msg.UserID, msg.TransactionID)
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		posted = tx.Posted
	}

	return w.export(ctx, sheets.LedgerRow{
		UserID:        msg.UserID,
		ExpenseID:     expense.ID,
		TransactionID: msg.TransactionID,
		Name:          expense.Name,
		Amount:        expense.Amount,
		Posted:        posted,
	})
}

// Backfill exports every paid expense of a user that is missing from the
// ledger. It covers messages lost while the worker was down.
func (w *LedgerWorker) Backfill(ctx context.Context, userID string) (int, error) {
	expenses, err := w.store.ListExpenses(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list expenses: %w", err)
	}

	exported, failed := 0, 0
	for _, e := range expenses {
		if !e.IsPaid() || e.TransactionID == nil {
			continue
		}
		tx, err := w.store.GetTransaction(ctx, userID, *e.TransactionID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to load transaction for backfill", applog.FieldExpenseID, e.ID, applog.FieldError, err)
			failed++
			continue
		}
		done, err := w.isExported(ctx, tx.Posted.Year(), e.ID)
		if err != nil {
			return exported, err
		}
		if done {
			continue
		}
		if err := w.export(ctx, sheets.LedgerRow{
			UserID: userID, ExpenseID: e.ID, TransactionID: tx.ID,
			Name: e.Name, Amount: e.Amount, Posted: tx.Posted,
		}); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export expense during backfill", applog.FieldExpenseID, e.ID, applog.FieldError, err)
			failed++
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Ledger backfill completed",
		applog.FieldUserID, userID,
		"exported", exported,
		"errors", failed)
	return exported, nil
}

func (w *LedgerWorker) export(ctx context.Context, row sheets.LedgerRow) error {
	year := row.Posted.Year()

	w.mu.Lock()
	defer w.mu.Unlock()

	known, err := w.knownLocked(ctx, year)
	if err != nil {
		return err
	}
	if _, ok := known[row.ExpenseID]; ok {
		w.logger.DebugContext(ctx, "Expense already in ledger", applog.FieldExpenseID, row.ExpenseID)
		return nil
	}

	ref, err := w.ledger.AppendPaid(ctx, row)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}
	known[row.ExpenseID] = struct{}{}

	w.logger.InfoContext(ctx, "Exported paid expense",
		applog.FieldExpenseID, row.ExpenseID,
		applog.FieldSheetsRef, ref,
		applog.FieldAmountCents, row.Amount.Cents)
	return nil
}

func (w *LedgerWorker) isExported(ctx context.Context, year int, expenseID int64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	known, err := w.knownLocked(ctx, year)
	if err != nil {
		return false, err
	}
	_, ok := known[expenseID]
	return ok, nil
}

func (w *LedgerWorker) knownLocked(ctx context.Context, year int) (map[int64]struct{}, error) {
	if set, ok := w.exported.Get(year); ok {
		return set, nil
	}
	rows, err := w.ledger.ListPaid(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("read ledger %d: %w", year, err)
	}
	set := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		set[r.ExpenseID] = struct{}{}
	}
	w.exported.Set(year, set)
	return set, nil
}
