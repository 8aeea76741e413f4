package reconcile

import (
	"context"

	"payplan/internal/core"
)

// Store is the persistence port of the reconciler.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store,Tx,Publisher
type Store interface {
	// WithinTx runs fn as one unit of work. An error from fn rolls back every
	// write made through tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	ListLinks(ctx context.Context, userID string) ([]core.ExpenseTransactionLink, error)
	ListVaultActivity(ctx context.Context, userID string, vaultID int64) ([]core.VaultActivity, error)
}

// Tx is the set of writes available inside a unit of work.
type Tx interface {
	// GetExpense returns core.ErrNotFound for unknown ids.
	GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error)
	// MarkExpensePaid moves the expense from Planned to Paid and reports
	// whether this call made the change.
	MarkExpensePaid(ctx context.Context, userID string, id int64) (bool, error)
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
	AppendVaultActivity(ctx context.Context, a core.VaultActivity) (int64, error)
	SetExpenseTransaction(ctx context.Context, userID string, expenseID, transactionID int64) error
	// InsertLink is a no-op when the (expense, transaction) pair is already linked.
	InsertLink(ctx context.Context, l core.ExpenseTransactionLink) (int64, error)
	// ExpenseLinks returns the links already recorded for an expense, oldest first.
	ExpenseLinks(ctx context.Context, expenseID int64) ([]core.ExpenseTransactionLink, error)
}

// Publisher announces committed transitions. Delivery is best effort.
type Publisher interface {
	PublishExpensePaid(ctx context.Context, userID string, expenseID, transactionID int64, amount core.Money, posted core.Date) error
}
