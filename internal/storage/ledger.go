package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payplan/internal/core"
)

// GetExpense returns core.ErrNotFound when the user has no such expense.
func (q *Queries) GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error) {
	e, err := scanExpense(q.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return e, notFound("expense", id, err)
	}
	return e, nil
}

// MarkExpensePaid flips Planned to Paid. Only the call that changes the row
// gets true; the status guard makes concurrent calls safe.
func (q *Queries) MarkExpensePaid(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE expenses SET status = ? WHERE user_id = ? AND id = ? AND status = ?`,
		string(core.StatusPaid), userID, id, string(core.StatusPlanned))
	if err != nil {
		return false, fmt.Errorf("update expense status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetExpenseTransaction records the transaction that paid an expense.
func (q *Queries) SetExpenseTransaction(ctx context.Context, userID string, expenseID, transactionID int64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE expenses SET transaction_id = ? WHERE user_id = ? AND id = ?`, transactionID, userID, expenseID)
	if err != nil {
		return fmt.Errorf("set expense transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %d: %w", expenseID, core.ErrNotFound)
	}
	return nil
}

const transactionColumns = `id, user_id, name, amount_cents, vault_id, category_id, source, posted`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var vault, cat sql.NullInt64
	var source, posted string
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Amount.Cents, &vault, &cat, &source, &posted); err != nil {
		return t, err
	}
	t.VaultID, t.CategoryID, t.Source = intPtr(vault), intPtr(cat), core.TransactionSource(source)
	var err error
	t.Posted, err = core.ParseDate(posted)
	return t, err
}

// GetTransaction returns core.ErrNotFound when the user has no such transaction.
func (q *Queries) GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	t, err := scanTransaction(q.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return t, notFound("transaction", id, err)
	}
	return t, nil
}

// InsertTransaction stores t and returns its id.
func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO transactions (user_id, name, amount_cents, vault_id, category_id, source, posted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Name, t.Amount.Cents, nullInt(t.VaultID), nullInt(t.CategoryID), string(t.Source), t.Posted.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// ListTransactions returns a user's transactions ordered by posting date.
func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY posted, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.Transaction, error) { return scanTransaction(rows) })
}

// AppendVaultActivity adds an entry to the vault ledger. Entries are never updated.
func (q *Queries) AppendVaultActivity(ctx context.Context, a core.VaultActivity) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO vault_activity (user_id, vault_id, amount_cents, activity_date, source, related_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.VaultID, a.Amount.Cents, a.ActivityDate.String(), a.Source, nullInt(a.RelatedID))
	if err != nil {
		return 0, fmt.Errorf("append vault activity: %w", err)
	}
	return res.LastInsertId()
}

// ListVaultActivity returns one vault's ledger in date order.
func (q *Queries) ListVaultActivity(ctx context.Context, userID string, vaultID int64) ([]core.VaultActivity, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, vault_id, amount_cents, activity_date, source, related_id
		FROM vault_activity WHERE user_id = ? AND vault_id = ? ORDER BY activity_date, id`, userID, vaultID)
	if err != nil {
		return nil, fmt.Errorf("list vault activity: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.VaultActivity, error) {
		var a core.VaultActivity
		var date string
		var related sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.VaultID, &a.Amount.Cents, &date, &a.Source, &related); err != nil {
			return a, err
		}
		a.RelatedID = intPtr(related)
		var err error
		a.ActivityDate, err = core.ParseDate(date)
		return a, err
	})
}

// InsertLink links an expense to a transaction. An existing link for the
// pair is kept and its id returned.
func (q *Queries) InsertLink(ctx context.Context, l core.ExpenseTransactionLink) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `INSERT INTO expense_transaction_links (expense_id, transaction_id, matched_amount_cents)
		VALUES (?, ?, ?)
		ON CONFLICT (expense_id, transaction_id) DO NOTHING
		RETURNING id`, l.ExpenseID, l.TransactionID, l.MatchedAmount.Cents).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = q.db.QueryRowContext(ctx, `SELECT id FROM expense_transaction_links WHERE expense_id = ? AND transaction_id = ?`,
			l.ExpenseID, l.TransactionID).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert expense link: %w", err)
	}
	return id, nil
}

// ExpenseLinks returns the links recorded for one expense, oldest first.
func (q *Queries) ExpenseLinks(ctx context.Context, expenseID int64) ([]core.ExpenseTransactionLink, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, expense_id, transaction_id, matched_amount_cents
		FROM expense_transaction_links WHERE expense_id = ? ORDER BY id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list links of expense %d: %w", expenseID, err)
	}
	return collect(rows, scanLink)
}

func scanLink(rows *sql.Rows) (core.ExpenseTransactionLink, error) {
	var l core.ExpenseTransactionLink
	return l, rows.Scan(&l.ID, &l.ExpenseID, &l.TransactionID, &l.MatchedAmount.Cents)
}

// ListLinks returns every expense link of a user.
func (q *Queries) ListLinks(ctx context.Context, userID string) ([]core.ExpenseTransactionLink, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT l.id, l.expense_id, l.transaction_id, l.matched_amount_cents
		FROM expense_transaction_links l JOIN expenses e ON e.id = l.expense_id
		WHERE e.user_id = ? ORDER BY l.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expense links: %w", err)
	}
	return collect(rows, scanLink)
}
