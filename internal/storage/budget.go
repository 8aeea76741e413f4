package storage

import (
	"context"
	"database/sql"
	"fmt"

	"payplan/internal/core"
)

const incomeSourceColumns = `id, user_id, name, amount_cents, frequency, due_days, weekly_day, start_date`

// CreateIncomeSource stores s and returns its id.
func (q *Queries) CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO income_sources
		(user_id, name, amount_cents, frequency, due_days, weekly_day, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Name, s.Amount.Cents, string(s.Frequency), joinDays(s.DueDays), s.WeeklyDay, nullDate(s.StartDate))
	if err != nil {
		return 0, fmt.Errorf("insert income source: %w", err)
	}
	return res.LastInsertId()
}

// ListIncomeSources returns a user's income sources in creation order.
func (q *Queries) ListIncomeSources(ctx context.Context, userID string) ([]core.IncomeSource, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+incomeSourceColumns+` FROM income_sources WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.IncomeSource, error) {
		var s core.IncomeSource
		var freq, days string
		var start sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Amount.Cents, &freq, &days, &s.WeeklyDay, &start); err != nil {
			return s, err
		}
		s.Frequency, s.DueDays = core.Frequency(freq), splitDays(days)
		var err error
		s.StartDate, err = datePtr(start)
		return s, err
	})
}

const fixedItemColumns = `id, user_id, name, amount_cents, frequency, due_days, weekly_day, start_date, category_id, vault_id`

// CreateFixedItem stores f and returns its id.
func (q *Queries) CreateFixedItem(ctx context.Context, f core.FixedItem) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO fixed_items
		(user_id, name, amount_cents, frequency, due_days, weekly_day, start_date, category_id, vault_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.Name, f.Amount.Cents, string(f.Frequency), joinDays(f.DueDays), f.WeeklyDay,
		nullDate(f.StartDate), nullInt(f.CategoryID), nullInt(f.VaultID))
	if err != nil {
		return 0, fmt.Errorf("insert fixed item: %w", err)
	}
	return res.LastInsertId()
}

// ListFixedItems returns a user's recurring expenses in creation order.
func (q *Queries) ListFixedItems(ctx context.Context, userID string) ([]core.FixedItem, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+fixedItemColumns+` FROM fixed_items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list fixed items: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.FixedItem, error) {
		var f core.FixedItem
		var freq, days string
		var start sql.NullString
		var cat, vault sql.NullInt64
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Amount.Cents, &freq, &days, &f.WeeklyDay, &start, &cat, &vault); err != nil {
			return f, err
		}
		f.Frequency, f.DueDays = core.Frequency(freq), splitDays(days)
		f.CategoryID, f.VaultID = intPtr(cat), intPtr(vault)
		var err error
		f.StartDate, err = datePtr(start)
		return f, err
	})
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO categories (user_id, name) VALUES (?, ?)`, c.UserID, c.Name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// CreateVault stores v and returns its id.
func (q *Queries) CreateVault(ctx context.Context, v core.Vault) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO vaults (user_id, name) VALUES (?, ?)`, v.UserID, v.Name)
	if err != nil {
		return 0, fmt.Errorf("insert vault: %w", err)
	}
	return res.LastInsertId()
}

// ListVaults returns a user's vaults by name.
func (q *Queries) ListVaults(ctx context.Context, userID string) ([]core.Vault, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, name FROM vaults WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.Vault, error) {
		var v core.Vault
		return v, rows.Scan(&v.ID, &v.UserID, &v.Name)
	})
}

// UpsertAdjustment writes the adjustment keyed on (user, fixed item,
// forecast start), replacing any previous one.
func (q *Queries) UpsertAdjustment(ctx context.Context, a core.ForecastAdjustment) (int64, error) {
	var override any
	if a.OverrideAmount != nil {
		override = a.OverrideAmount.Cents
	}
	var id int64
	err := q.db.QueryRowContext(ctx, `INSERT INTO forecast_adjustments
		(user_id, fixed_item_id, forecast_start, override_amount_cents, defer_to_start)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, fixed_item_id, forecast_start) DO UPDATE SET
			override_amount_cents = excluded.override_amount_cents,
			defer_to_start = excluded.defer_to_start
		RETURNING id`,
		a.UserID, a.FixedItemID, a.ForecastStart, override, nullString(a.DeferToStart)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert forecast adjustment: %w", err)
	}
	return id, nil
}

// ListAdjustments returns the adjustments keyed on forecastStart and those
// deferring an item into it.
func (q *Queries) ListAdjustments(ctx context.Context, userID, forecastStart string) ([]core.ForecastAdjustment, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, fixed_item_id, forecast_start, override_amount_cents, defer_to_start
		FROM forecast_adjustments
		WHERE user_id = ? AND (forecast_start = ? OR defer_to_start = ?)
		ORDER BY id`, userID, forecastStart, forecastStart)
	if err != nil {
		return nil, fmt.Errorf("list forecast adjustments: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.ForecastAdjustment, error) {
		var a core.ForecastAdjustment
		var override sql.NullInt64
		var deferTo sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.FixedItemID, &a.ForecastStart, &override, &deferTo); err != nil {
			return a, err
		}
		if override.Valid {
			m := core.Cents(override.Int64)
			a.OverrideAmount = &m
		}
		a.DeferToStart = stringPtr(deferTo)
		return a, nil
	})
}

// CreateOneOff stores o under its forecast start.
func (q *Queries) CreateOneOff(ctx context.Context, o core.OneOffItem) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO forecast_one_offs
		(user_id, name, amount_cents, is_income, forecast_start, date, category_id, vault_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Name, o.Amount.Cents, o.IsIncome, o.ForecastStart, nullDate(o.Date), nullInt(o.CategoryID), nullInt(o.VaultID))
	if err != nil {
		return 0, fmt.Errorf("insert one-off: %w", err)
	}
	return res.LastInsertId()
}

// ListOneOffs returns the one-off items of one pay period.
func (q *Queries) ListOneOffs(ctx context.Context, userID, forecastStart string) ([]core.OneOffItem, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, name, amount_cents, is_income, forecast_start, date, category_id, vault_id
		FROM forecast_one_offs WHERE user_id = ? AND forecast_start = ? ORDER BY id`, userID, forecastStart)
	if err != nil {
		return nil, fmt.Errorf("list one-offs: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.OneOffItem, error) {
		var o core.OneOffItem
		var date sql.NullString
		var cat, vault sql.NullInt64
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Amount.Cents, &o.IsIncome, &o.ForecastStart, &date, &cat, &vault); err != nil {
			return o, err
		}
		o.CategoryID, o.VaultID = intPtr(cat), intPtr(vault)
		var err error
		o.Date, err = datePtr(date)
		return o, err
	})
}

// UpsertPaycheck stores a paycheck keyed on its label.
func (q *Queries) UpsertPaycheck(ctx context.Context, p core.Paycheck) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `INSERT INTO paychecks (user_id, label, date, amount_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, label) DO UPDATE SET date = excluded.date, amount_cents = excluded.amount_cents
		RETURNING id`, p.UserID, p.Label, p.Date.String(), p.Amount.Cents).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert paycheck: %w", err)
	}
	return id, nil
}

// GetPaycheck returns core.ErrNotFound when the user has no such paycheck.
func (q *Queries) GetPaycheck(ctx context.Context, userID string, id int64) (core.Paycheck, error) {
	var p core.Paycheck
	var date string
	err := q.db.QueryRowContext(ctx, `SELECT id, user_id, label, date, amount_cents FROM paychecks WHERE user_id = ? AND id = ?`,
		userID, id).Scan(&p.ID, &p.UserID, &p.Label, &date, &p.Amount.Cents)
	if err != nil {
		return p, notFound("paycheck", id, err)
	}
	p.Date, err = core.ParseDate(date)
	return p, err
}

const expenseColumns = `id, user_id, paycheck_id, name, amount_cents, status, vault_id, category_id, transaction_id`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var status string
	var vault, cat, tx sql.NullInt64
	if err := row.Scan(&e.ID, &e.UserID, &e.PaycheckID, &e.Name, &e.Amount.Cents, &status, &vault, &cat, &tx); err != nil {
		return e, err
	}
	e.Status = core.ExpenseStatus(status)
	e.VaultID, e.CategoryID, e.TransactionID = intPtr(vault), intPtr(cat), intPtr(tx)
	return e, nil
}

// CreateExpense stores a planned expense against a paycheck.
func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if e.Status == "" {
		e.Status = core.StatusPlanned
	}
	res, err := q.db.ExecContext(ctx, `INSERT INTO expenses
		(user_id, paycheck_id, name, amount_cents, status, vault_id, category_id, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.PaycheckID, e.Name, e.Amount.Cents, string(e.Status), nullInt(e.VaultID), nullInt(e.CategoryID), nullInt(e.TransactionID))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return res.LastInsertId()
}

// ListExpenses returns every expense of a user.
func (q *Queries) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.Expense, error) { return scanExpense(rows) })
}

// ListPaycheckExpenses returns the expenses planned against one paycheck.
func (q *Queries) ListPaycheckExpenses(ctx context.Context, userID string, paycheckID int64) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND paycheck_id = ? ORDER BY id`, userID, paycheckID)
	if err != nil {
		return nil, fmt.Errorf("list paycheck expenses: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.Expense, error) { return scanExpense(rows) })
}

// CreateVaultContribution records money set aside for a vault from a paycheck.
func (q *Queries) CreateVaultContribution(ctx context.Context, c core.VaultContribution) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO vault_contributions (user_id, paycheck_id, vault_id, amount_cents)
		VALUES (?, ?, ?, ?)`, c.UserID, c.PaycheckID, c.VaultID, c.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert vault contribution: %w", err)
	}
	return res.LastInsertId()
}

// ListPaycheckContributions returns the vault contributions of one paycheck.
func (q *Queries) ListPaycheckContributions(ctx context.Context, userID string, paycheckID int64) ([]core.VaultContribution, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, paycheck_id, vault_id, amount_cents
		FROM vault_contributions WHERE user_id = ? AND paycheck_id = ? ORDER BY id`, userID, paycheckID)
	if err != nil {
		return nil, fmt.Errorf("list vault contributions: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.VaultContribution, error) {
		var c core.VaultContribution
		return c, rows.Scan(&c.ID, &c.UserID, &c.PaycheckID, &c.VaultID, &c.Amount.Cents)
	})
}
