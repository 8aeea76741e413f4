package storage

import (
	"context"
	"database/sql"
	"fmt"

	"payplan/internal/core"
)

// UpsertHoliday stores a custom holiday; re-adding the same (date, name) is
// a no-op.
func (q *Queries) UpsertHoliday(ctx context.Context, h core.Holiday) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO holidays (date, name) VALUES (?, ?) ON CONFLICT (date, name) DO NOTHING`,
		h.Date.String(), h.Name)
	if err != nil {
		return fmt.Errorf("upsert holiday: %w", err)
	}
	return nil
}

// DeleteHoliday removes a custom holiday and returns the rows deleted.
func (q *Queries) DeleteHoliday(ctx context.Context, date core.Date) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, date.String())
	if err != nil {
		return 0, fmt.Errorf("delete holiday: %w", err)
	}
	return res.RowsAffected()
}

// ListHolidays returns the custom holidays of one year.
func (q *Queries) ListHolidays(ctx context.Context, year int) ([]core.Holiday, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT date, name FROM holidays WHERE date >= ? AND date <= ? ORDER BY date, name`,
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (core.Holiday, error) {
		var h core.Holiday
		var date string
		if err := rows.Scan(&date, &h.Name); err != nil {
			return h, err
		}
		var err error
		h.Date, err = core.ParseDate(date)
		return h, err
	})
}
