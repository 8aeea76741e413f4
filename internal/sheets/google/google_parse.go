package google

import (
	"fmt"
	"strconv"
	"strings"

	"payplan/internal/core"
	ports "payplan/internal/sheets"
)

// Ledger columns: Posted, Name, Amount, Expense ID, Transaction ID, User.
func ledgerValues(r ports.LedgerRow) []any {
	return []any{r.Posted.String(), r.Name, r.Amount.Dollars(), r.ExpenseID, r.TransactionID, r.UserID}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseCents accepts "120", "120.5", "$1,234.50" style cells.
func parseCents(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return 0, false
	}
	return cents, true
}

// parseLedger skips the header and any row that does not parse.
func parseLedger(values [][]interface{}) []ports.LedgerRow {
	var out []ports.LedgerRow
	for _, raw := range values {
		cols := toStrings(raw)
		posted, err := core.ParseDate(safeGet(cols, 0))
		if err != nil {
			continue
		}
		cents, ok := parseCents(safeGet(cols, 2))
		if !ok {
			continue
		}
		expenseID, err := strconv.ParseInt(safeGet(cols, 3), 10, 64)
		if err != nil {
			continue
		}
		txID, _ := strconv.ParseInt(safeGet(cols, 4), 10, 64)
		out = append(out, ports.LedgerRow{
			Posted:        posted,
			Name:          safeGet(cols, 1),
			Amount:        core.Cents(cents),
			ExpenseID:     expenseID,
			TransactionID: txID,
			UserID:        safeGet(cols, 5),
		})
	}
	return out
}

// parseHolidays keeps rows dated in year. Blank, commented and duplicate
// rows are dropped.
func parseHolidays(values [][]interface{}, year int) []core.Holiday {
	seen := map[core.Holiday]struct{}{}
	var out []core.Holiday
	for _, raw := range values {
		cols := toStrings(raw)
		cell := safeGet(cols, 0)
		if cell == "" || strings.HasPrefix(cell, "#") {
			continue
		}
		d, err := core.ParseDate(cell)
		if err != nil || d.Year() != year {
			continue
		}
		h := core.Holiday{Date: d, Name: safeGet(cols, 1)}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
