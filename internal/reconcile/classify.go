package reconcile

import (
	"sort"

	"payplan/internal/core"
)

// MatchedTransaction is a transaction with the expenses it settles.
type MatchedTransaction struct {
	Transaction core.Transaction              `json:"transaction"`
	Expenses    []core.Expense                `json:"expenses"`
	Links       []core.ExpenseTransactionLink `json:"links,omitempty"`
	// Matched is the linked amount, or the canonical expense amount when the
	// match only comes from expense.transaction_id.
	Matched core.Money `json:"matched_cents"`
}

// Classification splits a user's transactions by how they match expenses.
type Classification struct {
	Matched   []MatchedTransaction `json:"matched"`
	Unmatched []core.Transaction   `json:"unmatched"`
}

// Classify splits transactions into matched and unmatched. A transaction is
// matched when a link or an expense's transaction_id references it. Link
// expenses are listed when present; otherwise the canonical expense is.
func Classify(transactions []core.Transaction, expenses []core.Expense, links []core.ExpenseTransactionLink) Classification {
	expByID := make(map[int64]core.Expense, len(expenses))
	canonical := make(map[int64][]core.Expense)
	for _, e := range expenses {
		expByID[e.ID] = e
		if e.TransactionID != nil {
			canonical[*e.TransactionID] = append(canonical[*e.TransactionID], e)
		}
	}
	linksByTx := make(map[int64][]core.ExpenseTransactionLink)
	for _, l := range links {
		linksByTx[l.TransactionID] = append(linksByTx[l.TransactionID], l)
	}

	out := Classification{Matched: []MatchedTransaction{}, Unmatched: []core.Transaction{}}
	for _, t := range transactions {
		txLinks := linksByTx[t.ID]
		if len(txLinks) == 0 && len(canonical[t.ID]) == 0 {
			out.Unmatched = append(out.Unmatched, t)
			continue
		}

		m := MatchedTransaction{Transaction: t, Links: txLinks}
		if len(txLinks) > 0 {
			for _, l := range txLinks {
				m.Matched = m.Matched.Add(l.MatchedAmount)
				if e, ok := expByID[l.ExpenseID]; ok {
					m.Expenses = append(m.Expenses, e)
				}
			}
		} else {
			m.Expenses = canonical[t.ID]
			for _, e := range m.Expenses {
				m.Matched = m.Matched.Add(e.Amount)
			}
		}
		sort.Slice(m.Expenses, func(i, j int) bool { return m.Expenses[i].ID < m.Expenses[j].ID })
		out.Matched = append(out.Matched, m)
	}
	return out
}

// ComputeTotals summarizes a paycheck's plan. Remaining may be negative.
func ComputeTotals(income []core.Money, expenses []core.Expense, contributions []core.VaultContribution) core.Totals {
	var t core.Totals
	t.Income = core.Sum(income...)
	for _, e := range expenses {
		t.Expenses = t.Expenses.Add(e.Amount)
	}
	for _, c := range contributions {
		t.Vaults = t.Vaults.Add(c.Amount)
	}
	t.Remaining = t.Income.Sub(t.Expenses).Sub(t.Vaults)
	return t
}

// Balance sums an append-only vault ledger.
func Balance(vaultID int64, entries []core.VaultActivity) core.VaultBalance {
	b := core.VaultBalance{VaultID: vaultID}
	for _, a := range entries {
		if a.VaultID != vaultID {
			continue
		}
		b.Balance = b.Balance.Add(a.Amount)
		b.Entries++
	}
	return b
}
