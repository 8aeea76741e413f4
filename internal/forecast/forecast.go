// Package forecast assembles the income and expenses expected in a pay
// period from recurring items, per-period adjustments and one-offs.
package forecast

import (
	"fmt"
	"sort"
	"strings"

	"payplan/internal/calendar"
	"payplan/internal/core"
	"payplan/internal/recurrence"
)

// Policy decides how an item with several occurrences in one period is
// realized.
type Policy int

const (
	// FirstOccurrence yields one entry per item, carrying every occurrence date.
	FirstOccurrence Policy = iota
	// EachOccurrence yields one entry per occurrence, so a Semi-Monthly bill
	// hitting twice is charged twice.
	EachOccurrence
)

// ParsePolicy accepts "first" (the default when empty) or "each".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstOccurrence, nil
	case "each":
		return EachOccurrence, nil
	}
	return 0, core.NewValidationError("forecast_policy", s, `expected "first" or "each"`)
}

func (p Policy) String() string {
	if p == EachOccurrence {
		return "each"
	}
	return "first"
}

// Input is everything Compute needs. Adjustments holds those keyed on the
// period's forecast start plus those deferred into it.
type Input struct {
	Period        calendar.PayPeriod
	IncomeSources []core.IncomeSource
	FixedItems    []core.FixedItem
	Adjustments   []core.ForecastAdjustment
	OneOffs       []core.OneOffItem
	Policy        Policy
	// Sources maps the forecast start of each period an adjustment defers
	// out of to that period. A deferred item is carried into Period only if
	// it was included in its source period.
	Sources map[string]calendar.PayPeriod
}

// Income is one expected inflow of a period.
type Income struct {
	SourceID   *int64      `json:"source_id,omitempty"`
	OneOffID   *int64      `json:"one_off_id,omitempty"`
	Name       string      `json:"name"`
	Amount     core.Money  `json:"amount_cents"`
	Dates      []core.Date `json:"dates"`
	IsOneOff   bool        `json:"is_one_off"`
	Occurrence int         `json:"occurrence,omitempty"`
}

// Expense is one expected outflow of a period. FixedItemID or OneOffID
// names its origin.
type Expense struct {
	FixedItemID  *int64      `json:"fixed_item_id,omitempty"`
	OneOffID     *int64      `json:"one_off_id,omitempty"`
	Name         string      `json:"name"`
	Amount       core.Money  `json:"amount_cents"`
	Dates        []core.Date `json:"dates"`
	CategoryID   *int64      `json:"category_id,omitempty"`
	VaultID      *int64      `json:"vault_id,omitempty"`
	IsDeferred   bool        `json:"is_deferred"`
	IsOverridden bool        `json:"is_overridden"`
	IsOneOff     bool        `json:"is_one_off"`
	Occurrence   int         `json:"occurrence,omitempty"`
	// DeferredFrom is the forecast start an item was deferred out of.
	DeferredFrom string `json:"deferred_from,omitempty"`
}

// Result is the forecast of one pay period, recurring entries first and
// one-offs after them.
type Result struct {
	Period   calendar.PayPeriod `json:"period"`
	Income   []Income           `json:"income"`
	Expenses []Expense          `json:"expenses"`
}

// Totals returns the summed income and expenses of the result.
func (r Result) Totals() (income, expenses core.Money) {
	for _, i := range r.Income {
		income = income.Add(i.Amount)
	}
	for _, e := range r.Expenses {
		expenses = expenses.Add(e.Amount)
	}
	return income, expenses
}

// Compute assembles the forecast for in.Period. It has no side effects and
// the same input always yields the same result.
func Compute(in Input) (Result, error) {
	p := in.Period
	key := p.ForecastStart()
	res := Result{Period: p, Income: []Income{}, Expenses: []Expense{}}

	for _, src := range in.IncomeSources {
		dates, err := recurrence.Occurrences(src, p.Start, p.End)
		if err != nil {
			return Result{}, fmt.Errorf("income source %q: %w", src.Name, err)
		}
		if len(dates) == 0 && !strings.Contains(strings.ToLower(src.Name), "paycheck") {
			continue
		}
		id := src.ID
		for _, e := range expand(in.Policy, dates, p.Start) {
			res.Income = append(res.Income, Income{
				SourceID:   &id,
				Name:       src.Name,
				Amount:     src.Amount,
				Dates:      e.dates,
				Occurrence: e.occurrence,
			})
		}
	}

	own := make(map[int64]core.ForecastAdjustment)
	var deferredIn []core.ForecastAdjustment
	for _, adj := range in.Adjustments {
		switch {
		case adj.ForecastStart == key:
			own[adj.FixedItemID] = adj
		case adj.DeferToStart != nil && *adj.DeferToStart == key:
			deferredIn = append(deferredIn, adj)
		}
	}

	items := make(map[int64]core.FixedItem, len(in.FixedItems))
	for _, item := range in.FixedItems {
		items[item.ID] = item
		dates, err := recurrence.Occurrences(item, p.Start, p.End)
		if err != nil {
			return Result{}, fmt.Errorf("fixed item %q: %w", item.Name, err)
		}
		if len(dates) == 0 && item.Frequency != core.PerPaycheck {
			continue
		}

		amount, deferred, overridden := item.Amount, false, false
		if adj, ok := own[item.ID]; ok {
			if adj.DeferToStart != nil && *adj.DeferToStart != key {
				continue
			}
			deferred = adj.DeferToStart != nil
			if adj.OverrideAmount != nil {
				amount, overridden = *adj.OverrideAmount, true
			}
		}

		id := item.ID
		for _, e := range expand(in.Policy, dates, p.Start) {
			res.Expenses = append(res.Expenses, Expense{
				FixedItemID:  &id,
				Name:         item.Name,
				Amount:       amount,
				Dates:        e.dates,
				CategoryID:   item.CategoryID,
				VaultID:      item.VaultID,
				IsDeferred:   deferred,
				IsOverridden: overridden,
				Occurrence:   e.occurrence,
			})
		}
	}

	for _, adj := range deferredIn {
		item, ok := items[adj.FixedItemID]
		if !ok {
			continue
		}
		src, ok := in.Sources[adj.ForecastStart]
		if !ok {
			continue
		}
		srcDates, err := recurrence.Occurrences(item, src.Start, src.End)
		if err != nil {
			return Result{}, fmt.Errorf("fixed item %q: %w", item.Name, err)
		}
		if len(srcDates) == 0 && item.Frequency != core.PerPaycheck {
			continue
		}
		amount, overridden := item.Amount, false
		if adj.OverrideAmount != nil {
			amount, overridden = *adj.OverrideAmount, true
		}
		id := item.ID
		for _, e := range expand(in.Policy, srcDates, src.Start) {
			res.Expenses = append(res.Expenses, Expense{
				FixedItemID:  &id,
				Name:         item.Name,
				Amount:       amount,
				Dates:        []core.Date{p.Start},
				CategoryID:   item.CategoryID,
				VaultID:      item.VaultID,
				IsDeferred:   true,
				IsOverridden: overridden,
				Occurrence:   e.occurrence,
				DeferredFrom: adj.ForecastStart,
			})
		}
	}

	sortIncome(res.Income)
	sortExpenses(res.Expenses)

	var oneOffIncome []Income
	var oneOffExpenses []Expense
	for _, o := range in.OneOffs {
		id := o.ID
		date := p.Start
		if o.Date != nil {
			date = *o.Date
		}
		if o.IsIncome {
			oneOffIncome = append(oneOffIncome, Income{OneOffID: &id, Name: o.Name, Amount: o.Amount, Dates: []core.Date{date}, IsOneOff: true})
			continue
		}
		oneOffExpenses = append(oneOffExpenses, Expense{
			OneOffID:   &id,
			Name:       o.Name,
			Amount:     o.Amount,
			Dates:      []core.Date{date},
			CategoryID: o.CategoryID,
			VaultID:    o.VaultID,
			IsOneOff:   true,
		})
	}
	sortIncome(oneOffIncome)
	sortExpenses(oneOffExpenses)

	res.Income = append(res.Income, oneOffIncome...)
	res.Expenses = append(res.Expenses, oneOffExpenses...)
	return res, nil
}

type entry struct {
	dates      []core.Date
	occurrence int
}

// expand applies the policy to an item's occurrences. Items included without
// an occurrence (Per Paycheck, paycheck income) are dated on the period start.
func expand(policy Policy, dates []core.Date, periodStart core.Date) []entry {
	if len(dates) == 0 {
		return []entry{{dates: []core.Date{periodStart}}}
	}
	if policy != EachOccurrence {
		return []entry{{dates: dates}}
	}
	out := make([]entry, len(dates))
	for i, d := range dates {
		out[i] = entry{dates: []core.Date{d}, occurrence: i + 1}
	}
	return out
}

func id(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func less(aDate, bDate core.Date, aName, bName string, aID, bID int64, aOcc, bOcc int) bool {
	if !aDate.Equal(bDate) {
		return aDate.Before(bDate)
	}
	if aName != bName {
		return aName < bName
	}
	if aID != bID {
		return aID < bID
	}
	return aOcc < bOcc
}

func sortIncome(s []Income) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		return less(a.Dates[0], b.Dates[0], a.Name, b.Name, id(a.SourceID)+id(a.OneOffID), id(b.SourceID)+id(b.OneOffID), a.Occurrence, b.Occurrence)
	})
}

func sortExpenses(s []Expense) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		return less(a.Dates[0], b.Dates[0], a.Name, b.Name, id(a.FixedItemID)+id(a.OneOffID), id(b.FixedItemID)+id(b.OneOffID), a.Occurrence, b.Occurrence)
	})
}
