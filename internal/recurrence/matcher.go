package recurrence

import (
	"sort"

	"payplan/internal/core"
)

// Item is anything carrying a recurrence rule: income sources and fixed items.
type Item interface {
	Rule() core.RecurrenceRule
}

// OccurrencesInWindow returns every configured occurrence of the rule inside
// the inclusive window [start, end], ascending and without duplicates.
// Malformed configuration (unknown frequency, bad day specifier, unknown
// weekday) is reported as a *core.ValidationError.
func OccurrencesInWindow(rule core.RecurrenceRule, start, end core.Date) ([]core.Date, error) {
	if rule.Frequency != "" {
		freq, err := core.ParseFrequency(string(rule.Frequency))
		if err != nil {
			return nil, err
		}
		rule.Frequency = freq
	}
	if end.Before(start) {
		return nil, nil
	}

	seen := make(map[core.Date]struct{})
	var out []core.Date
	for _, r := range occurrenceRules {
		if !r.Applies(rule) {
			continue
		}
		dates, err := r.Occurrences(rule, start, end)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// ValidateRule reports configuration errors up front by matching the rule
// over one year from its start date.
func ValidateRule(rule core.RecurrenceRule) error {
	anchor := core.NewDate(2000, 1, 1)
	if rule.StartDate != nil {
		anchor = *rule.StartDate
	}
	_, err := OccurrencesInWindow(rule, anchor, anchor.AddDays(366))
	return err
}

// Occurrences is OccurrencesInWindow for an Item.
func Occurrences(item Item, start, end core.Date) ([]core.Date, error) {
	return OccurrencesInWindow(item.Rule(), start, end)
}

// HasOccurrence reports whether the item hits the window at least once.
func HasOccurrence(item Item, start, end core.Date) (bool, error) {
	dates, err := Occurrences(item, start, end)
	if err != nil {
		return false, err
	}
	return len(dates) > 0, nil
}

// EarliestOccurrence returns the first occurrence in the window, if any.
func EarliestOccurrence(item Item, start, end core.Date) (core.Date, bool, error) {
	dates, err := Occurrences(item, start, end)
	if err != nil || len(dates) == 0 {
		return core.Date{}, false, err
	}
	return dates[0], true, nil
}
