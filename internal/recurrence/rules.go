// Package recurrence decides which configured occurrences of a recurring
// income source or fixed item fall inside a date window.
//
// Each rule branch (due days, weekly/biweekly, quarterly) is a strategy that
// is evaluated independently; the matcher unions their results.
package recurrence

import (
	"payplan/internal/core"
)

// OccurrenceRule is the strategy interface for one recurrence branch.
type OccurrenceRule interface {
	// Applies reports whether the branch is configured for the rule.
	Applies(rule core.RecurrenceRule) bool
	// Occurrences returns the branch's dates inside [start, end].
	Occurrences(rule core.RecurrenceRule, start, end core.Date) ([]core.Date, error)
}

// DueDayRule resolves "D", "EOM" and "MM/DD" specifiers in every month the
// window touches.
type DueDayRule struct{}

func (DueDayRule) Applies(rule core.RecurrenceRule) bool {
	return len(rule.DueDays) > 0 && rule.Frequency != core.Quarterly
}

func (DueDayRule) Occurrences(rule core.RecurrenceRule, start, end core.Date) ([]core.Date, error) {
	specs := make([]DaySpec, 0, len(rule.DueDays))
	for _, raw := range rule.DueDays {
		spec, err := ParseDaySpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	var out []core.Date
	for month := core.NewDate(start.Year(), start.Month(), 1); !month.After(end); month = core.NewDate(month.Year(), month.Month()+1, 1) {
		for _, spec := range specs {
			d, ok := spec.In(month.Year(), month.Month())
			if ok && d.Between(start, end) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// WeeklyRule steps from the anchor (start date, or the window start) to the
// configured weekday, then every 7 or 14 days.
type WeeklyRule struct{}

func (WeeklyRule) Applies(rule core.RecurrenceRule) bool {
	return rule.WeeklyDay != "" && (rule.Frequency == core.Weekly || rule.Frequency == core.Biweekly)
}

func (WeeklyRule) Occurrences(rule core.RecurrenceRule, start, end core.Date) ([]core.Date, error) {
	target, err := ParseWeekday(rule.WeeklyDay)
	if err != nil {
		return nil, err
	}
	step := 7
	if rule.Frequency == core.Biweekly {
		step = 14
	}

	anchor := start
	if rule.StartDate != nil {
		anchor = *rule.StartDate
	}
	first := anchor.AddDays((int(target) - int(anchor.Weekday()) + 7) % 7)
	if first.Before(start) {
		// Jump whole steps so a biweekly item keeps its phase.
		skip := (first.DaysUntil(start) + step - 1) / step
		first = first.AddDays(skip * step)
	}

	var out []core.Date
	for d := first; !d.After(end); d = d.AddDays(step) {
		out = append(out, d)
	}
	return out, nil
}

// QuarterlyRule maps due_days[i] to the month start_date.month + 3*i,
// repeating every year from the start date's year. Due days without a start
// date are a configuration error.
type QuarterlyRule struct{}

func (QuarterlyRule) Applies(rule core.RecurrenceRule) bool {
	return rule.Frequency == core.Quarterly && len(rule.DueDays) > 0
}

func (QuarterlyRule) Occurrences(rule core.RecurrenceRule, start, end core.Date) ([]core.Date, error) {
	if rule.StartDate == nil {
		return nil, core.NewValidationError("start_date", "", "quarterly items with due days need a start date")
	}
	anchor := *rule.StartDate
	var out []core.Date
	for i, raw := range rule.DueDays {
		spec, err := ParseDaySpec(raw)
		if err != nil {
			return nil, err
		}
		if spec.Kind == MonthDay {
			return nil, core.NewValidationError("due_day", raw, "quarterly items take a day number or EOM")
		}
		for years := 0; ; years++ {
			month := core.NewDate(anchor.Year()+years, anchor.Month()+3*i, 1)
			if month.After(end) {
				break
			}
			d, _ := spec.In(month.Year(), month.Month())
			if d.Between(start, end) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// occurrenceRules is the registry of branches evaluated for every rule.
var occurrenceRules = []OccurrenceRule{
	DueDayRule{},
	WeeklyRule{},
	QuarterlyRule{},
}
