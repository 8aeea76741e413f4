// Package calendar derives semi-monthly paycheck dates and the pay periods
// between them.
//
// Paychecks are officially due on the 15th and on the last day of every
// month. The adjusted date rolls back off weekends and holidays so that
// money is always available on or before the official date.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"payplan/internal/core"
	applog "payplan/internal/log"
)

// HolidayProvider supplies the holidays of a calendar year.
type HolidayProvider interface {
	HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error)
}

// PaycheckDate pairs a paycheck's official date with the date it is
// actually paid.
type PaycheckDate struct {
	Label    string    `json:"label"`
	Official core.Date `json:"official_date"`
	Adjusted core.Date `json:"adjusted_date"`
}

// PayPeriod is the inclusive range between one adjusted paycheck date and
// the day before the next one.
type PayPeriod struct {
	Label string    `json:"label"`
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// ForecastStart is the key forecast adjustments and one-offs are stored
// under.
func (p PayPeriod) ForecastStart() string {
	return p.Start.String()
}

// Contains reports whether d falls in the period, both ends included.
func (p PayPeriod) Contains(d core.Date) bool {
	return d.Between(p.Start, p.End)
}

// lastPeriodDays is the length of a period with no following paycheck.
const lastPeriodDays = 13

// maxRollback bounds the holiday loop; no real calendar needs more.
const maxRollback = 31

// Generator computes paycheck dates, rolling them back over weekends and holidays.
type Generator struct {
	holidays HolidayProvider
	logger   *applog.Logger
}

// NewGenerator returns a Generator consulting holidays.
func NewGenerator(holidays HolidayProvider, logger *applog.Logger) *Generator {
	if logger == nil {
		logger = applog.Default()
	}
	return &Generator{holidays: holidays, logger: logger.WithComponent(applog.ComponentCalendar)}
}

// Generate returns the 15th and end-of-month paychecks of every month that
// intersects [start, end], ordered by official date. An inverted range
// yields no paychecks.
func (g *Generator) Generate(ctx context.Context, start, end core.Date) ([]PaycheckDate, error) {
	if end.Before(start) {
		return nil, nil
	}

	lookup := &holidayLookup{provider: g.holidays, years: make(map[int]map[core.Date]string)}
	for y := start.Year(); y <= end.Year(); y++ {
		if err := lookup.load(ctx, y); err != nil {
			return nil, err
		}
	}

	var out []PaycheckDate
	for month := core.NewDate(start.Year(), start.Month(), 1); !month.After(end); month = core.NewDate(month.Year(), month.Month()+1, 1) {
		prefix := fmt.Sprintf("%04d-%02d", month.Year(), month.Month())
		for _, pc := range []struct {
			label    string
			official core.Date
		}{
			{prefix + " 15th", core.NewDate(month.Year(), month.Month(), 15)},
			{prefix + " EOM", month.EndOfMonth()},
		} {
			adjusted, err := g.adjust(ctx, lookup, pc.official)
			if err != nil {
				return nil, err
			}
			out = append(out, PaycheckDate{Label: pc.label, Official: pc.official, Adjusted: adjusted})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Official.Before(out[j].Official) })
	g.logger.DebugContext(ctx, "Paycheck calendar generated",
		applog.FieldStart, start.String(), applog.FieldEnd, end.String(), applog.FieldCount, len(out))
	return out, nil
}

// Periods generates paychecks for [start, end] plus the following month so
// that the last period in range ends the day before the next real paycheck.
// Only periods starting on or before end are returned.
func (g *Generator) Periods(ctx context.Context, start, end core.Date) ([]PayPeriod, error) {
	if end.Before(start) {
		return nil, nil
	}
	lookahead := core.NewDate(end.Year(), end.Month()+1, 1).EndOfMonth()
	dates, err := g.Generate(ctx, start, lookahead)
	if err != nil {
		return nil, err
	}
	var out []PayPeriod
	for _, p := range PayPeriods(dates) {
		if p.Start.After(end) {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *Generator) adjust(ctx context.Context, lookup *holidayLookup, official core.Date) (core.Date, error) {
	d := weekendRollback(official, true)
	for i := 0; ; i++ {
		holiday, err := lookup.is(ctx, d)
		if err != nil {
			return core.Date{}, err
		}
		if !holiday {
			return d, nil
		}
		if i == maxRollback {
			return core.Date{}, fmt.Errorf("adjust %s: no business day within %d days", official, maxRollback)
		}
		d = weekendRollback(d.AddDays(-1), false)
	}
}

// weekendRollback moves Saturday and Sunday back to Friday. Paychecks
// officially due on a Monday are also paid the Friday before; that rule
// only applies to the official date, not to holiday rollbacks.
func weekendRollback(d core.Date, official bool) core.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	case time.Monday:
		if official {
			return d.AddDays(-3)
		}
	}
	return d
}

// holidayLookup fetches each year from the provider at most once per
// Generate call.
type holidayLookup struct {
	provider HolidayProvider
	years    map[int]map[core.Date]string
}

func (l *holidayLookup) load(ctx context.Context, year int) error {
	if _, ok := l.years[year]; ok {
		return nil
	}
	if l.provider == nil {
		l.years[year] = nil
		return nil
	}
	set, err := l.provider.HolidaysForYear(ctx, year)
	if err != nil {
		return fmt.Errorf("%w: holidays for %d: %w", core.ErrDataUnavailable, year, err)
	}
	l.years[year] = set
	return nil
}

func (l *holidayLookup) is(ctx context.Context, d core.Date) (bool, error) {
	if err := l.load(ctx, d.Year()); err != nil {
		return false, err
	}
	_, ok := l.years[d.Year()][d]
	return ok, nil
}

// PayPeriods turns ordered paycheck dates into pay periods. Each period
// ends the day before the next adjusted date; the last one spans 14 days.
func PayPeriods(dates []PaycheckDate) []PayPeriod {
	out := make([]PayPeriod, 0, len(dates))
	for i, pc := range dates {
		end := pc.Adjusted.AddDays(lastPeriodDays)
		if i+1 < len(dates) {
			end = dates[i+1].Adjusted.AddDays(-1)
		}
		out = append(out, PayPeriod{Label: pc.Label, Start: pc.Adjusted, End: end})
	}
	return out
}

// PeriodContaining finds the period that includes d.
func PeriodContaining(periods []PayPeriod, d core.Date) (PayPeriod, bool) {
	for _, p := range periods {
		if p.Contains(d) {
			return p, true
		}
	}
	return PayPeriod{}, false
}
