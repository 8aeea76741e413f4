// Package holidays provides the holiday calendars used to shift paycheck
// dates: observed US federal holidays, custom holidays from the store, and a
// caching wrapper keyed by year.
package holidays

import (
	"context"
	"fmt"
	"sort"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"payplan/internal/core"
)

// Provider returns the holidays of one calendar year keyed by date.
type Provider interface {
	HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, year int) (map[core.Date]string, error)

func (f ProviderFunc) HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error) {
	return f(ctx, year)
}

// USFederal computes observed US federal holidays.
type USFederal struct {
	holidays []*cal.Holiday
}

// NewUSFederal returns the federal holiday calendar.
func NewUSFederal() *USFederal {
	return &USFederal{holidays: us.Holidays}
}

// HolidaysForYear returns observed dates falling in year. The following
// year is computed too because New Year's Day on a Saturday is observed on
// December 31.
func (p *USFederal) HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[core.Date]string)
	for _, y := range []int{year, year + 1} {
		for _, h := range p.holidays {
			_, observed := h.Calc(y)
			if observed.IsZero() || observed.Year() != year {
				continue
			}
			out[core.DateOf(observed)] = h.Name
		}
	}
	return out, nil
}

// Static is a fixed holiday set, used for custom calendars and tests.
type Static map[core.Date]string

func (s Static) HolidaysForYear(_ context.Context, year int) (map[core.Date]string, error) {
	out := make(map[core.Date]string)
	for d, name := range s {
		if d.Year() == year {
			out[d] = name
		}
	}
	return out, nil
}

// Lister is the storage side of custom holidays.
type Lister interface {
	ListHolidays(ctx context.Context, year int) ([]core.Holiday, error)
}

// Stored serves custom holidays persisted in the store.
type Stored struct {
	Lister Lister
}

func (s Stored) HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error) {
	rows, err := s.Lister.ListHolidays(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list custom holidays for %d: %w", year, err)
	}
	out := make(map[core.Date]string, len(rows))
	for _, h := range rows {
		out[h.Date] = h.Name
	}
	return out, nil
}

// Merged unions several providers. When two providers name the same date
// the first one wins.
type Merged []Provider

func (m Merged) HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error) {
	out := make(map[core.Date]string)
	for _, p := range m {
		set, err := p.HolidaysForYear(ctx, year)
		if err != nil {
			return nil, err
		}
		for d, name := range set {
			if _, ok := out[d]; !ok {
				out[d] = name
			}
		}
	}
	return out, nil
}

// List flattens a year's holidays into a date-ordered slice.
func List(ctx context.Context, p Provider, year int) ([]core.Holiday, error) {
	set, err := p.HolidaysForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make([]core.Holiday, 0, len(set))
	for d, name := range set {
		out = append(out, core.Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
