package recurrence

import (
	"strconv"
	"strings"
	"time"

	"payplan/internal/core"
)

// DayKind tells how a due-day specifier resolves to a date.
type DayKind int

const (
	// DayOfMonth is a numeric "D": day D of a month, clamped to its last day.
	DayOfMonth DayKind = iota
	// EndOfMonth is "EOM".
	EndOfMonth
	// MonthDay is "MM/DD": a fixed date every year.
	MonthDay
)

// DaySpec is a parsed due-day specifier.
type DaySpec struct {
	Kind  DayKind
	Month int
	Day   int
}

var daysInMonth = [...]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ParseDaySpec parses "EOM", "MM/DD" or a numeric day of month.
func ParseDaySpec(s string) (DaySpec, error) {
	raw := s
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "EOM") {
		return DaySpec{Kind: EndOfMonth}, nil
	}
	if m, d, ok := strings.Cut(s, "/"); ok {
		month, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil || month < 1 || month > 12 {
			return DaySpec{}, core.NewValidationError("due_day", raw, "month must be 01-12")
		}
		day, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil || day < 1 || day > daysInMonth[month] {
			return DaySpec{}, core.NewValidationError("due_day", raw, "day does not exist in month")
		}
		return DaySpec{Kind: MonthDay, Month: month, Day: day}, nil
	}
	day, err := strconv.Atoi(s)
	if err != nil {
		return DaySpec{}, core.NewValidationError("due_day", raw, `expected a day number, "EOM" or "MM/DD"`)
	}
	if day < 1 || day > 31 {
		return DaySpec{}, core.NewValidationError("due_day", raw, "day must be 1-31")
	}
	return DaySpec{Kind: DayOfMonth, Day: day}, nil
}

// In resolves the specifier within the given month. MonthDay specifiers only
// resolve in their own month; ok is false otherwise, and for 02/29 outside
// leap years.
func (s DaySpec) In(year, month int) (core.Date, bool) {
	last := core.NewDate(year, month, 1).EndOfMonth()
	switch s.Kind {
	case EndOfMonth:
		return last, true
	case MonthDay:
		if s.Month != month || s.Day > last.Day() {
			return core.Date{}, false
		}
		return core.NewDate(year, month, s.Day), true
	default:
		if s.Day > last.Day() {
			return last, true
		}
		return core.NewDate(year, month, s.Day), true
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English weekday names and their three-letter
// abbreviations, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdays[key]; ok {
		return wd, nil
	}
	if len(key) == 3 {
		for name, wd := range weekdays {
			if strings.HasPrefix(name, key) {
				return wd, nil
			}
		}
	}
	return 0, core.NewValidationError("weekly_day", s, "unknown weekday")
}
