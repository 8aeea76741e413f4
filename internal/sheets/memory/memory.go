package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"payplan/internal/core"
	ports "payplan/internal/sheets"
)

// Store is the in-process stand-in for the spreadsheet, used when no
// spreadsheet is configured.
type Store struct {
	mu       sync.Mutex
	rows     []ports.LedgerRow
	holidays []core.Holiday
}

var (
	_ ports.LedgerWriter  = (*Store)(nil)
	_ ports.LedgerReader  = (*Store)(nil)
	_ ports.HolidayReader = (*Store)(nil)
)

// New returns an empty ledger seeded with holidays.
func New(holidays []core.Holiday) *Store {
	return &Store{holidays: dedupe(holidays)}
}

// NewFromFile seeds holidays from a "YYYY-MM-DD name" file. A missing file
// yields an empty store.
func NewFromFile(base string) *Store {
	return New(readHolidays(filepath.Join(base, "holidays.txt")))
}

// AppendPaid stores the row and returns a synthetic row reference.
func (s *Store) AppendPaid(_ context.Context, row ports.LedgerRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ListPaid returns the rows appended for one year.
func (s *Store) ListPaid(_ context.Context, year int) ([]ports.LedgerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ports.LedgerRow
	for _, r := range s.rows {
		if r.Posted.Year() == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListHolidays(_ context.Context, year int) ([]core.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Holiday
	for _, h := range s.holidays {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}

func readHolidays(path string) []core.Holiday {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Holiday
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		date, name, _ := strings.Cut(line, " ")
		d, err := core.ParseDate(date)
		if err != nil {
			continue
		}
		out = append(out, core.Holiday{Date: d, Name: strings.TrimSpace(name)})
	}
	return out
}

func dedupe(in []core.Holiday) []core.Holiday {
	seen := map[core.Holiday]struct{}{}
	out := make([]core.Holiday, 0, len(in))
	for _, h := range in {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
