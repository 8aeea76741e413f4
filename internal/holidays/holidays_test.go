package holidays

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/core"
)

func d(s string) core.Date { return core.MustParseDate(s) }

func TestUSFederal(t *testing.T) {
	p := NewUSFederal()
	ctx := context.Background()

	set, err := p.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	for _, day := range []string{"2025-01-01", "2025-01-20", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-11-27", "2025-12-25"} {
		assert.Contains(t, set, d(day))
	}
	for day := range set {
		assert.Equal(t, 2025, day.Year())
	}

	set, err = p.HolidaysForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Contains(t, set, d("2026-07-03"), "Independence Day on a Saturday is observed Friday")
	assert.NotContains(t, set, d("2026-07-04"))

	set, err = p.HolidaysForYear(ctx, 2021)
	require.NoError(t, err)
	assert.Contains(t, set, d("2021-12-31"), "New Year's Day 2022 is observed in 2021")
}

func TestStaticAndMerged(t *testing.T) {
	custom := Static{d("2025-12-26"): "Company day", d("2026-01-02"): "Company day"}
	m := Merged{Static{d("2025-12-25"): "Christmas Day"}, custom, Static{d("2025-12-25"): "Other"}}

	set, err := m.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, map[core.Date]string{
		d("2025-12-25"): "Christmas Day",
		d("2025-12-26"): "Company day",
	}, set)

	list, err := List(context.Background(), m, 2025)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, d("2025-12-25"), list[0].Date)
}

func TestMerged_PropagatesError(t *testing.T) {
	boom := errors.New("db closed")
	m := Merged{Static{}, ProviderFunc(func(context.Context, int) (map[core.Date]string, error) { return nil, boom })}
	_, err := m.HolidaysForYear(context.Background(), 2025)
	assert.ErrorIs(t, err, boom)
}

type fakeLister struct{ rows []core.Holiday }

func (f fakeLister) ListHolidays(_ context.Context, year int) ([]core.Holiday, error) {
	var out []core.Holiday
	for _, h := range f.rows {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}

func TestStored(t *testing.T) {
	s := Stored{Lister: fakeLister{rows: []core.Holiday{{Date: d("2025-08-01"), Name: "Summer break"}}}}
	set, err := s.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, "Summer break", set[d("2025-08-01")])
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	upstream := ProviderFunc(func(_ context.Context, year int) (map[core.Date]string, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return map[core.Date]string{core.NewDate(year, 1, 1): "New Year"}, nil
	})
	c := NewCached(upstream, 4, time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := c.HolidaysForYear(context.Background(), 2025)
			assert.NoError(t, err)
			assert.Len(t, set, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate(2025)
	_, err := c.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	fail := true
	upstream := ProviderFunc(func(context.Context, int) (map[core.Date]string, error) {
		if fail {
			return nil, errors.New("unavailable")
		}
		return map[core.Date]string{}, nil
	})
	c := NewCached(upstream, 4, time.Hour, nil)

	_, err := c.HolidaysForYear(context.Background(), 2025)
	require.Error(t, err)
	fail = false
	_, err = c.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cache().Size())
}
