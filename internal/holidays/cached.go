package holidays

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"payplan/internal/cache"
	"payplan/internal/core"
	applog "payplan/internal/log"
)

// Cached memoizes a provider per year. Concurrent misses for the same year
// share one upstream call.
type Cached struct {
	next   Provider
	years  *cache.LRUCache[int, map[core.Date]string]
	group  singleflight.Group
	logger *applog.Logger
}

// NewCached caches up to size years from next for ttl.
func NewCached(next Provider, size int, ttl time.Duration, logger *applog.Logger) *Cached {
	if logger == nil {
		logger = applog.Default()
	}
	return &Cached{
		next:   next,
		years:  cache.NewLRUCache[int, map[core.Date]string](size, ttl),
		logger: logger.WithComponent(applog.ComponentHolidays),
	}
}

// Cache exposes the underlying cache so a cache.Manager can sweep it.
func (c *Cached) Cache() *cache.LRUCache[int, map[core.Date]string] {
	return c.years
}

// HolidaysForYear serves from the cache, loading the year once on a miss.
func (c *Cached) HolidaysForYear(ctx context.Context, year int) (map[core.Date]string, error) {
	if set, ok := c.years.Get(year); ok {
		return set, nil
	}
	v, err, _ := c.group.Do(strconv.Itoa(year), func() (any, error) {
		if set, ok := c.years.Get(year); ok {
			return set, nil
		}
		set, err := c.next.HolidaysForYear(ctx, year)
		if err != nil {
			return nil, err
		}
		c.years.Set(year, set)
		c.logger.DebugContext(ctx, "Holiday year loaded", applog.FieldYear, year, applog.FieldCount, len(set))
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[core.Date]string), nil
}

// Invalidate drops a cached year, after custom holidays change.
func (c *Cached) Invalidate(year int) {
	c.years.Delete(year)
}
