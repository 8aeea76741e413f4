package forecast

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"payplan/internal/calendar"
	"payplan/internal/core"
	applog "payplan/internal/log"
)

// Reader loads a user's forecast inputs.
type Reader interface {
	ListIncomeSources(ctx context.Context, userID string) ([]core.IncomeSource, error)
	ListFixedItems(ctx context.Context, userID string) ([]core.FixedItem, error)
	// ListAdjustments returns adjustments keyed on forecastStart and those
	// deferred into it.
	ListAdjustments(ctx context.Context, userID, forecastStart string) ([]core.ForecastAdjustment, error)
	ListOneOffs(ctx context.Context, userID, forecastStart string) ([]core.OneOffItem, error)
}

// PeriodSource derives pay periods for a date range.
type PeriodSource interface {
	Periods(ctx context.Context, start, end core.Date) ([]calendar.PayPeriod, error)
}

// Service loads forecast inputs and runs Compute.
type Service struct {
	reader      Reader
	periods     PeriodSource
	policy      Policy
	concurrency int
	logger      *applog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy sets the occurrence policy. FirstOccurrence is the default.
func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

// WithConcurrency bounds how many periods Plan computes at once.
func WithConcurrency(n int) Option { return func(s *Service) { s.concurrency = n } }

func WithLogger(l *applog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService returns a Service reading from reader. periods resolves
// pay periods for Plan and for deferred adjustments.
func NewService(reader Reader, periods PeriodSource, opts ...Option) *Service {
	s := &Service{reader: reader, periods: periods, concurrency: 4, logger: applog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentForecast)
	return s
}

// Forecast loads the four inputs concurrently and computes the period's
// forecast. Any failed read fails the whole call with core.ErrDataUnavailable.
func (s *Service) Forecast(ctx context.Context, userID string, period calendar.PayPeriod) (Result, error) {
	in := Input{Period: period, Policy: s.policy}
	key := period.ForecastStart()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.IncomeSources, err = s.reader.ListIncomeSources(gctx, userID)
		return unavailable("income sources", err)
	})
	g.Go(func() (err error) {
		in.FixedItems, err = s.reader.ListFixedItems(gctx, userID)
		return unavailable("fixed items", err)
	})
	g.Go(func() (err error) {
		in.Adjustments, err = s.reader.ListAdjustments(gctx, userID, key)
		return unavailable("forecast adjustments", err)
	})
	g.Go(func() (err error) {
		in.OneOffs, err = s.reader.ListOneOffs(gctx, userID, key)
		return unavailable("one-off items", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.Fields(ctx, slog.LevelWarn, "Forecast inputs unavailable",
			applog.NewFields().WithUser(userID).WithPeriod(key, period.End.String()).WithError(err).WithOperation(applog.OpForecast))
		return Result{}, err
	}

	sources, err := s.sourcePeriods(ctx, key, in.Adjustments)
	if err != nil {
		return Result{}, err
	}
	in.Sources = sources

	res, err := Compute(in)
	if err != nil {
		return Result{}, err
	}
	s.logger.DebugContext(ctx, "Forecast computed",
		applog.FieldUserID, userID, applog.FieldForecastStart, key,
		"income", len(res.Income), "expenses", len(res.Expenses))
	return res, nil
}

// sourcePeriods resolves the periods that adjustments defer into key out of.
func (s *Service) sourcePeriods(ctx context.Context, key string, adjustments []core.ForecastAdjustment) (map[string]calendar.PayPeriod, error) {
	out := make(map[string]calendar.PayPeriod)
	for _, adj := range adjustments {
		if adj.DeferToStart == nil || *adj.DeferToStart != key || adj.ForecastStart == key {
			continue
		}
		if _, ok := out[adj.ForecastStart]; ok || s.periods == nil {
			continue
		}
		start, err := core.ParseDate(adj.ForecastStart)
		if err != nil {
			return nil, fmt.Errorf("adjustment for fixed item %d: %w", adj.FixedItemID, err)
		}
		periods, err := s.periods.Periods(ctx, start, start)
		if err != nil {
			return nil, fmt.Errorf("source period %s: %w", adj.ForecastStart, err)
		}
		for _, p := range periods {
			if p.ForecastStart() == adj.ForecastStart {
				out[adj.ForecastStart] = p
			}
		}
	}
	return out, nil
}

// Plan forecasts every pay period starting in [start, end], in period order.
func (s *Service) Plan(ctx context.Context, userID string, start, end core.Date) ([]Result, error) {
	periods, err := s.periods.Periods(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]Result, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range periods {
		g.Go(func() error {
			res, err := s.Forecast(gctx, userID, p)
			if err != nil {
				return fmt.Errorf("period %s: %w", p.ForecastStart(), err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func unavailable(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", core.ErrDataUnavailable, what, err)
}
