// Package http serves the payplan JSON API: the paycheck calendar, plan
// and forecast views, the mark-as-paid transition and reconciliation.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"payplan/internal/calendar"
	"payplan/internal/core"
	"payplan/internal/forecast"
	applog "payplan/internal/log"
	"payplan/internal/middleware/ratelimit"
	"payplan/internal/middleware/security"
	"payplan/internal/middleware/trace"
	"payplan/internal/reconcile"
)

// Calendar derives paycheck dates and pay periods.
type Calendar interface {
	Generate(ctx context.Context, start, end core.Date) ([]calendar.PaycheckDate, error)
	Periods(ctx context.Context, start, end core.Date) ([]calendar.PayPeriod, error)
}

// Forecaster computes forecasts for one period or a range of them.
type Forecaster interface {
	Forecast(ctx context.Context, userID string, period calendar.PayPeriod) (forecast.Result, error)
	Plan(ctx context.Context, userID string, start, end core.Date) ([]forecast.Result, error)
}

// Reconciler runs the ledger operations.
type Reconciler interface {
	MarkPaid(ctx context.Context, userID string, expenseID int64) (reconcile.Outcome, error)
	LinkTransaction(ctx context.Context, userID string, expenseID, transactionID int64, matched core.Money) (core.ExpenseTransactionLink, error)
	Reconciliation(ctx context.Context, userID string) (reconcile.Classification, error)
	VaultBalance(ctx context.Context, userID string, vaultID int64) (core.VaultBalance, error)
}

// Store is the slice of the record store the handlers write through directly.
type Store interface {
	Ping(ctx context.Context) error
	UpsertAdjustment(ctx context.Context, a core.ForecastAdjustment) (int64, error)
	CreateOneOff(ctx context.Context, o core.OneOffItem) (int64, error)
	InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
	GetPaycheck(ctx context.Context, userID string, id int64) (core.Paycheck, error)
	ListPaycheckExpenses(ctx context.Context, userID string, paycheckID int64) ([]core.Expense, error)
	ListPaycheckContributions(ctx context.Context, userID string, paycheckID int64) ([]core.VaultContribution, error)
}

// Deps are the services the handlers call.
type Deps struct {
	Calendar   Calendar
	Forecaster Forecaster
	Reconciler Reconciler
	Store      Store
	Records    Records
}

// Options tune the HTTP server.
type Options struct {
	RateLimit      ratelimit.Config
	TrustedProxies []string
	Logger         *applog.Logger
	// HolidayCache is reported on /metrics when set.
	HolidayCache CacheStats
}

// Server serves the JSON API.
type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *applog.Logger

	holidayCache CacheStats
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP, logger),
		logger:   logger,

		holidayCache: opts.HolidayCache,
		started:      time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/plan", s.withUser(s.handlePlan))
	mux.HandleFunc("GET /api/forecast", s.withUser(s.handleForecast))
	mux.HandleFunc("PUT /api/adjustments", s.withUser(s.handleUpsertAdjustment))
	mux.HandleFunc("POST /api/one-offs", s.withUser(s.handleCreateOneOff))
	mux.HandleFunc("GET /api/paychecks/{id}/totals", s.withUser(s.handlePaycheckTotals))

	mux.HandleFunc("GET /api/income-sources", s.withUser(s.handleListIncomeSources))
	mux.HandleFunc("POST /api/income-sources", s.withUser(s.handleCreateIncomeSource))
	mux.HandleFunc("GET /api/fixed-items", s.withUser(s.handleListFixedItems))
	mux.HandleFunc("POST /api/fixed-items", s.withUser(s.handleCreateFixedItem))
	mux.HandleFunc("POST /api/categories", s.withUser(s.handleCreateCategory))
	mux.HandleFunc("GET /api/vaults", s.withUser(s.handleListVaults))
	mux.HandleFunc("POST /api/vaults", s.withUser(s.handleCreateVault))
	mux.HandleFunc("PUT /api/paychecks", s.withUser(s.handleUpsertPaycheck))
	mux.HandleFunc("POST /api/paychecks/{id}/expenses", s.withUser(s.handleCreateExpense))
	mux.HandleFunc("POST /api/paychecks/{id}/contributions", s.withUser(s.handleCreateContribution))

	mux.HandleFunc("POST /api/expenses/{id}/paid", s.withUser(s.handleMarkPaid))
	mux.HandleFunc("POST /api/expenses/{id}/links", s.withUser(s.handleLinkTransaction))
	mux.HandleFunc("POST /api/transactions", s.withUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/reconciliation", s.withUser(s.handleReconciliation))
	mux.HandleFunc("GET /api/vaults/{id}/balance", s.withUser(s.handleVaultBalance))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// chain applies, outermost first: context logger, tracing, security
// headers, probe detection and the write rate limit.
func (s *Server) chain(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded").Write(w)
	}
	h = s.limiter.Middleware(s.rateKey, onLimit)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	return applog.Middleware(s.logger)(h)
}

// rateKey buckets by user when one is given, else by client address.
func (s *Server) rateKey(r *http.Request) string {
	if id, err := userID(r); err == nil {
		return "user:" + id
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withUser rejects requests without a caller identity and tags the
// request logger with it.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			ErrorResponse(http.StatusUnauthorized, "unauthorized", err.Error()).Write(w)
			return
		}
		ctx := applog.NewContext(r.Context(), applog.FromContext(r.Context()).With(applog.FieldUserID, id))
		next(w, r.WithContext(ctx), id)
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "not_ready", "store unavailable").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
