package http

import (
	"errors"
	"fmt"
	"net/http"

	"payplan/internal/calendar"
	"payplan/internal/core"
	"payplan/internal/forecast"
	applog "payplan/internal/log"
)

// maxRangeDays caps calendar and plan windows.
const maxRangeDays = 3 * 366

// periodLookback is how far before a date the containing period can start.
const periodLookback = 31

type calendarResponse struct {
	Paychecks []calendar.PaycheckDate `json:"paychecks"`
	Periods   []calendar.PayPeriod    `json:"periods"`
}

type periodPlan struct {
	forecast.Result
	IncomeCents   core.Money `json:"income_total_cents"`
	ExpensesCents core.Money `json:"expenses_total_cents"`
	NetCents      core.Money `json:"net_cents"`
}

func newPeriodPlan(res forecast.Result) periodPlan {
	income, expenses := res.Totals()
	return periodPlan{Result: res, IncomeCents: income, ExpensesCents: expenses, NetCents: income.Sub(expenses)}
}

func checkSpan(start, end core.Date) error {
	if start.DaysUntil(end) > maxRangeDays {
		return core.NewValidationError("end", end.String(), fmt.Sprintf("range longer than %d days", maxRangeDays))
	}
	return nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err == nil {
		err = checkSpan(start, end)
	}
	if err != nil {
		s.writeError(w, r, applog.OpGenerate, err)
		return
	}

	paychecks, err := s.deps.Calendar.Generate(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, applog.OpGenerate, err)
		return
	}
	periods, err := s.deps.Calendar.Periods(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, applog.OpGenerate, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponse{Paychecks: nonNil(paychecks), Periods: nonNil(periods)})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request, userID string) {
	start, end, err := queryRange(r)
	if err == nil {
		err = checkSpan(start, end)
	}
	if err != nil {
		s.writeError(w, r, applog.OpForecast, err)
		return
	}

	results, err := s.deps.Forecaster.Plan(r.Context(), userID, start, end)
	if err != nil {
		s.writeError(w, r, applog.OpForecast, err)
		return
	}
	out := make([]periodPlan, 0, len(results))
	for _, res := range results {
		out = append(out, newPeriodPlan(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": out})
}

// handleForecast forecasts the pay period that contains ?start.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request, userID string) {
	day, err := queryDate(r, "start")
	if err != nil {
		s.writeError(w, r, applog.OpForecast, err)
		return
	}

	periods, err := s.deps.Calendar.Periods(r.Context(), day.AddDays(-periodLookback), day)
	if err != nil {
		s.writeError(w, r, applog.OpForecast, err)
		return
	}
	period, ok := calendar.PeriodContaining(periods, day)
	if !ok {
		s.writeError(w, r, applog.OpForecast, fmt.Errorf("%w: no pay period contains %s", core.ErrNotFound, day))
		return
	}

	res, err := s.deps.Forecaster.Forecast(r.Context(), userID, period)
	if err != nil {
		s.writeError(w, r, applog.OpForecast, err)
		return
	}
	writeJSON(w, http.StatusOK, newPeriodPlan(res))
}

func (s *Server) handleUpsertAdjustment(w http.ResponseWriter, r *http.Request, userID string) {
	var adj core.ForecastAdjustment
	if err := decodeJSON(w, r, &adj); err != nil {
		s.writeError(w, r, applog.OpUpsert, err)
		return
	}
	adj.UserID = userID
	if adj.FixedItemID <= 0 {
		s.writeError(w, r, applog.OpUpsert, core.NewValidationError("fixed_item_id", fmt.Sprint(adj.FixedItemID), "required"))
		return
	}
	if err := adj.Normalize(); err != nil {
		s.writeError(w, r, applog.OpUpsert, invalid(err))
		return
	}

	id, err := s.deps.Store.UpsertAdjustment(r.Context(), adj)
	if err != nil {
		s.writeError(w, r, applog.OpUpsert, err)
		return
	}
	adj.ID = id
	writeJSON(w, http.StatusOK, adj)
}

func (s *Server) handleCreateOneOff(w http.ResponseWriter, r *http.Request, userID string) {
	var item core.OneOffItem
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	item.UserID = userID
	item.Name = sanitizeInput(item.Name)
	if err := item.Normalize(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}

	id, err := s.deps.Store.CreateOneOff(r.Context(), item)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	item.ID = id
	writeJSON(w, http.StatusCreated, item)
}

// invalid marks a model validation failure as a client error.
func invalid(err error) error {
	if errors.Is(err, core.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrValidation, err)
}
