package http

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/reconcile"
)

type linkRequest struct {
	TransactionID int64      `json:"transaction_id"`
	MatchedAmount core.Money `json:"matched_amount_cents"`
}

type transactionRequest struct {
	Name       string                 `json:"name"`
	Amount     core.Money             `json:"amount_cents"`
	Posted     core.Date              `json:"posted"`
	Source     core.TransactionSource `json:"source"`
	VaultID    *int64                 `json:"vault_id,omitempty"`
	CategoryID *int64                 `json:"category_id,omitempty"`
}

func (t transactionRequest) validate() error {
	if t.Name == "" {
		return core.NewValidationError("name", t.Name, "required")
	}
	if t.Amount.Cents <= 0 {
		return core.NewValidationError("amount_cents", fmt.Sprint(t.Amount.Cents), "must be positive")
	}
	if t.Posted.IsEmpty() {
		return core.NewValidationError("posted", "", "required")
	}
	switch t.Source {
	case core.SourceManual, core.SourceBankSync:
	default:
		return core.NewValidationError("source", string(t.Source), "expected manual or bank-sync")
	}
	return nil
}

type paycheckTotals struct {
	Paycheck core.Paycheck `json:"paycheck"`
	core.Totals
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request, userID string) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpMarkPaid, err)
		return
	}

	out, err := s.deps.Reconciler.MarkPaid(r.Context(), userID, expenseID)
	if err != nil {
		s.writeError(w, r, applog.OpMarkPaid, err)
		return
	}
	status := http.StatusCreated
	if out.AlreadyPaid {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}

func (s *Server) handleLinkTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpLink, err)
		return
	}
	var req linkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpLink, err)
		return
	}
	if req.TransactionID <= 0 {
		s.writeError(w, r, applog.OpLink, core.NewValidationError("transaction_id", fmt.Sprint(req.TransactionID), "required"))
		return
	}

	link, err := s.deps.Reconciler.LinkTransaction(r.Context(), userID, expenseID, req.TransactionID, req.MatchedAmount)
	if err != nil {
		s.writeError(w, r, applog.OpLink, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// handleCreateTransaction records a manual or bank-synced transaction so it
// can later be linked to expenses.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	req.Name = sanitizeInput(req.Name)
	if req.Source == "" {
		req.Source = core.SourceManual
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	t := core.Transaction{
		UserID:     userID,
		Name:       req.Name,
		Amount:     req.Amount,
		Posted:     req.Posted,
		Source:     req.Source,
		VaultID:    req.VaultID,
		CategoryID: req.CategoryID,
	}
	id, err := s.deps.Store.InsertTransaction(r.Context(), t)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	t.ID = id
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request, userID string) {
	c, err := s.deps.Reconciler.Reconciliation(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	c.Matched, c.Unmatched = nonNil(c.Matched), nonNil(c.Unmatched)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleVaultBalance(w http.ResponseWriter, r *http.Request, userID string) {
	vaultID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	b, err := s.deps.Reconciler.VaultBalance(r.Context(), userID, vaultID)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handlePaycheckTotals summarizes a stored paycheck, using its amount as
// the period's income.
func (s *Server) handlePaycheckTotals(w http.ResponseWriter, r *http.Request, userID string) {
	paycheckID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	ctx := r.Context()

	var (
		paycheck      core.Paycheck
		expenses      []core.Expense
		contributions []core.VaultContribution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		paycheck, err = s.deps.Store.GetPaycheck(gctx, userID, paycheckID)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.deps.Store.ListPaycheckExpenses(gctx, userID, paycheckID)
		if err != nil {
			return fmt.Errorf("%w: expenses: %w", core.ErrDataUnavailable, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		contributions, err = s.deps.Store.ListPaycheckContributions(gctx, userID, paycheckID)
		if err != nil {
			return fmt.Errorf("%w: contributions: %w", core.ErrDataUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}

	totals := reconcile.ComputeTotals([]core.Money{paycheck.Amount}, expenses, contributions)
	writeJSON(w, http.StatusOK, paycheckTotals{Paycheck: paycheck, Totals: totals})
}
