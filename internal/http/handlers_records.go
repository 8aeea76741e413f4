package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/recurrence"
)

// Records is the record store behind the plain create and list routes.
type Records interface {
	CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error)
	ListIncomeSources(ctx context.Context, userID string) ([]core.IncomeSource, error)
	CreateFixedItem(ctx context.Context, f core.FixedItem) (int64, error)
	ListFixedItems(ctx context.Context, userID string) ([]core.FixedItem, error)
	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	CreateVault(ctx context.Context, v core.Vault) (int64, error)
	ListVaults(ctx context.Context, userID string) ([]core.Vault, error)
	UpsertPaycheck(ctx context.Context, p core.Paycheck) (int64, error)
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	CreateVaultContribution(ctx context.Context, c core.VaultContribution) (int64, error)
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return core.NewValidationError("name", name, "required")
	}
	return nil
}

func (s *Server) handleCreateIncomeSource(w http.ResponseWriter, r *http.Request, userID string) {
	var src core.IncomeSource
	if err := decodeJSON(w, r, &src); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	src.UserID = userID
	src.Name = sanitizeInput(src.Name)
	if err := src.Validate(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}
	if err := recurrence.ValidateRule(src.Rule()); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}
	src.Frequency, _ = core.ParseFrequency(string(src.Frequency))

	id, err := s.deps.Records.CreateIncomeSource(r.Context(), src)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	src.ID = id
	writeJSON(w, http.StatusCreated, src)
}

func (s *Server) handleListIncomeSources(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.deps.Records.ListIncomeSources(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"income_sources": nonNil(list)})
}

func (s *Server) handleCreateFixedItem(w http.ResponseWriter, r *http.Request, userID string) {
	var item core.FixedItem
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	item.UserID = userID
	item.Name = sanitizeInput(item.Name)
	if err := item.Validate(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}
	if err := recurrence.ValidateRule(item.Rule()); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}
	item.Frequency, _ = core.ParseFrequency(string(item.Frequency))

	id, err := s.deps.Records.CreateFixedItem(r.Context(), item)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	item.ID = id
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListFixedItems(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.deps.Records.ListFixedItems(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fixed_items": nonNil(list)})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	c.UserID = userID
	c.Name = sanitizeInput(c.Name)
	if err := requireName(c.Name); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	id, err := s.deps.Records.CreateCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	c.ID = id
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCreateVault(w http.ResponseWriter, r *http.Request, userID string) {
	var v core.Vault
	if err := decodeJSON(w, r, &v); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	v.UserID = userID
	v.Name = sanitizeInput(v.Name)
	if err := requireName(v.Name); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	id, err := s.deps.Records.CreateVault(r.Context(), v)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	v.ID = id
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVaults(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.deps.Records.ListVaults(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vaults": nonNil(list)})
}

// handleUpsertPaycheck records the realized paycheck for a calendar label.
func (s *Server) handleUpsertPaycheck(w http.ResponseWriter, r *http.Request, userID string) {
	var p core.Paycheck
	if err := decodeJSON(w, r, &p); err != nil {
		s.writeError(w, r, applog.OpUpsert, err)
		return
	}
	p.UserID = userID
	p.Label = sanitizeInput(p.Label)
	switch {
	case p.Label == "":
		s.writeError(w, r, applog.OpUpsert, core.NewValidationError("label", p.Label, "required"))
		return
	case p.Date.IsEmpty():
		s.writeError(w, r, applog.OpUpsert, core.NewValidationError("date", "", "required"))
		return
	}
	if err := p.Amount.Validate(); err != nil {
		s.writeError(w, r, applog.OpUpsert, invalid(err))
		return
	}

	id, err := s.deps.Records.UpsertPaycheck(r.Context(), p)
	if err != nil {
		s.writeError(w, r, applog.OpUpsert, err)
		return
	}
	p.ID = id
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, userID string) {
	paycheckID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	var e core.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	if _, err := s.deps.Store.GetPaycheck(r.Context(), userID, paycheckID); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	e.UserID, e.PaycheckID = userID, paycheckID
	e.Name = sanitizeInput(e.Name)
	// New expenses always start planned; the paid transition goes through
	// the reconciler.
	e.Status, e.TransactionID = core.StatusPlanned, nil
	if err := requireName(e.Name); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	if err := e.Amount.Validate(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}

	id, err := s.deps.Records.CreateExpense(r.Context(), e)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	e.ID = id
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleCreateContribution(w http.ResponseWriter, r *http.Request, userID string) {
	paycheckID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	var c core.VaultContribution
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	if c.VaultID <= 0 {
		s.writeError(w, r, applog.OpCreate, core.NewValidationError("vault_id", fmt.Sprint(c.VaultID), "required"))
		return
	}
	if err := c.Amount.Validate(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalid(err))
		return
	}
	if _, err := s.deps.Store.GetPaycheck(r.Context(), userID, paycheckID); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	c.UserID, c.PaycheckID = userID, paycheckID

	id, err := s.deps.Records.CreateVaultContribution(r.Context(), c)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	c.ID = id
	writeJSON(w, http.StatusCreated, c)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
