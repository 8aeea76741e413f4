package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/core"
)

type fakeRecords struct {
	sources       []core.IncomeSource
	items         []core.FixedItem
	categories    []core.Category
	vaults        []core.Vault
	paychecks     []core.Paycheck
	expenses      []core.Expense
	contributions []core.VaultContribution
}

func (f *fakeRecords) CreateIncomeSource(_ context.Context, s core.IncomeSource) (int64, error) {
	f.sources = append(f.sources, s)
	return int64(len(f.sources)), nil
}

func (f *fakeRecords) ListIncomeSources(context.Context, string) ([]core.IncomeSource, error) {
	return f.sources, nil
}

func (f *fakeRecords) CreateFixedItem(_ context.Context, i core.FixedItem) (int64, error) {
	f.items = append(f.items, i)
	return int64(len(f.items)), nil
}

func (f *fakeRecords) ListFixedItems(context.Context, string) ([]core.FixedItem, error) {
	return f.items, nil
}

func (f *fakeRecords) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	f.categories = append(f.categories, c)
	return int64(len(f.categories)), nil
}

func (f *fakeRecords) CreateVault(_ context.Context, v core.Vault) (int64, error) {
	f.vaults = append(f.vaults, v)
	return int64(len(f.vaults)), nil
}

func (f *fakeRecords) ListVaults(context.Context, string) ([]core.Vault, error) {
	return f.vaults, nil
}

func (f *fakeRecords) UpsertPaycheck(_ context.Context, p core.Paycheck) (int64, error) {
	f.paychecks = append(f.paychecks, p)
	return 1, nil
}

func (f *fakeRecords) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	f.expenses = append(f.expenses, e)
	return int64(len(f.expenses)), nil
}

func (f *fakeRecords) CreateVaultContribution(_ context.Context, c core.VaultContribution) (int64, error) {
	f.contributions = append(f.contributions, c)
	return int64(len(f.contributions)), nil
}

func TestIncomeSourcesAndFixedItems(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/income-sources", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{}, decode(t, rr)["income_sources"])

	rr = f.do(t, http.MethodPost, "/api/income-sources", `{"name":"Salary","amount_cents":250000,"frequency":"semi-monthly","due_days":["15","EOM"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, f.recs.sources, 1)
	assert.Equal(t, "u1", f.recs.sources[0].UserID)

	rr = f.do(t, http.MethodPost, "/api/fixed-items", `{"name":"Rent","amount_cents":120000,"frequency":"monthly","due_days":["1"],"vault_id":2}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.EqualValues(t, 1, decode(t, rr)["id"])

	rr = f.do(t, http.MethodGet, "/api/fixed-items", "")
	assert.Len(t, decode(t, rr)["fixed_items"], 1)

	for _, body := range []string{
		`{"name":"","amount_cents":100,"frequency":"monthly"}`,
		`{"name":"Gym","amount_cents":0,"frequency":"monthly"}`,
		`{"name":"Gym","amount_cents":100,"frequency":"hourly"}`,
		`{"name":"Gym","amount_cents":100,"frequency":"monthly","due_days":["40"]}`,
		`{"name":"Gym","amount_cents":100,"frequency":"weekly","weekly_day":"someday"}`,
	} {
		rr := f.do(t, http.MethodPost, "/api/fixed-items", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Len(t, f.recs.items, 1)
}

func TestVaultsAndCategories(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/vaults", `{"name":"Insurance"}`).Code)
	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/categories", `{"name":"Housing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/vaults", `{"name":"  "}`).Code)

	rr := f.do(t, http.MethodGet, "/api/vaults", "")
	vaults := decode(t, rr)["vaults"].([]any)
	require.Len(t, vaults, 1)
	assert.Equal(t, "Insurance", vaults[0].(map[string]any)["name"])
}

func TestPaychecksExpensesAndContributions(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPut, "/api/paychecks", `{"label":"2025-03 15th","date":"2025-03-14","amount_cents":300000}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/paychecks", `{"label":"x","amount_cents":300000}`).Code)

	rr = f.do(t, http.MethodPost, "/api/paychecks/1/expenses", `{"name":"Rent","amount_cents":120000,"status":"paid","transaction_id":9}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, f.recs.expenses, 1)
	assert.Equal(t, core.StatusPlanned, f.recs.expenses[0].Status)
	assert.Nil(t, f.recs.expenses[0].TransactionID)
	assert.EqualValues(t, 1, f.recs.expenses[0].PaycheckID)

	rr = f.do(t, http.MethodPost, "/api/paychecks/99/expenses", `{"name":"Rent","amount_cents":120000}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/paychecks/1/contributions", `{"vault_id":2,"amount_cents":50000}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/paychecks/1/contributions", `{"amount_cents":50000}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/paychecks/1/contributions", `{"vault_id":2,"amount_cents":-1}`).Code)
	assert.Len(t, f.recs.contributions, 1)
}
