package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/reconcile"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "payplan.db"), applog.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedExpense creates a vault, a paycheck and a planned expense against them.
func seedExpense(t *testing.T, repo *SQLiteRepository, amount int64) (expenseID, vaultID int64) {
	t.Helper()
	ctx := context.Background()
	vaultID, err := repo.CreateVault(ctx, core.Vault{UserID: "u1", Name: "Insurance"})
	require.NoError(t, err)
	paycheckID, err := repo.UpsertPaycheck(ctx, core.Paycheck{UserID: "u1", Label: "2025-03 15th", Date: core.NewDate(2025, 3, 14), Amount: core.Cents(250000)})
	require.NoError(t, err)
	expenseID, err = repo.CreateExpense(ctx, core.Expense{UserID: "u1", PaycheckID: paycheckID, Name: "Car insurance", Amount: core.Cents(amount), VaultID: &vaultID})
	require.NoError(t, err)
	return expenseID, vaultID
}

func TestMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	repo, err := NewSQLiteRepository(path, applog.Discard())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening applies nothing new.
	require.NoError(t, RunMigrations(DSN(path)))
	v, dirty, err := MigrationVersion(DSN(path))
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}

func TestBudgetConfigRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := core.NewDate(2024, 12, 27)

	_, err := repo.CreateIncomeSource(ctx, core.IncomeSource{UserID: "u1", Name: "Paycheck", Amount: core.Cents(250000), Frequency: core.SemiMonthly, DueDays: []string{"15", "EOM"}})
	require.NoError(t, err)
	_, err = repo.CreateIncomeSource(ctx, core.IncomeSource{UserID: "u2", Name: "Other", Amount: core.Cents(1), Frequency: core.Monthly, DueDays: []string{"1"}})
	require.NoError(t, err)
	catID, err := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Fitness"})
	require.NoError(t, err)
	_, err = repo.CreateFixedItem(ctx, core.FixedItem{UserID: "u1", Name: "Gym", Amount: core.Cents(4000), Frequency: core.Biweekly, WeeklyDay: "Friday", StartDate: &start, CategoryID: &catID})
	require.NoError(t, err)

	income, err := repo.ListIncomeSources(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, []string{"15", "EOM"}, income[0].DueDays)
	assert.Nil(t, income[0].StartDate)

	items, err := repo.ListFixedItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.Biweekly, items[0].Frequency)
	assert.Nil(t, items[0].DueDays)
	require.NotNil(t, items[0].StartDate)
	assert.Equal(t, start, *items[0].StartDate)
	assert.Equal(t, &catID, items[0].CategoryID)
	assert.Nil(t, items[0].VaultID)
}

func TestAdjustmentsUpsertAndDeferredLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	itemID, err := repo.CreateFixedItem(ctx, core.FixedItem{UserID: "u1", Name: "Phone", Amount: core.Cents(10000), Frequency: core.Monthly, DueDays: []string{"20"}})
	require.NoError(t, err)

	override := core.Cents(8000)
	id1, err := repo.UpsertAdjustment(ctx, core.ForecastAdjustment{UserID: "u1", FixedItemID: itemID, ForecastStart: "2025-03-14", OverrideAmount: &override})
	require.NoError(t, err)

	next := "2025-03-31"
	id2, err := repo.UpsertAdjustment(ctx, core.ForecastAdjustment{UserID: "u1", FixedItemID: itemID, ForecastStart: "2025-03-14", DeferToStart: &next})
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "same key updates in place")

	current, err := repo.ListAdjustments(ctx, "u1", "2025-03-14")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Nil(t, current[0].OverrideAmount)
	require.NotNil(t, current[0].DeferToStart)
	assert.Equal(t, next, *current[0].DeferToStart)

	deferredIn, err := repo.ListAdjustments(ctx, "u1", next)
	require.NoError(t, err)
	require.Len(t, deferredIn, 1)
	assert.Equal(t, "2025-03-14", deferredIn[0].ForecastStart)
}

func TestOneOffsScopedToPeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := core.NewDate(2025, 3, 20)

	_, err := repo.CreateOneOff(ctx, core.OneOffItem{UserID: "u1", Name: "Bonus", Amount: core.Cents(50000), IsIncome: true, ForecastStart: "2025-03-14", Date: &day})
	require.NoError(t, err)
	_, err = repo.CreateOneOff(ctx, core.OneOffItem{UserID: "u1", Name: "Gift", Amount: core.Cents(3000), ForecastStart: "2025-03-31"})
	require.NoError(t, err)

	got, err := repo.ListOneOffs(ctx, "u1", "2025-03-14")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsIncome)
	assert.Equal(t, &day, got[0].Date)
}

func TestMarkExpensePaidIsConditional(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	expenseID, _ := seedExpense(t, repo, 12000)

	changed, err := repo.MarkExpensePaid(ctx, "u1", expenseID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkExpensePaid(ctx, "u1", expenseID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.GetExpense(ctx, "u2", expenseID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInsertLinkIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	expenseID, _ := seedExpense(t, repo, 12000)
	txID, err := repo.InsertTransaction(ctx, core.Transaction{UserID: "u1", Name: "Bank debit", Amount: core.Cents(5000), Source: core.SourceBankSync, Posted: core.NewDate(2025, 3, 21)})
	require.NoError(t, err)

	link := core.ExpenseTransactionLink{ExpenseID: expenseID, TransactionID: txID, MatchedAmount: core.Cents(5000)}
	first, err := repo.InsertLink(ctx, link)
	require.NoError(t, err)
	second, err := repo.InsertLink(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	own, err := repo.ExpenseLinks(ctx, expenseID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, first, own[0].ID)
	assert.Equal(t, core.Cents(5000), own[0].MatchedAmount)

	links, err := repo.ListLinks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
	links, err = repo.ListLinks(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestWithinTxRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	expenseID, vaultID := seedExpense(t, repo, 12000)
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(tx reconcile.Tx) error {
		if _, err := tx.MarkExpensePaid(ctx, "u1", expenseID); err != nil {
			return err
		}
		if _, err := tx.AppendVaultActivity(ctx, core.VaultActivity{UserID: "u1", VaultID: vaultID, Amount: core.Cents(-12000), ActivityDate: core.NewDate(2025, 3, 20), Source: "test"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	e, err := repo.GetExpense(ctx, "u1", expenseID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPlanned, e.Status)

	activity, err := repo.ListVaultActivity(ctx, "u1", vaultID)
	require.NoError(t, err)
	assert.Empty(t, activity)
}

func TestReconcilerAgainstSQLite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	expenseID, vaultID := seedExpense(t, repo, 12000)

	now := func() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }
	r := reconcile.New(repo, reconcile.DefaultConfig(), reconcile.WithClock(now), reconcile.WithLogger(applog.Discard()))

	out, err := r.MarkPaid(ctx, "u1", expenseID)
	require.NoError(t, err)
	assert.True(t, out.CreatedTransaction)
	require.NotNil(t, out.VaultActivityID)

	again, err := r.MarkPaid(ctx, "u1", expenseID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyPaid)
	assert.Equal(t, out.TransactionID, again.TransactionID)

	txs, err := repo.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, core.SourceManual, txs[0].Source)
	assert.Equal(t, core.NewDate(2025, 3, 20), txs[0].Posted)

	bal, err := r.VaultBalance(ctx, "u1", vaultID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(-12000), bal.Balance)

	rec, err := r.Reconciliation(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rec.Matched, 1)
	assert.Empty(t, rec.Unmatched)
}

func TestMarkPaidCountsExistingLinks(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }

	t.Run("partial link leaves only the remainder", func(t *testing.T) {
		repo := newTestRepo(t)
		expenseID, vaultID := seedExpense(t, repo, 10000)
		bankID, err := repo.InsertTransaction(ctx, core.Transaction{UserID: "u1", Name: "BANK 0318", Amount: core.Cents(6000), Source: core.SourceBankSync, Posted: core.NewDate(2025, 3, 18)})
		require.NoError(t, err)

		r := reconcile.New(repo, reconcile.DefaultConfig(), reconcile.WithClock(now), reconcile.WithLogger(applog.Discard()))
		_, err = r.LinkTransaction(ctx, "u1", expenseID, bankID, core.Cents(6000))
		require.NoError(t, err)

		out, err := r.MarkPaid(ctx, "u1", expenseID)
		require.NoError(t, err)
		assert.True(t, out.CreatedTransaction)

		txs, err := repo.ListTransactions(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, txs, 2)
		manual, err := repo.GetTransaction(ctx, "u1", out.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, core.Cents(4000), manual.Amount)

		links, err := repo.ExpenseLinks(ctx, expenseID)
		require.NoError(t, err)
		var linked core.Money
		for _, l := range links {
			linked = linked.Add(l.MatchedAmount)
		}
		assert.Equal(t, core.Cents(10000), linked)

		bal, err := r.VaultBalance(ctx, "u1", vaultID)
		require.NoError(t, err)
		assert.Equal(t, core.Cents(-4000), bal.Balance)
	})

	t.Run("fully linked expense creates nothing", func(t *testing.T) {
		repo := newTestRepo(t)
		expenseID, vaultID := seedExpense(t, repo, 10000)
		bankID, err := repo.InsertTransaction(ctx, core.Transaction{UserID: "u1", Name: "BANK 0318", Amount: core.Cents(10000), Source: core.SourceBankSync, Posted: core.NewDate(2025, 3, 18)})
		require.NoError(t, err)

		r := reconcile.New(repo, reconcile.DefaultConfig(), reconcile.WithClock(now), reconcile.WithLogger(applog.Discard()))
		_, err = r.LinkTransaction(ctx, "u1", expenseID, bankID, core.Cents(10000))
		require.NoError(t, err)

		out, err := r.MarkPaid(ctx, "u1", expenseID)
		require.NoError(t, err)
		assert.False(t, out.CreatedTransaction)
		assert.Equal(t, bankID, out.TransactionID)
		assert.Equal(t, core.NewDate(2025, 3, 18), out.Posted)

		txs, err := repo.ListTransactions(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, txs, 1)
		links, err := repo.ExpenseLinks(ctx, expenseID)
		require.NoError(t, err)
		assert.Len(t, links, 1)

		e, err := repo.GetExpense(ctx, "u1", expenseID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusPaid, e.Status)
		require.NotNil(t, e.TransactionID)
		assert.Equal(t, bankID, *e.TransactionID)

		bal, err := r.VaultBalance(ctx, "u1", vaultID)
		require.NoError(t, err)
		assert.Equal(t, core.Money{}, bal.Balance)
	})
}

func TestHolidays(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertHoliday(ctx, core.Holiday{Date: core.NewDate(2025, 3, 17), Name: "Company day"}))
	require.NoError(t, repo.UpsertHoliday(ctx, core.Holiday{Date: core.NewDate(2025, 3, 17), Name: "Company day"}))
	require.NoError(t, repo.UpsertHoliday(ctx, core.Holiday{Date: core.NewDate(2026, 1, 2), Name: "Bridge"}))

	got, err := repo.ListHolidays(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Company day", got[0].Name)

	n, err := repo.DeleteHoliday(ctx, core.NewDate(2025, 3, 17))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
