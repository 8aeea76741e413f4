// Package reconcile moves planned expenses to Paid and matches realized
// transactions against them.
//
// Marking an expense paid is a single unit of work: the status change, the
// transaction, the vault debit and the links either all commit or none do.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"payplan/internal/core"
	applog "payplan/internal/log"
)

// VaultActivitySource tags vault debits written by MarkPaid.
const VaultActivitySource = "expense_paid"

// Config bounds MarkPaid's retries.
type Config struct {
	// Timeout bounds one MarkPaid call, retries included.
	Timeout     time.Duration
	MaxAttempts int
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// DefaultConfig allows 3 attempts within 10 seconds.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second, MaxAttempts: 3, Backoff: 50 * time.Millisecond}
}

// Outcome is the result of MarkPaid.
type Outcome struct {
	ExpenseID     int64 `json:"expense_id"`
	TransactionID int64 `json:"transaction_id,omitempty"`
	// AlreadyPaid is set when an earlier call made the transition.
	AlreadyPaid bool `json:"already_paid"`
	// CreatedTransaction is false when an existing transaction was linked.
	CreatedTransaction bool       `json:"created_transaction"`
	VaultActivityID    *int64     `json:"vault_activity_id,omitempty"`
	Amount             core.Money `json:"amount_cents"`
	Posted             core.Date  `json:"posted"`
}

// Reconciler runs the ledger operations against a Store.
type Reconciler struct {
	store     Store
	publisher Publisher
	cfg       Config
	now       func() time.Time
	group     singleflight.Group
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher announces each committed MarkPaid on p.
func WithPublisher(p Publisher) Option { return func(r *Reconciler) { r.publisher = p } }

// WithClock sets the clock used to date manual transactions.
func WithClock(now func() time.Time) Option { return func(r *Reconciler) { r.now = now } }

func WithLogger(l *applog.Logger) Option { return func(r *Reconciler) { r.logger = l } }

// New returns a Reconciler. Zero fields of cfg take DefaultConfig values.
func New(store Store, cfg Config, opts ...Option) *Reconciler {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	r := &Reconciler{store: store, cfg: cfg, now: time.Now, logger: applog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent(applog.ComponentReconcile)
	r.events = applog.NewStructuredLogger(r.logger)
	return r
}

// MarkPaid performs the Planned→Paid transition of an expense. Amounts
// already matched by LinkTransaction count toward the expense: only the
// uncovered remainder gets a manual transaction and a vault debit, and a
// fully covered expense gets none.
//
// Concurrent calls for the same expense share one execution, and a call for
// an expense that is already Paid returns Outcome.AlreadyPaid without writing
// anything. Failures are reported as *core.TransitionError after the unit of
// work has been rolled back.
func (r *Reconciler) MarkPaid(ctx context.Context, userID string, expenseID int64) (Outcome, error) {
	key := userID + "/" + strconv.FormatInt(expenseID, 10)
	ch := r.group.DoChan(key, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
		defer cancel()
		return r.markPaidWithRetry(wctx, userID, expenseID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Outcome{}, res.Err
		}
		return res.Val.(Outcome), nil
	case <-ctx.Done():
		return Outcome{}, &core.TransitionError{ExpenseID: expenseID, Step: core.StepBegin, Err: ctx.Err()}
	}
}

func (r *Reconciler) markPaidWithRetry(ctx context.Context, userID string, expenseID int64) (Outcome, error) {
	delay := r.cfg.Backoff
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out, err := r.markPaidOnce(ctx, userID, expenseID)
		if err == nil {
			r.events.LogExpensePaid(ctx, userID, expenseID, out.TransactionID, out.Amount.Cents, out.AlreadyPaid)
			if !out.AlreadyPaid {
				r.publish(ctx, userID, out)
			}
			return out, nil
		}
		lastErr = err

		var te *core.TransitionError
		if errors.As(err, &te) && !te.Retryable() {
			return Outcome{}, err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}
		r.logger.WarnContext(ctx, "Mark paid failed, retrying",
			applog.FieldExpenseID, expenseID, applog.FieldStep, stepOf(err), applog.FieldAttempt, attempt, applog.FieldError, err)

		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return Outcome{}, &core.TransitionError{ExpenseID: expenseID, Step: stepOf(lastErr), Err: errors.Join(ctx.Err(), lastErr)}
		}
	}
	return Outcome{}, lastErr
}

func stepOf(err error) core.TransitionStep {
	var te *core.TransitionError
	if errors.As(err, &te) {
		return te.Step
	}
	return core.StepBegin
}

func (r *Reconciler) markPaidOnce(ctx context.Context, userID string, expenseID int64) (Outcome, error) {
	var out Outcome
	ran := false
	fail := func(step core.TransitionStep, err error) error {
		return &core.TransitionError{ExpenseID: expenseID, Step: step, Err: err}
	}

	err := r.store.WithinTx(ctx, func(tx Tx) error {
		exp, err := tx.GetExpense(ctx, userID, expenseID)
		if err != nil {
			return fail(core.StepLoadExpense, err)
		}
		out = Outcome{ExpenseID: exp.ID, Amount: exp.Amount}

		changed, err := tx.MarkExpensePaid(ctx, userID, expenseID)
		if err != nil {
			return fail(core.StepUpdateStatus, err)
		}
		if !changed {
			// Re-read: the call that won may have committed after the first read.
			cur, err := tx.GetExpense(ctx, userID, expenseID)
			if err != nil {
				return fail(core.StepLoadExpense, err)
			}
			out.AlreadyPaid = true
			if cur.TransactionID != nil {
				out.TransactionID = *cur.TransactionID
			}
			ran = true
			return nil
		}

		links, err := tx.ExpenseLinks(ctx, expenseID)
		if err != nil {
			return fail(core.StepLoadLinks, err)
		}
		var linked core.Money
		for _, l := range links {
			linked = linked.Add(l.MatchedAmount)
		}
		remaining := exp.Amount.Sub(linked)

		switch {
		case exp.TransactionID != nil:
			t, err := tx.GetTransaction(ctx, userID, *exp.TransactionID)
			if err != nil {
				return fail(core.StepCreateTx, err)
			}
			out.TransactionID, out.Posted = t.ID, t.Posted
		case remaining.Cents <= 0 && len(links) > 0:
			// Linked transactions already cover the expense; the oldest becomes its transaction.
			t, err := tx.GetTransaction(ctx, userID, links[0].TransactionID)
			if err != nil {
				return fail(core.StepCreateTx, err)
			}
			out.TransactionID, out.Posted = t.ID, t.Posted
			if err := tx.SetExpenseTransaction(ctx, userID, expenseID, t.ID); err != nil {
				return fail(core.StepLinkTransaction, err)
			}
		default:
			t := core.Transaction{
				UserID:     userID,
				Name:       exp.Name,
				Amount:     remaining,
				VaultID:    exp.VaultID,
				CategoryID: exp.CategoryID,
				Source:     core.SourceManual,
				Posted:     core.DateOf(r.now()),
			}
			id, err := tx.InsertTransaction(ctx, t)
			if err != nil {
				return fail(core.StepCreateTx, err)
			}
			out.TransactionID, out.Posted, out.CreatedTransaction = id, t.Posted, true

			if t.VaultID != nil {
				related := id
				actID, err := tx.AppendVaultActivity(ctx, core.VaultActivity{
					UserID:       userID,
					VaultID:      *t.VaultID,
					Amount:       t.Amount.Neg(),
					ActivityDate: t.Posted,
					Source:       VaultActivitySource,
					RelatedID:    &related,
				})
				if err != nil {
					return fail(core.StepVaultActivity, err)
				}
				out.VaultActivityID = &actID
			}

			if err := tx.SetExpenseTransaction(ctx, userID, expenseID, id); err != nil {
				return fail(core.StepLinkTransaction, err)
			}
		}

		if remaining.Cents > 0 && !hasLink(links, out.TransactionID) {
			if _, err := tx.InsertLink(ctx, core.ExpenseTransactionLink{
				ExpenseID:     expenseID,
				TransactionID: out.TransactionID,
				MatchedAmount: remaining,
			}); err != nil {
				return fail(core.StepCreateLink, err)
			}
		}
		ran = true
		return nil
	})
	if err != nil {
		var te *core.TransitionError
		if errors.As(err, &te) {
			return Outcome{}, err
		}
		step := core.StepBegin
		if ran {
			step = core.StepCommit
		}
		return Outcome{}, fail(step, err)
	}
	return out, nil
}

func hasLink(links []core.ExpenseTransactionLink, transactionID int64) bool {
	for _, l := range links {
		if l.TransactionID == transactionID {
			return true
		}
	}
	return false
}

func (r *Reconciler) publish(ctx context.Context, userID string, out Outcome) {
	if r.publisher == nil {
		r.logger.DebugContext(ctx, "No publisher configured, skipping expense.paid event", applog.FieldExpenseID, out.ExpenseID)
		return
	}
	if err := r.publisher.PublishExpensePaid(ctx, userID, out.ExpenseID, out.TransactionID, out.Amount, out.Posted); err != nil {
		// The transition is committed; the event can be replayed from the ledger.
		r.logger.ErrorContext(ctx, "Failed to publish expense.paid event",
			applog.FieldExpenseID, out.ExpenseID, applog.FieldTransactionID, out.TransactionID, applog.FieldError, err)
	}
}

// LinkTransaction matches part or all of a transaction to an expense, for
// bank-synced transactions that were not created by MarkPaid. The sum of
// matched amounts on an expense never exceeds its amount, and a transaction
// is linked to a given expense at most once (core.ErrAlreadyLinked).
func (r *Reconciler) LinkTransaction(ctx context.Context, userID string, expenseID, transactionID int64, matched core.Money) (core.ExpenseTransactionLink, error) {
	if err := matched.Validate(); err != nil {
		return core.ExpenseTransactionLink{}, core.NewValidationError("matched_amount", matched.String(), "must be positive")
	}

	var link core.ExpenseTransactionLink
	err := r.store.WithinTx(ctx, func(tx Tx) error {
		exp, err := tx.GetExpense(ctx, userID, expenseID)
		if err != nil {
			return fmt.Errorf("load expense: %w", err)
		}
		if _, err := tx.GetTransaction(ctx, userID, transactionID); err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		links, err := tx.ExpenseLinks(ctx, expenseID)
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}
		if hasLink(links, transactionID) {
			return fmt.Errorf("%w: transaction %d, expense %d", core.ErrAlreadyLinked, transactionID, expenseID)
		}
		var already core.Money
		for _, l := range links {
			already = already.Add(l.MatchedAmount)
		}
		if already.Add(matched).Cents > exp.Amount.Cents {
			return fmt.Errorf("%w: %s linked + %s requested > %s", core.ErrLinkExceedsExpense, already, matched, exp.Amount)
		}
		link = core.ExpenseTransactionLink{ExpenseID: expenseID, TransactionID: transactionID, MatchedAmount: matched}
		link.ID, err = tx.InsertLink(ctx, link)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.ExpenseTransactionLink{}, err
	}
	r.logger.InfoContext(ctx, "Transaction linked",
		applog.FieldExpenseID, expenseID, applog.FieldTransactionID, transactionID, applog.FieldAmountCents, matched.Cents)
	return link, nil
}

// Reconciliation loads a user's records and classifies every transaction.
func (r *Reconciler) Reconciliation(ctx context.Context, userID string) (Classification, error) {
	txs, err := r.store.ListTransactions(ctx, userID)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: transactions: %w", core.ErrDataUnavailable, err)
	}
	expenses, err := r.store.ListExpenses(ctx, userID)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: expenses: %w", core.ErrDataUnavailable, err)
	}
	links, err := r.store.ListLinks(ctx, userID)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: links: %w", core.ErrDataUnavailable, err)
	}
	return Classify(txs, expenses, links), nil
}

// VaultBalance sums the vault's activity ledger.
func (r *Reconciler) VaultBalance(ctx context.Context, userID string, vaultID int64) (core.VaultBalance, error) {
	entries, err := r.store.ListVaultActivity(ctx, userID, vaultID)
	if err != nil {
		return core.VaultBalance{}, fmt.Errorf("%w: vault activity: %w", core.ErrDataUnavailable, err)
	}
	return Balance(vaultID, entries), nil
}
