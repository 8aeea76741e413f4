package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input (bad day specifier, unknown weekday...).
	ErrValidation = errors.New("validation error")

	// ErrDataUnavailable marks a failed upstream read; callers must not
	// substitute partial or empty data.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrTransition marks a failed Planned→Paid transition.
	ErrTransition = errors.New("transition failed")

	ErrNotFound           = errors.New("not found")
	ErrLinkExceedsExpense = errors.New("matched amount exceeds expense amount")
	// ErrAlreadyLinked marks a second link request for the same expense and transaction.
	ErrAlreadyLinked = errors.New("transaction already linked to expense")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// NewValidationError reports value of field as rejected for reason.
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransitionStep names a step of the mark-as-paid unit of work.
type TransitionStep string

const (
	StepUpdateStatus    TransitionStep = "update_status"
	StepCreateTx        TransitionStep = "create_transaction"
	StepVaultActivity   TransitionStep = "vault_activity"
	StepLinkTransaction TransitionStep = "write_transaction_id"
	StepCreateLink      TransitionStep = "create_link"
	StepCommit          TransitionStep = "commit"
	StepLoadExpense     TransitionStep = "load_expense"
	StepLoadLinks       TransitionStep = "load_links"
	StepBegin           TransitionStep = "begin"
)

// TransitionError reports the step at which marking an expense paid failed.
// The unit of work was rolled back, so the expense is still Planned and the
// call can be retried.
type TransitionError struct {
	ExpenseID int64
	Step      TransitionStep
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("mark expense %d paid: %s: %v", e.ExpenseID, e.Step, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is makes every TransitionError match ErrTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrTransition
}

// Retryable reports whether the failure left nothing behind that blocks a retry.
func (e *TransitionError) Retryable() bool {
	return !errors.Is(e.Err, ErrNotFound) && !errors.Is(e.Err, ErrValidation)
}
