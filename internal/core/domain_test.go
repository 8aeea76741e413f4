package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, 2, 28), d)
	assert.Equal(t, "2025-02-28", d.String())

	_, err = ParseDate("28/02/2025")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 2, 10)
	assert.Equal(t, NewDate(2024, 2, 29), d.EndOfMonth())
	assert.Equal(t, NewDate(2024, 3, 1), d.EndOfMonth().AddDays(1))
	assert.Equal(t, 19, d.DaysUntil(d.EndOfMonth()))
	assert.True(t, d.Between(NewDate(2024, 2, 10), NewDate(2024, 2, 10)))
	assert.False(t, d.Between(NewDate(2024, 2, 11), NewDate(2024, 2, 20)))
	// month overflow normalizes like time.Date
	assert.Equal(t, NewDate(2025, 1, 15), NewDate(2024, 13, 15))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date  `json:"d"`
		P *Date `json:"p"`
	}
	b, err := json.Marshal(wrapper{D: NewDate(2025, 3, 15)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-03-15","p":null}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-01-31","p":"2025-02-01"}`), &w))
	assert.Equal(t, NewDate(2025, 1, 31), w.D)
	require.NotNil(t, w.P)
	assert.Equal(t, NewDate(2025, 2, 1), *w.P)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("semi-monthly")
	require.NoError(t, err)
	assert.Equal(t, SemiMonthly, f)

	f, err = ParseFrequency(" Per Paycheck ")
	require.NoError(t, err)
	assert.Equal(t, PerPaycheck, f)

	_, err = ParseFrequency("fortnightly")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestFixedItemValidate(t *testing.T) {
	good := FixedItem{Name: "Rent", Amount: Cents(150000), Frequency: Monthly, DueDays: []string{"1"}}
	require.NoError(t, good.Validate())

	bads := []FixedItem{
		{Name: "", Amount: Cents(1), Frequency: Monthly},
		{Name: "a", Amount: Cents(0), Frequency: Monthly},
		{Name: "a", Amount: Cents(1), Frequency: "Daily"},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestForecastAdjustmentValidate(t *testing.T) {
	bad := "2025-13-01"
	adj := ForecastAdjustment{ForecastStart: "2025-03-14", DeferToStart: &bad}
	err := adj.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	adj.DeferToStart = nil
	assert.NoError(t, adj.Validate())
}

func TestNormalizeTrimsPeriodKeys(t *testing.T) {
	to := " 2025-03-31\n"
	adj := ForecastAdjustment{ForecastStart: " 2025-03-14", DeferToStart: &to}
	require.NoError(t, adj.Normalize())
	assert.Equal(t, "2025-03-14", adj.ForecastStart)
	require.NotNil(t, adj.DeferToStart)
	assert.Equal(t, "2025-03-31", *adj.DeferToStart)

	bad := ForecastAdjustment{ForecastStart: "14/03/2025"}
	assert.ErrorIs(t, bad.Normalize(), ErrValidation)
	assert.Equal(t, "14/03/2025", bad.ForecastStart)

	item := OneOffItem{Name: "Gift", Amount: Cents(5000), ForecastStart: "2025-03-14 "}
	require.NoError(t, item.Normalize())
	assert.Equal(t, "2025-03-14", item.ForecastStart)
}

func TestTransitionError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&TransitionError{ExpenseID: 7, Step: StepCreateTx, Err: cause})
	assert.ErrorIs(t, err, ErrTransition)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create_transaction")

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Retryable())

	notFound := &TransitionError{ExpenseID: 7, Step: StepLoadExpense, Err: ErrNotFound}
	assert.False(t, notFound.Retryable())
}
