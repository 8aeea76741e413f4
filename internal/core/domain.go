package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISODate is the only date layout accepted at any boundary.
const ISODate = "2006-01-02"

const (
	Monthly     Frequency = "Monthly"
	Biweekly    Frequency = "Biweekly"
	Weekly      Frequency = "Weekly"
	Yearly      Frequency = "Yearly"
	Quarterly   Frequency = "Quarterly"
	SemiMonthly Frequency = "Semi-Monthly"
	PerPaycheck Frequency = "Per Paycheck"
)

const (
	StatusPlanned ExpenseStatus = "Planned"
	StatusPaid    ExpenseStatus = "Paid"
)

const (
	SourceManual      TransactionSource = "manual"
	SourceBankSync    TransactionSource = "bank-sync"
	SourceFromExpense TransactionSource = "from_expense"
)

type (
	Frequency         string
	ExpenseStatus     string
	TransactionSource string

	// Date is a timezone-less calendar date. The wrapped time is always
	// midnight UTC so that arithmetic never crosses a DST boundary.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	IncomeSource struct {
		ID        int64     `json:"id"`
		UserID    string    `json:"user_id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount_cents"`
		Frequency Frequency `json:"frequency"`
		DueDays   []string  `json:"due_days,omitempty"`
		WeeklyDay string    `json:"weekly_day,omitempty"`
		StartDate *Date     `json:"start_date,omitempty"`
	}

	// FixedItem is a recurring planned expense or vault contribution.
	FixedItem struct {
		ID         int64     `json:"id"`
		UserID     string    `json:"user_id"`
		Name       string    `json:"name"`
		Amount     Money     `json:"amount_cents"`
		Frequency  Frequency `json:"frequency"`
		DueDays    []string  `json:"due_days,omitempty"`
		WeeklyDay  string    `json:"weekly_day,omitempty"`
		StartDate  *Date     `json:"start_date,omitempty"`
		CategoryID *int64    `json:"category_id,omitempty"`
		VaultID    *int64    `json:"vault_id,omitempty"`
	}

	// ForecastAdjustment is unique on (UserID, FixedItemID, ForecastStart).
	ForecastAdjustment struct {
		ID             int64   `json:"id"`
		UserID         string  `json:"user_id"`
		FixedItemID    int64   `json:"fixed_item_id"`
		ForecastStart  string  `json:"forecast_start"`
		OverrideAmount *Money  `json:"override_amount_cents,omitempty"`
		DeferToStart   *string `json:"defer_to_start,omitempty"`
	}

	OneOffItem struct {
		ID            int64  `json:"id"`
		UserID        string `json:"user_id"`
		Name          string `json:"name"`
		Amount        Money  `json:"amount_cents"`
		IsIncome      bool   `json:"is_income"`
		ForecastStart string `json:"forecast_start"`
		Date          *Date  `json:"date,omitempty"`
		CategoryID    *int64 `json:"category_id,omitempty"`
		VaultID       *int64 `json:"vault_id,omitempty"`
	}

	Category struct {
		ID     int64  `json:"id"`
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}

	Vault struct {
		ID     int64  `json:"id"`
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}

	Paycheck struct {
		ID     int64  `json:"id"`
		UserID string `json:"user_id"`
		Label  string `json:"label"`
		Date   Date   `json:"date"`
		Amount Money  `json:"amount_cents"`
	}

	// Expense is a planned expense persisted against a paycheck.
	Expense struct {
		ID            int64         `json:"id"`
		UserID        string        `json:"user_id"`
		PaycheckID    int64         `json:"paycheck_id"`
		Name          string        `json:"name"`
		Amount        Money         `json:"amount_cents"`
		Status        ExpenseStatus `json:"status"`
		VaultID       *int64        `json:"vault_id,omitempty"`
		CategoryID    *int64        `json:"category_id,omitempty"`
		TransactionID *int64        `json:"transaction_id,omitempty"`
	}

	VaultContribution struct {
		ID         int64  `json:"id"`
		UserID     string `json:"user_id"`
		PaycheckID int64  `json:"paycheck_id"`
		VaultID    int64  `json:"vault_id"`
		Amount     Money  `json:"amount_cents"`
	}

	Transaction struct {
		ID         int64             `json:"id"`
		UserID     string            `json:"user_id"`
		Name       string            `json:"name"`
		Amount     Money             `json:"amount_cents"`
		VaultID    *int64            `json:"vault_id,omitempty"`
		CategoryID *int64            `json:"category_id,omitempty"`
		Source     TransactionSource `json:"source"`
		Posted     Date              `json:"posted"`
	}

	ExpenseTransactionLink struct {
		ID            int64 `json:"id"`
		ExpenseID     int64 `json:"expense_id"`
		TransactionID int64 `json:"transaction_id"`
		MatchedAmount Money `json:"matched_amount_cents"`
	}

	// VaultActivity is an append-only ledger entry; Amount is signed.
	VaultActivity struct {
		ID           int64  `json:"id"`
		UserID       string `json:"user_id"`
		VaultID      int64  `json:"vault_id"`
		Amount       Money  `json:"amount_cents"`
		ActivityDate Date   `json:"activity_date"`
		Source       string `json:"source"`
		RelatedID    *int64 `json:"related_id,omitempty"`
	}

	Holiday struct {
		Date Date   `json:"date"`
		Name string `json:"name"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day. Out-of-range values
// normalize the way time.Date does (month 13 is January of the next year).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(ISODate)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Between reports whether d lies in the inclusive range [start, end].
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// DaysUntil returns the number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time).Hours() / 24)
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

// MarshalJSON writes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseFrequency accepts the canonical names case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	for _, f := range []Frequency{Monthly, Biweekly, Weekly, Yearly, Quarterly, SemiMonthly, PerPaycheck} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", NewValidationError("frequency", s, ErrInvalidFrequency.Error())
}

// Validate rejects zero and negative amounts.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks name, amount and frequency. Recurrence details are
// checked by the recurrence package.
func (s IncomeSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseFrequency(string(s.Frequency)); err != nil {
		return err
	}
	return nil
}

// Validate checks name, amount and frequency.
func (f FixedItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if len(f.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := f.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseFrequency(string(f.Frequency)); err != nil {
		return err
	}
	return nil
}

// Validate checks the period keys and that an override is not negative.
func (a ForecastAdjustment) Validate() error {
	if _, err := ParseDate(a.ForecastStart); err != nil {
		return NewValidationError("forecast_start", a.ForecastStart, "not an ISO date")
	}
	if a.DeferToStart != nil {
		if _, err := ParseDate(*a.DeferToStart); err != nil {
			return NewValidationError("defer_to_start", *a.DeferToStart, "not an ISO date")
		}
	}
	if a.OverrideAmount != nil && a.OverrideAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize validates the adjustment and rewrites its period keys in
// canonical YYYY-MM-DD form, so they match the forecast starts they key on.
func (a *ForecastAdjustment) Normalize() error {
	if err := a.Validate(); err != nil {
		return err
	}
	start, _ := ParseDate(a.ForecastStart)
	a.ForecastStart = start.String()
	if a.DeferToStart != nil {
		to, _ := ParseDate(*a.DeferToStart)
		key := to.String()
		a.DeferToStart = &key
	}
	return nil
}

// Validate checks name, amount and forecast start.
func (o OneOffItem) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseDate(o.ForecastStart); err != nil {
		return NewValidationError("forecast_start", o.ForecastStart, "not an ISO date")
	}
	return nil
}

// Normalize validates the item and rewrites ForecastStart in canonical form.
func (o *OneOffItem) Normalize() error {
	if err := o.Validate(); err != nil {
		return err
	}
	start, _ := ParseDate(o.ForecastStart)
	o.ForecastStart = start.String()
	return nil
}

// IsPaid reports whether the Planned→Paid transition already happened.
func (e Expense) IsPaid() bool {
	return e.Status == StatusPaid
}

// RecurrenceRule is the recurrence configuration shared by income sources
// and fixed items.
type RecurrenceRule struct {
	Name      string
	Frequency Frequency
	DueDays   []string
	WeeklyDay string
	StartDate *Date
}

func (s IncomeSource) Rule() RecurrenceRule {
	return RecurrenceRule{Name: s.Name, Frequency: s.Frequency, DueDays: s.DueDays, WeeklyDay: s.WeeklyDay, StartDate: s.StartDate}
}

func (f FixedItem) Rule() RecurrenceRule {
	return RecurrenceRule{Name: f.Name, Frequency: f.Frequency, DueDays: f.DueDays, WeeklyDay: f.WeeklyDay, StartDate: f.StartDate}
}
