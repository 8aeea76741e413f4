package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "$12.34", Cents(1234).String())
	assert.Equal(t, "-$0.05", Cents(-5).String())
	assert.Equal(t, "$0.00", Money{}.String())
}

func TestMoneyArithmetic(t *testing.T) {
	assert.Equal(t, Cents(300), Sum(Cents(100), Cents(250), Cents(-50)))
	assert.Equal(t, Cents(-100), Cents(100).Neg())
	assert.Equal(t, Cents(50), Cents(100).Sub(Cents(50)))
	assert.True(t, Sum().IsZero())
}
