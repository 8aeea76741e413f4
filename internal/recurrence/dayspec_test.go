package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDaySpec(t *testing.T) {
	tests := []struct {
		in   string
		want DaySpec
	}{
		{"EOM", DaySpec{Kind: EndOfMonth}},
		{" eom ", DaySpec{Kind: EndOfMonth}},
		{"1", DaySpec{Kind: DayOfMonth, Day: 1}},
		{"31", DaySpec{Kind: DayOfMonth, Day: 31}},
		{"06/01", DaySpec{Kind: MonthDay, Month: 6, Day: 1}},
		{"02/29", DaySpec{Kind: MonthDay, Month: 2, Day: 29}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDaySpec(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "abc", "0", "32", "13/01", "00/10", "02/30", "6/x"} {
		_, err := ParseDaySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestDaySpecIn(t *testing.T) {
	got, ok := DaySpec{Kind: DayOfMonth, Day: 30}.In(2024, 2)
	require.True(t, ok)
	assert.Equal(t, d("2024-02-29"), got)

	got, ok = DaySpec{Kind: EndOfMonth}.In(2025, 12)
	require.True(t, ok)
	assert.Equal(t, d("2025-12-31"), got)

	_, ok = DaySpec{Kind: MonthDay, Month: 6, Day: 1}.In(2025, 5)
	assert.False(t, ok)

	got, ok = DaySpec{Kind: MonthDay, Month: 2, Day: 29}.In(2028, 2)
	require.True(t, ok)
	assert.Equal(t, d("2028-02-29"), got)
}
