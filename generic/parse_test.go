package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
)

func TestParseDate_AcceptedFormats(t *testing.T) {
	tests := []struct {
		in   string
		want generic.CalendarDate
	}{
		{"2024-01-15", generic.NewDate(2024, time.January, 15)},
		{"2024-1-5", generic.NewDate(2024, time.January, 5)},
		{"15/01/2024", generic.NewDate(2024, time.January, 15)},
		{"5/1/2024", generic.NewDate(2024, time.January, 5)},
		{"15-01-2024", generic.NewDate(2024, time.January, 15)},
		{"03/2024", generic.NewDate(2024, time.March, 1)},
		{"2024/01/15", generic.NewDate(2024, time.January, 15)},
		{"2024-03", generic.NewDate(2024, time.March, 1)},
		{"2024-01-15 10:30:00", generic.NewDate(2024, time.January, 15)},
		{"15/01/2024 08:00:00", generic.NewDate(2024, time.January, 15)},
		{"Enero 2024", generic.NewDate(2024, time.January, 1)},
		{"septiembre de 2023", generic.NewDate(2023, time.September, 1)},
		{"March 2024", generic.NewDate(2024, time.March, 1)},
		{"Ago 2022", generic.NewDate(2022, time.August, 1)},
		{"Sept. 2021", generic.NewDate(2021, time.September, 1)},
		{"2024/07", generic.NewDate(2024, time.July, 1)},
		{"07-2024", generic.NewDate(2024, time.July, 1)},
		{"15.01.2024", generic.NewDate(2024, time.January, 15)},
		{"15.01.24", generic.NewDate(2024, time.January, 15)},
		{"20240115", generic.NewDate(2024, time.January, 15)},
		{"2024-01-15T10:00:00Z", generic.NewDate(2024, time.January, 15)},
		{"15 de marzo de 2024", generic.NewDate(2024, time.March, 15)},
		{"  2024-01-15  ", generic.NewDate(2024, time.January, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := generic.ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_OrderIsDeterministic(t *testing.T) {
	// GIVEN: strings valid under more than one reading
	// WHEN: parsed
	// THEN: the earlier format wins every time

	// day-first wins over month-first
	d, err := generic.ParseDate("02/03/2024")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2024, time.March, 2), d)

	// month-year and year-month are both month buckets
	a, err := generic.ParseDate("01-2024")
	require.NoError(t, err)
	b, err := generic.ParseDate("2024-01")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, a.Day())
}

func TestParseDate_Failures(t *testing.T) {
	for _, in := range []string{"", "abc", "31/02/2024", "2024-13", "13-2024", "Foo 2024", "1/2/3/4", "99-1850"} {
		t.Run(in, func(t *testing.T) {
			_, err := generic.ParseDate(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrParseFailure)

			var pe *generic.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, in, pe.Input)
		})
	}
}

func TestMonthFromName(t *testing.T) {
	tests := map[string]time.Month{
		"enero": time.January, "ENE": time.January, "Abr.": time.April,
		"setiembre": time.September, "Set": time.September, "dic": time.December,
		"December": time.December, "agosto": time.August,
	}
	for name, want := range tests {
		got, ok := generic.MonthFromName(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := generic.MonthFromName("ripte")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"$ 150.000,00", "150000"},
		{"3,5%", "3.5"},
		{"-2,1", "-2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := generic.ParseNumber(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(generic.MustParseDecimal(tt.want)), "got %s", got)
		})
	}

	_, err := generic.ParseNumber("n/a")
	assert.ErrorIs(t, err, generic.ErrParseFailure)
	_, err = generic.ParseNumber("  ")
	assert.ErrorIs(t, err, generic.ErrParseFailure)
}
