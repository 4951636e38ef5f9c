package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"5833.333333", "5833.33"},
		{"57123.28767", "57123.29"},
		{"2.005", "2.01"},
		{"10", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, money.Round2(dec(tt.in)).Equal(dec(tt.want)),
				"Round2(%s) = %s", tt.in, money.Round2(dec(tt.in)))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567.891", "$ 1.234.567,89"},
		{"0", "$ 0,00"},
		{"999.995", "$ 1.000,00"},
		{"100", "$ 100,00"},
		{"-1500.5", "$ -1.500,50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FormatCurrency(dec(tt.in)))
		})
	}
}

func TestParseCurrency_RoundTrip(t *testing.T) {
	// GIVEN: amounts already rounded to two places
	// WHEN: formatted and parsed back
	// THEN: the original value is recovered
	for _, s := range []string{"0", "0.01", "12.5", "1234567.89", "1000000", "-42.1"} {
		v := dec(s)
		got, err := money.ParseCurrency(money.FormatCurrency(v))
		require.NoError(t, err)
		assert.True(t, got.Equal(v), "round trip %s -> %s", s, got)
	}
}

func TestParseCurrency_Invalid(t *testing.T) {
	for _, s := range []string{"", "$", "abc", "$ 1,2,3"} {
		_, err := money.ParseCurrency(s)
		assert.ErrorIs(t, err, money.ErrInvalidAmount, "input %q", s)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12,35%", money.FormatPercent(dec("12.345"), 2))
	assert.Equal(t, "3,0%", money.FormatPercent(dec("3"), 1))
	assert.Equal(t, "1,2346", money.FormatCoefficient(dec("1.23456")))
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "PESOS CERO CON 00/100"},
		{"100", "PESOS CIEN CON 00/100"},
		{"101.5", "PESOS CIENTO UN CON 50/100"},
		{"1000", "PESOS MIL CON 00/100"},
		{"21000", "PESOS VEINTIUN MIL CON 00/100"},
		{"1234567.89", "PESOS UN MILLÓN DOSCIENTOS TREINTA Y CUATRO MIL QUINIENTOS SESENTA Y SIETE CON 89/100"},
		{"2500000", "PESOS DOS MILLONES QUINIENTOS MIL CON 00/100"},
		{"1424456.62", "PESOS UN MILLÓN CUATROCIENTOS VEINTICUATRO MIL CUATROCIENTOS CINCUENTA Y SEIS CON 62/100"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, money.AmountInWords(dec(tt.in)))
		})
	}
}
