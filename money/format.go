/*
format.go - Exact rounding and Argentine monetary formatting

PURPOSE:
  Every monetary concept in the engine is rounded here before it is summed
  or displayed. Amounts are rendered the way Argentine courts write them:
  thousands separated by '.', decimals by ','.

KEY CONCEPTS:
  - Round2: round half up at two decimals (exact decimal, never float)
  - FormatCurrency / ParseCurrency: "$ 1.234.567,89" and back
  - FormatPercent: "12,34%"

USAGE:
  v := money.Round2(decimal.RequireFromString("0.125"))   // 0.13
  s := money.FormatCurrency(v)                            // "$ 0,13"

SEE ALSO:
  - words.go: amount in words for liquidation documents
*/
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a currency string cannot be read back.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Round2 rounds half up (away from zero) to two decimal places.
// decimal.Round uses half-away-from-zero, which equals half-up for the
// non-negative amounts the engine produces.
func Round2(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// Percent converts a percentage (12.5) into a fraction (0.125).
func Percent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// FormatCurrency renders x as "$ 1.234.567,89".
func FormatCurrency(x decimal.Decimal) string {
	return "$ " + FormatNumber(x, 2)
}

// FormatNumber renders x rounded to places with '.' grouping and ',' decimals.
func FormatNumber(x decimal.Decimal, places int32) string {
	s := x.Round(places).StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if places > 0 {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatPercent renders a percentage value with the given precision: "12,34%".
func FormatPercent(pct decimal.Decimal, precision int32) string {
	return FormatNumber(pct, precision) + "%"
}

// FormatCoefficient renders an index ratio with four decimals: "1,2345".
func FormatCoefficient(ratio decimal.Decimal) string {
	return FormatNumber(ratio, 4)
}

// ParseCurrency reads back a value produced by FormatCurrency.
// The currency sign and spaces are optional.
func ParseCurrency(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.Replace(clean, ",", ".", 1)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Round2(d), nil
}
