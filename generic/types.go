/*
Package generic provides the core of the indemnity engine.

PURPOSE:
  This package contains the domain-agnostic building blocks shared by every
  legal policy: civil dates, closed periods, published time series (wage
  index, price index, lending rates, statutory floors), the immutable dataset
  snapshot, and the three accrual rules that carry an amount forward in time.

KEY CONCEPTS IN THIS FILE (types.go):
  - Numeric input normalisation (ParseNumber)
  - Decimal helpers shared by the accrual rules

DESIGN PRINCIPLES:
  1. Immutability: a Snapshot is never mutated after publication
  2. Precision: decimal.Decimal everywhere, rounding only at named steps
  3. Degenerate data is neutral, never an error (ratio 1, contribution 0)

USAGE:
  snap := holder.Current()
  upd  := generic.UpdateByIndex(snap.WageIndex, capital, window, opts)

SEE ALSO:
  - parse.go: DateNormalizer
  - series.go: series types and lookups
  - accrual.go: index ratio, compounded variation, prorated rate
  - snapshot.go: Snapshot and SnapshotHolder
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	one      = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
	thirty   = decimal.NewFromInt(30)
	yearDays = decimal.NewFromInt(365)
)

// MustParseDecimal parses s or returns zero.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseNumber reads a published numeric cell. Both '.' and ',' may appear;
// when both do, the last one is the decimal separator. A single ',' is a
// decimal separator, repeated separators of one kind are thousands groups.
// Currency and percent signs are ignored.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("$", "", "%", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero, &ParseError{Kind: "number", Input: raw}
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParseError{Kind: "number", Input: raw}
	}
	return d, nil
}
