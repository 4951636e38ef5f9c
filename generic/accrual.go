package generic

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/money"
)

// =============================================================================
// ACCRUAL ENGINE - Carrying an amount forward between two dates
// =============================================================================
//
// Three independent rules, each a pure function of a snapshot series:
//   1. Index ratio    - base x index(end)/index(start), plus a surcharge
//   2. Compounded     - product of monthly variations, informational only
//   3. Prorated rate  - monthly rate x overlap days / 30, summed per interval
//
// Empty series are neutral: ratio 1, variation 0, contribution 0.

// =============================================================================
// 1. INDEX RATIO
// =============================================================================

// IndexRatio is the quotient of two at-or-before lookups.
type IndexRatio struct {
	Start   IndexPoint
	End     IndexPoint
	Ratio   decimal.Decimal
	Neutral bool // empty series or non-positive denominator
}

// RatioBetween looks up start and end at-or-before and divides. A missing
// series or a denominator <= 0 yields a neutral ratio of 1.
func RatioBetween(s IndexSeries, start, end CalendarDate) IndexRatio {
	from, ok := s.AtOrBefore(start)
	if !ok {
		return IndexRatio{Ratio: one, Neutral: true}
	}
	to, _ := s.AtOrBefore(end)

	if !from.Value.IsPositive() {
		return IndexRatio{Start: from, End: to, Ratio: one, Neutral: true}
	}
	return IndexRatio{Start: from, End: to, Ratio: to.Value.Div(from.Value)}
}

// IndexUpdateOptions configures the surcharge added on top of the ratio.
type IndexUpdateOptions struct {
	// SurchargeRate is a fraction (0.03 for 3%).
	SurchargeRate decimal.Decimal

	// TimeWeighted scales the surcharge by elapsed days / 365 (pure interest
	// on injury capital). Severance applies it flat.
	TimeWeighted bool
}

// IndexUpdate is the result of rule 1. Every amount is rounded to 2 places.
type IndexUpdate struct {
	Ratio       IndexRatio
	ElapsedDays int
	Updated     decimal.Decimal
	Surcharge   decimal.Decimal
	Total       decimal.Decimal
}

// UpdateByIndex applies the ratio over window to base and adds the surcharge,
// rounding at each step.
func UpdateByIndex(s IndexSeries, base decimal.Decimal, window Period, opts IndexUpdateOptions) IndexUpdate {
	ratio := RatioBetween(s, window.Start, window.End)

	elapsed := DaysBetween(window.Start, window.End)
	if elapsed < 0 {
		elapsed = 0
	}

	updated := money.Round2(base.Mul(ratio.Ratio))
	if !ratio.Neutral {
		updated = money.Round2(base.Mul(ratio.End.Value).Div(ratio.Start.Value))
	}
	surcharge := updated.Mul(opts.SurchargeRate)
	if opts.TimeWeighted {
		surcharge = surcharge.Mul(decimal.NewFromInt(int64(elapsed))).Div(yearDays)
	}
	surcharge = money.Round2(surcharge)

	return IndexUpdate{
		Ratio:       ratio,
		ElapsedDays: elapsed,
		Updated:     updated,
		Surcharge:   surcharge,
		Total:       money.Round2(updated.Add(surcharge)),
	}
}

// =============================================================================
// 2. COMPOUNDED VARIATION
// =============================================================================

// CompoundedVariation compounds the monthly percent variations published
// between window's start month and end month inclusive, and returns the
// accumulated percent. An empty range yields 0.
func CompoundedVariation(s IndexSeries, window Period) decimal.Decimal {
	if !window.IsValid() {
		return decimal.Zero
	}
	months := Period{Start: window.Start.MonthBucket(), End: EndOfMonth(window.End.Year(), window.End.Month())}

	factor := one
	for _, p := range s.Between(months.Start, months.End) {
		factor = factor.Mul(one.Add(p.Value.Div(hundred)))
	}
	return factor.Sub(one).Mul(hundred)
}

// =============================================================================
// 3. PRORATED RATE
// =============================================================================

// RateOptions controls rounding of the prorated rate rule.
type RateOptions struct {
	// RoundContributions rounds each contribution and the running total to
	// 2 places.
	RoundContributions bool
}

// RateSegment is one interval's share of the window.
type RateSegment struct {
	Interval     RateInterval
	Overlap      Period
	Days         int
	Contribution decimal.Decimal // percent
}

// RateAccrual is the result of rule 3.
type RateAccrual struct {
	Segments []RateSegment
	TotalPct decimal.Decimal
}

// ProratedRate intersects window with every interval. Overlap days are
// inclusive of both ends; contribution = rate x days / 30. Overlapping
// intervals each contribute.
func ProratedRate(s RateSeries, window Period, opts RateOptions) RateAccrual {
	acc := RateAccrual{TotalPct: decimal.Zero}
	if !window.IsValid() {
		return acc
	}

	for _, interval := range s.Intervals {
		overlap, ok := window.Intersect(interval.Period())
		if !ok {
			continue
		}
		days := overlap.Days()
		contribution := interval.MonthlyRate.Mul(decimal.NewFromInt(int64(days))).Div(thirty)
		if opts.RoundContributions {
			contribution = money.Round2(contribution)
		}

		acc.Segments = append(acc.Segments, RateSegment{
			Interval:     interval,
			Overlap:      overlap,
			Days:         days,
			Contribution: contribution,
		})
		acc.TotalPct = acc.TotalPct.Add(contribution)
		if opts.RoundContributions {
			acc.TotalPct = money.Round2(acc.TotalPct)
		}
	}
	return acc
}

// Apply returns base x (1 + TotalPct/100), rounded to 2 places.
func (a RateAccrual) Apply(base decimal.Decimal) decimal.Decimal {
	return money.Round2(base.Mul(one.Add(a.TotalPct.Div(hundred))))
}

// Days returns the number of days covered, counting overlaps once per segment.
func (a RateAccrual) Days() int {
	n := 0
	for _, seg := range a.Segments {
		n += seg.Days
	}
	return n
}
