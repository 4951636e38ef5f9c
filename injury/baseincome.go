package injury

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/money"
)

// =============================================================================
// BASE MONTHLY INCOME (IBM, Ley 24.557 art. 12 inc. 1)
// =============================================================================

// MonthlyWage is one month of the year preceding the event.
type MonthlyWage struct {
	Month   generic.CalendarDate // any day of the month
	Amount  decimal.Decimal
	Include bool
}

// BaseIncomeRow is one month after the wage-index update.
type BaseIncomeRow struct {
	Month     generic.CalendarDate
	Amount    decimal.Decimal
	Index     *decimal.Decimal // nil when the month is not published
	Variation *decimal.Decimal // fraction, nil when it cannot be computed
	Updated   decimal.Decimal
	Days      int
	Counted   bool
}

// BaseIncome is the averaged, updated income of the year before the event.
type BaseIncome struct {
	EventDate    generic.CalendarDate
	Rows         []BaseIncomeRow
	Months       int
	Days         int
	TotalWages   decimal.Decimal
	TotalUpdated decimal.Decimal
	IBM          decimal.Decimal
}

// PriorMonths returns the n months before the event month, oldest first.
func PriorMonths(event generic.CalendarDate, n int) []generic.CalendarDate {
	start := event.MonthBucket()
	months := make([]generic.CalendarDate, n)
	for i := 0; i < n; i++ {
		months[n-1-i] = start.AddMonths(-(i + 1))
	}
	return months
}

// ComputeBaseIncome updates each wage by the variation of the wage index
// between its month and the event month, using exact month lookups. A month
// with no published index keeps its nominal amount. Only included months with
// a positive amount count toward the average.
func ComputeBaseIncome(wageIndex generic.IndexSeries, event generic.CalendarDate, wages []MonthlyWage) BaseIncome {
	out := BaseIncome{
		EventDate:    event,
		TotalWages:   decimal.Zero,
		TotalUpdated: decimal.Zero,
		IBM:          decimal.Zero,
	}
	target, hasTarget := wageIndex.At(event.MonthBucket())

	for _, w := range wages {
		row := BaseIncomeRow{
			Month:   w.Month.MonthBucket(),
			Amount:  w.Amount,
			Updated: w.Amount,
			Days:    w.Month.DaysInMonth(),
		}
		if p, ok := wageIndex.At(row.Month); ok {
			v := p.Value
			row.Index = &v
			if hasTarget && p.Value.IsPositive() {
				variation := target.Value.Sub(p.Value).Div(p.Value)
				row.Variation = &variation
				if w.Amount.IsPositive() {
					row.Updated = w.Amount.Add(w.Amount.Mul(variation))
				}
			}
		}

		row.Counted = w.Include && w.Amount.IsPositive()
		if row.Counted {
			out.Months++
			out.Days += row.Days
			out.TotalWages = out.TotalWages.Add(row.Amount)
			out.TotalUpdated = out.TotalUpdated.Add(row.Updated)
		}
		out.Rows = append(out.Rows, row)
	}

	if out.Months > 0 {
		out.IBM = money.Round2(out.TotalUpdated.Div(decimal.NewFromInt(int64(out.Months))))
	}
	return out
}
