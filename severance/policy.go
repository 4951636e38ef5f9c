package severance

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/money"
)

var (
	twelve     = decimal.NewFromInt(12)
	yearDays   = decimal.NewFromInt(365)
	vacDivisor = decimal.NewFromInt(25)
)

// =============================================================================
// POLICY
// =============================================================================

// Policy holds the tunable parts of a severance liquidation. The zero value
// is not usable; start from DefaultPolicy.
type Policy struct {
	// IndexSurcharge is added flat on top of the wage-index update (0.03).
	IndexSurcharge decimal.Decimal

	VacationTiers []VacationTier
}

// DefaultPolicy returns the statutory configuration.
func DefaultPolicy() *Policy {
	return &Policy{
		IndexSurcharge: decimal.NewFromFloat(0.03),
		VacationTiers:  DefaultVacationTiers,
	}
}

// Calculate validates c, computes every concept and, when a liquidation date
// is set, updates the total from the dismissal date using snap.
func (p *Policy) Calculate(snap *generic.Snapshot, c Case) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	tenure := ComputeTenure(c.HireDate, c.DismissalDate)
	concepts, detail := p.concepts(c, tenure)

	res := Result{
		Case:     c,
		Tenure:   tenure,
		Detail:   detail,
		Concepts: concepts,
		Total:    concepts.Total(),
	}
	if !c.LiquidationDate.IsZero() && snap != nil {
		u := p.update(snap, res.Total, generic.Period{Start: c.DismissalDate, End: c.LiquidationDate})
		res.Updates = &u
	}
	return res, nil
}

// ComputeConcepts runs the concept rules of the default policy without any
// update.
func ComputeConcepts(c Case) (Concepts, Detail, error) {
	if err := c.Validate(); err != nil {
		return Concepts{}, Detail{}, err
	}
	concepts, detail := DefaultPolicy().concepts(c, ComputeTenure(c.HireDate, c.DismissalDate))
	return concepts, detail, nil
}

// concepts rounds each item on its own; Total then sums the rounded values.
func (p *Policy) concepts(c Case, tenure Tenure) (Concepts, Detail) {
	wage := c.MonthlyWage
	dismissal := c.DismissalDate

	var (
		con Concepts
		det Detail
	)

	// Seniority: one wage per year of service
	con.Seniority = money.Round2(wage.Mul(decimal.NewFromInt(int64(tenure.Years))))

	// Notice substitute
	if !c.NoticeAlreadyPaid {
		det.NoticeMonths = 1
		if tenure.Years >= 5 {
			det.NoticeMonths = 2
		}
	}
	notice := wage.Mul(decimal.NewFromInt(int64(det.NoticeMonths)))
	con.NoticeSubstitute = money.Round2(notice)
	con.NoticeBonus = money.Round2(notice.Div(twelve))

	// Days worked and integration of the dismissal month
	det.DaysInMonth = dismissal.DaysInMonth()
	det.DaysWorked = dismissal.Day()
	monthDays := decimal.NewFromInt(int64(det.DaysInMonth))
	con.DaysWorked = money.Round2(prorate(wage, det.DaysWorked, monthDays))

	if !dismissal.IsLastDayOfMonth() {
		det.IntegrationDays = det.DaysInMonth - det.DaysWorked
	}
	con.Integration = money.Round2(prorate(wage, det.IntegrationDays, monthDays))
	con.IntegrationBonus = money.Round2(prorate(wage, det.IntegrationDays, monthDays.Mul(twelve)))

	// Proportional bonus of the running semester, dismissal day included
	det.SemesterStart = generic.StartOfMonth(dismissal.Year(), 1)
	if dismissal.Month() > 6 {
		det.SemesterStart = generic.StartOfMonth(dismissal.Year(), 7)
	}
	det.BonusDays = generic.Period{Start: det.SemesterStart, End: dismissal}.Days()
	con.ProportionalBonus = money.Round2(prorate(wage, det.BonusDays, yearDays))

	// Unused vacation
	det.VacationDays = VacationDays(p.VacationTiers, tenure.Years)
	con.Vacation = money.Round2(prorate(wage, det.VacationDays, vacDivisor))
	con.VacationBonus = money.Round2(prorate(wage, det.VacationDays, vacDivisor.Mul(twelve)))

	return con, det
}

// prorate returns wage x days / divisor, dividing last.
func prorate(wage decimal.Decimal, days int, divisor decimal.Decimal) decimal.Decimal {
	return wage.Mul(decimal.NewFromInt(int64(days))).Div(divisor)
}

// =============================================================================
// UPDATES
// =============================================================================

func (p *Policy) update(snap *generic.Snapshot, total decimal.Decimal, window generic.Period) Updates {
	rate := generic.ProratedRate(snap.LendingRates, window, generic.RateOptions{})
	inflation := generic.CompoundedVariation(snap.PriceIndex, window)

	return Updates{
		Window: window,
		Index: generic.UpdateByIndex(snap.WageIndex, total, window, generic.IndexUpdateOptions{
			SurchargeRate: p.IndexSurcharge,
		}),
		Rate:           rate,
		RateTotal:      rate.Apply(total),
		InflationPct:   inflation,
		InflationTotal: money.Round2(total.Add(total.Mul(money.Percent(inflation)))),
	}
}
