package injury

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/money"
)

var (
	fiftyThree   = decimal.NewFromInt(53)
	sixtyFive    = decimal.NewFromInt(65)
	defaultRates = FeeRates{
		CourtFee:     decimal.RequireFromString("0.022"),
		BarSurcharge: decimal.RequireFromString("0.10"),
	}
)

// Policy holds the rates applied to an injury claim.
type Policy struct {
	// InterestRate is the yearly pure interest added to the wage-index
	// update, weighted by elapsed days / 365.
	InterestRate decimal.Decimal

	// SurchargeRate is the optional additional compensation (Ley 26.773).
	SurchargeRate decimal.Decimal

	Fees FeeRates
}

// DefaultPolicy returns the statutory rates.
func DefaultPolicy() *Policy {
	return &Policy{
		InterestRate:  decimal.RequireFromString("0.03"),
		SurchargeRate: decimal.RequireFromString("0.20"),
		Fees:          defaultRates,
	}
}

// Calculate validates c and computes the capital and its updates against snap.
func (p *Policy) Calculate(snap *generic.Snapshot, c Case) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if snap == nil {
		snap = generic.EmptySnapshot()
	}

	res := Result{Case: c}
	res.FormulaCapital = FormulaCapital(c.BaseMonthlyIncome, c.Age, c.DisabilityPct)
	res.Floor = CompareFloor(snap.Floors, c.EventDate, res.FormulaCapital, c.DisabilityPct)

	res.Capital = res.FormulaCapital
	if res.Floor.Applied {
		res.Capital = res.Floor.Proportional
	}

	res.Surcharge = decimal.Zero
	if c.IncludeSurcharge {
		res.Surcharge = money.Round2(res.Capital.Mul(p.SurchargeRate))
	}
	res.CapitalBase = money.Round2(res.Capital.Add(res.Surcharge))

	window := generic.Period{Start: c.EventDate, End: c.FinalDate}
	res.Index = generic.UpdateByIndex(snap.WageIndex, res.CapitalBase, window, generic.IndexUpdateOptions{
		SurchargeRate: p.InterestRate,
		TimeWeighted:  true,
	})
	res.Rate = generic.ProratedRate(snap.LendingRates, window, generic.RateOptions{RoundContributions: true})
	res.RateTotal = res.Rate.Apply(res.CapitalBase)
	res.InflationPct = generic.CompoundedVariation(snap.PriceIndex, window)

	// Ties go to the wage index.
	if res.Index.Total.GreaterThanOrEqual(res.RateTotal) {
		res.Favorable, res.FavorableAmount = MethodIndex, res.Index.Total
	} else {
		res.Favorable, res.FavorableAmount = MethodRate, res.RateTotal
	}
	return res, nil
}

// FormulaCapital returns IBM x 53 x 65/age x pct/100, rounded.
func FormulaCapital(ibm decimal.Decimal, age int, pct decimal.Decimal) decimal.Decimal {
	if age <= 0 {
		return decimal.Zero
	}
	capital := ibm.Mul(fiftyThree).Mul(sixtyFive).Mul(pct).
		Div(decimal.NewFromInt(int64(age) * 100))
	return money.Round2(capital)
}

// CompareFloor looks up the floor in force at event. The floor applies only
// when the formula capital is below its proportional share.
func CompareFloor(floors generic.FloorSchedule, event generic.CalendarDate, formula, pct decimal.Decimal) FloorCheck {
	rec, ok := floors.Lookup(event)
	if !ok {
		return FloorCheck{}
	}
	check := FloorCheck{
		Found:         true,
		Amount:        rec.Amount,
		Proportional:  money.Round2(rec.Amount.Mul(money.Percent(pct))),
		NormReference: rec.NormReference,
		Link:          rec.Link,
	}
	check.Applied = formula.LessThan(check.Proportional)
	return check
}
