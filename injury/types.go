// Package injury computes occupational-injury compensation under the work
// risk law (Ley 24.557): the formula capital, the statutory floor comparison,
// the optional 20% of Ley 26.773 and the judicial update of the capital to a
// final date.
package injury

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
)

const (
	MinAge = 18
	MaxAge = 100
)

// Case is the set of facts of one claim.
type Case struct {
	EventDate         generic.CalendarDate // PMI
	FinalDate         generic.CalendarDate
	BaseMonthlyIncome decimal.Decimal // IBM
	Age               int
	DisabilityPct     decimal.Decimal
	IncludeSurcharge  bool
}

// Validate rejects the case before any computation.
func (c Case) Validate() error {
	switch {
	case c.EventDate.IsZero():
		return generic.NewInvalidInput("event_date", "required")
	case c.FinalDate.IsZero():
		return generic.NewInvalidInput("final_date", "required")
	case c.FinalDate.Before(c.EventDate):
		return generic.NewInvalidInput("final_date", "before event date")
	case !c.BaseMonthlyIncome.IsPositive():
		return generic.NewInvalidInput("base_monthly_income", "must be greater than zero")
	case c.Age < MinAge || c.Age > MaxAge:
		return generic.NewInvalidInput("age", "must be between 18 and 100")
	case !c.DisabilityPct.IsPositive() || c.DisabilityPct.GreaterThan(decimal.NewFromInt(100)):
		return generic.NewInvalidInput("disability_pct", "must be in (0, 100]")
	}
	return nil
}

// FloorCheck reports the comparison against the statutory minimum in force
// at the event date.
type FloorCheck struct {
	Found         bool
	Amount        decimal.Decimal
	Proportional  decimal.Decimal
	NormReference string
	Link          string
	Applied       bool
}

// Method identifies an update method.
type Method string

const (
	MethodIndex Method = "ripte"
	MethodRate  Method = "tasa_activa"
)

// Result is everything computed for one case. All amounts are rounded to 2
// places at each step.
type Result struct {
	Case Case

	FormulaCapital decimal.Decimal
	Floor          FloorCheck
	Capital        decimal.Decimal // formula or floor, whichever applies
	Surcharge      decimal.Decimal // 20%, zero unless requested
	CapitalBase    decimal.Decimal

	Index generic.IndexUpdate
	Rate  generic.RateAccrual

	// RateTotal is CapitalBase updated by the lending rate.
	RateTotal decimal.Decimal

	// InflationPct is informational and never applied to the capital.
	InflationPct decimal.Decimal

	Favorable       Method
	FavorableAmount decimal.Decimal
}
