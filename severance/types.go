// Package severance computes statutory dismissal indemnification under the
// Argentine labor contract law (LCT 20.744): seniority pay, notice
// substitute, month integration, proportional and vacation bonuses, and the
// update of the total to the liquidation date.
package severance

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// CASE - Facts entered for one dismissal
// =============================================================================

// Case is built once per request and never mutated.
type Case struct {
	HireDate          generic.CalendarDate
	DismissalDate     generic.CalendarDate
	LiquidationDate   generic.CalendarDate // zero skips the updates
	MonthlyWage       decimal.Decimal
	NoticeAlreadyPaid bool
}

// Validate rejects inconsistent facts before any computation.
func (c Case) Validate() error {
	switch {
	case c.HireDate.IsZero():
		return generic.NewInvalidInput("hire_date", "required")
	case c.DismissalDate.IsZero():
		return generic.NewInvalidInput("dismissal_date", "required")
	case c.DismissalDate.Before(c.HireDate):
		return generic.NewInvalidInput("dismissal_date", "before hire date")
	case !c.MonthlyWage.IsPositive():
		return generic.NewInvalidInput("monthly_wage", "must be greater than zero")
	case !c.LiquidationDate.IsZero() && c.LiquidationDate.Before(c.DismissalDate):
		return generic.NewInvalidInput("liquidation_date", "before dismissal date")
	}
	return nil
}

// =============================================================================
// CONCEPTS
// =============================================================================

// Concepts holds every indemnification item, each rounded to 2 places.
type Concepts struct {
	Seniority         decimal.Decimal // art. 245
	NoticeSubstitute  decimal.Decimal // art. 232
	NoticeBonus       decimal.Decimal // SAC on notice
	DaysWorked        decimal.Decimal
	Integration       decimal.Decimal // art. 233
	IntegrationBonus  decimal.Decimal // SAC on integration
	ProportionalBonus decimal.Decimal // SAC proporcional
	Vacation          decimal.Decimal // art. 156
	VacationBonus     decimal.Decimal // SAC on vacation
}

// Line is one displayable concept.
type Line struct {
	Code   string
	Label  string
	Amount decimal.Decimal
}

// Lines lists the concepts in liquidation order.
func (c Concepts) Lines() []Line {
	return []Line{
		{"seniority", "Indemnización por antigüedad (art. 245 LCT)", c.Seniority},
		{"notice", "Indemnización sustitutiva de preaviso (art. 232 LCT)", c.NoticeSubstitute},
		{"notice_bonus", "SAC sobre preaviso", c.NoticeBonus},
		{"days_worked", "Días trabajados del mes", c.DaysWorked},
		{"integration", "Integración mes de despido (art. 233 LCT)", c.Integration},
		{"integration_bonus", "SAC sobre integración", c.IntegrationBonus},
		{"proportional_bonus", "SAC proporcional", c.ProportionalBonus},
		{"vacation", "Vacaciones no gozadas (art. 156 LCT)", c.Vacation},
		{"vacation_bonus", "SAC sobre vacaciones", c.VacationBonus},
	}
}

// Total sums the rounded concepts.
func (c Concepts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines() {
		total = total.Add(l.Amount)
	}
	return total
}

// Detail exposes the day counts behind the concepts.
type Detail struct {
	NoticeMonths    int
	DaysInMonth     int
	DaysWorked      int
	IntegrationDays int
	SemesterStart   generic.CalendarDate
	BonusDays       int
	VacationDays    int
}

// =============================================================================
// RESULT
// =============================================================================

// Updates carries the total from the dismissal date to the liquidation date.
type Updates struct {
	Window generic.Period

	// Wage index with a flat 3% surcharge
	Index generic.IndexUpdate

	// Lending rate, unrounded contributions
	Rate      generic.RateAccrual
	RateTotal decimal.Decimal

	// Price index reference, never applied to the capital
	InflationPct   decimal.Decimal
	InflationTotal decimal.Decimal
}

// Result is the full liquidation of one case.
type Result struct {
	Case     Case
	Tenure   Tenure
	Detail   Detail
	Concepts Concepts
	Total    decimal.Decimal
	Updates  *Updates
}
