package severance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/severance"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) generic.CalendarDate { return generic.NewDate(y, m, day) }

func assertAmount(t *testing.T, want string, got decimal.Decimal, msg ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s, got %s %v", want, got, msg)
}

// =============================================================================
// TENURE
// =============================================================================

func TestComputeTenure(t *testing.T) {
	tests := []struct {
		name          string
		hire, dismiss generic.CalendarDate
		want          severance.Tenure
	}{
		{"fraction over three months rounds up", date(2020, time.January, 10), date(2024, time.May, 15), severance.Tenure{Years: 5}},
		{"exact anniversary", date(2020, time.November, 5), date(2025, time.November, 5), severance.Tenure{Years: 5}},
		{"eleven months after borrow round up", date(2020, time.November, 5), date(2025, time.November, 4), severance.Tenure{Years: 5}},
		{"three months kept", date(2021, time.March, 1), date(2024, time.June, 15), severance.Tenure{Years: 3, Months: 3}},
		{"month borrow", date(2022, time.October, 20), date(2024, time.January, 10), severance.Tenure{Years: 1, Months: 2}},
		{"same day", date(2024, time.June, 1), date(2024, time.June, 1), severance.Tenure{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, severance.ComputeTenure(tt.hire, tt.dismiss))
		})
	}
}

func TestVacationDays(t *testing.T) {
	tiers := severance.DefaultVacationTiers
	assert.Equal(t, 14, severance.VacationDays(tiers, 0))
	assert.Equal(t, 14, severance.VacationDays(tiers, 4))
	assert.Equal(t, 21, severance.VacationDays(tiers, 5))
	assert.Equal(t, 28, severance.VacationDays(tiers, 19))
	assert.Equal(t, 35, severance.VacationDays(tiers, 20))
	assert.Equal(t, 35, severance.VacationDays(tiers, 41))
}

// =============================================================================
// CONCEPTS
// =============================================================================

func referenceCase() severance.Case {
	return severance.Case{
		HireDate:      date(2020, time.November, 5),
		DismissalDate: date(2025, time.November, 16),
		MonthlyWage:   d("150000"),
	}
}

func TestCalculate_EndToEnd(t *testing.T) {
	// GIVEN: five years of service, notice not given
	c := referenceCase()

	// WHEN: liquidating without an update date
	res, err := severance.DefaultPolicy().Calculate(generic.EmptySnapshot(), c)
	require.NoError(t, err)

	// THEN: each concept matches the statutory rule
	assert.Equal(t, severance.Tenure{Years: 5}, res.Tenure)
	assert.Equal(t, 2, res.Detail.NoticeMonths)
	assert.Equal(t, 139, res.Detail.BonusDays)
	assert.Equal(t, 21, res.Detail.VacationDays)
	assert.Equal(t, date(2025, time.July, 1), res.Detail.SemesterStart)

	con := res.Concepts
	assertAmount(t, "750000", con.Seniority)
	assertAmount(t, "300000", con.NoticeSubstitute)
	assertAmount(t, "25000", con.NoticeBonus)
	assertAmount(t, "80000", con.DaysWorked)
	assertAmount(t, "70000", con.Integration)
	assertAmount(t, "5833.33", con.IntegrationBonus)
	assertAmount(t, "57123.29", con.ProportionalBonus)
	assertAmount(t, "126000", con.Vacation)
	assertAmount(t, "10500", con.VacationBonus)

	// AND: the total is the sum of the rounded concepts
	assertAmount(t, "1424456.62", res.Total)
	assert.Nil(t, res.Updates)
}

func TestCalculate_RoundsEachConceptBeforeSumming(t *testing.T) {
	// GIVEN: a wage small enough that every concept carries a fraction
	c := severance.Case{
		HireDate:          date(2022, time.January, 1),
		DismissalDate:     date(2023, time.March, 10),
		MonthlyWage:       d("1"),
		NoticeAlreadyPaid: true,
	}

	// WHEN: computing the concepts
	con, det, err := severance.ComputeConcepts(c)
	require.NoError(t, err)

	// THEN: rounding per concept gives 2.86 where rounding once gives 2.85
	assert.Equal(t, 69, det.BonusDays)
	assertAmount(t, "0", con.NoticeSubstitute)
	assertAmount(t, "0.32", con.DaysWorked)
	assertAmount(t, "0.68", con.Integration)
	assertAmount(t, "0.06", con.IntegrationBonus)
	assertAmount(t, "0.19", con.ProportionalBonus)
	assertAmount(t, "0.56", con.Vacation)
	assertAmount(t, "0.05", con.VacationBonus)
	assertAmount(t, "2.86", con.Total())

	one := d("1")
	unrounded := one.Add(one.Div(d("31")).Mul(d("10"))).
		Add(one.Div(d("31")).Mul(d("21"))).
		Add(one.Div(d("31")).Mul(d("21")).Div(d("12"))).
		Add(one.Div(d("365")).Mul(d("69"))).
		Add(d("0.56")).
		Add(d("0.56").Div(d("12")))
	assertAmount(t, "2.85", unrounded.Round(2))
}

func TestComputeConcepts_HalfCentBehindPeriodicQuotient(t *testing.T) {
	// wage / days is periodic in every case; the exact product ends in 5
	tests := []struct {
		name      string
		wage      string
		dismissal generic.CalendarDate
		concept   func(severance.Concepts) decimal.Decimal
		want      string
	}{
		{"days worked over 30", "1000.03", date(2024, time.June, 15),
			func(c severance.Concepts) decimal.Decimal { return c.DaysWorked }, "500.02"},
		{"integration over 30", "1000.03", date(2024, time.June, 15),
			func(c severance.Concepts) decimal.Decimal { return c.Integration }, "500.02"},
		{"integration bonus over 360", "1000.03", date(2024, time.June, 15),
			func(c severance.Concepts) decimal.Decimal { return c.IntegrationBonus }, "41.67"},
		{"proportional bonus over 365", "100.075", date(2023, time.March, 14),
			func(c severance.Concepts) decimal.Decimal { return c.ProportionalBonus }, "20.02"},
		{"proportional bonus over 365, larger wage", "999.975", date(2023, time.March, 14),
			func(c severance.Concepts) decimal.Decimal { return c.ProportionalBonus }, "200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			con, _, err := severance.ComputeConcepts(severance.Case{
				HireDate:      date(2020, time.January, 1),
				DismissalDate: tt.dismissal,
				MonthlyWage:   d(tt.wage),
			})
			require.NoError(t, err)
			assertAmount(t, tt.want, tt.concept(con))
		})
	}
}

func TestCalculate_NoticeBoundaryAtFiveYears(t *testing.T) {
	c := severance.Case{
		HireDate:      date(2019, time.March, 1),
		DismissalDate: date(2024, time.March, 1),
		MonthlyWage:   d("100000"),
	}
	res, err := severance.DefaultPolicy().Calculate(nil, c)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Tenure.Years)
	assert.Equal(t, 2, res.Detail.NoticeMonths)
	assertAmount(t, "200000", res.Concepts.NoticeSubstitute)

	c.DismissalDate = date(2023, time.June, 15)
	res, err = severance.DefaultPolicy().Calculate(nil, c)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Tenure.Years)
	assert.Equal(t, 1, res.Detail.NoticeMonths)
}

func TestCalculate_NoticePaid(t *testing.T) {
	c := referenceCase()
	c.NoticeAlreadyPaid = true

	res, err := severance.DefaultPolicy().Calculate(nil, c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Detail.NoticeMonths)
	assert.True(t, res.Concepts.NoticeSubstitute.IsZero())
	assert.True(t, res.Concepts.NoticeBonus.IsZero())
	assertAmount(t, "1099456.62", res.Total)
}

func TestCalculate_NoIntegrationOnLastDayOfMonth(t *testing.T) {
	c := referenceCase()
	c.DismissalDate = date(2025, time.November, 30)

	res, err := severance.DefaultPolicy().Calculate(nil, c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Detail.IntegrationDays)
	assert.True(t, res.Concepts.Integration.IsZero())
	assert.True(t, res.Concepts.IntegrationBonus.IsZero())
	assertAmount(t, "150000", res.Concepts.DaysWorked)
}

func TestCalculate_FirstSemester(t *testing.T) {
	c := referenceCase()
	c.DismissalDate = date(2026, time.June, 30)

	res, err := severance.DefaultPolicy().Calculate(nil, c)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 1), res.Detail.SemesterStart)
	assert.Equal(t, 181, res.Detail.BonusDays)
}

func TestConcepts_Lines(t *testing.T) {
	con, _, err := severance.ComputeConcepts(referenceCase())
	require.NoError(t, err)

	lines := con.Lines()
	require.Len(t, lines, 9)
	assert.Equal(t, "seniority", lines[0].Code)
	assert.Equal(t, "vacation_bonus", lines[8].Code)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	tests := map[string]struct {
		mutate func(*severance.Case)
		field  string
	}{
		"dismissal before hire": {func(c *severance.Case) { c.DismissalDate = date(2019, time.January, 1) }, "dismissal_date"},
		"zero wage":             {func(c *severance.Case) { c.MonthlyWage = decimal.Zero }, "monthly_wage"},
		"negative wage":         {func(c *severance.Case) { c.MonthlyWage = d("-1") }, "monthly_wage"},
		"missing hire":          {func(c *severance.Case) { c.HireDate = generic.CalendarDate{} }, "hire_date"},
		"liquidation before":    {func(c *severance.Case) { c.LiquidationDate = date(2025, time.November, 1) }, "liquidation_date"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := referenceCase()
			tt.mutate(&c)

			_, err := severance.DefaultPolicy().Calculate(nil, c)

			require.ErrorIs(t, err, generic.ErrInvalidInput)
			var inv *generic.InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.field, inv.Field)
		})
	}
}

// =============================================================================
// UPDATES
// =============================================================================

func updateSnapshot() *generic.Snapshot {
	snap := generic.EmptySnapshot()
	snap.WageIndex = generic.NewIndexSeries(generic.DatasetWageIndex, []generic.IndexPoint{
		{Date: date(2025, time.November, 1), Value: d("100")},
		{Date: date(2026, time.February, 1), Value: d("110")},
	})
	snap.PriceIndex = generic.NewIndexSeries(generic.DatasetPriceIndex, []generic.IndexPoint{
		{Date: date(2025, time.November, 1), Value: d("2")},
		{Date: date(2025, time.December, 1), Value: d("3")},
	})
	snap.LendingRates = generic.NewRateSeries([]generic.RateInterval{
		{From: date(2025, time.November, 1), To: date(2026, time.February, 28), MonthlyRate: d("3")},
	})
	return snap
}

func TestCalculate_UpdatesToLiquidationDate(t *testing.T) {
	// GIVEN: the reference case liquidated three months later
	c := referenceCase()
	c.LiquidationDate = date(2026, time.February, 16)

	// WHEN: calculating against published series
	res, err := severance.DefaultPolicy().Calculate(updateSnapshot(), c)
	require.NoError(t, err)
	require.NotNil(t, res.Updates)
	u := res.Updates

	// THEN: the wage index update carries a flat 3% surcharge
	assertAmount(t, "1566902.28", u.Index.Updated)
	assertAmount(t, "47007.07", u.Index.Surcharge)
	assertAmount(t, "1613909.35", u.Index.Total)

	// AND: the lending rate covers 93 days at 3% per month
	assert.Equal(t, 93, u.Rate.Days())
	assertAmount(t, "9.3", u.Rate.TotalPct)
	assertAmount(t, "1556931.09", u.RateTotal)

	// AND: inflation compounds November and December
	assertAmount(t, "5.06", u.InflationPct)
	assertAmount(t, "1496534.12", u.InflationTotal)
}

func TestCalculate_UpdatesWithEmptySeriesAreNeutral(t *testing.T) {
	c := referenceCase()
	c.LiquidationDate = date(2026, time.February, 16)

	res, err := severance.DefaultPolicy().Calculate(generic.EmptySnapshot(), c)
	require.NoError(t, err)
	require.NotNil(t, res.Updates)

	assert.True(t, res.Updates.Index.Ratio.Neutral)
	assertAmount(t, "1424456.62", res.Updates.Index.Updated)
	assertAmount(t, "1424456.62", res.Updates.RateTotal)
	assertAmount(t, "0", res.Updates.InflationPct)
}
