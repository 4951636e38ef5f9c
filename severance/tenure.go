package severance

import (
	"fmt"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// TENURE
// =============================================================================

// Tenure is completed service, after the statutory rounding.
type Tenure struct {
	Years  int
	Months int
}

func (t Tenure) String() string {
	return fmt.Sprintf("%d años, %d meses", t.Years, t.Months)
}

// ComputeTenure counts years and months between hire and dismissal. An
// incomplete month borrows from the months, an incomplete year from the
// years. A remaining fraction over three months then counts as a full year,
// applied once after borrowing.
func ComputeTenure(hire, dismissal generic.CalendarDate) Tenure {
	years := dismissal.Year() - hire.Year()
	months := int(dismissal.Month()) - int(hire.Month())
	days := dismissal.Day() - hire.Day()

	if days < 0 {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	if months > 3 {
		years++
		months = 0
	}
	return Tenure{Years: years, Months: months}
}

// =============================================================================
// VACATION TIERS (art. 150 LCT)
// =============================================================================

// VacationTier grants Days once tenure reaches AfterYears.
type VacationTier struct {
	AfterYears int
	Days       int
}

// DefaultVacationTiers: <5y 14 days, <10y 21, <20y 28, 20y+ 35.
var DefaultVacationTiers = []VacationTier{
	{AfterYears: 0, Days: 14},
	{AfterYears: 5, Days: 21},
	{AfterYears: 10, Days: 28},
	{AfterYears: 20, Days: 35},
}

// VacationDays returns the entitlement for years of tenure.
func VacationDays(tiers []VacationTier, years int) int {
	days := 0
	for _, tier := range tiers {
		if years >= tier.AfterYears {
			days = tier.Days
		}
	}
	return days
}
