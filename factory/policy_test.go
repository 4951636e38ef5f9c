package factory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/config"
	"github.com/laborcalc/indemnity-engine/factory"
	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/severance"
)

func TestParsePolicies_OverridesAndDefaults(t *testing.T) {
	// GIVEN: a document overriding one rate per policy and the vacation tiers
	doc := `{
		"severance": {
			"index_surcharge": "0.05",
			"vacation_tiers": [
				{"after_years": 0, "days": 15},
				{"after_years": 3, "days": 25}
			]
		},
		"injury": {"court_fee_rate": "0.03"}
	}`

	// WHEN: parsing it
	sev, inj, err := factory.NewPolicyFactory().ParsePolicies(doc)
	require.NoError(t, err)

	// THEN: given keys win, the rest keep the statutory defaults
	assert.Equal(t, "0.05", sev.IndexSurcharge.String())
	assert.Equal(t, 25, severance.VacationDays(sev.VacationTiers, 4))
	assert.Equal(t, "0.03", inj.Fees.CourtFee.String())
	assert.Equal(t, "0.1", inj.Fees.BarSurcharge.String())
	assert.Equal(t, "0.2", inj.SurchargeRate.String())
}

func TestParsePolicies_TiersReachCalculation(t *testing.T) {
	sev, _, err := factory.NewPolicyFactory().ParsePolicies(
		`{"severance": {"vacation_tiers": [{"after_years": 0, "days": 30}]}}`)
	require.NoError(t, err)

	res, err := sev.Calculate(nil, severance.Case{
		HireDate:      generic.NewDate(2022, time.March, 1),
		DismissalDate: generic.NewDate(2024, time.March, 1),
		MonthlyWage:   decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Detail.VacationDays)
}

func TestParsePolicies_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"bad rate":      `{"injury": {"interest_rate": "tres"}}`,
		"negative rate": `{"severance": {"index_surcharge": "-0.01"}}`,
		"first tier":    `{"severance": {"vacation_tiers": [{"after_years": 1, "days": 14}]}}`,
		"not ascending": `{"severance": {"vacation_tiers": [{"after_years": 0, "days": 14}, {"after_years": 0, "days": 21}]}}`,
		"days not set":  `{"severance": {"vacation_tiers": [{"after_years": 0}]}}`,
	}
	f := factory.NewPolicyFactory()
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.ParsePolicies(doc)
			assert.Error(t, err)
		})
	}
}

func TestFromConfig(t *testing.T) {
	conf, err := config.LoadConfiguration("")
	require.NoError(t, err)
	conf.Policy.InjurySurchargeRate = "0.25"

	sev, inj, err := factory.NewPolicyFactory().FromConfig(conf.Policy)
	require.NoError(t, err)
	assert.Equal(t, "0.03", sev.IndexSurcharge.String())
	assert.Equal(t, "0.25", inj.SurchargeRate.String())
	assert.Equal(t, severance.DefaultVacationTiers, sev.VacationTiers)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewPolicyFactory()
	sev, inj, err := f.ParsePolicies(`{"injury": {"interest_rate": "0.06"}}`)
	require.NoError(t, err)

	pj := f.ToJSON(sev, inj)
	assert.Equal(t, "0.06", pj.Injury.InterestRate)
	assert.Len(t, pj.Severance.VacationTiers, 4)

	sev2, inj2, err := f.FromJSON(pj)
	require.NoError(t, err)
	assert.True(t, inj2.InterestRate.Equal(inj.InterestRate))
	assert.Equal(t, sev.VacationTiers, sev2.VacationTiers)
}
