/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into severance.Policy and injury.Policy
  objects. Statutory rates change by law or court practice; the factory lets
  operators publish them without code changes.

JSON SCHEMA:
  {
    "severance": {
      "index_surcharge": "0.03",
      "vacation_tiers": [
        {"after_years": 0,  "days": 14},
        {"after_years": 5,  "days": 21},
        {"after_years": 10, "days": 28},
        {"after_years": 20, "days": 35}
      ]
    },
    "injury": {
      "interest_rate": "0.03",
      "surcharge_rate": "0.20",
      "court_fee_rate": "0.022",
      "bar_surcharge_rate": "0.10"
    }
  }

  Rates are fractions written as decimal strings so they stay exact. Any
  omitted key keeps its statutory default.

USAGE:
  factory := NewPolicyFactory()

  // From JSON string
  sev, inj, err := factory.ParsePolicies(jsonString)

  // From the service configuration
  sev, inj, err := factory.FromConfig(conf.Policy)

SEE ALSO:
  - severance/policy.go: Severance policy
  - injury/policy.go: Injury policy
  - config/config.go: PolicyConfig
*/
package factory

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/config"
	"github.com/laborcalc/indemnity-engine/injury"
	"github.com/laborcalc/indemnity-engine/severance"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of both policies.
type PolicyJSON struct {
	Severance SeveranceJSON `json:"severance"`
	Injury    InjuryJSON    `json:"injury"`
}

// SeveranceJSON configures the dismissal liquidation.
type SeveranceJSON struct {
	IndexSurcharge string             `json:"index_surcharge,omitempty"`
	VacationTiers  []VacationTierJSON `json:"vacation_tiers,omitempty"`
}

// VacationTierJSON grants Days from AfterYears of tenure.
type VacationTierJSON struct {
	AfterYears int `json:"after_years"`
	Days       int `json:"days"`
}

// InjuryJSON configures the injury claim and its court charges.
type InjuryJSON struct {
	InterestRate     string `json:"interest_rate,omitempty"`
	SurchargeRate    string `json:"surcharge_rate,omitempty"`
	CourtFeeRate     string `json:"court_fee_rate,omitempty"`
	BarSurchargeRate string `json:"bar_surcharge_rate,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicies parses a JSON string into both policies.
func (f *PolicyFactory) ParsePolicies(jsonStr string) (*severance.Policy, *injury.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromConfig builds both policies from the service configuration. Vacation
// tiers keep their statutory values.
func (f *PolicyFactory) FromConfig(pc config.PolicyConfig) (*severance.Policy, *injury.Policy, error) {
	return f.FromJSON(PolicyJSON{
		Severance: SeveranceJSON{IndexSurcharge: pc.SeveranceIndexSurcharge},
		Injury: InjuryJSON{
			InterestRate:     pc.InjuryInterestRate,
			SurchargeRate:    pc.InjurySurchargeRate,
			CourtFeeRate:     pc.CourtFeeRate,
			BarSurchargeRate: pc.BarSurchargeRate,
		},
	})
}

// FromJSON converts PolicyJSON, starting from the statutory defaults.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*severance.Policy, *injury.Policy, error) {
	sev := severance.DefaultPolicy()
	inj := injury.DefaultPolicy()

	rates := []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"severance.index_surcharge", pj.Severance.IndexSurcharge, &sev.IndexSurcharge},
		{"injury.interest_rate", pj.Injury.InterestRate, &inj.InterestRate},
		{"injury.surcharge_rate", pj.Injury.SurchargeRate, &inj.SurchargeRate},
		{"injury.court_fee_rate", pj.Injury.CourtFeeRate, &inj.Fees.CourtFee},
		{"injury.bar_surcharge_rate", pj.Injury.BarSurchargeRate, &inj.Fees.BarSurcharge},
	}
	for _, r := range rates {
		if strings.TrimSpace(r.raw) == "" {
			continue
		}
		v, err := parseRate(r.raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", r.key, err)
		}
		*r.dst = v
	}

	if len(pj.Severance.VacationTiers) > 0 {
		tiers, err := parseVacationTiers(pj.Severance.VacationTiers)
		if err != nil {
			return nil, nil, err
		}
		sev.VacationTiers = tiers
	}

	return sev, inj, nil
}

// ToJSON converts the policies back to PolicyJSON.
func (f *PolicyFactory) ToJSON(sev *severance.Policy, inj *injury.Policy) PolicyJSON {
	pj := PolicyJSON{
		Severance: SeveranceJSON{IndexSurcharge: sev.IndexSurcharge.String()},
		Injury: InjuryJSON{
			InterestRate:     inj.InterestRate.String(),
			SurchargeRate:    inj.SurchargeRate.String(),
			CourtFeeRate:     inj.Fees.CourtFee.String(),
			BarSurchargeRate: inj.Fees.BarSurcharge.String(),
		},
	}

	tiers := sev.VacationTiers
	if len(tiers) == 0 {
		tiers = severance.DefaultVacationTiers
	}
	for _, t := range tiers {
		pj.Severance.VacationTiers = append(pj.Severance.VacationTiers, VacationTierJSON{
			AfterYears: t.AfterYears,
			Days:       t.Days,
		})
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRate(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q", s)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("rate must not be negative")
	}
	return v, nil
}

// parseVacationTiers requires tiers starting at 0 years, strictly ascending,
// with positive days.
func parseVacationTiers(tj []VacationTierJSON) ([]severance.VacationTier, error) {
	tiers := make([]severance.VacationTier, 0, len(tj))
	for i, t := range tj {
		switch {
		case i == 0 && t.AfterYears != 0:
			return nil, fmt.Errorf("vacation_tiers: first tier must start at 0 years")
		case i > 0 && t.AfterYears <= tj[i-1].AfterYears:
			return nil, fmt.Errorf("vacation_tiers: after_years must ascend, got %d after %d", t.AfterYears, tj[i-1].AfterYears)
		case t.Days <= 0:
			return nil, fmt.Errorf("vacation_tiers: days must be positive")
		}
		tiers = append(tiers, severance.VacationTier{AfterYears: t.AfterYears, Days: t.Days})
	}
	return tiers, nil
}
