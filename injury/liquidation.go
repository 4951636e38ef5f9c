package injury

import (
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/money"
)

// FeeRates are the court charges added to a judicial liquidation.
type FeeRates struct {
	CourtFee     decimal.Decimal // tasa de justicia, 2.2%
	BarSurcharge decimal.Decimal // caja de abogados, 10% of the court fee
}

// Liquidation is the final figure of a claim with court charges.
type Liquidation struct {
	Method       Method
	Amount       decimal.Decimal
	CourtFee     decimal.Decimal
	BarSurcharge decimal.Decimal
	Total        decimal.Decimal
	InWords      string
}

// Liquidate adds the court charges to the favourable update amount.
func (p *Policy) Liquidate(res Result) Liquidation {
	fee := money.Round2(res.FavorableAmount.Mul(p.Fees.CourtFee))
	bar := money.Round2(fee.Mul(p.Fees.BarSurcharge))
	total := res.FavorableAmount.Add(fee).Add(bar)

	return Liquidation{
		Method:       res.Favorable,
		Amount:       res.FavorableAmount,
		CourtFee:     fee,
		BarSurcharge: bar,
		Total:        total,
		InWords:      money.AmountInWords(total),
	}
}
