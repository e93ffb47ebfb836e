package rebalance

import "github.com/shopspring/decimal"

// acbBuy returns the new adjusted cost base per unit after buying traded
// units at nav per unit, with fee folded into the cost base.
//
// Brokers settle the cost base in exact decimal arithmetic, so the blend is
// computed with decimals and converted back to float64 at the end.
func acbBuy(acb, units, nav, traded, fee float64) float64 {
	if units == 0 && traded == 0 {
		return acb
	}
	dACB := decimal.NewFromFloat(acb)
	dUnits := decimal.NewFromFloat(units)
	dNAV := decimal.NewFromFloat(nav)
	dTraded := decimal.NewFromFloat(traded)
	dFee := decimal.NewFromFloat(fee)

	cost := dACB.Mul(dUnits).Add(dNAV.Mul(dTraded)).Add(dFee)
	f, _ := cost.Div(dUnits.Add(dTraded)).Float64()
	return f
}

// acbSellTax returns the capital gains tax realized by selling traded units
// at nav per unit against an adjusted cost base of acb per unit. The fee
// reduces the proceeds before the rate applies. Selling nothing realizes
// nothing, fee or not.
func acbSellTax(acb, nav, traded, fee, rate float64) float64 {
	if traded == 0 {
		return 0
	}
	dGain := decimal.NewFromFloat(traded).
		Mul(decimal.NewFromFloat(nav).Sub(decimal.NewFromFloat(acb))).
		Sub(decimal.NewFromFloat(fee))
	f, _ := dGain.Mul(decimal.NewFromFloat(rate)).Float64()
	return f
}
