package rebalance

import "math"

// The trade engine mutates one row in place during a rebalance event. It
// never recomputes TotalValue mid-event: trade sizes are derived from the
// allocation drift observed at the open, and the post-trade reality is
// settled by the forward propagation that follows.
//
// navs holds the day's NAV per share for every security in the universe, in
// universe order.

// sellDown sells one asset class down to raise tradeCash of proceeds.
// Within a class the mutual fund leg is liquidated before the ETF leg, fees
// apply to the ETF leg only, and a leg worth less than the minimum trade
// size is skipped.
func sellDown(r *Row, a *AccountConfig, u Universe, navs []float64, tradeCash float64, class AssetClass) {
	for _, i := range u.SellOrder(class) {
		p := &r.Positions[i]
		if p.Value < a.MinimumTradeDollar {
			continue
		}
		var legCash float64
		if tradeCash > p.Value {
			legCash = p.Value
			tradeCash -= legCash
		} else {
			legCash = tradeCash
			tradeCash = 0
		}

		var legCosts float64
		if u[i].Fund() == ETF {
			r.Costs += a.TradeFee
			legCosts = a.TradeFee
			r.Cash -= a.TradeFee
		}

		// Selling a few extra units covers the fee.
		traded := (legCash + legCosts) / navs[i]
		revenue := traded * navs[i]
		r.Sales += revenue
		r.Cash += revenue

		if a.TaxableTransactions {
			tax := acbSellTax(p.ACB, navs[i], traded, a.TradeFee, a.TaxGains)
			r.TaxGain += tax
			r.Cash -= tax
		}

		p.Units -= traded
		p.Value = p.Units * navs[i]
	}

	r.resetAllocations(u)
	r.Rebalanced = true
}

// buyUp spends tradeCash of cash on the security at index i. The taxes
// realized earlier in the same event reduce the spend first, then the fee
// comes out of the invested amount.
func buyUp(r *Row, a *AccountConfig, u Universe, navs []float64, tradeCash float64, i int) {
	r.Costs += a.TradeFee

	tradeCash -= r.TaxGain
	r.Cash -= tradeCash
	tradeCash -= a.TradeFee
	r.Purchases += tradeCash

	traded := tradeCash / navs[i]
	p := &r.Positions[i]
	p.ACB = acbBuy(p.ACB, p.Units, navs[i], traded, a.TradeFee)
	p.Units += traded
	p.Value = p.Units * navs[i]

	r.resetAllocations(u)
	r.Rebalanced = true
}

// classDiffs returns the allocation drift of equity and fixed income from
// their targets, with values inside the rounding tolerance clamped to zero.
func classDiffs(r *Row, b Bands) (eq, fi float64) {
	eq = r.EquityAllocation - b.Equity.Target
	fi = r.FixedIncomeAllocation - b.FixedIncome.Target
	if math.Abs(eq) < allocEpsilon {
		eq = 0
	}
	if math.Abs(fi) < allocEpsilon {
		fi = 0
	}
	return eq, fi
}

// investExcessCash buys ETF units with tradeCash of excess cash, split
// between equity and fixed income in proportion to how far each sits below
// its target.
func investExcessCash(r *Row, a *AccountConfig, b Bands, u Universe, navs []float64, tradeCash float64) {
	eqDiff, fiDiff := classDiffs(r, b)

	var addEquity, addFixedIncome float64
	switch {
	case eqDiff == 0 && fiDiff == 0:
		r.CashAllocation = 0
	case eqDiff <= 0 && fiDiff <= 0:
		addEquity = tradeCash * (eqDiff / (eqDiff + fiDiff))
		addFixedIncome = tradeCash - addEquity
	case eqDiff < 0:
		addEquity = tradeCash
	case fiDiff < 0:
		addFixedIncome = tradeCash
	default:
		r.CashAllocation = 0
	}

	r.Cash -= tradeCash

	for _, leg := range []struct {
		class AssetClass
		add   float64
	}{{Equity, addEquity}, {FixedIncome, addFixedIncome}} {
		if leg.add <= 0 {
			continue
		}
		i := u.Leg(leg.class, ETF)
		p := &r.Positions[i]
		traded := (leg.add - a.TradeFee) / navs[i]
		p.ACB = acbBuy(p.ACB, p.Units, navs[i], traded, a.TradeFee)
		p.Units += traded
		p.Value = p.Units * navs[i]
		r.Purchases += leg.add
		r.Costs += a.TradeFee
	}

	r.resetAllocations(u)
	r.Rebalanced = true
}

// raiseCash sells positions to raise tradeCash of cash, taken from equity
// and fixed income in proportion to how far each sits above its target.
// Capital gains on equity legs settle at the gains rate, fixed income at the
// full marginal rate.
func raiseCash(r *Row, a *AccountConfig, b Bands, u Universe, navs []float64, tradeCash float64) {
	eqDiff, fiDiff := classDiffs(r, b)

	var takeEquity, takeFixedIncome float64
	switch {
	case eqDiff+fiDiff == 0:
		r.CashAllocation = 0
		tradeCash = 0
	case eqDiff >= 0 && fiDiff >= 0:
		takeEquity = tradeCash * (eqDiff / (eqDiff + fiDiff))
		takeFixedIncome = tradeCash - takeEquity
	case eqDiff > 0:
		takeEquity = tradeCash
	case fiDiff > 0:
		takeFixedIncome = tradeCash
	default:
		r.CashAllocation = 0
	}

	r.Cash += tradeCash

	for _, sale := range []struct {
		class   AssetClass
		take    float64
		taxRate float64
	}{{Equity, takeEquity, a.TaxGains}, {FixedIncome, takeFixedIncome, a.TaxRate}} {
		if sale.take <= 0 {
			continue
		}
		transCash := sale.take
		for _, i := range u.SellOrder(sale.class) {
			p := &r.Positions[i]
			var tradingFee float64
			if u[i].Fund() == ETF {
				tradingFee = a.TradeFee
			}
			if p.Value < a.MinimumTradeDollar {
				continue
			}
			var legCash float64
			if transCash > p.Value {
				legCash = p.Value
				transCash -= legCash
			} else {
				legCash = transCash
				transCash = 0
			}
			traded := legCash / navs[i]

			if a.TaxableTransactions {
				tax := acbSellTax(p.ACB, navs[i], traded, tradingFee, sale.taxRate)
				r.TaxGain += tax
				r.Cash -= tax
			}

			p.Units -= traded
			p.Value = p.Units * navs[i]
			r.Sales += legCash
			r.Costs += tradingFee
		}
	}

	r.resetAllocations(u)
	r.Rebalanced = true
}

// rebalanceRow runs one rebalance event on the row, applying at most six
// corrections in a fixed order: equity over max, fixed income over max,
// equity under min, fixed income under min, cash over max, cash under min.
// Each correction brings its class back to the rebalance level, not the
// target, and is skipped when the dollar size falls under the minimum trade.
func rebalanceRow(r *Row, a *AccountConfig, b Bands, u Universe, navs []float64) {
	if r.EquityAllocation > b.Equity.Max {
		tradeCash := r.TotalValue * (r.EquityAllocation - b.Equity.RebalanceMax)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			sellDown(r, a, u, navs, tradeCash, Equity)
		}
	}

	if r.FixedIncomeAllocation > b.FixedIncome.Max {
		tradeCash := r.TotalValue * (r.FixedIncomeAllocation - b.FixedIncome.RebalanceMax)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			sellDown(r, a, u, navs, tradeCash, FixedIncome)
		}
	}

	if r.EquityAllocation < b.Equity.Min {
		tradeCash := r.TotalValue * (b.Equity.RebalanceMin - r.EquityAllocation)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			buyUp(r, a, u, navs, tradeCash, u.Leg(Equity, ETF))
		}
	}

	if r.FixedIncomeAllocation < b.FixedIncome.Min {
		tradeCash := r.TotalValue * (b.FixedIncome.RebalanceMin - r.FixedIncomeAllocation)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			buyUp(r, a, u, navs, tradeCash, u.Leg(FixedIncome, ETF))
		}
	}

	if r.CashAllocation > b.Cash.Max {
		tradeCash := r.TotalValue * (r.CashAllocation - b.Cash.RebalanceMax)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			investExcessCash(r, a, b, u, navs, tradeCash)
		}
	}

	if r.CashAllocation < b.Cash.Min {
		tradeCash := r.TotalValue * (b.Cash.RebalanceMin - r.CashAllocation)
		if math.Abs(tradeCash) > a.MinimumTradeDollar {
			raiseCash(r, a, b, u, navs, tradeCash)
		}
	}

	// Residual cash inside the tolerance would trigger false trades later.
	if math.Abs(r.CashAllocation) < allocEpsilon {
		r.Cash = 0
		r.CashAllocation = 0
	}
}
