package rebalance

import "math"

// finalize settles taxes on a fully rebalanced ledger and fills the derived
// columns: value after tax, normalized series, and daily returns. It is
// idempotent, all columns are assigned from scratch.
func finalize(l *Ledger, a *AccountConfig, m *Market) {
	switch a.Treatment() {
	case TaxFree:
		for i := range l.rows {
			r := &l.rows[i]
			r.TaxDividend = 0
			r.TaxGain = 0
			r.TaxRealized = 0
			r.TaxAccrued = 0
			r.TaxTotal = 0
			r.ValueAfterTax = r.TotalValue
		}

	case TaxDeferred:
		// The whole balance is taxed at the marginal rate on withdrawal.
		for i := range l.rows {
			r := &l.rows[i]
			r.TaxDividend = 0
			r.TaxGain = 0
			r.TaxRealized = 0
			accrued := r.TotalValue * a.TaxRate
			r.TaxAccrued = accrued
			r.TaxTotal = accrued
			r.ValueAfterTax = r.TotalValue - r.TaxTotal
		}

	case Taxable:
		// Unrealized gains accrue against the cost base, realized taxes
		// accumulate from the daily dividend and sale taxes.
		var realized float64
		for i := range l.rows {
			r := &l.rows[i]
			var accrued float64
			for s := range l.universe {
				p := r.Positions[s]
				accrued += (m.NAV(s, r.Date) - p.ACB) * p.Units * a.TaxGains
			}
			realized += r.TaxDividend + r.TaxGain
			r.TaxAccrued = accrued
			r.TaxRealized = realized
			r.TaxTotal = accrued + realized
			r.ValueAfterTax = r.TotalValue - r.TaxTotal
		}
	}

	startTotal := l.rows[0].TotalValue
	startAfterTax := l.rows[0].ValueAfterTax
	for i := range l.rows {
		r := &l.rows[i]
		r.TotalValueNorm = r.TotalValue / startTotal
		r.ValueAfterTaxNorm = r.ValueAfterTax / startAfterTax
		if i == 0 {
			r.PctChange = math.NaN()
			r.LogReturn = math.NaN()
		} else {
			prev := l.rows[i-1].ValueAfterTax
			r.PctChange = r.ValueAfterTax/prev - 1
			r.LogReturn = math.Log(r.ValueAfterTax) - math.Log(prev)
		}
	}
	l.finalized = true
}
