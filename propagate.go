package rebalance

// propagate fills the ledger forward from the rebalance event at row index
// from: units and cost bases carry forward, dividends accrue day by day per
// the account's dividend policy, deposits land in cash, and every row's
// market value, total value and allocations are recomputed.
//
// Bands are passed separately from the account configuration because a
// portfolio-driven rebalance sweeps dividends against the pinned targets it
// imposed, not the account's own.
func propagate(l *Ledger, a *AccountConfig, b Bands, m *Market, from int) {
	rows := l.rows[from:]
	first := &rows[0]

	// Carry the event's outcome forward. Dividend flows and deposits are
	// layered on top below.
	for j := 1; j < len(rows); j++ {
		r := &rows[j]
		copy(r.Positions, first.Positions)
		r.Cash = first.Cash
		r.Purchases = first.Purchases
		r.Sales = first.Sales
		r.Costs = first.Costs
		r.Dividends = 0
		r.TaxDividend = 0
		r.TaxGain = 0
		r.Rebalanced = false
	}

	u := l.universe
	accrueDividendIncome(rows, a, u, m)

	switch {
	case a.DRIP:
		reinvestDividends(rows, a, u, m)
	case a.MutualFunds && b.FixedIncome.Target+b.Equity.Target > 0:
		sweepDividends(rows, a, b, u, m)
	default:
		cumulateDividendCash(rows)
	}

	// Deposits and withdrawals land last.
	var cumDeposit float64
	for j := 1; j < len(rows); j++ {
		cumDeposit += rows[j].Deposit
		rows[j].Cash += cumDeposit
	}

	// Settle daily values and allocations, the event row included: its
	// total was left at the pre-trade level on purpose during the event.
	for j := range rows {
		r := &rows[j]
		var market float64
		for i := range u {
			p := &r.Positions[i]
			p.Value = p.Units * m.NAV(i, r.Date)
			market += p.Value
		}
		r.MarketValue = market
		r.TotalValue = market + r.Cash
		r.resetAllocations(u)
	}
}

// accrueDividendIncome fills the dividend income and dividend tax of each
// day after the event row, computed on the units held at the event. Only the
// ETF legs feed these columns: mutual fund distributions are handled by the
// sweep, which pays them to cash itself. Fixed income distributions settle
// at the full marginal rate, equity distributions at the dividend rate.
func accrueDividendIncome(rows []Row, a *AccountConfig, u Universe, m *Market) {
	first := &rows[0]
	for j := 1; j < len(rows); j++ {
		r := &rows[j]
		for i, sec := range u {
			if sec.Fund() != ETF {
				continue
			}
			income := m.Dividend(i, r.Date) * first.Positions[i].Units
			r.Dividends += income
			if a.TaxableTransactions {
				switch sec.Class() {
				case FixedIncome:
					r.TaxDividend += income * a.TaxRate
				case Equity:
					r.TaxDividend += income * a.TaxDividend
				}
			}
		}
	}
}

// reinvestDividends converts each security's net-of-tax dividends into new
// units of the same security. Only securities held at the event participate,
// and the income of each day is earned on the units held at the event, not
// on previously reinvested units. The tax withheld never reaches the
// account.
func reinvestDividends(rows []Row, a *AccountConfig, u Universe, m *Market) {
	first := &rows[0]
	for i, sec := range u {
		startUnits := first.Positions[i].Units
		if startUnits == 0 {
			continue
		}

		var taxRate float64
		if a.TaxableTransactions {
			if sec.Class() == FixedIncome {
				taxRate = a.TaxRate
			} else {
				taxRate = a.TaxDividend
			}
		}

		acb := first.Positions[i].ACB
		var cumTraded float64
		for j := 1; j < len(rows); j++ {
			r := &rows[j]
			nav := m.NAV(i, r.Date)
			traded := m.Dividend(i, r.Date) * startUnits * (1 - taxRate) / nav
			if startUnits+traded == 0 {
				acb = 0
			} else {
				acb = (acb*startUnits + nav*traded) / (startUnits + traded)
			}
			cumTraded += traded
			r.Positions[i].ACB = acb
			r.Positions[i].Units = startUnits + cumTraded
		}
	}
}

// sweepDividends routes net-of-tax dividend income into the mutual fund
// legs, split across fixed income and equity in proportion to their targets.
// The mutual funds' own distributions pay out to cash, taxed on the swollen
// unit count of the day.
func sweepDividends(rows []Row, a *AccountConfig, b Bands, u Universe, m *Market) {
	weightTotal := b.FixedIncome.Target + b.Equity.Target
	legs := []struct {
		index   int
		weight  float64
		taxRate float64
	}{
		{u.Leg(FixedIncome, MutualFund), b.FixedIncome.Target / weightTotal, a.TaxRate},
		{u.Leg(Equity, MutualFund), b.Equity.Target / weightTotal, a.TaxDividend},
	}

	var cumIncome, cumTax float64
	for j := 1; j < len(rows); j++ {
		r := &rows[j]
		netDividend := r.Dividends - r.TaxDividend

		for _, leg := range legs {
			p := &r.Positions[leg.index]
			nav := m.NAV(leg.index, r.Date)
			traded := netDividend * leg.weight / nav
			prev := &rows[j-1].Positions[leg.index]
			if prev.Units+traded == 0 {
				p.ACB = 0
			} else {
				p.ACB = (prev.ACB*prev.Units + nav*traded) / (prev.Units + traded)
			}
			p.Units = prev.Units + traded
		}

		// Mutual fund distributions pay to cash.
		for _, leg := range legs {
			income := m.Dividend(leg.index, r.Date) * r.Positions[leg.index].Units
			cumIncome += income
			if a.TaxableTransactions {
				tax := income * leg.taxRate
				r.TaxDividend += tax
				cumTax += tax
			}
		}
		r.Cash += cumIncome - cumTax
	}
}

// cumulateDividendCash pays net-of-tax dividends out to cash.
func cumulateDividendCash(rows []Row) {
	var cumNet float64
	for j := 1; j < len(rows); j++ {
		cumNet += rows[j].Dividends - rows[j].TaxDividend
		rows[j].Cash += cumNet
	}
}
