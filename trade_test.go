package rebalance

import (
	"math"
	"testing"

	"github.com/etnz/rebalance/date"
)

// testRow builds a row from cash and per-security units at the given NAVs,
// with values, totals and allocations consistent.
func testRow(u Universe, navs []float64, cash float64, units []float64) *Row {
	r := &Row{
		Date:      date.New(2002, 6, 3),
		Cash:      cash,
		Positions: make([]Position, len(u)),
		PctChange: math.NaN(),
		LogReturn: math.NaN(),
	}
	for i := range u {
		r.Positions[i].Units = units[i]
		r.Positions[i].Value = units[i] * navs[i]
		r.MarketValue += r.Positions[i].Value
	}
	r.TotalValue = r.MarketValue + cash
	r.resetAllocations(u)
	return r
}

func TestRebalanceRowInvestsOpeningCash(t *testing.T) {
	u := DefaultUniverse()
	navs := []float64{20, 30, 10, 15}
	a := testAccountConfig()
	r := testRow(u, navs, 100_000, []float64{0, 0, 0, 0})

	rebalanceRow(r, &a, a.Bands, u, navs)

	// All cash over the maximum: half goes to each ETF leg, fee deducted
	// from the invested amount.
	wantXBB := (50_000 - 7.50) / 20
	wantXIC := (50_000 - 7.50) / 30
	if got := r.Positions[u.Index("XBB")].Units; !almost(got, wantXBB, 1e-9) {
		t.Errorf("XBB units = %v, want %v", got, wantXBB)
	}
	if got := r.Positions[u.Index("XIC")].Units; !almost(got, wantXIC, 1e-9) {
		t.Errorf("XIC units = %v, want %v", got, wantXIC)
	}
	if r.Cash != 0 {
		t.Errorf("cash = %v, want 0", r.Cash)
	}
	if !almost(r.Costs, 15, 1e-9) {
		t.Errorf("costs = %v, want 15", r.Costs)
	}
	if !almost(r.Purchases, 100_000, 1e-9) {
		t.Errorf("purchases = %v, want 100000", r.Purchases)
	}
	if !r.Rebalanced {
		t.Error("row not marked rebalanced")
	}
}

func TestRebalanceRowAtTargetDoesNothing(t *testing.T) {
	u := DefaultUniverse()
	navs := []float64{20, 30, 10, 15}
	a := testAccountConfig()
	// 50/50 in the ETF legs, no cash: exactly on target.
	r := testRow(u, navs, 0, []float64{2500, 5000.0 / 3, 0, 0})

	rebalanceRow(r, &a, a.Bands, u, navs)

	if r.Rebalanced {
		t.Error("row rebalanced while on target")
	}
	if !almost(r.Positions[u.Index("XBB")].Units, 2500, 1e-9) {
		t.Errorf("XBB units moved to %v", r.Positions[u.Index("XBB")].Units)
	}
}

func TestRaiseCashSellsMutualFundsFirst(t *testing.T) {
	u := DefaultUniverse()
	navs := []float64{20, 30, 10, 15}
	a := testAccountConfig()
	// Fully invested through the mutual fund legs.
	r := testRow(u, navs, 0, []float64{0, 0, 3000, 2000})

	// Both classes sit five points over a 45/45/10 target: the raise is
	// split evenly between them.
	b := PinnedBands(0.10, 0.45, 0.45)
	raiseCash(r, &a, b, u, navs, 6000)

	// 3000 raised from each class, all of it covered by the mutual fund
	// legs so no fee applies.
	if got := r.Positions[u.Index("TD_Bond")].Units; !almost(got, 3000-300, 1e-9) {
		t.Errorf("TD_Bond units = %v, want %v", got, 3000-300)
	}
	if got := r.Positions[u.Index("TD_CDN_Equity")].Units; !almost(got, 2000-200, 1e-9) {
		t.Errorf("TD_CDN_Equity units = %v, want %v", got, 2000-200)
	}
	if !almost(r.Cash, 6000, 1e-9) {
		t.Errorf("cash = %v, want 6000", r.Cash)
	}
	if r.Costs != 0 {
		t.Errorf("costs = %v, want 0 for mutual fund sales", r.Costs)
	}
	if !almost(r.Sales, 6000, 1e-9) {
		t.Errorf("sales = %v, want 6000", r.Sales)
	}
}

func TestSellDownSkipsLegsUnderMinimumTrade(t *testing.T) {
	u := DefaultUniverse()
	navs := []float64{20, 30, 10, 15}
	a := testAccountConfig()
	// The mutual fund leg is worth 50, under the 100 minimum: the ETF leg
	// covers the whole sale.
	r := testRow(u, navs, 0, []float64{0, 2000, 0, 50.0 / 15})

	sellDown(r, &a, u, navs, 3000, Equity)

	if got := r.Positions[u.Index("TD_CDN_Equity")].Units; !almost(got, 50.0/15, 1e-9) {
		t.Errorf("small mutual fund leg traded: units = %v", got)
	}
	wantTraded := (3000 + 7.50) / 30
	if got := r.Positions[u.Index("XIC")].Units; !almost(got, 2000-wantTraded, 1e-9) {
		t.Errorf("XIC units = %v, want %v", got, 2000-wantTraded)
	}
	// The fee is paid out of cash and earned back by selling extra units.
	if !almost(r.Cash, 3000, 1e-9) {
		t.Errorf("cash = %v, want 3000", r.Cash)
	}
}

func TestSellDownRealizesTaxes(t *testing.T) {
	u := DefaultUniverse()
	navs := []float64{20, 30, 10, 15}
	a := testAccountConfig()
	a.TaxableTransactions = true

	r := testRow(u, navs, 0, []float64{0, 2000, 0, 0})
	r.Positions[u.Index("XIC")].ACB = 25

	sellDown(r, &a, u, navs, 3000, Equity)

	traded := (3000 + 7.50) / 30
	wantTax := (traded*(30-25) - 7.50) * a.TaxGains
	if !almost(r.TaxGain, wantTax, 1e-9) {
		t.Errorf("tax gain = %v, want %v", r.TaxGain, wantTax)
	}
	if !almost(r.Cash, 3000-wantTax, 1e-9) {
		t.Errorf("cash = %v, want %v", r.Cash, 3000-wantTax)
	}
}
