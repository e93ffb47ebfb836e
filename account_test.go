package rebalance

import (
	"math"
	"testing"

	"github.com/etnz/rebalance/date"
)

func mustRun(t *testing.T, a AccountConfig, m *Market) *Account {
	t.Helper()
	acc, err := NewAccount(a, m)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	if err := acc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return acc
}

func TestAccountRunTaxFree(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	acc := mustRun(t, testAccountConfig(), m)
	l := acc.Ledger()

	if !l.Finalized() {
		t.Fatal("ledger not finalized after Run")
	}
	if got := l.Row(0).TotalValueNorm; got != 1.0 {
		t.Errorf("first row normalized total = %v, want 1", got)
	}
	if !l.Row(0).Rebalanced {
		t.Error("opening rebalance did not trade")
	}
	if !math.IsNaN(l.Row(0).PctChange) {
		t.Error("first row pct change should be NaN")
	}

	for on, r := range l.Rows() {
		for i := range l.Universe() {
			if r.Positions[i].Units < 0 {
				t.Fatalf("%s: negative units for %s: %v", on, l.Universe()[i], r.Positions[i].Units)
			}
		}
		if r.Dividends < 0 {
			t.Fatalf("%s: negative dividends %v", on, r.Dividends)
		}
		if !almost(r.TotalValue, r.MarketValue+r.Cash, 1e-6) {
			t.Fatalf("%s: total %v differs from market %v + cash %v", on, r.TotalValue, r.MarketValue, r.Cash)
		}
		allocs := r.CashAllocation + r.FixedIncomeAllocation + r.EquityAllocation
		if !almost(allocs, 1.0, 1e-6) {
			t.Fatalf("%s: allocations sum to %v, want 1", on, allocs)
		}
		if r.TaxTotal != 0 || r.TaxDividend != 0 || r.TaxGain != 0 {
			t.Fatalf("%s: tax in a tax free account", on)
		}
		if r.ValueAfterTax != r.TotalValue {
			t.Fatalf("%s: after tax %v differs from total %v", on, r.ValueAfterTax, r.TotalValue)
		}
	}

	// The feed pays dividends, the account holds ETFs, so some income
	// must have accrued.
	var dividends float64
	for _, r := range l.Rows() {
		dividends += r.Dividends
	}
	if dividends <= 0 {
		t.Errorf("total dividend income = %v, want > 0", dividends)
	}
	if got := l.Row(l.Len() - 1).PctChange; math.IsNaN(got) {
		t.Error("last row pct change is NaN")
	}
}

func TestAccountRunTaxableRealizedReconciliation(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	a := testAccountConfig()
	a.AccountType = "inv"
	a.TaxableTransactions = true
	acc := mustRun(t, a, m)
	l := acc.Ledger()

	var sum float64
	for _, r := range l.Rows() {
		sum += r.TaxDividend + r.TaxGain
	}
	last := l.Row(l.Len() - 1)
	if !almost(last.TaxRealized, sum, 1e-6) {
		t.Errorf("realized tax = %v, want sum of daily taxes %v", last.TaxRealized, sum)
	}
	if !almost(last.TaxTotal, last.TaxAccrued+last.TaxRealized, 1e-9) {
		t.Errorf("tax total = %v, want accrued %v + realized %v",
			last.TaxTotal, last.TaxAccrued, last.TaxRealized)
	}
}

func TestAccountRunDeferredTax(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	a := testAccountConfig()
	a.AccountType = "rsp"
	a.TaxableWithdrawal = true
	acc := mustRun(t, a, m)

	for on, r := range acc.Ledger().Rows() {
		if !almost(r.TaxAccrued, r.TotalValue*a.TaxRate, 1e-9) {
			t.Fatalf("%s: accrued tax = %v, want %v", on, r.TaxAccrued, r.TotalValue*a.TaxRate)
		}
		if !almost(r.ValueAfterTax, r.TotalValue-r.TaxTotal, 1e-9) {
			t.Fatalf("%s: after tax %v, want total %v less tax %v", on, r.ValueAfterTax, r.TotalValue, r.TaxTotal)
		}
	}
}

func TestDividendsMatchHoldings(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	acc := mustRun(t, testAccountConfig(), m)
	l := acc.Ledger()

	// Without a DRIP the units stay constant between events, so the daily
	// dividend income must equal the day's distribution on the ETF
	// holdings. Mutual fund distributions are accounted by the sweep, not
	// by the income columns. Event rows keep the income computed before
	// their trade and are skipped.
	for i, on := range l.days {
		r := l.Row(i)
		if r.Rebalanced {
			continue
		}
		var want float64
		for s, sec := range l.universe {
			if sec.Fund() != ETF {
				continue
			}
			want += m.Dividend(s, on) * r.Positions[s].Units
		}
		if !almost(r.Dividends, want, 1e-6) {
			t.Fatalf("%s: dividends = %v, want %v", on, r.Dividends, want)
		}
	}
}

func TestDripGrowsHoldings(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	a := testAccountConfig()
	a.DRIP = true
	// Wide bands so the opening trade is the only event and every later
	// unit comes from reinvested distributions.
	a.Bands = Bands{
		Cash:        Band{Min: -0.1, RebalanceMin: 0, Target: 0, RebalanceMax: 0, Max: 0.2},
		FixedIncome: Band{Min: 0.1, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.9},
		Equity:      Band{Min: 0.1, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.9},
	}
	acc := mustRun(t, a, m)
	l := acc.Ledger()

	first, last := l.Row(0), l.Row(l.Len()-1)
	for _, ticker := range []string{"XBB", "XIC"} {
		i := l.Universe().Index(ticker)
		if last.Positions[i].Units <= first.Positions[i].Units {
			t.Errorf("%s units did not grow under DRIP: %v -> %v",
				ticker, first.Positions[i].Units, last.Positions[i].Units)
		}
	}
	// Reinvested income never lands in cash.
	if !almost(last.Cash, first.Cash, 1e-6) {
		t.Errorf("cash drifted under DRIP: %v -> %v", first.Cash, last.Cash)
	}
}

func TestMutualFundSweepRoutesDividends(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	a := testAccountConfig()
	a.MutualFunds = true
	a.Bands = Bands{
		Cash:        Band{Min: -0.1, RebalanceMin: 0, Target: 0, RebalanceMax: 0, Max: 0.2},
		FixedIncome: Band{Min: 0.1, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.9},
		Equity:      Band{Min: 0.1, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.9},
	}
	acc := mustRun(t, a, m)
	l := acc.Ledger()

	last := l.Row(l.Len() - 1)
	for _, ticker := range []string{"TD_Bond", "TD_CDN_Equity"} {
		i := l.Universe().Index(ticker)
		if last.Positions[i].Units <= 0 {
			t.Errorf("%s units = %v, want swept purchases", ticker, last.Positions[i].Units)
		}
	}
}

// sweepLedger builds a short ledger whose event row holds 100 TD_Bond units
// and nothing else, over a flat-NAV market paying a single $1/unit TD_Bond
// distribution. It isolates the sweep's handling of mutual fund income.
func sweepLedger(t *testing.T, a AccountConfig) (*Ledger, *Market) {
	t.Helper()
	m := NewMarket(DefaultUniverse())
	for on := date.New(2002, 1, 2); !on.After(date.New(2002, 1, 8)); on = on.Add(1) {
		if !on.IsBusinessDay() {
			continue
		}
		for _, q := range []struct {
			ticker string
			nav    float64
		}{{"XBB", 20}, {"XIC", 30}, {"TD_Bond", 10}, {"TD_CDN_Equity", 15}} {
			if err := m.AddPrice(q.ticker, on, q.nav); err != nil {
				t.Fatalf("AddPrice: %v", err)
			}
		}
	}
	if err := m.AddDividend("TD_Bond", date.New(2002, 1, 4), 1.0); err != nil {
		t.Fatalf("AddDividend: %v", err)
	}

	l, err := NewLedger(&a, m)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	first := l.Row(0)
	i := l.Universe().Index("TD_Bond")
	first.Positions[i] = Position{Units: 100, ACB: 10, Value: 1000}
	return l, m
}

func TestSweepPaysMutualFundDistributionOnce(t *testing.T) {
	a := testAccountConfig()
	a.StartDate = date.New(2002, 1, 2)
	a.EndDate = date.New(2002, 1, 8)
	a.Deposits = nil
	a.MutualFunds = true

	l, m := sweepLedger(t, a)
	propagate(l, &a, a.Bands, m, 0)

	// A $100 distribution on $1,000 of holdings must grow the account by
	// exactly $100: once to cash, no unit purchases, no income accrual.
	last := l.Row(l.Len() - 1)
	i := l.Universe().Index("TD_Bond")
	if got, want := last.Positions[i].Units, 100.0; !almost(got, want, 1e-9) {
		t.Errorf("TD_Bond units = %v, want %v", got, want)
	}
	if got, want := last.Cash, 100.0; !almost(got, want, 1e-9) {
		t.Errorf("cash = %v, want %v", got, want)
	}
	if got, want := last.TotalValue, 1100.0; !almost(got, want, 1e-9) {
		t.Errorf("total value = %v, want %v", got, want)
	}
	if got := last.Dividends; got != 0 {
		t.Errorf("dividend income = %v, want 0 without ETF holdings", got)
	}
}

func TestSweepTaxesMutualFundDistribution(t *testing.T) {
	a := testAccountConfig()
	a.StartDate = date.New(2002, 1, 2)
	a.EndDate = date.New(2002, 1, 8)
	a.Deposits = nil
	a.MutualFunds = true
	a.TaxableTransactions = true

	l, m := sweepLedger(t, a)
	propagate(l, &a, a.Bands, m, 0)

	// Fixed income distributions settle at the marginal rate on their way
	// to cash.
	wantTax := 100 * a.TaxRate
	last := l.Row(l.Len() - 1)
	if got, want := last.Cash, 100-wantTax; !almost(got, want, 1e-9) {
		t.Errorf("cash = %v, want %v", got, want)
	}
	payDay := l.RowOn(date.New(2002, 1, 4))
	if got := payDay.TaxDividend; !almost(got, wantTax, 1e-9) {
		t.Errorf("dividend tax = %v, want %v", got, wantTax)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2003, 12, 31))
	a := testAccountConfig()
	a.TaxableTransactions = true
	acc := mustRun(t, a, m)
	l := acc.Ledger()

	before := *l.Row(l.Len() - 1)
	finalize(l, &a, m)
	after := *l.Row(l.Len() - 1)

	if before.TaxTotal != after.TaxTotal || before.ValueAfterTax != after.ValueAfterTax ||
		before.ValueAfterTaxNorm != after.ValueAfterTaxNorm {
		t.Errorf("finalize is not idempotent: %+v != %+v", before, after)
	}
}

func TestAccountCheckpointsQuarterly(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2002, 12, 31))
	a := testAccountConfig()
	a.EndDate = date.New(2002, 12, 31)
	acc, err := NewAccount(a, m)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}

	got := acc.checkpoints(date.Quarterly)
	want := []date.Date{
		date.New(2002, 3, 29),
		date.New(2002, 6, 28),
		date.New(2002, 9, 30),
		date.New(2002, 12, 31),
	}
	if len(got) != len(want) {
		t.Fatalf("checkpoints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("checkpoint %d = %s, want %s", i, got[i], want[i])
		}
	}
}
