package rebalance

import (
	"math"
	"testing"

	"github.com/etnz/rebalance/date"
)

// testMarket builds a deterministic synthetic feed over business days in
// [from, to]: bonds drift up slowly, equities faster, and both ETFs pay a
// dividend on the last business day of each quarter. Mutual funds mirror the
// ETF paths at different price levels and distribute nothing.
func testMarket(tb testing.TB, from, to date.Date) *Market {
	tb.Helper()
	m := NewMarket(DefaultUniverse())

	var days []date.Date
	for d := from; !d.After(to); d = d.Add(1) {
		if d.IsBusinessDay() {
			days = append(days, d)
		}
	}

	for n, on := range days {
		bond := math.Pow(1.0001, float64(n))
		stock := math.Pow(1.0008, float64(n))
		for ticker, nav := range map[string]float64{
			"XBB":           20 * bond,
			"XIC":           30 * stock,
			"TD_Bond":       10 * bond,
			"TD_CDN_Equity": 15 * stock,
		} {
			if err := m.AddPrice(ticker, on, nav); err != nil {
				tb.Fatalf("AddPrice(%s, %s): %v", ticker, on, err)
			}
		}

		// Quarter-end distribution on the ETF legs.
		lastOfQuarter := n == len(days)-1 || days[n+1].EndOf(date.Quarterly) != on.EndOf(date.Quarterly)
		if lastOfQuarter {
			if err := m.AddDividend("XBB", on, 0.25); err != nil {
				tb.Fatalf("AddDividend(XBB, %s): %v", on, err)
			}
			if err := m.AddDividend("XIC", on, 0.30); err != nil {
				tb.Fatalf("AddDividend(XIC, %s): %v", on, err)
			}
		}
	}
	return m
}

// testAccountConfig returns a tax-free account depositing 100k on the first
// feed day, rebalanced quarterly on the shared 50/50 policy.
func testAccountConfig() AccountConfig {
	return AccountConfig{
		Name:               "Test Account",
		Owner:              "p1",
		AccountType:        "tfsa",
		StartDate:          date.New(2002, 1, 1),
		EndDate:            date.New(2003, 12, 31),
		Deposits:           map[date.Date]float64{date.New(2002, 1, 1): 100_000},
		TaxRate:            0.4341,
		TaxDividend:        0.2952,
		TaxGains:           0.2170,
		RebalancePeriod:    date.Quarterly,
		TradeFee:           7.50,
		MinimumTradeDollar: 100,
		Bands:              defaultBands(),
	}
}

// almost reports whether two floats agree within tolerance.
func almost(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}
