package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/rebalance"
)

// AccountMarkdown renders the full report of a finished account run: the
// policy the account ran under, the ending balances with their tax
// breakdown, trading activity, and the performance metrics of the after-tax
// return series.
func AccountMarkdown(acc *rebalance.Account) string {
	cfg := acc.Config()
	l := acc.Ledger()
	last := l.Row(l.Len() - 1)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.Name)
	if cfg.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", cfg.Description)
	}

	fmt.Fprintln(&b, "| Policy | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Owner | %s |\n", cfg.Owner)
	fmt.Fprintf(&b, "| Account Type | %s |\n", cfg.AccountType)
	fmt.Fprintf(&b, "| Tax Treatment | %s |\n", cfg.Treatment())
	fmt.Fprintf(&b, "| Range | %s to %s |\n", l.StartDate(), l.EndDate())
	fmt.Fprintf(&b, "| Rebalance Period | %s |\n", cfg.RebalancePeriod)
	fmt.Fprintf(&b, "| Trade Fee | %s |\n", cad(cfg.TradeFee))
	fmt.Fprintf(&b, "| Minimum Trade | %s |\n", cad(cfg.MinimumTradeDollar))
	fmt.Fprintf(&b, "| Dividends | %s |\n", dividendPolicy(cfg))
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "## Ending Balance on %s\n\n", last.Date)
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Market Value | %s |\n", cad(last.MarketValue))
	fmt.Fprintf(&b, "| Cash | %s |\n", cad(last.Cash))
	fmt.Fprintf(&b, "| Total Value | %s |\n", cad(last.TotalValue))
	fmt.Fprintf(&b, "| Tax Realized | %s |\n", cad(last.TaxRealized))
	fmt.Fprintf(&b, "| Tax Accrued | %s |\n", cad(last.TaxAccrued))
	fmt.Fprintf(&b, "| Value After Tax | %s |\n", cad(last.ValueAfterTax))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Holdings")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Ticker | Class | Units | ACB | Value | Allocation |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for i, sec := range l.Universe() {
		p := last.Positions[i]
		fmt.Fprintf(&b, "| %s | %s | %.4f | %s | %s | %s |\n",
			sec.Ticker(), sec.Class(), p.Units, cad(p.ACB), cad(p.Value),
			pct(p.Value/last.TotalValue))
	}
	fmt.Fprintf(&b, "| cash | cash | | | %s | %s |\n", cad(last.Cash), pct(last.CashAllocation))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Activity")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Rebalance Events | %d |\n", rebalanceCount(l))
	fmt.Fprintf(&b, "| Purchases | %s |\n", cad(last.Purchases))
	fmt.Fprintf(&b, "| Sales | %s |\n", cad(last.Sales))
	fmt.Fprintf(&b, "| Trading Costs | %s |\n", cad(last.Costs))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Performance")
	fmt.Fprintln(&b)
	m := rebalance.Summarize(l.Returns())
	renderMetricsTable(&b, []string{"After Tax"}, [][]string{metricsColumn(m)})

	return b.String()
}

func dividendPolicy(cfg rebalance.AccountConfig) string {
	switch {
	case cfg.DRIP:
		return "reinvested (DRIP)"
	case cfg.MutualFunds:
		return "swept into mutual funds"
	default:
		return "paid to cash"
	}
}

func rebalanceCount(l *rebalance.Ledger) int {
	var n int
	for _, r := range l.Rows() {
		if r.Rebalanced {
			n++
		}
	}
	return n
}
