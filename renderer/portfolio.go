package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/rebalance"
)

// PortfolioMarkdown renders the report of a portfolio run: the pooled
// performance against the same accounts rebalanced standalone, the ending
// balance per account, and the pooled ending allocation.
func PortfolioMarkdown(cfg rebalance.PortfolioConfig, res *rebalance.PortfolioResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio\n\n")

	fmt.Fprintln(&b, "| Policy | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Range | %s to %s |\n", res.Days[0], res.Days[len(res.Days)-1])
	fmt.Fprintf(&b, "| Rebalance Period | %s |\n", cfg.RebalancePeriod)
	fmt.Fprintf(&b, "| Target | %s cash, %s fixed income, %s equity |\n",
		pct(cfg.Bands.Cash.Target), pct(cfg.Bands.FixedIncome.Target), pct(cfg.Bands.Equity.Target))
	fmt.Fprintf(&b, "| Accounts | %d |\n", len(res.Accounts))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Accounts")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Account | Owner | Type | Tax Treatment | Total Value | Value After Tax |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|")
	var total, afterTax float64
	for _, acc := range res.Accounts {
		ac := acc.Config()
		l := acc.Ledger()
		last := l.Row(l.Len() - 1)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			ac.Name, ac.Owner, ac.AccountType, ac.Treatment(),
			cad(last.TotalValue), cad(last.ValueAfterTax))
		total += last.TotalValue
		afterTax += last.ValueAfterTax
	}
	fmt.Fprintf(&b, "| **Portfolio** | | | | %s | %s |\n", cad(total), cad(afterTax))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Ending Allocation")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Class | Value | Allocation |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, class := range []rebalance.AssetClass{rebalance.Cash, rebalance.FixedIncome, rebalance.Equity} {
		var v float64
		for _, acc := range res.Accounts {
			l := acc.Ledger()
			v += l.Row(l.Len() - 1).ClassTotal(class)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", class, cad(v), pct(v/total))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Performance")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Pooled rebalancing against the same accounts run standalone under the")
	fmt.Fprintln(&b, "portfolio policy.")
	fmt.Fprintln(&b)
	pooled := rebalance.Summarize(res.PortfolioReturns)
	standalone := rebalance.Summarize(res.AccountReturns)
	renderMetricsTable(&b, []string{"Pooled", "Standalone"},
		[][]string{metricsColumn(pooled), metricsColumn(standalone)})

	return b.String()
}
