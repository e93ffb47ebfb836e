// Package renderer builds the markdown reports printed by the CLI.
package renderer

import (
	"fmt"
	"io"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/etnz/rebalance"
)

// cad formats a dollar amount in the reporting currency.
func cad(v float64) string {
	return money.New(int64(math.Round(v*100)), money.CAD).Display()
}

// pct formats an allocation or a return as a signed percentage.
func pct(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}

// ratio formats a dimensionless metric (Sharpe, Calmar, tail ratio).
func ratio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// metricsLabels fixes the row order of the performance tables. metricsColumn
// emits values in the same order.
var metricsLabels = []string{
	"Cumulative Return",
	"Annual Return",
	"CAGR",
	"Sharpe Ratio",
	"Annual Volatility",
	"Max Drawdown",
	"Calmar Ratio",
	"Sortino Ratio",
	"Tail Ratio",
}

func metricsColumn(m rebalance.Metrics) []string {
	return []string{
		pct(m.CumulativeReturn),
		pct(m.AnnualReturn),
		pct(m.CAGR),
		ratio(m.Sharpe),
		pct(m.AnnualVolatility),
		pct(m.MaxDrawdown),
		ratio(m.Calmar),
		ratio(m.Sortino),
		ratio(m.TailRatio),
	}
}

func renderMetricsTable(w io.Writer, headers []string, columns [][]string) {
	fmt.Fprintf(w, "| Metric |")
	for _, h := range headers {
		fmt.Fprintf(w, " %s |", h)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "|:---|")
	for range headers {
		fmt.Fprintf(w, "---:|")
	}
	fmt.Fprintln(w)
	for i, label := range metricsLabels {
		fmt.Fprintf(w, "| %s |", label)
		for _, col := range columns {
			fmt.Fprintf(w, " %s |", col[i])
		}
		fmt.Fprintln(w)
	}
}
