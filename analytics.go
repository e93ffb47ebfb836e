package rebalance

import (
	"math"
	"sort"
)

// tradingDaysPerYear annualizes daily return series.
const tradingDaysPerYear = 252

// Metrics summarizes a daily return series with the usual performance and
// risk ratios, all computed at a zero risk-free rate.
type Metrics struct {
	CumulativeReturn float64
	AnnualReturn     float64
	CAGR             float64
	Sharpe           float64
	AnnualVolatility float64
	MaxDrawdown      float64
	Calmar           float64
	Sortino          float64
	TailRatio        float64
}

// Summarize computes the metrics of a daily return series. Leading NaN
// entries, the first day of a simulation has no return, are ignored in the
// moment statistics but still count toward the series length when
// annualizing.
func Summarize(returns []float64) Metrics {
	var m Metrics
	m.CumulativeReturn = cumulativeReturn(returns)

	years := float64(len(returns)) / tradingDaysPerYear
	m.AnnualReturn = math.Pow(1+m.CumulativeReturn, 1/years) - 1
	m.CAGR = m.AnnualReturn

	mean, std := nanMeanStd(returns)
	m.Sharpe = mean / std * math.Sqrt(tradingDaysPerYear)
	m.AnnualVolatility = std * math.Sqrt(tradingDaysPerYear)

	m.MaxDrawdown = maxDrawdown(returns)
	m.Calmar = m.AnnualReturn / math.Abs(m.MaxDrawdown)

	m.Sortino = mean * tradingDaysPerYear / downsideRisk(returns)
	m.TailRatio = math.Abs(percentile(returns, 95)) / math.Abs(percentile(returns, 5))
	return m
}

// cumulativeReturn compounds a daily return series into the total return.
func cumulativeReturn(returns []float64) float64 {
	cum := 1.0
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		cum *= 1 + r
	}
	return cum - 1
}

// nanMeanStd returns the mean and the sample standard deviation of the
// non-NaN entries.
func nanMeanStd(returns []float64) (mean, std float64) {
	var sum float64
	var n int
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean = sum / float64(n)
	var ss float64
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		ss += (r - mean) * (r - mean)
	}
	if n < 2 {
		return mean, math.NaN()
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

// maxDrawdown returns the deepest peak-to-trough loss of the compounded
// series, as a negative fraction.
func maxDrawdown(returns []float64) float64 {
	cum, peak := 1.0, 1.0
	worst := 0.0
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// downsideRisk is the annualized second moment of the negative returns.
func downsideRisk(returns []float64) float64 {
	var ss float64
	var n int
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		if r < 0 {
			ss += r * r
		}
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(ss/float64(n)) * math.Sqrt(tradingDaysPerYear)
}

// percentile returns the p-th percentile of the non-NaN entries, linearly
// interpolated between closest ranks.
func percentile(returns []float64, p float64) float64 {
	var valid []float64
	for _, r := range returns {
		if !math.IsNaN(r) {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)
	rank := p / 100 * float64(len(valid)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return valid[lo]
	}
	return valid[lo] + (rank-float64(lo))*(valid[hi]-valid[lo])
}
