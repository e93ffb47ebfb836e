package rebalance

import (
	"fmt"
	"math"

	"github.com/etnz/rebalance/date"
)

// feedRange is the date envelope of the historical feed the simulator was
// built against. Configurations outside this envelope are rejected eagerly.
var feedRange = date.Range{
	From: date.MustParse("2002-01-01"),
	To:   date.MustParse("2018-12-31"),
}

// allocEpsilon is the tolerance under which an allocation value is considered
// exactly zero. Rounding noise below it would otherwise trigger false trades.
const allocEpsilon = 1e-6

// TaxTreatment is the tax regime of an account.
type TaxTreatment int

const (
	// TaxFree accounts (TFSA-like) pay no tax at all.
	TaxFree TaxTreatment = iota
	// TaxDeferred accounts (RRSP-like) accrue tax on the full value,
	// simulating withdrawal at the marginal rate.
	TaxDeferred
	// Taxable accounts pay tax on dividends and realized capital gains, and
	// accrue tax on unrealized gains.
	Taxable
)

func (t TaxTreatment) String() string {
	switch t {
	case TaxFree:
		return "tax_free"
	case TaxDeferred:
		return "tax_deferred"
	case Taxable:
		return "taxable"
	default:
		panic(fmt.Sprintf("unknown tax treatment %d", t))
	}
}

// Band is the allocation policy for one asset class. A trade is triggered
// when the allocation drifts beyond Min or Max, and corrects back to
// RebalanceMin or RebalanceMax respectively.
type Band struct {
	Min          float64
	RebalanceMin float64
	Target       float64
	RebalanceMax float64
	Max          float64
}

// validate checks the band ordering invariant.
func (b Band) validate(class AssetClass) error {
	if !(b.Min <= b.RebalanceMin && b.RebalanceMin <= b.Target &&
		b.Target <= b.RebalanceMax && b.RebalanceMax <= b.Max) {
		return configErrorf(class.String(),
			"want minimum <= rebalance minimum <= target <= rebalance maximum <= maximum, got %v <= %v <= %v <= %v <= %v",
			b.Min, b.RebalanceMin, b.Target, b.RebalanceMax, b.Max)
	}
	return nil
}

// Pinned returns a band collapsed on a single allocation value. It is used by
// the portfolio scheduler as a one-shot rebalance directive.
func Pinned(value float64) Band {
	return Band{Min: value, RebalanceMin: value, Target: value, RebalanceMax: value, Max: value}
}

// Bands holds one allocation band per asset class.
type Bands struct {
	Cash        Band
	FixedIncome Band
	Equity      Band
}

// Class returns the band of the given asset class.
func (b Bands) Class(c AssetClass) Band {
	switch c {
	case Cash:
		return b.Cash
	case FixedIncome:
		return b.FixedIncome
	case Equity:
		return b.Equity
	default:
		panic(fmt.Sprintf("unknown asset class %d", c))
	}
}

// PinnedBands returns an allocation policy collapsed on one value per class,
// the one-shot directive form used to drive a single rebalance step.
func PinnedBands(cash, fixedIncome, equity float64) Bands {
	return Bands{Cash: Pinned(cash), FixedIncome: Pinned(fixedIncome), Equity: Pinned(equity)}
}

// validate checks band ordering per class and that targets sum to 1.
func (b Bands) validate() error {
	if err := b.Cash.validate(Cash); err != nil {
		return err
	}
	if err := b.FixedIncome.validate(FixedIncome); err != nil {
		return err
	}
	if err := b.Equity.validate(Equity); err != nil {
		return err
	}
	sum := b.Cash.Target + b.FixedIncome.Target + b.Equity.Target
	if math.Abs(sum-1.0) > 1e-9 {
		return configErrorf("targets",
			"target allocations for cash, fixed income, and equity must total 1.0, got %v", sum)
	}
	return nil
}

// AccountConfig is the parameter set of one account simulation run. It is
// supplied by the caller, validated once, and read-only for the whole run.
type AccountConfig struct {
	// Identity.
	Name        string
	Description string
	Owner       string
	AccountType string

	// Date range of the simulation, inclusive. The start date is snapped
	// forward to the first trading day when it falls on a holiday.
	StartDate date.Date
	EndDate   date.Date

	// Deposits maps dates to signed amounts, negative for withdrawals.
	Deposits map[date.Date]float64

	// Tax flags. At most one may be set:
	// neither - tax free, TaxableWithdrawal - tax deferred,
	// TaxableTransactions - taxable.
	TaxableTransactions bool
	TaxableWithdrawal   bool

	// Marginal tax rates, all in [0, 1].
	TaxRate     float64 // interest income and deferred withdrawal
	TaxDividend float64 // dividend income of equity-type securities
	TaxGains    float64 // realized capital gains

	// Rebalance cadence.
	RebalancePeriod date.Period

	// Fees. The flat fee applies to ETF legs only; a trade whose dollar
	// size is below MinimumTradeDollar is skipped entirely.
	TradeFee           float64
	MinimumTradeDollar float64

	// DRIP reinvests dividends as units of the paying security. When it is
	// off, MutualFunds sweeps dividend cash into the mutual-fund legs.
	DRIP        bool
	MutualFunds bool

	Bands Bands
}

// Treatment derives the tax regime from the two tax flags.
func (a *AccountConfig) Treatment() TaxTreatment {
	switch {
	case a.TaxableTransactions:
		return Taxable
	case a.TaxableWithdrawal:
		return TaxDeferred
	default:
		return TaxFree
	}
}

// Validate checks the configuration and returns a ConfigurationError naming
// the violated constraint and the offending values.
func (a *AccountConfig) Validate() error {
	if a.EndDate.Before(a.StartDate) {
		return configErrorf("date range", "start date %s is after end date %s", a.StartDate, a.EndDate)
	}
	if !feedRange.Contains(a.StartDate) {
		return configErrorf("start_date", "%s must be on or between %s and %s", a.StartDate, feedRange.From, feedRange.To)
	}
	if !feedRange.Contains(a.EndDate) {
		return configErrorf("end_date", "%s must be on or between %s and %s", a.EndDate, feedRange.From, feedRange.To)
	}
	for on := range a.Deposits {
		if on.Before(a.StartDate) || on.After(a.EndDate) {
			return configErrorf("deposits", "deposit on %s must be made between %s and %s", on, a.StartDate, a.EndDate)
		}
	}
	if a.TaxableTransactions && a.TaxableWithdrawal {
		return configErrorf("tax flags", "there are no legal accounts where both transactions and withdrawals are taxed")
	}
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"tax_rate", a.TaxRate},
		{"tax_dividend", a.TaxDividend},
		{"tax_gains", a.TaxGains},
	} {
		if rate.value < 0 || rate.value > 1 {
			return configErrorf(rate.name, "rate must be between 0 and 1, got %v", rate.value)
		}
	}
	return a.Bands.validate()
}
