package rebalance

import (
	"iter"
	"math"
	"slices"

	"github.com/etnz/rebalance/date"
)

// Position is one security's holding within a ledger row.
type Position struct {
	Units float64
	ACB   float64 // adjusted cost base per unit
	Value float64 // Units times NAV per share that day
}

// Row is the state of the account on one trading day.
//
// A row is an explicit value type: the trade engine and the dividend
// processor mutate it in place and it is written back into the ledger as a
// whole, so every field they expect is guaranteed to exist at compile time.
type Row struct {
	Date    date.Date
	Cash    float64
	Deposit float64 // deposit or withdrawal applied that day, signed

	Positions []Position // parallel to the ledger's universe

	MarketValue float64
	TotalValue  float64 // MarketValue + Cash

	CashAllocation        float64
	FixedIncomeAllocation float64
	EquityAllocation      float64

	// Cumulative counters since the start of the run.
	Purchases float64
	Sales     float64
	Costs     float64

	// Amounts of the day.
	Dividends   float64
	TaxDividend float64
	TaxGain     float64

	// Rebalanced marks days on which a trade occurred.
	Rebalanced bool

	// Filled by Finalize.
	TaxRealized       float64
	TaxAccrued        float64
	TaxTotal          float64
	ValueAfterTax     float64
	TotalValueNorm    float64
	ValueAfterTaxNorm float64
	PctChange         float64 // NaN on the first row
	LogReturn         float64 // NaN on the first row
}

// ClassValue returns the market value of one asset class in the row.
func (r *Row) ClassValue(u Universe, class AssetClass) float64 {
	if class == Cash {
		return r.Cash
	}
	var v float64
	for i, sec := range u {
		if sec.Class() == class {
			v += r.Positions[i].Value
		}
	}
	return v
}

// Allocation returns the allocation percentage of one asset class.
func (r *Row) Allocation(class AssetClass) float64 {
	switch class {
	case Cash:
		return r.CashAllocation
	case FixedIncome:
		return r.FixedIncomeAllocation
	case Equity:
		return r.EquityAllocation
	default:
		panic("unknown asset class")
	}
}

// ClassTotal returns the dollar amount of one asset class, from the
// allocation percentage. It is what the portfolio scheduler aggregates.
func (r *Row) ClassTotal(class AssetClass) float64 {
	return r.Allocation(class) * r.TotalValue
}

// resetAllocations recomputes the three allocation percentages from the
// row's position values and cash against its total value. Position values
// must be fresh (Units times the day's NAV). A zero total leaves the
// allocations untouched.
func (r *Row) resetAllocations(u Universe) {
	if r.TotalValue == 0 {
		return
	}
	var fi, eq float64
	for i, sec := range u {
		switch sec.Class() {
		case FixedIncome:
			fi += r.Positions[i].Value
		case Equity:
			eq += r.Positions[i].Value
		}
	}
	r.EquityAllocation = eq / r.TotalValue
	r.FixedIncomeAllocation = fi / r.TotalValue
	r.CashAllocation = r.Cash / r.TotalValue
}

// Ledger is the ordered-by-date sequence of rows of one account run. It is
// constructed once at initialization and mutated forward-only: a rebalance
// event rewrites a suffix of the sequence, never rows before it.
type Ledger struct {
	universe  Universe
	days      []date.Date
	rows      []Row
	finalized bool
}

// Universe returns the security universe of the ledger.
func (l *Ledger) Universe() Universe { return l.universe }

// Len returns the number of trading days in the ledger.
func (l *Ledger) Len() int { return len(l.rows) }

// Row returns a pointer to the i-th row.
func (l *Ledger) Row(i int) *Row { return &l.rows[i] }

// StartDate returns the first trading day of the ledger.
func (l *Ledger) StartDate() date.Date { return l.days[0] }

// EndDate returns the last trading day of the ledger.
func (l *Ledger) EndDate() date.Date { return l.days[len(l.days)-1] }

// Finalized reports whether tax settlement has been applied.
func (l *Ledger) Finalized() bool { return l.finalized }

// index returns the position of a trading day in the ledger, or -1.
func (l *Ledger) index(on date.Date) int {
	i, found := slices.BinarySearchFunc(l.days, on, func(d, t date.Date) int { return d.Compare(t) })
	if !found {
		return -1
	}
	return i
}

// RowOn returns the row of a trading day, or nil when the day is not in the ledger.
func (l *Ledger) RowOn(on date.Date) *Row {
	i := l.index(on)
	if i < 0 {
		return nil
	}
	return &l.rows[i]
}

// Returns returns the daily after-tax return series of a finalized ledger.
// The first element is NaN.
func (l *Ledger) Returns() []float64 {
	returns := make([]float64, len(l.rows))
	for i := range l.rows {
		returns[i] = l.rows[i].PctChange
	}
	return returns
}

// Rows returns an iterator over all rows in chronological order.
func (l *Ledger) Rows() iter.Seq2[date.Date, *Row] {
	return func(yield func(date.Date, *Row) bool) {
		for i := range l.rows {
			if !yield(l.days[i], &l.rows[i]) {
				return
			}
		}
	}
}

// NewLedger builds the initial ledger for an account: one row per trading
// day in the (snapped-forward) date range, all deposits placed into cash,
// total and market value equal to cash, and the cash allocation at 1.0.
//
// The account configuration start date is never mutated; the ledger's own
// StartDate reflects the snap.
func NewLedger(a *AccountConfig, market *Market) (*Ledger, error) {
	start, ok := market.SnapForward(a.StartDate)
	if !ok || start.After(a.EndDate) {
		return nil, coverageErrorf("no trading day between %s and %s", a.StartDate, a.EndDate)
	}
	if err := market.Covers(date.Range{From: start, To: a.EndDate}); err != nil {
		return nil, err
	}
	days := market.TradingDays(date.Range{From: start, To: a.EndDate})
	if len(days) == 0 {
		return nil, coverageErrorf("no trading day between %s and %s", start, a.EndDate)
	}

	universe := market.Universe()
	l := &Ledger{universe: universe, days: days}
	l.rows = make([]Row, len(days))
	for i, on := range days {
		l.rows[i] = Row{
			Date:      on,
			Positions: make([]Position, len(universe)),
			PctChange: math.NaN(),
			LogReturn: math.NaN(),
		}
	}

	// A deposit on a holiday lands on the first trading day after it.
	for on, amount := range a.Deposits {
		day, ok := market.SnapForward(on)
		if !ok {
			return nil, coverageErrorf("no trading day on or after deposit date %s", on)
		}
		i := l.index(day)
		if i < 0 {
			return nil, coverageErrorf("deposit date %s is outside the ledger range", day)
		}
		l.rows[i].Deposit += amount
	}

	// All funds start as cash.
	var cash float64
	for i := range l.rows {
		cash += l.rows[i].Deposit
		r := &l.rows[i]
		r.Cash = cash
		r.TotalValue = cash
		r.MarketValue = cash
		r.CashAllocation = 1.0
	}
	return l, nil
}
