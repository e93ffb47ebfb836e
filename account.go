package rebalance

import (
	"github.com/etnz/rebalance/date"
)

// Account runs the rebalancing simulation of a single investment account
// over its configured date range.
type Account struct {
	cfg    AccountConfig
	market *Market
	ledger *Ledger
}

// NewAccount validates the configuration and builds the initial ledger, all
// funds in cash. Run drives the simulation to the end date.
func NewAccount(cfg AccountConfig, market *Market) (*Account, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ledger, err := NewLedger(&cfg, market)
	if err != nil {
		return nil, err
	}
	return &Account{cfg: cfg, market: market, ledger: ledger}, nil
}

// Config returns the account configuration.
func (acc *Account) Config() AccountConfig { return acc.cfg }

// Ledger returns the account ledger.
func (acc *Account) Ledger() *Ledger { return acc.ledger }

// navsOn returns the day's NAV per share of every security, universe order.
func (acc *Account) navsOn(on date.Date) []float64 {
	u := acc.ledger.universe
	navs := make([]float64, len(u))
	for i := range u {
		navs[i] = acc.market.NAV(i, on)
	}
	return navs
}

// rebalanceOn runs one rebalance event on the given trading day under the
// given allocation policy, then propagates the outcome to the end of the
// ledger.
func (acc *Account) rebalanceOn(on date.Date, b Bands) {
	i := acc.ledger.index(on)
	if i < 0 {
		panic("rebalance date " + on.String() + " is not a trading day of the ledger")
	}
	r := acc.ledger.Row(i)
	rebalanceRow(r, &acc.cfg, b, acc.ledger.universe, acc.navsOn(on))
	propagate(acc.ledger, &acc.cfg, b, acc.market, i)
}

// Retarget rebalances the account on a specific day toward a one-shot
// allocation policy. The portfolio scheduler uses it to impose its own
// targets on member accounts.
func (acc *Account) Retarget(on date.Date, b Bands) {
	acc.rebalanceOn(on, b)
}

// Start runs the opening rebalance event on the first trading day, moving
// the initial deposit from cash into the given allocation, without engaging
// the scheduler.
func (acc *Account) Start(b Bands) {
	acc.rebalanceOn(acc.ledger.StartDate(), b)
}

// checkpoints returns the trading days on which drift is inspected: every
// trading day for daily cadences, otherwise the last trading day of each
// calendar period in the ledger range.
func (acc *Account) checkpoints(period date.Period) []date.Date {
	if period.IsDaily() {
		return acc.ledger.days
	}
	var days []date.Date
	for i, d := range acc.ledger.days {
		last := i == len(acc.ledger.days)-1
		if last || d.EndOf(period) != acc.ledger.days[i+1].EndOf(period) {
			days = append(days, d)
		}
	}
	return days
}

// breached reports whether the row violates the allocation policy in a way
// large enough to act on: an allocation past its outer limit whose
// correction back to the rebalance level clears the minimum trade size.
func breached(r *Row, b Bands, minTrade float64) bool {
	for _, class := range []AssetClass{Cash, FixedIncome, Equity} {
		alloc := r.Allocation(class)
		band := b.Class(class)
		if alloc > band.Max && (alloc-band.RebalanceMax)*r.TotalValue > minTrade {
			return true
		}
		if alloc < band.Min && (alloc-band.RebalanceMin)*r.TotalValue < -minTrade {
			return true
		}
	}
	return false
}

// nextBreach returns the first checkpoint strictly after the given day whose
// row breaches the policy. Searching strictly forward guarantees the
// scheduler terminates even when an event is skipped by the minimum trade
// size.
func (acc *Account) nextBreach(after date.Date, checkpoints []date.Date, b Bands) (date.Date, bool) {
	for _, d := range checkpoints {
		if !d.After(after) {
			continue
		}
		if breached(acc.ledger.RowOn(d), b, acc.cfg.MinimumTradeDollar) {
			return d, true
		}
	}
	return date.Date{}, false
}

// Run drives the simulation: an opening rebalance on the first trading day,
// then a rebalance at every breached checkpoint, and a final tax settlement
// once no checkpoint breaches anymore.
func (acc *Account) Run() error {
	b := acc.cfg.Bands
	checkpoints := acc.checkpoints(acc.cfg.RebalancePeriod)

	reDate := acc.ledger.StartDate()
	for {
		acc.rebalanceOn(reDate, b)
		next, ok := acc.nextBreach(reDate, checkpoints, b)
		if !ok {
			finalize(acc.ledger, &acc.cfg, acc.market)
			return nil
		}
		reDate = next
	}
}
