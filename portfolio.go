package rebalance

import (
	"math"

	"github.com/etnz/rebalance/date"
)

// PortfolioConfig drives a portfolio of accounts rebalanced as one pool of
// assets. Accounts are listed by priority: the first account is filled with
// equity first, the last one ends up holding the cash remainder.
type PortfolioConfig struct {
	Range           date.Range
	RebalancePeriod date.Period
	Bands           Bands
	Accounts        []AccountConfig
}

// Validate checks the portfolio policy and every member account.
func (p *PortfolioConfig) Validate() error {
	if !p.Range.IsValid() {
		return configErrorf("range", "start %s is after end %s", p.Range.From, p.Range.To)
	}
	if err := p.Bands.validate(); err != nil {
		return err
	}
	if len(p.Accounts) == 0 {
		return configErrorf("accounts", "a portfolio needs at least one account")
	}
	for i := range p.Accounts {
		if err := p.Accounts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AllocationPoint is one account's after-tax dollars in one asset class on
// one day, the long-format record the allocation report plots.
type AllocationPoint struct {
	Date        date.Date
	Account     string
	Owner       string
	AccountType string
	Asset       AssetClass
	Value       float64
}

// PortfolioResult is the outcome of a portfolio run: the daily after-tax
// returns of the pooled portfolio, the same accounts rerun standalone under
// the portfolio policy for comparison, and the allocation history.
type PortfolioResult struct {
	Days             []date.Date
	PortfolioReturns []float64
	AccountReturns   []float64
	Accounts         []*Account
	Allocations      []AllocationPoint
}

// classMix is a dollar amount split across the three asset classes.
type classMix struct {
	cash, fixedIncome, equity float64
}

func (c classMix) sum() float64 { return c.cash + c.fixedIncome + c.equity }

// Portfolio rebalances several accounts against a single allocation policy,
// treating their combined holdings as one pool.
type Portfolio struct {
	cfg      PortfolioConfig
	market   *Market
	accounts []*Account
}

// NewPortfolio validates the configuration and initializes the member
// account ledgers over the portfolio date range.
func NewPortfolio(cfg PortfolioConfig, market *Market) (*Portfolio, error) {
	for i := range cfg.Accounts {
		cfg.Accounts[i].StartDate = cfg.Range.From
		cfg.Accounts[i].EndDate = cfg.Range.To
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Portfolio{cfg: cfg, market: market}
	for i := range cfg.Accounts {
		acc, err := NewAccount(cfg.Accounts[i], market)
		if err != nil {
			return nil, err
		}
		p.accounts = append(p.accounts, acc)
	}
	return p, nil
}

// allocate fills the portfolio's dollar targets across the accounts in
// priority order: each account takes as much equity as its balance covers,
// then fixed income, and the last dollars stay as cash.
func allocate(invested []classMix, targets classMix) []classMix {
	fills := make([]classMix, len(invested))
	for i := range invested {
		balance := invested[i].sum()
		if balance >= targets.equity {
			fills[i].equity = targets.equity
			balance -= targets.equity
			targets.equity = 0
			if balance >= targets.fixedIncome {
				fills[i].fixedIncome = targets.fixedIncome
				balance -= targets.fixedIncome
				targets.fixedIncome = 0
				fills[i].cash = balance
				targets.cash -= balance
			} else {
				fills[i].fixedIncome = balance
				targets.fixedIncome -= balance
			}
		} else {
			fills[i].equity = balance
			targets.equity -= balance
		}
	}
	return fills
}

// mixOn reads one account's class totals on a given day.
func mixOn(acc *Account, on date.Date) classMix {
	r := acc.ledger.RowOn(on)
	return classMix{
		cash:        r.ClassTotal(Cash),
		fixedIncome: r.ClassTotal(FixedIncome),
		equity:      r.ClassTotal(Equity),
	}
}

// allocationsOn sums the class totals of all accounts on one day and
// returns the pooled allocation percentages.
func (p *Portfolio) allocationsOn(i int) (cash, fixedIncome, equity float64) {
	var mix classMix
	for _, acc := range p.accounts {
		r := acc.ledger.Row(i)
		mix.cash += r.ClassTotal(Cash)
		mix.fixedIncome += r.ClassTotal(FixedIncome)
		mix.equity += r.ClassTotal(Equity)
	}
	total := mix.sum()
	if total == 0 {
		return 0, 0, 0
	}
	return mix.cash / total, mix.fixedIncome / total, mix.equity / total
}

// breachedOn reports whether the pooled allocation of the day sits outside
// the portfolio's outer limits. The portfolio inspects drift without a
// minimum trade gate, member accounts apply their own when they trade.
func (p *Portfolio) breachedOn(i int) bool {
	cash, fi, eq := p.allocationsOn(i)
	b := p.cfg.Bands
	return cash > b.Cash.Max || cash < b.Cash.Min ||
		fi > b.FixedIncome.Max || fi < b.FixedIncome.Min ||
		eq > b.Equity.Max || eq < b.Equity.Min
}

// Run drives the portfolio to the end date and returns the pooled results.
func (p *Portfolio) Run() (*PortfolioResult, error) {
	lead := p.accounts[0].ledger
	checkpoints := p.accounts[0].checkpoints(p.cfg.RebalancePeriod)

	// The pool starts as the initial cash deposits.
	invested := make([]classMix, len(p.accounts))
	for i, acc := range p.accounts {
		invested[i] = classMix{cash: acc.ledger.Row(0).Cash}
	}

	reDate := lead.StartDate()
	started := false
	for {
		var total float64
		for i := range invested {
			total += invested[i].sum()
		}
		targets := classMix{
			cash:        total * p.cfg.Bands.Cash.Target,
			fixedIncome: total * p.cfg.Bands.FixedIncome.Target,
			equity:      total * p.cfg.Bands.Equity.Target,
		}
		fills := allocate(invested, targets)

		// Impose each account's share as a one-shot pinned policy.
		for i, acc := range p.accounts {
			balance := fills[i].sum()
			if balance == 0 {
				continue
			}
			pinned := PinnedBands(
				fills[i].cash/balance,
				fills[i].fixedIncome/balance,
				fills[i].equity/balance,
			)
			if !started {
				acc.Start(pinned)
			} else {
				acc.Retarget(reDate, pinned)
			}
		}
		started = true

		next, ok := p.nextBreach(reDate, checkpoints)
		if !ok {
			return p.finish()
		}
		reDate = next
		for i, acc := range p.accounts {
			invested[i] = mixOn(acc, reDate)
		}
	}
}

// nextBreach returns the first checkpoint strictly after the given day on
// which the pooled allocation breaches the policy.
func (p *Portfolio) nextBreach(after date.Date, checkpoints []date.Date) (date.Date, bool) {
	lead := p.accounts[0].ledger
	for _, d := range checkpoints {
		if !d.After(after) {
			continue
		}
		if p.breachedOn(lead.index(d)) {
			return d, true
		}
	}
	return date.Date{}, false
}

// finish settles taxes in every account and assembles the result: the
// pooled after-tax return series, the standalone comparison reruns, and the
// long-format allocation history.
func (p *Portfolio) finish() (*PortfolioResult, error) {
	lead := p.accounts[0].ledger
	days := lead.days

	res := &PortfolioResult{
		Days:     days,
		Accounts: p.accounts,
	}

	afterTax := make([]float64, len(days))
	for _, acc := range p.accounts {
		finalize(acc.ledger, &acc.cfg, p.market)
		for i := range days {
			afterTax[i] += acc.ledger.Row(i).ValueAfterTax
		}
		for i, on := range days {
			r := acc.ledger.Row(i)
			for _, class := range []AssetClass{Cash, FixedIncome, Equity} {
				res.Allocations = append(res.Allocations, AllocationPoint{
					Date:        on,
					Account:     acc.cfg.Name,
					Owner:       acc.cfg.Owner,
					AccountType: acc.cfg.AccountType,
					Asset:       class,
					Value:       r.ValueAfterTax * r.Allocation(class),
				})
			}
		}
	}
	res.PortfolioReturns = pctChange(afterTax)

	// Rerun each account standalone under the portfolio policy, the
	// benchmark the pooled strategy is compared against.
	standalone := make([]float64, len(days))
	for i := range p.cfg.Accounts {
		cfg := p.cfg.Accounts[i]
		cfg.RebalancePeriod = p.cfg.RebalancePeriod
		cfg.Bands = p.cfg.Bands
		acc, err := NewAccount(cfg, p.market)
		if err != nil {
			return nil, err
		}
		if err := acc.Run(); err != nil {
			return nil, err
		}
		for j := range days {
			standalone[j] += acc.ledger.Row(j).ValueAfterTax
		}
	}
	res.AccountReturns = pctChange(standalone)

	return res, nil
}

// pctChange returns the day-over-day relative change of a series, NaN on
// the first day.
func pctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}
