package rebalance

import "github.com/etnz/rebalance/date"

// defaultBands is the 50/50 policy shared by the account templates: no
// target cash, a five point drift corridor around each class, and an over
// funded cash band that sweeps every dividend back into the market.
func defaultBands() Bands {
	return Bands{
		Cash:        Band{Min: -0.005, RebalanceMin: 0, Target: 0, RebalanceMax: 0, Max: 0.025},
		FixedIncome: Band{Min: 0.45, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.55},
		Equity:      Band{Min: 0.45, RebalanceMin: 0.5, Target: 0.5, RebalanceMax: 0.5, Max: 0.55},
	}
}

// templateBase fills the fields every template shares.
func templateBase(name, description string) AccountConfig {
	return AccountConfig{
		Name:            name,
		Description:     description,
		Owner:           "p1",
		StartDate:       date.New(2002, 1, 1),
		EndDate:         date.New(2011, 12, 31),
		TaxRate:         0.4341,
		TaxDividend:     0.2952,
		TaxGains:        0.2170,
		RebalancePeriod: date.Monthly,
		TradeFee:        7.50,
		Bands:           defaultBands(),
	}
}

// InvestmentTemplate returns a sample taxable investment account holding a
// hundred thousand dollars from the start date.
func InvestmentTemplate() AccountConfig {
	a := templateBase("Investment Account", "Sample taxable investment account.")
	a.AccountType = "inv"
	a.TaxableTransactions = true
	a.Deposits = map[date.Date]float64{date.New(2002, 1, 1): 100_000}
	return a
}

// RetirementTemplate returns a sample tax-deferred retirement account. The
// deposit is grossed up to pre-tax dollars so the after-tax comparison with
// the other account types starts from the same hundred thousand.
func RetirementTemplate() AccountConfig {
	a := templateBase("Registered Retirement Savings Plan", "Sample RRSP account.")
	a.AccountType = "rsp"
	a.TaxableWithdrawal = true
	a.Deposits = map[date.Date]float64{date.New(2002, 1, 1): 100_000 / (1 - a.TaxRate)}
	return a
}

// TaxFreeTemplate returns a sample tax-free savings account.
func TaxFreeTemplate() AccountConfig {
	a := templateBase("Tax Free Savings Account", "Sample TFSA investment account.")
	a.AccountType = "tfsa"
	a.Deposits = map[date.Date]float64{date.New(2002, 1, 1): 100_000}
	return a
}

// Template returns the account template of the given kind: "inv", "rsp" or
// "tfsa".
func Template(kind string) (AccountConfig, error) {
	switch kind {
	case "inv":
		return InvestmentTemplate(), nil
	case "rsp":
		return RetirementTemplate(), nil
	case "tfsa":
		return TaxFreeTemplate(), nil
	default:
		return AccountConfig{}, configErrorf("template", "unknown account template %q, want inv, rsp or tfsa", kind)
	}
}
