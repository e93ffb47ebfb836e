package cmd

import (
	"fmt"
	"os"

	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"gopkg.in/yaml.v3"
)

// bandDef is the YAML form of an allocation band.
type bandDef struct {
	Min          float64 `yaml:"min"`
	RebalanceMin float64 `yaml:"rebalance_min"`
	Target       float64 `yaml:"target"`
	RebalanceMax float64 `yaml:"rebalance_max"`
	Max          float64 `yaml:"max"`
}

func (b bandDef) band() rebalance.Band {
	return rebalance.Band{
		Min:          b.Min,
		RebalanceMin: b.RebalanceMin,
		Target:       b.Target,
		RebalanceMax: b.RebalanceMax,
		Max:          b.Max,
	}
}

func newBandDef(b rebalance.Band) bandDef {
	return bandDef{
		Min:          b.Min,
		RebalanceMin: b.RebalanceMin,
		Target:       b.Target,
		RebalanceMax: b.RebalanceMax,
		Max:          b.Max,
	}
}

// bandsDef is the YAML form of the three per-class bands.
type bandsDef struct {
	Cash        bandDef `yaml:"cash"`
	FixedIncome bandDef `yaml:"fixed_income"`
	Equity      bandDef `yaml:"equity"`
}

func (b bandsDef) bands() rebalance.Bands {
	return rebalance.Bands{
		Cash:        b.Cash.band(),
		FixedIncome: b.FixedIncome.band(),
		Equity:      b.Equity.band(),
	}
}

func newBandsDef(b rebalance.Bands) bandsDef {
	return bandsDef{
		Cash:        newBandDef(b.Cash),
		FixedIncome: newBandDef(b.FixedIncome),
		Equity:      newBandDef(b.Equity),
	}
}

// accountDef is the YAML definition of one account run. Deposit dates are
// plain strings so that the file accepts any supported date format.
type accountDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Owner       string `yaml:"owner"`
	Type        string `yaml:"type"`

	Start date.Date `yaml:"start"`
	End   date.Date `yaml:"end"`

	Deposits map[string]float64 `yaml:"deposits,omitempty"`

	TaxableTransactions bool `yaml:"taxable_transactions,omitempty"`
	TaxableWithdrawal   bool `yaml:"taxable_withdrawal,omitempty"`

	TaxRate     float64 `yaml:"tax_rate"`
	TaxDividend float64 `yaml:"tax_dividend"`
	TaxGains    float64 `yaml:"tax_gains"`

	RebalancePeriod date.Period `yaml:"rebalance_period"`

	TradeFee     float64 `yaml:"trade_fee"`
	MinimumTrade float64 `yaml:"minimum_trade"`

	DRIP        bool `yaml:"drip,omitempty"`
	MutualFunds bool `yaml:"mutual_funds,omitempty"`

	Bands bandsDef `yaml:"bands"`
}

// config converts the definition into a validated AccountConfig.
func (d *accountDef) config() (rebalance.AccountConfig, error) {
	cfg, err := d.rawConfig()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// rawConfig converts without validating. The portfolio run overrides the
// account date range before validation, so member accounts may omit it.
func (d *accountDef) rawConfig() (rebalance.AccountConfig, error) {
	cfg := rebalance.AccountConfig{
		Name:                d.Name,
		Description:         d.Description,
		Owner:               d.Owner,
		AccountType:         d.Type,
		StartDate:           d.Start,
		EndDate:             d.End,
		TaxableTransactions: d.TaxableTransactions,
		TaxableWithdrawal:   d.TaxableWithdrawal,
		TaxRate:             d.TaxRate,
		TaxDividend:         d.TaxDividend,
		TaxGains:            d.TaxGains,
		RebalancePeriod:     d.RebalancePeriod,
		TradeFee:            d.TradeFee,
		MinimumTradeDollar:  d.MinimumTrade,
		DRIP:                d.DRIP,
		MutualFunds:         d.MutualFunds,
		Bands:               d.Bands.bands(),
	}
	if len(d.Deposits) > 0 {
		cfg.Deposits = make(map[date.Date]float64, len(d.Deposits))
		for k, v := range d.Deposits {
			on, err := date.Parse(k)
			if err != nil {
				return cfg, fmt.Errorf("deposit date %q: %w", k, err)
			}
			cfg.Deposits[on] = v
		}
	}
	return cfg, nil
}

// newAccountDef converts a config back into its YAML definition form.
func newAccountDef(cfg rebalance.AccountConfig) accountDef {
	d := accountDef{
		Name:                cfg.Name,
		Description:         cfg.Description,
		Owner:               cfg.Owner,
		Type:                cfg.AccountType,
		Start:               cfg.StartDate,
		End:                 cfg.EndDate,
		TaxableTransactions: cfg.TaxableTransactions,
		TaxableWithdrawal:   cfg.TaxableWithdrawal,
		TaxRate:             cfg.TaxRate,
		TaxDividend:         cfg.TaxDividend,
		TaxGains:            cfg.TaxGains,
		RebalancePeriod:     cfg.RebalancePeriod,
		TradeFee:            cfg.TradeFee,
		MinimumTrade:        cfg.MinimumTradeDollar,
		DRIP:                cfg.DRIP,
		MutualFunds:         cfg.MutualFunds,
		Bands:               newBandsDef(cfg.Bands),
	}
	if len(cfg.Deposits) > 0 {
		d.Deposits = make(map[string]float64, len(cfg.Deposits))
		for on, v := range cfg.Deposits {
			d.Deposits[on.String()] = v
		}
	}
	return d
}

// portfolioDef is the YAML definition of a portfolio run.
type portfolioDef struct {
	Start           date.Date    `yaml:"start"`
	End             date.Date    `yaml:"end"`
	RebalancePeriod date.Period  `yaml:"rebalance_period"`
	Bands           bandsDef     `yaml:"bands"`
	Accounts        []accountDef `yaml:"accounts"`
}

// config converts the definition into a PortfolioConfig. Validation happens
// inside NewPortfolio, after the account date ranges are pinned to the
// portfolio range.
func (d *portfolioDef) config() (rebalance.PortfolioConfig, error) {
	cfg := rebalance.PortfolioConfig{
		Range:           date.Range{From: d.Start, To: d.End},
		RebalancePeriod: d.RebalancePeriod,
		Bands:           d.Bands.bands(),
	}
	for i := range d.Accounts {
		acc, err := d.Accounts[i].rawConfig()
		if err != nil {
			return cfg, fmt.Errorf("account %q: %w", d.Accounts[i].Name, err)
		}
		cfg.Accounts = append(cfg.Accounts, acc)
	}
	return cfg, nil
}

// decodeDef reads a YAML definition file into dst.
func decodeDef(filename string, dst any) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	return dec.Decode(dst)
}
