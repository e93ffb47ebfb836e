package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
)

// portfolioCmd holds the flags for the 'portfolio' subcommand.
type portfolioCmd struct {
	portfolioFile string
}

func (*portfolioCmd) Name() string { return "portfolio" }
func (*portfolioCmd) Synopsis() string {
	return "simulate a pooled multi-account portfolio and report it"
}
func (*portfolioCmd) Usage() string {
	return `rbsim portfolio -p <portfolio.yaml>

  Runs the pooled rebalancing simulation defined in the portfolio file: all
  member accounts are coordinated toward one allocation policy, then rerun
  standalone under the same policy for comparison.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolioFile, "p", "portfolio.yaml", "Portfolio definition file (YAML)")
}

func (c *portfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var def portfolioDef
	if err := decodeDef(c.portfolioFile, &def); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading portfolio definition %q: %v\n", c.portfolioFile, err)
		return subcommands.ExitUsageError
	}
	cfg, err := def.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in portfolio definition %q: %v\n", c.portfolioFile, err)
		return subcommands.ExitUsageError
	}

	market, err := LoadMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market feed: %v\n", err)
		return subcommands.ExitFailure
	}

	p, err := rebalance.NewPortfolio(cfg, market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	log.Printf("running portfolio of %d accounts from %s to %s", len(cfg.Accounts), cfg.Range.From, cfg.Range.To)
	res, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.PortfolioMarkdown(cfg, res))
	return subcommands.ExitSuccess
}
