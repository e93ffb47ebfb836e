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

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	accountFile string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "simulate one account and report its performance" }
func (*runCmd) Usage() string {
	return `rbsim run -a <account.yaml>

  Runs the rebalancing simulation defined in the account file against the
  market feed and prints the account report.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.accountFile, "a", "account.yaml", "Account definition file (YAML)")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var def accountDef
	if err := decodeDef(c.accountFile, &def); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading account definition %q: %v\n", c.accountFile, err)
		return subcommands.ExitUsageError
	}
	cfg, err := def.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in account definition %q: %v\n", c.accountFile, err)
		return subcommands.ExitUsageError
	}

	market, err := LoadMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market feed: %v\n", err)
		return subcommands.ExitFailure
	}

	acc, err := rebalance.NewAccount(cfg, market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing account %q: %v\n", cfg.Name, err)
		return subcommands.ExitFailure
	}

	log.Printf("running %q from %s to %s", cfg.Name, acc.Ledger().StartDate(), acc.Ledger().EndDate())
	if err := acc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running account %q: %v\n", cfg.Name, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AccountMarkdown(acc))
	return subcommands.ExitSuccess
}
