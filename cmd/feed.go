package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// feedCmd holds the flags for the 'feed' subcommand.
type feedCmd struct{}

func (*feedCmd) Name() string     { return "feed" }
func (*feedCmd) Synopsis() string { return "inspect the market data feed" }
func (*feedCmd) Usage() string {
	return `rbsim feed

  Prints the securities and the date coverage of the market feed.
`
}

func (c *feedCmd) SetFlags(f *flag.FlagSet) {}

func (c *feedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	market, err := LoadMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market feed: %v\n", err)
		return subcommands.ExitFailure
	}

	rng, ok := market.Coverage()
	if !ok {
		fmt.Fprintf(os.Stderr, "The feed %q has no complete trading day.\n", *feedFile)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Feed %s\n\n", *feedFile)
	fmt.Fprintf(&b, "%d trading days from %s to %s.\n\n", len(market.TradingDays(rng)), rng.From, rng.To)
	fmt.Fprintln(&b, "| Ticker | Class | Fund | First NAV | Last NAV |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|")
	for i, sec := range market.Universe() {
		fmt.Fprintf(&b, "| %s | %s | %s | %.4f | %.4f |\n",
			sec.Ticker(), sec.Class(), sec.Fund(),
			market.NAV(i, rng.From), market.NAV(i, rng.To))
	}

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
