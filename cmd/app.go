// Package cmd implements the CLI application to run rebalancing simulations.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/rebalance"
	"github.com/google/subcommands"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&runCmd{},
	&portfolioCmd{},
	&templateCmd{},
	&feedCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var feedFile = flag.String("feed", "feed.jsonl", "Path to the market data feed (JSONL format)")

// LoadMarket reads the market feed from the app feed file.
func LoadMarket() (*rebalance.Market, error) {
	f, err := os.Open(*feedFile)
	if err != nil {
		return nil, fmt.Errorf("opening feed %q: %w", *feedFile, err)
	}
	defer f.Close()
	return rebalance.ImportMarket(f)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when the renderer is unavailable.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
