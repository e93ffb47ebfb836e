package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rebalance"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

// templateCmd holds the flags for the 'template' subcommand.
type templateCmd struct {
	kind string
}

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "print a canonical account definition" }
func (*templateCmd) Usage() string {
	return `rbsim template [-k inv|rsp|tfsa]

  Prints a canonical account definition in YAML, ready to be edited and fed
  to 'rbsim run -a'. Kinds: inv (taxable investment), rsp (tax-deferred
  retirement), tfsa (tax-free).
`
}

func (c *templateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "k", "tfsa", "Template kind: inv, rsp or tfsa")
}

func (c *templateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := rebalance.Template(c.kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	def := newAccountDef(cfg)
	out, err := yaml.Marshal(&def)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding template: %v\n", err)
		return subcommands.ExitFailure
	}
	os.Stdout.Write(out)
	return subcommands.ExitSuccess
}
