package cmd

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/etnz/finassist/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	json bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the total of an account's transactions per type" }
func (*summaryCmd) Usage() string {
	return `fina summary [-json] <account>

  Displays, for each type of transaction, the sum of the amounts of the
  account's transactions of that type.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the summary as JSON")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	log := newLogger(false)
	svc, close, err := newService(ctx, log)
	if err != nil {
		return report(err)
	}
	defer close()

	s, err := svc.Summary(ctx, f.Arg(0))
	if err != nil {
		return report(err)
	}
	if c.json {
		if err := json.NewEncoder(stdout).Encode(s); err != nil {
			return report(err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummaryMarkdown(s, Config.Currency))
	return subcommands.ExitSuccess
}
