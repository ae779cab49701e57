package cmd

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/etnz/finassist/date"
	"github.com/etnz/finassist/renderer"
	"github.com/google/subcommands"
)

type transactionsCmd struct {
	from, to string
	json     bool
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the transactions of an account" }
func (*transactionsCmd) Usage() string {
	return `fina transactions [-from <date> -to <date>] [-json] <account>

  Lists the transactions of the account in chronological order, optionally
  only those between two dates, both included.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day listed (YYYY-MM-DD), ignored without -to")
	f.StringVar(&c.to, "to", "", "last day listed (YYYY-MM-DD), ignored without -from")
	f.BoolVar(&c.json, "json", false, "print transactions as JSON")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	txs, err := svc.Transactions(ctx, f.Arg(0), c.from, c.to)
	if err != nil {
		return report(err)
	}
	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(txs); err != nil {
			return report(err)
		}
		return subcommands.ExitSuccess
	}

	var r *date.Range
	if c.from != "" && c.to != "" {
		// Already validated by the service.
		rr, _ := date.ParseRange(c.from, c.to)
		r = &rr
	}
	printMarkdown(renderer.TransactionsMarkdown(txs, r, Config.Currency))
	return subcommands.ExitSuccess
}
