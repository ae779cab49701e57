package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/etnz/finassist/agent"
	"github.com/google/subcommands"
)

type askCmd struct {
	interactive bool
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "ask the assistant a question about an account" }
func (*askCmd) Usage() string {
	return `fina ask [-i] <account> [<question>...]

  Answers the question using the balance and latest transactions of the
  account. With -i, or without question, starts an interactive session.
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "keep asking questions until 'bye'")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	account := f.Arg(0)
	query := strings.Join(f.Args()[1:], " ")

	log := newLogger(false)
	svc, close, err := newService(ctx, log)
	if err != nil {
		return report(err)
	}
	defer close()

	if c.interactive || query == "" {
		// Check the account first, there is no point in asking otherwise.
		if _, err := svc.Verify(ctx, account); err != nil {
			return report(err)
		}
		ask := func(ctx context.Context, q string) (string, error) { return svc.Ask(ctx, account, q) }
		if err := agent.NewSession(stdout, os.Stdin, ask).Run(ctx, query); err != nil {
			return report(err)
		}
		return subcommands.ExitSuccess
	}

	answer, err := svc.Ask(ctx, account, query)
	if err != nil {
		return report(err)
	}
	printMarkdown(answer)
	return subcommands.ExitSuccess
}
