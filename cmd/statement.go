package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/assistant"
	"github.com/etnz/finassist/date"
	"github.com/etnz/finassist/renderer"
	"github.com/google/subcommands"
)

type statementCmd struct {
	print bool
	on    string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "email an account its statement of the last 30 days" }
func (*statementCmd) Usage() string {
	return `fina statement [-print] [-d <date>] <account>

  Emails the customer the transactions of the last 30 days and the current
  balance. With -print the email is printed instead of sent.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.print, "print", false, "print the email instead of sending it")
	f.StringVar(&c.on, "d", "", "day the statement ends (YYYY-MM-DD), today if empty")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	var opts []assistant.Option
	if c.on != "" {
		on, err := date.Parse(c.on)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts = append(opts, assistant.WithClock(func() date.Date { return on }))
	}
	if c.print {
		opts = append(opts, assistant.WithSender(finassist.SenderFunc(func(_ context.Context, to, subject, body string) error {
			_, err := fmt.Fprintf(stdout, "To: %s\nSubject: %s\n\n%s\n", to, subject, body)
			return err
		})))
	}

	log := newLogger(false)
	svc, close, err := newService(ctx, log, opts...)
	if err != nil {
		return report(err)
	}
	defer close()

	d, err := svc.EmailStatement(ctx, f.Arg(0))
	if err != nil {
		return report(err)
	}
	if !c.print {
		fmt.Fprintf(stdout, "%s: %q sent to %s with %d transactions from %s to %s\n",
			d.Message, renderer.StatementSubject, d.To, d.Count, d.Period.From, d.Period.To)
	}
	return subcommands.ExitSuccess
}
