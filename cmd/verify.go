package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type verifyCmd struct{}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "check an account number and show its customer" }
func (*verifyCmd) Usage() string {
	return `fina verify <account>

  Looks the account up and prints its holder and balance.
`
}

func (*verifyCmd) SetFlags(_ *flag.FlagSet) {}

func (*verifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	c, err := svc.Verify(ctx, f.Arg(0))
	if err != nil {
		return report(err)
	}
	fmt.Fprintf(stdout, "Account: %s\nName: %s\nEmail: %s\nBalance: $%s\n", c.AccountNumber, c.Name, c.Email, c.Balance)
	return subcommands.ExitSuccess
}
