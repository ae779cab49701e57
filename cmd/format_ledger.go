package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finassist"
	"github.com/google/subcommands"
)

type formatLedgerCmd struct {
	output string
}

func (*formatLedgerCmd) Name() string     { return "format-ledger" }
func (*formatLedgerCmd) Synopsis() string { return "formats the ledger file into a canonical form" }
func (*formatLedgerCmd) Usage() string {
	return `fina [-ledger <file>] format-ledger [-o <file>|-]

  Formats the ledger file into a canonical form: customers first, then
  transactions in chronological order. Without ledger file, the demo ledger
  is printed.
`
}

func (c *formatLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, '-' for stdout, the ledger file itself if empty")
}

func (c *formatLedgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// 1. Read the ledger
	ledger, err := decodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	output := c.output
	if output == "" {
		output = Config.Ledger
	}
	if output == "" || output == "-" {
		if err := finassist.EncodeLedger(stdout, ledger); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	// 2. Write the ledger back
	if err := encodeLedger(output, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Ledger file '%s' has been formatted.\n", output)
	return subcommands.ExitSuccess
}

// encodeLedger writes the ledger into a file.
func encodeLedger(file string, ledger *finassist.Ledger) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", file, err)
	}
	if err := finassist.EncodeLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

