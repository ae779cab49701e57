package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finassist/mongodb"
	"github.com/etnz/finassist/postgres"
	"github.com/google/subcommands"
)

type seedCmd struct {
	migrate bool
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "load the ledger into the database store" }
func (*seedCmd) Usage() string {
	return `fina -store postgres|mongodb [-ledger <file>] seed [-migrate]

  Replaces the content of the database with the ledger file, or with the demo
  ledger if no file is given.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.migrate, "migrate", true, "create the tables first (postgres only)")
}

func (c *seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := decodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", Config.Ledger, err)
		return subcommands.ExitFailure
	}

	switch Config.Store {
	case "postgres":
		s, oerr := postgres.Open(ctx, Config.DatabaseURL)
		if oerr != nil {
			return report(oerr)
		}
		defer s.Close()
		if c.migrate {
			if err := s.Migrate(ctx); err != nil {
				return report(err)
			}
		}
		err = s.Seed(ctx, ledger)
	case "mongodb":
		s, oerr := mongodb.Open(ctx, Config.MongoURI, Config.MongoDB)
		if oerr != nil {
			return report(oerr)
		}
		defer s.Close(context.Background())
		err = s.Seed(ctx, ledger)
	default:
		fmt.Fprintf(os.Stderr, "Error: store %q cannot be seeded, use -store postgres or -store mongodb\n", Config.Store)
		return subcommands.ExitUsageError
	}
	if err != nil {
		return report(err)
	}
	fmt.Fprintf(stdout, "Seeded %s with %d transactions\n", Config.Store, ledger.Len())
	return subcommands.ExitSuccess
}
