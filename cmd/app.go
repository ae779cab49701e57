// Package cmd implements the fina command line: it serves the financial
// assistant API and runs its use cases from the terminal.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/agent"
	"github.com/etnz/finassist/assistant"
	"github.com/etnz/finassist/cache"
	"github.com/etnz/finassist/mail"
	"github.com/etnz/finassist/mongodb"
	"github.com/etnz/finassist/postgres"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Commands are all the subcommands of fina.
var Commands = []subcommands.Command{
	&serveCmd{},
	&verifyCmd{},
	&askCmd{},
	&transactionsCmd{},
	&summaryCmd{},
	&statementCmd{},
	&seedCmd{},
	&formatLedgerCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		group := "account"
		switch cmd.Name() {
		case "serve":
			group = "server"
		case "seed", "format-ledger":
			group = "ledger"
		}
		c.Register(cmd, group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// stdout is where commands write their results.
var stdout io.Writer = os.Stdout

// newLogger returns the logger of the application, verbose is the level for
// long running commands.
func newLogger(verbose bool) *zap.Logger {
	var log *zap.Logger
	var err error
	if Config.Debug {
		log, err = zap.NewDevelopment()
	} else {
		c := zap.NewProductionConfig()
		if !verbose {
			c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		log, err = c.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return zap.NewNop()
	}
	flushWarnings(log)
	return log
}

// decodeLedger reads the configured ledger file, or the demo ledger when
// none is configured.
func decodeLedger() (*finassist.Ledger, error) {
	if Config.Ledger == "" {
		return finassist.DemoLedger(), nil
	}
	f, err := os.Open(Config.Ledger)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return finassist.DecodeLedger(f)
}

// openStore opens the configured store. close releases it.
func openStore(ctx context.Context, log *zap.Logger) (store finassist.Store, close func(), err error) {
	close = func() {}
	switch Config.Store {
	case "", "memory":
		l, err := decodeLedger()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot decode ledger %q: %w", Config.Ledger, err)
		}
		store = l
	case "postgres":
		s, err := postgres.Open(ctx, Config.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, close = s, s.Close
	case "mongodb":
		s, err := mongodb.Open(ctx, Config.MongoURI, Config.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		store, close = s, func() { s.Close(context.Background()) }
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want memory, postgres or mongodb", Config.Store)
	}

	if Config.RedisAddr != "" {
		client := cache.NewClient(Config.RedisAddr, Config.RedisPass)
		inner := close
		store = cache.New(store, client, Config.CacheTTL, log)
		close = func() { client.Close(); inner() }
	}
	log.Debug("store opened", zap.String("store", Config.Store))
	return store, close, nil
}

// newService creates the assistant on the configured store and
// collaborators. Collaborators that are not configured are left out, the
// operations needing them fail.
func newService(ctx context.Context, log *zap.Logger, opts ...assistant.Option) (*assistant.Service, func(), error) {
	store, close, err := openStore(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	all := []assistant.Option{assistant.WithLogger(log), assistant.WithTimeout(Config.Timeout)}
	if Config.GeminiKey != "" {
		g, err := agent.NewGemini(ctx, Config.GeminiKey, Config.GeminiModel)
		if err != nil {
			close()
			return nil, nil, err
		}
		all = append(all, assistant.WithAnswerer(g))
	}
	if Config.SMTPHost != "" {
		all = append(all, assistant.WithSender(mail.New(Config.SMTPHost, Config.SMTPPort, Config.SMTPUser, Config.SMTPPass, Config.MailFrom)))
	}
	return assistant.New(store, append(all, opts...)...), close, nil
}

// report prints err and returns the matching exit status.
func report(err error) subcommands.ExitStatus {
	var e *finassist.Error
	if errors.As(err, &e) {
		fmt.Fprintf(os.Stderr, "Error (%s): %s\n", e.Kind, e.Msg)
		if Config.Debug && e.Err != nil {
			fmt.Fprintf(os.Stderr, "  cause: %v\n", e.Err)
		}
		if e.Kind == finassist.InvalidInput {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
