package cmd

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/finassist/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the financial assistant HTTP API" }
func (*serveCmd) Usage() string {
	return `fina [-port <port>] [-store <store>] serve

  Serves the JSON API until interrupted.
`
}

func (*serveCmd) SetFlags(_ *flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(true)
	defer log.Sync()

	svc, close, err := newService(ctx, log)
	if err != nil {
		log.Error("cannot start", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer close()

	if err := server.ListenAndServe(ctx, net.JoinHostPort("", Config.Port), server.New(svc, log), log); err != nil {
		log.Error("server failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
