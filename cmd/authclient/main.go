package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/command"
	"github.com/yndnr/authclient/internal/infra/shutdown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdown.Signals...)
	code := run(ctx, os.Args, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	err := command.App().RunContext(ctx, args)
	if err == nil {
		return 0
	}
	command.PrintError(stderr, err)

	var exit cli.ExitCoder
	if errors.As(err, &exit) && exit.ExitCode() != 0 {
		return exit.ExitCode()
	}
	return 1
}
