package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/eventgraph/internal/cli"
)

// main is the entrypoint for the eventgraph CLI.
func main() {
	os.Exit(run())
}

// run executes the root command and maps its error to an exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return cli.GetExitCode(err)
}
