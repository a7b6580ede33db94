package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, newRootCmd()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		os.Exit(exitCode(err))
	}
}
