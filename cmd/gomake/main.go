package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gomake/internal/cli"
)

// main is the entrypoint for the gomake binary.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
