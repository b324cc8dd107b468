// goforza - a terminal client for the Forza 4 match server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"goforza/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "goforza: %v\n", err)
		os.Exit(1)
	}
}
