package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roman-kulish/bladerf/cmd/bladerf/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)

		cancel()
		os.Exit(1)
	}
}
