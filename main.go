package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/gomeson/cli"
	"github.com/ardnew/gomeson/log"
)

func main() {
	// An interrupt cancels the run, killing any compiler probe in flight.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("gomeson failed", slog.Any("error", err))
		os.Exit(1)
	}
}
