package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tcpsweep/api"
	"tcpsweep/config"
	"tcpsweep/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
