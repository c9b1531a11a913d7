package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors when absent)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, log.FieldBackend, backendCfg.Type)
		fmt.Fprintf(os.Stderr, "Could not open storage: %v\n", err)
		return 1
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	settings, err := services.OpenSettings(ctx, result.Backend, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load settings: %v\n", err)
		return 1
	}
	ledger, err := services.OpenLedger(ctx, result.Backend,
		services.WithSummaryStore(result.Backend),
		services.WithLedgerLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load transactions: %v\n", err)
		return 1
	}

	logger.Info("Ledger opened",
		log.FieldBackend, backendCfg.Type,
		log.FieldCount, ledger.Len())

	controller := cli.NewController(ledger, settings, os.Stdin, os.Stdout, cfg.Currency,
		cli.WithLogger(logger))

	// The menu blocks on stdin, so it runs on its own goroutine and a
	// signal ends the program without waiting for the next line.
	done := make(chan error, 1)
	go func() { done <- controller.Run(ctx) }()

	code := 0
	select {
	case err := <-done:
		if err != nil {
			logger.Error("Input error", log.FieldError, err)
			code = 1
		}
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout, "\nTerminating application...")
		logger.Info("Shutdown signal received")
	}

	// Final save uses a fresh context since ctx may already be cancelled. The
	// ledger serializes it with any add still running on the menu goroutine.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ledger.Close(saveCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not save your data: %v\n", err)
		return 1
	}
	return code
}
