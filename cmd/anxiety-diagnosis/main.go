// Package main provides the entry point for the anxiety diagnosis command-line tool.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/anxiety-fuzzy-diagnosis/internal/cli"
	"github.com/anxiety-fuzzy-diagnosis/internal/config"
	"github.com/anxiety-fuzzy-diagnosis/internal/logging"
	"github.com/anxiety-fuzzy-diagnosis/internal/service"
)

func main() {
	var opts []config.Option
	if path := os.Getenv("ANXIETY_CONFIG_FILE"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	// Load configuration
	configManager, err := config.NewManager(opts...)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger, err := logging.NewLogger(*configManager.GetLoggingConfig())
	if err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}

	diagnosis, err := service.NewDiagnosisService(logger, configManager.GetConfig())
	if err != nil {
		closeLog(logger)
		log.Fatalf("Failed to build diagnosis service: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping")
		cancel()
	}()

	app := cli.NewCLI(diagnosis, configManager, logger, os.Stdin, os.Stdout)
	runErr := app.Run(ctx, os.Args[1:])
	if runErr != nil {
		logger.WithError(runErr).Error("Command failed")
	}

	// os.Exit skips deferred calls
	cancel()
	closeLog(logger)
	if runErr != nil {
		os.Exit(1)
	}
}

func closeLog(logger *logrus.Logger) {
	if err := logging.Close(logger); err != nil {
		log.Printf("Failed to close log output: %v", err)
	}
}
