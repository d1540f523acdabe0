// FILE: src/cmd/logfan/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

const shutdownTimeout = 10 * time.Second

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(*quiet)

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Arguments after "--" are config overrides, e.g. --logger.remote.enabled=true
	cfg, err := config.Load(*configFile, flag.Args())
	if err != nil {
		FatalError(1, "Failed to load config: %v\n", err)
	}
	applyFlagOverrides(cfg)

	if *dumpConfig != "" {
		if err := cfg.SaveToFile(*dumpConfig); err != nil {
			FatalError(1, "Failed to save config: %v\n", err)
		}
		fmt.Printf("Config written to %s\n", *dumpConfig)
		os.Exit(0)
	}

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "LogFan starting",
		"version", version.String(),
		"config_file", cfg.ConfigFile,
		"service", cfg.Logger.Service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	app, err := bootstrap(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap", "error", err)
		FatalError(1, "Failed to bootstrap: %v\n", err)
	}

	level, _ := core.ParseLevel(*shipLevel)
	lines := make(chan string, 256)
	sourceErr := make(chan error, 1)
	go func() {
		if *followPath != "" {
			sourceErr <- followLines(ctx, *followPath, lines)
		} else {
			sourceErr <- readLines(ctx, os.Stdin, lines)
		}
	}()

	shipped := 0
	done := make(chan struct{})
	go func() {
		shipped = ship(ctx, app.log, lines, level)
		close(done)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received", "signal", sig)
		cancel()
	case <-done:
		if err := <-sourceErr; err != nil {
			logger.Error("msg", "Input failed", "error", err)
			Error("Input failed: %v\n", err)
		}
	}
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.shutdown(shutdownCtx); err != nil {
		logger.Error("msg", "Shutdown completed with errors", "error", err)
		Error("Shutdown: %v\n", err)
	}

	logger.Info("msg", "Shutdown complete", "lines_shipped", shipped)
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort, the logger itself is gone
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
