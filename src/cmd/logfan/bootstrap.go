// FILE: src/cmd/logfan/bootstrap.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/service"
	"github.com/3BougsMedia/logger/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// application holds the running facade and its optional metrics server
type application struct {
	log           *service.Logger
	metricsServer *http.Server
}

// bootstrap creates the logger facade and starts the metrics endpoint
func bootstrap(ctx context.Context, cfg *config.Config) (*application, error) {
	var opts []service.Option

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, service.WithRegisterer(reg))
	}

	l, err := service.New(&cfg.Logger, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &application{log: l}

	if reg != nil {
		app.metricsServer = startMetricsServer(cfg.Metrics.Addr, reg)
	}

	logger.Info("msg", "LogFan started",
		"version", version.Short(),
		"sinks", len(l.GetStats()),
		"metrics", cfg.Metrics.Enabled)

	return app, nil
}

func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("msg", "Metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("msg", "Metrics server failed", "addr", addr, "error", err)
		}
	}()

	return srv
}

// shutdown flushes and closes every sink, then stops the metrics server
func (a *application) shutdown(ctx context.Context) error {
	err := a.log.Close(ctx)

	if a.metricsServer != nil {
		if serr := a.metricsServer.Shutdown(ctx); serr != nil {
			err = errors.Join(err, fmt.Errorf("metrics server: %w", serr))
		}
	}
	return err
}

// initializeLogger sets up the operational logger from configuration
func initializeLogger(cfg *config.Config) error {
	logCfg, err := operationalLogConfig(cfg)
	if err != nil {
		return err
	}

	logger = log.NewLogger()
	if err := logger.ApplyConfig(logCfg); err != nil {
		return fmt.Errorf("failed to apply log config: %w", err)
	}
	return logger.Start()
}

// operationalLogConfig maps the logging section onto the log package config.
// File output stays disabled unless the mode asks for it.
func operationalLogConfig(cfg *config.Config) (*log.Config, error) {
	logCfg := log.DefaultConfig()
	logCfg.EnableConsole = false
	logCfg.DisableFile = true

	if cfg.Quiet {
		logCfg.Level = 255
		return logCfg, nil
	}

	level, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logCfg.Level = level

	switch cfg.Logging.Output {
	case "none":
	case "stdout", "stderr":
		logCfg.EnableConsole = true
		logCfg.ConsoleTarget = cfg.Logging.Output
	case "file":
		configureFileLogging(logCfg, cfg)
	case "both":
		logCfg.EnableConsole = true
		logCfg.ConsoleTarget = "stderr"
		configureFileLogging(logCfg, cfg)
	default:
		return nil, fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}
	return logCfg, nil
}

// configureFileLogging sets up file-based operational logging
func configureFileLogging(logCfg *log.Config, cfg *config.Config) {
	logCfg.DisableFile = false
	if f := cfg.Logging.File; f != nil {
		logCfg.Directory = f.Directory
		logCfg.Name = f.Name
		logCfg.MaxSizeKB = f.MaxSizeMB * 1000
		logCfg.MaxTotalSizeKB = f.MaxTotalSizeMB * 1000
		if f.RetentionHours > 0 {
			logCfg.RetentionPeriodHrs = f.RetentionHours
		}
	}
}
