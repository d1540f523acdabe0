// FILE: src/internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

// validateConfig is the centralized validator for the process configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}
	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := ValidateLogger(&cfg.Logger); err != nil {
		return fmt.Errorf("logger config: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := lconfig.NonEmpty(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics: addr required when enabled")
		}
	}

	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"file": true, "stdout": true, "stderr": true,
		"both": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	if _, err := core.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if cfg.File == nil {
			return fmt.Errorf("file output requires [logging.file]")
		}
		if err := lconfig.NonEmpty(cfg.File.Directory); err != nil {
			return fmt.Errorf("logging.file: missing directory")
		}
		if err := lconfig.NonEmpty(cfg.File.Name); err != nil {
			return fmt.Errorf("logging.file: missing name")
		}
	}

	return nil
}

// ValidateLogger checks a logger configuration and fills unset remote tuning
// values with defaults.
func ValidateLogger(cfg *LoggerConfig) error {
	if cfg == nil {
		return fmt.Errorf("logger config is nil")
	}

	if err := lconfig.NonEmpty(cfg.Service); err != nil {
		return fmt.Errorf("service name is required")
	}

	if cfg.Console.Enabled {
		if err := validateConsoleSink(&cfg.Console); err != nil {
			return err
		}
	}

	if cfg.File.Enabled {
		if err := validateFileSink(&cfg.File); err != nil {
			return err
		}
	}

	if cfg.Remote.Enabled {
		if err := validatePushSink(&cfg.Remote); err != nil {
			return err
		}
	}

	return nil
}

func validateConsoleSink(opts *ConsoleSinkOptions) error {
	switch opts.Color {
	case "":
		opts.Color = "auto"
	case "auto", "always", "never":
	default:
		return fmt.Errorf("console: invalid color mode: %s (valid: auto, always, never)", opts.Color)
	}

	if err := validateFilters("console", opts.Filters); err != nil {
		return err
	}
	return validateMinLevel("console", opts.MinLevel)
}

func validateFileSink(opts *FileSinkOptions) error {
	if err := lconfig.NonEmpty(opts.Path); err != nil {
		return fmt.Errorf("file: 'path' required when enabled")
	}
	if strings.HasSuffix(opts.Path, "/") {
		return fmt.Errorf("file: path must name a file, got directory %s", opts.Path)
	}

	if err := validateFilters("file", opts.Filters); err != nil {
		return err
	}
	return validateMinLevel("file", opts.MinLevel)
}

func validatePushSink(opts *PushSinkOptions) error {
	if err := lconfig.NonEmpty(opts.URL); err != nil {
		return fmt.Errorf("remote: 'url' required when enabled")
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("remote: invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("remote: URL must use http or https scheme")
	}

	// Set defaults for unspecified fields
	if opts.PushPath == "" {
		opts.PushPath = core.DefaultPushPath
	}
	if !strings.HasPrefix(opts.PushPath, "/") {
		return fmt.Errorf("remote: push path must start with /: %s", opts.PushPath)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = core.DefaultBatchSize
	}
	if opts.BatchIntervalMS <= 0 {
		opts.BatchIntervalMS = core.DefaultBatchIntervalMS
	}
	if opts.TimeoutMS <= 0 {
		opts.TimeoutMS = core.DefaultTimeoutMS
	}
	if opts.Retries < 0 {
		opts.Retries = core.DefaultRetries
	}

	if opts.BasicAuth != "" {
		user, _, ok := strings.Cut(opts.BasicAuth, ":")
		if !ok || user == "" {
			return fmt.Errorf("remote: basic_auth must be in user:password form")
		}
	}

	for name := range opts.Labels {
		if err := lconfig.NonEmpty(name); err != nil {
			return fmt.Errorf("remote: empty label name")
		}
	}

	if err := validateFilters("remote", opts.Filters); err != nil {
		return err
	}
	return validateMinLevel("remote", opts.MinLevel)
}

func validateMinLevel(sinkName, level string) error {
	if level == "" {
		return nil
	}
	if _, err := core.ParseLevel(level); err != nil {
		return fmt.Errorf("%s: invalid min_level: %s", sinkName, level)
	}
	return nil
}
