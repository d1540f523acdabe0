// FILE: src/cmd/logfan/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// Command-line flags
var (
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	quiet       = flag.Bool("quiet", false, "Suppress all operational output")
	dumpConfig  = flag.String("dump-config", "", "Write the effective config as TOML to this path and exit")

	// Shipping flags
	serviceName = flag.String("service", "", "Service name stamped on events (overrides config)")
	shipLevel   = flag.String("level", "info", "Level of shipped lines without their own level")
	followPath  = flag.String("follow", "", "Follow a file instead of reading stdin")

	// Operational logging flags
	logLevel = flag.String("log-level", "", "Operational log level: debug, info, warn, error (overrides config)")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "LogFan - ship log lines to console, file and a push log store\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [-- --key=value ...]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Ship stdin to the console\n")
	fmt.Fprintf(os.Stderr, "  app | %s -service app\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Follow a file and push it to Loki\n")
	fmt.Fprintf(os.Stderr, "  %s -follow /var/log/app.log -- --logger.remote.enabled=true --logger.remote.url=http://loki:3100\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGFAN_CONFIG_FILE   Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGFAN_CONFIG_DIR    Config directory\n")
	fmt.Fprintf(os.Stderr, "  LOGFAN_<SECTION>_<KEY>  Any config value, e.g. LOGFAN_LOGGER_REMOTE_URL\n")
}

func parseFlags() error {
	flag.Parse()

	if _, err := core.ParseLevel(*shipLevel); err != nil {
		return fmt.Errorf("invalid level: %s (valid: debug, info, warn, error)", *shipLevel)
	}

	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	return nil
}

// applyFlagOverrides copies explicit flags over the loaded configuration
func applyFlagOverrides(cfg *config.Config) {
	if *serviceName != "" {
		cfg.Logger.Service = *serviceName
	}
	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	cfg.Quiet = *quiet
}

func parseLogLevel(level string) (int64, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int64(log.LevelDebug), nil
	case "info":
		return int64(log.LevelInfo), nil
	case "warn", "warning":
		return int64(log.LevelWarn), nil
	case "error":
		return int64(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
