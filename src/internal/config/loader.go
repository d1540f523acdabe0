// FILE: src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

const envPrefix = "LOGFAN_"

func defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Service: "logfan",
			Console: ConsoleSinkOptions{
				Enabled:  true,
				Color:    "auto",
				MinLevel: "debug",
			},
			File: FileSinkOptions{
				Enabled:  false,
				Path:     "./log/logfan.jsonl",
				MinLevel: "debug",
			},
			Remote: PushSinkOptions{
				Enabled:         false,
				URL:             "http://localhost:3100",
				PushPath:        core.DefaultPushPath,
				BatchIntervalMS: core.DefaultBatchIntervalMS,
				BatchSize:       core.DefaultBatchSize,
				Retries:         core.DefaultRetries,
				TimeoutMS:       core.DefaultTimeoutMS,
				MinLevel:        "debug",
			},
		},
		Logging: DefaultLogConfig(),
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9464",
		},
	}
}

// Load reads configuration with priority CLI > environment > file > defaults.
func Load(configFile string, cliArgs []string) (*Config, error) {
	configPath := GetConfigPath(configFile)

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		// Missing file is not fatal unless it was requested explicitly
		if configFile != "" || !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig, ""); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}
	finalConfig.ConfigFile = configPath

	return finalConfig, validateConfig(finalConfig)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	return envPrefix + env
}

// GetConfigPath resolves the config file from the flag, LOGFAN_CONFIG_FILE or LOGFAN_CONFIG_DIR.
func GetConfigPath(configFile string) string {
	if configFile != "" {
		return configFile
	}

	if configFile := os.Getenv("LOGFAN_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGFAN_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGFAN_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logfan.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logfan.toml")
	}

	return "logfan.toml"
}
