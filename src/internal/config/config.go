// FILE: src/internal/config/config.go
package config

// Config is the process configuration of the logfan command.
type Config struct {
	// Logger facade and its sinks
	Logger LoggerConfig `toml:"logger"`

	// Operational logging of the library itself
	Logging *LogConfig `toml:"logging"`

	// Prometheus endpoint
	Metrics MetricsConfig `toml:"metrics"`

	// Runtime flags, not read from file
	ConfigFile  string `toml:"-"`
	ShowVersion bool   `toml:"-"`
	Quiet       bool   `toml:"-"`
}

// LoggerConfig describes one logger facade instance.
type LoggerConfig struct {
	// Service name stamped on every event (required)
	Service string `toml:"service"`

	// Added to remote stream labels when set
	Environment string `toml:"environment"`
	Host        string `toml:"host"`

	Console ConsoleSinkOptions `toml:"console"`
	File    FileSinkOptions    `toml:"file"`
	Remote  PushSinkOptions    `toml:"remote"`
}

// ConsoleSinkOptions configures the console sink.
type ConsoleSinkOptions struct {
	Enabled bool `toml:"enabled"`

	// "auto", "always" or "never"
	Color string `toml:"color"`

	// Events below this level are not delivered to the sink
	MinLevel string `toml:"min_level"`

	Filters []FilterConfig `toml:"filters"`
}

// FileSinkOptions configures the local JSON-lines file sink.
type FileSinkOptions struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	// Rename metadata keys that collide with reserved line fields
	ProtectReserved bool `toml:"protect_reserved"`

	MinLevel string         `toml:"min_level"`
	Filters  []FilterConfig `toml:"filters"`
}

// PushSinkOptions configures the remote push sink.
type PushSinkOptions struct {
	Enabled bool `toml:"enabled"`

	// Base URL of the log store, e.g. http://loki:3100
	URL      string `toml:"url"`
	PushPath string `toml:"push_path"`

	BatchIntervalMS int64 `toml:"batch_interval_ms"`
	BatchSize       int64 `toml:"batch_size"`
	Retries         int64 `toml:"retries"`
	TimeoutMS       int64 `toml:"timeout_ms"`
	Compress        bool  `toml:"compress"`

	// "user:password"
	BasicAuth string `toml:"basic_auth"`

	// Sent as X-Scope-OrgID for multi-tenant stores
	TenantID string `toml:"tenant_id"`

	// Static stream labels, merged over the derived ones
	Labels map[string]string `toml:"labels"`

	MinLevel string         `toml:"min_level"`
	Filters  []FilterConfig `toml:"filters"`
}

// MetricsConfig configures the Prometheus endpoint of the command.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}
