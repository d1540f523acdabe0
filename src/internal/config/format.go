// FILE: src/internal/config/format.go
package config

// FormatConfig selects and configures a line formatter.
type FormatConfig struct {
	// "json" or "console"
	Type string `toml:"type"`

	JSONFormatOptions    *JSONFormatterOptions    `toml:"json"`
	ConsoleFormatOptions *ConsoleFormatterOptions `toml:"console"`
}

// JSONFormatterOptions configures the JSON line formatter.
type JSONFormatterOptions struct {
	// Rename colliding metadata keys to meta_<key> instead of overwriting
	ProtectReserved bool `toml:"protect_reserved"`
}

// ConsoleFormatterOptions configures the human readable formatter.
type ConsoleFormatterOptions struct {
	Color bool `toml:"color"`
}
