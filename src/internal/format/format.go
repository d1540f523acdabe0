// FILE: src/internal/format/format.go
package format

import (
	"fmt"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a LogEvent into a byte slice.
type Formatter interface {
	// Format takes a LogEvent and returns one newline-terminated line.
	Format(event core.LogEvent) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// NewFormatter creates a new Formatter based on the provided configuration.
func NewFormatter(cfg *config.FormatConfig, logger *log.Logger) (Formatter, error) {
	if cfg == nil {
		cfg = &config.FormatConfig{Type: "json"}
	}

	switch cfg.Type {
	case "json", "":
		return NewJSONFormatter(cfg.JSONFormatOptions, logger)
	case "console":
		return NewConsoleFormatter(cfg.ConsoleFormatOptions, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", cfg.Type)
	}
}
