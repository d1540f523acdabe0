// FILE: src/internal/format/console.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// ANSI escapes keyed by level
const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[2m"
	colorCyan  = "\x1b[36m"
	colorYell  = "\x1b[33m"
	colorRed   = "\x1b[31m"
)

var levelColors = map[core.Level]string{
	core.LevelDebug: colorDim,
	core.LevelInfo:  colorCyan,
	core.LevelWarn:  colorYell,
	core.LevelError: colorRed,
}

// Width of "ERROR:", the longest level token
const levelColumnWidth = 6

// ConsoleFormatter produces human-readable lines:
// [timestamp] LEVEL: message {metadata}
type ConsoleFormatter struct {
	config *config.ConsoleFormatterOptions
	logger *log.Logger
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(opts *config.ConsoleFormatterOptions, logger *log.Logger) (*ConsoleFormatter, error) {
	if opts == nil {
		opts = &config.ConsoleFormatterOptions{}
	}

	return &ConsoleFormatter{
		config: opts,
		logger: logger,
	}, nil
}

// Format renders the event as one line. Metadata is appended as compact JSON
// only when present.
func (f *ConsoleFormatter) Format(event core.LogEvent) ([]byte, error) {
	var buf bytes.Buffer

	token := strings.ToUpper(event.Level.String()) + ":"
	padding := ""
	if len(token) < levelColumnWidth {
		padding = strings.Repeat(" ", levelColumnWidth-len(token))
	}

	if f.config.Color {
		if color, ok := levelColors[event.Level]; ok {
			token = color + token + colorReset
		}
	}

	fmt.Fprintf(&buf, "[%s] %s%s %s", core.ISOTimestamp(event.Time), token, padding, event.Message)

	if len(event.Metadata) > 0 {
		meta, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf.WriteByte(' ')
		buf.Write(meta)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Name returns the formatter name
func (f *ConsoleFormatter) Name() string {
	return "console"
}
