// FILE: src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// reservedPrefix is prepended to metadata keys that would overwrite a reserved field
// when ProtectReserved is enabled.
const reservedPrefix = "meta_"

var reservedLineFields = map[string]bool{
	core.FieldTimestamp: true,
	core.FieldLevel:     true,
	core.FieldService:   true,
	core.FieldMessage:   true,
}

// JSONFormatter produces one JSON object per line from LogEvent objects.
type JSONFormatter struct {
	config *config.JSONFormatterOptions
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
func NewJSONFormatter(opts *config.JSONFormatterOptions, logger *log.Logger) (*JSONFormatter, error) {
	if opts == nil {
		opts = &config.JSONFormatterOptions{}
	}

	f := &JSONFormatter{
		config: opts,
		logger: logger,
	}

	return f, nil
}

// Format transforms a single LogEvent into a JSON line.
// Metadata is spread after the reserved fields, so a metadata key named like a
// reserved field replaces it unless ProtectReserved is set.
func (f *JSONFormatter) Format(event core.LogEvent) ([]byte, error) {
	output := make(map[string]any, len(event.Metadata)+4)

	output[core.FieldTimestamp] = core.ISOTimestamp(event.Time)
	output[core.FieldLevel] = event.Level.String()
	output[core.FieldService] = event.Service
	output[core.FieldMessage] = event.Message

	for k, v := range event.Metadata {
		if f.config.ProtectReserved && reservedLineFields[k] {
			k = reservedPrefix + k
		}
		output[k] = v
	}

	result, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}
