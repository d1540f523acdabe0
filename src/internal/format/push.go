// FILE: src/internal/format/push.go
package format

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// PushRequest is the body of a push API call:
// {"streams":[{"stream":{...},"values":[["<ns>","<line>"],...]}]}
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is one label set with its timestamped lines.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"` // [unix ns, json line]
}

// PushFormatter groups events into push streams. Labels are restricted to
// bounded-cardinality values: service, level, the optional event category and
// static labels. Everything else stays in the line.
type PushFormatter struct {
	labels map[string]string
	logger *log.Logger
}

// NewPushFormatter creates a formatter whose static labels are merged over the
// labels derived from each event.
func NewPushFormatter(staticLabels map[string]string, logger *log.Logger) *PushFormatter {
	return &PushFormatter{
		labels: maps.Clone(staticLabels),
		logger: logger,
	}
}

// FormatBatch groups events by label set. Streams appear in order of first
// appearance and lines keep their input order inside a stream. Events whose
// line cannot be encoded are skipped.
func (f *PushFormatter) FormatBatch(events []core.LogEvent) PushRequest {
	req := PushRequest{Streams: make([]Stream, 0, 4)}
	index := make(map[string]int)

	for _, event := range events {
		line, err := f.formatLine(event)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("msg", "Failed to format entry in batch",
					"component", "push_formatter",
					"error", err)
			}
			continue
		}

		labels := f.eventLabels(event)
		key := labelKey(labels)

		i, exists := index[key]
		if !exists {
			i = len(req.Streams)
			index[key] = i
			req.Streams = append(req.Streams, Stream{
				Stream: labels,
				Values: make([][2]string, 0, 1),
			})
		}

		req.Streams[i].Values = append(req.Streams[i].Values,
			[2]string{core.NanoTimestamp(event.Time), line})
	}

	return req
}

// Encode serializes a push request as compact JSON.
func (f *PushFormatter) Encode(req PushRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push request: %w", err)
	}
	return body, nil
}

func (f *PushFormatter) eventLabels(event core.LogEvent) map[string]string {
	labels := make(map[string]string, len(f.labels)+3)
	labels[core.LabelService] = event.Service
	labels[core.LabelLevel] = event.Level.String()
	if category, ok := event.Category(); ok {
		labels[core.LabelEvent] = category
	}

	// Static labels take precedence
	maps.Copy(labels, f.labels)
	return labels
}

// formatLine encodes the message with metadata spread after it.
func (f *PushFormatter) formatLine(event core.LogEvent) (string, error) {
	line := make(map[string]any, len(event.Metadata)+1)
	line[core.FieldMessage] = event.Message
	maps.Copy(line, event.Metadata)

	b, err := json.Marshal(line)
	if err != nil {
		return "", fmt.Errorf("failed to marshal line: %w", err)
	}
	return string(b), nil
}

// labelKey is a canonical, order independent key for a label set.
func labelKey(labels map[string]string) string {
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
		sb.WriteByte(0)
	}
	return sb.String()
}
