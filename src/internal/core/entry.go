// FILE: src/internal/core/entry.go
package core

import (
	"maps"
	"time"
)

// LogEvent is a single structured log record dispatched to every sink.
// It must be treated as read-only once created.
type LogEvent struct {
	Time     time.Time
	Level    Level
	Service  string
	Message  string
	Metadata map[string]any
}

// NewLogEvent stamps an event with the current wall clock time.
func NewLogEvent(service string, level Level, message string, metadata map[string]any) LogEvent {
	return LogEvent{
		Time:     time.Now(),
		Level:    level,
		Service:  service,
		Message:  message,
		Metadata: metadata,
	}
}

// Clone returns a copy whose top-level metadata map is independent of the original.
func (e LogEvent) Clone() LogEvent {
	if e.Metadata != nil {
		e.Metadata = maps.Clone(e.Metadata)
	}
	return e
}

// Category returns the optional event category carried in metadata.
func (e LogEvent) Category() (string, bool) {
	v, ok := e.Metadata[FieldEvent].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
