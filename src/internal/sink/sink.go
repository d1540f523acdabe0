// FILE: src/internal/sink/sink.go
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/3BougsMedia/logger/src/internal/core"
)

// ErrSinkClosed is returned by Deliver after a sink has been closed.
var ErrSinkClosed = errors.New("sink closed")

// ErrBatchEncoding is returned when no event of a batch could be encoded.
var ErrBatchEncoding = errors.New("batch encoding failed")

// Sink represents an output destination for log events
type Sink interface {
	// Deliver hands an event to the sink. It must not block on network I/O.
	// A returned error is a synchronous dispatch failure; asynchronous failures
	// go to the sink's ErrorHandler.
	Deliver(event core.LogEvent) error

	// Name identifies the sink in reports and stats
	Name() string

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// Drainer is implemented by sinks that buffer events.
type Drainer interface {
	// Drain forces delivery of buffered events and waits for it.
	Drain(ctx context.Context) error
}

// Closer is implemented by sinks holding resources.
type Closer interface {
	// Close drains the sink and releases its resources.
	Close(ctx context.Context) error
}

// ErrorHandler receives failures that cannot be returned to the caller.
type ErrorHandler func(sink string, err error)

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalProcessed uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}

func discardErrors(string, error) {}
