// FILE: src/internal/testutil/sinks.go
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/sink"
)

// ErrDeliver is returned by FailingSink
var ErrDeliver = errors.New("deliver failed")

// MemorySink records delivered events and counts drains
type MemorySink struct {
	name   string
	mu     sync.Mutex
	events []core.LogEvent
	drains int
	closed bool
}

func NewMemorySink(name string) *MemorySink {
	return &MemorySink{name: name}
}

func (m *MemorySink) Name() string { return m.name }

func (m *MemorySink) Deliver(event core.LogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return sink.ErrSinkClosed
	}
	m.events = append(m.events, event.Clone())
	return nil
}

func (m *MemorySink) Drain(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains++
	return nil
}

func (m *MemorySink) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of the recorded events
func (m *MemorySink) Events() []core.LogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.LogEvent(nil), m.events...)
}

func (m *MemorySink) Drains() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drains
}

func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemorySink) GetStats() sink.SinkStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sink.SinkStats{
		Type:           "memory",
		TotalProcessed: uint64(len(m.events)),
	}
}

// FailingSink rejects every event and every drain
type FailingSink struct {
	name string
}

func NewFailingSink(name string) *FailingSink {
	return &FailingSink{name: name}
}

func (f *FailingSink) Name() string                { return f.name }
func (f *FailingSink) Deliver(core.LogEvent) error { return ErrDeliver }
func (f *FailingSink) Drain(context.Context) error { return ErrDeliver }
func (f *FailingSink) GetStats() sink.SinkStats    { return sink.SinkStats{Type: "failing"} }

// PanickingSink panics on every Deliver
type PanickingSink struct {
	name string
}

func NewPanickingSink(name string) *PanickingSink {
	return &PanickingSink{name: name}
}

func (p *PanickingSink) Name() string                { return p.name }
func (p *PanickingSink) Deliver(core.LogEvent) error { panic("sink exploded") }
func (p *PanickingSink) GetStats() sink.SinkStats    { return sink.SinkStats{Type: "panicking"} }

// SlowSink takes Delay to drain
type SlowSink struct {
	*MemorySink
	Delay time.Duration
}

func NewSlowSink(name string, delay time.Duration) *SlowSink {
	return &SlowSink{MemorySink: NewMemorySink(name), Delay: delay}
}

func (s *SlowSink) Drain(ctx context.Context) error {
	select {
	case <-time.After(s.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.MemorySink.Drain(ctx)
}

// ErrorLog collects reported sink errors
type ErrorLog struct {
	mu      sync.Mutex
	reports []Report
}

// Report is one reported sink failure
type Report struct {
	Sink string
	Err  error
}

func (e *ErrorLog) Handle(sinkName string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, Report{Sink: sinkName, Err: err})
}

func (e *ErrorLog) Reports() []Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Report(nil), e.reports...)
}
