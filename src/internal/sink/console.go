// FILE: src/internal/sink/console.go
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/format"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// ConsoleSink writes human-readable lines to stdout
type ConsoleSink struct {
	config    *config.ConsoleSinkOptions
	output    io.Writer
	formatter *format.ConsoleFormatter
	logger    *log.Logger
	startTime time.Time
	mu        sync.Mutex

	// Statistics
	totalProcessed atomic.Uint64
	writeErrors    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewConsoleSink creates a console sink writing to stdout
func NewConsoleSink(opts *config.ConsoleSinkOptions, logger *log.Logger) (*ConsoleSink, error) {
	return NewConsoleSinkWriter(opts, os.Stdout, logger)
}

// NewConsoleSinkWriter creates a console sink writing to w
func NewConsoleSinkWriter(opts *config.ConsoleSinkOptions, w io.Writer, logger *log.Logger) (*ConsoleSink, error) {
	if opts == nil {
		opts = &config.ConsoleSinkOptions{Enabled: true, Color: "auto"}
	}

	formatter, err := format.NewConsoleFormatter(&config.ConsoleFormatterOptions{
		Color: useColor(opts.Color, w),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create console formatter: %w", err)
	}

	s := &ConsoleSink{
		config:    opts,
		output:    w,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastProcessed.Store(time.Time{})

	return s, nil
}

// useColor resolves the color mode; "auto" colors only terminals.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *ConsoleSink) Name() string {
	return "console"
}

// Deliver formats and writes the event synchronously
func (s *ConsoleSink) Deliver(event core.LogEvent) error {
	formatted, err := s.formatter.Format(event)
	if err != nil {
		return fmt.Errorf("failed to format event for console: %w", err)
	}

	s.mu.Lock()
	_, err = s.output.Write(formatted)
	s.mu.Unlock()

	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())

	if err != nil {
		s.writeErrors.Add(1)
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "console",
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"color":        s.config.Color,
			"write_errors": s.writeErrors.Load(),
		},
	}
}
