// FILE: src/internal/sink/file.go
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/format"

	"github.com/lixenwraith/log"
)

// fileWrite is a queued line, or a drain barrier when barrier is set.
type fileWrite struct {
	line    []byte
	barrier chan struct{}
}

// FileSink appends JSON lines to a single file. Writes go through one FIFO
// queue served by one worker, so lines land in Deliver order.
type FileSink struct {
	config    *config.FileSinkOptions
	file      *os.File
	formatter format.Formatter
	logger    *log.Logger
	onError   ErrorHandler
	startTime time.Time

	mu     sync.Mutex
	queue  []fileWrite
	closed bool
	wake   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error

	// Statistics
	totalProcessed atomic.Uint64
	totalWritten   atomic.Uint64
	writeErrors    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink opens the target file for appending and starts the writer
func NewFileSink(opts *config.FileSinkOptions, logger *log.Logger, onError ErrorHandler) (*FileSink, error) {
	if opts == nil || opts.Path == "" {
		return nil, fmt.Errorf("file sink requires a path")
	}
	if onError == nil {
		onError = discardErrors
	}

	formatter, err := format.NewFormatter(&config.FormatConfig{
		Type: "json",
		JSONFormatOptions: &config.JSONFormatterOptions{
			ProtectReserved: opts.ProtectReserved,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file formatter: %w", err)
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory '%s': %w", dir, err)
		}
	}

	file, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", opts.Path, err)
	}

	fs := &FileSink{
		config:    opts,
		file:      file,
		formatter: formatter,
		logger:    logger,
		onError:   onError,
		startTime: time.Now(),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	fs.lastProcessed.Store(time.Time{})

	go fs.writeLoop()

	logger.Debug("msg", "File sink opened",
		"component", "file_sink",
		"path", opts.Path)

	return fs, nil
}

func (fs *FileSink) Name() string {
	return "file"
}

// Deliver formats the event and queues the line. Formatting errors are
// returned; write errors go to the error handler.
func (fs *FileSink) Deliver(event core.LogEvent) error {
	line, err := fs.formatter.Format(event)
	if err != nil {
		return fmt.Errorf("failed to format event for file: %w", err)
	}

	if err := fs.enqueue(fileWrite{line: line}); err != nil {
		return err
	}

	fs.totalProcessed.Add(1)
	fs.lastProcessed.Store(time.Now())
	return nil
}

func (fs *FileSink) enqueue(w fileWrite) error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return ErrSinkClosed
	}
	fs.queue = append(fs.queue, w)
	fs.mu.Unlock()

	select {
	case fs.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drain waits until every line queued before the call has been written
func (fs *FileSink) Drain(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := fs.enqueue(fileWrite{barrier: barrier}); err != nil {
		// Closed: the worker flushes what is left before exiting
		select {
		case <-fs.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending lines and closes the file. Safe to call more than once.
func (fs *FileSink) Close(ctx context.Context) error {
	fs.closeOnce.Do(func() {
		fs.mu.Lock()
		fs.closed = true
		fs.mu.Unlock()

		select {
		case fs.wake <- struct{}{}:
		default:
		}

		select {
		case <-fs.done:
		case <-ctx.Done():
			fs.closeErr = fmt.Errorf("file sink close: %w", ctx.Err())
			return
		}

		if err := fs.file.Sync(); err != nil {
			fs.closeErr = fmt.Errorf("failed to sync log file: %w", err)
		}
		if err := fs.file.Close(); err != nil && fs.closeErr == nil {
			fs.closeErr = fmt.Errorf("failed to close log file: %w", err)
		}

		fs.logger.Debug("msg", "File sink closed",
			"component", "file_sink",
			"path", fs.config.Path,
			"total_written", fs.totalWritten.Load())
	})
	return fs.closeErr
}

func (fs *FileSink) writeLoop() {
	defer close(fs.done)

	for {
		fs.mu.Lock()
		batch := fs.queue
		fs.queue = nil
		closed := fs.closed
		fs.mu.Unlock()

		for _, w := range batch {
			if w.barrier != nil {
				close(w.barrier)
				continue
			}
			fs.write(w.line)
		}

		if len(batch) == 0 {
			if closed {
				return
			}
			<-fs.wake
		}
	}
}

func (fs *FileSink) write(line []byte) {
	if _, err := fs.file.Write(line); err != nil {
		fs.writeErrors.Add(1)
		fs.onError(fs.Name(), fmt.Errorf("failed to write to '%s': %w", fs.config.Path, err))
		return
	}
	fs.totalWritten.Add(1)
}

func (fs *FileSink) GetStats() SinkStats {
	lastProc, _ := fs.lastProcessed.Load().(time.Time)

	fs.mu.Lock()
	queued := len(fs.queue)
	fs.mu.Unlock()

	return SinkStats{
		Type:           "file",
		TotalProcessed: fs.totalProcessed.Load(),
		StartTime:      fs.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"path":          fs.config.Path,
			"queued":        queued,
			"total_written": fs.totalWritten.Load(),
			"write_errors":  fs.writeErrors.Load(),
		},
	}
}
