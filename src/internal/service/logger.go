// FILE: src/internal/service/logger.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/filter"
	"github.com/3BougsMedia/logger/src/internal/metrics"
	"github.com/3BougsMedia/logger/src/internal/sink"

	"github.com/lixenwraith/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger stamps events with its service name and fans them out to every
// configured sink. A failing sink never affects the caller or the other sinks.
type Logger struct {
	service  string
	sinks    []boundSink
	logger   *log.Logger
	onError  sink.ErrorHandler
	reporter *errorReporter
	metrics  *metrics.LoggerMetrics

	closeOnce sync.Once
	closeErr  error
}

// boundSink is a sink with its level threshold and filters
type boundSink struct {
	sink     sink.Sink
	minLevel core.Level
	filters  *filter.Chain
}

type options struct {
	onError       sink.ErrorHandler
	registerer    prometheus.Registerer
	consoleWriter io.Writer
}

// Option customizes a Logger
type Option func(*options)

// WithErrorHandler replaces the operational error reporter
func WithErrorHandler(h sink.ErrorHandler) Option {
	return func(o *options) {
		o.onError = h
	}
}

// WithRegisterer registers logger and push sink metrics on reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithConsoleWriter redirects the console sink, stdout by default
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// New builds a logger and its sinks in console, file, remote order.
func New(cfg *config.LoggerConfig, logger *log.Logger, opts ...Option) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logger config cannot be nil")
	}
	if err := config.ValidateLogger(cfg); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	l := newLogger(cfg.Service, logger, o)

	if cfg.Console.Enabled {
		w := o.consoleWriter
		if w == nil {
			w = os.Stdout
		}
		s, err := sink.NewConsoleSinkWriter(&cfg.Console, w, logger)
		if err != nil {
			return nil, err
		}
		if err := l.add(s, cfg.Console.MinLevel, cfg.Console.Filters); err != nil {
			return nil, err
		}
	}

	if cfg.File.Enabled {
		s, err := sink.NewFileSink(&cfg.File, logger, l.reportSinkError)
		if err != nil {
			l.closeBuilt()
			return nil, fmt.Errorf("failed to create file sink: %w", err)
		}
		if err := l.add(s, cfg.File.MinLevel, cfg.File.Filters); err != nil {
			_ = s.Close(context.Background())
			l.closeBuilt()
			return nil, err
		}
	}

	if cfg.Remote.Enabled {
		remote := cfg.Remote
		remote.Labels = remoteLabels(cfg)

		s, err := sink.NewPushSink(&remote, logger, l.reportSinkError,
			metrics.NewPushMetrics(o.registerer, cfg.Service))
		if err != nil {
			l.closeBuilt()
			return nil, fmt.Errorf("failed to create remote sink: %w", err)
		}
		if err := l.add(s, cfg.Remote.MinLevel, cfg.Remote.Filters); err != nil {
			_ = s.Close(context.Background())
			l.closeBuilt()
			return nil, err
		}
	}

	logger.Info("msg", "Logger created",
		"component", "logger",
		"service", cfg.Service,
		"sinks", l.sinkNames())

	return l, nil
}

// NewWithSinks builds a logger around caller-provided sinks
func NewWithSinks(service string, logger *log.Logger, sinks []sink.Sink, opts ...Option) (*Logger, error) {
	if service == "" {
		return nil, fmt.Errorf("service name is required")
	}

	l := newLogger(service, logger, applyOptions(opts))
	for _, s := range sinks {
		// No level or filters, cannot fail
		_ = l.add(s, "", nil)
	}
	return l, nil
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newLogger(service string, logger *log.Logger, o *options) *Logger {
	l := &Logger{
		service: service,
		logger:  logger,
		onError: o.onError,
		metrics: metrics.NewLoggerMetrics(o.registerer, service),
	}
	if l.onError == nil {
		l.reporter = newErrorReporter(logger)
		l.onError = l.reporter.Report
	}
	return l
}

// remoteLabels merges environment and host into the configured static labels
func remoteLabels(cfg *config.LoggerConfig) map[string]string {
	labels := make(map[string]string, len(cfg.Remote.Labels)+2)
	if cfg.Environment != "" {
		labels[core.LabelEnvironment] = cfg.Environment
	}
	if cfg.Host != "" {
		labels[core.LabelHost] = cfg.Host
	}
	maps.Copy(labels, cfg.Remote.Labels)
	return labels
}

func (l *Logger) add(s sink.Sink, minLevel string, filters []config.FilterConfig) error {
	level := core.LevelDebug
	if minLevel != "" {
		var err error
		if level, err = core.ParseLevel(minLevel); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}

	chain, err := filter.NewChain(filters, l.logger)
	if err != nil {
		return fmt.Errorf("%s filters: %w", s.Name(), err)
	}

	l.sinks = append(l.sinks, boundSink{sink: s, minLevel: level, filters: chain})
	return nil
}

// closeBuilt releases sinks created before a construction failure
func (l *Logger) closeBuilt() {
	for _, b := range l.sinks {
		if c, ok := b.sink.(sink.Closer); ok {
			_ = c.Close(context.Background())
		}
	}
}

func (l *Logger) sinkNames() []string {
	names := make([]string, 0, len(l.sinks))
	for _, b := range l.sinks {
		names = append(names, b.sink.Name())
	}
	return names
}

// Service returns the service name stamped on events
func (l *Logger) Service() string {
	return l.service
}

func (l *Logger) Debug(msg string, metadata ...map[string]any) {
	l.Log(core.LevelDebug, msg, mergeMetadata(metadata...))
}

func (l *Logger) Info(msg string, metadata ...map[string]any) {
	l.Log(core.LevelInfo, msg, mergeMetadata(metadata...))
}

func (l *Logger) Warn(msg string, metadata ...map[string]any) {
	l.Log(core.LevelWarn, msg, mergeMetadata(metadata...))
}

// Error logs at error level. Trailing args may be an error, a metadata map,
// or an error followed by a map. Error fields come first so explicit metadata
// keys win on collision.
func (l *Logger) Error(msg string, args ...any) {
	l.Log(core.LevelError, msg, l.errorMetadata(args))
}

func (l *Logger) errorMetadata(args []any) map[string]any {
	var metadata map[string]any
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
		case error:
			if i != 0 {
				l.logger.Warn("msg", "Error value must be the first argument, ignored",
					"component", "logger",
					"position", i)
				continue
			}
			if core.IsNilError(v) {
				l.logger.Warn("msg", "Nil error value passed to Error, ignored",
					"component", "logger",
					"type", fmt.Sprintf("%T", v))
				continue
			}
			metadata = l.errorFields(v)
		case map[string]any:
			if metadata == nil {
				metadata = make(map[string]any, len(v))
			}
			maps.Copy(metadata, v)
		default:
			l.logger.Warn("msg", "Unsupported error log argument ignored",
				"component", "logger",
				"type", fmt.Sprintf("%T", arg))
		}
	}
	return metadata
}

// errorFields extracts error metadata, containing panics from foreign Error
// or Unwrap methods.
func (l *Logger) errorFields(err error) (fields map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("msg", "Failed to extract error fields",
				"component", "logger",
				"type", fmt.Sprintf("%T", err),
				"panic", r)
			fields = map[string]any{core.FieldErrorName: fmt.Sprintf("%T", err)}
		}
	}()
	return core.ErrorFields(err)
}

// Log builds one event and dispatches it to every sink accepting its level
func (l *Logger) Log(level core.Level, msg string, metadata map[string]any) {
	event := core.NewLogEvent(l.service, level, msg, metadata)
	l.metrics.Event(level.String())

	for _, b := range l.sinks {
		if level < b.minLevel || !b.filters.Apply(event) {
			continue
		}
		l.dispatch(b.sink, event)
	}
}

// dispatch delivers to one sink, funnelling errors and panics to the reporter
func (l *Logger) dispatch(s sink.Sink, event core.LogEvent) {
	defer func() {
		if r := recover(); r != nil {
			l.reportSinkError(s.Name(), fmt.Errorf("panic in sink: %v", r))
		}
	}()

	if err := s.Deliver(event); err != nil {
		l.reportSinkError(s.Name(), err)
	}
}

func (l *Logger) reportSinkError(name string, err error) {
	l.metrics.SinkFailure(name)
	l.onError(name, err)
}

// DrainAll drains every buffering sink concurrently and waits for all of
// them. Failures are reported per sink and returned joined.
func (l *Logger) DrainAll(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, b := range l.sinks {
		d, ok := b.sink.(sink.Drainer)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(name string, d sink.Drainer) {
			defer wg.Done()
			if err := l.drainOne(ctx, name, d); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		}(b.sink.Name(), d)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (l *Logger) drainOne(ctx context.Context, name string, d sink.Drainer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in drain: %v", r)
			l.reportSinkError(name, err)
		}
	}()

	if err = d.Drain(ctx); err != nil {
		l.logger.Warn("msg", "Sink drain failed",
			"component", "logger",
			"sink", name,
			"error", err)
	}
	return err
}

// Close drains all sinks and then closes those holding resources.
// Safe to call more than once.
func (l *Logger) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		errs := []error{l.DrainAll(ctx)}

		for _, b := range l.sinks {
			c, ok := b.sink.(sink.Closer)
			if !ok {
				continue
			}
			if err := c.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.sink.Name(), err))
			}
		}

		if l.reporter != nil {
			l.reporter.Flush()
		}

		l.closeErr = errors.Join(errs...)
		l.logger.Info("msg", "Logger closed",
			"component", "logger",
			"service", l.service)
	})
	return l.closeErr
}

// GetStats returns per sink statistics keyed by sink name
func (l *Logger) GetStats() map[string]sink.SinkStats {
	stats := make(map[string]sink.SinkStats, len(l.sinks))
	for _, b := range l.sinks {
		stats[b.sink.Name()] = b.sink.GetStats()
	}
	return stats
}

func mergeMetadata(metadata ...map[string]any) map[string]any {
	switch len(metadata) {
	case 0:
		return nil
	case 1:
		return metadata[0]
	}

	merged := make(map[string]any)
	for _, m := range metadata {
		maps.Copy(merged, m)
	}
	return merged
}
