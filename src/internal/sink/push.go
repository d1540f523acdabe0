// FILE: src/internal/sink/push.go
package sink

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/format"
	"github.com/3BougsMedia/logger/src/internal/metrics"
	"github.com/3BougsMedia/logger/src/internal/version"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// StatusError is returned when the log store answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push rejected with status %d: %s", e.StatusCode, e.Body)
}

// PushSink batches events in memory and pushes them to a log store.
// A batch goes out when it reaches the configured size or on the batch
// interval, whichever comes first. Only one send is in flight at a time.
type PushSink struct {
	config    *config.PushSinkOptions
	client    *fasthttp.Client
	formatter *format.PushFormatter
	logger    *log.Logger
	onError   ErrorHandler
	metrics   *metrics.PushMetrics

	endpoint       string
	authHeader     string
	timeout        time.Duration
	retryBaseDelay time.Duration

	// Runtime
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time

	// Batching
	pending []core.LogEvent
	mu      sync.Mutex
	closed  bool

	// sending holds a token while a batch is in flight
	sending  chan struct{}
	flushing atomic.Int32

	timerStop     chan struct{}
	timerDone     chan struct{}
	timerStopOnce sync.Once

	closeOnce sync.Once
	closeErr  error

	// Statistics
	totalProcessed atomic.Uint64
	totalBatches   atomic.Uint64
	failedBatches  atomic.Uint64
	droppedEvents  atomic.Uint64
	totalAttempts  atomic.Uint64
	lastProcessed  atomic.Value // time.Time
	lastBatchSent  atomic.Value // time.Time
}

// NewPushSink creates a push sink and starts its batch timer.
// Options are expected to be validated, with defaults applied.
func NewPushSink(opts *config.PushSinkOptions, logger *log.Logger, onError ErrorHandler, m *metrics.PushMetrics) (*PushSink, error) {
	if opts == nil {
		return nil, fmt.Errorf("push sink options cannot be nil")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("push sink requires a url")
	}
	if opts.BatchSize <= 0 || opts.BatchIntervalMS <= 0 || opts.TimeoutMS <= 0 {
		return nil, fmt.Errorf("push sink batch size, interval and timeout must be positive")
	}
	if onError == nil {
		onError = discardErrors
	}

	pushPath := opts.PushPath
	if pushPath == "" {
		pushPath = core.DefaultPushPath
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &PushSink{
		config:         opts,
		formatter:      format.NewPushFormatter(opts.Labels, logger),
		logger:         logger,
		onError:        onError,
		metrics:        m,
		endpoint:       strings.TrimSuffix(opts.URL, "/") + pushPath,
		timeout:        time.Duration(opts.TimeoutMS) * time.Millisecond,
		retryBaseDelay: core.RetryBaseDelay,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		pending:        make([]core.LogEvent, 0, opts.BatchSize),
		sending:        make(chan struct{}, 1),
		timerStop:      make(chan struct{}),
		timerDone:      make(chan struct{}),
	}
	p.lastProcessed.Store(time.Time{})
	p.lastBatchSent.Store(time.Time{})

	if opts.BasicAuth != "" {
		p.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(opts.BasicAuth))
	}

	p.client = &fasthttp.Client{
		MaxConnsPerHost:               4,
		MaxIdleConnDuration:           10 * time.Second,
		ReadTimeout:                   p.timeout,
		WriteTimeout:                  p.timeout,
		DisableHeaderNamesNormalizing: true,
	}

	go p.batchTimer()

	logger.Info("msg", "Push sink started",
		"component", "push_sink",
		"endpoint", p.endpoint,
		"batch_size", opts.BatchSize,
		"batch_interval_ms", opts.BatchIntervalMS,
		"retries", opts.Retries,
		"compress", opts.Compress)

	return p, nil
}

func (p *PushSink) Name() string {
	return "remote"
}

// Deliver appends a copy of the event to the pending batch. When the batch
// reaches its size limit a send is started in the background.
func (p *PushSink) Deliver(event core.LogEvent) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrSinkClosed
	}
	p.pending = append(p.pending, event.Clone())
	n := len(p.pending)

	full := int64(n) >= p.config.BatchSize && p.flushing.Load() == 0 && len(p.sending) == 0
	if full {
		p.wg.Add(1)
	}
	p.mu.Unlock()

	p.totalProcessed.Add(1)
	p.lastProcessed.Store(time.Now())
	p.metrics.Enqueued(n)

	if full {
		go func() {
			defer p.wg.Done()
			p.trigger()
		}()
	}
	return nil
}

// Pending returns the number of buffered events
func (p *PushSink) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Drain stops the batch timer, waits for an in-flight send and then sends
// whatever is buffered. The returned error is the final send's error.
func (p *PushSink) Drain(ctx context.Context) error {
	p.stopTimer()

	p.flushing.Add(1)
	defer p.flushing.Add(-1)

	select {
	case <-p.timerDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case p.sending <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sending }()

	return p.sendPending(ctx)
}

// Close rejects further events, drains and releases the HTTP client.
// Safe to call more than once.
func (p *PushSink) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		p.closeErr = p.Drain(ctx)

		p.cancel()
		p.wg.Wait()
		p.client.CloseIdleConnections()

		p.logger.Info("msg", "Push sink stopped",
			"component", "push_sink",
			"total_processed", p.totalProcessed.Load(),
			"total_batches", p.totalBatches.Load(),
			"failed_batches", p.failedBatches.Load(),
			"dropped_events", p.droppedEvents.Load())
	})
	return p.closeErr
}

func (p *PushSink) GetStats() SinkStats {
	lastProc, _ := p.lastProcessed.Load().(time.Time)
	lastBatch, _ := p.lastBatchSent.Load().(time.Time)

	return SinkStats{
		Type:           "remote",
		TotalProcessed: p.totalProcessed.Load(),
		StartTime:      p.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"endpoint":        p.endpoint,
			"batch_size":      p.config.BatchSize,
			"pending_entries": p.Pending(),
			"total_batches":   p.totalBatches.Load(),
			"failed_batches":  p.failedBatches.Load(),
			"dropped_events":  p.droppedEvents.Load(),
			"total_attempts":  p.totalAttempts.Load(),
			"last_batch_sent": lastBatch,
		},
	}
}

func (p *PushSink) stopTimer() {
	p.timerStopOnce.Do(func() {
		close(p.timerStop)
	})
}

// batchTimer sends the pending batch on every interval tick
func (p *PushSink) batchTimer() {
	defer close(p.timerDone)

	ticker := time.NewTicker(time.Duration(p.config.BatchIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if p.Pending() > 0 {
				p.trigger()
			}
		case <-p.timerStop:
			return
		}
	}
}

// trigger sends the pending batch unless a send is already in flight or a
// drain owns the buffer.
func (p *PushSink) trigger() {
	if p.flushing.Load() > 0 {
		return
	}

	select {
	case p.sending <- struct{}{}:
	default:
		return
	}
	defer func() { <-p.sending }()

	_ = p.sendPending(p.ctx)
}

// sendPending takes the whole buffer and delivers it as one batch.
// Caller must hold the sending token.
func (p *PushSink) sendPending(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = make([]core.LogEvent, 0, p.config.BatchSize)
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	p.metrics.Taken(0)

	slices.SortStableFunc(batch, func(a, b core.LogEvent) int {
		return a.Time.Compare(b.Time)
	})

	batchID := uuid.NewString()
	start := time.Now()

	p.totalBatches.Add(1)
	p.lastBatchSent.Store(start)

	err := p.sendBatch(ctx, batchID, batch)
	p.metrics.BatchDone(len(batch), err == nil, time.Since(start))

	if err != nil {
		p.failedBatches.Add(1)
		p.droppedEvents.Add(uint64(len(batch)))

		p.logger.Error("msg", "Failed to send batch after retries",
			"component", "push_sink",
			"batch_id", batchID,
			"batch_size", len(batch),
			"retries", p.config.Retries,
			"last_error", err)

		err = fmt.Errorf("batch %s with %d events dropped: %w", batchID, len(batch), err)
		p.onError(p.Name(), err)
		return err
	}

	p.logger.Debug("msg", "Batch sent successfully",
		"component", "push_sink",
		"batch_id", batchID,
		"batch_size", len(batch),
		"duration", time.Since(start))
	return nil
}

// sendBatch posts the batch with up to Retries retries, doubling the delay
// before each retry starting at retryBaseDelay.
func (p *PushSink) sendBatch(ctx context.Context, batchID string, batch []core.LogEvent) error {
	req := p.formatter.FormatBatch(batch)
	if len(req.Streams) == 0 {
		return fmt.Errorf("%w: none of %d events could be encoded", ErrBatchEncoding, len(batch))
	}

	body, err := p.formatter.Encode(req)
	if err != nil {
		return err
	}

	if p.config.Compress {
		if body, err = gzipBody(body); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := int64(0); attempt <= p.config.Retries; attempt++ {
		if attempt > 0 {
			delay := p.retryBaseDelay << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt, ctx.Err(), lastErr)
			}
		}

		p.totalAttempts.Add(1)
		lastErr = p.post(body)
		p.metrics.Attempt(lastErr == nil)

		if lastErr == nil {
			return nil
		}

		p.logger.Warn("msg", "Push request failed",
			"component", "push_sink",
			"batch_id", batchID,
			"attempt", attempt+1,
			"max_retries", p.config.Retries,
			"error", lastErr)
	}

	return lastErr
}

// post performs a single push request
func (p *PushSink) post(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if p.config.Compress {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if p.authHeader != "" {
		req.Header.Set("Authorization", p.authHeader)
	}
	if p.config.TenantID != "" {
		req.Header.Set("X-Scope-OrgID", p.config.TenantID)
	}
	req.SetBody(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return &StatusError{
			StatusCode: statusCode,
			Body:       string(resp.Body()),
		}
	}
	return nil
}

func gzipBody(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress batch: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress batch: %w", err)
	}
	return buf.Bytes(), nil
}
