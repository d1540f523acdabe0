// FILE: src/internal/service/reporter.go
package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

const (
	reportsPerSec = 1
	reportBurst   = 5
)

// errorReporter writes sink failures to the operational logger with a
// limiter per sink, so one failing sink cannot flood the channel or starve
// reports from the others.
type errorReporter struct {
	sinks  sync.Map // map[string]*sinkReporter
	logger *log.Logger
}

type sinkReporter struct {
	limiter    *rate.Limiter
	suppressed atomic.Uint64
}

func newErrorReporter(logger *log.Logger) *errorReporter {
	return &errorReporter{logger: logger}
}

// Report logs err for the named sink unless its limiter is exhausted.
// Suppressed reports are counted and included in the next logged one.
func (r *errorReporter) Report(sinkName string, err error) {
	sr := r.getReporter(sinkName)
	if !sr.limiter.Allow() {
		sr.suppressed.Add(1)
		return
	}

	args := []any{
		"msg", "Sink failure",
		"component", "logger",
		"sink", sinkName,
		"error", err,
	}
	if n := sr.suppressed.Swap(0); n > 0 {
		args = append(args, "suppressed", n)
	}
	r.logger.Error(args...)
}

// Flush logs the count of reports still suppressed
func (r *errorReporter) Flush() {
	r.sinks.Range(func(key, value any) bool {
		sr := value.(*sinkReporter)
		if n := sr.suppressed.Swap(0); n > 0 {
			r.logger.Warn("msg", "Sink failures suppressed",
				"component", "logger",
				"sink", key,
				"suppressed", n)
		}
		return true
	})
}

// Suppressed returns the pending suppressed count for a sink
func (r *errorReporter) Suppressed(sinkName string) uint64 {
	if val, ok := r.sinks.Load(sinkName); ok {
		return val.(*sinkReporter).suppressed.Load()
	}
	return 0
}

func (r *errorReporter) getReporter(sinkName string) *sinkReporter {
	if val, ok := r.sinks.Load(sinkName); ok {
		return val.(*sinkReporter)
	}

	sr := &sinkReporter{
		limiter: rate.NewLimiter(rate.Every(time.Second/reportsPerSec), reportBurst),
	}
	actual, _ := r.sinks.LoadOrStore(sinkName, sr)
	return actual.(*sinkReporter)
}
