// FILE: src/internal/metrics/metrics.go
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logfan"

// PushMetrics holds the Prometheus collectors of one push sink.
// A nil *PushMetrics is valid and records nothing.
type PushMetrics struct {
	Events       *prometheus.CounterVec
	Batches      *prometheus.CounterVec
	Attempts     *prometheus.CounterVec
	Pending      prometheus.Gauge
	SendDuration prometheus.Histogram
}

// NewPushMetrics creates push sink collectors and registers them on reg.
// Collectors already registered for the same service are reused.
func NewPushMetrics(reg prometheus.Registerer, service string) *PushMetrics {
	if reg == nil {
		return nil
	}
	constLabels := prometheus.Labels{"service": service}

	return &PushMetrics{
		Events: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "push",
			Name:        "events_total",
			Help:        "Events handled by the push sink by status.",
			ConstLabels: constLabels,
		}, []string{"status"})), // status: enqueued, sent, dropped
		Batches: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "push",
			Name:        "batches_total",
			Help:        "Batches handled by the push sink by result.",
			ConstLabels: constLabels,
		}, []string{"result"})), // result: sent, dropped
		Attempts: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "push",
			Name:        "attempts_total",
			Help:        "HTTP delivery attempts by result.",
			ConstLabels: constLabels,
		}, []string{"result"})), // result: success, failure
		Pending: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "push",
			Name:        "pending_events",
			Help:        "Events buffered and not yet taken for sending.",
			ConstLabels: constLabels,
		})),
		SendDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "push",
			Name:        "batch_send_seconds",
			Help:        "Time to deliver or drop a batch, retries included.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.005, 4, 8),
		})),
	}
}

func (m *PushMetrics) Enqueued(pending int) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues("enqueued").Inc()
	m.Pending.Set(float64(pending))
}

func (m *PushMetrics) Taken(pending int) {
	if m == nil {
		return
	}
	m.Pending.Set(float64(pending))
}

func (m *PushMetrics) Attempt(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Attempts.WithLabelValues("success").Inc()
	} else {
		m.Attempts.WithLabelValues("failure").Inc()
	}
}

func (m *PushMetrics) BatchDone(events int, delivered bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SendDuration.Observe(elapsed.Seconds())
	if delivered {
		m.Batches.WithLabelValues("sent").Inc()
		m.Events.WithLabelValues("sent").Add(float64(events))
	} else {
		m.Batches.WithLabelValues("dropped").Inc()
		m.Events.WithLabelValues("dropped").Add(float64(events))
	}
}

// LoggerMetrics holds facade level collectors. A nil value records nothing.
type LoggerMetrics struct {
	Events       *prometheus.CounterVec
	SinkFailures *prometheus.CounterVec
}

// NewLoggerMetrics creates facade collectors and registers them on reg.
func NewLoggerMetrics(reg prometheus.Registerer, service string) *LoggerMetrics {
	if reg == nil {
		return nil
	}
	constLabels := prometheus.Labels{"service": service}

	return &LoggerMetrics{
		Events: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "logger",
			Name:        "events_total",
			Help:        "Events created by the logger by level.",
			ConstLabels: constLabels,
		}, []string{"level"})),
		SinkFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "logger",
			Name:        "sink_failures_total",
			Help:        "Sink failures reported to the operational channel by sink.",
			ConstLabels: constLabels,
		}, []string{"sink"})),
	}
}

func (m *LoggerMetrics) Event(level string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(level).Inc()
}

func (m *LoggerMetrics) SinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}

// register adds c to reg, returning the existing collector when an identical
// one was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
