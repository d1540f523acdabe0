// FILE: logfan/src/internal/service/logger_test.go
package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/sink"
	"github.com/3BougsMedia/logger/src/internal/testutil"

	cerrors "github.com/cockroachdb/errors"
	"github.com/lixenwraith/log"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, sinks ...sink.Sink) (*Logger, *testutil.ErrorLog) {
	t.Helper()
	errs := &testutil.ErrorLog{}
	l, err := NewWithSinks("svc", log.NewLogger(), sinks, WithErrorHandler(errs.Handle))
	require.NoError(t, err)
	return l, errs
}

func TestLogger_LevelMethods(t *testing.T) {
	mem := testutil.NewMemorySink("mem")
	l, _ := newTestLogger(t, mem)

	l.Debug("d")
	l.Info("i", map[string]any{"a": 1}, map[string]any{"b": 2, "a": 3})
	l.Warn("w")
	l.Error("e")

	events := mem.Events()
	require.Len(t, events, 4)

	expected := []core.Level{core.LevelDebug, core.LevelInfo, core.LevelWarn, core.LevelError}
	for i, e := range events {
		assert.Equal(t, expected[i], e.Level)
		assert.Equal(t, "svc", e.Service)
		assert.False(t, e.Time.IsZero())
	}
	assert.Equal(t, map[string]any{"a": 3, "b": 2}, events[1].Metadata)
	assert.Nil(t, events[0].Metadata)
}

func TestLogger_ErrorOverloads(t *testing.T) {
	testCases := []struct {
		name   string
		args   []any
		expect func(t *testing.T, md map[string]any)
	}{
		{
			name: "ErrorOnly",
			args: []any{errors.New("boom")},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "boom", md[core.FieldError])
				assert.Equal(t, "*errors.errorString", md[core.FieldErrorName])
				assert.NotEmpty(t, md[core.FieldErrorStack])
			},
		},
		{
			name: "ErrorWithMetadata",
			args: []any{errors.New("boom"), map[string]any{"code": 1}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "boom", md[core.FieldError])
				assert.NotEmpty(t, md[core.FieldErrorStack])
				assert.Equal(t, 1, md["code"])
			},
		},
		{
			name: "MetadataWinsOverErrorFields",
			args: []any{errors.New("boom"), map[string]any{core.FieldError: "explicit"}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "explicit", md[core.FieldError])
				assert.Contains(t, md, core.FieldErrorName)
			},
		},
		{
			name: "MetadataOnly",
			args: []any{map[string]any{"code": 2}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, map[string]any{"code": 2}, md)
			},
		},
		{
			name: "NilError",
			args: []any{nil, map[string]any{"code": 3}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, map[string]any{"code": 3}, md)
			},
		},
		{
			name: "TypedNilError",
			args: []any{(*fs.PathError)(nil), map[string]any{"code": 4}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, map[string]any{"code": 4}, md)
			},
		},
		{
			name: "WrappedErrorName",
			args: []any{fmt.Errorf("load: %w", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist})},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "*fs.PathError", md[core.FieldErrorName])
				assert.Equal(t, "load: open /x: file does not exist", md[core.FieldError])
			},
		},
		{
			name: "CockroachErrorName",
			args: []any{cerrors.Wrap(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, "load")},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "*fs.PathError", md[core.FieldErrorName])
				assert.NotEmpty(t, md[core.FieldErrorStack])
			},
		},
		{
			name: "PanickingErrorMethod",
			args: []any{explodingError{}},
			expect: func(t *testing.T, md map[string]any) {
				assert.Equal(t, "service.explodingError", md[core.FieldErrorName])
				assert.NotContains(t, md, core.FieldError)
			},
		},
		{
			name: "UnsupportedIgnored",
			args: []any{42},
			expect: func(t *testing.T, md map[string]any) {
				assert.Empty(t, md)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mem := testutil.NewMemorySink("mem")
			l, _ := newTestLogger(t, mem)

			require.NotPanics(t, func() { l.Error("failed", tc.args...) })

			events := mem.Events()
			require.Len(t, events, 1)
			assert.Equal(t, core.LevelError, events[0].Level)
			assert.Equal(t, "failed", events[0].Message)
			tc.expect(t, events[0].Metadata)
		})
	}
}

type explodingError struct{}

func (explodingError) Error() string { panic("error method exploded") }

func TestLogger_FailureIsolation(t *testing.T) {
	before := testutil.NewMemorySink("before")
	after := testutil.NewMemorySink("after")

	l, errs := newTestLogger(t,
		before,
		testutil.NewFailingSink("failing"),
		testutil.NewPanickingSink("panicking"),
		after,
	)

	assert.NotPanics(t, func() { l.Info("still delivered") })

	assert.Len(t, before.Events(), 1)
	assert.Len(t, after.Events(), 1)

	reports := errs.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, "failing", reports[0].Sink)
	assert.ErrorIs(t, reports[0].Err, testutil.ErrDeliver)
	assert.Equal(t, "panicking", reports[1].Sink)
	assert.Contains(t, reports[1].Err.Error(), "sink exploded")
}

func TestLogger_DrainAll(t *testing.T) {
	mem := testutil.NewMemorySink("mem")
	slow := testutil.NewSlowSink("slow", 50*time.Millisecond)
	l, _ := newTestLogger(t, mem, testutil.NewFailingSink("failing"), slow)

	err := l.DrainAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrDeliver)
	assert.Contains(t, err.Error(), "failing")

	// A failing drain does not abort the others
	assert.Equal(t, 1, mem.Drains())
	assert.Equal(t, 1, slow.Drains())
}

func TestLogger_DrainAllConcurrent(t *testing.T) {
	sinks := []sink.Sink{
		testutil.NewSlowSink("a", 200*time.Millisecond),
		testutil.NewSlowSink("b", 200*time.Millisecond),
		testutil.NewSlowSink("c", 200*time.Millisecond),
	}
	l, _ := newTestLogger(t, sinks...)

	start := time.Now()
	require.NoError(t, l.DrainAll(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLogger_Close(t *testing.T) {
	mem := testutil.NewMemorySink("mem")
	l, _ := newTestLogger(t, mem)

	require.NoError(t, l.Close(context.Background()))
	assert.Equal(t, 1, mem.Drains())
	assert.True(t, mem.Closed())
	assert.NoError(t, l.Close(context.Background()))
	assert.Equal(t, 1, mem.Drains(), "close runs once")
}

func TestNewWithSinks_RequiresService(t *testing.T) {
	_, err := NewWithSinks("", log.NewLogger(), nil)
	assert.Error(t, err)
}

func TestNew_FileScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(&config.LoggerConfig{
		Service: "svc",
		File:    config.FileSinkOptions{Enabled: true, Path: path},
	}, log.NewLogger())
	require.NoError(t, err)

	l.Info("hello", map[string]any{"x": 1})
	require.NoError(t, l.DrainAll(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []map[string]any
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "svc", line["service"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, float64(1), line["x"])

	ts, ok := line["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(core.ISOLayout, ts)
	assert.NoError(t, err)

	require.NoError(t, l.Close(context.Background()))
}

func TestNew_RemoteUnreachableDoesNotAffectOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer
	errs := &testutil.ErrorLog{}

	l, err := New(&config.LoggerConfig{
		Service: "svc",
		Console: config.ConsoleSinkOptions{Enabled: true, Color: "never"},
		File:    config.FileSinkOptions{Enabled: true, Path: path},
		Remote: config.PushSinkOptions{
			Enabled:   true,
			URL:       "http://127.0.0.1:1",
			BatchSize: 1,
			Retries:   0,
			TimeoutMS: 200,
		},
	}, log.NewLogger(), WithErrorHandler(errs.Handle), WithConsoleWriter(&console))
	require.NoError(t, err)

	l.Warn("network is down")
	require.Eventually(t, func() bool { return len(errs.Reports()) > 0 }, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, "remote", errs.Reports()[0].Sink)
	assert.Contains(t, console.String(), "network is down")

	require.NoError(t, l.DrainAll(context.Background()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "network is down")

	_ = l.Close(context.Background())
}

func TestNew_RemoteLabelsAndMinLevel(t *testing.T) {
	var bodies atomic.Int32
	var lastBody atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		lastBody.Store(buf.String())
		bodies.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	l, err := New(&config.LoggerConfig{
		Service:     "svc",
		Environment: "prod",
		Host:        "web-1",
		Remote: config.PushSinkOptions{
			Enabled:  true,
			URL:      server.URL,
			Labels:   map[string]string{"team": "core"},
			MinLevel: "warn",
		},
	}, log.NewLogger(), WithRegisterer(reg))
	require.NoError(t, err)

	l.Info("filtered")
	l.Error("shipped")
	require.NoError(t, l.Close(context.Background()))

	require.Equal(t, int32(1), bodies.Load())
	body := lastBody.Load().(string)
	assert.Contains(t, body, `"environment":"prod"`)
	assert.Contains(t, body, `"host":"web-1"`)
	assert.Contains(t, body, `"team":"core"`)
	assert.Contains(t, body, "shipped")
	assert.NotContains(t, body, "filtered")

	assert.Equal(t, float64(1), promtest.ToFloat64(l.metrics.Events.WithLabelValues("info")))
	assert.Equal(t, float64(1), promtest.ToFloat64(l.metrics.Events.WithLabelValues("error")))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil, log.NewLogger())
	assert.Error(t, err)

	_, err = New(&config.LoggerConfig{}, log.NewLogger())
	assert.Error(t, err, "service is required")

	_, err = New(&config.LoggerConfig{
		Service: "svc",
		Remote:  config.PushSinkOptions{Enabled: true, URL: "ftp://x"},
	}, log.NewLogger())
	assert.Error(t, err)
}

func TestLogger_GetStats(t *testing.T) {
	mem := testutil.NewMemorySink("mem")
	l, _ := newTestLogger(t, mem)
	l.Info("one")

	stats := l.GetStats()
	require.Contains(t, stats, "mem")
	assert.Equal(t, uint64(1), stats["mem"].TotalProcessed)
}

func TestNew_SinkFilters(t *testing.T) {
	var console bytes.Buffer

	l, err := New(&config.LoggerConfig{
		Service: "svc",
		Console: config.ConsoleSinkOptions{
			Enabled: true,
			Color:   "never",
			Filters: []config.FilterConfig{
				{Type: config.FilterTypeExclude, Patterns: []string{"healthcheck"}},
			},
		},
	}, log.NewLogger(), WithConsoleWriter(&console))
	require.NoError(t, err)

	l.Info("GET /healthcheck 200")
	l.Info("GET /orders 200")

	assert.NotContains(t, console.String(), "healthcheck")
	assert.Contains(t, console.String(), "/orders")
}

func TestNew_InvalidFilter(t *testing.T) {
	_, err := New(&config.LoggerConfig{
		Service: "svc",
		Console: config.ConsoleSinkOptions{
			Enabled: true,
			Filters: []config.FilterConfig{{Patterns: []string{"("}}},
		},
	}, log.NewLogger())
	assert.Error(t, err)
}
