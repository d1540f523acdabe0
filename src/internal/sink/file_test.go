// FILE: logfan/src/internal/sink/file_test.go
package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), "line: %s", scanner.Text())
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func newTestFileSink(t *testing.T, path string, onError ErrorHandler) *FileSink {
	t.Helper()
	fs, err := NewFileSink(&config.FileSinkOptions{Enabled: true, Path: path}, log.NewLogger(), onError)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close(context.Background()) })
	return fs
}

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	fs := newTestFileSink(t, path, nil)

	e := core.LogEvent{
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC),
		Level:    core.LevelInfo,
		Service:  "s",
		Message:  "hello",
		Metadata: map[string]any{"k": float64(1)},
	}
	require.NoError(t, fs.Deliver(e))
	require.NoError(t, fs.Drain(context.Background()))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", lines[0]["timestamp"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "s", lines[0]["service"])
	assert.Equal(t, "hello", lines[0]["message"])
	assert.Equal(t, float64(1), lines[0]["k"])
}

func TestFileSink_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"message":"existing"}`+"\n"), 0644))

	fs := newTestFileSink(t, path, nil)
	require.NoError(t, fs.Deliver(core.NewLogEvent("s", core.LevelWarn, "new", nil)))
	require.NoError(t, fs.Close(context.Background()))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "existing", lines[0]["message"])
	assert.Equal(t, "new", lines[1]["message"])
}

func TestFileSink_PreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := newTestFileSink(t, path, nil)

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, fs.Deliver(core.NewLogEvent("s", core.LevelInfo, fmt.Sprintf("m%d", i), nil)))
	}
	require.NoError(t, fs.Drain(context.Background()))

	lines := readLines(t, path)
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("m%d", i), line["message"])
	}
}

func TestFileSink_ConcurrentWritersDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := newTestFileSink(t, path, nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, fs.Deliver(core.NewLogEvent("s", core.LevelInfo, fmt.Sprintf("w%d-%d", w, i), nil)))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, fs.Drain(context.Background()))

	// readLines fails on any torn line
	assert.Len(t, readLines(t, path), 800)
}

func TestFileSink_CloseRejectsDeliver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := newTestFileSink(t, path, nil)

	require.NoError(t, fs.Close(context.Background()))
	assert.ErrorIs(t, fs.Deliver(core.NewLogEvent("s", core.LevelInfo, "late", nil)), ErrSinkClosed)
	assert.NoError(t, fs.Drain(context.Background()))
	assert.NoError(t, fs.Close(context.Background()))
}

func TestFileSink_FormatErrorIsSynchronous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := newTestFileSink(t, path, nil)

	err := fs.Deliver(core.NewLogEvent("s", core.LevelInfo, "bad", map[string]any{"ch": make(chan int)}))
	assert.Error(t, err)
}

func TestFileSink_WriteErrorReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	errs := &errorRecorder{}
	fs := newTestFileSink(t, path, errs.handle)

	// Writes to a closed descriptor fail
	require.NoError(t, fs.file.Close())

	require.NoError(t, fs.Deliver(core.NewLogEvent("s", core.LevelInfo, "lost", nil)))
	require.NoError(t, fs.Drain(context.Background()))

	require.Len(t, errs.list(), 1)
	assert.Equal(t, uint64(1), fs.GetStats().Details["write_errors"])

	// The queue keeps working after a failure
	require.NoError(t, fs.Deliver(core.NewLogEvent("s", core.LevelInfo, "also lost", nil)))
	require.NoError(t, fs.Drain(context.Background()))
	assert.Len(t, errs.list(), 2)
}

func TestNewFileSink_Invalid(t *testing.T) {
	_, err := NewFileSink(&config.FileSinkOptions{}, log.NewLogger(), nil)
	assert.Error(t, err)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err = NewFileSink(&config.FileSinkOptions{Path: filepath.Join(blocker, "app.log")}, log.NewLogger(), nil)
	assert.Error(t, err)
}
