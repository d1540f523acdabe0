// FILE: logfan/src/internal/core/core_test.go
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Level
		expectError bool
	}{
		{input: "debug", expected: LevelDebug},
		{input: "INFO", expected: LevelInfo},
		{input: "warning", expected: LevelWarn},
		{input: " error ", expected: LevelError},
		{input: "fatal", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}

	assert.True(t, LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError)
	assert.Equal(t, "warn", LevelWarn.String())
}

func TestTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 123456789, time.FixedZone("X", 3600))

	assert.Equal(t, "2024-03-05T06:08:09.123Z", ISOTimestamp(ts))

	ns, err := strconv.ParseInt(NanoTimestamp(ts), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, ts.UnixNano(), ns)
}

func TestLogEvent_Clone(t *testing.T) {
	event := NewLogEvent("svc", LevelInfo, "hello", map[string]any{"x": 1})
	clone := event.Clone()

	clone.Metadata["x"] = 2
	assert.Equal(t, 1, event.Metadata["x"], "clone must not share the metadata map")

	empty := NewLogEvent("svc", LevelInfo, "hello", nil).Clone()
	assert.Nil(t, empty.Metadata)
}

func TestLogEvent_Category(t *testing.T) {
	event := NewLogEvent("svc", LevelInfo, "m", map[string]any{"event": "login"})
	category, ok := event.Category()
	assert.True(t, ok)
	assert.Equal(t, "login", category)

	_, ok = NewLogEvent("svc", LevelInfo, "m", map[string]any{"event": 3}).Category()
	assert.False(t, ok)
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields(errors.New("boom"))

	assert.Equal(t, "boom", fields[FieldError])
	assert.Equal(t, "*errors.errorString", fields[FieldErrorName])
	stack, ok := fields[FieldErrorStack].(string)
	require.True(t, ok)
	assert.NotEmpty(t, stack)
	assert.Contains(t, stack, "boom")

	assert.Nil(t, ErrorFields(nil))
}

func TestErrorFields_NameFromCause(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "/missing", Err: fs.ErrNotExist}

	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "Stdlib", err: pathErr, expected: "*fs.PathError"},
		{name: "FmtWrapped", err: fmt.Errorf("load config: %w", pathErr), expected: "*fs.PathError"},
		{name: "CockroachWrapped", err: cerrors.Wrap(pathErr, "load config"), expected: "*fs.PathError"},
		{name: "DoubleWrapped", err: fmt.Errorf("outer: %w", cerrors.WithStack(pathErr)), expected: "*fs.PathError"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := ErrorFields(tc.err)
			assert.Equal(t, tc.expected, fields[FieldErrorName])
			assert.Equal(t, tc.err.Error(), fields[FieldError])
		})
	}

	t.Run("CockroachLeaf", func(t *testing.T) {
		fields := ErrorFields(cerrors.New("boom"))
		name, ok := fields[FieldErrorName].(string)
		require.True(t, ok)
		assert.NotContains(t, name, "withstack")
		assert.Equal(t, "boom", fields[FieldError])
	})
}

func TestErrorFields_TypedNil(t *testing.T) {
	var pathErr *fs.PathError
	var err error = pathErr

	assert.True(t, IsNilError(err))
	assert.True(t, IsNilError(nil))
	assert.False(t, IsNilError(errors.New("boom")))
	assert.Nil(t, ErrorFields(err))
}
