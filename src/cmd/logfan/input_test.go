// FILE: logfan/src/cmd/logfan/input_test.go
package main

import (
	"context"
	"strings"
	"testing"

	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/service"
	"github.com/3BougsMedia/logger/src/internal/sink"
	"github.com/3BougsMedia/logger/src/internal/testutil"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		level    core.Level
		message  string
		metadata map[string]any
	}{
		{
			name:    "PlainText",
			line:    "connection reset",
			level:   core.LevelInfo,
			message: "connection reset",
		},
		{
			name:     "JSONWithMessage",
			line:     `{"message":"login","user":"u-1"}`,
			level:    core.LevelInfo,
			message:  "login",
			metadata: map[string]any{"user": "u-1"},
		},
		{
			name:     "JSONWithMsgAndLevel",
			line:     `{"msg":"disk low","level":"warn","free":3}`,
			level:    core.LevelWarn,
			message:  "disk low",
			metadata: map[string]any{"free": float64(3)},
		},
		{
			name:     "UnknownLevelKeptAsMetadata",
			line:     `{"msg":"x","level":"fatal"}`,
			level:    core.LevelInfo,
			message:  "x",
			metadata: map[string]any{"level": "fatal"},
		},
		{
			name:    "BrokenJSON",
			line:    `{"msg":`,
			level:   core.LevelInfo,
			message: `{"msg":`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, msg, md := parseLine(tc.line, core.LevelInfo)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.message, msg)
			assert.Equal(t, tc.metadata, md)
		})
	}
}

func TestReadLinesAndShip(t *testing.T) {
	mem := testutil.NewMemorySink("mem")
	l, err := service.NewWithSinks("cli", log.NewLogger(), []sink.Sink{mem})
	require.NoError(t, err)

	input := strings.NewReader("first\n\n{\"msg\":\"second\",\"level\":\"error\"}\nthird\n")
	lines := make(chan string, 1)

	errCh := make(chan error, 1)
	go func() { errCh <- readLines(context.Background(), input, lines) }()

	n := ship(context.Background(), l, lines, core.LevelDebug)
	require.NoError(t, <-errCh)
	assert.Equal(t, 3, n, "blank lines are skipped")

	events := mem.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Message)
	assert.Equal(t, core.LevelDebug, events[0].Level)
	assert.Equal(t, "second", events[1].Message)
	assert.Equal(t, core.LevelError, events[1].Level)
	assert.Equal(t, "cli", events[2].Service)
}

func TestShipStopsOnCancel(t *testing.T) {
	l, err := service.NewWithSinks("cli", log.NewLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, ship(ctx, l, make(chan string), core.LevelInfo))
}
