// FILE: src/cmd/logfan/input.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/3BougsMedia/logger/src/internal/core"
	"github.com/3BougsMedia/logger/src/internal/service"

	"github.com/hpcloud/tail"
)

// maxLineSize bounds a single input line
const maxLineSize = 1 << 20

// readLines sends every line of r to out and closes out at EOF
func readLines(ctx context.Context, r io.Reader, out chan<- string) error {
	defer close(out)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}

// followLines tails path from its end, surviving rotation, until ctx is done
func followLines(ctx context.Context, path string, out chan<- string) error {
	defer close(out)

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.Warn("msg", "Error reading followed file",
					"component", "input",
					"path", path,
					"error", line.Err)
				continue
			}
			select {
			case out <- line.Text:
			case <-ctx.Done():
				return t.Stop()
			}
		case <-ctx.Done():
			return t.Stop()
		}
	}
}

// ship logs each line until lines closes or ctx is done, returning the count
func ship(ctx context.Context, l *service.Logger, lines <-chan string, level core.Level) int {
	n := 0
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return n
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			lvl, msg, metadata := parseLine(line, level)
			l.Log(lvl, msg, metadata)
			n++
		case <-ctx.Done():
			return n
		}
	}
}

// parseLine turns one input line into an event. A JSON object line provides
// its fields as metadata; "message" or "msg" becomes the message and a valid
// "level" overrides the default level. Other lines are shipped verbatim.
func parseLine(line string, defaultLevel core.Level) (core.Level, string, map[string]any) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return defaultLevel, line, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return defaultLevel, line, nil
	}

	level := defaultLevel
	if s, ok := fields[core.FieldLevel].(string); ok {
		if parsed, err := core.ParseLevel(s); err == nil {
			level = parsed
			delete(fields, core.FieldLevel)
		}
	}

	msg := ""
	for _, key := range []string{core.FieldMessage, "msg"} {
		if s, ok := fields[key].(string); ok {
			msg = s
			delete(fields, key)
			break
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return level, msg, fields
}
