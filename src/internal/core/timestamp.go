// FILE: src/internal/core/timestamp.go
package core

import (
	"strconv"
	"time"
)

// ISOLayout is ISO-8601 in UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ISOTimestamp formats t for human readable outputs.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// NanoTimestamp formats t as Unix nanoseconds, as the push API expects.
func NanoTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}
