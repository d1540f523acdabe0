// FILE: src/internal/core/const.go
package core

import "time"

// Remote push defaults
const (
	DefaultBatchIntervalMS = 5000
	DefaultBatchSize       = 100
	DefaultRetries         = 3
	DefaultTimeoutMS       = 10000
	DefaultPushPath        = "/loki/api/v1/push"

	// RetryBaseDelay is the delay before the first retry; it doubles per attempt.
	RetryBaseDelay = 1000 * time.Millisecond
)

// Reserved line fields
const (
	FieldTimestamp = "timestamp"
	FieldLevel     = "level"
	FieldService   = "service"
	FieldMessage   = "message"

	FieldError      = "error"
	FieldErrorName  = "errorName"
	FieldErrorStack = "errorStack"

	// FieldEvent is the optional metadata key promoted to a stream label.
	FieldEvent = "event"
)

// Stream label names
const (
	LabelService     = "service"
	LabelLevel       = "level"
	LabelEvent       = "event"
	LabelEnvironment = "environment"
	LabelHost        = "host"
)
