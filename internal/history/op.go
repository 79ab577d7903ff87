// Package history holds the operation log produced by a test run and the
// decoders for the per-workload value payloads carried by each operation.
package history

import (
	"encoding/json"
	"strings"
)

// Type is the lifecycle state of an operation record.
type Type string

const (
	Invoke Type = "invoke"
	Ok     Type = "ok"
	Fail   Type = "fail"
	Info   Type = "info"
)

// Kind is the function an operation applies, e.g. "read" or "add".
type Kind string

const (
	Read     Kind = "read"
	Add      Kind = "add"
	Write    Kind = "write"
	Cas      Kind = "cas"
	Transfer Kind = "transfer"
)

// ErrorClass is the failure classification attached upstream to a
// completion record.
type ErrorClass string

const (
	ErrNone           ErrorClass = ""
	ErrRetry          ErrorClass = "retry"
	ErrAbortUncertain ErrorClass = "abort-uncertain"
	ErrTimeout        ErrorClass = "timeout"
	ErrOther          ErrorClass = "other"
)

// Operation is a single record of the history JSON file
type Operation struct {
	Index   int             `json:"index"`
	Process int64           `json:"process"`
	Type    Type            `json:"type"`
	F       Kind            `json:"f"`
	Value   json.RawMessage `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
	Time    int64           `json:"time"`
}

// IsInvoke reports whether op is an invocation record.
func (op Operation) IsInvoke() bool { return op.Type == Invoke }

// IsOk reports whether op is a successful completion.
func (op Operation) IsOk() bool { return op.Type == Ok }

// ErrorClass classifies the error string of op. The upstream transport
// writes the class first, optionally followed by ": <detail>".
func (op Operation) ErrorClass() ErrorClass {
	if op.Error == "" {
		return ErrNone
	}
	for _, c := range []ErrorClass{ErrAbortUncertain, ErrRetry, ErrTimeout} {
		if op.Error == string(c) || strings.HasPrefix(op.Error, string(c)+":") {
			return c
		}
	}
	return ErrOther
}
