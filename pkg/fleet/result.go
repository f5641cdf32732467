// Package fleet orchestrates canonical operations across a set of
// heterogeneous network devices: command translation per vendor, pooled
// connections, concurrent per-device execution, and aggregation of the
// per-device outcomes into a single ordered response.
package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/netfleet/netfleet/pkg/util"
)

// ErrorKind classifies a per-device failure. Every failure maps to exactly
// one kind; summaries are computed from these tags, never from raw output.
type ErrorKind string

const (
	KindUnknownDevice        ErrorKind = "unknown-device"
	KindUnsupportedOperation ErrorKind = "unsupported-operation"
	KindConnectionFailure    ErrorKind = "connection-failure"
	KindExecutionTimeout     ErrorKind = "execution-timeout"
	KindRemoteExecution      ErrorKind = "remote-error"
)

// kindOf maps an error to its ErrorKind via the sentinel taxonomy.
func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, util.ErrExecutionTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return KindExecutionTimeout
	case errors.Is(err, util.ErrUnknownDevice):
		return KindUnknownDevice
	case errors.Is(err, util.ErrUnsupportedOperation):
		return KindUnsupportedOperation
	case errors.Is(err, util.ErrConnectionFailure):
		return KindConnectionFailure
	default:
		return KindRemoteExecution
	}
}

// ResultError is the failure half of a DeviceResult.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// DeviceResult is the outcome of one operation invocation on one device:
// either a success payload or a typed failure, never both.
type DeviceResult struct {
	Device  string
	Payload interface{}
	Error   *ResultError
	Elapsed time.Duration
}

// OK reports whether the result is a success.
func (r *DeviceResult) OK() bool {
	return r.Error == nil
}

// Status returns the wire status string.
func (r *DeviceResult) Status() string {
	if r.OK() {
		return "success"
	}
	return "error"
}

// MarshalJSON renders the documented per-device shape:
// {"status": ..., "payload"|"error": ..., "elapsed": ...}.
func (r *DeviceResult) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"status":  r.Status(),
		"elapsed": r.Elapsed.String(),
	}
	if r.OK() {
		out["payload"] = r.Payload
	} else {
		out["error"] = r.Error
	}
	return json.Marshal(out)
}

func success(device string, payload interface{}, elapsed time.Duration) *DeviceResult {
	return &DeviceResult{Device: device, Payload: payload, Elapsed: elapsed}
}

func failure(device string, err error, elapsed time.Duration) *DeviceResult {
	return &DeviceResult{
		Device:  device,
		Error:   &ResultError{Kind: kindOf(err), Message: err.Error()},
		Elapsed: elapsed,
	}
}

// Summary holds the derived counters of a Response.
//
// Healthy/Unhealthy/Unreachable refine the success/failure split: a device
// is unreachable when its failure was a connection failure or timeout, and
// unhealthy on any other failure kind.
type Summary struct {
	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Healthy     int `json:"healthy"`
	Unhealthy   int `json:"unhealthy"`
	Unreachable int `json:"unreachable"`
}

// Response is the aggregated outcome of one fleet invocation. Results keep
// the original target order regardless of completion order, so output is
// deterministic. Immutable once returned.
type Response struct {
	Operation string
	Results   []*DeviceResult
	Summary   Summary
	Elapsed   time.Duration
}

// Result returns the outcome for a device name, or nil.
func (r *Response) Result(device string) *DeviceResult {
	for _, res := range r.Results {
		if res.Device == device {
			return res
		}
	}
	return nil
}

// Devices returns the device names in response order.
func (r *Response) Devices() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Device
	}
	return names
}

// MarshalJSON renders the response with the devices object keyed by device
// name in target order.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"operation":`)
	writeJSON(&buf, r.Operation)
	buf.WriteString(`,"devices":{`)
	for i, res := range r.Results {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSON(&buf, res.Device)
		buf.WriteByte(':')
		if err := writeJSONErr(&buf, res); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`},"summary":`)
	if err := writeJSONErr(&buf, r.Summary); err != nil {
		return nil, err
	}
	buf.WriteString(`,"elapsed":`)
	writeJSON(&buf, r.Elapsed.String())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v interface{}) {
	// Strings and plain values cannot fail to marshal.
	b, _ := json.Marshal(v)
	buf.Write(b)
}

func writeJSONErr(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling fleet response: %w", err)
	}
	buf.Write(b)
	return nil
}
