package api

import (
	"errors"
	"fmt"
)

// ErrTransport reports that no usable response came back at all, e.g. a
// connection failure or a response without headers.
var ErrTransport = errors.New("steamlytics: invalid response")

// ErrNotReady is returned by operations issued before the account probe
// has completed.
var ErrNotReady = errors.New("steamlytics: client not ready")

// parseFailureMessage is delivered whenever a response body is not JSON.
const parseFailureMessage = "there was an error parsing the response; the server may be down"

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return "steamlytics: " + e.Message
	}
	return fmt.Sprintf("steamlytics: %s: %v", e.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// UpstreamError reports a parsed response whose success flag was false.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("steamlytics %s: %s", e.Endpoint, msg)
}

// CapabilityError reports an operation that needs a higher API level than
// the account has. It is returned before any request is made.
type CapabilityError struct {
	Operation string
	Required  int
	Level     int
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("steamlytics %s: %s plan required (api level %d, have %d)",
		e.Operation, PlanName(e.Required), e.Required, e.Level)
}

// InvalidArgumentError reports contradictory or malformed arguments. It is
// returned before any request is made.
type InvalidArgumentError struct {
	Operation string
	Field     string
	Reason    string
	Cause     error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("steamlytics %s: invalid %s: %s", e.Operation, e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Cause }

// ClientFailedError is returned by every operation on a client whose
// account probe failed. Cause is the probe error.
type ClientFailedError struct {
	Cause error
}

func (e *ClientFailedError) Error() string {
	return fmt.Sprintf("steamlytics: client unusable, account probe failed: %v", e.Cause)
}

func (e *ClientFailedError) Unwrap() error { return e.Cause }
