package domain

import (
	"errors"
	"fmt"
)

// Client-facing messages with fixed wording.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgAPIKeyMissing    = "Server configuration error: API Key missing"
	MsgUpstreamGeneric  = "Error fetching from Google API"
)

// ErrMethodNotAllowed is returned for any verb other than POST.
var ErrMethodNotAllowed = errors.New(MsgMethodNotAllowed)

// ConfigurationError means the server is missing something only an
// operator can fix.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewAPIKeyMissingError reports an unset upstream credential.
func NewAPIKeyMissingError() *ConfigurationError {
	return &ConfigurationError{Message: MsgAPIKeyMissing}
}

// FailureKind tells where in the relay a RelayFailure originated.
type FailureKind string

const (
	FailureDecode    FailureKind = "decode"
	FailureTransport FailureKind = "transport"
	FailureUpstream  FailureKind = "upstream"
	FailureShape     FailureKind = "shape"
)

// RelayFailure is the single failure type of the translate-and-call path.
// Error returns the message that is handed back to the caller.
type RelayFailure struct {
	Kind       FailureKind
	Message    string
	StatusCode int
	Err        error
}

func (e *RelayFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return MsgUpstreamGeneric
}

func (e *RelayFailure) Unwrap() error {
	return e.Err
}

// NewDecodeFailure wraps an error reading the inbound body.
func NewDecodeFailure(err error) *RelayFailure {
	return &RelayFailure{Kind: FailureDecode, Err: err}
}

// NewTransportFailure wraps an error issuing the upstream call or reading
// its body.
func NewTransportFailure(err error) *RelayFailure {
	return &RelayFailure{Kind: FailureTransport, Err: err}
}

// NewUpstreamFailure reports a non-success upstream status. An empty
// message falls back to MsgUpstreamGeneric.
func NewUpstreamFailure(statusCode int, message string) *RelayFailure {
	if message == "" {
		message = MsgUpstreamGeneric
	}
	return &RelayFailure{Kind: FailureUpstream, StatusCode: statusCode, Message: message}
}

// NewShapeFailure reports a success response without the expected reply path.
func NewShapeFailure(path string) *RelayFailure {
	return &RelayFailure{
		Kind:    FailureShape,
		Message: fmt.Sprintf("unexpected upstream response: missing %s", path),
	}
}

// AsRelayFailure normalizes any error into a RelayFailure.
func AsRelayFailure(err error) *RelayFailure {
	var rf *RelayFailure
	if errors.As(err, &rf) {
		return rf
	}
	return &RelayFailure{Kind: FailureTransport, Err: err}
}
