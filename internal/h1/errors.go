package h1

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned for any operation attempted after the
	// connection has been closed, whether by a transport error or by the
	// caller.
	ErrClosed = errors.New("h1: connection closed")

	// ErrRequestPending is returned when a request is issued while another
	// one is still outstanding. The protocol supports a single exchange at
	// a time; callers that need queuing must provide it themselves.
	ErrRequestPending = errors.New("h1: request already pending")
)

// ProtocolError reports an inbound event that arrived in a state which
// cannot accept it, or inbound bytes the framer could not make sense of.
// It means the peer (or the framing layer) broke the HTTP/1.1 contract and
// is always fatal for the connection, never a recoverable per-request
// failure.
type ProtocolError struct {
	Event  string // head, body, end, frame
	State  State
	Detail string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("h1: protocol violation: %s event in state %s: %s", e.Event, e.State, e.Detail)
	}
	return fmt.Sprintf("h1: protocol violation: %s event in state %s", e.Event, e.State)
}

// protocolErr builds a ProtocolError for an event received in the wrong state.
func protocolErr(event string, state State) *ProtocolError {
	return &ProtocolError{Event: event, State: state}
}

// frameErr builds a ProtocolError for malformed inbound bytes.
func frameErr(state State, format string, args ...any) *ProtocolError {
	return &ProtocolError{Event: "frame", State: state, Detail: fmt.Sprintf(format, args...)}
}
