package courier

import (
	"github.com/peznauts/courier/internal/h1"
)

// Request is an outbound HTTP/1.1 request. Host and Content-Length are
// synthesized on the wire; see the field docs.
type Request = h1.Request

// Response is a complete HTTP/1.1 response: head plus finalized body.
type Response = h1.Response

// ResponseHead holds the parsed status line and header mapping.
type ResponseHead = h1.ResponseHead

// Headers is an ordered, case-insensitive multi-value header mapping.
type Headers = h1.Headers

// Future is the single-assignment completion handle of one exchange.
type Future = h1.Future

// ProtocolError reports an inbound event that broke the HTTP/1.1 framing
// contract. It is always fatal for the connection it occurred on.
type ProtocolError = h1.ProtocolError

var (
	// ErrClosed is returned for operations on a closed connection.
	ErrClosed = h1.ErrClosed

	// ErrRequestPending is returned when a request is issued while another
	// is still outstanding on the same connection.
	ErrRequestPending = h1.ErrRequestPending
)

// NewRequest builds a request with the given method, path and optional body.
func NewRequest(method, path string, body []byte) *Request {
	return &Request{Method: method, Path: path, Body: body}
}
