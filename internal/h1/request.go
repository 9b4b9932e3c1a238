package h1

import (
	"fmt"

	"golang.org/x/net/http/httpguts"
)

// Request represents an outbound HTTP/1.1 request.
type Request struct {
	Method string
	Path   string
	// Host overrides the connection's target authority when non-empty.
	Host string
	// Headers holds ordered (name, value) pairs exactly as they will be
	// written. Host and Content-Length are synthesized by the writer and
	// must not be supplied here; caller-provided copies are dropped.
	Headers [][2]string
	// Body is the full request payload, or nil for a bodyless request.
	Body []byte
}

// AddHeader appends a header pair, preserving insertion order.
func (r *Request) AddHeader(name, value string) {
	r.Headers = append(r.Headers, [2]string{name, value})
}

// Validate checks the request line fields and every header pair against the
// HTTP/1.1 grammar. It runs before any byte is written so a malformed
// request never reaches the wire.
func (r *Request) Validate() error {
	if r.Method == "" {
		return fmt.Errorf("h1: empty request method")
	}
	for i := 0; i < len(r.Method); i++ {
		if !httpguts.IsTokenRune(rune(r.Method[i])) {
			return fmt.Errorf("h1: invalid request method %q", r.Method)
		}
	}
	if r.Path == "" {
		return fmt.Errorf("h1: empty request path")
	}
	for _, h := range r.Headers {
		if !httpguts.ValidHeaderFieldName(h[0]) {
			return fmt.Errorf("h1: invalid header name %q", h[0])
		}
		if !httpguts.ValidHeaderFieldValue(h[1]) {
			return fmt.Errorf("h1: invalid header value for %q", h[0])
		}
	}
	return nil
}

// wantsBody reports whether a response to this request may carry a body.
// Responses to HEAD never do, regardless of their framing headers.
func (r *Request) wantsBody() bool {
	return r.Method != "HEAD"
}
