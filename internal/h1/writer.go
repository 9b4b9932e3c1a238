package h1

import (
	"strconv"
	"sync"
)

// Pre-allocated wire fragments to avoid allocations on the hot path.
var (
	httpSuffix          = []byte(" HTTP/1.1\r\n")
	headerHost          = []byte("host: ")
	headerContentLength = []byte("content-length: ")
	headerSep           = []byte(": ")
	crlf                = []byte("\r\n")

	// Buffer pool for request assembly. Buffers go back once the
	// transport's async write completes.
	requestBufferPool = sync.Pool{
		New: func() any {
			b := make([]byte, 0, 4096)
			return &b
		},
	}
)

// appendRequest assembles the full request (request line, headers, body)
// into a single buffer. Host and Content-Length are synthesized: Host from
// the request override or the connection authority, Content-Length from the
// body length (0 when there is no body). Caller-provided copies of either
// are dropped, and no chunked framing is ever produced for outbound
// requests.
func appendRequest(buf []byte, req *Request, authority string) []byte {
	// Estimate final size to minimize reallocations.
	expected := len(req.Method) + 1 + len(req.Path) + len(httpSuffix) +
		len(headerHost) + len(authority) + 2 +
		len(headerContentLength) + 20 + 2 +
		len(req.Body)
	for _, h := range req.Headers {
		expected += len(h[0]) + 2 + len(h[1]) + 2
	}
	if cap(buf)-len(buf) < expected {
		tmp := make([]byte, len(buf), len(buf)+expected)
		copy(tmp, buf)
		buf = tmp
	}

	// Request line
	buf = append(buf, req.Method...)
	buf = append(buf, ' ')
	buf = append(buf, req.Path...)
	buf = append(buf, httpSuffix...)

	// Host
	host := req.Host
	if host == "" {
		host = authority
	}
	buf = append(buf, headerHost...)
	buf = append(buf, host...)
	buf = append(buf, crlf...)

	// Content-Length equals the byte length of the body, 0 without one.
	buf = append(buf, headerContentLength...)
	buf = strconv.AppendInt(buf, int64(len(req.Body)), 10)
	buf = append(buf, crlf...)

	// Caller headers, in insertion order.
	for _, h := range req.Headers {
		if asciiEqualFold([]byte(h[0]), "host") || asciiEqualFold([]byte(h[0]), "content-length") {
			continue
		}
		buf = append(buf, h[0]...)
		buf = append(buf, headerSep...)
		buf = append(buf, h[1]...)
		buf = append(buf, crlf...)
	}

	// End of headers
	buf = append(buf, crlf...)

	if len(req.Body) > 0 {
		buf = append(buf, req.Body...)
	}
	return buf
}
