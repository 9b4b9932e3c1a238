package h1

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Headers is an ordered, case-insensitive multi-value header mapping.
// Lookups fold ASCII case; insertion order is preserved for iteration.
type Headers struct {
	pairs [][2]string
}

// Add appends a header pair, preserving insertion order.
func (h *Headers) Add(name, value string) {
	h.pairs = append(h.pairs, [2]string{name, value})
}

// Get returns the first value for name, folding ASCII case.
func (h *Headers) Get(name string) (string, bool) {
	for _, p := range h.pairs {
		if asciiEqualFold([]byte(p[0]), name) {
			return p[1], true
		}
	}
	return "", false
}

// Values returns all values for name in arrival order.
func (h *Headers) Values(name string) []string {
	var vals []string
	for _, p := range h.pairs {
		if asciiEqualFold([]byte(p[0]), name) {
			vals = append(vals, p[1])
		}
	}
	return vals
}

// Len returns the number of header pairs.
func (h *Headers) Len() int {
	return len(h.pairs)
}

// All returns the underlying ordered pairs. The slice must not be mutated.
func (h *Headers) All() [][2]string {
	return h.pairs
}

// ResponseHead holds the parsed status line and headers of a response.
type ResponseHead struct {
	Status  int
	Proto   string
	Headers Headers

	// Framing fields extracted while parsing; consumed by the framer only.
	contentLength int64
	chunked       bool
	connClose     bool
}

// Response is a complete HTTP/1.1 response: the head plus the finalized
// body. It is immutable once constructed and owned by the future it is
// delivered through.
type Response struct {
	Head ResponseHead
	// Body is the concatenation, in arrival order, of every body chunk of
	// the exchange. Nil means the response carried no body at all, as
	// opposed to an empty one.
	Body []byte
}

// Status returns the response status code.
func (r *Response) Status() int {
	return r.Head.Status
}

// Proto returns the protocol version from the status line, e.g. "HTTP/1.1".
func (r *Response) Proto() string {
	return r.Head.Proto
}

// Header returns the first value of the named header, or "".
func (r *Response) Header(name string) string {
	v, _ := r.Head.Headers.Get(name)
	return v
}

// BodyString returns the body as a string ("" for no body).
func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("h1: empty body")
	}
	return json.Unmarshal(r.Body, v)
}

// DecodedBody returns the body decoded according to the Content-Encoding
// header. Identity and absent encodings return the body as-is; gzip,
// deflate, br and zstd are decoded in full.
func (r *Response) DecodedBody() ([]byte, error) {
	enc, ok := r.Head.Headers.Get("Content-Encoding")
	if !ok || enc == "" || asciiEqualFold([]byte(enc), "identity") {
		return r.Body, nil
	}

	var (
		rd  io.Reader
		err error
	)
	raw := bytes.NewReader(r.Body)
	switch {
	case asciiEqualFold([]byte(enc), "gzip"):
		rd, err = gzip.NewReader(raw)
	case asciiEqualFold([]byte(enc), "deflate"):
		rd = flate.NewReader(raw)
	case asciiEqualFold([]byte(enc), "br"):
		rd = brotli.NewReader(raw)
	case asciiEqualFold([]byte(enc), "zstd"):
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(raw)
		if err == nil {
			defer dec.Close()
			rd = dec.IOReadCloser()
		}
	default:
		return nil, fmt.Errorf("h1: unsupported content-encoding %q", enc)
	}
	if err != nil {
		return nil, fmt.Errorf("h1: decode %s body: %w", enc, err)
	}

	decoded, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("h1: decode %s body: %w", enc, err)
	}
	return decoded, nil
}
