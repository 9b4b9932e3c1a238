// Package h1 implements the client half of the HTTP/1.1 request/response
// protocol over a single established connection: the per-connection
// exchange state machine, the inbound response framer and the outbound
// request writer.
package h1

import (
	"bytes"
	"math"
	"strconv"
)

// Parser provides incremental, zero-copy HTTP/1.1 response head and
// chunked-body parsing. A consumed count of 0 with a nil error means more
// data is needed; the caller keeps the unparsed remainder buffered.
type Parser struct {
	buf []byte
	pos int
}

// Reset resets the parser with new buffer data.
func (p *Parser) Reset(buf []byte) {
	p.buf = buf
	p.pos = 0
}

// ParseHead parses a response status line and headers from the buffer.
// Returns the number of bytes consumed, or 0 if the head is incomplete.
// Framing fields (content length, chunked encoding, connection close) are
// extracted into the head as the headers stream past.
func (p *Parser) ParseHead(head *ResponseHead) (int, error) {
	complete, err := p.parseStatusLine(head)
	if err != nil {
		return 0, err
	}
	if !complete {
		return 0, nil
	}

	head.contentLength = -1
	complete, err = p.parseHeaders(head)
	if err != nil {
		return 0, err
	}
	if !complete {
		return 0, nil
	}
	return p.pos, nil
}

// parseStatusLine parses VERSION SP CODE SP REASON CRLF, advancing p.pos.
// Returns complete=false if more data is needed.
func (p *Parser) parseStatusLine(head *ResponseHead) (bool, error) {
	lineEnd := bytes.Index(p.buf[p.pos:], crlf)
	if lineEnd == -1 {
		return false, nil
	}
	line := p.buf[p.pos : p.pos+lineEnd]
	p.pos += lineEnd + 2

	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return false, frameErr(StateAwaitingHead, "invalid status line")
	}
	proto := line[:sp]
	if !bytes.Equal(proto, []byte("HTTP/1.1")) && !bytes.Equal(proto, []byte("HTTP/1.0")) {
		return false, frameErr(StateAwaitingHead, "unsupported protocol %q", proto)
	}
	head.Proto = string(proto)

	rest := line[sp+1:]
	if len(rest) < 3 {
		return false, frameErr(StateAwaitingHead, "invalid status line")
	}
	code, ok := parseInt64Bytes(rest[:3])
	if !ok || code < 100 || code > 599 {
		return false, frameErr(StateAwaitingHead, "invalid status code %q", rest[:3])
	}
	head.Status = int(code)
	// The reason phrase, if any, is informational only and is discarded.
	return true, nil
}

// parseHeaders parses headers until CRLF CRLF, advancing p.pos.
// Returns complete=false if more data is needed.
func (p *Parser) parseHeaders(head *ResponseHead) (bool, error) {
	for {
		lineEnd := bytes.Index(p.buf[p.pos:], crlf)
		if lineEnd == -1 {
			return false, nil
		}
		line := p.buf[p.pos : p.pos+lineEnd]
		p.pos += lineEnd + 2
		if len(line) == 0 {
			return true, nil
		}
		colonIdx := bytes.IndexByte(line, ':')
		if colonIdx == -1 {
			return false, frameErr(StateAwaitingHead, "invalid header line")
		}
		rawName := bytes.TrimSpace(line[:colonIdx])
		rawValue := bytes.TrimSpace(line[colonIdx+1:])
		if err := appendHeader(head, rawName, rawValue); err != nil {
			return false, err
		}
	}
}

// appendHeader records a single header and extracts framing fields.
func appendHeader(head *ResponseHead, rawName, rawValue []byte) error {
	head.Headers.Add(string(rawName), string(rawValue))

	switch {
	case asciiEqualFold(rawName, "content-length"):
		cl, ok := parseInt64Bytes(rawValue)
		if !ok {
			return frameErr(StateAwaitingHead, "invalid content-length %q", rawValue)
		}
		head.contentLength = cl
	case asciiEqualFold(rawName, "transfer-encoding"):
		if asciiContainsFoldBytes(rawValue, "chunked") {
			head.chunked = true
			head.contentLength = -1
		}
	case asciiEqualFold(rawName, "connection"):
		if asciiContainsFoldBytes(rawValue, "close") {
			head.connClose = true
		}
	}
	return nil
}

// ParseChunk parses one chunk of a chunked transfer encoding body.
// Returns the decoded chunk data and bytes consumed. A nil chunk with a
// positive consumed count is the terminal zero-size chunk; consumed 0
// means more data is needed.
func (p *Parser) ParseChunk() ([]byte, int, error) {
	if p.pos >= len(p.buf) {
		return nil, 0, nil // Need more data
	}

	startPos := p.pos

	// Chunk size line: SIZE[;extensions]\r\n
	lineEnd := bytes.Index(p.buf[p.pos:], crlf)
	if lineEnd == -1 {
		return nil, 0, nil
	}
	sizeLine := p.buf[p.pos : p.pos+lineEnd]
	p.pos += lineEnd + 2

	if semiIdx := bytes.IndexByte(sizeLine, ';'); semiIdx != -1 {
		sizeLine = sizeLine[:semiIdx]
	}
	size, err := strconv.ParseInt(string(bytes.TrimSpace(sizeLine)), 16, 64)
	if err != nil || size < 0 {
		return nil, 0, frameErr(StateAssemblingBody, "invalid chunk size %q", sizeLine)
	}

	// Size 0 means last chunk; consume the trailing CRLF (trailers are
	// not supported and treated as framing noise).
	if size == 0 {
		if p.pos+2 > len(p.buf) {
			p.pos = startPos
			return nil, 0, nil
		}
		p.pos += 2
		return nil, p.pos - startPos, nil
	}

	// Whole chunk plus its CRLF must be buffered.
	if p.pos+int(size)+2 > len(p.buf) {
		p.pos = startPos
		return nil, 0, nil
	}

	chunk := make([]byte, size)
	copy(chunk, p.buf[p.pos:p.pos+int(size)])
	p.pos += int(size) + 2

	return chunk, p.pos - startPos, nil
}

// asciiEqualFold reports whether b equals s under ASCII case-insensitive comparison
func asciiEqualFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		cb := b[i]
		cs := s[i]
		if 'A' <= cb && cb <= 'Z' {
			cb |= 0x20
		}
		if 'A' <= cs && cs <= 'Z' {
			cs |= 0x20
		}
		if cb != cs {
			return false
		}
	}
	return true
}

// asciiContainsFoldBytes reports whether b contains sub (ASCII case-insensitive)
func asciiContainsFoldBytes(b []byte, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	m := len(sub)
	if m > len(b) {
		return false
	}
	for i := 0; i <= len(b)-m; i++ {
		match := true
		for j := 0; j < m; j++ {
			cb := b[i+j]
			cs := sub[j]
			if 'A' <= cb && cb <= 'Z' {
				cb |= 0x20
			}
			if 'A' <= cs && cs <= 'Z' {
				cs |= 0x20
			}
			if cb != cs {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// parseInt64Bytes parses a base-10 int64 from ASCII bytes, returning ok=false on error
func parseInt64Bytes(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n int64
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		if n > (math.MaxInt64-int64(c-'0'))/10 {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}
