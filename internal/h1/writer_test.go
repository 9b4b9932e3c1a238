package h1

import (
	"bytes"
	"strings"
	"testing"
)

func TestAppendRequestWireFormat(t *testing.T) {
	req := &Request{Method: "POST", Path: "/x", Body: []byte("hello")}
	req.AddHeader("content-type", "text/plain")
	req.AddHeader("x-one", "1")

	wire := string(appendRequest(nil, req, "example.test:80"))
	want := "POST /x HTTP/1.1\r\n" +
		"host: example.test:80\r\n" +
		"content-length: 5\r\n" +
		"content-type: text/plain\r\n" +
		"x-one: 1\r\n" +
		"\r\n" +
		"hello"
	if wire != want {
		t.Errorf("Unexpected wire format:\n got: %q\nwant: %q", wire, want)
	}
}

func TestAppendRequestNoBody(t *testing.T) {
	wire := appendRequest(nil, &Request{Method: "GET", Path: "/"}, "example.test:80")
	if !bytes.Contains(wire, []byte("content-length: 0\r\n")) {
		t.Errorf("Expected content-length: 0, got:\n%s", wire)
	}
	if !bytes.HasSuffix(wire, []byte("\r\n\r\n")) {
		t.Errorf("Expected request to end at the header terminator, got:\n%s", wire)
	}
}

func TestAppendRequestRecycledBuffer(t *testing.T) {
	// A pooled buffer carries leftover capacity from a longer request;
	// reusing it must not leak bytes into the next one.
	long := &Request{Method: "POST", Path: "/long", Body: bytes.Repeat([]byte("z"), 256)}
	buf := appendRequest(nil, long, "example.test:80")

	wire := string(appendRequest(buf[:0], &Request{Method: "GET", Path: "/"}, "example.test:80"))
	want := "GET / HTTP/1.1\r\n" +
		"host: example.test:80\r\n" +
		"content-length: 0\r\n" +
		"\r\n"
	if wire != want {
		t.Errorf("Unexpected wire format from recycled buffer:\n got: %q\nwant: %q", wire, want)
	}
}

func TestAppendRequestHostOverride(t *testing.T) {
	req := &Request{Method: "GET", Path: "/", Host: "override.test"}
	wire := string(appendRequest(nil, req, "example.test:80"))
	if !strings.Contains(wire, "host: override.test\r\n") {
		t.Errorf("Expected host override, got:\n%s", wire)
	}
}

func TestAppendRequestDropsSynthesizedDuplicates(t *testing.T) {
	req := &Request{Method: "POST", Path: "/", Body: []byte("ab")}
	req.AddHeader("Host", "spoofed.test")
	req.AddHeader("Content-Length", "999")

	wire := string(appendRequest(nil, req, "example.test:80"))
	if strings.Contains(wire, "spoofed.test") {
		t.Errorf("Expected caller host header dropped, got:\n%s", wire)
	}
	if strings.Contains(wire, "999") {
		t.Errorf("Expected caller content-length dropped, got:\n%s", wire)
	}
	if !strings.Contains(wire, "content-length: 2\r\n") {
		t.Errorf("Expected synthesized content-length: 2, got:\n%s", wire)
	}
}

func TestAppendRequestPreservesHeaderOrder(t *testing.T) {
	req := &Request{Method: "GET", Path: "/"}
	req.AddHeader("x-b", "2")
	req.AddHeader("x-a", "1")
	req.AddHeader("x-c", "3")

	wire := string(appendRequest(nil, req, "example.test:80"))
	b, a, c := strings.Index(wire, "x-b:"), strings.Index(wire, "x-a:"), strings.Index(wire, "x-c:")
	if !(b < a && a < c) {
		t.Errorf("Expected insertion order preserved, got:\n%s", wire)
	}
}
