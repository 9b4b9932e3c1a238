package h1

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

func TestHeadersLookup(t *testing.T) {
	var h Headers
	h.Add("Content-Type", "text/plain")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	if v, ok := h.Get("content-type"); !ok || v != "text/plain" {
		t.Errorf("Expected case-insensitive lookup, got %q ok=%v", v, ok)
	}
	if _, ok := h.Get("missing"); ok {
		t.Error("Expected missing header lookup to fail")
	}
	if vals := h.Values("set-cookie"); len(vals) != 2 || vals[0] != "a=1" || vals[1] != "b=2" {
		t.Errorf("Expected ordered values [a=1 b=2], got %v", vals)
	}
	if h.Len() != 3 {
		t.Errorf("Expected 3 pairs, got %d", h.Len())
	}
}

func TestResponseJSON(t *testing.T) {
	resp := &Response{Body: []byte(`{"name":"courier","port":8080}`)}

	var decoded struct {
		Name string `json:"name"`
		Port int    `json:"port"`
	}
	if err := resp.JSON(&decoded); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if decoded.Name != "courier" || decoded.Port != 8080 {
		t.Errorf("Unexpected decode result: %+v", decoded)
	}

	empty := &Response{}
	if err := empty.JSON(&decoded); err == nil {
		t.Error("Expected error decoding empty body")
	}
}

func TestDecodedBodyIdentity(t *testing.T) {
	resp := &Response{Body: []byte("plain")}
	body, err := resp.DecodedBody()
	if err != nil {
		t.Fatalf("DecodedBody failed: %v", err)
	}
	if string(body) != "plain" {
		t.Errorf("Expected passthrough body, got %q", body)
	}
}

func TestDecodedBodyGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("compressed payload")); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}

	resp := &Response{Body: buf.Bytes()}
	resp.Head.Headers.Add("Content-Encoding", "gzip")

	body, err := resp.DecodedBody()
	if err != nil {
		t.Fatalf("DecodedBody failed: %v", err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("Expected decoded payload, got %q", body)
	}
}

func TestDecodedBodyBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	if _, err := bw.Write([]byte("brotli payload")); err != nil {
		t.Fatalf("brotli write failed: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("brotli close failed: %v", err)
	}

	resp := &Response{Body: buf.Bytes()}
	resp.Head.Headers.Add("Content-Encoding", "br")

	body, err := resp.DecodedBody()
	if err != nil {
		t.Fatalf("DecodedBody failed: %v", err)
	}
	if string(body) != "brotli payload" {
		t.Errorf("Expected decoded payload, got %q", body)
	}
}

func TestDecodedBodyUnknownEncoding(t *testing.T) {
	resp := &Response{Body: []byte("??")}
	resp.Head.Headers.Add("Content-Encoding", "snappy")
	if _, err := resp.DecodedBody(); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}
