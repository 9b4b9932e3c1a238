package courier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/peznauts/courier/internal/h1"
)

// loopbackSink captures writes like an established transport connection.
type loopbackSink struct {
	mu     sync.Mutex
	writes [][]byte
}

func (s *loopbackSink) AsyncWrite(buf []byte, cb gnet.AsyncCallback) error {
	s.mu.Lock()
	b := make([]byte, len(buf))
	copy(b, buf)
	s.writes = append(s.writes, b)
	s.mu.Unlock()
	if cb != nil {
		_ = cb(nil, nil)
	}
	return nil
}

func (s *loopbackSink) Close() error { return nil }

func newTestClient(t *testing.T, config Config) (*Client, *h1.Conn) {
	t.Helper()
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	conn := h1.NewConn("example.test:80", config.Logger, nil)
	conn.Activate(&loopbackSink{})
	return &Client{conn: conn, config: config}, conn
}

func TestClientDo(t *testing.T) {
	client, conn := newTestClient(t, DefaultConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Simulate the peer once the request is in flight.
		for conn.State() != h1.StateAwaitingHead {
			time.Sleep(time.Millisecond)
		}
		if err := conn.HandleData([]byte("HTTP/1.1 200 OK\r\ncontent-length: 2\r\n\r\nok")); err != nil {
			t.Errorf("HandleData failed: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Get(ctx, "/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Status() != 200 || resp.BodyString() != "ok" {
		t.Errorf("Expected 200 %q, got %d %q", "ok", resp.Status(), resp.BodyString())
	}
	<-done
}

func TestClientRejectsConcurrentExchange(t *testing.T) {
	client, _ := newTestClient(t, DefaultConfig())

	first := client.Respond(NewRequest("GET", "/", nil))
	second := client.Respond(NewRequest("GET", "/", nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := second.Wait(ctx); !errors.Is(err, ErrRequestPending) {
		t.Errorf("Expected ErrRequestPending, got %v", err)
	}

	select {
	case <-first.Done():
		t.Error("First exchange must not be affected by the rejected second one")
	default:
	}
}

func TestClientCloseFailsPending(t *testing.T) {
	client, _ := newTestClient(t, DefaultConfig())

	fut := client.Respond(NewRequest("GET", "/", nil))
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := fut.Wait(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	if _, err := client.Get(ctx, "/"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after close, got %v", err)
	}
}

func TestTracingInjectsTraceparent(t *testing.T) {
	config := DefaultConfig()
	config.EnableTracing = true
	config.DisableMetrics = true
	client, conn := newTestClient(t, config)

	req := NewRequest("GET", "/traced", nil)
	fut := client.RespondContext(context.Background(), req)

	// With the global no-op tracer provider nothing is injected; the
	// traced path must still complete the exchange normally.
	if err := conn.HandleData([]byte("HTTP/1.1 200 OK\r\ncontent-length: 0\r\n\r\n")); err != nil {
		t.Fatalf("HandleData failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := fut.Wait(ctx); err != nil {
		t.Fatalf("Traced exchange failed: %v", err)
	}
}

func TestRequestCarrier(t *testing.T) {
	req := NewRequest("GET", "/", nil)
	carrier := requestCarrier{req: req}

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Expected carrier roundtrip, got %q", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Expected empty value for missing key, got %q", got)
	}
	if keys := carrier.Keys(); len(keys) != 1 || keys[0] != "traceparent" {
		t.Errorf("Expected keys [traceparent], got %v", keys)
	}
}
