package courier

import (
	"context"
	"time"

	"github.com/peznauts/courier/internal/h1"
)

// Client is a handle on one active connection. It supports a single
// outstanding exchange at a time: issuing a request while another is in
// flight fails with ErrRequestPending rather than queueing, so response
// correlation follows from the protocol state machine alone.
type Client struct {
	conn   *h1.Conn
	config Config
}

// Respond issues a request and returns its completion handle.
func (c *Client) Respond(req *Request) *Future {
	return c.RespondContext(context.Background(), req)
}

// RespondContext issues a request, propagating trace context from ctx into
// the outbound headers when tracing is enabled. ctx does not cancel the
// exchange; use Future.Wait for caller-side deadlines.
func (c *Client) RespondContext(ctx context.Context, req *Request) *Future {
	var endSpan func(*Response, error)
	if c.config.EnableTracing {
		endSpan = startExchangeSpan(ctx, req)
	}

	start := time.Now()
	if !c.config.DisableMetrics {
		exchangesInFlight.Inc()
	}
	fut := c.conn.Respond(req)

	if !c.config.DisableMetrics || endSpan != nil {
		method := req.Method
		fut.OnComplete(func(resp *Response, err error) {
			if !c.config.DisableMetrics {
				exchangesInFlight.Dec()
				observeExchange(method, start, resp, err)
			}
			if endSpan != nil {
				endSpan(resp, err)
			}
		})
	}
	return fut
}

// Do issues a request and waits for its response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.RespondContext(ctx, req).Wait(ctx)
}

// Get is shorthand for a bodyless GET exchange.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest("GET", path, nil))
}

// Post is shorthand for a POST exchange carrying body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, NewRequest("POST", path, body))
}

// Close closes the connection. A pending exchange fails with ErrClosed.
func (c *Client) Close() error {
	return c.conn.Close()
}
