package h1

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"sync"
)

// TransportConn is the slice of the transport connection the handler needs:
// ordered async writes plus the ability to tear the connection down.
// gnet.Conn satisfies it.
type TransportConn interface {
	Sink
	Close() error
}

// bodyPhase tracks how the body of the in-flight response is framed.
type bodyPhase int

const (
	phaseHead       bodyPhase = iota // between responses, expecting a status line
	phaseLength                      // Content-Length body, `remaining` bytes left
	phaseChunked                     // chunked transfer encoding body
	phaseUntilClose                  // body delimited by connection close
)

// Conn is one client connection: the exchange handler plus the inbound
// framer that turns raw transport bytes into head, body-chunk and
// end-of-message events. All Handle* methods run on the connection's event
// loop; Respond and Close may be called from any goroutine.
type Conn struct {
	handler *Handler
	parser  Parser
	buffer  bytes.Buffer
	phase   bodyPhase
	// remaining counts undelivered Content-Length body bytes.
	remaining int64
	logger    *log.Logger

	// gmu guards gconn, which is bound on the event loop but read by
	// Close from arbitrary goroutines.
	gmu   sync.Mutex
	gconn TransportConn

	activated    chan struct{}
	activateOnce sync.Once
	closed       chan struct{}
	closeOnce    sync.Once
}

// NewConn creates a connection handler for the given authority (host:port),
// starting in the connecting state. dispatch runs completion callbacks off
// the event loop; nil spawns a goroutine per callback.
func NewConn(authority string, logger *log.Logger, dispatch func(func())) *Conn {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Conn{
		handler:   NewHandler(authority, logger, dispatch),
		logger:    logger,
		activated: make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// Respond issues a single request and returns its completion handle. See
// Handler.Respond for the single-outstanding-request contract.
func (c *Conn) Respond(req *Request) *Future {
	return c.handler.Respond(req)
}

// State returns the current protocol state.
func (c *Conn) State() State {
	return c.handler.State()
}

// WaitActive blocks until the transport signals activation, the connection
// fails, or ctx is done.
func (c *Conn) WaitActive(ctx context.Context) error {
	select {
	case <-c.activated:
		return nil
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Activate binds the established transport connection and flushes a request
// buffered while connecting, if any. Called from the event loop exactly
// once per connection.
func (c *Conn) Activate(gc TransportConn) {
	c.gmu.Lock()
	c.gconn = gc
	c.gmu.Unlock()
	c.handler.OnTransportActive(gc)
	c.activateOnce.Do(func() { close(c.activated) })
}

// HandleData consumes inbound transport bytes, framing them into protocol
// events for the handler. A returned error is a protocol violation; the
// transport closes the connection in response.
func (c *Conn) HandleData(data []byte) error {
	c.buffer.Write(data)

	for {
		switch c.phase {
		case phaseHead:
			if c.buffer.Len() == 0 {
				return nil
			}
			var head ResponseHead
			c.parser.Reset(c.buffer.Bytes())
			consumed, err := c.parser.ParseHead(&head)
			if err != nil {
				return c.fatal(err)
			}
			if consumed == 0 {
				// Incomplete head, wait for more traffic.
				return nil
			}
			c.buffer.Next(consumed)

			bodyless := !c.handler.pendingWantsBody() ||
				head.Status/100 == 1 || head.Status == 204 || head.Status == 304
			if err := c.handler.OnHead(head); err != nil {
				return c.fatal(err)
			}

			switch {
			case bodyless || head.contentLength == 0:
				if err := c.handler.OnEnd(); err != nil {
					return c.fatal(err)
				}
			case head.chunked:
				c.phase = phaseChunked
			case head.contentLength > 0:
				c.remaining = head.contentLength
				c.phase = phaseLength
			default:
				// No framing headers: the body runs until the peer
				// closes the connection.
				c.phase = phaseUntilClose
			}

		case phaseLength:
			if c.buffer.Len() == 0 {
				return nil
			}
			n := int64(c.buffer.Len())
			if n > c.remaining {
				n = c.remaining
			}
			if err := c.handler.OnBodyChunk(c.buffer.Next(int(n))); err != nil {
				return c.fatal(err)
			}
			c.remaining -= n
			if c.remaining == 0 {
				if err := c.handler.OnEnd(); err != nil {
					return c.fatal(err)
				}
				c.phase = phaseHead
			}

		case phaseChunked:
			c.parser.Reset(c.buffer.Bytes())
			chunk, consumed, err := c.parser.ParseChunk()
			if err != nil {
				return c.fatal(err)
			}
			if consumed == 0 {
				return nil
			}
			c.buffer.Next(consumed)
			if chunk == nil {
				// Terminal zero-size chunk.
				if err := c.handler.OnEnd(); err != nil {
					return c.fatal(err)
				}
				c.phase = phaseHead
			} else if err := c.handler.OnBodyChunk(chunk); err != nil {
				return c.fatal(err)
			}

		case phaseUntilClose:
			if c.buffer.Len() == 0 {
				return nil
			}
			if err := c.handler.OnBodyChunk(c.buffer.Next(c.buffer.Len())); err != nil {
				return c.fatal(err)
			}
		}
	}
}

// HandleClose reports that the transport connection is gone. A clean close
// while a close-delimited body is in flight finalizes that body; anything
// else fails the pending exchange, if one exists. The transport reports a
// clean remote close as io.EOF, so EOF here is a normal end of stream, not
// a failure.
func (c *Conn) HandleClose(err error) {
	if c.phase == phaseUntilClose && (err == nil || errors.Is(err, io.EOF)) {
		if endErr := c.handler.OnEnd(); endErr != nil {
			c.logger.Printf("h1: finalizing close-delimited body: %v", endErr)
		}
		c.phase = phaseHead
		err = nil
	}
	c.handler.OnTransportError(err)
	c.closeOnce.Do(func() { close(c.closed) })
}

// fatal tears down the connection after a protocol violation: the pending
// exchange fails with the violation and the transport connection is closed.
func (c *Conn) fatal(err error) error {
	c.logger.Printf("h1: %v", err)
	c.handler.OnTransportError(err)
	c.closeOnce.Do(func() { close(c.closed) })
	if gc := c.transportConn(); gc != nil {
		_ = gc.Close()
	}
	return err
}

func (c *Conn) transportConn() TransportConn {
	c.gmu.Lock()
	defer c.gmu.Unlock()
	return c.gconn
}

// Close closes the connection. Any pending exchange fails with ErrClosed
// and every subsequent Respond fails immediately.
func (c *Conn) Close() error {
	c.handler.OnTransportError(ErrClosed)
	c.closeOnce.Do(func() { close(c.closed) })
	if gc := c.transportConn(); gc != nil {
		return gc.Close()
	}
	return nil
}
