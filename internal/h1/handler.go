package h1

import (
	"bytes"
	"io"
	"log"
	"sync"

	"github.com/panjf2000/gnet/v2"
)

// Sink is the outbound half of the transport: ordered, asynchronous byte
// writes onto the established connection. gnet.Conn satisfies it.
type Sink interface {
	AsyncWrite(buf []byte, callback gnet.AsyncCallback) error
}

// Handler owns the per-connection protocol state: the single pending
// exchange slot, the single deferred-request slot used while the transport
// is still connecting, and the response assembler.
//
// All mutations happen under mu. Inbound events are already serialized by
// the transport's event loop; the lock extends that domain to Respond,
// which may be called from any goroutine.
type Handler struct {
	mu        sync.Mutex
	state     State
	sink      Sink
	authority string
	logger    *log.Logger
	dispatch  func(func())

	pending  *exchange
	deferred *Request

	head ResponseHead
	body bytes.Buffer
}

// exchange pairs an outbound request with its completion handle. At most
// one exists per connection at any instant.
type exchange struct {
	req *Request
	fut *Future
}

// NewHandler creates a handler for a connection to the given authority
// (host[:port]), starting in the connecting state. dispatch runs completion
// callbacks outside the connection's event domain; nil falls back to
// spawning a goroutine per callback.
func NewHandler(authority string, logger *log.Logger, dispatch func(func())) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{
		state:     StateConnecting,
		authority: authority,
		logger:    logger,
		dispatch:  dispatch,
	}
}

// State returns the current protocol state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Respond issues a single request and returns its completion handle. The
// protocol supports one exchange at a time: a call while another request is
// outstanding fails with ErrRequestPending, and a call after the connection
// closed fails with ErrClosed. A request issued before the transport is
// active is buffered and written exactly once upon activation.
func (h *Handler) Respond(req *Request) *Future {
	if err := req.Validate(); err != nil {
		return failedFuture(h.dispatch, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateClosed:
		return failedFuture(h.dispatch, ErrClosed)
	case StateConnecting:
		if h.pending != nil {
			return failedFuture(h.dispatch, ErrRequestPending)
		}
		fut := newFuture(h.dispatch)
		h.pending = &exchange{req: req, fut: fut}
		h.deferred = req
		return fut
	case StateIdle:
		fut := newFuture(h.dispatch)
		h.pending = &exchange{req: req, fut: fut}
		if err := h.writeRequest(req); err != nil {
			h.closeLocked(err)
			return fut
		}
		h.state = StateAwaitingHead
		return fut
	default: // StateAwaitingHead, StateAssemblingBody
		return failedFuture(h.dispatch, ErrRequestPending)
	}
}

// OnTransportActive is the transport's activation signal. A request that
// was buffered while connecting is flushed now, exactly once.
func (h *Handler) OnTransportActive(sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateConnecting {
		return
	}
	h.sink = sink

	if h.deferred != nil {
		req := h.deferred
		h.deferred = nil
		if err := h.writeRequest(req); err != nil {
			h.closeLocked(err)
			return
		}
		h.state = StateAwaitingHead
		return
	}
	h.state = StateIdle
}

// OnHead consumes the inbound head event. It is legal only while a request
// is awaiting its response head.
func (h *Handler) OnHead(head ResponseHead) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateAwaitingHead {
		return protocolErr("head", h.state)
	}
	h.head = head
	h.body.Reset()
	h.state = StateAssemblingBody
	return nil
}

// OnBodyChunk appends inbound body bytes in arrival order.
func (h *Handler) OnBodyChunk(chunk []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateAssemblingBody {
		return protocolErr("body", h.state)
	}
	h.body.Write(chunk)
	return nil
}

// OnEnd finalizes the response from the stored head and accumulated body,
// resolves the pending future and returns the connection to idle.
func (h *Handler) OnEnd() error {
	h.mu.Lock()

	if h.state != StateAssemblingBody {
		h.mu.Unlock()
		return protocolErr("end", h.state)
	}

	resp := &Response{Head: h.head}
	if h.body.Len() > 0 {
		resp.Body = make([]byte, h.body.Len())
		copy(resp.Body, h.body.Bytes())
	}
	h.body.Reset()
	h.head = ResponseHead{}

	ex := h.pending
	h.pending = nil
	h.state = StateIdle
	h.mu.Unlock()

	ex.fut.succeed(resp)
	return nil
}

// OnTransportError reports a transport-level failure. The pending future,
// if any, fails with the error; otherwise the error is only logged. The
// connection is closed unconditionally and every later Respond fails with
// ErrClosed.
func (h *Handler) OnTransportError(err error) {
	if err == nil {
		err = ErrClosed
	}
	h.mu.Lock()
	if h.state == StateClosed {
		h.mu.Unlock()
		return
	}
	ex := h.closeLocked(err)
	h.mu.Unlock()

	// With no caller waiting, the out-of-band diagnostic channel is the
	// logger. Plain closes are not worth a line.
	if ex == nil && err != ErrClosed {
		h.logger.Printf("h1: transport error with no exchange pending: %v", err)
	}
}

// closeLocked transitions to closed, failing and returning the pending
// exchange if one exists. Callers hold mu.
func (h *Handler) closeLocked(err error) *exchange {
	h.state = StateClosed
	h.deferred = nil
	h.body.Reset()
	ex := h.pending
	h.pending = nil
	if ex != nil {
		ex.fut.fail(err)
	}
	return ex
}

// pendingWantsBody reports whether the current exchange's response may
// carry a body. Used by the framer to suppress bodies on HEAD responses.
func (h *Handler) pendingWantsBody() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending == nil || h.pending.req.wantsBody()
}

// writeRequest serializes the request and hands it to the sink as one
// buffer. Callers hold mu and have verified the sink is bound.
func (h *Handler) writeRequest(req *Request) error {
	bufPtr := requestBufferPool.Get().(*[]byte)
	buf := appendRequest((*bufPtr)[:0], req, h.authority)
	return h.sink.AsyncWrite(buf, func(_ gnet.Conn, err error) error {
		if err != nil {
			h.logger.Printf("h1: async write failed: %v", err)
		}
		*bufPtr = buf[:0]
		requestBufferPool.Put(bufPtr)
		return nil
	})
}
