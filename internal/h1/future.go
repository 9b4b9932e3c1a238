package h1

import (
	"context"
	"sync"
)

// Future is the single-assignment completion handle for one exchange. It is
// settled exactly once, either with a complete response or with an error;
// the handler's state machine guarantees at most one settlement per
// exchange.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	resp      *Response
	err       error
	callbacks []func(*Response, error)
	dispatch  func(func())
}

func newFuture(dispatch func(func())) *Future {
	if dispatch == nil {
		dispatch = func(task func()) { go task() }
	}
	return &Future{done: make(chan struct{}), dispatch: dispatch}
}

// failedFuture returns a future pre-settled with err.
func failedFuture(dispatch func(func()), err error) *Future {
	f := newFuture(dispatch)
	f.fail(err)
	return f
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done. Cancellation only
// abandons the wait; the exchange itself keeps running and the future may
// still settle later.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the settled outcome. It must only be called after Done is
// closed; before settlement it returns (nil, nil).
func (f *Future) Result() (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	default:
		return nil, nil
	}
}

// OnComplete registers fn to run once the future settles. Callbacks are
// dispatched on the scheduler rather than the connection's event domain, so
// they may block without stalling the connection.
func (f *Future) OnComplete(fn func(*Response, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	resp, err := f.resp, f.err
	f.dispatch(func() { fn(resp, err) })
}

func (f *Future) succeed(resp *Response) { f.settle(resp, nil) }

func (f *Future) fail(err error) { f.settle(nil, err) }

func (f *Future) settle(resp *Response, err error) {
	f.mu.Lock()
	if f.settled {
		// The state machine clears the pending slot before settling, so a
		// second settlement cannot happen; tolerate it rather than crash.
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.resp = resp
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn := fn
		f.dispatch(func() { fn(resp, err) })
	}
}
