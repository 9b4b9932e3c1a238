package courier

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/peznauts/courier/internal/h1"
	"github.com/peznauts/courier/internal/transport"
)

// Dialer owns a transport engine and a completion-callback worker pool,
// shared across all connections it opens. A process typically needs one.
type Dialer struct {
	config Config
	engine *transport.Client
	pool   *ants.Pool
}

// NewDialer creates a dialer with the given configuration and starts its
// transport engine.
func NewDialer(config Config) (*Dialer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(config.CallbackWorkers)
	if err != nil {
		return nil, fmt.Errorf("courier: callback pool: %w", err)
	}

	engine, err := transport.NewClient(transport.Config{
		NumEventLoop:     config.NumEventLoop,
		TCPNoDelay:       config.TCPNoDelay,
		TCPKeepAlive:     config.TCPKeepAlive,
		SocketRecvBuffer: config.SocketRecvBuffer,
		SocketSendBuffer: config.SocketSendBuffer,
		Logger:           config.Logger,
	})
	if err != nil {
		pool.Release()
		return nil, fmt.Errorf("courier: transport engine: %w", err)
	}
	if err := engine.Start(); err != nil {
		pool.Release()
		return nil, fmt.Errorf("courier: transport engine: %w", err)
	}

	return &Dialer{config: config, engine: engine, pool: pool}, nil
}

// Connect establishes a connection to host:port and returns a client handle
// once the transport is active. ctx bounds the wait, in addition to the
// configured ConnectTimeout.
func (d *Dialer) Connect(ctx context.Context, host string, port int) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn := h1.NewConn(addr, d.config.Logger, d.dispatch)

	if err := d.engine.Dial(addr, conn); err != nil {
		return nil, fmt.Errorf("courier: dial %s: %w", addr, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, d.config.ConnectTimeout)
	defer cancel()
	if err := conn.WaitActive(waitCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("courier: connect %s: %w", addr, err)
	}

	return &Client{conn: conn, config: d.config}, nil
}

// Close stops the transport engine, closing every connection opened through
// this dialer, and releases the callback pool.
func (d *Dialer) Close() error {
	err := d.engine.Stop()
	d.pool.Release()
	return err
}

// dispatch runs completion callbacks on the worker pool, falling back to a
// plain goroutine if the pool is saturated or released.
func (d *Dialer) dispatch(task func()) {
	if err := d.pool.Submit(task); err != nil {
		go task()
	}
}

var (
	defaultDialer     *Dialer
	defaultDialerErr  error
	defaultDialerOnce sync.Once
)

// Connect establishes a connection using a lazily-created package-level
// dialer with the default configuration.
func Connect(ctx context.Context, host string, port int) (*Client, error) {
	defaultDialerOnce.Do(func() {
		defaultDialer, defaultDialerErr = NewDialer(DefaultConfig())
	})
	if defaultDialerErr != nil {
		return nil, defaultDialerErr
	}
	return defaultDialer.Connect(ctx, host, port)
}
