// Package transport provides the gnet-based client transport engine. One
// engine serves many connections; gnet never runs two events for the same
// connection concurrently, which is the serialized processing domain the
// protocol handlers rely on.
package transport

import (
	"log"
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/peznauts/courier/internal/h1"
)

// Config defines the configuration options for the transport engine.
type Config struct {
	NumEventLoop     int
	TCPNoDelay       bool
	TCPKeepAlive     time.Duration
	SocketRecvBuffer int
	SocketSendBuffer int
	Logger           *log.Logger
}

// Client implements gnet.EventHandler for outbound HTTP/1.1 connections.
// It routes transport events (activation, inbound bytes, close) to the
// per-connection protocol handler stored in the gnet connection context.
type Client struct {
	gnet.BuiltinEventEngine
	cli    *gnet.Client
	logger *log.Logger
}

// NewClient creates a transport engine with the given configuration.
func NewClient(config Config) (*Client, error) {
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	t := &Client{logger: config.Logger}

	options := []gnet.Option{
		gnet.WithLogger(silentGnetLogger{}),
	}
	if config.TCPNoDelay {
		options = append(options, gnet.WithTCPNoDelay(gnet.TCPNoDelay))
	}
	if config.TCPKeepAlive > 0 {
		options = append(options, gnet.WithTCPKeepAlive(config.TCPKeepAlive))
	}
	if config.NumEventLoop > 0 {
		options = append(options, gnet.WithNumEventLoop(config.NumEventLoop))
	}
	if config.SocketRecvBuffer > 0 {
		options = append(options, gnet.WithSocketRecvBuffer(config.SocketRecvBuffer))
	}
	if config.SocketSendBuffer > 0 {
		options = append(options, gnet.WithSocketSendBuffer(config.SocketSendBuffer))
	}

	cli, err := gnet.NewClient(t, options...)
	if err != nil {
		return nil, err
	}
	t.cli = cli
	return t, nil
}

// Start starts the engine's event loops.
func (t *Client) Start() error {
	return t.cli.Start()
}

// Stop stops the engine and every connection it serves.
func (t *Client) Stop() error {
	return t.cli.Stop()
}

// Dial establishes a TCP connection to addr and binds conn as its protocol
// handler. The activation signal is delivered asynchronously on the event
// loop via OnOpen; requests issued before that are buffered by the handler.
func (t *Client) Dial(addr string, conn *h1.Conn) error {
	_, err := t.cli.DialContext("tcp", addr, conn)
	return err
}

// OnOpen is called on the event loop once a dialed connection is ready.
func (t *Client) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	conn, ok := c.Context().(*h1.Conn)
	if !ok {
		t.logger.Printf("transport: connection without handler context from %v", c.RemoteAddr())
		return nil, gnet.Close
	}
	conn.Activate(c)
	return nil, gnet.None
}

// OnTraffic is called when data is received on a connection.
func (t *Client) OnTraffic(c gnet.Conn) gnet.Action {
	conn, ok := c.Context().(*h1.Conn)
	if !ok {
		t.logger.Printf("transport: traffic on connection without handler context")
		return gnet.Close
	}

	buf, err := c.Next(-1)
	if err != nil {
		t.logger.Printf("transport: read error: %v", err)
		return gnet.Close
	}
	if len(buf) == 0 {
		return gnet.None
	}

	if err := conn.HandleData(buf); err != nil {
		// Protocol violation: the handler already failed the pending
		// exchange, only this one connection goes down.
		return gnet.Close
	}
	return gnet.None
}

// OnClose is called when a connection is closed, cleanly or not.
func (t *Client) OnClose(c gnet.Conn, err error) gnet.Action {
	if conn, ok := c.Context().(*h1.Conn); ok {
		conn.HandleClose(err)
	}
	return gnet.None
}

// silentGnetLogger discards all gnet output; diagnostics flow through the
// engine's own logger instead.
type silentGnetLogger struct{}

func (s silentGnetLogger) Debugf(_ string, _ ...any) {}
func (s silentGnetLogger) Infof(_ string, _ ...any)  {}
func (s silentGnetLogger) Warnf(_ string, _ ...any)  {}
func (s silentGnetLogger) Errorf(_ string, _ ...any) {}
func (s silentGnetLogger) Fatalf(_ string, _ ...any) {}
