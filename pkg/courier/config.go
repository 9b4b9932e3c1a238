// Package courier provides an event-driven HTTP/1.1 client for Go. Each
// connection carries a single request/response exchange at a time; results
// are delivered through single-assignment futures.
package courier

import (
	"io"
	"log"
	"time"
)

// Config holds the client configuration options.
type Config struct {
	NumEventLoop     int           // Number of transport event loops (0 for auto-detect)
	ConnectTimeout   time.Duration // Maximum duration to wait for connection activation
	TCPNoDelay       bool          // Disable Nagle's algorithm on connections
	TCPKeepAlive     time.Duration // TCP keep-alive period (0 to disable)
	SocketRecvBuffer int           // Socket receive buffer size in bytes (0 for OS default)
	SocketSendBuffer int           // Socket send buffer size in bytes (0 for OS default)
	CallbackWorkers  int           // Size of the completion-callback worker pool
	EnableTracing    bool          // Emit an OpenTelemetry span per exchange
	DisableMetrics   bool          // Skip Prometheus metrics collection
	Logger           *log.Logger   // Logger for transport diagnostics
}

// newSilentLogger creates a silent logger that discards all output
func newSilentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		NumEventLoop:    0, // Auto-detect
		ConnectTimeout:  10 * time.Second,
		TCPNoDelay:      true,
		TCPKeepAlive:    time.Minute,
		CallbackWorkers: 64,
		EnableTracing:   false,
		DisableMetrics:  false,
		Logger:          newSilentLogger(),
	}
}

// Validate checks and normalizes the configuration values.
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.CallbackWorkers <= 0 {
		c.CallbackWorkers = 64
	}
	if c.Logger == nil {
		c.Logger = newSilentLogger()
	}
	return nil
}
