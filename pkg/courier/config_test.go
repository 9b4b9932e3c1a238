package courier

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.NumEventLoop != 0 {
		t.Errorf("Expected auto-detected event loops, got %d", config.NumEventLoop)
	}

	if config.ConnectTimeout != 10*time.Second {
		t.Errorf("Expected ConnectTimeout 10s, got %v", config.ConnectTimeout)
	}

	if !config.TCPNoDelay {
		t.Error("Expected TCPNoDelay to be true by default")
	}

	if config.TCPKeepAlive != time.Minute {
		t.Errorf("Expected TCPKeepAlive 1m, got %v", config.TCPKeepAlive)
	}

	if config.CallbackWorkers != 64 {
		t.Errorf("Expected CallbackWorkers 64, got %d", config.CallbackWorkers)
	}

	if config.EnableTracing {
		t.Error("Expected tracing to be disabled by default")
	}

	if config.DisableMetrics {
		t.Error("Expected metrics to be enabled by default")
	}

	if config.Logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestConfigValidate(t *testing.T) {
	config := Config{}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if config.ConnectTimeout != 10*time.Second {
		t.Errorf("Expected normalized ConnectTimeout, got %v", config.ConnectTimeout)
	}

	if config.CallbackWorkers != 64 {
		t.Errorf("Expected normalized CallbackWorkers, got %d", config.CallbackWorkers)
	}

	if config.Logger == nil {
		t.Error("Expected Validate to install a logger")
	}
}

func TestConfigValidateKeepsExplicitValues(t *testing.T) {
	config := Config{
		ConnectTimeout:  time.Second,
		CallbackWorkers: 4,
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if config.ConnectTimeout != time.Second {
		t.Errorf("Expected explicit ConnectTimeout kept, got %v", config.ConnectTimeout)
	}

	if config.CallbackWorkers != 4 {
		t.Errorf("Expected explicit CallbackWorkers kept, got %d", config.CallbackWorkers)
	}
}
