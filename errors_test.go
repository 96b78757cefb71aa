package voiceagent

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigErrorMatchesSentinel(t *testing.T) {
	err := NewConfigError("Endpoint", "", "cannot be empty")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should match ErrInvalidConfig")
	}
	if !strings.Contains(err.Error(), "Endpoint") {
		t.Errorf("error message should name the field: %v", err)
	}
}

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError("wss://example.com", "dial", cause)

	if !errors.Is(err, ErrConnectionFailed) {
		t.Error("ConnectionError should match ErrConnectionFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("ConnectionError should unwrap to its cause")
	}
}

func TestSendErrorTimeout(t *testing.T) {
	err := NewSendError("session.update", "evt_1", ErrSendTimeout)
	if !err.IsTimeout() {
		t.Error("expected IsTimeout to be true")
	}

	other := NewSendError("session.update", "", errors.New("broken pipe"))
	if other.IsTimeout() {
		t.Error("expected IsTimeout to be false")
	}
}

func TestEventErrorMatchesSentinel(t *testing.T) {
	err := NewEventError("session.created", []byte(`{bad json`), errors.New("unexpected token"))
	if !errors.Is(err, ErrInvalidEventData) {
		t.Error("EventError should match ErrInvalidEventData")
	}
}

func TestToolErrorUnwrap(t *testing.T) {
	err := &ToolError{Tool: "lookup_weather", CallID: "call_1", Cause: ErrUnknownTool}
	if !errors.Is(err, ErrUnknownTool) {
		t.Error("ToolError should unwrap to ErrUnknownTool")
	}
	if !strings.Contains(err.Error(), "lookup_weather") {
		t.Errorf("error message should name the tool: %v", err)
	}
}
