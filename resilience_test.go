package voiceagent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = maxRetries
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 10 * time.Millisecond
	return cfg
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return NewConnectionError("wss://example.com", "dial", errors.New("refused"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetryConfig(5), func() error {
		attempts++
		return NewConfigError("Model", "", "cannot be empty")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("config errors must not be retried, attempts = %d", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetryConfig(2), func() error {
		attempts++
		return NewConnectionError("wss://example.com", "dial", errors.New("refused"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("final error should wrap the last failure: %v", err)
	}
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetryConfig(5)
	cfg.BaseDelay = time.Minute // the cancelled context must win over the delay

	err := WithRetry(ctx, cfg, func() error {
		return NewConnectionError("wss://example.com", "dial", errors.New("refused"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
}

func TestCalculateDelayBounds(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	}

	if d := calculateDelay(0, cfg); d != time.Second {
		t.Errorf("attempt 0: %v", d)
	}
	if d := calculateDelay(1, cfg); d != 2*time.Second {
		t.Errorf("attempt 1: %v", d)
	}
	// Exponential growth is capped at MaxDelay.
	if d := calculateDelay(10, cfg); d != 5*time.Second {
		t.Errorf("attempt 10: %v", d)
	}

	cfg.Jitter = 0.5
	for i := 0; i < 100; i++ {
		d := calculateDelay(0, cfg)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("jittered delay %v outside expected band", d)
		}
	}
}

func TestDialWithRetryRecoversFromTransientFailure(t *testing.T) {
	ms := NewMockServer(t)
	defer ms.Close()

	// First handshake is refused, the second reaches the mock backend.
	var attempts int32
	frontend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		ms.handleWebSocket(w, r)
	}))
	defer frontend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := DialWithRetry(ctx, CreateMockConfig(frontend.URL), fastRetryConfig(3))
	if err != nil {
		t.Fatalf("DialWithRetry: %v", err)
	}
	defer client.Close()

	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("handshake attempts = %d, want 2", got)
	}
}

func TestDialWithRetryInvalidConfigFailsFast(t *testing.T) {
	start := time.Now()
	_, err := DialWithRetry(context.Background(), Config{}, DefaultRetryConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("config errors should not be retried, took %v", elapsed)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("execute %d: %v", i, err)
		}
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err == nil {
		t.Error("open circuit should reject operations")
	}
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Millisecond,
		SuccessThreshold: 1,
	})

	_ = cb.Execute(func() error { return errors.New("boom") })
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(5 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}
