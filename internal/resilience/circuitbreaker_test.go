package resilience

import (
	"errors"
	"testing"
	"time"
)

func testConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          50 * time.Millisecond,
	}
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	for i := 0; i < 3; i++ {
		if cb.State() != CircuitClosed {
			t.Fatalf("circuit opened after %d failures", i)
		}
		cb.RecordFailure()
	}

	if cb.State() != CircuitOpen {
		t.Errorf("expected OPEN after threshold, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}

	time.Sleep(60 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("expected HALF_OPEN, got %s", cb.State())
	}

	// Two successes close the circuit.
	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("expected CLOSED after recovery, got %s", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(60 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}

	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Errorf("expected OPEN after half-open failure, got %s", cb.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != CircuitClosed {
		t.Errorf("interleaved successes must reset the failure count, got %s", cb.State())
	}
}

func TestExecuteWithResult(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	got, err := ExecuteWithResult(cb, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("expected 42, got %d err %v", got, err)
	}

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if _, err := ExecuteWithResult(cb, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}

	if _, err := ExecuteWithResult(cb, func() (int, error) { return 42, nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen once open, got %v", err)
	}
}
