package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteRetriesRetryableFailure(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BreakerEnabled: false,
	})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errTemp) })
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BreakerEnabled: false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) bool { return false })
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestSingleAttemptNeverRetries(t *testing.T) {
	exec := NewExecutor(func() Config {
		cfg := SingleAttempt()
		cfg.BreakerEnabled = false
		return cfg
	}())

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) bool { return true })
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected error surfaced immediately, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:             1,
		InitialBackoff:          1 * time.Millisecond,
		MaxBackoff:              1 * time.Millisecond,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errFail := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "op", func(context.Context) error {
			return errFail
		}, func(error) bool { return false })
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		return nil
	}, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestExecuteStopsOnContextCancel(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:    5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		BreakerEnabled: false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errTemp := errors.New("temporary")
	attempts := 0
	err := exec.Execute(ctx, "op", func(context.Context) error {
		attempts++
		cancel()
		return errTemp
	}, func(error) bool { return true })
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected last attempt error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected cancellation to stop retries, got %d attempts", attempts)
	}
}
