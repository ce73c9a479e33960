package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	policy := Policy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsAtAttemptBound(t *testing.T) {
	t.Parallel()

	policy := Policy{Attempts: 2, BaseDelay: time.Millisecond}
	sentinel := errors.New("still broken")

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoSingleAttemptReturnsBareError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("hard failure")
	err := Policy{}.Do(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("single attempt must not wrap the error, got: %v", err)
	}
}

func TestWaitClampsBackoffOnLargeAttempts(t *testing.T) {
	t.Parallel()

	// Doubling 400ms past attempt ~35 would overflow a Duration if it
	// were computed as a plain shift; the delay must clamp instead.
	policy := Policy{Attempts: 64, BaseDelay: 400 * time.Millisecond, MaxDelay: time.Millisecond}

	start := time.Now()
	if err := policy.wait(context.Background(), 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("clamped backoff must not sleep past MaxDelay")
	}
}

func TestWaitDefaultsMaxDelayWhenUnset(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A canceled context returns immediately; the point is that the
	// delay computation on a huge attempt stays valid with no MaxDelay
	// configured.
	policy := Policy{Attempts: 64, BaseDelay: 400 * time.Millisecond}
	if err := policy.wait(ctx, 64); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{Attempts: 5, BaseDelay: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(ctx context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	// Let the first attempt fail, then cancel during the backoff wait.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}

	if calls != 1 {
		t.Fatalf("expected exactly 1 call before cancellation, got %d", calls)
	}
}
