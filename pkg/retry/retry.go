package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy bounds retries for an operation with exponential backoff and
// full jitter. The zero value runs the operation exactly once.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Do runs op until it succeeds, the attempt budget runs out, or the
// context is canceled. It returns the last error observed.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt); err != nil {
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
	}

	if attempts > 1 {
		return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
	}
	return lastErr
}

// defaultMaxDelay caps the backoff when the policy does not set one,
// which also keeps the doubling below from overflowing on large
// attempt counts.
const defaultMaxDelay = 30 * time.Second

// wait sleeps for a jittered exponential delay before the given attempt,
// aborting early if the context is canceled.
func (p Policy) wait(ctx context.Context, attempt int) error {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	backoff := base
	for i := 1; i < attempt && backoff < maxDelay; i++ {
		backoff *= 2
	}
	if backoff > maxDelay {
		backoff = maxDelay
	}

	// Full jitter: sleep anywhere in (0, backoff].
	delay := time.Duration(rand.Int63n(int64(backoff))) + 1

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
