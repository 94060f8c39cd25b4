package txn

import (
	"context"
	"time"

	"wake-up-challenge/internal/entities"
)

const maxDelay = 1200 * time.Millisecond

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs attempt until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted, in which case entities.ErrTxConflict is returned.
func Do(ctx context.Context, p Policy, retryable func(error) bool, attempt func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	delay := p.BaseDelay

	for i := 0; i < p.MaxAttempts; i++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if i == p.MaxAttempts-1 {
			break
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return err
		}
		delay = min(delay*2, maxDelay)
	}

	return entities.ErrTxConflict
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
