// Package retry runs an operation again on transient failures, with
// exponential backoff. The vote store uses it to absorb serialization
// conflicts so callers only ever see ErrConcurrentModification when the
// budget is exhausted.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// Retryable reports whether an error is transient.
type Retryable func(err error) bool

func Do(ctx context.Context, p Policy, retryable Retryable, op func() error) error {
	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}
