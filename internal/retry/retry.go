// Package retry provides a bounded retry policy with a fixed delay and a
// caller-supplied retriable-error predicate.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted wraps the last error once every attempt has failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy is a bounded retry: up to MaxAttempts calls with Delay between
// them. Classify decides whether an error is worth another attempt; a
// nil Classify treats every error as retriable.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Classify    func(error) bool
}

// Do runs op until it succeeds, fails permanently, or the attempt budget
// runs out. Non-retriable errors return immediately without consuming
// further attempts. The delay wait is cut short by ctx cancellation.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Classify != nil && !p.Classify(err) {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
