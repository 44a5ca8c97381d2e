// Package retry holds the client-side retry policy for extraction calls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries with exponential delays: BaseDelay, 2·BaseDelay, 4·BaseDelay...
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy waits 2s, 4s and 8s between four attempts.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// Delay is the wait before retry n, counting from 1.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return p.BaseDelay << (n - 1)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.Delay(p.MaxRetries)
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Notify is called before each retry with the retry number and the delay.
type Notify func(n int, err error, delay time.Duration)

// Do runs op until it succeeds, returns a Permanent error, the retries run
// out or ctx ends. It returns the last error and the number of attempts made.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify Notify) (int, error) {
	attempts := 0
	operation := func() error {
		attempts++
		return op(ctx)
	}
	onRetry := func(err error, delay time.Duration) {
		if notify != nil {
			notify(attempts, err, delay)
		}
	}
	err := backoff.RetryNotify(operation, p.backOff(ctx), onRetry)
	return attempts, err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
