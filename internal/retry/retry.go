// Package retry runs an operation a bounded number of times with a fixed
// wait between attempts and reports how it ended.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultMaxAttempts = 10
	defaultWait        = 2 * time.Second
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts bounds the number of calls to the operation.
	MaxAttempts int
	// Wait is the pause after an ordinary failure.
	Wait time.Duration
	// ThrottledWait is the pause after a failure for which IsThrottled
	// returns true. Zero means Wait.
	ThrottledWait time.Duration
	IsThrottled   func(error) bool
}

// DefaultPolicy returns ten attempts two seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   defaultMaxAttempts,
		Wait:          defaultWait,
		ThrottledWait: defaultWait,
	}
}

// Outcome tells how a call to Do ended.
type Outcome int

const (
	// Succeeded means one of the attempts returned no error.
	Succeeded Outcome = iota
	// Exhausted means every attempt failed, or the operation returned a
	// permanent error.
	Exhausted
	// Aborted means the context ended before an attempt succeeded.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is the tagged result of Do.
type Result[T any] struct {
	Value    T
	Outcome  Outcome
	Attempts int
	// Err is the last error seen; nil when Outcome is Succeeded.
	Err error
}

// Ok reports whether the operation succeeded.
func (r Result[T]) Ok() bool {
	return r.Outcome == Succeeded
}

// Notify is called before each wait.
type Notify func(attempt int, err error, wait time.Duration)

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// waitPolicy picks the next wait from the error of the attempt that just
// failed.
type waitPolicy struct {
	policy  Policy
	lastErr error
}

func (w *waitPolicy) NextBackOff() time.Duration {
	if w.lastErr != nil && w.policy.IsThrottled != nil && w.policy.IsThrottled(w.lastErr) && w.policy.ThrottledWait > 0 {
		return w.policy.ThrottledWait
	}
	return w.policy.Wait
}

func (w *waitPolicy) Reset() {
	w.lastErr = nil
}

// Do calls op until it succeeds, the attempts run out, or ctx ends.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify Notify) Result[T] {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}

	wait := &waitPolicy{policy: p}
	attempts := 0

	value, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		v, err := op(ctx)
		wait.lastErr = err
		return v, err
	},
		backoff.WithBackOff(wait),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, d time.Duration) {
			if notify != nil {
				notify(attempts, err, d)
			}
		}),
	)

	res := Result[T]{Value: value, Attempts: attempts, Err: err}
	switch {
	case err == nil:
		res.Outcome = Succeeded
	case ctx.Err() != nil && (errors.Is(err, ctx.Err()) || errors.Is(err, context.Cause(ctx))):
		res.Outcome = Aborted
	default:
		res.Outcome = Exhausted
	}

	return res
}
