// Package retry executes fallible operations under a bounded
// exponential-backoff policy.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded exponential-backoff schedule.
type Policy struct {
	MaxRetries   int           // retries after the first attempt
	InitialDelay time.Duration // delay before the first retry
	Multiplier   float64       // backoff factor applied after each attempt
	// Retryable decides whether a failure is worth retrying. A nil
	// predicate retries everything. Failures it rejects propagate
	// immediately without further attempts.
	Retryable func(error) bool
}

// DefaultPolicy matches the external-call defaults used across the
// pipeline: 3 retries starting at one second, doubling.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		Retryable:    retryable,
	}
}

// Do invokes op under the policy. On a retryable failure it sleeps for
// the current delay and tries again; after exhausting retries the last
// failure is returned. Non-retryable failures return immediately.
func Do(ctx context.Context, name string, p Policy, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0 // deterministic schedule
	bo.MaxElapsedTime = 0      // bounded by retry count, not wall time
	bo.MaxInterval = time.Minute

	attempt := 0
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		attempt++
		slog.Warn("retrying after failure",
			"op", name, "attempt", attempt, "max", p.MaxRetries+1, "error", err)
		return err
	}

	return backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.MaxRetries)), ctx))
}
