// Package limiter bounds call frequency to an external service. A single
// Limiter instance is shared by every caller hitting the same service so
// admission is arbitrated in one place.
package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most maxCalls calls within any trailing window of
// length period. Admit is the single blocking point: the token bucket
// smooths long-run throughput, and the admission timestamps enforce the
// trailing-window bound that a bare bucket would let a burst-plus-refill
// exceed. Safe for concurrent use; admissions are served
// first-come-first-served.
type Limiter struct {
	rl     *rate.Limiter
	period time.Duration
	max    int

	mu     sync.Mutex
	stamps []time.Time
}

// New creates a limiter allowing maxCalls per trailing period.
// Non-positive values are a configuration error, rejected here rather
// than admitting unboundedly.
func New(maxCalls int, period time.Duration) (*Limiter, error) {
	if maxCalls <= 0 {
		return nil, fmt.Errorf("limiter: maxCalls must be positive, got %d", maxCalls)
	}
	if period <= 0 {
		return nil, fmt.Errorf("limiter: period must be positive, got %v", period)
	}
	limit := rate.Limit(float64(maxCalls) / period.Seconds())
	return &Limiter{
		rl:     rate.NewLimiter(limit, maxCalls),
		period: period,
		max:    maxCalls,
	}, nil
}

// Admit blocks until a call may proceed, or until ctx is done.
func (l *Limiter) Admit(ctx context.Context) error {
	if err := l.rl.Wait(ctx); err != nil {
		return err
	}
	for {
		l.mu.Lock()
		now := time.Now()
		keep := 0
		for keep < len(l.stamps) && now.Sub(l.stamps[keep]) >= l.period {
			keep++
		}
		l.stamps = l.stamps[keep:]
		if len(l.stamps) < l.max {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.period - now.Sub(l.stamps[0])
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
