package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("temporarily down")
var errPermanent = errors.New("bad request")

func fastPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		Multiplier:   1.5,
		Retryable:    retryable,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), "test", fastPolicy(nil), func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: %d", attempts)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), "test", fastPolicy(nil), func() error {
		attempts++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected last failure, got %v", err)
	}
	if attempts != 4 { // first try plus three retries
		t.Errorf("attempts: %d", attempts)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	retryable := func(err error) bool { return errors.Is(err, errTransient) }
	attempts := 0
	err := Do(context.Background(), "test", fastPolicy(retryable), func() error {
		attempts++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent failure, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts: %d", attempts)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, "test", fastPolicy(nil), func() error {
		return errTransient
	})
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
}
