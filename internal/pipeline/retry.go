package pipeline

import (
	"context"
	"errors"
	"time"
)

// Policy controls retries for transient stage operations. Backoff is
// exponential: attempt n waits Backoff * 2^(n-1).
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultPolicy returns the standard retry policy.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// Do runs fn, retrying while it returns a transient error. The final
// error is returned unchanged so callers can classify it.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrTransient) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff * time.Duration(1<<(attempt-1))):
		}
	}

	return err
}
