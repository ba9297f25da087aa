package utils

import (
	"context"
	"time"
)

type Backoff struct {
	base       time.Duration
	maxDelay   time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxDelay: 5 * time.Second, maxRetries: maxRetries}
}

// Do runs fn until it succeeds or the attempts are exhausted, doubling the
// delay between attempts up to the cap. A canceled context aborts the wait
// and returns ctx.Err.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		if err = fn(i); err == nil {
			return nil
		}
		if i == b.maxRetries {
			break
		}
		d := time.Duration(1<<i) * b.base
		if d > b.maxDelay {
			d = b.maxDelay
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
