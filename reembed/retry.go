package reembed

import (
	"context"
	"time"
)

// RetryWithBackoff runs fn up to attempts times, doubling the delay between
// tries starting at 100ms. It returns the last error if every attempt fails,
// or the context error if the context expires while waiting.
func RetryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	delay := 100 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
