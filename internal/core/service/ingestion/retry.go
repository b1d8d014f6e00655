package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/port"
)

const (
	maxAttempts  = 3
	baseDelay    = 2 * time.Second
	maxDelay     = 10 * time.Second
)

// retryWithBackoff runs fn up to maxAttempts times, retrying only on
// errors classified as retriable by a *port.ProviderError. Delay doubles
// each attempt (2s, 4s, 8s, capped at 10s) unless the provider supplied a
// RetryAfter hint, which always wins. A non-ProviderError, or a
// ProviderError with Retriable=false, fails fast.
func retryWithBackoff(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := baseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var provErr *port.ProviderError
		if !errors.As(err, &provErr) || !provErr.Retriable {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		wait := delay
		if provErr.RetryAfter != nil {
			wait = *provErr.RetryAfter
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return lastErr
}

// adaptivePacingDelay computes the delay between embedding batches, which
// scales with global ingestion load to avoid every concurrent job hammering
// the provider at once.
func adaptivePacingDelay(activeJobs int) time.Duration {
	d := 100*time.Millisecond + time.Duration(50*(activeJobs-1))*time.Millisecond
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	if d > 300*time.Millisecond {
		d = 300 * time.Millisecond
	}
	return d
}
