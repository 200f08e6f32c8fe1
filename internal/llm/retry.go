package llm

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// maxBackoff caps the base delay. 1<<5 seconds already exceeds it.
const maxBackoff = 30 * time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := maxBackoff
	if attempt < 5 {
		base = time.Duration(1<<uint(max(attempt, 0))) * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying re-issues a request when the wrapped Completer returns a
// RetryableError, up to MaxRetries extra attempts.
type Retrying struct {
	next       Completer
	maxRetries int
	log        *slog.Logger

	// Backoff is replaceable in tests.
	Backoff func(attempt int) time.Duration
}

// WithRetry wraps c. maxRetries <= 0 disables retrying.
func WithRetry(c Completer, maxRetries int, log *slog.Logger) *Retrying {
	if log == nil {
		log = slog.Default()
	}
	return &Retrying{next: c, maxRetries: maxRetries, log: log, Backoff: Backoff}
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.Backoff(attempt - 1)
			r.log.Warn("retrying completion", "provider", r.next.Name(), "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return Response{}, err
		}
	}
	return Response{}, lastErr
}
