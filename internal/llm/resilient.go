package llm

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 2 * time.Second
)

// Retrying wraps a Generator with bounded retry on transient-overload
// failures. Backoff grows linearly with the attempt index and the wait is
// context-aware, so a stalled call path never blocks anything but itself.
// Non-transient errors fail immediately without touching the retry budget.
type Retrying struct {
	inner    Generator
	attempts int
	backoff  time.Duration
}

// NewRetrying builds a retrying generator. attempts < 1 or backoff < 0 fall
// back to the defaults (3 attempts, 2s base delay).
func NewRetrying(inner Generator, attempts int, backoff time.Duration) *Retrying {
	if attempts < 1 {
		attempts = defaultAttempts
	}
	if backoff < 0 {
		backoff = defaultBackoff
	}
	return &Retrying{
		inner:    inner,
		attempts: attempts,
		backoff:  backoff,
	}
}

// Generate invokes the wrapped generator, retrying transient-overload
// failures up to the configured bound. On exhaustion it returns a
// GenerationError carrying the last underlying cause.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}

		if !IsTransient(err) {
			return "", &GenerationError{Cause: err, Attempts: attempt}
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}

		delay := time.Duration(attempt) * r.backoff
		slog.WarnContext(ctx, "Generator overloaded, backing off",
			"attempt", attempt,
			"max_attempts", r.attempts,
			"delay", delay,
			"error", err)

		if err := sleep(ctx, delay); err != nil {
			return "", &GenerationError{Cause: err, Attempts: attempt}
		}
	}

	return "", &GenerationError{Cause: lastErr, Attempts: r.attempts}
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
