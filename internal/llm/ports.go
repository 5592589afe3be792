package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator produces text for a single prompt. Implementations wrap an
// external model service; the deterministic fallbacks used when a Generator
// fails live with the callers, not here.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrOverloaded marks a transient-overload failure (rate limit or capacity).
// Adapters wrap their provider errors with it so the retry layer can tell
// retryable failures from permanent ones.
var ErrOverloaded = errors.New("generator overloaded")

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOverloaded)
}

// GenerationError is returned once a generation has definitively failed:
// either the retry budget is exhausted or the underlying error was never
// retryable to begin with.
type GenerationError struct {
	Cause    error
	Attempts int
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsGenerationError reports whether err is a terminal generation failure.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("no generator configured")

// Disabled stands in for the model client when no API key is available.
// Every call fails immediately, so callers run on their fallbacks.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", &GenerationError{Cause: ErrNotConfigured, Attempts: 0}
}
