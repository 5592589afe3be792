package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubGenerator returns queued results in order, counting calls.
type stubGenerator struct {
	calls   int
	results []stubResult
}

type stubResult struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	r := s.results[idx]
	return r.text, r.err
}

func overloaded(msg string) error {
	return errors.Join(ErrOverloaded, errors.New(msg))
}

func TestRetryingSucceedsFirstTry(t *testing.T) {
	stub := &stubGenerator{results: []stubResult{{text: "ok"}}}
	gen := NewRetrying(stub, 3, time.Millisecond)

	text, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q, want ok", text)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
}

func TestRetryingRecoversFromTransientFailures(t *testing.T) {
	stub := &stubGenerator{results: []stubResult{
		{err: overloaded("429")},
		{err: overloaded("503")},
		{text: "recovered"},
	}}
	gen := NewRetrying(stub, 3, time.Millisecond)

	text, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q, want recovered", text)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want exactly 3", stub.calls)
	}
}

func TestRetryingExhaustsBudget(t *testing.T) {
	stub := &stubGenerator{results: []stubResult{{err: overloaded("always down")}}}
	gen := NewRetrying(stub, 3, time.Millisecond)

	_, err := gen.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want exactly 3", stub.calls)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", genErr.Attempts)
	}
	if !errors.Is(genErr.Cause, ErrOverloaded) {
		t.Errorf("Cause should carry the last underlying error, got %v", genErr.Cause)
	}
}

func TestRetryingFailsFastOnPermanentError(t *testing.T) {
	permanent := errors.New("invalid api key")
	stub := &stubGenerator{results: []stubResult{{err: permanent}}}
	gen := NewRetrying(stub, 3, time.Millisecond)

	_, err := gen.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retry on permanent errors)", stub.calls)
	}
	if !errors.Is(err, permanent) {
		t.Errorf("error should wrap the underlying cause, got %v", err)
	}
	if !IsGenerationError(err) {
		t.Errorf("expected a GenerationError, got %T", err)
	}
}

func TestRetryingStopsOnContextCancel(t *testing.T) {
	stub := &stubGenerator{results: []stubResult{{err: overloaded("down")}}}
	gen := NewRetrying(stub, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := gen.Generate(ctx, "prompt")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in chain, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after context cancellation")
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
}

func TestNewRetryingDefaults(t *testing.T) {
	gen := NewRetrying(&stubGenerator{results: []stubResult{{text: "x"}}}, 0, -1)
	if gen.attempts != defaultAttempts {
		t.Errorf("attempts = %d, want %d", gen.attempts, defaultAttempts)
	}
	if gen.backoff != defaultBackoff {
		t.Errorf("backoff = %v, want %v", gen.backoff, defaultBackoff)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(overloaded("rate limited")) {
		t.Error("overloaded error should be transient")
	}
	if IsTransient(errors.New("bad request")) {
		t.Error("plain error should not be transient")
	}
	if IsTransient(nil) {
		t.Error("nil should not be transient")
	}
}
