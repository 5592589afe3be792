package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sintesi/internal/core"
	"sintesi/internal/services"
)

type recordingRefresher struct {
	mu      sync.Mutex
	periods []core.Period
	block   chan struct{}
	err     error
	panics  bool
}

func (r *recordingRefresher) RefreshPeriod(ctx context.Context, p core.Period) (*services.RefreshResult, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.periods = append(r.periods, p)
	panics, err := r.panics, r.err
	r.mu.Unlock()
	if panics {
		panic("generator exploded")
	}
	if err != nil {
		return nil, err
	}
	return &services.RefreshResult{Message: "ok"}, nil
}

func (r *recordingRefresher) refreshed() []core.Period {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Period(nil), r.periods...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDispatcherRunsRefresh(t *testing.T) {
	refresher := &recordingRefresher{}
	d := NewDispatcher(refresher, 4)
	defer d.Close()

	d.NotifySummaryRefresh(context.Background(), "u1", 2024, 3)

	waitFor(t, func() bool { return len(refresher.refreshed()) == 1 })
	want := core.Period{UserID: "u1", Year: 2024, Month: 3}
	if got := refresher.refreshed()[0]; got != want {
		t.Errorf("refreshed %+v, want %+v", got, want)
	}
}

func TestDispatcherSerializesRefreshes(t *testing.T) {
	refresher := &recordingRefresher{}
	d := NewDispatcher(refresher, 8)

	ctx := context.Background()
	for month := 1; month <= 5; month++ {
		d.NotifySummaryRefresh(ctx, "u1", 2024, month)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := refresher.refreshed()
	if len(got) != 5 {
		t.Fatalf("refreshed %d periods, want 5", len(got))
	}
	for i, p := range got {
		if p.Month != i+1 {
			t.Errorf("position %d: month %d, want %d (FIFO order)", i, p.Month, i+1)
		}
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	refresher := &recordingRefresher{block: block}
	d := NewDispatcher(refresher, 1)

	ctx := context.Background()
	// First fills the worker, second fills the queue, the rest must be
	// dropped without blocking.
	done := make(chan struct{})
	go func() {
		for month := 1; month <= 10; month++ {
			d.NotifySummaryRefresh(ctx, "u1", 2024, month)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifySummaryRefresh blocked on a full queue")
	}

	close(block)
	d.Close()

	if got := len(refresher.refreshed()); got > 2 {
		t.Errorf("refreshed %d periods, want at most 2 with a queue of 1", got)
	}
}

func TestDispatcherSurvivesPanicAndError(t *testing.T) {
	refresher := &recordingRefresher{panics: true}
	d := NewDispatcher(refresher, 4)

	ctx := context.Background()
	d.NotifySummaryRefresh(ctx, "u1", 2024, 1)
	waitFor(t, func() bool { return len(refresher.refreshed()) == 1 })

	refresher.mu.Lock()
	refresher.panics = false
	refresher.err = errors.New("validation failed")
	refresher.mu.Unlock()

	// The worker must still be alive after the panic.
	d.NotifySummaryRefresh(ctx, "u1", 2024, 2)
	waitFor(t, func() bool { return len(refresher.refreshed()) == 2 })

	d.Close()
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&recordingRefresher{}, 4)

	if err := d.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// Notifications after Close are silently ignored.
	d.NotifySummaryRefresh(context.Background(), "u1", 2024, 3)
}

func TestDispatcherDefaultQueueSize(t *testing.T) {
	d := NewDispatcher(&recordingRefresher{}, 0)
	defer d.Close()

	if cap(d.jobs) != defaultQueueSize {
		t.Errorf("queue size = %d, want %d", cap(d.jobs), defaultQueueSize)
	}
}
