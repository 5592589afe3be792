package trigger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sintesi/internal/core"
	"sintesi/internal/services"
)

const defaultQueueSize = 64

// refreshTimeout bounds one pipeline run so a hung generator cannot stall
// the dispatcher forever.
const refreshTimeout = 2 * time.Minute

// Refresher runs the summary pipeline for one user-month.
type Refresher interface {
	RefreshPeriod(ctx context.Context, p core.Period) (*services.RefreshResult, error)
}

// Dispatcher is the in-process trigger path. Notifications go through a
// bounded queue drained by a single worker goroutine, which both keeps
// expense writes non-blocking and serializes refreshes so runs for the same
// period cannot interleave. When the queue is full the notification is
// dropped; the reconcile pass picks the period up later.
type Dispatcher struct {
	refresher Refresher
	jobs      chan core.Period
	done      chan struct{}
	stopped   atomic.Bool
	closeOnce sync.Once
}

func NewDispatcher(refresher Refresher, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		refresher: refresher,
		jobs:      make(chan core.Period, queueSize),
		done:      make(chan struct{}),
	}
	go d.loop()
	return d
}

// NotifySummaryRefresh enqueues a refresh for the period and returns
// immediately. Never blocks and never reports failure to the caller.
func (d *Dispatcher) NotifySummaryRefresh(ctx context.Context, userID string, year, month int) {
	if d.stopped.Load() {
		return
	}

	p := core.Period{UserID: userID, Year: year, Month: month}
	select {
	case d.jobs <- p:
	default:
		slog.WarnContext(ctx, "Refresh queue full, dropping trigger",
			"user_id", userID,
			"year", year,
			"month", month,
			"queue_depth", cap(d.jobs))
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for p := range d.jobs {
		d.run(p)
	}
}

func (d *Dispatcher) run(p core.Period) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Refresh worker recovered from panic",
				"user_id", p.UserID,
				"year", p.Year,
				"month", p.Month,
				"panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	result, err := d.refresher.RefreshPeriod(ctx, p)
	if err != nil {
		slog.WarnContext(ctx, "Background refresh rejected",
			"user_id", p.UserID,
			"year", p.Year,
			"month", p.Month,
			"error", err)
		return
	}
	if result.Degraded {
		slog.WarnContext(ctx, "Background refresh degraded",
			"user_id", p.UserID,
			"year", p.Year,
			"month", p.Month,
			"message", result.Message)
	}
}

// Close stops accepting notifications and waits for queued refreshes to
// drain.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.stopped.Store(true)
		close(d.jobs)
	})
	<-d.done
	return nil
}
