package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sintesi/internal/amqp"
	"sintesi/internal/core"
	"sintesi/internal/services"
)

// StaleMonthLister finds user-months whose summaries lag behind their
// expense writes.
type StaleMonthLister interface {
	ListStaleMonths(ctx context.Context, limit int) ([]core.Period, error)
}

// SummaryWorker drives the summary pipeline from the message queue, with a
// reconcile pass as backup for triggers lost in transit.
type SummaryWorker struct {
	summaries *services.SummaryService
	stale     StaleMonthLister
	batchSize int
}

func NewSummaryWorker(summaries *services.SummaryService, stale StaleMonthLister, batchSize int) *SummaryWorker {
	return &SummaryWorker{
		summaries: summaries,
		stale:     stale,
		batchSize: batchSize,
	}
}

// HandleRefreshMessage processes a single summary refresh message from AMQP.
// Validation failures are terminal and consume the message; requeueing a
// month that has no transactions would loop forever.
func (w *SummaryWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.SummaryRefreshMessage) error {
	slog.InfoContext(ctx, "Processing refresh message",
		"user_id", msg.UserID,
		"year", msg.Year,
		"month", msg.Month)

	p := core.Period{UserID: msg.UserID, Year: msg.Year, Month: msg.Month}
	result, err := w.summaries.RefreshPeriod(ctx, p)
	if errors.Is(err, core.ErrValidation) {
		slog.WarnContext(ctx, "Dropping invalid refresh message",
			"user_id", msg.UserID,
			"year", msg.Year,
			"month", msg.Month,
			"error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh summaries: %w", err)
	}

	if result.Degraded {
		slog.WarnContext(ctx, "Refresh completed degraded",
			"user_id", msg.UserID,
			"year", msg.Year,
			"month", msg.Month,
			"message", result.Message)
	}

	return nil
}

// ReconcilePending refreshes user-months whose summaries are missing or
// older than the newest expense write. This is a backup mechanism in case
// trigger messages are lost.
func (w *SummaryWorker) ReconcilePending(ctx context.Context) error {
	pending, err := w.stale.ListStaleMonths(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list stale months: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Reconciling stale months", "count", len(pending))

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := w.summaries.RefreshPeriod(ctx, p)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to reconcile month",
				"user_id", p.UserID,
				"year", p.Year,
				"month", p.Month,
				"error", err)
			continue
		}
		if result.Degraded {
			slog.WarnContext(ctx, "Reconcile left month degraded",
				"user_id", p.UserID,
				"year", p.Year,
				"month", p.Month,
				"message", result.Message)
		}
	}

	return nil
}

// StartupCheck runs one reconcile pass with a larger batch at worker start,
// recovering from downtime before the periodic loop takes over.
func (w *SummaryWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.stale.ListStaleMonths(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list stale months for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No stale months found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found stale months on startup, processing...",
		"count", len(pending))

	refreshed := 0
	for _, p := range pending {
		if _, err := w.summaries.RefreshPeriod(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh month during startup",
				"user_id", p.UserID,
				"year", p.Year,
				"month", p.Month,
				"error", err)
			continue
		}
		refreshed++
	}

	slog.InfoContext(ctx, "Startup reconcile completed",
		"total", len(pending),
		"refreshed", refreshed)

	return nil
}
