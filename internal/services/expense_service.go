package services

import (
	"context"
	"fmt"
	"log/slog"

	"sintesi/internal/core"
	"sintesi/internal/storage"
)

// Notifier fans a summary refresh out to whatever runs the pipeline. It is
// fire-and-forget: implementations must return promptly and never report
// delivery failures back to the caller.
type Notifier interface {
	NotifySummaryRefresh(ctx context.Context, userID string, year, month int)
}

// ExpenseService owns the transaction store and fires the summary trigger
// after every write. Expense writes must never be slowed down or failed by
// the summary pipeline.
type ExpenseService struct {
	storage  *storage.SQLiteRepository
	notifier Notifier
}

func NewExpenseService(storage *storage.SQLiteRepository, notifier Notifier) *ExpenseService {
	return &ExpenseService{
		storage:  storage,
		notifier: notifier,
	}
}

// CreateExpense validates and persists a transaction, then triggers a
// summary refresh for the affected month.
func (s *ExpenseService) CreateExpense(ctx context.Context, tx core.Transaction) (int64, error) {
	if tx.Tier == "" {
		tx.Tier = core.TierLow
	}
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.notify(ctx, tx.Date.Period(tx.UserID))
	return id, nil
}

// DeleteExpense removes a transaction and triggers a refresh for the month
// it belonged to. Returns nil when the ID does not exist.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) (*core.Transaction, error) {
	deleted, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete expense: %w", err)
	}
	if deleted == nil {
		return nil, nil
	}

	s.notify(ctx, deleted.Date.Period(deleted.UserID))
	return deleted, nil
}

// ListMonth returns the user's transactions for one calendar month.
func (s *ExpenseService) ListMonth(ctx context.Context, userID string, year, month int) ([]core.Transaction, error) {
	return s.storage.ListExpensesByMonth(ctx, userID, year, month)
}

func (s *ExpenseService) notify(ctx context.Context, p core.Period) {
	if s.notifier == nil {
		slog.WarnContext(ctx, "No summary notifier configured, skipping refresh trigger",
			"user_id", p.UserID,
			"year", p.Year,
			"month", p.Month)
		return
	}
	s.notifier.NotifySummaryRefresh(ctx, p.UserID, p.Year, p.Month)
}

// Close releases the underlying store.
func (s *ExpenseService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close expense storage: %w", err)
		}
	}
	return nil
}
