package worker

import (
	"context"
	"path/filepath"
	"testing"

	"sintesi/internal/amqp"
	"sintesi/internal/core"
	"sintesi/internal/services"
	"sintesi/internal/storage"
)

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "a generated summary", nil
}

func newWorker(t *testing.T) (*SummaryWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := services.NewSummaryService(repo, repo, staticGenerator{})
	return NewSummaryWorker(svc, repo, 10), repo
}

func addExpense(t *testing.T, repo *storage.SQLiteRepository, userID, dateStr string, cents int64) {
	t.Helper()
	date, err := core.ParseDate(dateStr)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if _, err := repo.CreateExpense(context.Background(), core.Transaction{
		UserID: userID,
		Amount: core.Money{Cents: cents},
		Type:   "food",
		Date:   date,
		Tier:   core.TierLow,
	}); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
}

func TestHandleRefreshMessage(t *testing.T) {
	w, repo := newWorker(t)
	ctx := context.Background()

	addExpense(t, repo, "u1", "2024-03-10", -2500)

	msg := amqp.NewSummaryRefreshMessage("u1", 2024, 3)
	if err := w.HandleRefreshMessage(ctx, msg); err != nil {
		t.Fatalf("HandleRefreshMessage: %v", err)
	}

	got, err := repo.FindMonthly(ctx, "u1", 2024, 3)
	if err != nil {
		t.Fatalf("FindMonthly: %v", err)
	}
	if got == nil {
		t.Fatal("expected a monthly summary after handling the message")
	}
	if got.Totals.Spent.Cents != 2500 {
		t.Errorf("spent = %d, want 2500", got.Totals.Spent.Cents)
	}
}

func TestHandleRefreshMessageEmptyMonthConsumed(t *testing.T) {
	w, _ := newWorker(t)

	msg := amqp.NewSummaryRefreshMessage("u1", 2024, 3)
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Errorf("empty months must consume the message, got: %v", err)
	}
}

func TestReconcilePending(t *testing.T) {
	w, repo := newWorker(t)
	ctx := context.Background()

	addExpense(t, repo, "u1", "2024-03-10", -2500)
	addExpense(t, repo, "u2", "2024-05-01", -900)

	if err := w.ReconcilePending(ctx); err != nil {
		t.Fatalf("ReconcilePending: %v", err)
	}

	for _, p := range []core.Period{
		{UserID: "u1", Year: 2024, Month: 3},
		{UserID: "u2", Year: 2024, Month: 5},
	} {
		got, err := repo.FindMonthly(ctx, p.UserID, p.Year, p.Month)
		if err != nil {
			t.Fatalf("FindMonthly: %v", err)
		}
		if got == nil {
			t.Errorf("month %+v not reconciled", p)
		}
	}

	// Everything summarized: a second pass finds nothing stale.
	stale, err := repo.ListStaleMonths(ctx, 10)
	if err != nil {
		t.Fatalf("ListStaleMonths: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected no stale months after reconcile, got %+v", stale)
	}
}

func TestReconcilePendingNothingStale(t *testing.T) {
	w, _ := newWorker(t)

	if err := w.ReconcilePending(context.Background()); err != nil {
		t.Errorf("ReconcilePending on an empty store: %v", err)
	}
}

func TestStartupCheck(t *testing.T) {
	w, repo := newWorker(t)
	ctx := context.Background()

	addExpense(t, repo, "u1", "2024-03-10", -2500)

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}

	got, err := repo.FindMonthly(ctx, "u1", 2024, 3)
	if err != nil {
		t.Fatalf("FindMonthly: %v", err)
	}
	if got == nil {
		t.Error("startup check should refresh the stale month")
	}
}
