package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sintesi/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence layer for summary records and for the
// expense store that feeds the summary pipeline.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertMonthly replaces the monthly summary record for its key. The write is
// a single statement, so concurrent upserts to the same key cannot interleave
// partial fields; the last writer wins with a full record.
func (r *SQLiteRepository) UpsertMonthly(ctx context.Context, s core.MonthlySummary) error {
	err := r.queries.UpsertMonthlySummary(ctx, UpsertMonthlySummaryParams{
		UserID:             s.UserID,
		Year:               int64(s.Year),
		Month:              int64(s.Month),
		Summary:            s.Summary,
		TotalSpentCents:    s.Totals.Spent.Cents,
		TotalReceivedCents: s.Totals.Received.Cents,
		NetBalanceCents:    s.Totals.Net.Cents,
		UpdatedAt:          s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("upsert monthly summary: %w", err)
	}

	slog.InfoContext(ctx, "Monthly summary saved",
		"user_id", s.UserID,
		"year", s.Year,
		"month", s.Month,
		"spent_cents", s.Totals.Spent.Cents,
		"net_cents", s.Totals.Net.Cents)

	return nil
}

// UpsertYearly replaces the yearly summary record for its key.
func (r *SQLiteRepository) UpsertYearly(ctx context.Context, s core.YearlySummary) error {
	err := r.queries.UpsertYearlySummary(ctx, UpsertYearlySummaryParams{
		UserID:    s.UserID,
		Year:      int64(s.Year),
		Summary:   s.Summary,
		UpdatedAt: s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("upsert yearly summary: %w", err)
	}

	slog.InfoContext(ctx, "Yearly summary saved",
		"user_id", s.UserID,
		"year", s.Year)

	return nil
}

// FindMonthly returns the monthly summary for the key, or nil when no record
// exists. Absence is not an error.
func (r *SQLiteRepository) FindMonthly(ctx context.Context, userID string, year, month int) (*core.MonthlySummary, error) {
	row, err := r.queries.GetMonthlySummary(ctx, GetMonthlySummaryParams{
		UserID: userID,
		Year:   int64(year),
		Month:  int64(month),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get monthly summary: %w", err)
	}
	summary := monthlyToCore(row)
	return &summary, nil
}

// FindYearly returns the yearly summary for the key, or nil when no record
// exists.
func (r *SQLiteRepository) FindYearly(ctx context.Context, userID string, year int) (*core.YearlySummary, error) {
	row, err := r.queries.GetYearlySummary(ctx, GetYearlySummaryParams{
		UserID: userID,
		Year:   int64(year),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get yearly summary: %w", err)
	}
	return &core.YearlySummary{
		UserID:    row.UserID,
		Year:      int(row.Year),
		Summary:   row.Summary,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// ListMonthlyByYear returns all monthly summaries of one user-year, months
// ascending. The yearly stage depends on this ordering.
func (r *SQLiteRepository) ListMonthlyByYear(ctx context.Context, userID string, year int) ([]core.MonthlySummary, error) {
	rows, err := r.queries.ListMonthlySummariesByYear(ctx, ListMonthlySummariesByYearParams{
		UserID: userID,
		Year:   int64(year),
	})
	if err != nil {
		return nil, fmt.Errorf("list monthly summaries: %w", err)
	}
	summaries := make([]core.MonthlySummary, len(rows))
	for i, row := range rows {
		summaries[i] = monthlyToCore(row)
	}
	return summaries, nil
}

// CreateExpense persists a transaction and returns its assigned ID.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, tx core.Transaction) (int64, error) {
	created, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      tx.UserID,
		AmountCents: tx.Amount.Cents,
		Type:        tx.Type,
		Note:        tx.Note,
		Date:        tx.Date.String(),
		Year:        int64(tx.Date.Year()),
		Month:       int64(tx.Date.Month()),
		Tier:        string(tx.Tier),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", created.ID,
		"user_id", created.UserID,
		"amount_cents", created.AmountCents,
		"type", created.Type,
		"date", created.Date)

	return created.ID, nil
}

// GetExpense retrieves a single transaction by ID, nil when absent.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*core.Transaction, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	tx, err := expenseToCore(row)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteExpense removes a transaction and returns the deleted record, so the
// caller can derive the affected summary period. Returns nil when the ID does
// not exist.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (*core.Transaction, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete tx: %w", err)
	}
	defer sqlTx.Rollback()

	qtx := r.queries.WithTx(sqlTx)

	row, err := qtx.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense for delete: %w", err)
	}

	if err := qtx.DeleteExpense(ctx, id); err != nil {
		return nil, fmt.Errorf("delete expense: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	deleted, err := expenseToCore(row)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense deleted",
		"id", id,
		"user_id", deleted.UserID,
		"date", deleted.Date.String())

	return &deleted, nil
}

// ListExpensesByMonth returns one user's transactions for a calendar month,
// ordered by date. The month is matched on structured year/month columns, not
// on date-string prefixes.
func (r *SQLiteRepository) ListExpensesByMonth(ctx context.Context, userID string, year, month int) ([]core.Transaction, error) {
	rows, err := r.queries.ListExpensesByMonth(ctx, ListExpensesByMonthParams{
		UserID: userID,
		Year:   int64(year),
		Month:  int64(month),
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses by month: %w", err)
	}
	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		txs[i], err = expenseToCore(row)
		if err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// ListStaleMonths returns user-months whose monthly summary is missing or
// older than the newest expense write. The worker's reconcile pass re-runs
// these to recover from dropped triggers.
func (r *SQLiteRepository) ListStaleMonths(ctx context.Context, limit int) ([]core.Period, error) {
	rows, err := r.queries.ListStaleMonths(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list stale months: %w", err)
	}
	periods := make([]core.Period, len(rows))
	for i, row := range rows {
		periods[i] = core.Period{
			UserID: row.UserID,
			Year:   int(row.Year),
			Month:  int(row.Month),
		}
	}
	return periods, nil
}

func monthlyToCore(row MonthlySummary) core.MonthlySummary {
	return core.MonthlySummary{
		UserID:  row.UserID,
		Year:    int(row.Year),
		Month:   int(row.Month),
		Summary: row.Summary,
		Totals: core.Totals{
			Spent:    core.Money{Cents: row.TotalSpentCents},
			Received: core.Money{Cents: row.TotalReceivedCents},
			Net:      core.Money{Cents: row.NetBalanceCents},
		},
		UpdatedAt: row.UpdatedAt,
	}
}

func expenseToCore(row Expense) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored expense %d has malformed date %q", row.ID, row.Date)
	}
	return core.Transaction{
		ID:     row.ID,
		UserID: row.UserID,
		Amount: core.Money{Cents: row.AmountCents},
		Type:   row.Type,
		Date:   date,
		Note:   row.Note,
		Tier:   core.Tier(row.Tier),
	}, nil
}
