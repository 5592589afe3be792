package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sintesi/internal/core"
	"sintesi/internal/llm"
	"sintesi/internal/prompt"
)

// SummaryStore is the persistence surface the orchestrator writes through.
type SummaryStore interface {
	UpsertMonthly(ctx context.Context, s core.MonthlySummary) error
	UpsertYearly(ctx context.Context, s core.YearlySummary) error
	FindMonthly(ctx context.Context, userID string, year, month int) (*core.MonthlySummary, error)
	FindYearly(ctx context.Context, userID string, year int) (*core.YearlySummary, error)
	ListMonthlyByYear(ctx context.Context, userID string, year int) ([]core.MonthlySummary, error)
}

// TransactionSource supplies the current transaction set for a user-month.
type TransactionSource interface {
	ListExpensesByMonth(ctx context.Context, userID string, year, month int) ([]core.Transaction, error)
}

// RefreshRequest carries one summary run's input.
type RefreshRequest struct {
	UserID       string
	Year         int
	Month        int
	Transactions []core.Transaction
}

// RefreshResult is always produced for a valid request, even when the
// generator or the store is down.
type RefreshResult struct {
	Message        string
	MonthlySummary string
	YearlySummary  string
	Totals         core.Totals
	Degraded       bool
}

const (
	msgUpdated     = "Summaries updated successfully"
	msgUnavailable = "AI temporarily unavailable"
)

// SummaryService runs the summary pipeline: totals, monthly generation and
// persistence, then yearly generation from the persisted monthly state.
type SummaryService struct {
	store SummaryStore
	txs   TransactionSource
	gen   llm.Generator
	now   func() time.Time
}

func NewSummaryService(store SummaryStore, txs TransactionSource, gen llm.Generator) *SummaryService {
	return &SummaryService{
		store: store,
		txs:   txs,
		gen:   gen,
		now:   time.Now,
	}
}

// Refresh runs the pipeline for one user-month. Stages run strictly in
// order; the monthly record is persisted before the yearly stage reads the
// monthly state back, because the yearly summary must fold over the write
// that just happened.
//
// Only validation failures are returned as errors. Generation failures fall
// back to deterministic summaries, and a store failure degrades the result
// instead of propagating, so fire-and-forget callers always get an answer.
func (s *SummaryService) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResult, error) {
	period := core.Period{UserID: req.UserID, Year: req.Year, Month: req.Month}

	// Stage 1: validate. Terminal, nothing persisted.
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if len(req.Transactions) == 0 {
		return nil, core.ErrNoTransactions
	}

	// Stage 2: compute totals.
	totals := core.ComputeTotals(req.Transactions)

	// Stage 3: monthly generation, falling back on generator exhaustion.
	monthlyText, monthlyFellBack := s.generate(ctx,
		prompt.Monthly(period, totals, req.Transactions),
		FallbackMonthly(period, totals))

	// Stage 4: monthly persistence. Must complete before the yearly fetch.
	err := s.store.UpsertMonthly(ctx, core.MonthlySummary{
		UserID:    period.UserID,
		Year:      period.Year,
		Month:     period.Month,
		Summary:   monthlyText,
		Totals:    totals,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return s.degrade(ctx, period, totals, "persist monthly summary", err), nil
	}

	// Stage 5: read the year's monthly state back, months ascending.
	months, err := s.store.ListMonthlyByYear(ctx, period.UserID, period.Year)
	if err != nil {
		return s.degrade(ctx, period, totals, "fetch monthly summaries", err), nil
	}

	// Stage 6: yearly generation over summaries only.
	yearlyText, yearlyFellBack := s.generate(ctx,
		prompt.Yearly(period.UserID, period.Year, months),
		FallbackYearly(period.Year, len(months)))

	// Stage 7: yearly persistence.
	err = s.store.UpsertYearly(ctx, core.YearlySummary{
		UserID:    period.UserID,
		Year:      period.Year,
		Summary:   yearlyText,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return s.degrade(ctx, period, totals, "persist yearly summary", err), nil
	}

	slog.InfoContext(ctx, "Summary refresh completed",
		"user_id", period.UserID,
		"year", period.Year,
		"month", period.Month,
		"tx_count", len(req.Transactions),
		"monthly_fallback", monthlyFellBack,
		"yearly_fallback", yearlyFellBack)

	return &RefreshResult{
		Message:        msgUpdated,
		MonthlySummary: monthlyText,
		YearlySummary:  yearlyText,
		Totals:         totals,
	}, nil
}

// RefreshPeriod loads the month's current transactions and runs Refresh.
// Used by the trigger paths, where only the affected period is known.
func (s *SummaryService) RefreshPeriod(ctx context.Context, p core.Period) (*RefreshResult, error) {
	txs, err := s.txs.ListExpensesByMonth(ctx, p.UserID, p.Year, p.Month)
	if err != nil {
		return s.degrade(ctx, p, core.Totals{}, "load month transactions", err), nil
	}
	return s.Refresh(ctx, RefreshRequest{
		UserID:       p.UserID,
		Year:         p.Year,
		Month:        p.Month,
		Transactions: txs,
	})
}

// FindMonthly returns the stored monthly summary, nil when absent.
func (s *SummaryService) FindMonthly(ctx context.Context, userID string, year, month int) (*core.MonthlySummary, error) {
	return s.store.FindMonthly(ctx, userID, year, month)
}

// FindYearly returns the stored yearly summary, nil when absent.
func (s *SummaryService) FindYearly(ctx context.Context, userID string, year int) (*core.YearlySummary, error) {
	return s.store.FindYearly(ctx, userID, year)
}

// generate invokes the generator and substitutes the deterministic fallback
// when generation definitively fails. This path never fails the run.
func (s *SummaryService) generate(ctx context.Context, promptText, fallback string) (text string, fellBack bool) {
	text, err := s.gen.Generate(ctx, promptText)
	if err != nil {
		slog.WarnContext(ctx, "Generator unavailable, using fallback summary",
			"error", err)
		return fallback, true
	}
	return text, false
}

func (s *SummaryService) degrade(ctx context.Context, p core.Period, totals core.Totals, stage string, err error) *RefreshResult {
	slog.ErrorContext(ctx, "Summary refresh degraded",
		"user_id", p.UserID,
		"year", p.Year,
		"month", p.Month,
		"stage", stage,
		"error", err)
	return &RefreshResult{
		Message:        fmt.Sprintf("Summary update incomplete: %s failed", stage),
		MonthlySummary: msgUnavailable,
		Totals:         totals,
		Degraded:       true,
	}
}

// FallbackMonthly is the deterministic monthly summary used when the
// generator is unavailable. Derived purely from the computed totals.
func FallbackMonthly(p core.Period, totals core.Totals) string {
	return fmt.Sprintf("Summary for %d/%d: Total spending ₹%s.", p.Month, p.Year, totals.Spent)
}

// FallbackYearly is the deterministic yearly summary, derived from the count
// of persisted monthly records.
func FallbackYearly(year, monthCount int) string {
	return fmt.Sprintf("Yearly summary for %d. Months recorded: %d.", year, monthCount)
}
