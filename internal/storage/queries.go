package storage

import (
	"context"
	"time"
)

const createExpense = `
INSERT INTO expenses (user_id, amount_cents, type, note, date, year, month, tier, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, amount_cents, type, note, date, year, month, tier, created_at
`

type CreateExpenseParams struct {
	UserID      string
	AmountCents int64
	Type        string
	Note        string
	Date        string
	Year        int64
	Month       int64
	Tier        string
	CreatedAt   time.Time
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID,
		arg.AmountCents,
		arg.Type,
		arg.Note,
		arg.Date,
		arg.Year,
		arg.Month,
		arg.Tier,
		arg.CreatedAt,
	)
	var e Expense
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.AmountCents,
		&e.Type,
		&e.Note,
		&e.Date,
		&e.Year,
		&e.Month,
		&e.Tier,
		&e.CreatedAt,
	)
	return e, err
}

const getExpense = `
SELECT id, user_id, amount_cents, type, note, date, year, month, tier, created_at
FROM expenses
WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var e Expense
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.AmountCents,
		&e.Type,
		&e.Note,
		&e.Date,
		&e.Year,
		&e.Month,
		&e.Tier,
		&e.CreatedAt,
	)
	return e, err
}

const deleteExpense = `
DELETE FROM expenses
WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteExpense, id)
	return err
}

const listExpensesByMonth = `
SELECT id, user_id, amount_cents, type, note, date, year, month, tier, created_at
FROM expenses
WHERE user_id = ? AND year = ? AND month = ?
ORDER BY date, id
`

type ListExpensesByMonthParams struct {
	UserID string
	Year   int64
	Month  int64
}

func (q *Queries) ListExpensesByMonth(ctx context.Context, arg ListExpensesByMonthParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByMonth, arg.UserID, arg.Year, arg.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.AmountCents,
			&e.Type,
			&e.Note,
			&e.Date,
			&e.Year,
			&e.Month,
			&e.Tier,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const upsertMonthlySummary = `
INSERT INTO monthly_summaries (user_id, year, month, summary, total_spent_cents, total_received_cents, net_balance_cents, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, year, month) DO UPDATE SET
    summary = excluded.summary,
    total_spent_cents = excluded.total_spent_cents,
    total_received_cents = excluded.total_received_cents,
    net_balance_cents = excluded.net_balance_cents,
    updated_at = excluded.updated_at
`

type UpsertMonthlySummaryParams struct {
	UserID             string
	Year               int64
	Month              int64
	Summary            string
	TotalSpentCents    int64
	TotalReceivedCents int64
	NetBalanceCents    int64
	UpdatedAt          time.Time
}

func (q *Queries) UpsertMonthlySummary(ctx context.Context, arg UpsertMonthlySummaryParams) error {
	_, err := q.db.ExecContext(ctx, upsertMonthlySummary,
		arg.UserID,
		arg.Year,
		arg.Month,
		arg.Summary,
		arg.TotalSpentCents,
		arg.TotalReceivedCents,
		arg.NetBalanceCents,
		arg.UpdatedAt,
	)
	return err
}

const upsertYearlySummary = `
INSERT INTO yearly_summaries (user_id, year, summary, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, year) DO UPDATE SET
    summary = excluded.summary,
    updated_at = excluded.updated_at
`

type UpsertYearlySummaryParams struct {
	UserID    string
	Year      int64
	Summary   string
	UpdatedAt time.Time
}

func (q *Queries) UpsertYearlySummary(ctx context.Context, arg UpsertYearlySummaryParams) error {
	_, err := q.db.ExecContext(ctx, upsertYearlySummary,
		arg.UserID,
		arg.Year,
		arg.Summary,
		arg.UpdatedAt,
	)
	return err
}

const getMonthlySummary = `
SELECT id, user_id, year, month, summary, total_spent_cents, total_received_cents, net_balance_cents, updated_at
FROM monthly_summaries
WHERE user_id = ? AND year = ? AND month = ?
`

type GetMonthlySummaryParams struct {
	UserID string
	Year   int64
	Month  int64
}

func (q *Queries) GetMonthlySummary(ctx context.Context, arg GetMonthlySummaryParams) (MonthlySummary, error) {
	row := q.db.QueryRowContext(ctx, getMonthlySummary, arg.UserID, arg.Year, arg.Month)
	var m MonthlySummary
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Year,
		&m.Month,
		&m.Summary,
		&m.TotalSpentCents,
		&m.TotalReceivedCents,
		&m.NetBalanceCents,
		&m.UpdatedAt,
	)
	return m, err
}

const getYearlySummary = `
SELECT id, user_id, year, summary, updated_at
FROM yearly_summaries
WHERE user_id = ? AND year = ?
`

type GetYearlySummaryParams struct {
	UserID string
	Year   int64
}

func (q *Queries) GetYearlySummary(ctx context.Context, arg GetYearlySummaryParams) (YearlySummary, error) {
	row := q.db.QueryRowContext(ctx, getYearlySummary, arg.UserID, arg.Year)
	var y YearlySummary
	err := row.Scan(
		&y.ID,
		&y.UserID,
		&y.Year,
		&y.Summary,
		&y.UpdatedAt,
	)
	return y, err
}

const listMonthlySummariesByYear = `
SELECT id, user_id, year, month, summary, total_spent_cents, total_received_cents, net_balance_cents, updated_at
FROM monthly_summaries
WHERE user_id = ? AND year = ?
ORDER BY month ASC
`

type ListMonthlySummariesByYearParams struct {
	UserID string
	Year   int64
}

func (q *Queries) ListMonthlySummariesByYear(ctx context.Context, arg ListMonthlySummariesByYearParams) ([]MonthlySummary, error) {
	rows, err := q.db.QueryContext(ctx, listMonthlySummariesByYear, arg.UserID, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlySummary
	for rows.Next() {
		var m MonthlySummary
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Year,
			&m.Month,
			&m.Summary,
			&m.TotalSpentCents,
			&m.TotalReceivedCents,
			&m.NetBalanceCents,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listStaleMonths = `
SELECT e.user_id, e.year, e.month
FROM expenses e
LEFT JOIN monthly_summaries ms
    ON ms.user_id = e.user_id AND ms.year = e.year AND ms.month = e.month
GROUP BY e.user_id, e.year, e.month
HAVING ms.updated_at IS NULL OR MAX(e.created_at) > ms.updated_at
ORDER BY e.user_id, e.year, e.month
LIMIT ?
`

type StaleMonth struct {
	UserID string
	Year   int64
	Month  int64
}

func (q *Queries) ListStaleMonths(ctx context.Context, limit int64) ([]StaleMonth, error) {
	rows, err := q.db.QueryContext(ctx, listStaleMonths, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StaleMonth
	for rows.Next() {
		var s StaleMonth
		if err := rows.Scan(&s.UserID, &s.Year, &s.Month); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
