package core

import "time"

// MonthlySummary is the persisted summary record for one (user, year, month).
// The totals are denormalized alongside the text so readers never have to
// re-aggregate transactions.
type MonthlySummary struct {
	UserID    string
	Year      int
	Month     int // 1-12
	Summary   string
	Totals    Totals
	UpdatedAt time.Time
}

// YearlySummary is the persisted summary record for one (user, year). It is
// always a fold over the user's monthly summaries of that year, never over
// raw transactions.
type YearlySummary struct {
	UserID    string
	Year      int
	Summary   string
	UpdatedAt time.Time
}
