package storage

import "time"

type Expense struct {
	ID          int64
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

type MonthlySummary struct {
	ID                 int64
	UserID             string
	Year               int64
	Month              int64
	Summary            string
	TotalSpentCents    int64
	TotalReceivedCents int64
	NetBalanceCents    int64
	UpdatedAt          time.Time
}

type YearlySummary struct {
	ID        int64
	UserID    string
	Year      int64
	Summary   string
	UpdatedAt time.Time
}
