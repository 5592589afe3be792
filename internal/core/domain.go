package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TierLow       Tier = "low"
	TierMedium    Tier = "medium"
	TierHigh      Tier = "high"
	TierAvoidable Tier = "avoidable"
)

type (
	// Tier classifies how necessary a transaction was.
	Tier string

	Date struct {
		time.Time
	}

	// Money is a signed amount in minor currency units.
	// Negative cents mean money spent, zero or positive mean money received.
	Money struct {
		Cents int64
	}

	// Transaction is a single financial event owned by the expense store.
	// Immutable once it enters the summary pipeline.
	Transaction struct {
		ID     int64
		UserID string
		Amount Money
		Type   string
		Date   Date
		Note   string
		Tier   Tier
	}

	// Period identifies one user-month of summary state.
	Period struct {
		UserID string
		Year   int
		Month  int // 1-12
	}
)

// Validation sentinels. Anything wrapping ErrValidation is terminal for a
// summary run and surfaces to the caller as a client error.
var (
	ErrValidation     = errors.New("invalid request")
	ErrNoTransactions = fmt.Errorf("%w: empty transaction list", ErrValidation)
	ErrMissingUserID  = fmt.Errorf("%w: missing userId", ErrValidation)
	ErrInvalidYear    = fmt.Errorf("%w: invalid year", ErrValidation)
	ErrInvalidMonth   = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidType    = fmt.Errorf("%w: missing transaction type", ErrValidation)
	ErrInvalidTier    = fmt.Errorf("%w: invalid requirement tier", ErrValidation)
	ErrInvalidAmount  = fmt.Errorf("%w: invalid amount", ErrValidation)
)

func (t Tier) Validate() error {
	switch t {
	case TierLow, TierMedium, TierHigh, TierAvoidable:
		return nil
	default:
		return ErrInvalidTier
	}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: parsed}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// String formats the date back to YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Period returns the summary period the date falls into.
func (d Date) Period(userID string) Period {
	return Period{UserID: userID, Year: d.Year(), Month: d.Month()}
}

func (p Period) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingUserID
	}
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidYear
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUserID
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Type) == "" {
		return ErrInvalidType
	}
	if err := t.Tier.Validate(); err != nil {
		return err
	}
	return nil
}
