package core

import (
	"errors"
	"testing"
)

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		name   string
		period Period
		want   error
	}{
		{"valid", Period{UserID: "u1", Year: 2024, Month: 3}, nil},
		{"missing user", Period{Year: 2024, Month: 3}, ErrMissingUserID},
		{"blank user", Period{UserID: "  ", Year: 2024, Month: 3}, ErrMissingUserID},
		{"year too small", Period{UserID: "u1", Year: 0, Month: 3}, ErrInvalidYear},
		{"month zero", Period{UserID: "u1", Year: 2024, Month: 0}, ErrInvalidMonth},
		{"month too big", Period{UserID: "u1", Year: 2024, Month: 13}, ErrInvalidMonth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.period.Validate()
			if !errors.Is(err, tc.want) && err != tc.want {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
			if tc.want != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("%v should wrap ErrValidation", err)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 1 {
		t.Errorf("got %d-%d-%d, want 2024-3-1", d.Year(), d.Month(), d.Day())
	}
	if d.String() != "2024-03-01" {
		t.Errorf("String() = %q", d.String())
	}

	if _, err := ParseDate("01/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for empty string, got %v", err)
	}
}

func TestDatePeriod(t *testing.T) {
	d, _ := ParseDate("2024-12-31")
	p := d.Period("u1")
	if p != (Period{UserID: "u1", Year: 2024, Month: 12}) {
		t.Errorf("Period = %+v", p)
	}
}

func TestTierValidate(t *testing.T) {
	for _, tier := range []Tier{TierLow, TierMedium, TierHigh, TierAvoidable} {
		if err := tier.Validate(); err != nil {
			t.Errorf("%q should be valid: %v", tier, err)
		}
	}
	if err := Tier("critical").Validate(); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		UserID: "u1",
		Amount: Money{Cents: -100},
		Type:   "food",
		Date:   NewDate(2024, 3, 1),
		Tier:   TierLow,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	missingType := valid
	missingType.Type = " "
	if err := missingType.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}

	zeroDate := valid
	zeroDate.Date = Date{}
	if err := zeroDate.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
