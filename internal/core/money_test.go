package core

import "testing"

func TestParseSignedDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"-1", -100, true},
		{"-0.50", -50, true},
		{"-100", -10000, true},
		{"+2.50", 250, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1-2", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{10000, "100"},
		{10050, "100.50"},
		{1, "0.01"},
		{0, "0"},
		{-307, "-3.07"},
		{-10000, "-100"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -42}).Abs(); got.Cents != 42 {
		t.Errorf("Abs(-42) = %d, want 42", got.Cents)
	}
	if got := (Money{Cents: 42}).Abs(); got.Cents != 42 {
		t.Errorf("Abs(42) = %d, want 42", got.Cents)
	}
}
