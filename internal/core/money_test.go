package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
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
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"1000", 100000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{".5", 0, false},
		{"1e2", 0, false},
		{"1e400000000", 0, false},
		{"1E-2", 0, false},
		{"+-1", 0, false},
		{"1 000", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !IsValidation(err) {
				t.Fatalf("%q expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestParseDecimalAllowsZeroAndNegative(t *testing.T) {
	if m, err := ParseDecimal("0"); err != nil || m.Cents != 0 {
		t.Fatalf("expected 0, got %v (err=%v)", m, err)
	}
	if m, err := ParseDecimal("-12,5"); err != nil || m.Cents != -1250 {
		t.Fatalf("expected -1250, got %v (err=%v)", m, err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:       "0.00",
		5:       "0.05",
		123450:  "1234.50",
		-80000:  "-800.00",
		-1:      "-0.01",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d: expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := map[float64]int64{
		19.99:     1999,
		0.1 + 0.2: 30,
		-5:        -500,
		1e13:      1e15,
	}
	for in, want := range cases {
		got, err := MoneyFromFloat(in)
		if err != nil || got.Cents != want {
			t.Fatalf("%v: expected %d, got %d (err=%v)", in, want, got.Cents, err)
		}
	}
	for _, in := range []float64{1e17, 2e17, -1e17, math.NaN(), math.Inf(1), math.Inf(-1), 1e13 + 1} {
		if _, err := MoneyFromFloat(in); !IsValidation(err) {
			t.Fatalf("%v: expected validation error, got %v", in, err)
		}
	}
	if got := (Money{Cents: 1999}).Float(); got != 19.99 {
		t.Fatalf("expected 19.99, got %v", got)
	}
}
