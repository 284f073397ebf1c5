package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatIndianCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"999.5", "₹999.50"},
		{"1000", "₹1,000.00"},
		{"100000", "₹1,00,000.00"},
		{"12345678.9", "₹1,23,45,678.90"},
		{"-750", "-₹750.00"},
		{"-2500.555", "-₹2,500.56"},
	}
	for _, tt := range tests {
		got := FormatIndianCurrency(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("FormatIndianCurrency(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	for _, in := range []string{"2024-05-01", "Wed May 01 2024", " 2024-05-01 "} {
		got, ok := ParseDay(in, IndiaLocation)
		if !ok {
			t.Fatalf("ParseDay(%q) failed", in)
		}
		if DayKey(got) != "2024-05-01" {
			t.Errorf("ParseDay(%q) = %s", in, DayKey(got))
		}
	}
	if _, ok := ParseDay("yesterday", IndiaLocation); ok {
		t.Error("expected failure for free text")
	}
}

func TestDayLabel(t *testing.T) {
	if got := DayLabel("2024-05-01"); got != "May 1" {
		t.Errorf("DayLabel = %q, want May 1", got)
	}
	if got := DayLabel("2024-12-25"); got != "Dec 25" {
		t.Errorf("DayLabel = %q, want Dec 25", got)
	}
	if got := DayLabel("someday"); got != "someday" {
		t.Errorf("DayLabel passthrough = %q", got)
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	// 20:00 UTC is 01:30 next day in IST.
	utc := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	if got := DayKey(utc.In(IndiaLocation)); got != "2024-05-02" {
		t.Errorf("DayKey in IST = %s, want 2024-05-02", got)
	}
	if got := StartOfDay(utc); !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
}
