package utils

import (
	"testing"
	"time"
)

func TestTradingDate(t *testing.T) {
	// 02:00 UTC on the 19th is still the 18th in New York.
	ts := time.Date(2026, 2, 19, 2, 0, 0, 0, time.UTC)
	got := TradingDate(ts)
	if FormatDate(got) != "2026-02-18" {
		t.Errorf("TradingDate = %s, want 2026-02-18", FormatDate(got))
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("TradingDate not truncated: %v", got)
	}
}

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 18, 12, 0, 0, 0, ET)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("MarketOpenTime = %v, want 09:30", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 16:00", close)
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 2, 18, 8, 0, 0, 0, ET), "PRE-MARKET"},
		{time.Date(2026, 2, 18, 10, 0, 0, 0, ET), "OPEN"},
		{time.Date(2026, 2, 18, 17, 0, 0, 0, ET), "CLOSED"},
		{time.Date(2026, 2, 21, 10, 0, 0, 0, ET), "CLOSED (Weekend)"},
		{time.Date(2026, 12, 25, 10, 0, 0, 0, ET), "CLOSED (Christmas Day)"},
	}
	for _, tt := range tests {
		if got := MarketStatusAt(tt.at); got != tt.want {
			t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestParseFormatDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2020-01-02")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(d) != "2020-01-02" {
		t.Errorf("FormatDate = %s", FormatDate(d))
	}
	if _, err := ParseDate("01/02/2020"); err == nil {
		t.Error("expected error for malformed date")
	}
}
