package utils

import (
	"time"
	_ "time/tzdata"
)

// ET is the US Eastern time zone the NYSE trades in.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST if the tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// DateLayout is the layout used for trading dates everywhere in stockcast.
const DateLayout = "2006-01-02"

// NowET returns the current time in US Eastern time.
func NowET() time.Time {
	return time.Now().In(ET)
}

// TradingDate truncates t to midnight of its trading day in ET.
func TradingDate(t time.Time) time.Time {
	d := t.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, ET)
}

// MarketOpenTime returns the NYSE opening time (9:30 AM ET) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the NYSE closing time (4:00 PM ET) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// NYSE holidays for 2026 (update annually).
var nyseHolidays2026 = map[string]string{
	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Washington's Birthday",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving Day",
	"2026-12-25": "Christmas Day",
}

// ParseDate parses a "2006-01-02" date in ET.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, ET)
}

// FormatDate formats t as "2006-01-02" in ET.
func FormatDate(t time.Time) string {
	return t.In(ET).Format(DateLayout)
}

// FormatDateTime formats t as "2006-01-02 15:04:05 ET".
func FormatDateTime(t time.Time) string {
	return t.In(ET).Format("2006-01-02 15:04:05") + " ET"
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowET())
}

// MarketStatusAt returns the market status at t.
func MarketStatusAt(t time.Time) string {
	now := t.In(ET)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if holiday, ok := nyseHolidays2026[now.Format(DateLayout)]; ok {
		return "CLOSED (" + holiday + ")"
	}

	switch {
	case now.Before(MarketOpenTime(now)):
		return "PRE-MARKET"
	case now.Before(MarketCloseTime(now)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
