package utils

import (
	"strings"
)

// Common ticker aliases. Keys are upper-cased user input.
var tickerAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"BERKSHIRE": "BRK.B",
	"BRK-B":     "BRK.B",
	"BRK/B":     "BRK.B",
	"BF-B":      "BF.B",
	"BF/B":      "BF.B",
}

// NormalizeTicker normalizes a user-input ticker to the listing format used
// by the S&P 500 constituents table (class shares use a dot, e.g. "BRK.B").
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat and news)
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYahooSymbol converts a listing ticker to Yahoo Finance format.
// Yahoo uses a dash for share classes: "BRK.B" → "BRK-B".
func ToYahooSymbol(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if strings.HasPrefix(ticker, "^") {
		return ticker
	}
	return strings.ReplaceAll(ticker, ".", "-")
}

// ParseTickerList splits a comma or whitespace separated list of tickers,
// normalizing each and dropping empties and duplicates.
func ParseTickerList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := NormalizeTicker(f)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
