// Package universe resolves the list of tickers a run forecasts.
package universe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/stockcast/internal/datasource"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// DefaultURL is the Wikipedia list of S&P 500 constituents.
const DefaultURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

var (
	// ErrNoTable is returned when the page holds no wikitable.
	ErrNoTable = errors.New("no constituents table found")
	// ErrNoSymbolColumn is returned when the table has no Symbol header.
	ErrNoSymbolColumn = errors.New("no Symbol column in constituents table")
)

// Source returns ticker symbols in their listed order.
type Source interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Static is a fixed ticker list.
type Static []string

// Tickers returns the normalized, deduplicated list.
func (s Static) Tickers(context.Context) ([]string, error) {
	return dedupe(s), nil
}

// Wikipedia scrapes the Symbol column of a Wikipedia index table.
type Wikipedia struct {
	URL string
}

// NewWikipedia creates a Wikipedia source. An empty url uses DefaultURL.
func NewWikipedia(url string) *Wikipedia {
	if url == "" {
		url = DefaultURL
	}
	return &Wikipedia{URL: url}
}

// Tickers fetches the page and returns the Symbol column.
func (w *Wikipedia) Tickers(ctx context.Context) ([]string, error) {
	body, err := datasource.Get(ctx, w.URL, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch universe %s: %w", w.URL, err)
	}
	defer body.Close()
	return ParseSymbols(body)
}

// ParseSymbols extracts the Symbol column from the first wikitable of an
// HTML document, preferring the table with id "constituents".
func ParseSymbols(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse universe page: %w", err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		table = doc.Find("table.wikitable").First()
	}
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	col := -1
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		headers := row.Find("th")
		if headers.Length() == 0 {
			return true
		}
		headers.EachWithBreak(func(i int, th *goquery.Selection) bool {
			name := strings.ToLower(strings.TrimSpace(th.Text()))
			if name == "symbol" || name == "ticker" || name == "ticker symbol" {
				col = i
				return false
			}
			return true
		})
		return false
	})
	if col < 0 {
		return nil, ErrNoSymbolColumn
	}

	var symbols []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= col {
			return
		}
		sym := strings.TrimSpace(cells.Eq(col).Text())
		if sym != "" {
			symbols = append(symbols, sym)
		}
	})
	return dedupe(symbols), nil
}

// Truncate returns the first limit tickers. A non-positive limit keeps all.
func Truncate(tickers []string, limit int) []string {
	if limit <= 0 || len(tickers) <= limit {
		return tickers
	}
	return tickers[:limit]
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = utils.NormalizeTicker(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
