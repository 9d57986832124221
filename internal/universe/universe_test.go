package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constituentsPage = `<html><body>
<table class="wikitable sortable" id="changes"><tr><th>Date</th><th>Added</th></tr>
<tr><td>2024-03-18</td><td>SMCI</td></tr></table>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="/x">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="/x">AOS</a></td><td>A. O. Smith</td><td>Industrials</td></tr>
<tr><td><a href="/x">BRK.B</a></td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td></td><td>Blank</td><td>None</td></tr>
<tr><td>MMM</td><td>3M duplicate</td><td>Industrials</td></tr>
</tbody></table></body></html>`

func TestParseSymbolsPrefersConstituents(t *testing.T) {
	symbols, err := ParseSymbols(strings.NewReader(constituentsPage))
	require.NoError(t, err)
	assert.Equal(t, []string{"MMM", "AOS", "BRK.B"}, symbols)
}

func TestParseSymbolsFirstWikitable(t *testing.T) {
	page := `<table class="wikitable"><thead><tr><th>Company</th><th>Ticker</th></tr></thead>
<tbody><tr><td>Apple</td><td>aapl</td></tr><tr><td>Microsoft</td><td>MSFT</td></tr></tbody></table>`
	symbols, err := ParseSymbols(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestParseSymbolsErrors(t *testing.T) {
	_, err := ParseSymbols(strings.NewReader(`<p>no tables here</p>`))
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = ParseSymbols(strings.NewReader(`<table class="wikitable"><tr><th>Name</th></tr><tr><td>x</td></tr></table>`))
	assert.ErrorIs(t, err, ErrNoSymbolColumn)
}

func TestWikipediaTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, constituentsPage)
	}))
	defer srv.Close()

	symbols, err := NewWikipedia(srv.URL).Tickers(context.Background())
	require.NoError(t, err)
	assert.Len(t, symbols, 3)
}

func TestWikipediaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewWikipedia(srv.URL).Tickers(context.Background())
	assert.Error(t, err)
}

func TestNewWikipediaDefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewWikipedia("").URL)
}

func TestStatic(t *testing.T) {
	symbols, err := Static{"aapl", " MSFT", "AAPL", "brk-b", ""}.Tickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "BRK.B"}, symbols)
}

func TestTruncate(t *testing.T) {
	in := []string{"A", "B", "C", "D"}
	tests := []struct {
		limit int
		want  []string
	}{
		{2, []string{"A", "B"}},
		{4, in},
		{10, in},
		{0, in},
		{-1, in},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(in, tt.limit), "limit %d", tt.limit)
	}
}
