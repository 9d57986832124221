package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// DefaultChartURL is the Yahoo Finance API host.
const DefaultChartURL = "https://query1.finance.yahoo.com"

// YFinance implements HistoryProvider using the Yahoo Finance chart API.
type YFinance struct {
	baseURL string
	cache   BytesCache
	ttl     time.Duration
	limiter *RateLimiter
}

// YFinanceOption configures a YFinance source.
type YFinanceOption func(*YFinance)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithCache replaces the default in-memory cache.
func WithCache(c BytesCache) YFinanceOption {
	return func(y *YFinance) { y.cache = c }
}

// WithTTL sets how long fetched history stays cached.
func WithTTL(ttl time.Duration) YFinanceOption {
	return func(y *YFinance) { y.ttl = ttl }
}

// WithRateLimiter replaces the default limiter of 5 requests per second.
func WithRateLimiter(rl *RateLimiter) YFinanceOption {
	return func(y *YFinance) { y.limiter = rl }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: DefaultChartURL,
		ttl:     15 * time.Minute,
		limiter: NewRateLimiter(5, time.Second),
	}
	for _, opt := range opts {
		opt(y)
	}
	if y.cache == nil {
		y.cache = NewCache(y.ttl)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetHistoricalData returns daily candles in [from, to] ordered by date.
func (y *YFinance) GetHistoricalData(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCV, error) {
	symbol := utils.ToYahooSymbol(ticker)

	cacheKey := fmt.Sprintf("hist:%s:%s:%s", symbol, utils.FormatDate(from), utils.FormatDate(to))
	if data, ok, _ := y.cache.Get(ctx, cacheKey); ok {
		var candles []models.OHLCV
		if err := json.Unmarshal(data, &candles); err == nil {
			return candles, nil
		}
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		y.baseURL, symbol, from.Unix(), to.Unix(),
	)
	body, _, err := doGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	candles := parseYFCandles(resp.Chart.Result[0])
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", ErrNoData, ticker, utils.FormatDate(from), utils.FormatDate(to))
	}

	if encoded, err := json.Marshal(candles); err == nil {
		_ = y.cache.Set(ctx, cacheKey, encoded, y.ttl)
	}
	return candles, nil
}

// --- Helpers ---

// parseYFCandles converts the column-oriented chart payload into candles.
// Bars without a close (halts, partial sessions) are dropped; other missing
// fields are left at zero.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: utils.TradingDate(time.Unix(ts, 0)),
			Close:     *q.Close[i],
			AdjClose:  *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}
