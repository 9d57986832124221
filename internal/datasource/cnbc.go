package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// DefaultCNBCURL is the CNBC search feed endpoint.
const DefaultCNBCURL = "https://api.cnbc.com/api/search/cnbc/feeds/rs/search"

// CNBC implements NewsProvider with the CNBC search feed.
type CNBC struct {
	endpoint string
	limiter  *RateLimiter
}

// NewCNBC creates a CNBC news source. An empty endpoint uses DefaultCNBCURL.
func NewCNBC(endpoint string) *CNBC {
	if endpoint == "" {
		endpoint = DefaultCNBCURL
	}
	return &CNBC{
		endpoint: endpoint,
		limiter:  NewRateLimiter(2, time.Second),
	}
}

// Name returns the data source name.
func (c *CNBC) Name() string { return "CNBC" }

type cnbcSearchResponse struct {
	SearchResult struct {
		Content struct {
			Content struct {
				Items []cnbcItem `json:"items"`
			} `json:"content"`
		} `json:"content"`
	} `json:"searchResult"`
}

type cnbcItem struct {
	Title         string `json:"title"`
	Headline      string `json:"headline"`
	Summary       string `json:"summary"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	Link          string `json:"link"`
	DatePublished string `json:"datePublished"`
}

// cnbcDateLayouts are the timestamp shapes seen in the search feed.
var cnbcDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	time.RFC1123Z,
	time.RFC1123,
}

// GetStockNews returns up to limit articles mentioning ticker.
func (c *CNBC) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := utils.NormalizeTicker(ticker)
	if limit <= 0 {
		limit = 10
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("tickers", symbol)
	q.Set("pageSize", strconv.Itoa(limit))
	body, _, err := doGet(ctx, c.endpoint+"?"+q.Encode(), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("cnbc search %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp cnbcSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse cnbc search: %w", err)
	}

	items := resp.SearchResult.Content.Content.Items
	articles := make([]models.NewsArticle, 0, len(items))
	for _, it := range items {
		a := models.NewsArticle{
			Ticker:  symbol,
			Title:   cleanHTML(coalesce(it.Title, it.Headline)),
			URL:     coalesce(it.URL, it.Link),
			Source:  c.Name(),
			Summary: cleanHTML(coalesce(it.Summary, it.Description)),
		}
		a.PublishedAt = parseCNBCDate(it.DatePublished)
		if a.Title == "" && a.Summary == "" {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}
	return articles, nil
}

func parseCNBCDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range cnbcDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
