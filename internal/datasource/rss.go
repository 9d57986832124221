package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// DefaultRSSTemplate is the Yahoo Finance per-ticker headline feed.
const DefaultRSSTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSS implements NewsProvider with a per-ticker RSS feed. The URL template
// must contain a single %s verb which receives the Yahoo symbol.
type RSS struct {
	template string
	limiter  *RateLimiter
	parser   *gofeed.Parser
}

// NewRSS creates an RSS news source. An empty template uses DefaultRSSTemplate.
func NewRSS(template string) *RSS {
	if template == "" {
		template = DefaultRSSTemplate
	}
	parser := gofeed.NewParser()
	parser.Client = HTTPClient
	parser.UserAgent = DefaultUserAgent
	return &RSS{
		template: template,
		limiter:  NewRateLimiter(2, time.Second),
		parser:   parser,
	}
}

// Name returns the data source name.
func (r *RSS) Name() string { return "RSS" }

// GetStockNews returns up to limit feed items for ticker, newest first.
func (r *RSS) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if !strings.Contains(r.template, "%s") {
		return nil, fmt.Errorf("rss url template %q has no %%s verb", r.template)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	symbol := utils.NormalizeTicker(ticker)
	feedURL := fmt.Sprintf(r.template, utils.ToYahooSymbol(symbol))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", symbol, err)
	}

	source := r.Name()
	if feed.Title != "" {
		source = feed.Title
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Ticker:  symbol,
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	sortArticlesByDate(articles)
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}
