package datasource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/stockcast/pkg/models"
)

// MultiNews concatenates the articles of several providers. A failing
// provider is skipped; an error is returned only when every provider failed.
type MultiNews struct {
	providers []NewsProvider
	// OnError, when set, is called for every provider failure.
	OnError func(provider string, err error)
}

// NewMultiNews creates a news source over the given providers.
func NewMultiNews(providers ...NewsProvider) *MultiNews {
	return &MultiNews{providers: providers}
}

// Name returns the data source name.
func (m *MultiNews) Name() string {
	names := make([]string, 0, len(m.providers))
	for _, p := range m.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

// GetStockNews asks each provider for up to limit articles and returns at
// most limit of them in provider order, deduplicated by URL.
func (m *MultiNews) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("%w: no news providers configured", ErrNoData)
	}

	var (
		all  []models.NewsArticle
		errs []error
		seen = make(map[string]bool)
	)
	for _, p := range m.providers {
		articles, err := p.GetStockNews(ctx, ticker, limit)
		if err != nil {
			if m.OnError != nil {
				m.OnError(p.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		for _, a := range articles {
			if a.URL != "" {
				if seen[a.URL] {
					continue
				}
				seen[a.URL] = true
			}
			all = append(all, a)
		}
	}

	if len(errs) == len(m.providers) {
		return nil, errors.Join(errs...)
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// --- Internal helpers ---

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sortArticlesByDate sorts articles by published date, newest first.
func sortArticlesByDate(articles []models.NewsArticle) {
	slices.SortStableFunc(articles, func(a, b models.NewsArticle) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}
