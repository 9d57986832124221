package models

import "time"

// NewsArticle is a single news item about a ticker.
type NewsArticle struct {
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Text returns the text used for sentiment scoring: the summary, or the
// title when no summary is available.
func (a NewsArticle) Text() string {
	if a.Summary != "" {
		return a.Summary
	}
	return a.Title
}

// SentimentScore is the classifier output for one article.
type SentimentScore struct {
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	Score       float64   `json:"score"` // -1.0 (bearish) .. +1.0 (bullish)
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// TickerSentiment is the aggregated sentiment for a ticker.
type TickerSentiment struct {
	Ticker   string           `json:"ticker"`
	Score    float64          `json:"score"`
	Articles []SentimentScore `json:"articles,omitempty"`
	Err      string           `json:"error,omitempty"`
}
