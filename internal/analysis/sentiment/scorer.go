// Package sentiment scores ticker news and turns the scores into a
// per-day feature column.
package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/seenimoa/stockcast/pkg/models"
)

// Classifier scores a piece of text between -1.0 (negative) and +1.0
// (positive).
type Classifier interface {
	Name() string
	Score(ctx context.Context, text string) (float64, error)
}

// ------------------------------------------------------------------
// Keyword-based sentiment scorer (offline, deterministic).
// ------------------------------------------------------------------

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "rallies": 0.6, "surge": 0.7, "surges": 0.7,
	"soar": 0.7, "soars": 0.7, "jump": 0.5, "jumps": 0.5, "gain": 0.4, "gains": 0.4,
	"upbeat": 0.5, "positive": 0.4, "growth": 0.4, "upgrade": 0.6, "upgraded": 0.6,
	"outperform": 0.6, "buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5, "beats": 0.5,
	"exceeds": 0.5, "beats estimates": 0.6, "raises guidance": 0.7, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "buyback": 0.5, "optimistic": 0.5,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "plunges": 0.7, "slump": 0.6,
	"tumble": 0.6, "tumbles": 0.6, "negative": 0.4, "downgrade": 0.6, "downgraded": 0.6,
	"underperform": 0.6, "sell": 0.5, "weak": 0.4, "decline": 0.5, "declines": 0.5,
	"loss": 0.4, "losses": 0.4, "selloff": 0.7, "sell-off": 0.7, "fall": 0.4, "falls": 0.4,
	"correction": 0.5, "default": 0.7, "fraud": 0.8, "lawsuit": 0.5, "investigation": 0.5,
	"cut": 0.3, "cuts": 0.3, "miss": 0.5, "misses": 0.5, "warning": 0.5, "warns": 0.5,
	"concern": 0.3, "concerns": 0.3, "layoffs": 0.5, "recall": 0.5, "pessimistic": 0.5,
}

// Lexicon is a keyword classifier used when no model endpoint is configured.
type Lexicon struct{}

// Name returns the classifier name.
func (Lexicon) Name() string { return "lexicon" }

// Score implements Classifier. It never fails.
func (Lexicon) Score(_ context.Context, text string) (float64, error) {
	score, _ := ScoreHeadline(text)
	return score, nil
}

// ScoreHeadline returns a sentiment score for a single headline and a
// confidence that grows with the number of matched keywords.
// Score ranges from -1.0 (very bearish) to +1.0 (very bullish).
func ScoreHeadline(headline string) (score float64, confidence float64) {
	text := normalize(headline)

	bullScore := 0.0
	bearScore := 0.0
	matches := 0

	for word, weight := range bullishWords {
		if strings.Contains(text, " "+word+" ") {
			bullScore += weight
			matches++
		}
	}

	for word, weight := range bearishWords {
		if strings.Contains(text, " "+word+" ") {
			bearScore += weight
			matches++
		}
	}

	total := bullScore + bearScore
	if matches == 0 || total == 0 {
		return 0, 0.1 // no signal
	}

	// Net score normalized to -1..+1.
	score = (bullScore - bearScore) / total
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// normalize lowercases text, replaces punctuation except hyphens with
// spaces and pads it so keywords can be matched on word boundaries.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// Label names a score band.
func Label(score float64) string {
	switch {
	case score > 0.3:
		return "Bullish"
	case score > 0.1:
		return "Slightly Bullish"
	case score < -0.3:
		return "Bearish"
	case score < -0.1:
		return "Slightly Bearish"
	default:
		return "Neutral"
	}
}

// ScoreArticle scores one article with clf.
func ScoreArticle(ctx context.Context, clf Classifier, article models.NewsArticle) (models.SentimentScore, error) {
	score, err := clf.Score(ctx, article.Text())
	if err != nil {
		return models.SentimentScore{}, err
	}
	return models.SentimentScore{
		Source:      article.Source,
		Headline:    article.Title,
		Score:       clamp(score),
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
	}, nil
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
