package sentiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockcast/internal/datasource"
	"github.com/seenimoa/stockcast/pkg/models"
)

// Scorer fetches news for tickers and averages the classifier scores.
type Scorer struct {
	news        datasource.NewsProvider
	clf         Classifier
	pageSize    int
	concurrency int
	log         zerolog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithPageSize sets how many articles are requested per ticker.
func WithPageSize(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithConcurrency bounds the number of tickers scored at once.
func WithConcurrency(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-ticker failures.
func WithLogger(l zerolog.Logger) ScorerOption {
	return func(s *Scorer) { s.log = l }
}

// NewScorer creates a Scorer. A nil classifier uses Lexicon.
func NewScorer(news datasource.NewsProvider, clf Classifier, opts ...ScorerOption) *Scorer {
	if clf == nil {
		clf = Lexicon{}
	}
	s := &Scorer{
		news:        news,
		clf:         clf,
		pageSize:    10,
		concurrency: 1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the mean article score for ticker. Failures are recorded
// in Err and leave Score at 0; Score never returns a Go error.
func (s *Scorer) Score(ctx context.Context, ticker string) models.TickerSentiment {
	res := models.TickerSentiment{Ticker: ticker}

	articles, err := s.news.GetStockNews(ctx, ticker, s.pageSize)
	if err != nil {
		return s.fail(res, fmt.Errorf("fetch news: %w", err))
	}
	if len(articles) > s.pageSize {
		articles = articles[:s.pageSize]
	}
	if len(articles) == 0 {
		s.log.Debug().Str("symbol", ticker).Msg("no news articles, sentiment defaults to 0")
		return res
	}

	scores := make([]models.SentimentScore, 0, len(articles))
	sum := 0.0
	for _, a := range articles {
		ss, err := ScoreArticle(ctx, s.clf, a)
		if err != nil {
			return s.fail(res, fmt.Errorf("classify %q: %w", a.Title, err))
		}
		scores = append(scores, ss)
		sum += ss.Score
	}

	res.Articles = scores
	res.Score = sum / float64(len(scores))
	s.log.Debug().
		Str("symbol", ticker).
		Int("articles", len(scores)).
		Float64("score", res.Score).
		Str("label", Label(res.Score)).
		Msg("sentiment scored")
	return res
}

func (s *Scorer) fail(res models.TickerSentiment, err error) models.TickerSentiment {
	s.log.Warn().Err(err).Str("symbol", res.Ticker).Str("stage", "sentiment").
		Msg("sentiment scoring failed, using 0")
	res.Score = 0
	res.Articles = nil
	res.Err = err.Error()
	return res
}

// Scores scores every ticker, at most concurrency at a time. The result
// holds an entry for each ticker.
func (s *Scorer) Scores(ctx context.Context, tickers []string) map[string]models.TickerSentiment {
	out := make(map[string]models.TickerSentiment, len(tickers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, t := range tickers {
		t := t
		g.Go(func() error {
			res := s.Score(gctx, t)
			mu.Lock()
			out[t] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
