package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/stockcast/internal/analysis/sentiment"
	"github.com/seenimoa/stockcast/internal/analysis/technical"
	"github.com/seenimoa/stockcast/internal/config"
	"github.com/seenimoa/stockcast/internal/datasource"
	"github.com/seenimoa/stockcast/internal/forecast"
	"github.com/seenimoa/stockcast/internal/ml"
	"github.com/seenimoa/stockcast/internal/publish"
	"github.com/seenimoa/stockcast/internal/report"
	"github.com/seenimoa/stockcast/internal/store"
	"github.com/seenimoa/stockcast/internal/universe"
	"github.com/seenimoa/stockcast/pkg/models"
)

// newHistory builds the Yahoo history source, throttled to
// history.requests_per_second. With Redis enabled, price history is cached
// in memory first and Redis second; an unreachable Redis only costs the
// second tier. The returned func releases the Redis client.
func newHistory(ctx context.Context, c *config.Config) (*datasource.YFinance, func()) {
	datasource.SetTimeout(c.RequestTimeout())
	rps := c.History.RequestsPerSecond
	mem := datasource.NewCache(c.CacheTTL())
	opts := []datasource.YFinanceOption{
		datasource.WithBaseURL(c.History.ChartURL),
		datasource.WithTTL(c.CacheTTL()),
		datasource.WithCache(mem),
		datasource.WithRateLimiter(datasource.NewRateLimiter(rps, time.Second/time.Duration(rps))),
	}
	release := func() {
		log.Debug().Int("entries", mem.Len()).Msg("history cache released")
	}

	if c.Cache.Redis.Enabled {
		rc, err := datasource.NewRedisCache(ctx, datasource.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", c.Cache.Redis.Addr).Msg("redis cache unavailable, using memory only")
		} else {
			opts = append(opts, datasource.WithCache(datasource.Tiered{mem, rc}))
			memOnly := release
			release = func() {
				memOnly()
				_ = rc.Close()
			}
		}
	}
	return datasource.NewYFinance(opts...), release
}

// newNews combines the configured news providers.
func newNews(c *config.Config) datasource.NewsProvider {
	var providers []datasource.NewsProvider
	for _, name := range c.Sentiment.Providers {
		switch name {
		case "cnbc":
			providers = append(providers, datasource.NewCNBC(c.Sentiment.CNBCURL))
		case "rss":
			providers = append(providers, datasource.NewRSS(c.Sentiment.RSSURLTemplate))
		}
	}
	m := datasource.NewMultiNews(providers...)
	m.OnError = func(provider string, err error) {
		log.Debug().Err(err).Str("provider", provider).Msg("news provider failed")
	}
	return m
}

func newClassifier(c *config.Config) sentiment.Classifier {
	if c.Sentiment.Classifier == "huggingface" {
		hf := c.Sentiment.HuggingFace
		return sentiment.NewHuggingFace(hf.URL, hf.Model, hf.Token)
	}
	return sentiment.Lexicon{}
}

func newScorer(c *config.Config) *sentiment.Scorer {
	return sentiment.NewScorer(newNews(c), newClassifier(c),
		sentiment.WithPageSize(c.Sentiment.PageSize),
		sentiment.WithConcurrency(c.Analysis.ConcurrentFetches),
		sentiment.WithLogger(log),
	)
}

// newUniverse returns the static list when one is configured, otherwise
// the scraped constituents page.
func newUniverse(c *config.Config) universe.Source {
	if len(c.Universe.Tickers) > 0 {
		return universe.Static(c.Universe.Tickers)
	}
	return universe.NewWikipedia(c.Universe.URL)
}

func forecastOptions(c *config.Config) forecast.Options {
	m := c.Model
	return forecast.Options{
		Horizons:  m.Horizons,
		TestRatio: m.TestRatio,
		Seed:      m.Seed,
		Lookback:  m.Lookback,
		Hidden:    m.Hidden,
		Threshold: m.ActionThreshold,
		Train: ml.TrainOptions{
			Epochs:       m.Epochs,
			BatchSize:    m.BatchSize,
			LearningRate: m.LearningRate,
			Seed:         m.Seed,
		},
	}
}

func featureParams() technical.Params { return technical.DefaultParams() }

// newSinks opens every configured sink. Rows sent to Postgres and Kafka
// share one run id.
func newSinks(ctx context.Context, c *config.Config, horizons []models.Horizon) ([]report.Sink, error) {
	var sinks []report.Sink
	runID := uuid.New()
	fail := func(err error) ([]report.Sink, error) {
		closeSinks(sinks)
		return nil, err
	}

	for _, name := range c.Output.Sinks {
		switch name {
		case "csv":
			sinks = append(sinks, report.NewCSVSink(c.Output.Path, horizons))
		case "html":
			sinks = append(sinks, report.NewHTMLSink(c.Output.HTMLPath, horizons))
		case "postgres":
			pg, err := store.New(ctx, c.Postgres.DSN)
			if err != nil {
				return fail(fmt.Errorf("postgres sink: %w", err))
			}
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return fail(fmt.Errorf("postgres sink: %w", err))
			}
			pg.RunID = runID
			sinks = append(sinks, pg)
		case "kafka":
			k, err := publish.NewKafka(c.Kafka.Brokers, c.Kafka.Topic)
			if err != nil {
				return fail(fmt.Errorf("kafka sink: %w", err))
			}
			k.RunID = runID.String()
			sinks = append(sinks, k)
		}
	}
	return sinks, nil
}

func closeSinks(sinks []report.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("sink", s.Name()).Msg("close sink")
		}
	}
}
