// Package pipeline runs the forecast for a ticker universe: fetch history,
// build features, merge sentiment, train both models and hand the rows to
// every configured sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockcast/internal/analysis/sentiment"
	"github.com/seenimoa/stockcast/internal/analysis/technical"
	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/internal/datasource"
	"github.com/seenimoa/stockcast/internal/forecast"
	"github.com/seenimoa/stockcast/internal/metrics"
	"github.com/seenimoa/stockcast/internal/report"
	"github.com/seenimoa/stockcast/internal/universe"
	"github.com/seenimoa/stockcast/pkg/models"
)

// Stage names used in logs and metrics.
const (
	StageUniverse  = "universe"
	StageSentiment = "sentiment"
	StageHistory   = "history"
	StageFeatures  = "features"
	StageNeural    = "neural"
	StageLinear    = "linear"
	StageSink      = "sink"
)

// ErrBadMSE is returned for a ticker whose model produced a non-finite error.
var ErrBadMSE = errors.New("non-finite mse")

// SentimentScorer scores a batch of tickers. Every ticker must have an entry;
// failures are reported through TickerSentiment.Err with a zero score.
type SentimentScorer interface {
	Scores(ctx context.Context, tickers []string) map[string]models.TickerSentiment
}

// Options are the run parameters.
type Options struct {
	Limit       int       // universe truncation; <= 0 keeps all
	Start, End  time.Time // zero End means now
	Concurrency int       // tickers processed at once
	Features    technical.Params
	Forecast    forecast.Options
}

// Runner wires the sources, models and sinks of a run.
type Runner struct {
	Universe  universe.Source
	History   datasource.HistoryProvider
	Sentiment SentimentScorer // nil scores every ticker 0
	Sinks     []report.Sink
	Metrics   *metrics.Recorder
	Log       zerolog.Logger
	Options   Options
}

// Failure is a ticker that was skipped.
type Failure struct {
	Symbol string
	Stage  string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Symbol, f.Stage, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result summarizes a run.
type Result struct {
	Tickers  []string
	Rows     []models.ForecastRow
	Failures []Failure
	Horizons []models.Horizon
	Duration time.Duration
}

// Run executes the pipeline. Ticker failures are logged and skipped; only
// universe resolution, cancellation and sink errors fail the run. Every
// sink is called even when no ticker succeeded.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	opts := r.Options
	if err := opts.Forecast.Normalize(); err != nil {
		return nil, err
	}
	if opts.Features.MeanWindows == [3]int{} {
		opts.Features = technical.DefaultParams()
	}
	if opts.End.IsZero() {
		opts.End = time.Now()
	}

	t0 := time.Now()
	tickers, err := r.Universe.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	tickers = universe.Truncate(tickers, opts.Limit)
	r.Metrics.RecordStage(StageUniverse, time.Since(t0).Seconds())
	r.Log.Info().Int("tickers", len(tickers)).Strs("symbols", tickers).Msg("universe resolved")

	t0 = time.Now()
	scores := map[string]models.TickerSentiment{}
	if r.Sentiment != nil {
		scores = r.Sentiment.Scores(ctx, tickers)
	}
	r.Metrics.RecordStage(StageSentiment, time.Since(t0).Seconds())

	rows := make([]*models.ForecastRow, len(tickers))
	fails := make([]*Failure, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, symbol := range tickers {
		i, symbol := i, symbol
		g.Go(func() error {
			sent := scores[symbol]
			r.Metrics.RecordSentiment(symbol, sent.Score)
			row, fail := r.processTicker(gctx, symbol, sent, opts)
			if fail != nil {
				r.Log.Warn().Err(fail.Err).Str("symbol", symbol).Str("stage", fail.Stage).Msg("ticker skipped")
				r.Metrics.RecordTicker(metrics.StatusFailed)
				fails[i] = fail
				return nil
			}
			r.Metrics.RecordTicker(metrics.StatusOK)
			r.Metrics.RecordMSE(symbol, models.ModelLinear, row.Linear.MSE)
			r.Metrics.RecordMSE(symbol, models.ModelNeural, row.Neural.MSE)
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Tickers: tickers, Horizons: opts.Forecast.Horizons}
	for i := range tickers {
		if rows[i] != nil {
			res.Rows = append(res.Rows, *rows[i])
		}
		if fails[i] != nil {
			res.Failures = append(res.Failures, *fails[i])
		}
	}

	var sinkErrs []error
	for _, s := range r.Sinks {
		t0 := time.Now()
		if err := s.Write(ctx, res.Rows); err != nil {
			r.Log.Error().Err(err).Str("sink", s.Name()).Msg("sink write failed")
			sinkErrs = append(sinkErrs, fmt.Errorf("%s sink: %w", s.Name(), err))
			continue
		}
		r.Metrics.RecordStage(StageSink, time.Since(t0).Seconds())
		r.Log.Debug().Str("sink", s.Name()).Int("rows", len(res.Rows)).Msg("rows written")
	}

	res.Duration = time.Since(started)
	r.Metrics.RecordRunFinished()
	r.Log.Info().
		Int("ok", len(res.Rows)).
		Int("failed", len(res.Failures)).
		Str("took", report.FormatDuration(res.Duration)).
		Msg("run finished")
	return res, errors.Join(sinkErrs...)
}

func (r *Runner) processTicker(ctx context.Context, symbol string, sent models.TickerSentiment, opts Options) (*models.ForecastRow, *Failure) {
	fail := func(stage string, err error) (*models.ForecastRow, *Failure) {
		return nil, &Failure{Symbol: symbol, Stage: stage, Err: err}
	}
	log := r.Log.With().Str("symbol", symbol).Logger()

	t0 := time.Now()
	candles, err := r.History.GetHistoricalData(ctx, symbol, opts.Start, opts.End)
	if err != nil {
		return fail(StageHistory, err)
	}
	if len(candles) == 0 {
		return fail(StageHistory, datasource.ErrNoData)
	}
	r.Metrics.RecordStage(StageHistory, time.Since(t0).Seconds())
	log.Debug().Int("candles", len(candles)).Msg("history fetched")

	t0 = time.Now()
	frame := dataset.FromCandles(candles)
	if err := technical.AddFeatures(frame, opts.Features); err != nil {
		return fail(StageFeatures, err)
	}
	daily := sentiment.DailySeries(sent.Articles)
	if err := sentiment.AddSentiment(frame, daily, sent.Score); err != nil {
		return fail(StageFeatures, err)
	}
	r.Metrics.RecordStage(StageFeatures, time.Since(t0).Seconds())

	t0 = time.Now()
	nn, err := forecast.Neural(frame, opts.Forecast)
	if err != nil {
		return fail(StageNeural, err)
	}
	if !finite(nn.MSE) {
		return fail(StageNeural, ErrBadMSE)
	}
	for i, loss := range nn.Losses {
		log.Debug().Int("epoch", i+1).Int("epochs", len(nn.Losses)).Float64("loss", loss).Msg("nn training loss")
	}
	r.Metrics.RecordStage(StageNeural, time.Since(t0).Seconds())

	t0 = time.Now()
	lr, err := forecast.Linear(frame, opts.Forecast)
	if err != nil {
		return fail(StageLinear, err)
	}
	if !finite(lr.MSE) {
		return fail(StageLinear, ErrBadMSE)
	}
	r.Metrics.RecordStage(StageLinear, time.Since(t0).Seconds())

	log.Info().
		Float64("lr_mse", lr.MSE).
		Float64("nn_mse", nn.MSE).
		Float64("sentiment", sent.Score).
		Msg("ticker forecast")

	return &models.ForecastRow{
		Symbol:    symbol,
		LastClose: frame.Last(dataset.ColClose),
		AsOf:      frame.Index[frame.Len()-1],
		Sentiment: sent.Score,
		Horizons:  opts.Forecast.Horizons,
		Linear:    lr,
		Neural:    nn,
	}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
