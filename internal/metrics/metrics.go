// Package metrics records pipeline counters on a private Prometheus
// registry that can be exported as a node-exporter textfile.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ticker outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder holds the run metrics. A nil *Recorder records nothing.
type Recorder struct {
	reg       *prometheus.Registry
	tickers   *prometheus.CounterVec
	stages    *prometheus.HistogramVec
	mse       *prometheus.GaugeVec
	sentiment *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		tickers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_tickers_total",
				Help: "Tickers processed, by outcome",
			},
			[]string{"status"},
		),
		stages: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"stage"},
		),
		mse: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_model_mse",
				Help: "Test mean squared error of the last run",
			},
			[]string{"symbol", "model"},
		),
		sentiment: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_sentiment_score",
				Help: "News sentiment score used for the last run",
			},
			[]string{"symbol"},
		),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "stockcast_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// RecordTicker counts one ticker outcome.
func (r *Recorder) RecordTicker(status string) {
	if r == nil {
		return
	}
	r.tickers.WithLabelValues(status).Inc()
}

// RecordStage records a stage duration in seconds.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Observe(seconds)
}

// RecordMSE sets a model's error for symbol. Non-finite values are skipped.
func (r *Recorder) RecordMSE(symbol, model string, mse float64) {
	if r == nil || math.IsNaN(mse) || math.IsInf(mse, 0) {
		return
	}
	r.mse.WithLabelValues(symbol, model).Set(mse)
}

// RecordSentiment sets the sentiment score of symbol.
func (r *Recorder) RecordSentiment(symbol string, score float64) {
	if r == nil {
		return
	}
	r.sentiment.WithLabelValues(symbol).Set(score)
}

// RecordRunFinished stamps the end of a run.
func (r *Recorder) RecordRunFinished() {
	if r == nil {
		return
	}
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
