package forecast

import (
	"fmt"
	"slices"

	"github.com/seenimoa/stockcast/internal/analysis/sentiment"
	"github.com/seenimoa/stockcast/internal/analysis/technical"
	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/internal/ml"
	"github.com/seenimoa/stockcast/pkg/models"
)

// NeuralFeatures are the columns the network sees at every time step.
var NeuralFeatures = append(slices.Clone(technical.IndicatorColumns), sentiment.ColSentiment)

// Neural trains one network predicting every horizon at once from the last
// Lookback rows of indicator and sentiment features. Rows are split
// chronologically; features and targets are scaled on the training rows.
// MSE is the test error of the shortest horizon in price units.
func Neural(f *dataset.Frame, opts Options) (models.ModelResult, error) {
	res := models.ModelResult{Model: models.ModelNeural}
	if err := opts.Normalize(); err != nil {
		return res, err
	}

	g, targets, err := withTargets(f, opts.Horizons)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	base := g.DropNA(NeuralFeatures...)
	n := base.Len()

	// Targets are NaN only at the tail, so labelled rows form a prefix.
	labelled := n
	for _, t := range targets {
		col := base.Col(t)
		for labelled > 0 && !finiteAt(col, labelled-1) {
			labelled--
		}
	}
	if labelled < 2 {
		return res, fmt.Errorf("neural: %w: %d labelled rows", ErrInsufficientData, labelled)
	}
	nTrain, err := ml.ChronologicalSplit(labelled, opts.TestRatio)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	lb := opts.Lookback
	if nTrain < lb {
		return res, fmt.Errorf("neural: %w: %d training rows for lookback %d", ErrInsufficientData, nTrain, lb)
	}

	x, err := base.Rows(NeuralFeatures...)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	y, err := base.Rows(targets...)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}

	var xScaler, yScaler ml.MinMaxScaler
	if err := xScaler.Fit(x[:nTrain]); err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	if err := yScaler.Fit(y[:nTrain]); err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	xs, err := xScaler.Transform(x)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	ys, err := yScaler.Transform(y[:labelled])
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}

	// Sample t covers feature rows (t-lb, t] and predicts the targets of row t.
	xTrain, yTrain := windows(xs, ys, lb-1, nTrain, lb)
	xTest, _ := windows(xs, ys, nTrain, labelled, lb)

	net, err := ml.NewMLP(lb*len(NeuralFeatures), opts.Hidden, len(targets), opts.Seed)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	res.Losses, err = net.Train(xTrain, yTrain, opts.Train)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}

	predScaled, err := net.Predict(xTest)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	pred, err := yScaler.Inverse(predScaled)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	best := shortest(opts.Horizons)
	res.MSE, err = ml.MSE(ml.Column(y[nTrain:labelled], best), ml.Column(pred, best))
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}

	last, _ := windows(xs, nil, n-1, n, lb)
	nextScaled, err := net.Predict(last)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	next, err := yScaler.Inverse(nextScaled)
	if err != nil {
		return res, fmt.Errorf("neural: %w", err)
	}
	res.Forecasts = next[0]
	res.Actions = Actions(base.Last(dataset.ColClose), res.Forecasts, opts.Threshold)
	return res, nil
}

// windows flattens the lb feature rows ending at each t in [from, to) into
// one sample. When y is non-nil the matching target rows are returned too.
func windows(x, y [][]float64, from, to, lb int) (xs, ys [][]float64) {
	for t := from; t < to; t++ {
		sample := make([]float64, 0, lb*len(x[t]))
		for _, row := range x[t-lb+1 : t+1] {
			sample = append(sample, row...)
		}
		xs = append(xs, sample)
		if y != nil {
			ys = append(ys, y[t])
		}
	}
	return xs, ys
}
