package forecast

import (
	"fmt"

	"github.com/seenimoa/stockcast/internal/analysis/technical"
	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/internal/ml"
	"github.com/seenimoa/stockcast/pkg/models"
)

// minLinearRows is the fewest labelled rows a linear fit accepts.
const minLinearRows = 10

// Linear fits one least-squares model per horizon on the rolling-mean
// features. Each horizon gets its own seeded shuffled split and a scaler fit
// on its training rows. MSE is the test error of the shortest horizon.
func Linear(f *dataset.Frame, opts Options) (models.ModelResult, error) {
	res := models.ModelResult{Model: models.ModelLinear}
	if err := opts.Normalize(); err != nil {
		return res, err
	}

	g, targets, err := withTargets(f, opts.Horizons)
	if err != nil {
		return res, fmt.Errorf("linear: %w", err)
	}
	base := g.DropNA(technical.TrendColumns...)
	if base.Len() == 0 {
		return res, fmt.Errorf("linear: %w: no complete feature rows", ErrInsufficientData)
	}
	x, err := base.Rows(technical.TrendColumns...)
	if err != nil {
		return res, fmt.Errorf("linear: %w", err)
	}
	latest := x[len(x)-1]

	best := shortest(opts.Horizons)
	res.Forecasts = make([]float64, len(opts.Horizons))
	for k, h := range opts.Horizons {
		y := base.Col(targets[k])
		var labelled []int
		for i := range y {
			if finiteAt(y, i) {
				labelled = append(labelled, i)
			}
		}
		if len(labelled) < minLinearRows {
			return res, fmt.Errorf("linear %s: %w: %d labelled rows", h.Label, ErrInsufficientData, len(labelled))
		}

		trainPos, testPos, err := ml.TrainTestSplit(len(labelled), opts.TestRatio, opts.Seed)
		if err != nil {
			return res, fmt.Errorf("linear %s: %w", h.Label, err)
		}
		trainIdx := ml.Take(labelled, trainPos)
		testIdx := ml.Take(labelled, testPos)

		var scaler ml.MinMaxScaler
		xTrain, err := scaler.FitTransform(ml.Take(x, trainIdx))
		if err != nil {
			return res, fmt.Errorf("linear %s: %w", h.Label, err)
		}
		var model ml.LinearRegression
		if err := model.Fit(xTrain, ml.Take(y, trainIdx)); err != nil {
			return res, fmt.Errorf("linear %s: %w", h.Label, err)
		}

		if k == best {
			xTest, err := scaler.Transform(ml.Take(x, testIdx))
			if err != nil {
				return res, fmt.Errorf("linear %s: %w", h.Label, err)
			}
			pred, err := model.Predict(xTest)
			if err != nil {
				return res, fmt.Errorf("linear %s: %w", h.Label, err)
			}
			if res.MSE, err = ml.MSE(ml.Take(y, testIdx), pred); err != nil {
				return res, fmt.Errorf("linear %s: %w", h.Label, err)
			}
		}

		xLast, err := scaler.Transform([][]float64{latest})
		if err != nil {
			return res, fmt.Errorf("linear %s: %w", h.Label, err)
		}
		next, err := model.Predict(xLast)
		if err != nil {
			return res, fmt.Errorf("linear %s: %w", h.Label, err)
		}
		res.Forecasts[k] = next[0]
	}

	res.Actions = Actions(base.Last(dataset.ColClose), res.Forecasts, opts.Threshold)
	return res, nil
}
