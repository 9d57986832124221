// Package forecast trains the per-ticker price models on a feature frame
// and turns their forecasts into trade actions.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/internal/ml"
	"github.com/seenimoa/stockcast/pkg/models"
)

// ErrInsufficientData is returned when a frame has too few complete rows
// to split into training and test sets.
var ErrInsufficientData = errors.New("insufficient data")

var validate = validator.New()

// Options configures both forecasters.
type Options struct {
	Horizons  []models.Horizon `validate:"dive"`
	TestRatio float64          `default:"0.2"  validate:"gt=0,lt=1"`
	Seed      int64            `default:"42"`
	Lookback  int              `default:"30"   validate:"gt=0"`
	Hidden    int              `default:"64"   validate:"gt=0"`
	Threshold float64          `default:"0.01" validate:"gte=0"`
	Train     ml.TrainOptions
}

// Normalize fills unset fields with their defaults and validates the result.
func (o *Options) Normalize() error {
	if len(o.Horizons) == 0 {
		o.Horizons = models.DefaultHorizons()
	}
	if o.Train.Seed == 0 {
		o.Train.Seed = o.Seed
	}
	if err := defaults.Set(o); err != nil {
		return fmt.Errorf("forecast options defaults: %w", err)
	}
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("forecast options: %w", err)
	}
	return nil
}

// Action labels a forecast: Buy when the predicted return over last is above
// threshold, Sell when it is below -threshold, Hold otherwise.
func Action(last, predicted, threshold float64) models.Action {
	if last <= 0 || math.IsNaN(last) || math.IsNaN(predicted) {
		return models.ActionHold
	}
	r := (predicted - last) / last
	switch {
	case r > threshold:
		return models.ActionBuy
	case r < -threshold:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

// Actions labels every forecast against last.
func Actions(last float64, forecasts []float64, threshold float64) []models.Action {
	out := make([]models.Action, len(forecasts))
	for i, p := range forecasts {
		out[i] = Action(last, p, threshold)
	}
	return out
}

func targetColumn(h models.Horizon) string { return "target_" + h.Label }

// withTargets copies f and adds one Close-ahead column per horizon.
func withTargets(f *dataset.Frame, horizons []models.Horizon) (*dataset.Frame, []string, error) {
	g := f.Slice(0, f.Len())
	names := make([]string, len(horizons))
	for k, h := range horizons {
		ahead, err := g.Shift(dataset.ColClose, -h.Steps)
		if err != nil {
			return nil, nil, err
		}
		names[k] = targetColumn(h)
		if err := g.Set(names[k], ahead); err != nil {
			return nil, nil, err
		}
	}
	return g, names, nil
}

// shortest returns the index of the horizon with the fewest steps.
func shortest(horizons []models.Horizon) int {
	best := 0
	for k, h := range horizons {
		if h.Steps < horizons[best].Steps {
			best = k
		}
	}
	return best
}

func finiteAt(col []float64, i int) bool {
	v := col[i]
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
