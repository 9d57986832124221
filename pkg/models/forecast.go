package models

import "time"

// Action is the trade label derived from a price forecast.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// Model names used in output columns.
const (
	ModelLinear = "LR"
	ModelNeural = "NN"
)

// Horizon is a forecast distance in trading days with its column label.
type Horizon struct {
	Label string `json:"label" mapstructure:"label" validate:"required"` // e.g. "1d", "7d", "1month"
	Steps int    `json:"steps" mapstructure:"steps" validate:"gt=0"`
}

// DefaultHorizons are the 1 day, 7 day and one month (30 trading days) horizons.
func DefaultHorizons() []Horizon {
	return []Horizon{
		{Label: "1d", Steps: 1},
		{Label: "7d", Steps: 7},
		{Label: "1month", Steps: 30},
	}
}

// ModelResult is the evaluation and forecast of one model for one ticker.
type ModelResult struct {
	Model     string    `json:"model"`
	MSE       float64   `json:"mse"`
	Forecasts []float64 `json:"forecasts"` // one per horizon, price units
	Actions   []Action  `json:"actions"`   // one per horizon
	Losses    []float64 `json:"-"`         // training loss per epoch, when the model is trained iteratively
}

// ForecastRow is one line of the comparison report.
type ForecastRow struct {
	Symbol    string      `json:"symbol"`
	LastClose float64     `json:"last_close"`
	AsOf      time.Time   `json:"as_of"`
	Sentiment float64     `json:"sentiment"`
	Horizons  []Horizon   `json:"horizons"`
	Linear    ModelResult `json:"linear"`
	Neural    ModelResult `json:"neural"`
}
