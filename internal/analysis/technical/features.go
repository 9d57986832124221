package technical

import (
	"fmt"

	"github.com/seenimoa/stockcast/internal/dataset"
)

// Feature column names added by AddFeatures.
const (
	ColMeanShort    = "7_day_mean"
	ColMeanMedium   = "30_day_mean"
	ColMeanLong     = "365_day_mean"
	ColRSI          = "RSI"
	ColMACD         = "MACD"
	ColMACDSignal   = "MACD_Signal"
	ColBollingerHi  = "Bollinger_High"
	ColBollingerLow = "Bollinger_Low"
)

// TrendColumns are the rolling-mean features.
var TrendColumns = []string{ColMeanShort, ColMeanMedium, ColMeanLong}

// IndicatorColumns are every column AddFeatures produces, in order.
var IndicatorColumns = []string{
	ColMeanShort, ColMeanMedium, ColMeanLong,
	ColRSI, ColMACD, ColMACDSignal,
	ColBollingerHi, ColBollingerLow,
}

// Params are the window sizes used by AddFeatures. Column names stay the
// same whatever the windows are.
type Params struct {
	MeanWindows   [3]int // short, medium, long rolling means
	RSIPeriod     int
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
	BollingerN    int
	BollingerMult float64
}

// DefaultParams returns 7/30/365-day means, RSI(14), MACD(12,26,9) and
// Bollinger(20, 2).
func DefaultParams() Params {
	return Params{
		MeanWindows:   [3]int{7, 30, 365},
		RSIPeriod:     14,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		BollingerN:    20,
		BollingerMult: 2,
	}
}

// WarmUp is the number of leading rows that cannot hold every feature.
func (p Params) WarmUp() int {
	w := max(p.RSIPeriod, p.BollingerN)
	for _, m := range p.MeanWindows {
		w = max(w, m)
	}
	return w - 1
}

// AddFeatures appends the indicator columns computed from Close to f.
func AddFeatures(f *dataset.Frame, p Params) error {
	if !f.Has(dataset.ColClose) {
		return fmt.Errorf("add features: %w: %s", dataset.ErrNoColumn, dataset.ColClose)
	}
	closes := f.Col(dataset.ColClose)

	macd, signal := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	upper, lower := Bollinger(closes, p.BollingerN, p.BollingerMult)

	cols := []struct {
		name   string
		values []float64
	}{
		{ColMeanShort, RollingMean(closes, p.MeanWindows[0])},
		{ColMeanMedium, RollingMean(closes, p.MeanWindows[1])},
		{ColMeanLong, RollingMean(closes, p.MeanWindows[2])},
		{ColRSI, RSI(closes, p.RSIPeriod)},
		{ColMACD, macd},
		{ColMACDSignal, signal},
		{ColBollingerHi, upper},
		{ColBollingerLow, lower},
	}
	for _, c := range cols {
		if err := f.Set(c.name, c.values); err != nil {
			return fmt.Errorf("add features: %w", err)
		}
	}
	return nil
}
