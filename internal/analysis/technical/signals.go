package technical

import (
	"fmt"
	"math"

	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/pkg/models"
)

// Signal is a rule-based reading of the latest indicator values.
type Signal struct {
	Source     string        `json:"source"`
	Action     models.Action `json:"action"`
	Confidence float64       `json:"confidence"`
	Reason     string        `json:"reason"`
}

// Signals reads the last row of a frame that went through AddFeatures and
// returns the classic indicator signals it shows.
func Signals(f *dataset.Frame) []Signal {
	if f.Len() == 0 || !f.Has(ColRSI) {
		return nil
	}

	last := f.Last(dataset.ColClose)
	rsi := f.Last(ColRSI)
	macd, macdSignal := f.Last(ColMACD), f.Last(ColMACDSignal)
	upper, lower := f.Last(ColBollingerHi), f.Last(ColBollingerLow)
	short, long := f.Last(ColMeanMedium), f.Last(ColMeanLong)

	var signals []Signal

	// --- RSI signals ---
	if !math.IsNaN(rsi) {
		if rsi < 30 {
			signals = append(signals, Signal{
				Source:     "RSI",
				Action:     models.ActionBuy,
				Confidence: 0.5 + (30-rsi)/100,
				Reason:     fmt.Sprintf("RSI oversold at %.1f", rsi),
			})
		} else if rsi > 70 {
			signals = append(signals, Signal{
				Source:     "RSI",
				Action:     models.ActionSell,
				Confidence: 0.5 + (rsi-70)/100,
				Reason:     fmt.Sprintf("RSI overbought at %.1f", rsi),
			})
		}
	}

	// --- MACD signals ---
	if !math.IsNaN(macd) && !math.IsNaN(macdSignal) && last > 0 {
		hist := macd - macdSignal
		if hist > 0 {
			signals = append(signals, Signal{
				Source:     "MACD",
				Action:     models.ActionBuy,
				Confidence: clampf(0.5+hist/last*100, 0, 1),
				Reason:     fmt.Sprintf("MACD above signal line (histogram: %.2f)", hist),
			})
		} else if hist < 0 {
			signals = append(signals, Signal{
				Source:     "MACD",
				Action:     models.ActionSell,
				Confidence: clampf(0.5-hist/last*100, 0, 1),
				Reason:     fmt.Sprintf("MACD below signal line (histogram: %.2f)", hist),
			})
		}
	}

	// --- Bollinger Band signals ---
	if !math.IsNaN(upper) && !math.IsNaN(lower) {
		if last < lower {
			signals = append(signals, Signal{
				Source:     "Bollinger",
				Action:     models.ActionBuy,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("Price (%.2f) below lower Bollinger Band (%.2f)", last, lower),
			})
		} else if last > upper {
			signals = append(signals, Signal{
				Source:     "Bollinger",
				Action:     models.ActionSell,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("Price (%.2f) above upper Bollinger Band (%.2f)", last, upper),
			})
		}
	}

	// --- Moving average trend ---
	if !math.IsNaN(short) && !math.IsNaN(long) {
		if short > long && last > short {
			signals = append(signals, Signal{
				Source:     "MA_Trend",
				Action:     models.ActionBuy,
				Confidence: 0.7,
				Reason:     fmt.Sprintf("30-day mean (%.2f) above 365-day mean (%.2f)", short, long),
			})
		} else if short < long && last < short {
			signals = append(signals, Signal{
				Source:     "MA_Trend",
				Action:     models.ActionSell,
				Confidence: 0.7,
				Reason:     fmt.Sprintf("30-day mean (%.2f) below 365-day mean (%.2f)", short, long),
			})
		}
	}

	return signals
}

// Aggregate weighs signals into one action and a confidence in [0, 1].
func Aggregate(signals []Signal) (models.Action, float64) {
	if len(signals) == 0 {
		return models.ActionHold, 0
	}

	weights := map[string]float64{
		"RSI":       1.0,
		"MACD":      1.2,
		"Bollinger": 0.8,
		"MA_Trend":  1.3,
	}

	var buyScore, sellScore, totalWeight float64
	for _, sig := range signals {
		w := weights[sig.Source]
		if w == 0 {
			w = 1.0
		}
		switch sig.Action {
		case models.ActionBuy:
			buyScore += w * sig.Confidence
		case models.ActionSell:
			sellScore += w * sig.Confidence
		}
		totalWeight += w
	}

	net := (buyScore - sellScore) / totalWeight
	switch {
	case net > 0.1:
		return models.ActionBuy, clampf(0.5+net*0.5, 0, 1)
	case net < -0.1:
		return models.ActionSell, clampf(0.5-net*0.5, 0, 1)
	default:
		return models.ActionHold, 0.4
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
