// Package technical computes the price-derived feature columns used by the
// forecasting models. Every function takes a series and returns a series of
// the same length, with NaN where the window has not filled yet.
package technical

import (
	"math"
)

// RSI calculates the Relative Strength Index over period (default 14).
// Average gain and loss are simple rolling means of the close-to-close
// changes, the first change counting as zero. Returns values 0–100; NaN
// during warm-up or on a flat window.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	rsi := make([]float64, n)
	for i := range rsi {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
			rsi[i] = math.NaN()
		case l == 0 && g == 0:
			rsi[i] = math.NaN()
		case l == 0:
			rsi[i] = 100
		default:
			rs := g / l
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}
	return rsi
}

// MACD calculates the Moving Average Convergence Divergence line and its
// signal line. Default parameters: fast=12, slow=26, signal=9.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine []float64) {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}

	fastEMA := EWM(closes, fast)
	slowEMA := EWM(closes, slow)

	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	return macd, EWM(macd, signal)
}

// Bollinger calculates the upper and lower Bollinger Bands: the rolling
// mean of period closes plus and minus mult sample standard deviations.
// Default: period=20, mult=2.
func Bollinger(closes []float64, period int, mult float64) (upper, lower []float64) {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2.0
	}

	mean := RollingMean(closes, period)
	sd := RollingStd(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = mean[i] + mult*sd[i]
		lower[i] = mean[i] - mult*sd[i]
	}
	return upper, lower
}

// --- helper functions ---

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func avg(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// sampleStddev is the standard deviation with n-1 degrees of freedom.
func sampleStddev(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

func hasNaN(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
