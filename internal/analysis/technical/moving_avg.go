package technical

import "math"

// RollingMean is the simple moving average over window values. A window
// containing NaN yields NaN.
func RollingMean(data []float64, window int) []float64 {
	n := len(data)
	result := nanSeries(n)
	if window <= 0 || n < window {
		return result
	}
	for i := window - 1; i < n; i++ {
		w := data[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		result[i] = avg(w)
	}
	return result
}

// RollingStd is the rolling sample standard deviation over window values.
func RollingStd(data []float64, window int) []float64 {
	n := len(data)
	result := nanSeries(n)
	if window <= 1 || n < window {
		return result
	}
	for i := window - 1; i < n; i++ {
		w := data[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		result[i] = sampleStddev(w, avg(w))
	}
	return result
}

// EWM is the exponentially weighted mean with smoothing 2/(span+1),
// seeded with the first observation: y0 = x0, y_t = a*x_t + (1-a)*y_{t-1}.
// Leading NaNs are carried through until the first finite value.
func EWM(data []float64, span int) []float64 {
	n := len(data)
	result := nanSeries(n)
	if n == 0 || span <= 0 {
		return result
	}
	k := 2.0 / float64(span+1)

	prev := math.NaN()
	for i, v := range data {
		switch {
		case math.IsNaN(v):
			result[i] = prev
			continue
		case math.IsNaN(prev):
			prev = v
		default:
			prev = k*v + (1-k)*prev
		}
		result[i] = prev
	}
	return result
}
