package ml

import "fmt"

// MinMaxScaler maps each column linearly onto [0, 1] using the minimum and
// maximum seen during Fit. Constant columns get a scale of 1.
type MinMaxScaler struct {
	Min   []float64
	Scale []float64 // max - min, or 1 for a constant column
}

// Fit learns per-column bounds from x.
func (s *MinMaxScaler) Fit(x [][]float64) error {
	_, cols, err := checkMatrix(x)
	if err != nil {
		return fmt.Errorf("scaler fit: %w", err)
	}
	lo := make([]float64, cols)
	hi := make([]float64, cols)
	copy(lo, x[0])
	copy(hi, x[0])
	for _, row := range x[1:] {
		for j, v := range row {
			lo[j] = min(lo[j], v)
			hi[j] = max(hi[j], v)
		}
	}
	scale := make([]float64, cols)
	for j := range scale {
		scale[j] = hi[j] - lo[j]
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	s.Min, s.Scale = lo, scale
	return nil
}

// Transform returns a scaled copy of x.
func (s *MinMaxScaler) Transform(x [][]float64) ([][]float64, error) {
	return s.apply(x, func(v, lo, sc float64) float64 { return (v - lo) / sc })
}

// Inverse maps scaled values back to the original units.
func (s *MinMaxScaler) Inverse(x [][]float64) ([][]float64, error) {
	return s.apply(x, func(v, lo, sc float64) float64 { return v*sc + lo })
}

// FitTransform fits on x and returns it scaled.
func (s *MinMaxScaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

func (s *MinMaxScaler) apply(x [][]float64, fn func(v, lo, sc float64) float64) ([][]float64, error) {
	if s.Scale == nil {
		return nil, fmt.Errorf("scaler: %w", ErrNotFitted)
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Scale) {
			return nil, fmt.Errorf("scaler: %w: row %d has %d columns, want %d", ErrShape, i, len(row), len(s.Scale))
		}
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = fn(v, s.Min[j], s.Scale[j])
		}
		out[i] = r
	}
	return out, nil
}
