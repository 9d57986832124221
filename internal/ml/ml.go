// Package ml holds the small numeric toolkit the forecasters are built on:
// splitting, scaling, least squares and a one-hidden-layer perceptron.
package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrEmpty is returned when a function receives no rows.
	ErrEmpty = errors.New("empty input")
	// ErrShape is returned when rows or columns do not line up.
	ErrShape = errors.New("mismatched dimensions")
	// ErrNotFitted is returned when a model or scaler is used before Fit.
	ErrNotFitted = errors.New("not fitted")
)

// TrainTestSplit shuffles 0..n-1 with seed and returns the train and test
// indices, with ceil(testRatio*n) rows held out.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrEmpty, n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio %v outside (0, 1)", testRatio)
	}
	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// ChronologicalSplit returns the first rows for training and the last
// ceil(testRatio*n) rows for testing.
func ChronologicalSplit(n int, testRatio float64) (nTrain int, err error) {
	if n < 2 {
		return 0, fmt.Errorf("%w: need at least 2 rows, got %d", ErrEmpty, n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return 0, fmt.Errorf("test ratio %v outside (0, 1)", testRatio)
	}
	nTest := min(int(math.Ceil(testRatio*float64(n))), n-1)
	return n - nTest, nil
}

// Take returns the rows of x at idx.
func Take[T any](x []T, idx []int) []T {
	out := make([]T, len(idx))
	for k, i := range idx {
		out[k] = x[i]
	}
	return out
}

// MSE is the mean squared error between yTrue and yPred.
func MSE(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, ErrEmpty
	}
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("%w: %d targets, %d predictions", ErrShape, len(yTrue), len(yPred))
	}
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue)), nil
}

// Column extracts column j of a row-major matrix.
func Column(x [][]float64, j int) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = row[j]
	}
	return out
}

func checkMatrix(x [][]float64) (rows, cols int, err error) {
	if len(x) == 0 {
		return 0, 0, ErrEmpty
	}
	cols = len(x[0])
	if cols == 0 {
		return 0, 0, fmt.Errorf("%w: zero columns", ErrShape)
	}
	for i, row := range x {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
	}
	return len(x), cols, nil
}
