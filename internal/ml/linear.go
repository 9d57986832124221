package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// maxCond is the largest condition number solved by QR directly.
	maxCond = 1e10
	// ridgeLambda is added to the normal equations when the design matrix is
	// rank deficient.
	ridgeLambda = 1e-8
)

// LinearRegression is ordinary least squares with an intercept.
type LinearRegression struct {
	Intercept float64
	Coef      []float64
}

// Fit solves min ||[1 X]b - y||² with a QR factorization, falling back to a
// lightly regularized normal-equation solve when X is rank deficient.
func (m *LinearRegression) Fit(x [][]float64, y []float64) error {
	rows, cols, err := checkMatrix(x)
	if err != nil {
		return fmt.Errorf("linear fit: %w", err)
	}
	if len(y) != rows {
		return fmt.Errorf("linear fit: %w: %d rows, %d targets", ErrShape, rows, len(y))
	}

	design := mat.NewDense(rows, cols+1, nil)
	for i, row := range x {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewDense(rows, 1, append([]float64(nil), y...))

	var beta mat.Dense
	if rows < cols+1 || solveQR(&beta, design, target) != nil || !finite(&beta) {
		beta.Reset()
		if err := solveRidge(&beta, design, target); err != nil {
			return fmt.Errorf("linear fit: %w", err)
		}
	}

	m.Intercept = beta.At(0, 0)
	m.Coef = make([]float64, cols)
	for j := range m.Coef {
		m.Coef[j] = beta.At(j+1, 0)
	}
	return nil
}

func solveQR(dst *mat.Dense, a, b *mat.Dense) error {
	var qr mat.QR
	qr.Factorize(a)
	if c := qr.Cond(); c > maxCond {
		return mat.Condition(c)
	}
	return qr.SolveTo(dst, false, b)
}

func solveRidge(dst *mat.Dense, a, b *mat.Dense) error {
	_, c := a.Dims()
	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 0; j < c; j++ {
		ata.Set(j, j, ata.At(j, j)+ridgeLambda)
	}
	var atb mat.Dense
	atb.Mul(a.T(), b)
	err := dst.Solve(&ata, &atb)
	var cond mat.Condition
	if errors.As(err, &cond) {
		// ill-conditioned but solved
		return nil
	}
	return err
}

func finite(a *mat.Dense) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Predict returns the fitted values for x.
func (m *LinearRegression) Predict(x [][]float64) ([]float64, error) {
	if m.Coef == nil {
		return nil, fmt.Errorf("linear predict: %w", ErrNotFitted)
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("linear predict: %w: row %d has %d columns, want %d", ErrShape, i, len(row), len(m.Coef))
		}
		v := m.Intercept
		for j, c := range m.Coef {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}
