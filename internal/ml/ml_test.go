package ml

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTrainTestSplit(t *testing.T) {
	train, test, err := TrainTestSplit(11, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 3, "ceil(0.2*11)")
	assert.Len(t, train, 8)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v, "every index appears exactly once")
	}

	train2, test2, err := TrainTestSplit(11, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2, "same seed, same split")
	assert.Equal(t, test, test2)
}

func TestTrainTestSplitErrors(t *testing.T) {
	_, _, err := TrainTestSplit(1, 0.2, 1)
	assert.ErrorIs(t, err, ErrEmpty)
	_, _, err = TrainTestSplit(10, 0, 1)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(10, 1, 1)
	assert.Error(t, err)

	train, test, err := TrainTestSplit(2, 0.9, 1)
	require.NoError(t, err)
	assert.Len(t, train, 1, "at least one training row is kept")
	assert.Len(t, test, 1)
}

func TestChronologicalSplit(t *testing.T) {
	nTrain, err := ChronologicalSplit(100, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 80, nTrain)

	nTrain, err = ChronologicalSplit(11, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 8, nTrain)

	_, err = ChronologicalSplit(0, 0.2)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestTakeAndColumn(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	assert.Equal(t, [][]float64{{5, 6}, {1, 2}}, Take(x, []int{2, 0}))
	assert.Equal(t, []float64{2, 4, 6}, Column(x, 1))
}

func TestMSE(t *testing.T) {
	got, err := MSE([]float64{1, 2, 3}, []float64{1, 4, 0})
	require.NoError(t, err)
	assert.InDelta(t, (0+4+9)/3.0, got, 1e-12)

	_, err = MSE(nil, nil)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = MSE([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShape)
}

// --- scaler ---

func TestMinMaxScaler(t *testing.T) {
	x := [][]float64{{0, 10, 5}, {5, 20, 5}, {10, 30, 5}}
	var s MinMaxScaler
	scaled, err := s.FitTransform(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, scaled[0])
	assert.Equal(t, []float64{0.5, 0.5, 0}, scaled[1])
	assert.Equal(t, []float64{1, 1, 0}, scaled[2])
	assert.Equal(t, 1.0, s.Scale[2], "constant column gets scale 1")

	back, err := s.Inverse(scaled)
	require.NoError(t, err)
	assert.Equal(t, x, back)

	out, err := s.Transform([][]float64{{20, 0, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -0.5, 1}, out[0], "values outside the fitted range are not clipped")
}

func TestMinMaxScalerErrors(t *testing.T) {
	var s MinMaxScaler
	_, err := s.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, s.Fit(nil), ErrEmpty)
	assert.ErrorIs(t, s.Fit([][]float64{{1, 2}, {3}}), ErrShape)

	require.NoError(t, s.Fit([][]float64{{1, 2}}))
	_, err = s.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, ErrShape)
}

// --- linear regression ---

func TestLinearRegressionExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var x [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		a, b := rng.Float64(), rng.Float64()
		x = append(x, []float64{a, b})
		y = append(y, 1+2*a-3*b)
	}

	var m LinearRegression
	require.NoError(t, m.Fit(x, y))
	assert.InDelta(t, 1, m.Intercept, 1e-9)
	assert.InDelta(t, 2, m.Coef[0], 1e-9)
	assert.InDelta(t, -3, m.Coef[1], 1e-9)

	pred, err := m.Predict([][]float64{{0.5, 0.5}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pred[0], 1e-9)
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		a := float64(i) / 20
		x = append(x, []float64{a, a}) // duplicated column
		y = append(y, 1+2*a)
	}

	var m LinearRegression
	require.NoError(t, m.Fit(x, y))
	pred, err := m.Predict(x)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-4)
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	var m LinearRegression
	_, err := m.Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.ErrorIs(t, m.Fit([][]float64{{1}, {2}}, []float64{1}), ErrShape)
	assert.ErrorIs(t, m.Fit(nil, nil), ErrEmpty)
}

// --- MLP ---

func TestTrainOptionsDefaults(t *testing.T) {
	var o TrainOptions
	require.NoError(t, o.Normalize())
	assert.Equal(t, 100, o.Epochs)
	assert.Equal(t, 32, o.BatchSize)
	assert.Equal(t, 0.001, o.LearningRate)
	assert.Equal(t, 0.9, o.Beta1)
	assert.Equal(t, 0.999, o.Beta2)
	assert.Equal(t, 1e-8, o.Epsilon)
	assert.Equal(t, int64(42), o.Seed)

	bad := TrainOptions{BatchSize: -1}
	assert.Error(t, bad.Normalize())
	bad = TrainOptions{Beta1: 1.5}
	assert.Error(t, bad.Normalize())
}

func TestNewMLPInitBounds(t *testing.T) {
	m, err := NewMLP(16, 8, 2, 7)
	require.NoError(t, err)
	bound := 1 / math.Sqrt(16)
	for _, v := range m.w1.RawMatrix().Data {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}

	_, err = NewMLP(0, 8, 1, 1)
	assert.ErrorIs(t, err, ErrShape)
}

func TestMLPGradients(t *testing.T) {
	m, err := NewMLP(3, 5, 2, 3)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(9))
	x := mat.NewDense(4, 3, nil)
	y := mat.NewDense(4, 2, nil)
	x.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, x)
	y.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, y)

	_, grads := m.gradients(x, y)
	params := []*mat.Dense{m.w1, m.b1, m.w2, m.b2}
	const eps = 1e-6
	for k, p := range params {
		data := p.RawMatrix().Data
		for i := range data {
			orig := data[i]
			data[i] = orig + eps
			up, _ := m.gradients(x, y)
			data[i] = orig - eps
			down, _ := m.gradients(x, y)
			data[i] = orig

			numeric := (up - down) / (2 * eps)
			analytic := grads[k].RawMatrix().Data[i]
			assert.InDelta(t, numeric, analytic, 1e-5, "param %d element %d", k, i)
		}
	}
}

func TestMLPTrainReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var x, y [][]float64
	for i := 0; i < 128; i++ {
		a, b := rng.Float64(), rng.Float64()
		x = append(x, []float64{a, b})
		y = append(y, []float64{0.3*a + 0.6*b, 0.5 * a})
	}

	m, err := NewMLP(2, 16, 2, 1)
	require.NoError(t, err)
	losses, err := m.Train(x, y, TrainOptions{Epochs: 60, BatchSize: 16, LearningRate: 0.01})
	require.NoError(t, err)
	require.Len(t, losses, 60)
	assert.Less(t, losses[59], losses[0])

	pred, err := m.Predict(x[:3])
	require.NoError(t, err)
	require.Len(t, pred, 3)
	assert.Len(t, pred[0], 2)
}

func TestMLPDeterministic(t *testing.T) {
	x := [][]float64{{0, 1}, {1, 0}, {1, 1}, {0, 0}}
	y := [][]float64{{1}, {1}, {0}, {0}}
	run := func() [][]float64 {
		m, err := NewMLP(2, 4, 1, 11)
		require.NoError(t, err)
		_, err = m.Train(x, y, TrainOptions{Epochs: 5, BatchSize: 2})
		require.NoError(t, err)
		p, err := m.Predict(x)
		require.NoError(t, err)
		return p
	}
	assert.Equal(t, run(), run())
}

func TestMLPShapeErrors(t *testing.T) {
	m, err := NewMLP(2, 4, 1, 1)
	require.NoError(t, err)
	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrShape)
	_, err = m.Train([][]float64{{1, 2}}, [][]float64{{1, 2}}, TrainOptions{Epochs: 1})
	assert.ErrorIs(t, err, ErrShape)
}
