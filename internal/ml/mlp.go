package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
)

var validate = validator.New()

// TrainOptions controls MLP training. Zero fields take the defaults in the
// struct tags.
type TrainOptions struct {
	Epochs       int     `default:"100"   validate:"gt=0"`
	BatchSize    int     `default:"32"    validate:"gt=0"`
	LearningRate float64 `default:"0.001" validate:"gt=0"`
	Beta1        float64 `default:"0.9"   validate:"gt=0,lt=1"`
	Beta2        float64 `default:"0.999" validate:"gt=0,lt=1"`
	Epsilon      float64 `default:"1e-8"  validate:"gt=0"`
	Seed         int64   `default:"42"`
}

// Normalize fills defaults and validates the options.
func (o *TrainOptions) Normalize() error {
	if err := defaults.Set(o); err != nil {
		return fmt.Errorf("train options defaults: %w", err)
	}
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("train options: %w", err)
	}
	return nil
}

// MLP is a fully connected network with one ReLU hidden layer and a linear
// output layer.
type MLP struct {
	In, Hidden, Out int

	w1, b1, w2, b2 *mat.Dense
}

// NewMLP creates a network with Kaiming-uniform initialized weights: every
// parameter of a layer is drawn from U(-1/sqrt(fanIn), 1/sqrt(fanIn)).
func NewMLP(in, hidden, out int, seed int64) (*MLP, error) {
	if in <= 0 || hidden <= 0 || out <= 0 {
		return nil, fmt.Errorf("%w: mlp %dx%dx%d", ErrShape, in, hidden, out)
	}
	rng := rand.New(rand.NewSource(seed))
	return &MLP{
		In: in, Hidden: hidden, Out: out,
		w1: uniform(rng, in, hidden, in),
		b1: uniform(rng, 1, hidden, in),
		w2: uniform(rng, hidden, out, hidden),
		b2: uniform(rng, 1, out, hidden),
	}, nil
}

func uniform(rng *rand.Rand, r, c, fanIn int) *mat.Dense {
	bound := 1 / math.Sqrt(float64(fanIn))
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return mat.NewDense(r, c, data)
}

// forward returns the hidden pre-activation, hidden activation and output
// for a batch.
func (m *MLP) forward(x *mat.Dense) (z1, h, out *mat.Dense) {
	rows, _ := x.Dims()

	z1 = mat.NewDense(rows, m.Hidden, nil)
	z1.Mul(x, m.w1)
	addRow(z1, m.b1)

	h = mat.NewDense(rows, m.Hidden, nil)
	h.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z1)

	out = mat.NewDense(rows, m.Out, nil)
	out.Mul(h, m.w2)
	addRow(out, m.b2)
	return z1, h, out
}

// Predict returns the network output for each row of x.
func (m *MLP) Predict(x [][]float64) ([][]float64, error) {
	xm, err := m.toDense(x)
	if err != nil {
		return nil, err
	}
	_, _, out := m.forward(xm)
	return fromDense(out), nil
}

// Train fits the network to y (one row per sample, Out columns) with
// mini-batch Adam on the mean squared error. It returns the mean training
// loss of every epoch.
func (m *MLP) Train(x, y [][]float64, opts TrainOptions) ([]float64, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	xm, err := m.toDense(x)
	if err != nil {
		return nil, err
	}
	rows, outCols, err := checkMatrix(y)
	if err != nil {
		return nil, fmt.Errorf("mlp train targets: %w", err)
	}
	if rows != len(x) || outCols != m.Out {
		return nil, fmt.Errorf("mlp train: %w: targets %dx%d, want %dx%d", ErrShape, rows, outCols, len(x), m.Out)
	}
	ym := mat.NewDense(rows, outCols, flatten(y))

	params := []*mat.Dense{m.w1, m.b1, m.w2, m.b2}
	adam := newAdam(params, opts)
	rng := rand.New(rand.NewSource(opts.Seed))

	losses := make([]float64, 0, opts.Epochs)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		perm := rng.Perm(rows)
		epochLoss := 0.0
		batches := 0
		for start := 0; start < rows; start += opts.BatchSize {
			idx := perm[start:min(start+opts.BatchSize, rows)]
			bx := selectRows(xm, idx)
			by := selectRows(ym, idx)
			loss, grads := m.gradients(bx, by)
			adam.step(params, grads)
			epochLoss += loss
			batches++
		}
		losses = append(losses, epochLoss/float64(batches))
	}
	return losses, nil
}

// gradients runs one forward and backward pass and returns the batch loss
// with the gradients of w1, b1, w2, b2.
func (m *MLP) gradients(x, y *mat.Dense) (float64, []*mat.Dense) {
	rows, _ := x.Dims()
	z1, h, out := m.forward(x)

	// dL/dout for L = mean((out - y)^2) over every element.
	n := float64(rows * m.Out)
	diff := mat.NewDense(rows, m.Out, nil)
	diff.Sub(out, y)
	loss := 0.0
	for _, v := range diff.RawMatrix().Data {
		loss += v * v
	}
	loss /= n
	dOut := mat.NewDense(rows, m.Out, nil)
	dOut.Scale(2/n, diff)

	gw2 := mat.NewDense(m.Hidden, m.Out, nil)
	gw2.Mul(h.T(), dOut)
	gb2 := colSums(dOut)

	dh := mat.NewDense(rows, m.Hidden, nil)
	dh.Mul(dOut, m.w2.T())
	dh.Apply(func(i, j int, v float64) float64 {
		if z1.At(i, j) <= 0 {
			return 0
		}
		return v
	}, dh)

	gw1 := mat.NewDense(m.In, m.Hidden, nil)
	gw1.Mul(x.T(), dh)
	gb1 := colSums(dh)

	return loss, []*mat.Dense{gw1, gb1, gw2, gb2}
}

func (m *MLP) toDense(x [][]float64) (*mat.Dense, error) {
	rows, cols, err := checkMatrix(x)
	if err != nil {
		return nil, fmt.Errorf("mlp input: %w", err)
	}
	if cols != m.In {
		return nil, fmt.Errorf("mlp input: %w: %d features, want %d", ErrShape, cols, m.In)
	}
	return mat.NewDense(rows, cols, flatten(x)), nil
}

// --- Adam ---

type adam struct {
	opts TrainOptions
	t    int
	m, v []*mat.Dense
}

func newAdam(params []*mat.Dense, opts TrainOptions) *adam {
	a := &adam{opts: opts}
	for _, p := range params {
		r, c := p.Dims()
		a.m = append(a.m, mat.NewDense(r, c, nil))
		a.v = append(a.v, mat.NewDense(r, c, nil))
	}
	return a
}

func (a *adam) step(params, grads []*mat.Dense) {
	a.t++
	b1, b2 := a.opts.Beta1, a.opts.Beta2
	c1 := 1 - math.Pow(b1, float64(a.t))
	c2 := 1 - math.Pow(b2, float64(a.t))
	for k, p := range params {
		pd := p.RawMatrix().Data
		gd := grads[k].RawMatrix().Data
		md := a.m[k].RawMatrix().Data
		vd := a.v[k].RawMatrix().Data
		for i, g := range gd {
			md[i] = b1*md[i] + (1-b1)*g
			vd[i] = b2*vd[i] + (1-b2)*g*g
			mHat := md[i] / c1
			vHat := vd[i] / c2
			pd[i] -= a.opts.LearningRate * mHat / (math.Sqrt(vHat) + a.opts.Epsilon)
		}
	}
}

// --- matrix helpers ---

func addRow(dst, row *mat.Dense) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, dst.At(i, j)+row.At(0, j))
		}
	}
}

func colSums(a *mat.Dense) *mat.Dense {
	_, c := a.Dims()
	out := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		out.Set(0, j, mat.Sum(a.ColView(j)))
	}
	return out
}

func selectRows(a *mat.Dense, idx []int) *mat.Dense {
	_, c := a.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		out.SetRow(k, a.RawRowView(i))
	}
	return out
}

func flatten(x [][]float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	out := make([]float64, 0, len(x)*len(x[0]))
	for _, row := range x {
		out = append(out, row...)
	}
	return out
}

func fromDense(a *mat.Dense) [][]float64 {
	r, _ := a.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), a.RawRowView(i)...)
	}
	return out
}
