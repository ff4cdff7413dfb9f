// Package nn is a small dense multilayer perceptron on top of gonum, trained with Adam
// on mean squared error.
package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

const (
	beta1   = 0.9
	beta2   = 0.999
	epsilon = 1e-7
)

// param is a weight matrix together with its Adam moments.
type param struct {
	value *mat.Dense
	m     *mat.Dense
	v     *mat.Dense
}

func newParam(r, c int, init func() float64) *param {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = init()
	}
	return &param{
		value: mat.NewDense(r, c, data),
		m:     mat.NewDense(r, c, nil),
		v:     mat.NewDense(r, c, nil),
	}
}

type layer struct {
	weights *param // in x out
	bias    *param // 1 x out
	relu    bool
}

// Network is a fully connected network with ReLU hidden layers and a linear output.
type Network struct {
	sizes  []int
	layers []*layer
	lr     float64
	step   int
}

// New builds a network with the given layer sizes, input first and output last.
func New(sizes []int, learningRate float64, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("network needs at least an input and an output size, got %v", sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("invalid layer size in %v", sizes)
		}
	}
	if learningRate <= 0 {
		return nil, fmt.Errorf("invalid learning rate %v", learningRate)
	}

	n := &Network{sizes: append([]int(nil), sizes...), lr: learningRate}
	for i := 1; i < len(sizes); i++ {
		in, out := sizes[i-1], sizes[i]
		// Glorot uniform, as most frameworks default to
		limit := math.Sqrt(6 / float64(in+out))
		n.layers = append(n.layers, &layer{
			weights: newParam(in, out, func() float64 { return (2*rng.Float64() - 1) * limit }),
			bias:    newParam(1, out, func() float64 { return 0 }),
			relu:    i < len(sizes)-1,
		})
	}
	return n, nil
}

func (n *Network) InputSize() int  { return n.sizes[0] }
func (n *Network) OutputSize() int { return n.sizes[len(n.sizes)-1] }

func (n *Network) SetLearningRate(lr float64) {
	if lr > 0 {
		n.lr = lr
	}
}

// forward returns the activations of every layer, input included.
func (n *Network) forward(x *mat.Dense) []*mat.Dense {
	acts := []*mat.Dense{x}
	a := x
	for _, l := range n.layers {
		rows, _ := a.Dims()
		_, out := l.weights.value.Dims()
		z := mat.NewDense(rows, out, nil)
		z.Mul(a, l.weights.value)
		bias := l.bias.value.RawRowView(0)
		relu := l.relu
		z.Apply(func(_, j int, v float64) float64 {
			v += bias[j]
			if relu && v < 0 {
				return 0
			}
			return v
		}, z)
		acts = append(acts, z)
		a = z
	}
	return acts
}

// Predict runs one input vector through the network.
func (n *Network) Predict(x []float64) []float64 {
	out := n.PredictBatch([][]float64{x})
	return out[0]
}

// PredictBatch runs every row of xs through the network.
func (n *Network) PredictBatch(xs [][]float64) [][]float64 {
	acts := n.forward(n.matrix(xs, n.InputSize()))
	return rows(acts[len(acts)-1])
}

// Fit trains for one epoch over xs and ys in minibatches of batchSize and returns the
// mean loss over the epoch.
func (n *Network) Fit(xs, ys [][]float64, batchSize int) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("got %d inputs and %d targets", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = len(xs)
	}

	total, batches := 0.0, 0
	for start := 0; start < len(xs); start += batchSize {
		end := min(start+batchSize, len(xs))
		total += n.trainBatch(n.matrix(xs[start:end], n.InputSize()), n.matrix(ys[start:end], n.OutputSize()))
		batches++
	}
	return total / float64(batches), nil
}

func (n *Network) trainBatch(x, y *mat.Dense) float64 {
	acts := n.forward(x)
	pred := acts[len(acts)-1]
	rows, cols := pred.Dims()

	// d(MSE)/d(pred)
	grad := mat.NewDense(rows, cols, nil)
	grad.Sub(pred, y)
	loss := 0.0
	for i := 0; i < rows; i++ {
		for _, v := range grad.RawRowView(i) {
			loss += v * v
		}
	}
	loss /= float64(rows * cols)
	grad.Scale(2/float64(rows*cols), grad)

	n.step++
	for li := len(n.layers) - 1; li >= 0; li-- {
		l := n.layers[li]
		in := acts[li]

		var dw mat.Dense
		dw.Mul(in.T(), grad)
		_, out := grad.Dims()
		db := mat.NewDense(1, out, nil)
		for i := 0; i < rows; i++ {
			for j, v := range grad.RawRowView(i) {
				db.Set(0, j, db.At(0, j)+v)
			}
		}

		if li > 0 {
			var next mat.Dense
			next.Mul(grad, l.weights.value.T())
			// The previous layer is a ReLU; its activation is zero where it was clipped
			next.Apply(func(i, j int, v float64) float64 {
				if in.At(i, j) <= 0 {
					return 0
				}
				return v
			}, &next)
			grad = &next
		}

		n.adam(l.weights, &dw)
		n.adam(l.bias, db)
	}
	return loss
}

func (n *Network) adam(p *param, g mat.Matrix) {
	c1 := 1 - math.Pow(beta1, float64(n.step))
	c2 := 1 - math.Pow(beta2, float64(n.step))
	r, c := p.value.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			gv := g.At(i, j)
			m := beta1*p.m.At(i, j) + (1-beta1)*gv
			v := beta2*p.v.At(i, j) + (1-beta2)*gv*gv
			p.m.Set(i, j, m)
			p.v.Set(i, j, v)
			p.value.Set(i, j, p.value.At(i, j)-n.lr*(m/c1)/(math.Sqrt(v/c2)+epsilon))
		}
	}
}

// matrix copies rows into a dense matrix, padding or truncating each to width.
func (n *Network) matrix(xs [][]float64, width int) *mat.Dense {
	m := mat.NewDense(len(xs), width, nil)
	for i, x := range xs {
		row := m.RawRowView(i)
		copy(row, x)
	}
	return m
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}
