package nn

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
	"github.com/born-ml/nnet/internal/parallel"
)

// rowWork splits per-row softmax work on large batches.
var rowWork = parallel.DefaultConfig()

// Activation is the nonlinearity a Dense layer applies to its pre-activation
// z = x·W + b.
//
// The set is closed; the zero value is Identity. Activations are stateless:
// Forward and Gradient are pure functions of their arguments.
type Activation int

// Supported activations.
const (
	// Identity passes z through unchanged.
	Identity Activation = iota

	// Sigmoid applies σ(z) = 1 / (1 + exp(-z)) element-wise, squashing to (0, 1).
	Sigmoid

	// Tanh applies the hyperbolic tangent element-wise, squashing to (-1, 1).
	Tanh

	// ReLU applies max(0, z) element-wise.
	ReLU

	// Softmax normalises each row into a probability distribution.
	Softmax
)

var activationNames = [...]string{
	Identity: "identity",
	Sigmoid:  "sigmoid",
	Tanh:     "tanh",
	ReLU:     "relu",
	Softmax:  "softmax",
}

// String returns the lowercase activation name.
func (a Activation) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// Valid reports whether a is one of the supported activations.
func (a Activation) Valid() bool {
	return a >= Identity && a <= Softmax
}

// ParseActivation maps a case-insensitive name to its Activation.
func ParseActivation(name string) (Activation, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for a, n := range activationNames {
		if n == key {
			return Activation(a), nil
		}
	}
	return 0, linalg.Invalid("activation", name, "want one of "+strings.Join(activationNames[:], ", "))
}

// Forward applies the activation to z and returns a new matrix.
func (a Activation) Forward(z *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(z)

	switch a {
	case Identity:
	case Sigmoid:
		out.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, out)
	case Tanh:
		out.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, out)
	case ReLU:
		out.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, out)
	case Softmax:
		r, _ := out.Dims()
		parallel.For(r, func(i int) {
			softmaxRow(out.RawRowView(i))
		}, rowWork)
	default:
		panic(fmt.Sprintf("nn: unsupported activation %v", a))
	}

	return out
}

// Gradient combines the upstream error ∂L/∂a with the local derivative of
// the activation at z, returning ∂L/∂z.
//
// Element-wise activations multiply by their derivative. Softmax applies its
// full per-row Jacobian: for s = softmax(z), ∂L/∂z_j = s_j (e_j - Σ_k e_k s_k).
// The fused softmax + cross-entropy shortcut lives in the network, not here.
func (a Activation) Gradient(upstream, z *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(upstream)

	switch a {
	case Identity:
	case Sigmoid:
		out.Apply(func(i, j int, e float64) float64 {
			s := sigmoid(z.At(i, j))
			return e * s * (1 - s)
		}, out)
	case Tanh:
		out.Apply(func(i, j int, e float64) float64 {
			t := math.Tanh(z.At(i, j))
			return e * (1 - t*t)
		}, out)
	case ReLU:
		out.Apply(func(i, j int, e float64) float64 {
			if z.At(i, j) > 0 {
				return e
			}
			return 0
		}, out)
	case Softmax:
		r, _ := z.Dims()
		parallel.For(r, func(i int) {
			s := slices.Clone(z.RawRowView(i))
			softmaxRow(s)
			e := out.RawRowView(i)
			dot := floats.Dot(e, s)
			for j := range e {
				e[j] = s[j] * (e[j] - dot)
			}
		}, rowWork)
	default:
		panic(fmt.Sprintf("nn: unsupported activation %v", a))
	}

	return out
}

// sigmoid is the logistic function, written to avoid exp overflow.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

// softmaxRow normalises row in place using the max-subtraction trick.
func softmaxRow(row []float64) {
	m := floats.Max(row)
	for j, v := range row {
		row[j] = math.Exp(v - m)
	}
	floats.Scale(1/floats.Sum(row), row)
}
