package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
	"github.com/born-ml/nnet/internal/optim"
)

// Dense implements a fully connected layer.
//
// Performs the transformation: y = activation(x @ W + b)
// where:
//   - x is the input batch with shape [batch_size, n_in]
//   - W is the weight matrix with shape [n_in, n_out]
//   - b is the bias row with shape [1, n_out]
//   - y is the output batch with shape [batch_size, n_out]
//
// W and b change only through Update, which delegates to the optimizer bound
// by BindOptimizer. Each Dense owns its optimizer; they are never shared.
//
// Example:
//
//	src := rand.NewPCG(1, 2)
//	layer, err := nn.NewDense(4, 64, nn.Sigmoid, src)
//	out, cache, err := layer.Forward(batch, true)
type Dense struct {
	nIn        int
	nOut       int
	weight     *mat.Dense // [n_in, n_out]
	bias       *mat.Dense // [1, n_out]
	activation Activation
	optimizer  optim.Optimizer
}

// denseCache is the per-call context of Dense.Forward.
type denseCache struct {
	layer *Dense
	x     *mat.Dense // input batch
	z     *mat.Dense // pre-activation
}

func (c *denseCache) owner() Layer { return c.layer }

// DenseOption customises NewDense.
type DenseOption func(*denseOptions)

type denseOptions struct {
	init Initializer
}

// WithInitializer selects the weight initialisation (default SmallNormal).
func WithInitializer(init Initializer) DenseOption {
	return func(o *denseOptions) {
		o.init = init
	}
}

// NewDense creates a new Dense layer.
//
// Parameters:
//   - nIn: Number of input features
//   - nOut: Number of output units
//   - activation: Nonlinearity applied to the pre-activation
//   - src: Random source for weight initialisation (nil: randomly seeded)
//
// Fails with linalg.ErrInvalidConfiguration for non-positive sizes or an
// unsupported activation or initializer.
func NewDense(nIn, nOut int, activation Activation, src rand.Source, opts ...DenseOption) (*Dense, error) {
	if nIn <= 0 {
		return nil, linalg.Invalid("n_in", nIn, "must be > 0")
	}
	if nOut <= 0 {
		return nil, linalg.Invalid("n_out", nOut, "must be > 0")
	}
	if !activation.Valid() {
		return nil, linalg.Invalid("activation", activation, "unsupported activation")
	}

	var o denseOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.init.Valid() {
		return nil, linalg.Invalid("initializer", o.init, "unsupported initializer")
	}

	d := &Dense{
		nIn:        nIn,
		nOut:       nOut,
		weight:     mat.NewDense(nIn, nOut, nil),
		bias:       mat.NewDense(1, nOut, nil),
		activation: activation,
	}
	o.init.fill(d.weight, d.bias, sourceOrDefault(src))

	return d, nil
}

// Forward computes activation(x @ W + b).
//
// Input shape: [batch_size, n_in]
// Output shape: [batch_size, n_out]
//
// The cache keeps a reference to x; callers must not modify x before the
// paired Backprop.
func (d *Dense) Forward(x *mat.Dense, _ bool) (*mat.Dense, Cache, error) {
	if err := linalg.CheckCols("Dense.Forward", x, d.nIn); err != nil {
		return nil, nil, err
	}

	var z mat.Dense
	z.Mul(x, d.weight)
	linalg.AddRowVec(&z, d.bias)

	return d.activation.Forward(&z), &denseCache{layer: d, x: x, z: &z}, nil
}

// Backprop computes the gradients for one Forward call.
//
//	delta_z     = activation.Gradient(delta, z)
//	bias_grad   = column-sum(delta_z)
//	weight_grad = x^T @ delta_z
//	propagated  = delta_z @ W^T
//
// Returns propagated and [weight_grad, bias_grad].
func (d *Dense) Backprop(cache Cache, delta *mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	c, err := d.cacheOf(cache)
	if err != nil {
		return nil, nil, err
	}
	if err := linalg.CheckSame("Dense.Backprop", c.z, delta); err != nil {
		return nil, nil, err
	}

	return d.backprop(c, d.activation.Gradient(delta, c.z))
}

// BackpropLogits is Backprop with deltaZ = ∂L/∂z supplied directly, skipping
// the activation Jacobian. The network uses it for a softmax output layer
// trained with cross-entropy.
func (d *Dense) BackpropLogits(cache Cache, deltaZ *mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	c, err := d.cacheOf(cache)
	if err != nil {
		return nil, nil, err
	}
	if err := linalg.CheckSame("Dense.BackpropLogits", c.z, deltaZ); err != nil {
		return nil, nil, err
	}

	return d.backprop(c, deltaZ)
}

func (d *Dense) backprop(c *denseCache, deltaZ *mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	biasGrad := linalg.ColSum(deltaZ)

	var weightGrad mat.Dense
	weightGrad.Mul(c.x.T(), deltaZ)

	var propagated mat.Dense
	propagated.Mul(deltaZ, d.weight.T())

	return &propagated, []*mat.Dense{&weightGrad, biasGrad}, nil
}

func (d *Dense) cacheOf(cache Cache) (*denseCache, error) {
	c, ok := cache.(*denseCache)
	if !ok || c.layer != d {
		return nil, fmt.Errorf("Dense.Backprop: %w", ErrForeignCache)
	}
	return c, nil
}

// BindOptimizer builds this layer's optimizer from cfg, replacing any
// previous one together with its state.
func (d *Dense) BindOptimizer(cfg optim.Config) error {
	opt, err := optim.New(cfg)
	if err != nil {
		return fmt.Errorf("Dense.BindOptimizer: %w", err)
	}
	d.optimizer = opt
	return nil
}

// Update applies [weight_grad, bias_grad] through the bound optimizer.
//
// Fails with linalg.ErrNumericalInstability if the step leaves a non-finite
// weight or bias.
func (d *Dense) Update(grads []*mat.Dense) error {
	if d.optimizer == nil {
		return linalg.Invalid("optimizer", nil, "Dense.Update called before BindOptimizer")
	}
	if err := d.optimizer.Update(d.Parameters(), grads); err != nil {
		return fmt.Errorf("Dense.Update: %w", err)
	}
	if !linalg.Finite(d.weight, d.bias) {
		return fmt.Errorf("Dense.Update: %w: non-finite parameters after step", linalg.ErrNumericalInstability)
	}
	return nil
}

// Parameters returns [weight, bias].
func (d *Dense) Parameters() []*mat.Dense {
	return []*mat.Dense{d.weight, d.bias}
}

// Weight returns the live weight matrix [n_in, n_out].
func (d *Dense) Weight() *mat.Dense {
	return d.weight
}

// Bias returns the live bias row [1, n_out].
func (d *Dense) Bias() *mat.Dense {
	return d.bias
}

// Activation returns the layer's activation.
func (d *Dense) Activation() Activation {
	return d.activation
}

// Optimizer returns the bound optimizer, or nil before BindOptimizer.
func (d *Dense) Optimizer() optim.Optimizer {
	return d.optimizer
}

// InputSize returns n_in.
func (d *Dense) InputSize() int {
	return d.nIn
}

// OutputSize returns n_out.
func (d *Dense) OutputSize() int {
	return d.nOut
}
