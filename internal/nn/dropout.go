package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/nnet/internal/linalg"
)

// Dropout randomly silences units during training.
//
// In training mode every Forward call draws a fresh keep-mask of width n,
// keeping each unit independently with probability 1-rate, and multiplies
// every row of the batch by it. The mask travels in the returned Cache so
// the paired Backprop masks the error identically.
//
// In inference mode no mask is drawn: the output is the input scaled by
// 1-rate, the expected value of the masked training output.
//
// Dropout has no parameters; Update does nothing.
type Dropout struct {
	n    int
	rate float64
	keep distuv.Bernoulli
}

// dropoutCache is the per-call context of Dropout.Forward.
type dropoutCache struct {
	layer *Dropout
	mask  []float64 // nil for inference-mode calls
}

func (c *dropoutCache) owner() Layer { return c.layer }

// NewDropout creates a Dropout layer over n units.
//
// rate is the drop probability in [0, 1). rate=0 makes the layer an
// identity; rates close to 1 are allowed.
func NewDropout(n int, rate float64, src rand.Source) (*Dropout, error) {
	if n <= 0 {
		return nil, linalg.Invalid("n", n, "must be > 0")
	}
	if math.IsNaN(rate) || rate < 0 || rate >= 1 {
		return nil, linalg.Invalid("rate", rate, "must be in [0, 1)")
	}

	return &Dropout{
		n:    n,
		rate: rate,
		keep: distuv.Bernoulli{P: 1 - rate, Src: sourceOrDefault(src)},
	}, nil
}

// Forward masks x in training mode and scales it by 1-rate otherwise.
func (d *Dropout) Forward(x *mat.Dense, training bool) (*mat.Dense, Cache, error) {
	if err := linalg.CheckCols("Dropout.Forward", x, d.n); err != nil {
		return nil, nil, err
	}

	if !training {
		out := mat.DenseCopyOf(x)
		out.Scale(1-d.rate, out)
		return out, &dropoutCache{layer: d}, nil
	}

	mask := d.sample()
	return linalg.MulRowVec(x, mask), &dropoutCache{layer: d, mask: mask}, nil
}

// Backprop applies the same mask (or scale) the forward call used.
// Dropout has no parameter gradients.
func (d *Dropout) Backprop(cache Cache, delta *mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	c, ok := cache.(*dropoutCache)
	if !ok || c.layer != d {
		return nil, nil, fmt.Errorf("Dropout.Backprop: %w", ErrForeignCache)
	}
	if err := linalg.CheckCols("Dropout.Backprop", delta, d.n); err != nil {
		return nil, nil, err
	}

	if c.mask == nil {
		out := mat.DenseCopyOf(delta)
		out.Scale(1-d.rate, out)
		return out, nil, nil
	}
	return linalg.MulRowVec(delta, c.mask), nil, nil
}

// Update is a no-op: Dropout has no weights.
func (d *Dropout) Update([]*mat.Dense) error {
	return nil
}

// sample draws a keep-mask: 1 keeps a unit, 0 drops it.
func (d *Dropout) sample() []float64 {
	mask := make([]float64, d.n)
	for i := range mask {
		mask[i] = d.keep.Rand()
	}
	return mask
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 {
	return d.rate
}

// Parameters returns nil (Dropout has no trainable parameters).
func (d *Dropout) Parameters() []*mat.Dense {
	return nil
}

// InputSize returns the layer width.
func (d *Dropout) InputSize() int {
	return d.n
}

// OutputSize returns the layer width.
func (d *Dropout) OutputSize() int {
	return d.n
}
