// Package nn implements the layers and the training loop of a feed-forward
// neural network.
//
// This package provides:
//   - Layer interface: forward, backprop and update contract for all layers
//   - Dense: fully connected layer with an activation and its own optimizer
//   - Dropout: per-unit stochastic masking during training
//   - Activations: Identity, Sigmoid, Tanh, ReLU, Softmax
//   - Loss functions: CrossEntropy, MeanSquared
//   - NeuralNet: ordered layer stack with mini-batch training, validation
//     split and early stopping
//
// Data flows forward through the layers in insertion order; error signals
// flow back through the same layers in reverse. Every Forward call returns a
// Cache holding what the paired Backprop needs, so layers keep no hidden
// per-call state.
package nn

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/optim"
)

// ErrForeignCache is returned when Backprop receives a Cache produced by a
// different layer.
var ErrForeignCache = errors.New("cache was not produced by this layer")

// Cache carries what a Forward call saved for its paired Backprop.
//
// Caches are opaque and belong to the layer that produced them.
type Cache interface {
	owner() Layer
}

// Layer is the base interface for all network layers.
//
// Matrices are batches: one sample per row. A layer never retains the
// matrices it returns, and Forward never mutates its input.
type Layer interface {
	// Forward computes the layer output for a batch.
	//
	// training selects training-time behaviour (e.g. dropout sampling).
	// The returned Cache must be passed to Backprop to differentiate this
	// exact call.
	Forward(x *mat.Dense, training bool) (*mat.Dense, Cache, error)

	// Backprop takes ∂L/∂output for the batch that produced cache and returns
	// ∂L/∂input together with the parameter gradients, in the same order as
	// Parameters. Layers without parameters return nil gradients.
	Backprop(cache Cache, delta *mat.Dense) (*mat.Dense, []*mat.Dense, error)

	// Update applies gradients produced by Backprop.
	Update(grads []*mat.Dense) error

	// Parameters returns the live trainable matrices (nil if none).
	Parameters() []*mat.Dense

	// InputSize is the number of columns Forward accepts.
	InputSize() int

	// OutputSize is the number of columns Forward returns.
	OutputSize() int
}

// OptimizerBinder is implemented by layers that own trainable parameters and
// need an optimizer instance before Update can be called.
type OptimizerBinder interface {
	// BindOptimizer builds a fresh optimizer from cfg for this layer alone.
	BindOptimizer(cfg optim.Config) error
}
