// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Config: closed set of optimizer configurations (SGDConfig, AdamConfig)
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// An Optimizer updates an ordered list of parameter matrices in place. The
// position of a matrix in that list is its slot: per-parameter state such as
// Adam's moments is keyed by slot, so a caller must always pass the same
// parameters in the same order. Each layer owns its own optimizer instance.
//
// Example usage:
//
//	opt, err := optim.New(optim.AdamConfig{LR: 0.001})
//	if err != nil {
//	    return err
//	}
//
//	// After backprop produced one gradient per parameter
//	err = opt.Update([]*mat.Dense{w, b}, []*mat.Dense{wGrad, bGrad})
package optim

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Update applies one gradient step to params in place.
	//
	// params[i] is updated with grads[i]; both lists must have the same
	// length and pairwise equal shapes, and the same slot must always hold
	// the same parameter.
	Update(params, grads []*mat.Dense) error

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Config selects an optimizer and carries its hyperparameters.
//
// The set of implementations is closed: SGDConfig and AdamConfig.
type Config interface {
	// LearningRate returns the configured step size.
	LearningRate() float64

	// withDefaults fills zero fields and validates the result.
	withDefaults() (Config, error)
}

// New builds a fresh optimizer for cfg.
//
// Zero-valued hyperparameters take their defaults; anything out of range
// fails with linalg.ErrInvalidConfiguration.
func New(cfg Config) (Optimizer, error) {
	if cfg == nil {
		return nil, linalg.Invalid("optimizer", nil, "no optimizer configured")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	switch c := cfg.(type) {
	case SGDConfig:
		return NewSGD(c), nil
	case AdamConfig:
		return NewAdam(c), nil
	default:
		return nil, linalg.Invalid("optimizer", fmt.Sprintf("%T", cfg), "unsupported optimizer")
	}
}

// Validate applies defaults to cfg and reports whether it is usable,
// without building an optimizer.
func Validate(cfg Config) error {
	_, err := New(cfg)
	return err
}

// Parse maps an optimizer name to its default configuration with the given
// learning rate. Names are case-insensitive: "sgd" or "adam".
func Parse(name string, lr float64) (Config, error) {
	var cfg Config
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sgd":
		cfg = SGDConfig{LR: lr}
	case "adam":
		cfg = AdamConfig{LR: lr}
	default:
		return nil, linalg.Invalid("optimizer", name, "want one of sgd, adam")
	}
	return cfg.withDefaults()
}

// checkSlots validates a params/grads pair before any element is touched.
func checkSlots(op string, params, grads []*mat.Dense) error {
	if len(params) != len(grads) {
		return fmt.Errorf("%s: %w: %d parameters, %d gradients",
			op, linalg.ErrShapeMismatch, len(params), len(grads))
	}
	for i := range params {
		if err := linalg.CheckSame(fmt.Sprintf("%s[%d]", op, i), params[i], grads[i]); err != nil {
			return err
		}
	}
	return nil
}

// slotState returns the zero-initialised state matrix for slot i, growing
// the table on first sight of a slot.
func slotState(state []*mat.Dense, i int, like *mat.Dense) ([]*mat.Dense, *mat.Dense, error) {
	for len(state) <= i {
		state = append(state, nil)
	}
	if state[i] == nil {
		r, c := like.Dims()
		state[i] = mat.NewDense(r, c, nil)
		return state, state[i], nil
	}
	if err := linalg.CheckSame(fmt.Sprintf("optimizer state[%d]", i), state[i], like); err != nil {
		return state, nil, err
	}
	return state, state[i], nil
}
