package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens oscillations.
// With Momentum == 0 the optimizer keeps no state at all.
type SGD struct {
	lr         float64
	momentum   float64
	velocities []*mat.Dense // per slot, allocated on first use
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// LearningRate implements Config.
func (c SGDConfig) LearningRate() float64 { return c.LR }

func (c SGDConfig) withDefaults() (Config, error) {
	if c.LR == 0 {
		c.LR = 0.01
	}
	if !(c.LR > 0) {
		return nil, linalg.Invalid("lr", c.LR, "must be > 0")
	}
	if !(c.Momentum >= 0 && c.Momentum < 1) {
		return nil, linalg.Invalid("momentum", c.Momentum, "must be in [0, 1)")
	}
	return c, nil
}

// NewSGD creates a new SGD optimizer.
//
// Config values are used as given; go through New to get defaults and
// validation.
func NewSGD(config SGDConfig) *SGD {
	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// Update performs a single optimization step.
//
// Applies gradient descent update to all parameters:
//   - Without momentum: param -= lr * grad
//   - With momentum: velocity = momentum * velocity + grad, param -= lr * velocity
func (s *SGD) Update(params, grads []*mat.Dense) error {
	if err := checkSlots("SGD.Update", params, grads); err != nil {
		return err
	}

	for i, param := range params {
		grad := grads[i]
		if s.momentum == 0 {
			// param -= lr * grad
			linalg.AddScaled(param, -s.lr, grad)
			continue
		}

		var (
			velocity *mat.Dense
			err      error
		)
		s.velocities, velocity, err = slotState(s.velocities, i, param)
		if err != nil {
			return err
		}

		// velocity = momentum * velocity + grad
		velocity.Scale(s.momentum, velocity)
		velocity.Add(velocity, grad)

		// param -= lr * velocity
		linalg.AddScaled(param, -s.lr, velocity)
	}

	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Momentum returns the momentum factor.
func (s *SGD) Momentum() float64 {
	return s.momentum
}
