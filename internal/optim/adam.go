package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// The moments belong to this instance and live as long as it does; they are
// never reset between calls. One call to Update is one timestep for every
// slot it touches.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int          // Timestep for bias correction
	m     []*mat.Dense // First moment estimates, per slot
	v     []*mat.Dense // Second moment estimates, per slot
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// LearningRate implements Config.
func (c AdamConfig) LearningRate() float64 { return c.LR }

func (c AdamConfig) withDefaults() (Config, error) {
	// Set defaults
	if c.LR == 0 {
		c.LR = 0.001
	}
	if c.Betas[0] == 0 {
		c.Betas[0] = 0.9
	}
	if c.Betas[1] == 0 {
		c.Betas[1] = 0.999
	}
	if c.Eps == 0 {
		c.Eps = 1e-8
	}

	if !(c.LR > 0) {
		return nil, linalg.Invalid("lr", c.LR, "must be > 0")
	}
	for i, b := range c.Betas {
		if !(b >= 0 && b < 1) {
			return nil, linalg.Invalid(fmt.Sprintf("beta%d", i+1), b, "must be in [0, 1)")
		}
	}
	if !(c.Eps > 0) {
		return nil, linalg.Invalid("eps", c.Eps, "must be > 0")
	}
	return c, nil
}

// NewAdam creates a new Adam optimizer.
//
// Config values are used as given; go through New to get defaults and
// validation.
func NewAdam(config AdamConfig) *Adam {
	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Update performs a single optimization step using Adam algorithm.
//
// Applies Adam update to all parameters:
//  1. Update biased first moment estimate
//  2. Update biased second moment estimate
//  3. Compute bias-corrected moment estimates
//  4. Update parameters
//
// Shapes are checked for every slot before the timestep advances, so a
// rejected call leaves the optimizer untouched.
func (a *Adam) Update(params, grads []*mat.Dense) error {
	if err := checkSlots("Adam.Update", params, grads); err != nil {
		return err
	}

	moments := make([][2]*mat.Dense, len(params))
	for i, param := range params {
		var err error
		if a.m, moments[i][0], err = slotState(a.m, i, param); err != nil {
			return err
		}
		if a.v, moments[i][1], err = slotState(a.v, i, param); err != nil {
			return err
		}
	}

	a.t++

	// bias_correction1 = 1 - beta1^t
	// bias_correction2 = 1 - beta2^t
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, param := range params {
		a.updateParameter(param, grads[i], moments[i][0], moments[i][1], biasCorrection1, biasCorrection2)
	}

	return nil
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam) updateParameter(param, grad, m, v *mat.Dense, biasCorrection1, biasCorrection2 float64) {
	rows, _ := param.Dims()
	for r := 0; r < rows; r++ {
		paramData := param.RawRowView(r)
		gradData := grad.RawRowView(r)
		mData := m.RawRowView(r)
		vData := v.RawRowView(r)

		for i, g := range gradData {
			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2

			paramData[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// BiasCorrected returns copies of the bias-corrected first and second moment
// estimates for a slot, or nils if the slot has never been updated.
func (a *Adam) BiasCorrected(slot int) (mHat, vHat *mat.Dense) {
	if a.t == 0 || slot < 0 || slot >= len(a.m) || a.m[slot] == nil {
		return nil, nil
	}
	mHat = mat.DenseCopyOf(a.m[slot])
	mHat.Scale(1/(1-math.Pow(a.beta1, float64(a.t))), mHat)
	vHat = mat.DenseCopyOf(a.v[slot])
	vHat.Scale(1/(1-math.Pow(a.beta2, float64(a.t))), vHat)
	return mHat, vHat
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
//
// Useful for monitoring optimizer state.
func (a *Adam) GetTimestep() int {
	return a.t
}
