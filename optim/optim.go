// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/nnet/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config selects an optimizer and its hyperparameters.
//
// The set of implementations is closed: SGDConfig and AdamConfig.
type Config = optim.Config

// New builds an optimizer from cfg after applying defaults and validating it.
//
// Example:
//
//	opt, err := optim.New(optim.AdamConfig{LR: 0.005})
func New(cfg Config) (Optimizer, error) {
	return optim.New(cfg)
}

// Validate applies defaults to cfg and reports whether it is usable.
func Validate(cfg Config) error {
	return optim.Validate(cfg)
}

// Parse maps an optimizer name ("sgd" or "adam", case-insensitive) and a
// learning rate to a Config.
func Parse(name string, lr float64) (Config, error) {
	return optim.Parse(name, lr)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Values are used as given; New applies defaults and validation.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Values are used as given; New applies defaults and validation.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
