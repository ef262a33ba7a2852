// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Optimizers work on gonum matrices. An optimizer keeps per-parameter state
// (velocities, moment estimates) keyed by the position of each parameter in
// the slice passed to Update, so one instance must serve exactly one set of
// parameters. The nn package binds a fresh instance to every trainable layer.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/nnet/nn"
//	    "github.com/born-ml/nnet/optim"
//	)
//
//	func main() {
//	    net, err := nn.NewNeuralNet(nn.Config{
//	        Optimizer: optim.AdamConfig{LR: 0.005},
//	    })
//	    ...
//	}
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//
//	cfg := optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	}
//
// Adam (Adaptive Moment Estimation):
//
//	cfg := optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	}
//
// # Manual Update Pattern
//
//	opt, err := optim.New(cfg)
//	for step := range steps {
//	    grads := computeGradients(params)
//	    if err := opt.Update(params, grads); err != nil {
//	        return err
//	    }
//	}
package optim
