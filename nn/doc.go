// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a small feed-forward neural network engine.
//
// # Overview
//
// This package contains:
//   - Layers: Dense, Dropout
//   - Activations: Identity, Sigmoid, Tanh, ReLU, Softmax
//   - Loss functions: CrossEntropy, MeanSquared
//   - NeuralNet: layer stack with mini-batch training, a validation split
//     and early stopping
//   - Initialization: SmallNormal (default), XavierUniform
//
// Matrices are gonum *mat.Dense values holding one sample per row.
//
// # Basic Usage
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/born-ml/nnet/nn"
//	    "github.com/born-ml/nnet/optim"
//	)
//
//	func main() {
//	    src := rand.NewPCG(1, 2)
//	    net, _ := nn.NewNeuralNet(nn.Config{
//	        Optimizer: optim.AdamConfig{LR: 0.005},
//	        Source:    src,
//	    })
//
//	    hidden, _ := nn.NewDense(4, 64, nn.Sigmoid, src)
//	    drop, _ := nn.NewDropout(64, 0.4, src)
//	    out, _ := nn.NewDense(64, 3, nn.Softmax, src)
//	    net.AddLayer(hidden)
//	    net.AddLayer(drop)
//	    net.AddLayer(out)
//
//	    history, err := net.Train(ctx, x, y, nn.TrainConfig{
//	        MaxEpochs:      70,
//	        BatchSize:      5,
//	        ValidationRate: 0.04,
//	        Verbose:        true,
//	    })
//	    probs, err := net.Predict(xTest)
//	}
//
// # Layers
//
// Dense: y = activation(x @ W + b), with its own optimizer
//
//	layer, err := nn.NewDense(nIn, nOut, nn.ReLU, src)
//	layer, err := nn.NewDense(nIn, nOut, nn.Tanh, src, nn.WithInitializer(nn.XavierUniform))
//
// Dropout: one keep-mask per training forward pass, scaling at inference
//
//	drop, err := nn.NewDropout(n, 0.2, src)
//
// # Custom Layers
//
// Anything implementing Layer can join a NeuralNet. Forward returns a Cache
// that the network hands back to the same layer's Backprop, so a layer keeps
// no per-call state of its own. Layers that own parameters also implement
// OptimizerBinder to receive an optimizer before training.
//
// # Training
//
// Train shuffles the fit subset every epoch, walks it in mini-batches and
// updates every layer after each batch. With a softmax output layer and the
// cross-entropy loss the output error is seeded directly as (p - y)/B.
// Training stops after MaxEpochs, when early stopping runs out of patience,
// or when the context is canceled between epochs.
//
// # Errors
//
// Failures wrap ErrInvalidConfiguration, ErrShapeMismatch or
// ErrNumericalInstability; test them with errors.Is.
package nn
