// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
	"github.com/born-ml/nnet/internal/nn"
)

// Errors

var (
	// ErrInvalidConfiguration is wrapped by every rejected size, rate,
	// name or lifecycle call.
	ErrInvalidConfiguration = linalg.ErrInvalidConfiguration

	// ErrShapeMismatch is wrapped when a matrix has the wrong dimensions.
	ErrShapeMismatch = linalg.ErrShapeMismatch

	// ErrNumericalInstability is wrapped when the loss or a parameter
	// becomes NaN or infinite during training.
	ErrNumericalInstability = linalg.ErrNumericalInstability

	// ErrForeignCache is returned when Backprop gets another layer's Cache.
	ErrForeignCache = nn.ErrForeignCache
)

// ConfigError describes a rejected configuration value.
type ConfigError = linalg.ConfigError

// ShapeError describes a dimension mismatch.
type ShapeError = linalg.ShapeError

// Shape represents the dimensions of a matrix.
type Shape = linalg.Shape

// Layers

// Layer is the interface implemented by every network layer.
type Layer = nn.Layer

// Cache carries what a Forward call saved for its paired Backprop.
type Cache = nn.Cache

// OptimizerBinder is implemented by layers that own an optimizer.
type OptimizerBinder = nn.OptimizerBinder

// Dense represents a fully connected layer with an activation.
type Dense = nn.Dense

// DenseOption customises NewDense.
type DenseOption = nn.DenseOption

// NewDense creates a fully connected layer.
//
// Example:
//
//	layer, err := nn.NewDense(4, 64, nn.Sigmoid, rand.NewPCG(1, 2))
func NewDense(nIn, nOut int, activation Activation, src rand.Source, opts ...DenseOption) (*Dense, error) {
	return nn.NewDense(nIn, nOut, activation, src, opts...)
}

// WithInitializer selects the weight initialisation of a Dense layer.
func WithInitializer(init Initializer) DenseOption {
	return nn.WithInitializer(init)
}

// Dropout masks units while training and scales by the keep probability at
// inference.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer over n units.
//
// Example:
//
//	drop, err := nn.NewDropout(64, 0.4, rand.NewPCG(3, 4))
func NewDropout(n int, rate float64, src rand.Source) (*Dropout, error) {
	return nn.NewDropout(n, rate, src)
}

// Activations

// Activation selects the nonlinearity of a Dense layer.
type Activation = nn.Activation

// Supported activations.
const (
	Identity = nn.Identity
	Sigmoid  = nn.Sigmoid
	Tanh     = nn.Tanh
	ReLU     = nn.ReLU
	Softmax  = nn.Softmax
)

// ParseActivation maps a case-insensitive name to its Activation.
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}

// Initializer selects how Dense weights are drawn.
type Initializer = nn.Initializer

// Supported initializers.
const (
	SmallNormal   = nn.SmallNormal
	XavierUniform = nn.XavierUniform
)

// Loss Functions

// Loss measures a batch of predictions against one-hot targets.
type Loss = nn.Loss

// Supported losses.
const (
	CrossEntropy = nn.CrossEntropy
	MeanSquared  = nn.MeanSquared
)

// ParseLoss maps a case-insensitive name to its Loss.
func ParseLoss(name string) (Loss, error) {
	return nn.ParseLoss(name)
}

// Networks

// NeuralNet is an ordered stack of layers trained with mini-batch gradient
// descent.
type NeuralNet = nn.NeuralNet

// Config holds configuration for a NeuralNet.
type Config = nn.Config

// State is the lifecycle stage of a NeuralNet.
type State = nn.State

// NeuralNet lifecycle stages.
const (
	Uninitialized = nn.Uninitialized
	Ready         = nn.Ready
	Training      = nn.Training
	Stopped       = nn.Stopped
)

// NewNeuralNet creates an empty network.
//
// Example:
//
//	net, err := nn.NewNeuralNet(nn.Config{
//	    Optimizer: optim.AdamConfig{LR: 0.005},
//	    Source:    rand.NewPCG(1, 2),
//	})
func NewNeuralNet(cfg Config) (*NeuralNet, error) {
	return nn.NewNeuralNet(cfg)
}

// Training

// TrainConfig holds the hyperparameters of one Train call.
type TrainConfig = nn.TrainConfig

// History records a Train call.
type History = nn.History

// EpochStats summarises one epoch.
type EpochStats = nn.EpochStats

// StopReason tells why Train returned.
type StopReason = nn.StopReason

// Stop reasons.
const (
	StopMaxEpochs = nn.StopMaxEpochs
	StopEarly     = nn.StopEarly
	StopCanceled  = nn.StopCanceled
)

// DefaultPatience is the early-stopping window used when Patience is 0.
const DefaultPatience = nn.DefaultPatience

// Accuracy is the fraction of rows whose predicted class matches the
// one-hot target.
func Accuracy(pred, target *mat.Dense) float64 {
	return nn.Accuracy(pred, target)
}
