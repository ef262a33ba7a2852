// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/nn"
	"github.com/born-ml/nnet/optim"
)

// TestLayerInterface verifies that concrete types implement Layer.
func TestLayerInterface(t *testing.T) {
	src := rand.NewPCG(1, 2)

	dense, err := nn.NewDense(10, 5, nn.ReLU, src)
	require.NoError(t, err)
	dropout, err := nn.NewDropout(10, 0.3, src)
	require.NoError(t, err)

	tests := []struct {
		name  string
		layer nn.Layer
		out   int
	}{
		{name: "Dense", layer: dense, out: 5},
		{name: "Dropout", layer: dropout, out: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := mat.NewDense(2, 10, nil)
			out, cache, err := tt.layer.Forward(x, true)
			require.NoError(t, err)

			r, c := out.Dims()
			assert.Equal(t, 2, r)
			assert.Equal(t, tt.out, c)

			back, _, err := tt.layer.Backprop(cache, mat.NewDense(2, tt.out, nil))
			require.NoError(t, err)
			_, c = back.Dims()
			assert.Equal(t, 10, c)
		})
	}

	var _ nn.OptimizerBinder = dense
}

// TestPublicAPI trains through the public packages only.
func TestPublicAPI(t *testing.T) {
	src := rand.NewPCG(3, 4)
	net, err := nn.NewNeuralNet(nn.Config{
		Optimizer: optim.AdamConfig{LR: 0.1},
		Source:    src,
		Output:    io.Discard,
	})
	require.NoError(t, err)

	out, err := nn.NewDense(2, 2, nn.Softmax, src)
	require.NoError(t, err)
	require.NoError(t, net.AddLayer(out))

	x := mat.NewDense(4, 2, []float64{-1, -1, -1, 1, 1, -1, 1, 1})
	y := mat.NewDense(4, 2, []float64{1, 0, 1, 0, 0, 1, 0, 1})

	history, err := net.Train(context.Background(), x, y, nn.TrainConfig{MaxEpochs: 30, BatchSize: 4, Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, nn.StopMaxEpochs, history.Reason)
	assert.Equal(t, nn.Stopped, net.State())

	pred, err := net.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, nn.Accuracy(pred, y), 0)
}

func TestPublicErrors(t *testing.T) {
	_, err := nn.NewDense(0, 1, nn.Sigmoid, nil)
	assert.True(t, errors.Is(err, nn.ErrInvalidConfiguration))

	var cfgErr *nn.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "n_in", cfgErr.Field)

	d, err := nn.NewDense(3, 1, nn.Sigmoid, nil)
	require.NoError(t, err)
	_, _, err = d.Forward(mat.NewDense(1, 4, nil), false)
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)

	_, err = optim.Parse("rmsprop", 0.1)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	cfg, err := optim.Parse("SGD", 0.1)
	require.NoError(t, err)
	require.NoError(t, optim.Validate(cfg))
	opt, err := optim.New(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, opt.GetLR(), 1e-12)
}
