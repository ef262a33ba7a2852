package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnet/optim"
)

func TestParseTrainFlags(t *testing.T) {
	f, err := parseTrainFlags([]string{"-synthetic"})
	require.NoError(t, err)
	assert.Equal(t, "adam", f.optimizer)
	assert.InDelta(t, 0.005, f.lr, 1e-12)
	assert.Equal(t, 70, f.epochs)
	assert.Equal(t, 5, f.batch)
	assert.InDelta(t, 0.04, f.val, 1e-12)

	f, err = parseTrainFlags([]string{"-data", "iris.csv", "-optimizer", "sgd", "-lr", "0.1", "-early-stop"})
	require.NoError(t, err)
	assert.Equal(t, "iris.csv", f.data)
	assert.Equal(t, "sgd", f.optimizer)
	assert.True(t, f.earlyStop)

	_, err = parseTrainFlags(nil)
	assert.Error(t, err)
	_, err = parseTrainFlags([]string{"-synthetic", "-data", "x.csv"})
	assert.Error(t, err)
}

func TestBuildNet(t *testing.T) {
	net, err := buildNet(optim.AdamConfig{LR: 0.005}, 4, 3, rand.NewPCG(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 5, net.Len())
	assert.Equal(t, 4, net.InputSize())
	assert.Equal(t, 3, net.OutputSize())
	assert.Equal(t, 4*64+64+64*16+16+16*3+3, net.NumParameters())
}

func TestTrain_Synthetic(t *testing.T) {
	err := train([]string{"-synthetic", "-epochs", "3", "-seed", "7", "-quiet"})
	assert.NoError(t, err)
}

func TestTrain_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.csv")
	data := "0,0,a\n0,1,a\n1,0,b\n1,1,b\n0,0.1,a\n1,0.9,b\n0.1,0,a\n0.9,1,b\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	err := train([]string{"-data", path, "-test", "2", "-val", "0", "-batch", "2", "-epochs", "2", "-seed", "3", "-quiet"})
	assert.NoError(t, err)
}

func TestTrain_Errors(t *testing.T) {
	assert.Error(t, train([]string{"-data", filepath.Join(t.TempDir(), "missing.csv")}))
	assert.Error(t, train([]string{"-synthetic", "-optimizer", "rmsprop"}))
	assert.Error(t, train([]string{"-synthetic", "-test", "150"}))
	assert.Error(t, train([]string{"-synthetic", "-batch", "0", "-quiet"}))
}
