package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

func ones(r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return 1 }, m)
	return m
}

func TestNewDropout_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name string
		n    int
		rate float64
	}{
		{"zero width", 0, 0.5},
		{"negative rate", 4, -0.1},
		{"rate one", 4, 1},
		{"NaN rate", 4, math.NaN()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDropout(tt.n, tt.rate, testSource(1))
			assert.ErrorIs(t, err, linalg.ErrInvalidConfiguration)
		})
	}
}

// TestDropoutInference checks that inference is deterministic and scales by
// the keep probability.
func TestDropoutInference(t *testing.T) {
	d, err := NewDropout(4, 0.25, testSource(1))
	require.NoError(t, err)

	x := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		-4, 0, 8, 1,
	})
	first, _, err := d.Forward(x, false)
	require.NoError(t, err)
	second, _, err := d.Forward(x, false)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first, second))
	assert.InDeltaSlice(t, []float64{0.75, 1.5, 2.25, 3, -3, 0, 6, 0.75}, first.RawMatrix().Data, 1e-12)
}

// TestDropoutTraining_DropFraction checks the observed drop fraction over
// many resamples.
func TestDropoutTraining_DropFraction(t *testing.T) {
	const (
		width   = 100
		samples = 1000
		rate    = 0.4
	)
	d, err := NewDropout(width, rate, testSource(3))
	require.NoError(t, err)

	x := ones(1, width)
	var dropped int
	for i := 0; i < samples; i++ {
		out, _, err := d.Forward(x, true)
		require.NoError(t, err)
		for _, v := range out.RawRowView(0) {
			if v == 0 {
				dropped++
			}
		}
	}

	assert.InDelta(t, rate, float64(dropped)/(width*samples), 0.05)
}

// TestDropoutTraining_SharedMask checks that one mask is applied to every
// row of the batch.
func TestDropoutTraining_SharedMask(t *testing.T) {
	d, err := NewDropout(50, 0.5, testSource(4))
	require.NoError(t, err)

	out, _, err := d.Forward(ones(3, 50), true)
	require.NoError(t, err)

	assert.Equal(t, out.RawRowView(0), out.RawRowView(1))
	assert.Equal(t, out.RawRowView(0), out.RawRowView(2))
}

// TestDropoutBackprop_ReusesMask checks that backprop zeroes exactly the
// units the paired forward dropped, even after later forwards.
func TestDropoutBackprop_ReusesMask(t *testing.T) {
	d, err := NewDropout(40, 0.5, testSource(5))
	require.NoError(t, err)

	out, cache, err := d.Forward(ones(2, 40), true)
	require.NoError(t, err)

	// A later call draws a different mask.
	_, _, err = d.Forward(ones(2, 40), true)
	require.NoError(t, err)

	delta := mat.NewDense(2, 40, nil)
	delta.Apply(func(i, j int, _ float64) float64 { return float64(i*40 + j + 1) }, delta)

	back, grads, err := d.Backprop(cache, delta)
	require.NoError(t, err)
	assert.Nil(t, grads)

	for i := 0; i < 2; i++ {
		for j := 0; j < 40; j++ {
			if out.At(i, j) == 0 {
				assert.Equal(t, 0.0, back.At(i, j))
			} else {
				assert.Equal(t, delta.At(i, j), back.At(i, j))
			}
		}
	}
}

func TestDropoutBackprop_Inference(t *testing.T) {
	d, err := NewDropout(2, 0.2, testSource(1))
	require.NoError(t, err)

	_, cache, err := d.Forward(ones(1, 2), false)
	require.NoError(t, err)
	back, _, err := d.Backprop(cache, mat.NewDense(1, 2, []float64{1, -5}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.8, -4}, back.RawMatrix().Data, 1e-12)
}

// TestDropoutZeroRate checks rate 0 is an identity in both modes.
func TestDropoutZeroRate(t *testing.T) {
	d, err := NewDropout(3, 0, testSource(1))
	require.NoError(t, err)

	x := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	for _, training := range []bool{true, false} {
		out, _, err := d.Forward(x, training)
		require.NoError(t, err)
		assert.True(t, mat.Equal(x, out), "training=%v", training)
	}
}

func TestDropout_Errors(t *testing.T) {
	a, err := NewDropout(3, 0.5, testSource(1))
	require.NoError(t, err)
	b, err := NewDropout(3, 0.5, testSource(2))
	require.NoError(t, err)

	_, _, err = a.Forward(ones(1, 4), true)
	assert.ErrorIs(t, err, linalg.ErrShapeMismatch)

	_, cache, err := a.Forward(ones(1, 3), true)
	require.NoError(t, err)
	_, _, err = b.Backprop(cache, ones(1, 3))
	assert.ErrorIs(t, err, ErrForeignCache)

	assert.NoError(t, a.Update(nil))
	assert.Nil(t, a.Parameters())
	assert.Equal(t, 3, a.InputSize())
	assert.Equal(t, 3, a.OutputSize())
	assert.InDelta(t, 0.5, a.Rate(), 0)
}
