package linalg

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestShape(t *testing.T) {
	s := ShapeOf(mat.NewDense(3, 4, nil))
	assert.Equal(t, Shape{Rows: 3, Cols: 4}, s)
	assert.Equal(t, "[3 4]", s.String())
	assert.Equal(t, "[? 4]", Shape{Rows: Any, Cols: 4}.String())

	assert.True(t, s.Equal(Shape{Rows: Any, Cols: 4}))
	assert.False(t, s.Equal(Shape{Rows: 3, Cols: 5}))
	assert.True(t, Shape{Rows: Any, Cols: Any}.Equal(s))
}

func TestCheckCols(t *testing.T) {
	m := mat.NewDense(2, 3, nil)
	require.NoError(t, CheckCols("op", m, 3))

	err := CheckCols("Dense.Forward", m, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var se *ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Dense.Forward", se.Op)
	assert.Equal(t, 4, se.Want.Cols)
	assert.Equal(t, 3, se.Got.Cols)
}

func TestCheckSame(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	require.NoError(t, CheckSame("op", a, mat.NewDense(2, 3, nil)))
	assert.ErrorIs(t, CheckSame("op", a, mat.NewDense(3, 2, nil)), ErrShapeMismatch)
}

func TestConfigError(t *testing.T) {
	err := Invalid("rate", 1.5, "must be in [0, 1)")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "rate=1.5")
	assert.NotErrorIs(t, err, ErrShapeMismatch)
}

func TestAddScaled(t *testing.T) {
	dst := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	AddScaled(dst, -0.5, mat.NewDense(2, 2, []float64{2, 4, 6, 8}))
	assert.Equal(t, []float64{0, 0, 0, 0}, dst.RawMatrix().Data)

	// Views with a wider stride only touch their own elements.
	base := mat.NewDense(2, 3, []float64{1, 1, 1, 1, 1, 1})
	view := base.Slice(0, 2, 0, 2).(*mat.Dense)
	AddScaled(view, 2, mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	assert.Equal(t, []float64{3, 3, 1, 3, 3, 1}, base.RawMatrix().Data)
}

func TestAddRowVec(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	AddRowVec(m, mat.NewDense(1, 2, []float64{10, 20}))
	assert.Equal(t, []float64{11, 22, 13, 24}, m.RawMatrix().Data)
}

func TestMulRowVec(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	out := MulRowVec(m, []float64{1, 0, 2})
	assert.Equal(t, []float64{1, 0, 6, 4, 0, 12}, out.RawMatrix().Data)
	// Input untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, m.RawMatrix().Data)
}

func TestColSum(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	sum := ColSum(m)
	assert.Equal(t, Shape{Rows: 1, Cols: 2}, ShapeOf(sum))
	assert.Equal(t, []float64{9, 12}, sum.RawMatrix().Data)
}

func TestArgmaxRows(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		0.1, 0.7, 0.2,
		0.9, 0.05, 0.05,
		0.2, 0.3, 0.5,
	})
	assert.Equal(t, []int{1, 0, 2}, ArgmaxRows(m))
}

func TestSelectRows(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	out := SelectRows(m, []int{2, 0})
	assert.Equal(t, []float64{5, 6, 1, 2}, out.RawMatrix().Data)
}

func TestFinite(t *testing.T) {
	ok := mat.NewDense(1, 2, []float64{1, -2})
	assert.True(t, Finite(ok))
	assert.False(t, Finite(ok, mat.NewDense(1, 1, []float64{math.NaN()})))
	assert.False(t, Finite(mat.NewDense(1, 1, []float64{math.Inf(-1)})))
}
