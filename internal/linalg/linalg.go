// Package linalg holds the small set of matrix helpers shared by the
// network packages.
//
// Everything operates on gonum's *mat.Dense (row-major, one sample per row).
// The helpers cover what mat does not do directly: row broadcasting of a bias,
// column reductions, per-row argmax, row selection and finiteness checks,
// plus the error taxonomy used across the module.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Any marks a dimension that a ShapeError does not constrain.
const Any = -1

// Shape represents the dimensions of a matrix.
type Shape struct {
	Rows, Cols int
}

// ShapeOf returns the dimensions of m.
func ShapeOf(m mat.Matrix) Shape {
	r, c := m.Dims()
	return Shape{Rows: r, Cols: c}
}

// String renders the shape as [rows cols], with ? for unconstrained dimensions.
func (s Shape) String() string {
	return fmt.Sprintf("[%s %s]", dim(s.Rows), dim(s.Cols))
}

func dim(d int) string {
	if d == Any {
		return "?"
	}
	return fmt.Sprint(d)
}

// Equal checks if two shapes are equal, treating Any as a wildcard.
func (s Shape) Equal(other Shape) bool {
	return dimEqual(s.Rows, other.Rows) && dimEqual(s.Cols, other.Cols)
}

func dimEqual(a, b int) bool {
	return a == Any || b == Any || a == b
}

// CheckCols fails with a *ShapeError when m does not have exactly cols columns.
func CheckCols(op string, m mat.Matrix, cols int) error {
	want, got := Shape{Rows: Any, Cols: cols}, ShapeOf(m)
	if !got.Equal(want) {
		return &ShapeError{Op: op, Want: want, Got: got}
	}
	return nil
}

// CheckSame fails with a *ShapeError when a and b differ in shape.
func CheckSame(op string, want, got mat.Matrix) error {
	ws, gs := ShapeOf(want), ShapeOf(got)
	if !ws.Equal(gs) {
		return &ShapeError{Op: op, Want: ws, Got: gs}
	}
	return nil
}

// AddScaled computes dst += alpha * src in place. dst and src must have the
// same shape.
func AddScaled(dst *mat.Dense, alpha float64, src *mat.Dense) {
	r, _ := dst.Dims()
	for i := 0; i < r; i++ {
		floats.AddScaled(dst.RawRowView(i), alpha, src.RawRowView(i))
	}
}

// AddRowVec adds the 1×c matrix row to every row of dst in place.
func AddRowVec(dst, row *mat.Dense) {
	b := row.RawRowView(0)
	r, _ := dst.Dims()
	for i := 0; i < r; i++ {
		floats.Add(dst.RawRowView(i), b)
	}
}

// MulRowVec returns m with every row multiplied elementwise by v.
func MulRowVec(m *mat.Dense, v []float64) *mat.Dense {
	out := mat.DenseCopyOf(m)
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		floats.Mul(out.RawRowView(i), v)
	}
	return out
}

// ColSum returns the 1×c matrix of column sums of m.
func ColSum(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	sum := make([]float64, c)
	for i := 0; i < r; i++ {
		floats.Add(sum, m.RawRowView(i))
	}
	return mat.NewDense(1, c, sum)
}

// ArgmaxRows returns the column index of the largest value in each row.
func ArgmaxRows(m *mat.Dense) []int {
	r, _ := m.Dims()
	idx := make([]int, r)
	for i := range idx {
		idx[i] = floats.MaxIdx(m.RawRowView(i))
	}
	return idx
}

// SelectRows copies the listed rows of m, in order, into a new matrix.
//
// idx must be non-empty: gonum does not represent zero-row matrices.
func SelectRows(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, src := range idx {
		copy(out.RawRowView(i), m.RawRowView(src))
	}
	return out
}

// Finite reports whether every element of every matrix is neither NaN nor ±Inf.
func Finite(ms ...*mat.Dense) bool {
	for _, m := range ms {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			for _, v := range m.RawRowView(i) {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
		}
	}
	return true
}
