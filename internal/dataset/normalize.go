package dataset

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/nnet/internal/linalg"
)

// Normalizer rescales every feature column to zero mean and unit variance.
//
// Statistics are population statistics of the data passed to Fit, so the
// same transform can be replayed on a test set. Columns with zero variance
// are only centred.
type Normalizer struct {
	Mean []float64
	Std  []float64
}

// FitNormalizer computes per-column mean and standard deviation of x.
func FitNormalizer(x *mat.Dense) *Normalizer {
	rows, cols := x.Dims()
	n := &Normalizer{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		n.Mean[j], n.Std[j] = stat.PopMeanStdDev(col, nil)
	}
	return n
}

// Apply returns a normalized copy of x.
func (n *Normalizer) Apply(x *mat.Dense) (*mat.Dense, error) {
	if err := linalg.CheckCols("Normalizer.Apply", x, len(n.Mean)); err != nil {
		return nil, err
	}

	out := mat.DenseCopyOf(x)
	out.Apply(func(_, j int, v float64) float64 {
		v -= n.Mean[j]
		if n.Std[j] > 0 {
			v /= n.Std[j]
		}
		return v
	}, out)
	return out, nil
}

// FitTransform fits a Normalizer on x and returns it with the normalized x.
func FitTransform(x *mat.Dense) (*Normalizer, *mat.Dense) {
	n := FitNormalizer(x)
	out, _ := n.Apply(x) // widths match by construction
	return n, out
}
