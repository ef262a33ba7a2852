package dataset

import (
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/nnet/internal/linalg"
)

// BlobsConfig describes a synthetic classification problem.
type BlobsConfig struct {
	Classes  int     // Number of classes (default: 3)
	PerClass int     // Samples per class (default: 50)
	Features int     // Feature columns (default: 4)
	Spread   float64 // Centre coordinates are drawn from U(-Spread, Spread) (default: 4)
	Sigma    float64 // Standard deviation around each centre (default: 1)
}

// Blobs draws isotropic Gaussian clusters, one per class.
//
// Rows are grouped by class in label order; shuffle before splitting.
// The defaults mimic the iris dataset's shape: 3 classes of 50 samples
// with 4 features.
func Blobs(cfg BlobsConfig, src rand.Source) (*Dataset, error) {
	// Set defaults
	if cfg.Classes == 0 {
		cfg.Classes = 3
	}
	if cfg.PerClass == 0 {
		cfg.PerClass = 50
	}
	if cfg.Features == 0 {
		cfg.Features = 4
	}
	if cfg.Spread == 0 {
		cfg.Spread = 4
	}
	if cfg.Sigma == 0 {
		cfg.Sigma = 1
	}

	if cfg.Classes < 2 {
		return nil, linalg.Invalid("classes", cfg.Classes, "must be >= 2")
	}
	if cfg.PerClass < 0 {
		return nil, linalg.Invalid("per_class", cfg.PerClass, "must be > 0")
	}
	if cfg.Features < 0 {
		return nil, linalg.Invalid("features", cfg.Features, "must be > 0")
	}
	if !(cfg.Spread > 0) || math.IsInf(cfg.Spread, 0) {
		return nil, linalg.Invalid("spread", cfg.Spread, "must be finite and > 0")
	}
	if !(cfg.Sigma > 0) || math.IsInf(cfg.Sigma, 0) {
		return nil, linalg.Invalid("sigma", cfg.Sigma, "must be finite and > 0")
	}

	centres := distuv.Uniform{Min: -cfg.Spread, Max: cfg.Spread, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.Sigma, Src: src}

	n := cfg.Classes * cfg.PerClass
	x := mat.NewDense(n, cfg.Features, nil)
	labels := make([]int, n)
	classes := make([]string, cfg.Classes)

	centre := make([]float64, cfg.Features)
	for k := 0; k < cfg.Classes; k++ {
		classes[k] = strconv.Itoa(k)
		for j := range centre {
			centre[j] = centres.Rand()
		}
		for s := 0; s < cfg.PerClass; s++ {
			i := k*cfg.PerClass + s
			labels[i] = k
			row := x.RawRowView(i)
			for j := range row {
				row[j] = centre[j] + noise.Rand()
			}
		}
	}

	return &Dataset{X: x, Labels: labels, Classes: classes}, nil
}
