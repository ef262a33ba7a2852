package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// smallInitScale is the standard deviation of SmallNormal.
const smallInitScale = 1e-7

// Initializer chooses how a Dense layer fills its weights and bias.
type Initializer int

const (
	// SmallNormal draws weights and bias from N(0, 1e-7²).
	SmallNormal Initializer = iota

	// XavierUniform (Glorot) draws weights from
	// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))) and zeroes the bias.
	XavierUniform
)

// Valid reports whether i is a supported initializer.
func (i Initializer) Valid() bool {
	return i == SmallNormal || i == XavierUniform
}

// String returns the initializer name.
func (i Initializer) String() string {
	switch i {
	case SmallNormal:
		return "small_normal"
	case XavierUniform:
		return "xavier_uniform"
	default:
		return "unknown"
	}
}

// fill initialises weight (fanIn×fanOut) and bias (1×fanOut) in place.
func (i Initializer) fill(weight, bias *mat.Dense, src rand.Source) {
	fanIn, fanOut := weight.Dims()

	switch i {
	case XavierUniform:
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		randomize(weight, distuv.Uniform{Min: -bound, Max: bound, Src: src})
		bias.Zero()
	default:
		dist := distuv.Normal{Mu: 0, Sigma: smallInitScale, Src: src}
		randomize(weight, dist)
		randomize(bias, dist)
	}
}

func randomize(m *mat.Dense, dist distuv.Rander) {
	m.Apply(func(_, _ int, _ float64) float64 { return dist.Rand() }, m)
}

// sourceOrDefault returns src, or a freshly seeded source when src is nil.
func sourceOrDefault(src rand.Source) rand.Source {
	if src == nil {
		//nolint:gosec // Weight init and shuffling are not security-critical
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return src
}
