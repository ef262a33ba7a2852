package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// probFloor keeps log(0) out of the cross-entropy.
const probFloor = 1e-15

// Loss measures how far a batch of predictions is from its targets.
//
// Both members average over the rows of the batch, and Gradient already
// includes the 1/batch factor.
type Loss int

// Supported losses.
const (
	// CrossEntropy is the categorical cross-entropy against one-hot targets:
	//
	//	L = -(1/B) Σ_i Σ_k y_ik log(p_ik)
	CrossEntropy Loss = iota

	// MeanSquared is half the squared error per sample, averaged over the batch:
	//
	//	L = (1/2B) Σ_i Σ_k (p_ik - y_ik)²
	MeanSquared
)

var lossNames = [...]string{
	CrossEntropy: "cross_entropy",
	MeanSquared:  "mse",
}

// String returns the loss name.
func (l Loss) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Loss(%d)", int(l))
	}
	return lossNames[l]
}

// Valid reports whether l is one of the supported losses.
func (l Loss) Valid() bool {
	return l == CrossEntropy || l == MeanSquared
}

// ParseLoss maps a case-insensitive name to its Loss.
func ParseLoss(name string) (Loss, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for l, n := range lossNames {
		if n == key {
			return Loss(l), nil
		}
	}
	return 0, linalg.Invalid("loss", name, "want one of "+strings.Join(lossNames[:], ", "))
}

// Value computes the mean loss of pred against target.
func (l Loss) Value(pred, target *mat.Dense) float64 {
	batch, _ := pred.Dims()
	var total float64

	switch l {
	case CrossEntropy:
		for i := 0; i < batch; i++ {
			y := target.RawRowView(i)
			for k, p := range pred.RawRowView(i) {
				if y[k] != 0 {
					total -= y[k] * math.Log(math.Max(p, probFloor))
				}
			}
		}
	case MeanSquared:
		for i := 0; i < batch; i++ {
			y := target.RawRowView(i)
			for k, p := range pred.RawRowView(i) {
				d := p - y[k]
				total += 0.5 * d * d
			}
		}
	default:
		panic(fmt.Sprintf("nn: unsupported loss %v", l))
	}

	return total / float64(batch)
}

// Gradient returns ∂L/∂pred for the batch.
func (l Loss) Gradient(pred, target *mat.Dense) *mat.Dense {
	batch, _ := pred.Dims()
	scale := 1 / float64(batch)

	switch l {
	case CrossEntropy:
		out := mat.DenseCopyOf(target)
		out.Apply(func(i, j int, y float64) float64 {
			return -scale * y / math.Max(pred.At(i, j), probFloor)
		}, out)
		return out
	case MeanSquared:
		var out mat.Dense
		out.Sub(pred, target)
		out.Scale(scale, &out)
		return &out
	default:
		panic(fmt.Sprintf("nn: unsupported loss %v", l))
	}
}

// logitGradient is ∂L/∂z for a softmax output trained with cross-entropy:
// the Jacobian of softmax and the derivative of the log cancel to (p - y)/B.
func logitGradient(pred, target *mat.Dense) *mat.Dense {
	batch, _ := pred.Dims()
	var out mat.Dense
	out.Sub(pred, target)
	out.Scale(1/float64(batch), &out)
	return &out
}
