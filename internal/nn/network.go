package nn

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
	"github.com/born-ml/nnet/internal/optim"
)

// State is the lifecycle stage of a NeuralNet.
type State int

// NeuralNet lifecycle: Uninitialized → Ready → Training → Stopped.
const (
	// Uninitialized accepts new layers; no optimizers are bound yet.
	Uninitialized State = iota

	// Ready has one optimizer bound per trainable layer.
	Ready

	// Training is inside Train.
	Training

	// Stopped has finished at least one Train call.
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Training:
		return "training"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds configuration for a NeuralNet.
type Config struct {
	// Optimizer selects the update rule and learning rate. Every trainable
	// layer gets its own instance built from it.
	Optimizer optim.Config

	// Loss drives training and evaluation (default: CrossEntropy).
	Loss Loss

	// Source feeds shuffling and the validation split (default: randomly seeded).
	Source rand.Source

	// Output receives verbose training progress (default: os.Stdout).
	Output io.Writer
}

// NeuralNet is an ordered stack of layers trained with mini-batch gradient
// descent.
//
// Layers run in insertion order on the forward pass and in reverse on the
// backward pass. A NeuralNet is not safe for concurrent Train calls; Predict
// and Evaluate only read parameters and may run concurrently with each other.
//
// Example:
//
//	net, err := nn.NewNeuralNet(nn.Config{Optimizer: optim.AdamConfig{LR: 0.005}})
//	net.AddLayer(dense1)
//	net.AddLayer(dropout1)
//	net.AddLayer(dense2)
//
//	history, err := net.Train(ctx, X, Y, nn.TrainConfig{MaxEpochs: 70, BatchSize: 5})
//	probs, err := net.Predict(XTest)
type NeuralNet struct {
	layers    []Layer
	optimizer optim.Config
	loss      Loss
	rng       *rand.Rand
	out       io.Writer
	state     State
}

// NewNeuralNet creates an empty network.
//
// The optimizer configuration is validated here, before any layer exists,
// so a bad learning rate or optimizer fails fast with
// linalg.ErrInvalidConfiguration.
func NewNeuralNet(cfg Config) (*NeuralNet, error) {
	if err := optim.Validate(cfg.Optimizer); err != nil {
		return nil, fmt.Errorf("NewNeuralNet: %w", err)
	}
	if !cfg.Loss.Valid() {
		return nil, linalg.Invalid("loss", cfg.Loss, "unsupported loss")
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return &NeuralNet{
		optimizer: cfg.Optimizer,
		loss:      cfg.Loss,
		rng:       rand.New(sourceOrDefault(cfg.Source)),
		out:       cfg.Output,
	}, nil
}

// AddLayer appends a layer to the end of the stack.
//
// Only allowed before training starts. The layer's input width must match
// the current output width.
func (n *NeuralNet) AddLayer(layer Layer) error {
	if layer == nil {
		return linalg.Invalid("layer", nil, "layer is nil")
	}
	if n.state != Uninitialized {
		return linalg.Invalid("state", n.state, "layers can only be added before training")
	}
	if len(n.layers) > 0 {
		prev := n.layers[len(n.layers)-1].OutputSize()
		if layer.InputSize() != prev {
			return &linalg.ShapeError{
				Op:   fmt.Sprintf("NeuralNet.AddLayer(%d)", len(n.layers)),
				Want: linalg.Shape{Rows: linalg.Any, Cols: prev},
				Got:  linalg.Shape{Rows: linalg.Any, Cols: layer.InputSize()},
			}
		}
	}

	n.layers = append(n.layers, layer)
	return nil
}

// InitOptimizers binds a fresh optimizer to every trainable layer and moves
// the network to Ready. Train calls it on first use.
func (n *NeuralNet) InitOptimizers() error {
	if n.state != Uninitialized {
		return linalg.Invalid("state", n.state, "optimizers are already bound")
	}
	if len(n.layers) == 0 {
		return linalg.Invalid("layers", 0, "network has no layers")
	}

	for i, layer := range n.layers {
		binder, ok := layer.(OptimizerBinder)
		if !ok {
			continue
		}
		if err := binder.BindOptimizer(n.optimizer); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}

	n.state = Ready
	return nil
}

// Predict runs the forward pass in inference mode.
//
// Predict does not change any parameter or network state.
func (n *NeuralNet) Predict(x *mat.Dense) (*mat.Dense, error) {
	if len(n.layers) == 0 {
		return nil, linalg.Invalid("layers", 0, "network has no layers")
	}

	out := x
	for i, layer := range n.layers {
		var err error
		if out, _, err = layer.Forward(out, false); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Evaluate returns the inference-mode loss and classification accuracy on
// (x, y).
func (n *NeuralNet) Evaluate(x, y *mat.Dense) (loss, accuracy float64, err error) {
	pred, err := n.Predict(x)
	if err != nil {
		return 0, 0, err
	}
	if err := linalg.CheckSame("NeuralNet.Evaluate", pred, y); err != nil {
		return 0, 0, err
	}
	return n.loss.Value(pred, y), Accuracy(pred, y), nil
}

// Layers returns the layers in forward order.
func (n *NeuralNet) Layers() []Layer {
	return n.layers
}

// Len returns the number of layers.
func (n *NeuralNet) Len() int {
	return len(n.layers)
}

// State returns the current lifecycle stage.
func (n *NeuralNet) State() State {
	return n.state
}

// Loss returns the configured loss.
func (n *NeuralNet) Loss() Loss {
	return n.loss
}

// InputSize returns the input width of the first layer (0 when empty).
func (n *NeuralNet) InputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].InputSize()
}

// OutputSize returns the output width of the last layer (0 when empty).
func (n *NeuralNet) OutputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].OutputSize()
}

// NumParameters counts the scalar trainable parameters across all layers.
func (n *NeuralNet) NumParameters() int {
	total := 0
	for _, layer := range n.layers {
		for _, p := range layer.Parameters() {
			r, c := p.Dims()
			total += r * c
		}
	}
	return total
}

// Accuracy is the fraction of rows whose argmax in pred matches the argmax
// in the one-hot target.
func Accuracy(pred, target *mat.Dense) float64 {
	p, t := linalg.ArgmaxRows(pred), linalg.ArgmaxRows(target)
	correct := 0
	for i := range p {
		if p[i] == t[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(p))
}

// fusedOutput returns the output layer when its softmax Jacobian can be
// folded into the cross-entropy gradient.
func (n *NeuralNet) fusedOutput() (*Dense, bool) {
	if n.loss != CrossEntropy {
		return nil, false
	}
	d, ok := n.layers[len(n.layers)-1].(*Dense)
	if !ok || d.Activation() != Softmax {
		return nil, false
	}
	return d, true
}
