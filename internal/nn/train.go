package nn

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// DefaultPatience is the early-stopping window used when TrainConfig.Patience is 0.
const DefaultPatience = 5

// TrainConfig holds the hyperparameters of one Train call.
type TrainConfig struct {
	MaxEpochs int // Upper bound on epochs (> 0)
	BatchSize int // Samples per update, 0 < BatchSize <= number of samples

	// ValidationRate is the fraction of samples held out for validation,
	// in [0, 1). round(ValidationRate × N) rows are drawn without
	// replacement using the network's random source.
	ValidationRate float64

	// EarlyStop halts training after Patience consecutive epochs without
	// a validation-loss improvement larger than MinDelta. Requires a
	// non-empty validation split.
	EarlyStop bool
	Patience  int     // default: DefaultPatience
	MinDelta  float64 // default: 0

	// Verbose prints one progress line per epoch to the network's Output.
	Verbose bool
}

// EpochStats summarises one epoch.
//
// Loss and Accuracy are averaged over the training-mode forward passes of
// the epoch (weighted by batch size); the validation figures are computed in
// inference mode after the epoch's last update.
type EpochStats struct {
	Epoch         int // 1-based
	Loss          float64
	Accuracy      float64
	ValLoss       float64
	ValAccuracy   float64
	HasValidation bool
}

// StopReason tells why Train returned.
type StopReason int

const (
	// StopMaxEpochs means every epoch ran.
	StopMaxEpochs StopReason = iota
	// StopEarly means the early-stopping patience ran out.
	StopEarly
	// StopCanceled means the context was done between two epochs.
	StopCanceled
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StopMaxEpochs:
		return "max_epochs"
	case StopEarly:
		return "early_stop"
	case StopCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// History records a Train call.
type History struct {
	Epochs    []EpochStats
	Reason    StopReason
	BestEpoch int // 1-based epoch with the lowest monitored loss, 0 if none ran
}

// Train fits the network to (x, y) with mini-batch gradient descent.
//
// x holds one sample per row; y holds the matching one-hot targets. Before
// the first epoch a validation subset is drawn (see TrainConfig). Each
// epoch shuffles the remaining fit subset, walks it in batches of BatchSize
// (the last batch may be smaller) and for every batch runs the forward pass
// in training mode, seeds the output error from the loss, backpropagates in
// reverse layer order and updates every layer with its own gradients.
//
// ctx is checked between epochs only; a batch is never interrupted. On
// cancellation the history so far is returned together with ctx.Err().
//
// Calling Train again on a Stopped network continues training with the
// already-bound optimizers.
func (n *NeuralNet) Train(ctx context.Context, x, y *mat.Dense, cfg TrainConfig) (*History, error) {
	if n.state == Training {
		return nil, linalg.Invalid("state", n.state, "Train is not re-entrant")
	}
	if len(n.layers) == 0 {
		return nil, linalg.Invalid("layers", 0, "network has no layers")
	}
	if err := n.checkData(x, y); err != nil {
		return nil, err
	}

	samples, _ := x.Dims()
	cfg, nVal, err := cfg.resolve(samples)
	if err != nil {
		return nil, err
	}

	if n.state == Uninitialized {
		if err := n.InitOptimizers(); err != nil {
			return nil, err
		}
	}

	fitIdx, valIdx := n.split(samples, nVal)
	var xVal, yVal *mat.Dense
	if len(valIdx) > 0 {
		xVal, yVal = linalg.SelectRows(x, valIdx), linalg.SelectRows(y, valIdx)
	}

	n.state = Training
	defer func() { n.state = Stopped }()

	history := &History{Reason: StopMaxEpochs}
	stopper := earlyStopper{patience: cfg.Patience, minDelta: cfg.MinDelta, best: math.Inf(1)}

	for epoch := 1; epoch <= cfg.MaxEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			history.Reason = StopCanceled
			return history, err
		}

		stats, err := n.trainEpoch(x, y, fitIdx, cfg.BatchSize)
		if err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		stats.Epoch = epoch

		monitored := stats.Loss
		if xVal != nil {
			if stats.ValLoss, stats.ValAccuracy, err = n.Evaluate(xVal, yVal); err != nil {
				return history, fmt.Errorf("epoch %d: validation: %w", epoch, err)
			}
			stats.HasValidation = true
			monitored = stats.ValLoss
		}
		history.Epochs = append(history.Epochs, stats)

		if cfg.Verbose {
			n.report(stats, cfg.MaxEpochs)
		}

		exhausted := stopper.observe(epoch, monitored)
		history.BestEpoch = stopper.bestEpoch
		if cfg.EarlyStop && exhausted {
			history.Reason = StopEarly
			break
		}
	}

	return history, nil
}

// checkData validates the dataset shapes against the layer stack.
func (n *NeuralNet) checkData(x, y *mat.Dense) error {
	if x == nil || y == nil {
		return linalg.Invalid("data", nil, "x and y are required")
	}
	if err := linalg.CheckCols("NeuralNet.Train(x)", x, n.InputSize()); err != nil {
		return err
	}
	if err := linalg.CheckCols("NeuralNet.Train(y)", y, n.OutputSize()); err != nil {
		return err
	}
	xr, _ := x.Dims()
	yr, _ := y.Dims()
	if xr != yr {
		return &linalg.ShapeError{
			Op:   "NeuralNet.Train",
			Want: linalg.Shape{Rows: xr, Cols: n.OutputSize()},
			Got:  linalg.ShapeOf(y),
		}
	}
	return nil
}

// resolve applies defaults and validates cfg for a dataset of the given
// size, returning the validation subset size.
func (cfg TrainConfig) resolve(samples int) (TrainConfig, int, error) {
	if cfg.MaxEpochs <= 0 {
		return cfg, 0, linalg.Invalid("max_epochs", cfg.MaxEpochs, "must be > 0")
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > samples {
		return cfg, 0, linalg.Invalid("batchsize", cfg.BatchSize, fmt.Sprintf("must be in [1, %d]", samples))
	}
	if math.IsNaN(cfg.ValidationRate) || cfg.ValidationRate < 0 || cfg.ValidationRate >= 1 {
		return cfg, 0, linalg.Invalid("validation_rate", cfg.ValidationRate, "must be in [0, 1)")
	}
	if cfg.Patience < 0 {
		return cfg, 0, linalg.Invalid("patience", cfg.Patience, "must be >= 0")
	}
	if cfg.Patience == 0 {
		cfg.Patience = DefaultPatience
	}
	if math.IsNaN(cfg.MinDelta) || cfg.MinDelta < 0 {
		return cfg, 0, linalg.Invalid("min_delta", cfg.MinDelta, "must be >= 0")
	}

	nVal := int(math.Round(cfg.ValidationRate * float64(samples)))
	if nVal >= samples {
		return cfg, 0, linalg.Invalid("validation_rate", cfg.ValidationRate,
			fmt.Sprintf("holds out all %d samples", samples))
	}
	if cfg.EarlyStop && nVal == 0 {
		return cfg, 0, linalg.Invalid("early_stop", true,
			fmt.Sprintf("needs a validation split, validation_rate=%v holds out no samples", cfg.ValidationRate))
	}

	return cfg, nVal, nil
}

// split draws nVal validation rows without replacement; both subsets keep
// the original row order.
func (n *NeuralNet) split(samples, nVal int) (fit, val []int) {
	if nVal == 0 {
		fit = make([]int, samples)
		for i := range fit {
			fit[i] = i
		}
		return fit, nil
	}

	perm := n.rng.Perm(samples)
	val, fit = perm[:nVal], perm[nVal:]
	slices.Sort(val)
	slices.Sort(fit)
	return fit, val
}

// trainEpoch runs one shuffled pass over the fit rows.
func (n *NeuralNet) trainEpoch(x, y *mat.Dense, fitIdx []int, batchSize int) (EpochStats, error) {
	order := slices.Clone(fitIdx)
	n.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var totalLoss, totalCorrect float64
	for start := 0; start < len(order); start += batchSize {
		rows := order[start:min(start+batchSize, len(order))]

		loss, acc, err := n.trainBatch(linalg.SelectRows(x, rows), linalg.SelectRows(y, rows))
		if err != nil {
			return EpochStats{}, fmt.Errorf("batch at %d: %w", start/batchSize, err)
		}
		totalLoss += loss * float64(len(rows))
		totalCorrect += acc * float64(len(rows))
	}

	return EpochStats{
		Loss:     totalLoss / float64(len(order)),
		Accuracy: totalCorrect / float64(len(order)),
	}, nil
}

// trainBatch performs forward, backward and update for one mini-batch and
// returns the batch loss and accuracy measured before the update.
func (n *NeuralNet) trainBatch(xb, yb *mat.Dense) (loss, accuracy float64, err error) {
	caches := make([]Cache, len(n.layers))
	out := xb
	for i, layer := range n.layers {
		if out, caches[i], err = layer.Forward(out, true); err != nil {
			return 0, 0, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	loss = n.loss.Value(out, yb)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, 0, fmt.Errorf("%w: loss is %v", linalg.ErrNumericalInstability, loss)
	}
	accuracy = Accuracy(out, yb)

	grads := make([][]*mat.Dense, len(n.layers))
	last := len(n.layers) - 1

	var delta *mat.Dense
	if output, fused := n.fusedOutput(); fused {
		delta, grads[last], err = output.BackpropLogits(caches[last], logitGradient(out, yb))
	} else {
		delta, grads[last], err = n.layers[last].Backprop(caches[last], n.loss.Gradient(out, yb))
	}
	if err != nil {
		return 0, 0, fmt.Errorf("layer %d: %w", last, err)
	}

	for i := last - 1; i >= 0; i-- {
		if delta, grads[i], err = n.layers[i].Backprop(caches[i], delta); err != nil {
			return 0, 0, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	for i, layer := range n.layers {
		if err := layer.Update(grads[i]); err != nil {
			return 0, 0, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	return loss, accuracy, nil
}

// report prints one progress line in the same format for every epoch.
func (n *NeuralNet) report(stats EpochStats, maxEpochs int) {
	if stats.HasValidation {
		fmt.Fprintf(n.out, "Epoch %2d/%d: Loss=%.4f, Train Acc=%.2f%%, Val Loss=%.4f, Val Acc=%.2f%%\n",
			stats.Epoch, maxEpochs, stats.Loss, stats.Accuracy*100, stats.ValLoss, stats.ValAccuracy*100)
		return
	}
	fmt.Fprintf(n.out, "Epoch %2d/%d: Loss=%.4f, Train Acc=%.2f%%\n",
		stats.Epoch, maxEpochs, stats.Loss, stats.Accuracy*100)
}

// earlyStopper tracks the best monitored loss and the epochs since it
// last improved.
type earlyStopper struct {
	patience  int
	minDelta  float64
	best      float64
	bestEpoch int
	wait      int
}

// observe records an epoch's loss and reports whether patience ran out.
func (s *earlyStopper) observe(epoch int, loss float64) bool {
	if loss < s.best-s.minDelta {
		s.best = loss
		s.bestEpoch = epoch
		s.wait = 0
		return false
	}
	s.wait++
	return s.wait >= s.patience
}
