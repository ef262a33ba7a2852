// Package main provides the nnet CLI.
//
// Usage:
//
//	nnet version
//	nnet train -data iris.data -epochs 70 -batch 5 -val 0.04
//	nnet train -synthetic -classes 3 -seed 42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/klauspost/cpuid/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/dataset"
	"github.com/born-ml/nnet/nn"
	"github.com/born-ml/nnet/optim"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		printVersion()
	case "train":
		if err := train(os.Args[2:]); err != nil && !errors.Is(err, flag.ErrHelp) {
			log.Fatalf("train: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("nnet - feed-forward neural network trainer")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version and CPU features")
	fmt.Println("  train      Train a classifier on a CSV file or synthetic blobs")
	fmt.Println("")
	fmt.Println("Run 'nnet train -h' for training flags.")
}

func printVersion() {
	fmt.Printf("nnet %s\n", version)
	fmt.Printf("CPU: %s (%d cores, %d threads)\n", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)

	simd := "generic"
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		simd = "AVX-512"
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3):
		simd = "AVX2+FMA"
	case cpuid.CPU.Supports(cpuid.ASIMD):
		simd = "NEON"
	}
	fmt.Printf("SIMD: %s\n", simd)
}

// trainFlags are the command line settings of the train subcommand.
type trainFlags struct {
	data       string
	header     bool
	labelFirst bool
	synthetic  bool
	classes    int
	perClass   int
	features   int

	optimizer string
	lr        float64
	epochs    int
	batch     int
	val       float64
	test      int
	earlyStop bool
	patience  int
	minDelta  float64
	seed      uint64
	quiet     bool
}

func parseTrainFlags(args []string) (*trainFlags, error) {
	f := &trainFlags{}
	fs := flag.NewFlagSet("train", flag.ContinueOnError)

	fs.StringVar(&f.data, "data", "", "CSV file with feature columns and a class column")
	fs.BoolVar(&f.header, "header", false, "Skip the first CSV row")
	fs.BoolVar(&f.labelFirst, "label-first", false, "Class is the first CSV column instead of the last")
	fs.BoolVar(&f.synthetic, "synthetic", false, "Train on synthetic Gaussian blobs")
	fs.IntVar(&f.classes, "classes", 3, "Synthetic: number of classes")
	fs.IntVar(&f.perClass, "per-class", 50, "Synthetic: samples per class")
	fs.IntVar(&f.features, "features", 4, "Synthetic: number of features")

	fs.StringVar(&f.optimizer, "optimizer", "adam", "Optimizer: sgd or adam")
	fs.Float64Var(&f.lr, "lr", 0.005, "Learning rate")
	fs.IntVar(&f.epochs, "epochs", 70, "Maximum number of epochs")
	fs.IntVar(&f.batch, "batch", 5, "Mini-batch size")
	fs.Float64Var(&f.val, "val", 0.04, "Fraction of training samples held out for validation")
	fs.IntVar(&f.test, "test", 15, "Samples held out as the test set")
	fs.BoolVar(&f.earlyStop, "early-stop", false, "Stop when validation loss stops improving")
	fs.IntVar(&f.patience, "patience", nn.DefaultPatience, "Early stopping: epochs without improvement")
	fs.Float64Var(&f.minDelta, "min-delta", 0, "Early stopping: minimum improvement")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed (0 = random)")
	fs.BoolVar(&f.quiet, "quiet", false, "Do not print per-epoch progress")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.data == "" && !f.synthetic {
		return nil, fmt.Errorf("one of -data or -synthetic is required")
	}
	if f.data != "" && f.synthetic {
		return nil, fmt.Errorf("-data and -synthetic are mutually exclusive")
	}
	return f, nil
}

func train(args []string) error {
	f, err := parseTrainFlags(args)
	if err != nil {
		return err
	}

	seed := f.seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // Seeds are not security-critical
	}
	src := rand.NewPCG(seed, seed^0x5851f42d4c957f2d)

	ds, err := loadData(f, src)
	if err != nil {
		return err
	}
	_, features := ds.X.Dims()
	fmt.Printf("Loaded %d samples, %d features, %d classes (seed %d)\n", ds.Len(), features, len(ds.Classes), seed)

	// Normalize, then shuffle to avoid biased validation/test splits.
	_, x := dataset.FitTransform(ds.X)
	y, err := ds.Targets()
	if err != nil {
		return err
	}
	x, y, err = dataset.Shuffle(x, y, src)
	if err != nil {
		return err
	}
	xTrain, yTrain, xTest, yTest, err := dataset.Split(x, y, ds.Len()-f.test)
	if err != nil {
		return fmt.Errorf("test split: %w", err)
	}

	opt, err := optim.Parse(f.optimizer, f.lr)
	if err != nil {
		return err
	}
	net, err := buildNet(opt, features, len(ds.Classes), src)
	if err != nil {
		return err
	}
	fmt.Printf("Model: %d layers, %d parameters\n\n", net.Len(), net.NumParameters())

	if err := reportTest(net, "before", xTest, yTest); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	history, err := net.Train(ctx, xTrain, yTrain, nn.TrainConfig{
		MaxEpochs:      f.epochs,
		BatchSize:      f.batch,
		ValidationRate: f.val,
		EarlyStop:      f.earlyStop,
		Patience:       f.patience,
		MinDelta:       f.minDelta,
		Verbose:        !f.quiet,
	})
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("Training interrupted")
	case err != nil:
		return err
	}
	fmt.Printf("\nStopped after %d epochs (%s), best epoch %d\n", len(history.Epochs), history.Reason, history.BestEpoch)

	return reportTest(net, "after", xTest, yTest)
}

func loadData(f *trainFlags, src rand.Source) (*dataset.Dataset, error) {
	if f.synthetic {
		return dataset.Blobs(dataset.BlobsConfig{
			Classes:  f.classes,
			PerClass: f.perClass,
			Features: f.features,
		}, src)
	}
	return dataset.LoadCSVFile(f.data, dataset.CSVOptions{Header: f.header, LabelFirst: f.labelFirst})
}

// buildNet creates the classifier: two sigmoid hidden layers with dropout
// and a softmax output.
func buildNet(opt optim.Config, features, classes int, src rand.Source) (*nn.NeuralNet, error) {
	net, err := nn.NewNeuralNet(nn.Config{
		Optimizer: opt,
		Source:    src,
		Output:    os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	hidden1, err := nn.NewDense(features, 64, nn.Sigmoid, src)
	if err != nil {
		return nil, err
	}
	drop1, err := nn.NewDropout(64, 0.4, src)
	if err != nil {
		return nil, err
	}
	hidden2, err := nn.NewDense(64, 16, nn.Sigmoid, src)
	if err != nil {
		return nil, err
	}
	drop2, err := nn.NewDropout(16, 0.2, src)
	if err != nil {
		return nil, err
	}
	output, err := nn.NewDense(16, classes, nn.Softmax, src)
	if err != nil {
		return nil, err
	}

	for _, layer := range []nn.Layer{hidden1, drop1, hidden2, drop2, output} {
		if err := net.AddLayer(layer); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func reportTest(net *nn.NeuralNet, when string, x, y *mat.Dense) error {
	pred, err := net.Predict(x)
	if err != nil {
		return err
	}
	fmt.Printf("Test accuracy %s training: %.2f%%\n", when, nn.Accuracy(pred, y)*100)
	return nil
}
