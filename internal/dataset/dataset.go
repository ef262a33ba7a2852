// Package dataset prepares tabular classification data for training.
//
// It covers the steps a driver program runs before handing matrices to a
// network: CSV loading, z-score normalization, one-hot targets, joint
// shuffling of features and targets, hold-out splits and synthetic Gaussian
// blobs for demos and tests.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nnet/internal/linalg"
)

// ErrMalformedCSV is returned when a CSV file cannot be turned into a dataset.
var ErrMalformedCSV = errors.New("malformed CSV")

// Dataset is a feature matrix with integer class labels.
type Dataset struct {
	X       *mat.Dense // [samples, features]
	Labels  []int      // class index per row
	Classes []string   // class names, indexed by label
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Targets returns the one-hot target matrix [samples, classes].
func (d *Dataset) Targets() (*mat.Dense, error) {
	return OneHot(d.Labels, len(d.Classes))
}

// CSVOptions controls LoadCSV.
type CSVOptions struct {
	Header     bool // Skip the first record
	LabelFirst bool // Class in the first column instead of the last
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string, opts CSVOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadCSV(file, opts)
}

// LoadCSV reads numeric feature columns and one class column.
//
// CSV Format (UCI iris style, no header):
//
//	5.1,3.5,1.4,0.2,Iris-setosa
//	7.0,3.2,4.7,1.4,Iris-versicolor
//
// Class names are sorted (numerically when every name is an integer) and
// the label of a row is the position of its class name in that order.
func LoadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	if opts.Header && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformedCSV)
	}

	width := len(records[0])
	if width < 2 {
		return nil, fmt.Errorf("%w: need at least one feature and a class column, got %d columns", ErrMalformedCSV, width)
	}
	labelCol := width - 1
	if opts.LabelFirst {
		labelCol = 0
	}

	x := mat.NewDense(len(records), width-1, nil)
	names := make([]string, len(records))
	for i, record := range records {
		row := x.RawRowView(i)
		j := 0
		for col, field := range record {
			if col == labelCol {
				names[i] = strings.TrimSpace(field)
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d, column %d: %w", ErrMalformedCSV, i+1, col+1, err)
			}
			row[j] = v
			j++
		}
	}

	classes := classNames(names)
	labels := make([]int, len(names))
	for i, name := range names {
		labels[i] = slices.Index(classes, name)
	}

	return &Dataset{X: x, Labels: labels, Classes: classes}, nil
}

// classNames returns the distinct names in label order.
func classNames(names []string) []string {
	classes := slices.Clone(names)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	for _, c := range classes {
		if _, err := strconv.Atoi(c); err != nil {
			return classes
		}
	}
	slices.SortFunc(classes, func(a, b string) int {
		na, _ := strconv.Atoi(a)
		nb, _ := strconv.Atoi(b)
		return na - nb
	})
	return classes
}

// OneHot encodes labels as rows of a [len(labels), classes] matrix.
func OneHot(labels []int, classes int) (*mat.Dense, error) {
	if len(labels) == 0 {
		return nil, linalg.Invalid("labels", 0, "no labels")
	}
	if classes <= 0 {
		return nil, linalg.Invalid("classes", classes, "must be > 0")
	}

	y := mat.NewDense(len(labels), classes, nil)
	for i, l := range labels {
		if l < 0 || l >= classes {
			return nil, linalg.Invalid("label", l, fmt.Sprintf("row %d outside [0, %d)", i, classes))
		}
		y.Set(i, l, 1)
	}
	return y, nil
}

// Shuffle permutes the rows of x and y with the same permutation and
// returns the shuffled copies.
func Shuffle(x, y *mat.Dense, src rand.Source) (*mat.Dense, *mat.Dense, error) {
	if err := sameRows("Shuffle", x, y); err != nil {
		return nil, nil, err
	}
	rows, _ := x.Dims()
	perm := rand.New(src).Perm(rows)
	return linalg.SelectRows(x, perm), linalg.SelectRows(y, perm), nil
}

// Split returns the first n rows of x and y and the remaining rows.
func Split(x, y *mat.Dense, n int) (xHead, yHead, xTail, yTail *mat.Dense, err error) {
	if err := sameRows("Split", x, y); err != nil {
		return nil, nil, nil, nil, err
	}
	rows, _ := x.Dims()
	if n <= 0 || n >= rows {
		return nil, nil, nil, nil, linalg.Invalid("n", n, fmt.Sprintf("must be in [1, %d]", rows-1))
	}

	head, tail := rowRange(0, n), rowRange(n, rows)
	return linalg.SelectRows(x, head), linalg.SelectRows(y, head),
		linalg.SelectRows(x, tail), linalg.SelectRows(y, tail), nil
}

func rowRange(from, to int) []int {
	idx := make([]int, to-from)
	for i := range idx {
		idx[i] = from + i
	}
	return idx
}

func sameRows(op string, x, y *mat.Dense) error {
	xr, _ := x.Dims()
	yr, yc := y.Dims()
	if xr != yr {
		return &linalg.ShapeError{
			Op:   "dataset." + op,
			Want: linalg.Shape{Rows: xr, Cols: yc},
			Got:  linalg.Shape{Rows: yr, Cols: yc},
		}
	}
	return nil
}
