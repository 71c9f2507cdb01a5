// Package ensemble provides tree-ensemble trainers: bagged random forests
// and gradient-boosted trees, each for binary classification and
// regression.
//
//	rf := ensemble.NewRandomForestClassifier(
//	    ensemble.WithNumTrees(100),
//	    ensemble.WithNumLeaves(128),
//	)
//	if err := rf.Fit(X, y); err != nil {
//	    return err
//	}
//	labels, err := rf.Predict(Xtest)
package ensemble

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/tree"
)

// checkFitInput validates the training shapes and returns y as a slice.
// Binary targets must be 0 or 1.
func checkFitInput(op string, X, y mat.Matrix, binary bool) ([]float64, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewValueError(op, fmt.Sprintf("y must have one column, got %d", yCols))
	}

	target := make([]float64, rows)
	for i := range target {
		v := y.At(i, 0)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return nil, errors.NewValidationError("y", fmt.Sprintf("row %d is not finite", i), v)
		case binary && v != 0 && v != 1:
			return nil, errors.NewValidationError("y", fmt.Sprintf("row %d is not a 0/1 label", i), v)
		}
		target[i] = v
	}
	return target, nil
}

// newLearner bins X once for all trees of one Fit.
func newLearner(X mat.Matrix, p params) (*tree.Learner, error) {
	mapper, err := tree.NewBinMapper(X, p.maxBins, p.numThreads)
	if err != nil {
		return nil, err
	}
	binned, err := mapper.Transform(X, p.numThreads)
	if err != nil {
		return nil, err
	}
	return tree.NewLearner(mapper, binned, p.treeParams())
}

// sampleRows draws round(fraction*n) distinct rows, at least one, in
// ascending order.
func sampleRows(rng *rand.Rand, n int, fraction float64) []int {
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	rows := rng.Perm(n)[:k]
	sort.Ints(rows)
	return rows
}

// treeRNG returns the generator for tree i. Seeding per tree keeps results
// independent of scheduling.
func treeRNG(seed int64, i int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(i)*7919))
}

func rowsOf(X mat.Matrix) [][]float64 {
	r, _ := X.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return out
}

// sumTrees adds the prediction of every tree for every row, in parallel
// over rows.
func sumTrees(trees []*tree.Tree, X mat.Matrix, workers int) []float64 {
	rows, _ := X.Dims()
	scores := make([]float64, rows)
	parallel.ParallelizeN(workers, rows, func(start, end int) {
		for i := start; i < end; i++ {
			row := mat.Row(nil, i, X)
			for _, t := range trees {
				scores[i] += t.Predict(row)
			}
		}
	})
	return scores
}

func importance(trees []*tree.Tree, nFeatures int) []float64 {
	imp := make([]float64, nFeatures)
	for _, t := range trees {
		t.AddGainImportance(imp)
	}
	total := 0.0
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp
}

func column(values []float64) *mat.Dense {
	return mat.NewDense(len(values), 1, values)
}

func labels(scores []float64) *mat.Dense {
	out := make([]float64, len(scores))
	for i, s := range scores {
		if s > 0 {
			out[i] = 1
		}
	}
	return column(out)
}
