// Package tree grows regression trees on binned gradient statistics.
//
// It is the shared engine behind the random forest and gradient boosting
// trainers: features are quantized once by a BinMapper, then a Learner
// grows leaf-wise trees from per-row gradients and hessians. Trees keep
// thresholds in raw feature units so prediction needs no binning.
package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// MaxBinsLimit is the largest supported number of value bins per feature.
// One more bin is reserved for missing values.
const MaxBinsLimit = 255

// BinMapper quantizes each feature into at most MaxBins value bins.
// Bin 0 holds NaN; value v lands in bin 1+i where i is the first upper
// bound with v <= bound.
type BinMapper struct {
	MaxBins int

	// upper[j] holds ascending bin upper bounds for feature j. The last
	// value bin is unbounded.
	upper [][]float64
}

// NewBinMapper fits bin boundaries for every column of X using up to
// workers goroutines.
//
// Features with at most MaxBins distinct values get one bin per value, split
// at midpoints. Others get equal-frequency bins from empirical quantiles.
func NewBinMapper(X mat.Matrix, maxBins, workers int) (*BinMapper, error) {
	if maxBins < 2 || maxBins > MaxBinsLimit {
		return nil, errors.NewValidationError("max_bins", "must be in [2, 255]", maxBins)
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("NewBinMapper", "empty data", errors.ErrEmptyData)
	}

	m := &BinMapper{MaxBins: maxBins, upper: make([][]float64, cols)}
	parallel.ParallelizeN(workers, cols, func(start, end int) {
		values := make([]float64, 0, rows)
		for j := start; j < end; j++ {
			values = values[:0]
			for i := 0; i < rows; i++ {
				if v := X.At(i, j); !math.IsNaN(v) {
					values = append(values, v)
				}
			}
			m.upper[j] = findBinBoundaries(values, maxBins)
		}
	})
	return m, nil
}

func findBinBoundaries(values []float64, maxBins int) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	unique := []float64{values[0]}
	for _, v := range values[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}

	if len(unique) <= maxBins {
		bounds := make([]float64, len(unique)-1)
		for i := range bounds {
			bounds[i] = (unique[i] + unique[i+1]) / 2
		}
		return bounds
	}

	last := unique[len(unique)-1]
	bounds := make([]float64, 0, maxBins-1)
	for i := 1; i < maxBins; i++ {
		q := stat.Quantile(float64(i)/float64(maxBins), stat.Empirical, values, nil)
		if q >= last {
			break
		}
		if len(bounds) == 0 || q > bounds[len(bounds)-1] {
			bounds = append(bounds, q)
		}
	}
	return bounds
}

// NumFeatures returns the number of features the mapper was fitted on.
func (m *BinMapper) NumFeatures() int { return len(m.upper) }

// NumBins returns the number of bins of feature j, including the NaN bin.
func (m *BinMapper) NumBins(j int) int { return len(m.upper[j]) + 2 }

// Bin maps a raw value of feature j to its bin.
func (m *BinMapper) Bin(j int, v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(1 + sort.SearchFloat64s(m.upper[j], v))
}

// Threshold returns the raw split value that sends bins 0..b left.
func (m *BinMapper) Threshold(j, b int) float64 {
	if b == 0 {
		return math.Inf(-1)
	}
	return m.upper[j][b-1]
}

// Binned is a column-major matrix of bin indices.
type Binned struct {
	rows int
	bins [][]uint8
}

// Transform bins every cell of X.
func (m *BinMapper) Transform(X mat.Matrix, workers int) (*Binned, error) {
	rows, cols := X.Dims()
	if cols != len(m.upper) {
		return nil, errors.NewDimensionError("BinMapper.Transform", len(m.upper), cols, 1)
	}

	b := &Binned{rows: rows, bins: make([][]uint8, cols)}
	parallel.ParallelizeN(workers, cols, func(start, end int) {
		for j := start; j < end; j++ {
			col := make([]uint8, rows)
			for i := 0; i < rows; i++ {
				col[i] = m.Bin(j, X.At(i, j))
			}
			b.bins[j] = col
		}
	})
	return b, nil
}

func (b *Binned) Rows() int { return b.rows }

func (b *Binned) Features() int { return len(b.bins) }

// At returns the bin of row i, feature j.
func (b *Binned) At(i, j int) uint8 { return b.bins[j][i] }
