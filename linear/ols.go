// Package linear provides ordinary least squares regression.
package linear

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// DefaultL2 is the ridge penalty used unless WithL2Regularization is given.
// It is small enough to leave well-conditioned fits unchanged and keeps
// collinear features solvable.
const DefaultL2 = 1e-6

// OLSRegressor fits y ≈ X·w + b by least squares with an optional ridge
// penalty on w.
//
// The penalized problem is solved as the augmented system
//
//	[ 1  X      ] [b]   [y]
//	[ 0  √λ·I   ] [w] = [0]
//
// with a QR factorization, so the intercept is never penalized.
type OLSRegressor struct {
	state *model.StateManager

	fitIntercept bool
	l2           float64
	logger       log.Logger

	coef      []float64
	intercept float64
	skipped   int
}

// NewOLSRegressor creates an OLSRegressor with an intercept and L2 penalty
// DefaultL2.
func NewOLSRegressor(opts ...Option) *OLSRegressor {
	lr := &OLSRegressor{
		state:        model.NewStateManager("OLSRegressor"),
		fitIntercept: true,
		l2:           DefaultL2,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.logger == nil {
		lr.logger = log.GetLoggerWithName("linear")
	}
	return lr
}

// Fit solves for the coefficients. Rows with a NaN feature or target are
// skipped with a DataConversionWarning.
func (lr *OLSRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "OLSRegressor.Fit")

	if lr.l2 < 0 || math.IsNaN(lr.l2) {
		return errors.NewValidationError("l2", "must be non-negative", lr.l2)
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("OLSRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != r {
		return errors.NewDimensionError("OLSRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("OLSRegressor.Fit", "y must be a column vector")
	}

	start := time.Now()
	rows := completeRows(X, y)
	lr.skipped = r - len(rows)
	if lr.skipped > 0 {
		errors.Warn(errors.NewDataConversionWarning("row", "skipped",
			fmt.Sprintf("%d of %d rows contain missing values", lr.skipped, r)))
	}
	if len(rows) == 0 {
		return errors.NewModelError("OLSRegressor.Fit", "no complete rows", errors.ErrEmptyData)
	}

	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	p := c + offset
	n := len(rows)
	extra := 0
	if lr.l2 > 0 {
		extra = c
	}

	A := mat.NewDense(n+extra, p, nil)
	b := mat.NewDense(n+extra, 1, nil)
	parallel.ParallelizeWithThreshold(n, 1000, func(s, e int) {
		for k := s; k < e; k++ {
			i := rows[k]
			if lr.fitIntercept {
				A.Set(k, 0, 1)
			}
			for j := 0; j < c; j++ {
				A.Set(k, j+offset, X.At(i, j))
			}
			b.Set(k, 0, y.At(i, 0))
		}
	})
	if extra > 0 {
		root := math.Sqrt(lr.l2)
		for j := 0; j < c; j++ {
			A.Set(n+j, j+offset, root)
		}
	}

	if n+extra < p {
		return errors.NewModelError("OLSRegressor.Fit",
			fmt.Sprintf("%d equations for %d unknowns", n+extra, p), errors.ErrSingularMatrix)
	}

	var qr mat.QR
	qr.Factorize(A)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return errors.NewModelError("OLSRegressor.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	weights := mat.Col(nil, 0, &sol)
	if err := errors.CheckNumericalStability("OLSRegressor.Fit", weights); err != nil {
		return errors.NewModelError("OLSRegressor.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	lr.intercept = 0
	if lr.fitIntercept {
		lr.intercept = weights[0]
	}
	lr.coef = weights[offset:]
	lr.state.SetDimensions(c, n)
	lr.state.SetFitted()

	lr.logger.Info("Training completed",
		log.ModelNameKey, "OLSRegressor",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, c,
		log.SkippedRowsKey, lr.skipped,
		log.RegularizationKey, lr.l2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// completeRows returns the indices of rows without NaN.
func completeRows(X, y mat.Matrix) []int {
	r, c := X.Dims()
	rows := make([]int, 0, r)
outer:
	for i := 0; i < r; i++ {
		if math.IsNaN(y.At(i, 0)) {
			continue
		}
		for j := 0; j < c; j++ {
			if math.IsNaN(X.At(i, j)) {
				continue outer
			}
		}
		rows = append(rows, i)
	}
	return rows
}

// Predict returns X·w + b for every row. Rows with NaN features predict NaN.
func (lr *OLSRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	if err := lr.state.CheckFeatures("Predict", c); err != nil {
		return nil, err
	}

	w := mat.NewVecDense(c, lr.coef)
	out := mat.NewVecDense(r, nil)
	out.MulVec(X, w)
	pred := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred.Set(i, 0, out.AtVec(i)+lr.intercept)
	}
	return pred, nil
}

func (lr *OLSRegressor) IsFitted() bool { return lr.state.IsFitted() }

// Coefficients returns a copy of the fitted weights in feature order.
func (lr *OLSRegressor) Coefficients() []float64 {
	return append([]float64(nil), lr.coef...)
}

// Intercept returns the fitted intercept, or 0 without one.
func (lr *OLSRegressor) Intercept() float64 { return lr.intercept }

// SkippedRows returns how many training rows were dropped for missing values.
func (lr *OLSRegressor) SkippedRows() int { return lr.skipped }

func (lr *OLSRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"l2":            lr.l2,
	}
}
