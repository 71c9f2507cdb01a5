package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// RegressionMetrics is the summary EvaluateRegression returns.
type RegressionMetrics struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64 // NaN when yTrue has no variance
}

// MSE computes the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// MSEMatrix computes MSE for n×1 matrices.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("MSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination. It fails when yTrue
// has no variance.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// EvaluateRegression computes every regression metric for n×1 truth and
// prediction matrices. NaN predictions propagate into every metric. A
// constant truth yields R² = NaN and an UndefinedMetricWarning instead of
// an error.
func EvaluateRegression(yTrue, yPred mat.Matrix) (RegressionMetrics, error) {
	t, p, err := columnPair("EvaluateRegression", yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}

	var m RegressionMetrics
	if m.MAE, err = MAE(t, p); err != nil {
		return RegressionMetrics{}, err
	}
	if m.MSE, err = MSE(t, p); err != nil {
		return RegressionMetrics{}, err
	}
	m.RMSE = math.Sqrt(m.MSE)

	m.R2, err = R2Score(t, p)
	if err != nil {
		var ve *errors.ValueError
		if !errors.As(err, &ve) {
			return RegressionMetrics{}, err
		}
		m.R2 = math.NaN()
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "no variance in yTrue", m.R2))
	}
	return m, nil
}

// checkPair validates two vectors of equal, non-zero length.
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// columnPair copies two n×1 matrices into vectors.
func columnPair(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if yTrue == nil || yPred == nil {
		return nil, nil, errors.NewValueError(op, "nil matrix")
	}
	if isEmpty(yTrue) || isEmpty(yPred) {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue != rPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != 1 || cPred != 1 {
		return nil, nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)), nil
}

func isEmpty(m mat.Matrix) bool {
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return true
	}
	r, c := m.Dims()
	return r == 0 || c == 0
}
