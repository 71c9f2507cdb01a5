package linear

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

var _ model.Regressor = (*OLSRegressor)(nil)

func TestOLSRegressor_SimpleLine(t *testing.T) {
	// y = 2x + 1
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewDense(5, 1, []float64{3, 5, 7, 9, 11})

	lr := NewOLSRegressor(WithL2Regularization(0))
	require.NoError(t, lr.Fit(X, y))
	assert.True(t, lr.IsFitted())
	assert.InDelta(t, 2.0, lr.Coefficients()[0], 1e-9)
	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{6, 7}))
	require.NoError(t, err)
	assert.InDelta(t, 13.0, pred.At(0, 0), 1e-9)
	assert.InDelta(t, 15.0, pred.At(1, 0), 1e-9)
}

func TestOLSRegressor_KnownCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	want := []float64{1.5, -2.0, 0.25}
	X := mat.NewDense(n, len(want), nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		v := 4.0
		for j, w := range want {
			x := rng.NormFloat64()
			X.Set(i, j, x)
			v += w * x
		}
		y.Set(i, 0, v)
	}

	tests := []struct {
		name string
		l2   float64
		tol  float64
	}{
		{"plain least squares", 0, 1e-9},
		{"default penalty", DefaultL2, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewOLSRegressor(WithL2Regularization(tt.l2))
			require.NoError(t, lr.Fit(X, y))
			got := lr.Coefficients()
			require.Len(t, got, len(want))
			for j := range want {
				assert.InDelta(t, want[j], got[j], tt.tol)
			}
			// intercept is not penalized
			assert.InDelta(t, 4.0, lr.Intercept(), tt.tol)
		})
	}
}

func TestOLSRegressor_NoIntercept(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 6, 9, 12})

	lr := NewOLSRegressor(WithFitIntercept(false), WithL2Regularization(0))
	require.NoError(t, lr.Fit(X, y))
	assert.InDelta(t, 3.0, lr.Coefficients()[0], 1e-9)
	assert.Equal(t, 0.0, lr.Intercept())
	assert.Equal(t, false, lr.GetParams()["fit_intercept"])
}

func TestOLSRegressor_CollinearFeaturesWithPenalty(t *testing.T) {
	// second column duplicates the first; the ridge term keeps it solvable
	X := mat.NewDense(6, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
		5, 5,
		6, 6,
	})
	y := mat.NewDense(6, 1, []float64{2, 4, 6, 8, 10, 12})

	lr := NewOLSRegressor()
	require.NoError(t, lr.Fit(X, y))
	coef := lr.Coefficients()
	assert.InDelta(t, 2.0, coef[0]+coef[1], 1e-4)
	assert.InDelta(t, coef[0], coef[1], 1e-4)
}

func TestOLSRegressor_SkipsMissingRows(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	nan := math.NaN()
	X := mat.NewDense(6, 1, []float64{1, 2, nan, 3, 4, 5})
	y := mat.NewDense(6, 1, []float64{3, 5, 100, 7, nan, 11})

	lr := NewOLSRegressor(WithL2Regularization(0))
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 2, lr.SkippedRows())
	assert.InDelta(t, 2.0, lr.Coefficients()[0], 1e-9)
	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)

	require.Len(t, warnings, 1)
	var dcw *errors.DataConversionWarning
	assert.True(t, errors.As(warnings[0], &dcw))

	pred, err := lr.Predict(mat.NewDense(1, 1, []float64{nan}))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pred.At(0, 0)))
}

func TestOLSRegressor_Errors(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name  string
		X     *mat.Dense
		y     *mat.Dense
		opts  []Option
		check func(t *testing.T, err error)
	}{
		{
			name: "row mismatch",
			X:    mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
			check: func(t *testing.T, err error) {
				var de *errors.DimensionError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, 0, de.Axis)
			},
		},
		{
			name: "negative penalty",
			X:    mat.NewDense(2, 1, []float64{1, 2}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
			opts: []Option{WithL2Regularization(-1)},
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
			},
		},
		{
			name: "all rows missing",
			X:    mat.NewDense(2, 1, []float64{nan, nan}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
		{
			name: "underdetermined",
			X:    mat.NewDense(1, 2, []float64{1, 2}),
			y:    mat.NewDense(1, 1, []float64{1}),
			opts: []Option{WithL2Regularization(0)},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
			},
		},
	}

	errors.SetWarningHandler(func(error) {})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewOLSRegressor(tt.opts...)
			err := lr.Fit(tt.X, tt.y)
			require.Error(t, err)
			tt.check(t, err)
			assert.False(t, lr.IsFitted())
		})
	}
}

func TestOLSRegressor_PredictErrors(t *testing.T) {
	lr := NewOLSRegressor()
	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 2, 3})))
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	var de *errors.DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Expected)
	assert.Equal(t, 2, de.Got)
}

func TestOLSRegressor_LogsTraining(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	lr := NewOLSRegressor(WithLogger(logger))
	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{2, 4, 6})))
	assert.True(t, logger.ContainsMessage("Training completed"))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(3)))
}

func BenchmarkOLSRegressor_Fit(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	n, p := 10000, 20
	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < p; j++ {
			v := rng.NormFloat64()
			X.Set(i, j, v)
			s += float64(j) * v
		}
		y.Set(i, 0, s+rng.NormFloat64())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lr := NewOLSRegressor()
		if err := lr.Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}
