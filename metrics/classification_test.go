package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

func collectWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
	return &warnings
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{name: "perfect", yTrue: vec(0, 1, 2, 1, 0), yPred: vec(0, 1, 2, 1, 0), want: 1},
		{name: "one miss", yTrue: vec(0, 1, 2, 1, 0), yPred: vec(0, 1, 1, 1, 0), want: 0.8},
		{name: "all wrong", yTrue: vec(0, 0, 0), yPred: vec(1, 1, 1), want: 0},
		{name: "empty", yTrue: vec(), yPred: vec(), wantErr: true},
		{name: "dimension mismatch", yTrue: vec(0, 1), yPred: vec(0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			ce, err := ClassificationError(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, 1-tt.want, ce, 1e-12)
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := vec(1, 1, 1, 0, 0, 0, 1, 0)
	yPred := vec(1, 1, 0, 0, 1, 0, 1, 0)

	c, err := ConfusionMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, Confusion{TruePositive: 3, FalsePositive: 1, TrueNegative: 3, FalseNegative: 1}, c)
	assert.Equal(t, 8, c.Total())

	_, err = ConfusionMatrix(vec(0, 2), vec(0, 1))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestPrecisionRecallF1(t *testing.T) {
	tests := []struct {
		name          string
		yTrue, yPred  *mat.VecDense
		precision     float64
		recall        float64
		f1            float64
		wantWarnCount int
	}{
		{
			name:  "balanced",
			yTrue: vec(1, 1, 1, 0, 0, 0, 1, 0),
			yPred: vec(1, 1, 0, 0, 1, 0, 1, 0),
			// TP=3 FP=1 FN=1
			precision: 0.75, recall: 0.75, f1: 0.75,
		},
		{
			name:      "low recall",
			yTrue:     vec(1, 1, 1, 1, 0),
			yPred:     vec(1, 0, 0, 0, 0),
			precision: 1, recall: 0.25, f1: 0.4,
		},
		{
			name:      "no positive predictions",
			yTrue:     vec(1, 0, 1),
			yPred:     vec(0, 0, 0),
			precision: 0, recall: 0, f1: 0,
			// precision and F1 are undefined
			wantWarnCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := collectWarnings(t)

			p, err := PrecisionScore(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			r, err := RecallScore(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			f, err := F1Score(tt.yTrue, tt.yPred)
			require.NoError(t, err)

			assert.InDelta(t, tt.precision, p, 1e-12)
			assert.InDelta(t, tt.recall, r, 1e-12)
			assert.InDelta(t, tt.f1, f, 1e-12)
			assert.Len(t, *warnings, tt.wantWarnCount)
		})
	}
}

func TestBinaryLogLoss(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yProb   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{name: "perfect predictions are clipped", yTrue: vec(0, 0, 1, 1), yProb: vec(0, 0, 1, 1), want: 0},
		{name: "typical", yTrue: vec(0, 0, 1, 1), yProb: vec(0.1, 0.2, 0.8, 0.9), want: 0.164252},
		{name: "confidently wrong", yTrue: vec(0, 0, 1, 1), yProb: vec(0.9, 0.9, 0.1, 0.1), want: 2.3025851},
		{name: "non-binary labels", yTrue: vec(0, 0.5, 1), yProb: vec(0.1, 0.5, 0.9), wantErr: true},
		{name: "empty", yTrue: vec(), yProb: vec(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryLogLoss(tt.yTrue, tt.yProb)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestEvaluateBinary(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	yPred := mat.NewDense(4, 1, []float64{0, 1, 0, 1})
	scores := mat.NewDense(4, 1, []float64{0.1, 0.4, 0.35, 0.8})

	m, err := EvaluateBinary(yTrue, yPred, scores)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, m.PositivePrecision, 1e-12)
	assert.InDelta(t, 0.5, m.PositiveRecall, 1e-12)
	assert.InDelta(t, 0.5, m.NegativePrecision, 1e-12)
	assert.InDelta(t, 0.5, m.NegativeRecall, 1e-12)
	assert.InDelta(t, 0.5, m.F1Score, 1e-12)
	assert.InDelta(t, 0.75, m.AUC, 1e-12)
	// ranking 1,0,1,0: (1/1 + 2/3) / 2
	assert.InDelta(t, 5.0/6.0, m.AUCPR, 1e-12)
	assert.Greater(t, m.LogLoss, 0.0)
	assert.Equal(t, 4, m.Confusion.Total())
}

func TestEvaluateBinary_InvalidInput(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{0, 1, 1})

	_, err := EvaluateBinary(yTrue, mat.NewDense(2, 1, nil), mat.NewDense(3, 1, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	_, err = EvaluateBinary(yTrue, mat.NewDense(3, 1, []float64{0, 1, 3}), mat.NewDense(3, 1, nil))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func BenchmarkBinaryLogLoss(b *testing.B) {
	n := 1000
	yTrue := mat.NewVecDense(n, nil)
	yProb := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if i >= n/2 {
			yTrue.SetVec(i, 1)
			yProb.SetVec(i, 0.6+0.3*float64(i-n/2)/float64(n/2))
		} else {
			yProb.SetVec(i, 0.1+0.3*float64(i)/float64(n))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BinaryLogLoss(yTrue, yProb)
	}
}
