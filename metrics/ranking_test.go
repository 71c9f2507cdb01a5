package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

func TestAUC(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    *mat.VecDense
		scores   *mat.VecDense
		want     float64
		wantWarn bool
		wantErr  bool
	}{
		{name: "perfect", yTrue: vec(0, 0, 0, 1, 1, 1), scores: vec(0.1, 0.2, 0.3, 0.7, 0.8, 0.9), want: 1},
		{name: "inverted", yTrue: vec(0, 0, 0, 1, 1, 1), scores: vec(0.9, 0.8, 0.7, 0.3, 0.2, 0.1), want: 0},
		{name: "all tied", yTrue: vec(0, 1, 0, 1), scores: vec(0.5, 0.5, 0.5, 0.5), want: 0.5},
		{name: "typical", yTrue: vec(0, 0, 1, 1), scores: vec(0.1, 0.4, 0.35, 0.8), want: 0.75},
		// one positive/negative pair tied counts half
		{name: "partial tie", yTrue: vec(0, 1, 0, 1), scores: vec(0.2, 0.2, 0.1, 0.9), want: 0.875},
		{name: "negative scores", yTrue: vec(0, 1), scores: vec(-3, -1), want: 1},
		{name: "only positives", yTrue: vec(1, 1, 1), scores: vec(0.1, 0.4, 0.8), want: 0.5, wantWarn: true},
		{name: "only negatives", yTrue: vec(0, 0, 0), scores: vec(0.1, 0.4, 0.8), want: 0.5, wantWarn: true},
		{name: "non-binary labels", yTrue: vec(0, 0.5, 1), scores: vec(0.1, 0.5, 0.9), wantErr: true},
		{name: "dimension mismatch", yTrue: vec(0, 1), scores: vec(0.5), wantErr: true},
		{name: "empty", yTrue: vec(), scores: vec(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := collectWarnings(t)

			got, err := AUC(tt.yTrue, tt.scores)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.Equal(t, tt.wantWarn, len(*warnings) > 0)
		})
	}
}

func TestAUCMatrix(t *testing.T) {
	got, err := AUCMatrix(
		mat.NewDense(4, 1, []float64{0, 0, 1, 1}),
		mat.NewDense(4, 1, []float64{0.1, 0.4, 0.35, 0.8}),
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)

	_, err = AUCMatrix(nil, mat.NewDense(1, 1, []float64{0.5}))
	assert.Error(t, err)

	_, err = AUCMatrix(&mat.Dense{}, &mat.Dense{})
	assert.Error(t, err)
}

func TestROCCurve(t *testing.T) {
	fpr, tpr, thresholds, err := ROCCurve(vec(0, 0, 1, 1), vec(0.1, 0.4, 0.35, 0.8))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0.5, 0.5, 1}, fpr)
	assert.Equal(t, []float64{0, 0.5, 0.5, 1, 1}, tpr)
	assert.True(t, math.IsInf(thresholds[0], 1))
	assert.Equal(t, []float64{0.8, 0.4, 0.35, 0.1}, thresholds[1:])

	// trapezoid area under the curve matches AUC
	var area float64
	for i := 1; i < len(fpr); i++ {
		area += (fpr[i] - fpr[i-1]) * (tpr[i] + tpr[i-1]) / 2
	}
	auc, err := AUC(vec(0, 0, 1, 1), vec(0.1, 0.4, 0.35, 0.8))
	require.NoError(t, err)
	assert.InDelta(t, auc, area, 1e-12)
}

func TestROCCurve_TiedScoresCollapse(t *testing.T) {
	fpr, tpr, thresholds, err := ROCCurve(vec(0, 1, 0, 1), vec(0.5, 0.5, 0.5, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, fpr)
	assert.Equal(t, []float64{0, 1}, tpr)
	assert.Len(t, thresholds, 2)
}

func TestAveragePrecision(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		scores  *mat.VecDense
		want    float64
		wantErr bool
	}{
		{name: "perfect ranking", yTrue: vec(1, 1, 1, 0, 0), scores: vec(5, 4, 3, 2, 1), want: 1},
		// (1/3 + 2/4 + 3/5) / 3
		{name: "worst ranking", yTrue: vec(1, 1, 1, 0, 0), scores: vec(1, 2, 3, 4, 5), want: (1.0/3 + 2.0/4 + 3.0/5) / 3},
		{name: "interleaved", yTrue: vec(1, 0, 1, 0, 1), scores: vec(0.9, 0.8, 0.7, 0.6, 0.5), want: (1 + 2.0/3 + 3.0/5) / 3},
		{name: "single positive", yTrue: vec(0, 0, 1, 0, 0), scores: vec(0.1, 0.2, 0.3, 0.4, 0.5), want: 1.0 / 3},
		{name: "no positives", yTrue: vec(0, 0, 0, 0), scores: vec(1, 2, 3, 4), want: 0},
		{name: "non-binary labels", yTrue: vec(0, 0.5, 1), scores: vec(1, 2, 3), wantErr: true},
		{name: "empty", yTrue: vec(), scores: vec(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AveragePrecision(tt.yTrue, tt.scores)
			if tt.wantErr {
				var ve *errors.ValueError
				assert.True(t, errors.As(err, &ve))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func BenchmarkAUC(b *testing.B) {
	n := 1000
	yTrue := mat.NewVecDense(n, nil)
	scores := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if i >= n/2 {
			yTrue.SetVec(i, 1)
		}
		scores.SetVec(i, float64((i*37)%n)/float64(n))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AUC(yTrue, scores)
	}
}
