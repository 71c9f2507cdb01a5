// Package metrics evaluates regression and binary classification
// predictions. Binary labels are encoded as 0 and 1.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

const logLossEpsilon = 1e-15

// Confusion holds the counts of a binary confusion matrix.
type Confusion struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
}

// Total returns the number of samples counted.
func (c Confusion) Total() int {
	return c.TruePositive + c.FalsePositive + c.TrueNegative + c.FalseNegative
}

// BinaryMetrics is the summary EvaluateBinary returns.
type BinaryMetrics struct {
	Accuracy          float64
	PositivePrecision float64
	PositiveRecall    float64
	NegativePrecision float64
	NegativeRecall    float64
	F1Score           float64
	AUC               float64
	AUCPR             float64 // average precision
	LogLoss           float64
	Confusion         Confusion
}

// Accuracy returns the fraction of exactly matching labels. Labels need
// not be binary.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError returns 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix counts binary outcomes. Both vectors must hold only 0
// and 1.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (Confusion, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return Confusion{}, err
	}
	if err := checkBinary("ConfusionMatrix", yTrue); err != nil {
		return Confusion{}, err
	}
	if err := checkBinary("ConfusionMatrix", yPred); err != nil {
		return Confusion{}, err
	}

	var c Confusion
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i) == 1, yPred.AtVec(i) == 1
		switch {
		case t && p:
			c.TruePositive++
		case !t && p:
			c.FalsePositive++
		case !t && !p:
			c.TrueNegative++
		default:
			c.FalseNegative++
		}
	}
	return c, nil
}

// PrecisionScore returns TP/(TP+FP), or 0 with a warning when nothing was
// predicted positive.
func PrecisionScore(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.precision(true), nil
}

// RecallScore returns TP/(TP+FN), or 0 with a warning when there are no
// positive labels.
func RecallScore(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.recall(true), nil
}

// F1Score returns the harmonic mean of precision and recall for the
// positive class, or 0 with a warning when there are no positive
// predictions.
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.f1(), nil
}

func (c Confusion) precision(positive bool) float64 {
	hit, miss, name := c.TruePositive, c.FalsePositive, "PositivePrecision"
	if !positive {
		hit, miss, name = c.TrueNegative, c.FalseNegative, "NegativePrecision"
	}
	if hit+miss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(name, "no predicted samples", 0))
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

func (c Confusion) recall(positive bool) float64 {
	hit, miss, name := c.TruePositive, c.FalseNegative, "PositiveRecall"
	if !positive {
		hit, miss, name = c.TrueNegative, c.FalsePositive, "NegativeRecall"
	}
	if hit+miss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(name, "no true samples", 0))
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

// f1 uses 2TP/(2TP+FP+FN), which equals the harmonic mean whenever it is
// defined.
func (c Confusion) f1() float64 {
	if c.TruePositive+c.FalsePositive == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("F1Score", "no positive predictions", 0))
		return 0
	}
	denom := 2*c.TruePositive + c.FalsePositive + c.FalseNegative
	return 2 * float64(c.TruePositive) / float64(denom)
}

// BinaryLogLoss returns the mean negative log-likelihood of probabilities
// yProb for labels yTrue. Probabilities are clipped to [1e-15, 1-1e-15].
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yProb.AtVec(i), logLossEpsilon), 1-logLossEpsilon)
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// EvaluateBinary computes every binary metric. yTrue and yPred are n×1
// matrices of 0/1 labels; scores are n×1 positive-class probabilities
// used for AUC, AUCPR and log loss.
func EvaluateBinary(yTrue, yPred, scores mat.Matrix) (BinaryMetrics, error) {
	t, p, err := columnPair("EvaluateBinary", yTrue, yPred)
	if err != nil {
		return BinaryMetrics{}, err
	}
	_, s, err := columnPair("EvaluateBinary", yTrue, scores)
	if err != nil {
		return BinaryMetrics{}, err
	}

	c, err := ConfusionMatrix(t, p)
	if err != nil {
		return BinaryMetrics{}, err
	}

	m := BinaryMetrics{
		Accuracy:          float64(c.TruePositive+c.TrueNegative) / float64(c.Total()),
		PositivePrecision: c.precision(true),
		PositiveRecall:    c.recall(true),
		NegativePrecision: c.precision(false),
		NegativeRecall:    c.recall(false),
		F1Score:           c.f1(),
		Confusion:         c,
	}
	if m.AUC, err = AUC(t, s); err != nil {
		return BinaryMetrics{}, err
	}
	if m.AUCPR, err = AveragePrecision(t, s); err != nil {
		return BinaryMetrics{}, err
	}
	if m.LogLoss, err = BinaryLogLoss(t, s); err != nil {
		return BinaryMetrics{}, err
	}
	return m, nil
}

func checkBinary(op string, v *mat.VecDense) error {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); x != 0 && x != 1 {
			return errors.NewValueError(op, fmt.Sprintf("label %v at index %d is not 0 or 1", x, i))
		}
	}
	return nil
}
