package ensemble

import (
	"math"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// ObjectiveFunction supplies per-row gradients of a loss with respect to
// the raw score.
type ObjectiveFunction interface {
	CalculateGradient(prediction, target float64) float64
	CalculateHessian(prediction, target float64) float64
	CalculateLoss(prediction, target float64) float64

	// GetInitScore is the constant score that minimizes the loss.
	GetInitScore(targets []float64) float64

	Name() string
}

// L2Objective is squared error.
type L2Objective struct{}

func NewL2Objective() *L2Objective {
	return &L2Objective{}
}

func (o *L2Objective) CalculateGradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *L2Objective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *L2Objective) CalculateLoss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

func (o *L2Objective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	return sum / float64(len(targets))
}

func (o *L2Objective) Name() string {
	return "regression"
}

// BinaryLogLossObjective is logistic loss on targets in {0, 1}; the raw
// score is the log-odds of the positive class.
type BinaryLogLossObjective struct{}

func NewBinaryLogLossObjective() *BinaryLogLossObjective {
	return &BinaryLogLossObjective{}
}

const probEpsilon = 1e-15

func (o *BinaryLogLossObjective) CalculateGradient(prediction, target float64) float64 {
	return errors.Sigmoid(prediction) - target
}

func (o *BinaryLogLossObjective) CalculateHessian(prediction, target float64) float64 {
	p := errors.Sigmoid(prediction)
	return math.Max(p*(1-p), probEpsilon)
}

func (o *BinaryLogLossObjective) CalculateLoss(prediction, target float64) float64 {
	p := math.Min(math.Max(errors.Sigmoid(prediction), probEpsilon), 1-probEpsilon)
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

func (o *BinaryLogLossObjective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	pos := 0.0
	for _, t := range targets {
		pos += t
	}
	p := math.Min(math.Max(pos/float64(len(targets)), probEpsilon), 1-probEpsilon)
	return math.Log(p / (1 - p))
}

func (o *BinaryLogLossObjective) Name() string {
	return "binary"
}
