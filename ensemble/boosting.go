package ensemble

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
	"github.com/YuminosukeSato/scibench/tree"
)

// booster is the gradient boosting engine shared by the boosting trainers.
type booster struct {
	name      string
	params    params
	objective ObjectiveFunction
	state     *model.StateManager
	initScore float64
	trees     []*tree.Tree
	imp       []float64
	trainLoss []float64
}

func newBooster(name string, obj ObjectiveFunction, opts []Option) booster {
	return booster{
		name:      name,
		params:    newParams(boostingDefaults(), opts),
		objective: obj,
		state:     model.NewStateManager(name),
	}
}

func (b *booster) fit(X mat.Matrix, target []float64) error {
	p := b.params
	if err := p.validate(true); err != nil {
		return err
	}
	rows, cols := X.Dims()
	logger := p.logger.With(log.ModelNameKey, b.name)
	start := time.Now()

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.NumTreesKey, p.numTrees,
		log.NumLeavesKey, p.numLeaves,
		log.LearningRateKey, p.learningRate,
	)

	learner, err := newLearner(X, p)
	if err != nil {
		return err
	}

	data := rowsOf(X)
	b.initScore = b.objective.GetInitScore(target)
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = b.initScore
	}

	grad := make([]float64, rows)
	hess := make([]float64, rows)
	b.trees = make([]*tree.Tree, 0, p.numTrees)
	b.trainLoss = make([]float64, 0, p.numTrees)

	for iter := 0; iter < p.numTrees; iter++ {
		parallel.ParallelizeN(p.numThreads, rows, func(s, e int) {
			for i := s; i < e; i++ {
				grad[i] = b.objective.CalculateGradient(scores[i], target[i])
				hess[i] = b.objective.CalculateHessian(scores[i], target[i])
			}
		})

		rng := treeRNG(p.seed, iter)
		t := learner.Grow(sampleRows(rng, rows, p.baggingFraction), grad, hess, rng)
		for k := range t.Nodes {
			t.Nodes[k].LeafValue *= p.learningRate
		}
		b.trees = append(b.trees, t)

		parallel.ParallelizeN(p.numThreads, rows, func(s, e int) {
			for i := s; i < e; i++ {
				scores[i] += t.Predict(data[i])
			}
		})

		loss := 0.0
		for i := range scores {
			loss += b.objective.CalculateLoss(scores[i], target[i])
		}
		loss /= float64(rows)
		b.trainLoss = append(b.trainLoss, loss)

		if err := errors.CheckNumericalStability(b.name+".Fit", []float64{loss}); err != nil {
			return err
		}
		logger.Debug("Boosting round",
			log.IterationKey, iter,
			log.LossKey, loss,
			log.NumLeavesKey, t.NumLeaves,
		)
	}

	b.imp = importance(b.trees, cols)
	b.state.SetDimensions(cols, rows)
	b.state.SetFitted()

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.LossKey, b.trainLoss[len(b.trainLoss)-1],
	)
	return nil
}

func (b *booster) scores(method string, X mat.Matrix) ([]float64, error) {
	_, cols := X.Dims()
	if err := b.state.CheckFeatures(method, cols); err != nil {
		return nil, err
	}
	s := sumTrees(b.trees, X, b.params.numThreads)
	for i := range s {
		s[i] += b.initScore
	}
	return s, nil
}

func (b *booster) IsFitted() bool { return b.state.IsFitted() }

// NumTrees returns the number of boosting rounds performed.
func (b *booster) NumTrees() int { return len(b.trees) }

// InitScore returns the constant score the first tree starts from.
func (b *booster) InitScore() float64 { return b.initScore }

// TrainLoss returns the mean training loss after each round.
func (b *booster) TrainLoss() []float64 { return b.trainLoss }

// FeatureImportance returns total split gain per feature, normalized to
// sum to one.
func (b *booster) FeatureImportance() []float64 { return b.imp }

func (b *booster) GetParams() map[string]interface{} { return b.params.asMap() }

// GradientBoostingClassifier boosts trees on logistic loss.
type GradientBoostingClassifier struct {
	booster
}

// NewGradientBoostingClassifier creates a GradientBoostingClassifier with
// 100 rounds of 20-leaf trees, at least 10 rows per leaf and learning rate
// 0.2.
func NewGradientBoostingClassifier(opts ...Option) *GradientBoostingClassifier {
	return &GradientBoostingClassifier{
		booster: newBooster("GradientBoostingClassifier", NewBinaryLogLossObjective(), opts),
	}
}

// Fit trains on X and 0/1 labels y.
func (gb *GradientBoostingClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GradientBoostingClassifier.Fit")

	target, err := checkFitInput("GradientBoostingClassifier.Fit", X, y, true)
	if err != nil {
		return err
	}
	return gb.fit(X, target)
}

// DecisionFunction returns the raw log-odds score.
func (gb *GradientBoostingClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	s, err := gb.scores("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	return column(s), nil
}

// Predict returns 1 where the log-odds are positive and 0 elsewhere.
func (gb *GradientBoostingClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	s, err := gb.scores("Predict", X)
	if err != nil {
		return nil, err
	}
	return labels(s), nil
}

// PredictProba returns sigmoid(score).
func (gb *GradientBoostingClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	s, err := gb.scores("PredictProba", X)
	if err != nil {
		return nil, err
	}
	for i := range s {
		s[i] = errors.Sigmoid(s[i])
	}
	return column(s), nil
}

// GradientBoostingRegressor boosts trees on squared error.
type GradientBoostingRegressor struct {
	booster
}

// NewGradientBoostingRegressor creates a GradientBoostingRegressor with the
// same defaults as NewGradientBoostingClassifier.
func NewGradientBoostingRegressor(opts ...Option) *GradientBoostingRegressor {
	return &GradientBoostingRegressor{
		booster: newBooster("GradientBoostingRegressor", NewL2Objective(), opts),
	}
}

// Fit trains on X and real-valued y.
func (gb *GradientBoostingRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GradientBoostingRegressor.Fit")

	target, err := checkFitInput("GradientBoostingRegressor.Fit", X, y, false)
	if err != nil {
		return err
	}
	return gb.fit(X, target)
}

// Predict returns the boosted score per row.
func (gb *GradientBoostingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	s, err := gb.scores("Predict", X)
	if err != nil {
		return nil, err
	}
	return column(s), nil
}
