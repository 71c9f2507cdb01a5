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

// forest is the bagging engine shared by the forest trainers. Every tree is
// a least-squares fit of the target on its own row sample; the ensemble
// output is the mean tree output.
type forest struct {
	name   string
	params params
	state  *model.StateManager
	trees  []*tree.Tree
	imp    []float64
}

func newForest(name string, opts []Option) forest {
	return forest{
		name:   name,
		params: newParams(forestDefaults(), opts),
		state:  model.NewStateManager(name),
	}
}

func (f *forest) fit(X mat.Matrix, target []float64) error {
	p := f.params
	if err := p.validate(false); err != nil {
		return err
	}
	rows, cols := X.Dims()
	logger := p.logger.With(log.ModelNameKey, f.name)
	start := time.Now()

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.NumTreesKey, p.numTrees,
		log.NumLeavesKey, p.numLeaves,
		log.WorkersKey, p.numThreads,
	)

	learner, err := newLearner(X, p)
	if err != nil {
		return err
	}

	// With a zero score, L2 gradients are -y and hessians 1, so each leaf
	// value is the mean target of its rows.
	obj := NewL2Objective()
	grad := make([]float64, rows)
	hess := make([]float64, rows)
	for i, y := range target {
		grad[i] = obj.CalculateGradient(0, y)
		hess[i] = obj.CalculateHessian(0, y)
	}

	trees := make([]*tree.Tree, p.numTrees)
	parallel.Map(p.numThreads, p.numTrees, func(i int) {
		rng := treeRNG(p.seed, i)
		bag := sampleRows(rng, rows, p.baggingFraction)
		trees[i] = learner.Grow(bag, grad, hess, rng)
	})

	f.trees = trees
	f.imp = importance(trees, cols)
	f.state.SetDimensions(cols, rows)
	f.state.SetFitted()

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (f *forest) scores(method string, X mat.Matrix) ([]float64, error) {
	_, cols := X.Dims()
	if err := f.state.CheckFeatures(method, cols); err != nil {
		return nil, err
	}
	s := sumTrees(f.trees, X, f.params.numThreads)
	n := float64(len(f.trees))
	for i := range s {
		s[i] /= n
	}
	return s, nil
}

func (f *forest) IsFitted() bool { return f.state.IsFitted() }

// NumTrees returns the number of fitted trees.
func (f *forest) NumTrees() int { return len(f.trees) }

// Trees returns the fitted trees.
func (f *forest) Trees() []*tree.Tree { return f.trees }

// FeatureImportance returns total split gain per feature, normalized to
// sum to one.
func (f *forest) FeatureImportance() []float64 { return f.imp }

func (f *forest) GetParams() map[string]interface{} { return f.params.asMap() }

// RandomForestClassifier is a bagged forest for binary labels. Labels 0 and
// 1 are regressed as -1 and +1; the decision score is the mean tree output.
type RandomForestClassifier struct {
	forest
}

// NewRandomForestClassifier creates a RandomForestClassifier with 100 trees
// of up to 128 leaves, at least 5 rows per leaf, all features and 70% row
// bagging.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	return &RandomForestClassifier{forest: newForest("RandomForestClassifier", opts)}
}

// Fit trains on X and 0/1 labels y.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestClassifier.Fit")

	target, err := checkFitInput("RandomForestClassifier.Fit", X, y, true)
	if err != nil {
		return err
	}
	for i, v := range target {
		target[i] = 2*v - 1
	}
	return rf.fit(X, target)
}

// DecisionFunction returns the mean tree output in [-1, 1].
func (rf *RandomForestClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	s, err := rf.scores("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	return column(s), nil
}

// Predict returns 1 where the decision score is positive and 0 elsewhere.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	s, err := rf.scores("Predict", X)
	if err != nil {
		return nil, err
	}
	return labels(s), nil
}

// PredictProba maps the decision score linearly onto [0, 1].
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	s, err := rf.scores("PredictProba", X)
	if err != nil {
		return nil, err
	}
	for i := range s {
		s[i] = (s[i] + 1) / 2
	}
	return column(s), nil
}

// RandomForestRegressor is a bagged forest predicting the mean tree output.
type RandomForestRegressor struct {
	forest
}

// NewRandomForestRegressor creates a RandomForestRegressor with the same
// defaults as NewRandomForestClassifier.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	return &RandomForestRegressor{forest: newForest("RandomForestRegressor", opts)}
}

// Fit trains on X and real-valued y.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")

	target, err := checkFitInput("RandomForestRegressor.Fit", X, y, false)
	if err != nil {
		return err
	}
	return rf.fit(X, target)
}

// Predict returns the mean tree output per row.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	s, err := rf.scores("Predict", X)
	if err != nil {
		return nil, err
	}
	return column(s), nil
}
