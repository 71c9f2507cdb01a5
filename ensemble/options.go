package ensemble

import (
	"runtime"

	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
	"github.com/YuminosukeSato/scibench/tree"
)

// params holds the hyperparameters shared by every ensemble trainer.
type params struct {
	numTrees        int
	numLeaves       int
	minLeaf         int
	maxDepth        int
	featureFraction float64
	baggingFraction float64
	learningRate    float64
	l2              float64
	maxBins         int
	seed            int64
	numThreads      int
	logger          log.Logger
}

func forestDefaults() params {
	return params{
		numTrees:        100,
		numLeaves:       128,
		minLeaf:         5,
		featureFraction: 1.0,
		baggingFraction: 0.7,
		maxBins:         255,
		seed:            42,
		numThreads:      runtime.NumCPU(),
	}
}

func boostingDefaults() params {
	return params{
		numTrees:        100,
		numLeaves:       20,
		minLeaf:         10,
		featureFraction: 1.0,
		baggingFraction: 1.0,
		learningRate:    0.2,
		maxBins:         255,
		seed:            42,
		numThreads:      runtime.NumCPU(),
	}
}

// Option configures an ensemble trainer.
type Option func(*params)

// WithNumTrees sets the number of trees (forest) or boosting rounds.
func WithNumTrees(n int) Option {
	return func(p *params) {
		p.numTrees = n
	}
}

// WithNumLeaves sets the maximum number of leaves per tree.
func WithNumLeaves(n int) Option {
	return func(p *params) {
		p.numLeaves = n
	}
}

// WithMinExamplesPerLeaf sets the minimum number of rows in a leaf.
func WithMinExamplesPerLeaf(n int) Option {
	return func(p *params) {
		p.minLeaf = n
	}
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(d int) Option {
	return func(p *params) {
		p.maxDepth = d
	}
}

// WithFeatureFraction sets the share of features each tree may split on.
func WithFeatureFraction(f float64) Option {
	return func(p *params) {
		p.featureFraction = f
	}
}

// WithBaggingFraction sets the share of rows sampled, without replacement,
// for each tree.
func WithBaggingFraction(f float64) Option {
	return func(p *params) {
		p.baggingFraction = f
	}
}

// WithLearningRate sets the shrinkage applied to each boosting round.
// Forests ignore it.
func WithLearningRate(lr float64) Option {
	return func(p *params) {
		p.learningRate = lr
	}
}

// WithL2 sets the L2 penalty on leaf values.
func WithL2(l2 float64) Option {
	return func(p *params) {
		p.l2 = l2
	}
}

// WithMaxBins sets the number of histogram bins per feature.
func WithMaxBins(n int) Option {
	return func(p *params) {
		p.maxBins = n
	}
}

// WithSeed fixes the random seed. Training is deterministic for a given
// seed regardless of the number of threads.
func WithSeed(seed int64) Option {
	return func(p *params) {
		p.seed = seed
	}
}

// WithNumThreads sets the number of worker goroutines. Values below 1 run
// sequentially.
func WithNumThreads(n int) Option {
	return func(p *params) {
		p.numThreads = n
	}
}

// WithLogger sets the logger used for training diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(p *params) {
		p.logger = logger
	}
}

func newParams(defaults params, opts []Option) params {
	p := defaults
	for _, opt := range opts {
		opt(&p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("ensemble")
	}
	return p
}

func (p params) validate(boosting bool) error {
	if p.numTrees < 1 {
		return errors.NewValidationError("num_trees", "must be positive", p.numTrees)
	}
	if !(p.baggingFraction > 0 && p.baggingFraction <= 1) {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", p.baggingFraction)
	}
	if p.maxBins < 2 || p.maxBins > tree.MaxBinsLimit {
		return errors.NewValidationError("max_bins", "must be in [2, 255]", p.maxBins)
	}
	if boosting && !(p.learningRate > 0) {
		return errors.NewValidationError("learning_rate", "must be positive", p.learningRate)
	}
	return p.treeParams().Validate()
}

func (p params) treeParams() tree.Params {
	return tree.Params{
		NumLeaves:          p.numLeaves,
		MinExamplesPerLeaf: p.minLeaf,
		FeatureFraction:    p.featureFraction,
		Lambda:             p.l2,
		MaxDepth:           p.maxDepth,
	}
}

func (p params) asMap() map[string]interface{} {
	return map[string]interface{}{
		"num_trees":             p.numTrees,
		"num_leaves":            p.numLeaves,
		"min_examples_per_leaf": p.minLeaf,
		"max_depth":             p.maxDepth,
		"feature_fraction":      p.featureFraction,
		"bagging_fraction":      p.baggingFraction,
		"learning_rate":         p.learningRate,
		"l2":                    p.l2,
		"max_bins":              p.maxBins,
		"seed":                  p.seed,
		"num_threads":           p.numThreads,
	}
}
