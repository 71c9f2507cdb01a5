package harness

import (
	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/ensemble"
	"github.com/YuminosukeSato/scibench/internal/config"
	"github.com/YuminosukeSato/scibench/linear"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

func ensembleOptions(cfg config.Config, workers int, logger log.Logger) []ensemble.Option {
	opts := []ensemble.Option{
		ensemble.WithNumTrees(cfg.NumTrees),
		ensemble.WithNumLeaves(cfg.NumLeaves),
		ensemble.WithMinExamplesPerLeaf(cfg.MinExamplesPerLeaf),
		ensemble.WithMaxDepth(cfg.MaxDepth),
		ensemble.WithFeatureFraction(cfg.FeatureFraction),
		ensemble.WithBaggingFraction(cfg.BaggingFraction),
		ensemble.WithL2(cfg.L2),
		ensemble.WithMaxBins(cfg.MaxBins),
		ensemble.WithSeed(cfg.Seed),
		ensemble.WithNumThreads(workers),
		ensemble.WithLogger(logger),
	}
	if cfg.Algorithm == config.GradientBoosting {
		opts = append(opts, ensemble.WithLearningRate(cfg.LearningRate))
	}
	return opts
}

func newClassifier(cfg config.Config, workers int, logger log.Logger) model.BinaryClassifier {
	var clf model.BinaryClassifier
	switch cfg.Algorithm {
	case config.GradientBoosting:
		clf = ensemble.NewGradientBoostingClassifier(ensembleOptions(cfg, workers, logger)...)
	default:
		clf = ensemble.NewRandomForestClassifier(ensembleOptions(cfg, workers, logger)...)
	}
	logParams(logger, clf)
	return clf
}

func newRegressor(cfg config.Config, workers int, logger log.Logger) model.Regressor {
	var reg model.Regressor
	switch cfg.Algorithm {
	case config.OLS:
		reg = linear.NewOLSRegressor(
			linear.WithL2Regularization(cfg.L2),
			linear.WithLogger(logger),
		)
	case config.GradientBoosting:
		reg = ensemble.NewGradientBoostingRegressor(ensembleOptions(cfg, workers, logger)...)
	default:
		reg = ensemble.NewRandomForestRegressor(ensembleOptions(cfg, workers, logger)...)
	}
	logParams(logger, reg)
	return reg
}

func logParams(logger log.Logger, m interface{}) {
	if pg, ok := m.(model.ParameterGetter); ok {
		logger.Debug("Trainer configured", "params", pg.GetParams())
	}
}
