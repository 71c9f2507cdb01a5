// Package harness runs one load, fit and evaluate workflow.
package harness

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/internal/backend"
	"github.com/YuminosukeSato/scibench/internal/config"
	"github.com/YuminosukeSato/scibench/internal/report"
	"github.com/YuminosukeSato/scibench/metrics"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
	"github.com/YuminosukeSato/scibench/preprocessing"
)

// Result is the outcome of Run.
type Result = report.Result

// Run executes the workflow described by cfg. The elapsed time covers
// loading through evaluation; plotting is not timed.
func Run(ctx context.Context, cfg config.Config, logger log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.GetLoggerWithName("harness")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With(log.TaskKey, cfg.Task.String(), log.AlgorithmKey, string(cfg.Algorithm))

	trainPath := resolve(cfg.DataDir, cfg.TrainFile)
	testPath := resolve(cfg.DataDir, cfg.TestFile)
	if err := requireFile("trainFile", trainPath); err != nil {
		return nil, err
	}
	if err := requireFile("testFile", testPath); err != nil {
		return nil, err
	}

	be, err := backend.Select(cfg.Backend, cfg.Threads)
	if err != nil {
		return nil, err
	}
	logger.Info("Compute backend selected",
		log.BackendKey, be.Name,
		log.WorkersKey, be.Workers,
		log.CPUKey, be.CPU.Brand,
	)

	start := time.Now()

	if err := checkContext(ctx, "loading"); err != nil {
		return nil, err
	}
	train, err := loadDataset(trainPath, cfg, logger)
	if err != nil {
		return nil, err
	}
	test, err := loadDataset(testPath, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, "preprocessing"); err != nil {
		return nil, err
	}
	XTrain, XTest, err := assembleFeatures(train, test, cfg, logger)
	if err != nil {
		return nil, err
	}
	yTrain, err := train.Vector(train.Schema().Label)
	if err != nil {
		return nil, err
	}
	yTest, err := test.Vector(test.Schema().Label)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, "training"); err != nil {
		return nil, err
	}
	result := &Result{Algorithm: string(cfg.Algorithm), Task: cfg.Task}
	if cfg.Task == data.TaskBinary {
		err = runBinary(ctx, newClassifier(cfg, be.Workers, logger), XTrain, yTrain, XTest, yTest, result, logger)
	} else {
		err = runRegression(ctx, newRegressor(cfg, be.Workers, logger), XTrain, yTrain, XTest, yTest, result, logger)
	}
	if err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(start)

	logger.Info("Workflow completed", log.DurationMsKey, result.Elapsed.Milliseconds())

	if cfg.Plot != "" {
		err := errors.SafeExecute("SavePlot", func() error {
			return report.SavePlot(cfg.Plot, result)
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Plot saved", log.DatasetPathKey, cfg.Plot)
	}
	return result, nil
}

func runBinary(ctx context.Context, clf model.BinaryClassifier, XTrain, yTrain, XTest, yTest mat.Matrix, result *Result, logger log.Logger) error {
	if err := clf.Fit(XTrain, yTrain); err != nil {
		return err
	}
	if err := checkContext(ctx, "evaluation"); err != nil {
		return err
	}

	evaluate := func(phase string, X, y mat.Matrix) (metrics.BinaryMetrics, mat.Matrix, mat.Matrix, error) {
		pred, err := clf.Predict(X)
		if err != nil {
			return metrics.BinaryMetrics{}, nil, nil, err
		}
		proba, err := clf.PredictProba(X)
		if err != nil {
			return metrics.BinaryMetrics{}, nil, nil, err
		}
		m, err := metrics.EvaluateBinary(y, pred, proba)
		if err != nil {
			return metrics.BinaryMetrics{}, nil, nil, err
		}
		logger.Info("Evaluation",
			log.PhaseKey, phase,
			log.AccuracyKey, m.Accuracy,
			log.F1ScoreKey, m.F1Score,
			"metrics.auc", m.AUC,
			"metrics.auprc", m.AUCPR,
			log.LossKey, m.LogLoss,
		)
		return m, pred, proba, nil
	}

	var err error
	if result.TrainBinary, _, _, err = evaluate(log.PhaseTraining, XTrain, yTrain); err != nil {
		return err
	}
	m, pred, proba, err := evaluate(log.PhaseTesting, XTest, yTest)
	if err != nil {
		return err
	}
	result.TestBinary = m
	result.TestTruth = mat.Col(nil, 0, yTest)
	result.TestPredicted = mat.Col(nil, 0, pred)
	result.TestScores = mat.Col(nil, 0, proba)
	return nil
}

func runRegression(ctx context.Context, reg model.Regressor, XTrain, yTrain, XTest, yTest mat.Matrix, result *Result, logger log.Logger) error {
	if err := reg.Fit(XTrain, yTrain); err != nil {
		return err
	}
	if err := checkContext(ctx, "evaluation"); err != nil {
		return err
	}

	evaluate := func(phase string, X, y mat.Matrix) (metrics.RegressionMetrics, mat.Matrix, error) {
		pred, err := reg.Predict(X)
		if err != nil {
			return metrics.RegressionMetrics{}, nil, err
		}
		m, err := metrics.EvaluateRegression(y, pred)
		if err != nil {
			return metrics.RegressionMetrics{}, nil, err
		}
		logger.Info("Evaluation",
			log.PhaseKey, phase,
			log.RMSEKey, m.RMSE,
			log.R2ScoreKey, m.R2,
			"metrics.mae", m.MAE,
		)
		return m, pred, nil
	}

	var err error
	if result.TrainRegression, _, err = evaluate(log.PhaseTraining, XTrain, yTrain); err != nil {
		return err
	}
	m, pred, err := evaluate(log.PhaseTesting, XTest, yTest)
	if err != nil {
		return err
	}
	result.TestRegression = m
	result.TestTruth = mat.Col(nil, 0, yTest)
	result.TestPredicted = mat.Col(nil, 0, pred)
	return nil
}

// loadDataset infers the schema from the file's own header and loads it.
func loadDataset(path string, cfg config.Config, logger log.Logger) (*data.Dataset, error) {
	sep := cfg.SeparatorRune()
	header, err := data.ReadHeader(path, sep)
	if err != nil {
		return nil, err
	}
	if !cfg.HasHeader {
		// the first line is data; only its width is used
		header = data.PositionalHeader(len(header))
	}
	label, err := data.ResolveLabel(header, cfg.Label)
	if err != nil {
		return nil, errors.Wrapf(err, "schema for %s", path)
	}
	schema, err := data.InferSchema(header, label, cfg.Task)
	if err != nil {
		return nil, errors.Wrapf(err, "schema for %s", path)
	}
	loader := data.NewTextLoader(schema,
		data.WithSeparator(sep),
		data.WithHasHeader(cfg.HasHeader),
		data.WithLogger(logger),
	)
	return loader.Load(path)
}

// assembleFeatures concatenates the training feature columns, matched by
// name in the test set, and optionally normalizes them with statistics
// from the training set.
func assembleFeatures(train, test *data.Dataset, cfg config.Config, logger log.Logger) (mat.Matrix, mat.Matrix, error) {
	features := train.Schema().FeatureNames(train.Schema().Label)
	concat := preprocessing.NewColumnConcatenator(preprocessing.DefaultFeaturesColumn, features...)

	XTrain, err := concat.FitTransform(train)
	if err != nil {
		return nil, nil, err
	}
	XTest, err := concat.Transform(test)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Features assembled",
		log.OperationKey, log.OperationTransform,
		log.ColumnsKey, train.NumColumns(),
		log.FeaturesKey, len(features),
	)

	scaler := newScaler(cfg.Normalize)
	if scaler == nil {
		return XTrain, XTest, nil
	}
	scaledTrain, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, nil, err
	}
	scaledTest, err := scaler.Transform(XTest)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Features normalized", log.PhaseKey, log.PhasePreprocessing, "normalize", cfg.Normalize)
	return scaledTrain, scaledTest, nil
}

func newScaler(mode string) model.Transformer {
	switch mode {
	case config.NormalizeStandard:
		return preprocessing.NewStandardScalerDefault()
	case config.NormalizeMinMax:
		return preprocessing.NewMinMaxScalerDefault()
	default:
		return nil
	}
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func requireFile(param, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewValidationError(param, "file does not exist", path)
	}
	if info.IsDir() {
		return errors.NewValidationError(param, "is a directory", path)
	}
	return nil
}

func checkContext(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "cancelled before %s", stage)
	}
	return nil
}
