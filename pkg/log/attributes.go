package log

// Model and operation context.
const (
	// ModelNameKey identifies the trainer, e.g. "RandomForestClassifier".
	ModelNameKey = "model.name"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work, e.g. "ensemble".
	ComponentKey = "ml.component"

	// PhaseKey is one of the Phase* values below.
	PhaseKey = "ml.phase"

	TaskKey      = "ml.task"
	AlgorithmKey = "ml.algorithm"
)

// Data shape and provenance.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnsKey  = "data.columns"
	LabelKey    = "data.label"

	// DatasetPathKey is the file a dataset was loaded from.
	DatasetPathKey = "data.path"

	// SkippedRowsKey counts rows dropped before training, e.g. NaN rows in OLS.
	SkippedRowsKey = "data.skipped_rows"
)

// Timing and evaluation metrics.
const (
	DurationMsKey = "perf.duration_ms"

	AccuracyKey = "metrics.accuracy"
	F1ScoreKey  = "metrics.f1"
	RMSEKey     = "metrics.rmse"
	R2ScoreKey  = "metrics.r2_score"
	LossKey     = "metrics.loss"

	// IterationKey is the boosting round or tree index.
	IterationKey = "training.iteration"
)

// Hyperparameters.
const (
	NumTreesKey        = "hyperparams.num_trees"
	NumLeavesKey       = "hyperparams.num_leaves"
	MinLeafKey         = "hyperparams.min_examples_per_leaf"
	FeatureFractionKey = "hyperparams.feature_fraction"
	BaggingFractionKey = "hyperparams.bagging_fraction"
	LearningRateKey    = "hyperparams.learning_rate"
	RegularizationKey  = "hyperparams.regularization"
	MaxBinsKey         = "hyperparams.max_bins"
	RandomSeedKey      = "config.random_seed"
)

// Execution environment.
const (
	BackendKey = "infra.backend"
	WorkersKey = "infra.workers"
	CPUKey     = "infra.cpu"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationLoad      = "load"
	OperationEvaluate  = "evaluate"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
)
