// Package model defines the interfaces shared by scibench trainers and
// transformers.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that learns from a feature matrix and a target column.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces one prediction per row of X as an n×1 matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer learns column statistics in Fit and applies them in Transform.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Regressor predicts a real-valued target.
type Regressor interface {
	Fitter
	Predictor
	IsFitted() bool
}

// BinaryClassifier predicts a {0,1} label. Its Fit accepts y in {0,1}.
//
// DecisionFunction returns the raw score whose sign gives the label;
// PredictProba returns P(label = 1).
type BinaryClassifier interface {
	Fitter
	Predictor
	IsFitted() bool
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter exposes a model's hyperparameters for logging.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
