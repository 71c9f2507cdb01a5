// Package scibench trains and evaluates tree ensembles and linear models on
// CSV datasets.
//
// The command line harness in cmd/scibench loads a training and a testing
// file, infers a column schema from each header, concatenates the feature
// columns, trains one model and prints a single CSV line of metrics:
//
//	scibench train.csv test.csv binary RandomForest 100 128
//	scibench --normalize train.csv test.csv regression OLS
//
// # Library
//
// The harness is a thin layer over packages that can be used on their own:
//
//   - data: header sniffing, schema inference and CSV loading
//   - preprocessing: feature concatenation, standard and min-max scaling
//   - tree: feature binning and the histogram-based leaf-wise learner
//   - ensemble: random forest and gradient boosting, binary and regression
//   - linear: ordinary least squares with an optional ridge penalty
//   - metrics: accuracy, F1, AUC, RMSE, R² and friends
//
// Every trainer follows the same contract:
//
//	clf := ensemble.NewRandomForestClassifier(
//	    ensemble.WithNumTrees(100),
//	    ensemble.WithNumLeaves(128),
//	)
//	if err := clf.Fit(XTrain, yTrain); err != nil {
//	    return err
//	}
//	pred, err := clf.Predict(XTest)
//
// Feature matrices are gonum mat.Matrix values; targets are n×1 matrices
// with binary labels encoded as 0 and 1.
//
// # Errors and logging
//
// Errors come from pkg/errors and carry stack traces. Typed errors such as
// NotFittedError, DimensionError and ParseError can be matched with
// errors.As. Structured logs go through pkg/log, which is backed by zerolog.
package scibench
