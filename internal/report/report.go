// Package report renders a finished run as one CSV line and, optionally,
// a PNG plot.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/metrics"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

var (
	binaryHeader = []string{
		"algorithm", "all workflow time[ms]",
		"training accuracy", "testing accuracy",
		"training F1 score", "testing F1 score",
	}
	regressionHeader = []string{
		"algorithm", "all workflow time[ms]",
		"training RMSE", "testing RMSE",
		"training R2 score", "testing R2 score",
	}
)

// Result is the outcome of one harness run.
type Result struct {
	Algorithm string // e.g. "RandomForest"
	Task      data.Task
	Elapsed   time.Duration

	TrainBinary metrics.BinaryMetrics
	TestBinary  metrics.BinaryMetrics

	TrainRegression metrics.RegressionMetrics
	TestRegression  metrics.RegressionMetrics

	// Test-set vectors kept for plotting. Scores is the positive-class
	// probability and is empty for regression.
	TestTruth     []float64
	TestPredicted []float64
	TestScores    []float64
}

// Name is the algorithm cell: the algorithm followed by the task in title
// case, e.g. "RandomForestBinary".
func (r *Result) Name() string {
	switch r.Task {
	case data.TaskBinary:
		return r.Algorithm + "Binary"
	default:
		return r.Algorithm + "Regression"
	}
}

// Header returns the column names for task.
func Header(task data.Task) []string {
	if task == data.TaskBinary {
		return append([]string(nil), binaryHeader...)
	}
	return append([]string(nil), regressionHeader...)
}

// Row returns the data cells for r.
func Row(r *Result) []string {
	row := []string{r.Name(), strconv.FormatInt(r.Elapsed.Milliseconds(), 10)}
	if r.Task == data.TaskBinary {
		return append(row,
			formatFloat(r.TrainBinary.Accuracy), formatFloat(r.TestBinary.Accuracy),
			formatFloat(r.TrainBinary.F1Score), formatFloat(r.TestBinary.F1Score),
		)
	}
	return append(row,
		formatFloat(r.TrainRegression.RMSE), formatFloat(r.TestRegression.RMSE),
		formatFloat(r.TrainRegression.R2), formatFloat(r.TestRegression.R2),
	)
}

// Write writes the optional header line and the data row for r.
func Write(w io.Writer, r *Result, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(Header(r.Task)); err != nil {
			return errors.Wrap(err, "write header")
		}
	}
	if err := cw.Write(Row(r)); err != nil {
		return errors.Wrap(err, "write row")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush report")
}

// formatFloat uses the shortest representation that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
