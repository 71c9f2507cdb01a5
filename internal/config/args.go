package config

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// Algorithm names a trainer.
type Algorithm string

const (
	RandomForest     Algorithm = "RandomForest"
	GradientBoosting Algorithm = "GradientBoosting"
	OLS              Algorithm = "OLS"
)

// IsTreeEnsemble reports whether the algorithm takes tree and leaf counts.
func (a Algorithm) IsTreeEnsemble() bool {
	return a == RandomForest || a == GradientBoosting
}

// ParseAlgorithm parses an algorithm name, ignoring case. FastForest and
// FastTree are accepted for RandomForest and GradientBoosting.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "randomforest", "fastforest":
		return RandomForest, nil
	case "gradientboosting", "fasttree":
		return GradientBoosting, nil
	case "ols":
		return OLS, nil
	default:
		return "", errors.NewValidationError("algorithm", "must be RandomForest, GradientBoosting or OLS", s)
	}
}

// Args is the positional command line.
type Args struct {
	TrainFile string
	TestFile  string
	Task      data.Task
	Algorithm Algorithm
	NumTrees  int // 0 when absent
	NumLeaves int // 0 when absent
}

// ParseArgs parses
//
//	<trainFile> <testFile> <task> <algorithm> [numberOfTrees] [numberOfLeaves]
func ParseArgs(args []string) (Args, error) {
	if len(args) < 4 || len(args) > 6 {
		return Args{}, errors.NewValidationError("args",
			"usage: <trainFile> <testFile> <task> <algorithm> [numberOfTrees] [numberOfLeaves]", len(args))
	}

	a := Args{TrainFile: args[0], TestFile: args[1]}
	var err error
	if a.Task, err = data.ParseTask(args[2]); err != nil {
		return Args{}, err
	}
	if a.Algorithm, err = ParseAlgorithm(args[3]); err != nil {
		return Args{}, err
	}
	if a.Algorithm == OLS && a.Task == data.TaskBinary {
		return Args{}, errors.NewValidationError("algorithm", "OLS supports only the regression task", args[3])
	}

	if len(args) > 4 {
		if a.NumTrees, err = positiveInt("numberOfTrees", args[4]); err != nil {
			return Args{}, err
		}
	}
	if len(args) > 5 {
		if a.NumLeaves, err = positiveInt("numberOfLeaves", args[5]); err != nil {
			return Args{}, err
		}
	}
	return a, nil
}

func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(name, "must be a positive integer", s)
	}
	return n, nil
}
