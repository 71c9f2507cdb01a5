// Package config holds the run configuration: per-algorithm defaults,
// an optional yaml file, environment overrides and positional arguments.
package config

import (
	stderrors "errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/internal/backend"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// Environment variables read by ApplyEnv.
const (
	EnvBackend  = "SCIBENCH_BACKEND"
	EnvLogLevel = "SCIBENCH_LOG_LEVEL"
)

// Normalization modes.
const (
	NormalizeNone     = ""
	NormalizeStandard = "standard"
	NormalizeMinMax   = "minmax"
)

// Config is everything one harness run needs.
type Config struct {
	TrainFile string    `yaml:"-"`
	TestFile  string    `yaml:"-"`
	Task      data.Task `yaml:"-"`
	Algorithm Algorithm `yaml:"-"`

	DataDir   string `yaml:"data_dir"`
	Label     string `yaml:"label"`
	Separator string `yaml:"separator"`
	HasHeader bool   `yaml:"has_header"`

	NumTrees           int     `yaml:"num_trees"`
	NumLeaves          int     `yaml:"num_leaves"`
	MinExamplesPerLeaf int     `yaml:"min_examples_per_leaf"`
	MaxDepth           int     `yaml:"max_depth"`
	FeatureFraction    float64 `yaml:"feature_fraction"`
	BaggingFraction    float64 `yaml:"bagging_fraction"`
	LearningRate       float64 `yaml:"learning_rate"`
	L2                 float64 `yaml:"l2"`
	MaxBins            int     `yaml:"max_bins"`
	Normalize          string  `yaml:"normalize"`
	Seed               int64   `yaml:"seed"`

	Backend string `yaml:"backend"`
	Threads int    `yaml:"threads"`

	Plot        string `yaml:"plot"`
	PrintHeader bool   `yaml:"print_header"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the defaults for alg.
func Default(alg Algorithm) Config {
	cfg := Config{
		Algorithm:   alg,
		Label:       "target",
		Separator:   ",",
		HasHeader:   true,
		MaxBins:     255,
		Seed:        42,
		Backend:     backend.Auto,
		PrintHeader: true,
		LogLevel:    "warn",
	}

	switch alg {
	case RandomForest:
		cfg.NumTrees = 100
		cfg.NumLeaves = 128
		cfg.MinExamplesPerLeaf = 5
		cfg.FeatureFraction = 1.0
		cfg.BaggingFraction = 0.7
	case GradientBoosting:
		cfg.NumTrees = 100
		cfg.NumLeaves = 20
		cfg.MinExamplesPerLeaf = 10
		cfg.FeatureFraction = 1.0
		cfg.BaggingFraction = 1.0
		cfg.LearningRate = 0.2
	case OLS:
		cfg.L2 = 1e-6
	}
	return cfg
}

// Load overlays the yaml file at path onto base. Keys absent from the file
// keep their value from base; unknown keys are an error.
func Load(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f, path, base)
}

// Decode is Load for an open reader.
func Decode(r io.Reader, name string, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if stderrors.Is(err, io.EOF) {
			return base, nil
		}
		return base, errors.Wrapf(err, "decode config %s", name)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides using lookup, normally
// os.LookupEnv. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBackend); ok && strings.TrimSpace(v) != "" {
		c.Backend = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = strings.TrimSpace(v)
	}
}

// ApplyArgs copies the positional arguments into c. Tree and leaf counts
// only apply to tree ensembles.
func (c *Config) ApplyArgs(a Args) {
	c.TrainFile = a.TrainFile
	c.TestFile = a.TestFile
	c.Task = a.Task
	c.Algorithm = a.Algorithm
	if !a.Algorithm.IsTreeEnsemble() {
		return
	}
	if a.NumTrees > 0 {
		c.NumTrees = a.NumTrees
	}
	if a.NumLeaves > 0 {
		c.NumLeaves = a.NumLeaves
	}
}

// SeparatorRune returns the field separator.
func (c Config) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

// Validate checks every field that can be set from outside.
func (c Config) Validate() error {
	if c.TrainFile == "" {
		return errors.NewValidationError("trainFile", "must not be empty", c.TrainFile)
	}
	if c.TestFile == "" {
		return errors.NewValidationError("testFile", "must not be empty", c.TestFile)
	}
	if c.Task != data.TaskBinary && c.Task != data.TaskRegression {
		return errors.NewValidationError("task", "must be binary or regression", c.Task)
	}
	if c.Algorithm == OLS && c.Task == data.TaskBinary {
		return errors.NewValidationError("algorithm", "OLS supports only the regression task", c.Algorithm)
	}
	if strings.TrimSpace(c.Label) == "" {
		return errors.NewValidationError("label", "must not be empty", c.Label)
	}
	if utf8.RuneCountInString(c.Separator) != 1 || c.Separator == "\n" || c.Separator == "\r" || c.Separator == "\"" {
		return errors.NewValidationError("separator", "must be a single character other than a quote or newline", c.Separator)
	}

	switch c.Normalize {
	case NormalizeNone, NormalizeStandard, NormalizeMinMax:
	default:
		return errors.NewValidationError("normalize", "must be standard or minmax", c.Normalize)
	}
	if c.Threads < 0 {
		return errors.NewValidationError("threads", "must be non-negative", c.Threads)
	}
	switch strings.ToLower(c.Backend) {
	case backend.Auto, backend.Sequential, backend.Parallel:
	default:
		return errors.NewValidationError("backend", "must be one of auto, sequential, parallel", c.Backend)
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Algorithm == OLS {
		if !(c.L2 >= 0) {
			return errors.NewValidationError("l2", "must be non-negative", c.L2)
		}
		return nil
	}
	return c.validateTrees()
}

func (c Config) validateTrees() error {
	if c.NumTrees < 1 {
		return errors.NewValidationError("numberOfTrees", "must be positive", c.NumTrees)
	}
	if c.NumLeaves < 2 {
		return errors.NewValidationError("numberOfLeaves", "must be at least 2", c.NumLeaves)
	}
	if c.MinExamplesPerLeaf < 1 {
		return errors.NewValidationError("min_examples_per_leaf", "must be positive", c.MinExamplesPerLeaf)
	}
	if c.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", c.MaxDepth)
	}
	if !(c.FeatureFraction > 0 && c.FeatureFraction <= 1) {
		return errors.NewValidationError("feature_fraction", "must be in (0, 1]", c.FeatureFraction)
	}
	if !(c.BaggingFraction > 0 && c.BaggingFraction <= 1) {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", c.BaggingFraction)
	}
	if c.Algorithm == GradientBoosting && !(c.LearningRate > 0) {
		return errors.NewValidationError("learning_rate", "must be positive", c.LearningRate)
	}
	if !(c.L2 >= 0) {
		return errors.NewValidationError("l2", "must be non-negative", c.L2)
	}
	if c.MaxBins < 2 || c.MaxBins > 255 {
		return errors.NewValidationError("max_bins", "must be in [2, 255]", c.MaxBins)
	}
	return nil
}
