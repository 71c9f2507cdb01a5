// Package cli wires the scibench command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scibench/internal/config"
	"github.com/YuminosukeSato/scibench/internal/harness"
	"github.com/YuminosukeSato/scibench/internal/report"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// flagValues receives the parsed flags. Only flags the user set override
// the configuration.
type flagValues struct {
	configPath      string
	dataDir         string
	label           string
	separator       string
	hasHeader       bool
	minLeaf         int
	featureFraction float64
	baggingFraction float64
	learningRate    float64
	l2              float64
	maxBins         int
	normalize       string
	seed            int64
	backend         string
	threads         int
	plot            string
	printHeader     bool
	logLevel        string
}

// runFunc executes a fully resolved configuration.
type runFunc func(cmd *cobra.Command, cfg config.Config, a config.Args) error

// NewRootCommand builds the scibench command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.LookupEnv, runHarness)
}

func newRootCommand(lookupEnv func(string) (string, bool), exec runFunc) *cobra.Command {
	fv := &flagValues{}
	cmd := &cobra.Command{
		Use:   "scibench <trainFile> <testFile> <task> <algorithm> [numberOfTrees] [numberOfLeaves]",
		Short: "Train and evaluate one model on CSV train/test files",
		Long: `scibench loads a training and a testing CSV file, trains one model and
prints a single CSV line of metrics.

  task:       binary | regression
  algorithm:  RandomForest (FastForest) | GradientBoosting (FastTree) | OLS

Binary runs report accuracy and F1, regression runs report RMSE and R².`,
		Example: `  scibench train.csv test.csv binary RandomForest 100 128
  scibench --normalize --data-dir ./data train.csv test.csv regression OLS`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, a, err := buildConfig(cmd, args, fv, lookupEnv)
			if err != nil {
				return err
			}
			return exec(cmd, cfg, a)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fv.configPath, "config", "", "yaml file with configuration defaults")
	f.StringVar(&fv.dataDir, "data-dir", "", "directory relative file names are resolved against")
	f.StringVar(&fv.label, "label", "target", "label column name, or zero-based index")
	f.StringVar(&fv.separator, "separator", ",", "field separator")
	f.BoolVar(&fv.hasHeader, "has-header", true, "files start with a header row; without one columns are named Column0, Column1, ...")
	f.IntVar(&fv.minLeaf, "min-leaf", 0, "minimum examples per leaf")
	f.Float64Var(&fv.featureFraction, "feature-fraction", 0, "share of features each tree may split on")
	f.Float64Var(&fv.baggingFraction, "bagging-fraction", 0, "share of rows sampled for each tree")
	f.Float64Var(&fv.learningRate, "learning-rate", 0, "boosting learning rate")
	f.Float64Var(&fv.l2, "l2", 0, "L2 regularization")
	f.IntVar(&fv.maxBins, "max-bins", 0, "histogram bins per feature (2-255)")
	f.StringVar(&fv.normalize, "normalize", "", "normalize features: standard or minmax")
	f.Lookup("normalize").NoOptDefVal = config.NormalizeStandard
	f.Int64Var(&fv.seed, "seed", 0, "random seed")
	f.StringVar(&fv.backend, "backend", "auto", "compute backend: auto, sequential or parallel (env "+config.EnvBackend+")")
	f.IntVar(&fv.threads, "threads", 0, "worker count for the parallel backend, 0 for all cores")
	f.StringVar(&fv.plot, "plot", "", "write a plot of the test set to this file")
	f.BoolVar(&fv.printHeader, "print-header", true, "print the CSV header line")
	f.StringVar(&fv.logLevel, "log-level", "warn", "debug, info, warn or error (env "+config.EnvLogLevel+")")

	return cmd
}

// buildConfig layers defaults, the yaml file, the environment, flags and
// positional arguments, in increasing precedence.
func buildConfig(cmd *cobra.Command, args []string, fv *flagValues, lookupEnv func(string) (string, bool)) (config.Config, config.Args, error) {
	a, err := config.ParseArgs(args)
	if err != nil {
		return config.Config{}, config.Args{}, err
	}

	cfg := config.Default(a.Algorithm)
	if fv.configPath != "" {
		if cfg, err = config.Load(fv.configPath, cfg); err != nil {
			return config.Config{}, config.Args{}, err
		}
	}
	cfg.ApplyEnv(lookupEnv)

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("data-dir", func() { cfg.DataDir = fv.dataDir })
	set("label", func() { cfg.Label = fv.label })
	set("separator", func() { cfg.Separator = fv.separator })
	set("has-header", func() { cfg.HasHeader = fv.hasHeader })
	set("min-leaf", func() { cfg.MinExamplesPerLeaf = fv.minLeaf })
	set("feature-fraction", func() { cfg.FeatureFraction = fv.featureFraction })
	set("bagging-fraction", func() { cfg.BaggingFraction = fv.baggingFraction })
	set("learning-rate", func() { cfg.LearningRate = fv.learningRate })
	set("l2", func() { cfg.L2 = fv.l2 })
	set("max-bins", func() { cfg.MaxBins = fv.maxBins })
	set("normalize", func() { cfg.Normalize = fv.normalize })
	set("seed", func() { cfg.Seed = fv.seed })
	set("backend", func() { cfg.Backend = fv.backend })
	set("threads", func() { cfg.Threads = fv.threads })
	set("plot", func() { cfg.Plot = fv.plot })
	set("print-header", func() { cfg.PrintHeader = fv.printHeader })
	set("log-level", func() { cfg.LogLevel = fv.logLevel })

	cfg.ApplyArgs(a)
	return cfg, a, cfg.Validate()
}

func runHarness(cmd *cobra.Command, cfg config.Config, a config.Args) error {
	console := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}
	if err := log.SetupLoggerWithWriter(console, cfg.LogLevel); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("scibench")

	if !a.Algorithm.IsTreeEnsemble() && (a.NumTrees > 0 || a.NumLeaves > 0) {
		logger.Debug("Tree and leaf counts ignored", log.AlgorithmKey, string(a.Algorithm))
	}

	res, err := harness.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), res, cfg.PrintHeader)
}

// Execute runs the command with os.Args and returns the process exit
// code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		log.GetLogger().Error("scibench failed", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
