package cli

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scibench/internal/config"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// resolve runs the command without training and returns the configuration
// it would have used.
func resolve(t *testing.T, env map[string]string, args ...string) (config.Config, error) {
	t.Helper()
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var got config.Config
	cmd := newRootCommand(lookup, func(_ *cobra.Command, cfg config.Config, _ config.Args) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return got, err
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("num_trees: 10\nnum_leaves: 8\nbackend: parallel\nlog_level: info\nseed: 7\n"), 0o644))

	t.Run("defaults", func(t *testing.T) {
		cfg, err := resolve(t, nil, "a.csv", "b.csv", "binary", "RandomForest")
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.NumTrees)
		assert.Equal(t, 128, cfg.NumLeaves)
		assert.Equal(t, "auto", cfg.Backend)
		assert.Equal(t, config.NormalizeNone, cfg.Normalize)
	})

	t.Run("yaml over defaults", func(t *testing.T) {
		cfg, err := resolve(t, nil, "--config", yamlPath, "a.csv", "b.csv", "binary", "RandomForest")
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.NumTrees)
		assert.Equal(t, "parallel", cfg.Backend)
		assert.Equal(t, int64(7), cfg.Seed)
	})

	t.Run("env over yaml", func(t *testing.T) {
		env := map[string]string{config.EnvBackend: "sequential", config.EnvLogLevel: "debug"}
		cfg, err := resolve(t, env, "--config", yamlPath, "a.csv", "b.csv", "binary", "RandomForest")
		require.NoError(t, err)
		assert.Equal(t, "sequential", cfg.Backend)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags over env", func(t *testing.T) {
		env := map[string]string{config.EnvBackend: "sequential"}
		cfg, err := resolve(t, env, "--config", yamlPath, "--backend", "auto", "--seed", "9",
			"a.csv", "b.csv", "binary", "RandomForest")
		require.NoError(t, err)
		assert.Equal(t, "auto", cfg.Backend)
		assert.Equal(t, int64(9), cfg.Seed)
	})

	t.Run("positionals over yaml", func(t *testing.T) {
		cfg, err := resolve(t, nil, "--config", yamlPath, "a.csv", "b.csv", "binary", "RandomForest", "25", "31")
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.NumTrees)
		assert.Equal(t, 31, cfg.NumLeaves)
	})
}

func TestFlags(t *testing.T) {
	cfg, err := resolve(t, nil,
		"--normalize", "--label", "y", "--separator", ";", "--has-header=false",
		"--min-leaf", "3", "--feature-fraction", "0.5", "--bagging-fraction", "0.9",
		"--learning-rate", "0.05", "--l2", "1", "--max-bins", "63", "--threads", "2",
		"--plot", "out.png", "--print-header=false", "--data-dir", "/data",
		"a.csv", "b.csv", "regression", "FastTree")
	require.NoError(t, err)

	assert.Equal(t, config.GradientBoosting, cfg.Algorithm)
	assert.Equal(t, config.NormalizeStandard, cfg.Normalize)
	assert.Equal(t, "y", cfg.Label)
	assert.Equal(t, ';', cfg.SeparatorRune())
	assert.False(t, cfg.HasHeader)
	assert.Equal(t, 3, cfg.MinExamplesPerLeaf)
	assert.Equal(t, 0.5, cfg.FeatureFraction)
	assert.Equal(t, 0.9, cfg.BaggingFraction)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 1.0, cfg.L2)
	assert.Equal(t, 63, cfg.MaxBins)
	assert.Equal(t, 2, cfg.Threads)
	assert.Equal(t, "out.png", cfg.Plot)
	assert.False(t, cfg.PrintHeader)
	assert.Equal(t, "/data", cfg.DataDir)

	cfg, err = resolve(t, nil, "--normalize=minmax", "a.csv", "b.csv", "regression", "OLS")
	require.NoError(t, err)
	assert.Equal(t, config.NormalizeMinMax, cfg.Normalize)
	assert.Equal(t, 1e-6, cfg.L2)
}

func TestInvalidInvocations(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		param string
	}{
		{"no arguments", nil, "args"},
		{"ols binary", []string{"a", "b", "binary", "OLS"}, "algorithm"},
		{"bad normalize", []string{"--normalize=zscore", "a", "b", "regression", "OLS"}, "normalize"},
		{"bad backend", []string{"--backend", "gpu", "a", "b", "binary", "RandomForest"}, "backend"},
		{"zero trees", []string{"a", "b", "binary", "RandomForest", "0"}, "numberOfTrees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolve(t, nil, tt.args...)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestRootCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(3))
	for _, name := range []string{"train.csv", "test.csv"} {
		var b strings.Builder
		b.WriteString("x,target\n")
		for i := 0; i < 60; i++ {
			x := rng.Float64() * 10
			fmt.Fprintf(&b, "%v,%v\n", x, 2*x+1)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--data-dir", dir, "--log-level", "error", "train.csv", "test.csv", "regression", "OLS", "10"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "algorithm,all workflow time[ms],training RMSE,testing RMSE,training R2 score,testing R2 score", lines[0])

	cells := strings.Split(lines[1], ",")
	require.Len(t, cells, 6)
	assert.Equal(t, "OLSRegression", cells[0])
	assert.True(t, strings.HasPrefix(cells[4], "0.99") || cells[4] == "1", "train R² %s", cells[4])
}
