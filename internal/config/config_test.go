package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Args
		wantErr string
	}{
		{
			name: "forest with counts",
			args: []string{"train.csv", "test.csv", "binary", "RandomForest", "50", "31"},
			want: Args{TrainFile: "train.csv", TestFile: "test.csv", Task: data.TaskBinary, Algorithm: RandomForest, NumTrees: 50, NumLeaves: 31},
		},
		{
			name: "case-insensitive alias",
			args: []string{"a", "b", "REGRESSION", "fasttree"},
			want: Args{TrainFile: "a", TestFile: "b", Task: data.TaskRegression, Algorithm: GradientBoosting},
		},
		{
			name: "ols regression ignores counts",
			args: []string{"a", "b", "regression", "OLS", "10"},
			want: Args{TrainFile: "a", TestFile: "b", Task: data.TaskRegression, Algorithm: OLS, NumTrees: 10},
		},
		{name: "too few", args: []string{"a", "b", "binary"}, wantErr: "args"},
		{name: "too many", args: []string{"a", "b", "binary", "OLS", "1", "2", "3"}, wantErr: "args"},
		{name: "unknown task", args: []string{"a", "b", "multiclass", "RandomForest"}, wantErr: "task"},
		{name: "unknown algorithm", args: []string{"a", "b", "binary", "SVM"}, wantErr: "algorithm"},
		{name: "ols binary", args: []string{"a", "b", "binary", "ols"}, wantErr: "algorithm"},
		{name: "zero trees", args: []string{"a", "b", "binary", "RandomForest", "0"}, wantErr: "numberOfTrees"},
		{name: "non-numeric leaves", args: []string{"a", "b", "binary", "RandomForest", "5", "many"}, wantErr: "numberOfLeaves"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr != "" {
				var ve *errors.ValidationError
				require.True(t, errors.As(err, &ve), "got %v", err)
				assert.Equal(t, tt.wantErr, ve.ParamName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	rf := Default(RandomForest)
	assert.Equal(t, 100, rf.NumTrees)
	assert.Equal(t, 128, rf.NumLeaves)
	assert.Equal(t, 5, rf.MinExamplesPerLeaf)
	assert.Equal(t, 1.0, rf.FeatureFraction)
	assert.Equal(t, 0.7, rf.BaggingFraction)

	gb := Default(GradientBoosting)
	assert.Equal(t, 100, gb.NumTrees)
	assert.Equal(t, 20, gb.NumLeaves)
	assert.Equal(t, 10, gb.MinExamplesPerLeaf)
	assert.Equal(t, 0.2, gb.LearningRate)

	ols := Default(OLS)
	assert.Equal(t, 1e-6, ols.L2)

	for _, cfg := range []Config{rf, gb, ols} {
		assert.Equal(t, "target", cfg.Label)
		assert.Equal(t, ',', cfg.SeparatorRune())
		assert.Equal(t, 255, cfg.MaxBins)
		assert.Equal(t, int64(42), cfg.Seed)
		assert.True(t, cfg.HasHeader)
		assert.True(t, cfg.PrintHeader)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/forest.yaml", Default(RandomForest))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.NumTrees)
	assert.Equal(t, 2, cfg.MinExamplesPerLeaf)
	assert.Equal(t, 0.5, cfg.BaggingFraction)
	assert.Equal(t, NormalizeMinMax, cfg.Normalize)
	assert.Equal(t, "sequential", cfg.Backend)
	// untouched keys keep their defaults
	assert.Equal(t, 128, cfg.NumLeaves)
	assert.Equal(t, "target", cfg.Label)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("testdata/unknown.yaml", Default(RandomForest))
	assert.ErrorContains(t, err, "num_tres")

	_, err = Load("testdata/missing.yaml", Default(RandomForest))
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	base := Default(OLS)
	cfg, err := Decode(strings.NewReader(""), "empty", base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvBackend: "parallel", EnvLogLevel: " debug "}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default(RandomForest)
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "parallel", cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)

	env[EnvBackend] = ""
	cfg = Default(RandomForest)
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "auto", cfg.Backend, "empty values are ignored")
}

func TestApplyArgs(t *testing.T) {
	cfg := Default(RandomForest)
	cfg.ApplyArgs(Args{TrainFile: "a", TestFile: "b", Task: data.TaskBinary, Algorithm: RandomForest, NumTrees: 7})
	assert.Equal(t, 7, cfg.NumTrees)
	assert.Equal(t, 128, cfg.NumLeaves)

	cfg = Default(OLS)
	cfg.ApplyArgs(Args{TrainFile: "a", TestFile: "b", Task: data.TaskRegression, Algorithm: OLS, NumTrees: 7, NumLeaves: 3})
	assert.Equal(t, 0, cfg.NumTrees)
	assert.Equal(t, 0, cfg.NumLeaves)
}

func TestValidate(t *testing.T) {
	valid := func(alg Algorithm, task data.Task) Config {
		cfg := Default(alg)
		cfg.ApplyArgs(Args{TrainFile: "train.csv", TestFile: "test.csv", Task: task, Algorithm: alg})
		return cfg
	}

	require.NoError(t, valid(RandomForest, data.TaskBinary).Validate())
	require.NoError(t, valid(GradientBoosting, data.TaskRegression).Validate())
	require.NoError(t, valid(OLS, data.TaskRegression).Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"ols binary", func(c *Config) { c.Algorithm = OLS }, "algorithm"},
		{"empty label", func(c *Config) { c.Label = " " }, "label"},
		{"long separator", func(c *Config) { c.Separator = ";;" }, "separator"},
		{"quote separator", func(c *Config) { c.Separator = "\"" }, "separator"},
		{"bad normalize", func(c *Config) { c.Normalize = "zscore" }, "normalize"},
		{"bad backend", func(c *Config) { c.Backend = "gpu" }, "backend"},
		{"negative threads", func(c *Config) { c.Threads = -2 }, "threads"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log-level"},
		{"one leaf", func(c *Config) { c.NumLeaves = 1 }, "numberOfLeaves"},
		{"bagging zero", func(c *Config) { c.BaggingFraction = 0 }, "bagging_fraction"},
		{"feature fraction above one", func(c *Config) { c.FeatureFraction = 1.5 }, "feature_fraction"},
		{"too many bins", func(c *Config) { c.MaxBins = 1024 }, "max_bins"},
		{"negative l2", func(c *Config) { c.L2 = -1 }, "l2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(RandomForest, data.TaskBinary)
			tt.mutate(&cfg)
			var ve *errors.ValidationError
			require.True(t, errors.As(cfg.Validate(), &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}
