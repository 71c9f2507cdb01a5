package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

func TestSelectFor(t *testing.T) {
	multi := CPUInfo{Brand: "test", LogicalCores: 8, AVX2: true}
	noAVX := CPUInfo{Brand: "test", LogicalCores: 8}
	single := CPUInfo{Brand: "test", LogicalCores: 1, AVX2: true}

	tests := []struct {
		name        string
		backend     string
		threads     int
		info        CPUInfo
		wantName    string
		wantWorkers int
	}{
		{"auto on multicore AVX2", "auto", 0, multi, Parallel, 8},
		{"auto is the default", "", 0, multi, Parallel, 8},
		{"auto honours threads", "auto", 3, multi, Parallel, 3},
		{"auto without AVX2", "auto", 0, noAVX, Sequential, 1},
		{"auto on one core", "auto", 0, single, Sequential, 1},
		{"sequential ignores threads", "sequential", 4, multi, Sequential, 1},
		{"parallel all cores", "parallel", 0, noAVX, Parallel, 8},
		{"parallel is case-insensitive", "PARALLEL", 2, single, Parallel, 2},
		{"parallel with unknown cores", "parallel", 0, CPUInfo{}, Parallel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SelectFor(tt.backend, tt.threads, tt.info)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, b.Name)
			assert.Equal(t, tt.wantWorkers, b.Workers)
			assert.Equal(t, tt.info, b.CPU)
		})
	}
}

func TestSelectFor_Invalid(t *testing.T) {
	var ve *errors.ValidationError

	_, err := SelectFor("gpu", 0, CPUInfo{LogicalCores: 4})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "backend", ve.ParamName)

	_, err = SelectFor("parallel", -1, CPUInfo{LogicalCores: 4})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "threads", ve.ParamName)
}

func TestSelect_RunningMachine(t *testing.T) {
	b, err := Select(Auto, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b.Workers, 1)
	assert.GreaterOrEqual(t, b.CPU.LogicalCores, 1)
	assert.NotEqual(t, Auto, b.Name)
}
