package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager("OLSRegressor")

	err := s.RequireFitted("Predict")
	var nf *scierrors.NotFittedError
	require.True(t, scierrors.As(err, &nf))
	assert.Equal(t, "OLSRegressor", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)

	s.SetDimensions(8, 100)
	s.SetFitted()
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.CheckFeatures("Predict", 8))

	err = s.CheckFeatures("Predict", 3)
	var de *scierrors.DimensionError
	require.True(t, scierrors.As(err, &de))
	assert.Equal(t, 8, de.Expected)
	assert.Equal(t, 3, de.Got)

	s.Reset()
	assert.False(t, s.IsFitted())
	f, n := s.GetDimensions()
	assert.Zero(t, f)
	assert.Zero(t, n)
}
