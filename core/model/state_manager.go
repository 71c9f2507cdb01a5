package model

import (
	"sync"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

// StateManager tracks whether a model has been fitted and the shape it was
// fitted on. It is safe for concurrent use so fitted models can serve
// predictions from several goroutines.
type StateManager struct {
	mu sync.RWMutex

	name      string
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager for the named model. The name is
// used in NotFittedError messages.
func NewStateManager(name string) *StateManager {
	return &StateManager{name: name}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Reset clears the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// SetDimensions records the training shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// GetDimensions returns the training shape.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError for method if Fit has not
// completed.
func (s *StateManager) RequireFitted(method string) error {
	if !s.IsFitted() {
		return scierrors.NewNotFittedError(s.name, method)
	}
	return nil
}

// CheckFeatures returns a DimensionError if X does not have the number of
// columns seen during Fit. It also enforces RequireFitted.
func (s *StateManager) CheckFeatures(method string, cols int) error {
	if err := s.RequireFitted(method); err != nil {
		return err
	}
	nFeatures, _ := s.GetDimensions()
	if cols != nFeatures {
		return scierrors.NewDimensionError(s.name+"."+method, nFeatures, cols, 1)
	}
	return nil
}
