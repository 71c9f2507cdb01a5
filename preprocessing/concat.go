package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// DefaultFeaturesColumn is the name given to the concatenated vector.
const DefaultFeaturesColumn = "Features"

// ColumnConcatenator joins several numeric dataset columns into one feature
// matrix. Columns are matched by name, so train and test files may order
// their columns differently.
type ColumnConcatenator struct {
	state *model.StateManager

	// Output names the produced vector column.
	Output string

	// Inputs are the source column names in feature order.
	Inputs []string
}

// NewColumnConcatenator creates a concatenator of inputs into output.
func NewColumnConcatenator(output string, inputs ...string) *ColumnConcatenator {
	return &ColumnConcatenator{
		state:  model.NewStateManager("ColumnConcatenator"),
		Output: output,
		Inputs: append([]string(nil), inputs...),
	}
}

func (c *ColumnConcatenator) IsFitted() bool { return c.state.IsFitted() }

// Fit checks that every input exists in ds and is numeric.
func (c *ColumnConcatenator) Fit(ds *data.Dataset) error {
	if len(c.Inputs) == 0 {
		return errors.NewValidationError("inputs", "at least one input column is required", c.Inputs)
	}
	if err := c.checkColumns(ds); err != nil {
		return err
	}
	c.state.SetDimensions(len(c.Inputs), ds.NumRows())
	c.state.SetFitted()
	return nil
}

// Transform builds the rows×len(Inputs) feature matrix of ds.
func (c *ColumnConcatenator) Transform(ds *data.Dataset) (*mat.Dense, error) {
	if err := c.state.RequireFitted("Transform"); err != nil {
		return nil, err
	}
	if err := c.checkColumns(ds); err != nil {
		return nil, err
	}

	rows, cols := ds.NumRows(), len(c.Inputs)
	out := mat.NewDense(rows, cols, nil)
	for j, name := range c.Inputs {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform fits on ds and transforms it.
func (c *ColumnConcatenator) FitTransform(ds *data.Dataset) (*mat.Dense, error) {
	if err := c.Fit(ds); err != nil {
		return nil, err
	}
	return c.Transform(ds)
}

func (c *ColumnConcatenator) checkColumns(ds *data.Dataset) error {
	schema := ds.Schema()
	for _, name := range c.Inputs {
		col, ok := schema.Lookup(name)
		if !ok {
			return errors.NewValidationError("inputs", "column missing from "+ds.Name(), name)
		}
		if col.Kind != data.KindNumeric {
			return errors.NewValidationError("inputs", "column is not numeric", name)
		}
	}
	return nil
}
