package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

// Dataset holds parsed values column by column, aligned with its Schema.
// Boolean columns hold 0 or 1; missing numeric cells hold NaN.
type Dataset struct {
	name    string
	schema  Schema
	columns [][]float64
	rows    int
}

// NewDataset builds a dataset from columns already in schema order.
func NewDataset(name string, schema Schema, columns [][]float64) (*Dataset, error) {
	if len(columns) != schema.Len() {
		return nil, scierrors.NewDimensionError("NewDataset", schema.Len(), len(columns), 1)
	}
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	for _, c := range columns {
		if len(c) != rows {
			return nil, scierrors.NewDimensionError("NewDataset", rows, len(c), 0)
		}
	}
	return &Dataset{name: name, schema: schema, columns: columns, rows: rows}, nil
}

// Name is the source the dataset was loaded from.
func (d *Dataset) Name() string { return d.name }

func (d *Dataset) Schema() Schema { return d.schema }

func (d *Dataset) NumRows() int { return d.rows }

func (d *Dataset) NumColumns() int { return len(d.columns) }

// Column returns the values of the named column. The slice is shared with
// the dataset and must not be modified.
func (d *Dataset) Column(name string) ([]float64, error) {
	c, ok := d.schema.Lookup(name)
	if !ok {
		return nil, scierrors.Wrapf(scierrors.ErrMissingColumn, "%s: column %q", d.name, name)
	}
	return d.columns[c.Index], nil
}

// ColumnAt returns the values of column i.
func (d *Dataset) ColumnAt(i int) []float64 {
	return d.columns[i]
}

// Vector copies the named column into a vector, e.g. for use as a target.
func (d *Dataset) Vector(name string) (*mat.VecDense, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if len(col) == 0 {
		return nil, scierrors.NewModelError("Dataset.Vector", fmt.Sprintf("column %q", name), scierrors.ErrEmptyData)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return mat.NewVecDense(len(out), out), nil
}
