// Package data reads delimited text files into column-major datasets.
//
// A Schema is inferred from the header row: every column is numeric except
// the label, whose kind depends on the learning task. TextLoader then parses
// the file against that schema.
package data

import (
	"fmt"
	"strings"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

// Task is the learning task a dataset is loaded for.
type Task int

const (
	TaskBinary Task = iota
	TaskRegression
)

func (t Task) String() string {
	switch t {
	case TaskBinary:
		return "binary"
	case TaskRegression:
		return "regression"
	default:
		return fmt.Sprintf("Task(%d)", int(t))
	}
}

// ParseTask parses "binary" or "regression", ignoring case.
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return TaskBinary, nil
	case "regression":
		return TaskRegression, nil
	default:
		return 0, scierrors.NewValidationError("task", "must be binary or regression", s)
	}
}

// Kind is the value type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindBoolean
)

func (k Kind) String() string {
	if k == KindBoolean {
		return "Boolean"
	}
	return "Numeric"
}

// Column describes one field of a record.
type Column struct {
	Name  string
	Index int
	Kind  Kind
}

// Schema is the ordered column list of a dataset.
type Schema struct {
	Columns []Column

	// Label names the target column, if any.
	Label string
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.Columns) }

// Lookup finds a column by exact name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns all column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FeatureNames returns every column name except label, in header order.
func (s Schema) FeatureNames(label string) []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != label {
			names = append(names, c.Name)
		}
	}
	return names
}

// InferSchema builds a schema from header names. The column named label is
// Boolean for TaskBinary and Numeric for TaskRegression; all others are
// Numeric.
func InferSchema(header []string, label string, task Task) (Schema, error) {
	if len(header) == 0 {
		return Schema{}, scierrors.NewModelError("InferSchema", "header", scierrors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(header))
	cols := make([]Column, len(header))
	hasLabel := false
	for i, name := range header {
		if name == "" {
			return Schema{}, scierrors.NewValidationError("header", fmt.Sprintf("column %d has an empty name", i), header)
		}
		if _, dup := seen[name]; dup {
			return Schema{}, scierrors.NewValidationError("header", "duplicate column name", name)
		}
		seen[name] = struct{}{}

		kind := KindNumeric
		if name == label {
			hasLabel = true
			if task == TaskBinary {
				kind = KindBoolean
			}
		}
		cols[i] = Column{Name: name, Index: i, Kind: kind}
	}

	if !hasLabel {
		return Schema{}, scierrors.NewValidationError("label", "column not found in header", label)
	}
	return Schema{Columns: cols, Label: label}, nil
}
