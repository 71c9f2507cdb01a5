package data

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// TextLoader parses delimited text files against a fixed Schema.
type TextLoader struct {
	schema    Schema
	separator rune
	hasHeader bool
	logger    log.Logger
}

// LoaderOption configures a TextLoader.
type LoaderOption func(*TextLoader)

// WithSeparator sets the field separator. Default is ','.
func WithSeparator(sep rune) LoaderOption {
	return func(l *TextLoader) {
		l.separator = sep
	}
}

// WithHasHeader controls whether the first record is skipped. Default true.
func WithHasHeader(hasHeader bool) LoaderOption {
	return func(l *TextLoader) {
		l.hasHeader = hasHeader
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger log.Logger) LoaderOption {
	return func(l *TextLoader) {
		l.logger = logger
	}
}

// NewTextLoader creates a loader for files laid out as schema.
func NewTextLoader(schema Schema, opts ...LoaderOption) *TextLoader {
	l := &TextLoader{
		schema:    schema,
		separator: ',',
		hasHeader: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.GetLoggerWithName("data")
	}
	return l
}

// Load opens and parses path.
func (l *TextLoader) Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scierrors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return l.LoadReader(f, path)
}

// LoadReader parses r. name identifies the source in errors and logs.
//
// Every record must have exactly one field per schema column. Numeric cells
// may be empty (NaN); label cells may not.
func (l *TextLoader) LoadReader(r io.Reader, name string) (*Dataset, error) {
	if l.schema.Len() == 0 {
		return nil, scierrors.NewModelError("TextLoader.Load", name, scierrors.ErrEmptyData)
	}

	reader := csv.NewReader(r)
	reader.Comma = l.separator
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	width := l.schema.Len()
	columns := make([][]float64, width)

	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if scierrors.As(err, &csvErr) {
				return nil, scierrors.NewParseError(name, csvErr.StartLine, -1, "", csvErr.Err)
			}
			return nil, scierrors.Wrapf(err, "read %s", name)
		}
		line, _ := reader.FieldPos(0)

		if first {
			rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
			first = false
			if l.hasHeader {
				if len(rec) != width {
					return nil, scierrors.NewParseError(name, line, -1, "",
						scierrors.Newf("header has %d fields, schema has %d", len(rec), width))
				}
				continue
			}
		}

		if len(rec) != width {
			return nil, scierrors.NewParseError(name, line, -1, "",
				scierrors.Newf("expected %d fields, got %d", width, len(rec)))
		}

		for i, col := range l.schema.Columns {
			v, err := l.parseCell(col, rec[i])
			if err != nil {
				return nil, scierrors.NewParseError(name, line, i, rec[i], err)
			}
			columns[i] = append(columns[i], v)
		}
	}

	ds, err := NewDataset(name, l.schema, columns)
	if err != nil {
		return nil, err
	}
	if ds.NumRows() == 0 {
		return nil, scierrors.NewModelError("TextLoader.Load", name, scierrors.ErrEmptyData)
	}

	l.logger.Debug("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.DatasetPathKey, name,
		log.SamplesKey, ds.NumRows(),
		log.ColumnsKey, ds.NumColumns(),
	)
	return ds, nil
}

func (l *TextLoader) parseCell(col Column, s string) (float64, error) {
	if col.Kind == KindBoolean {
		b, err := parseBool(s)
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}
	if col.Name == l.schema.Label && strings.TrimSpace(s) == "" {
		return 0, scierrors.New("missing label value")
	}
	v, err := parseNumeric(s)
	if err != nil {
		return 0, scierrors.Wrap(err, "not a number")
	}
	return v, nil
}
