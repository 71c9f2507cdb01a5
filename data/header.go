package data

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

const utf8BOM = "\ufeff"

// ReadHeader returns the column names on the first line of path. The line
// is split on sep; a UTF-8 BOM and trailing CR are removed, names are
// trimmed of surrounding spaces and one pair of surrounding double quotes
// is removed with "" unescaped. A separator inside a quoted name is not
// supported.
func ReadHeader(path string, sep rune) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scierrors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return ReadHeaderFrom(f, path, sep)
}

// ReadHeaderFrom is ReadHeader on an open reader. name is used in errors.
func ReadHeaderFrom(r io.Reader, name string, sep rune) ([]string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, scierrors.Wrapf(err, "read header of %s", name)
	}

	line = strings.TrimPrefix(line, utf8BOM)
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, scierrors.NewParseError(name, 1, -1, "", scierrors.ErrEmptyData)
	}

	fields := strings.Split(line, string(sep))
	for i := range fields {
		fields[i] = unquote(strings.TrimSpace(fields[i]))
	}
	return fields, nil
}

func unquote(name string) string {
	if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
		return name
	}
	return strings.TrimSpace(strings.ReplaceAll(name[1:len(name)-1], `""`, `"`))
}

// PositionalHeader names n columns Column0 to Column{n-1}, for files
// without a header row.
func PositionalHeader(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "Column" + strconv.Itoa(i)
	}
	return names
}

// ResolveLabel returns the header name of label. label is matched as a
// column name first and otherwise read as a zero-based column index.
func ResolveLabel(header []string, label string) (string, error) {
	for _, name := range header {
		if name == label {
			return name, nil
		}
	}
	if i, err := strconv.Atoi(strings.TrimSpace(label)); err == nil {
		if i >= 0 && i < len(header) {
			return header[i], nil
		}
		return "", scierrors.NewValidationError("label",
			fmt.Sprintf("column index out of range [0, %d)", len(header)), label)
	}
	return "", scierrors.NewValidationError("label", "column not found in header", label)
}
