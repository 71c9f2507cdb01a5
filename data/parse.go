package data

import (
	"math"
	"strconv"
	"strings"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

// parseNumeric parses a float cell. Empty cells are missing values.
func parseNumeric(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseBool accepts the usual spellings of true and false, and otherwise
// any number, which is true when non-zero.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "+1":
		return true, nil
	case "false", "f", "no", "n", "0", "-1":
		return false, nil
	case "":
		return false, scierrors.New("missing boolean value")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return false, scierrors.Newf("not a boolean: %q", s)
	}
	return v != 0, nil
}
