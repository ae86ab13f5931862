package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/linevis/pkg/errors"
)

const keySep = "_"

// CellKey returns the lineKey prefix that addresses grid cell (row, column).
func CellKey(row, column int) string {
	return strconv.Itoa(row) + keySep + strconv.Itoa(column) + keySep
}

// LineKey returns the key of series name rendered in grid cell (row, column).
func LineKey(row, column int, series string) string {
	return CellKey(row, column) + series
}

// ParseLineKey splits a lineKey into its components. The series name may
// itself contain underscores; row and column may not.
func ParseLineKey(key string) (row, column int, series string, err error) {
	parts := strings.SplitN(key, keySep, 3)
	if len(parts) != 3 {
		return 0, 0, "", errors.New(errors.ErrCodeInvalidLineKey, "malformed line key %q", key)
	}
	if row, err = parseIndex(parts[0]); err != nil {
		return 0, 0, "", errors.Wrap(errors.ErrCodeInvalidLineKey, err, "row of line key %q", key)
	}
	if column, err = parseIndex(parts[1]); err != nil {
		return 0, 0, "", errors.Wrap(errors.ErrCodeInvalidLineKey, err, "column of line key %q", key)
	}
	return row, column, parts[2], nil
}

// CellOf returns the cell prefix of a lineKey, or "" if the key is malformed.
func CellOf(key string) string {
	row, col, _, err := ParseLineKey(key)
	if err != nil {
		return ""
	}
	return CellKey(row, col)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative index %d", n)
	}
	return n, nil
}
