package projection

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrShapeMismatch is returned in MultiRow mode when a row does not have
// exactly one column per configured suffix.
var ErrShapeMismatch = errors.New("row width does not match column names")

// Emission is one named metric value, ready to be written as a metric line.
type Emission struct {
	Name  string
	Value Value
}

// Project maps result onto metric emissions according to mode.
//
// CountRows returns exactly one emission (scheme, row count) whatever the
// result looks like. SingleRow returns (scheme, first field of the first row),
// or nothing when there is no such field. MultiRow returns one emission per
// field, named scheme + "." + suffixes[i], in row order then column order.
//
// An empty result in SingleRow or MultiRow mode yields no emissions and a nil
// error. Project is a pure function of its arguments.
func Project(result Result, mode Mode, scheme string, suffixes []string) ([]Emission, error) {
	switch mode {
	case CountRows:
		return []Emission{{Name: scheme, Value: Numeric(strconv.Itoa(result.RowCount()))}}, nil
	case SingleRow:
		return projectSingle(result, scheme), nil
	case MultiRow:
		return projectMulti(result, scheme, suffixes)
	default:
		return nil, fmt.Errorf("projection: unknown mode %d", mode)
	}
}

func projectSingle(result Result, scheme string) []Emission {
	if result.RowCount() == 0 {
		return nil
	}
	v, ok := result.Rows()[0].At(0)
	if !ok {
		return nil
	}
	return []Emission{{Name: scheme, Value: v}}
}

func projectMulti(result Result, scheme string, suffixes []string) ([]Emission, error) {
	if result.RowCount() == 0 {
		return nil, nil
	}

	names := make([]string, len(suffixes))
	for i, s := range suffixes {
		names[i] = scheme + "." + s
	}

	out := make([]Emission, 0, result.RowCount()*len(suffixes))
	for i, row := range result.Rows() {
		if row.Len() != len(suffixes) {
			return nil, fmt.Errorf("projection: row %d has %d columns, %d names configured: %w",
				i, row.Len(), len(suffixes), ErrShapeMismatch)
		}
		for j, v := range row {
			out = append(out, Emission{Name: names[j], Value: v})
		}
	}
	return out, nil
}
