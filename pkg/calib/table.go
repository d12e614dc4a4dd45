package calib

import (
	"fmt"
	"sort"

	"github.com/itohio/goadc/pkg/adc"
)

// Table is a piecewise-linear calibration curve over measured points.
// Outside the measured range the nearest end point is used.
type Table struct {
	points []Point
}

// NewTable validates the points and builds a table. Points must be sorted by
// strictly increasing raw value with non-decreasing millivolts.
func NewTable(points []Point) (*Table, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidPoints, len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Raw <= points[i-1].Raw || points[i].MV < points[i-1].MV {
			return nil, fmt.Errorf("%w: point %d %+v after %+v", ErrNotMonotonic, i, points[i], points[i-1])
		}
	}

	return &Table{points: append([]Point(nil), points...)}, nil
}

// Points returns a copy of the table points.
func (t *Table) Points() []Point {
	return append([]Point(nil), t.points...)
}

// ToMillivolts interpolates between the two points surrounding raw.
func (t *Table) ToMillivolts(raw adc.RawSample) Millivolts {
	first, last := t.points[0], t.points[len(t.points)-1]
	if raw <= first.Raw {
		return first.MV
	}
	if raw >= last.Raw {
		return last.MV
	}

	// First point strictly above raw; i >= 1 because raw > first.Raw
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Raw > raw })
	a, b := t.points[i-1], t.points[i]

	num := uint64(b.MV-a.MV) * uint64(raw-a.Raw)
	return a.MV + Millivolts(num/uint64(b.Raw-a.Raw))
}
