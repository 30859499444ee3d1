package dataset

import (
	"math"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/mat"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

var nan = math.NaN()

// Binding names the columns that carry geometry and the label, plus the
// spatial reference system the coordinates are expressed in.
type Binding struct {
	XCol     string
	YCol     string
	LabelCol string
	SRID     int
}

// Sample is an immutable labeled spatial sample: a fixed set of numeric
// columns, one binary label per record, and a 2-D coordinate per record in
// a uniform reference system.
type Sample struct {
	table   *Table
	binding Binding
	coords  []geom.Coord
	labels  []float64
}

// NewSample binds a table to a coordinate and label schema. The named
// coordinate columns must exist and be fully numeric, and the label column
// must contain only 0 and 1. The input table is not mutated and must not be
// mutated by the caller afterwards.
func NewSample(t *Table, b Binding) (*Sample, error) {
	xs, ok := t.Column(b.XCol)
	if !ok {
		return nil, errs.Schemaf("sample: coordinate column %q not found", b.XCol)
	}
	ys, ok := t.Column(b.YCol)
	if !ok {
		return nil, errs.Schemaf("sample: coordinate column %q not found", b.YCol)
	}
	rawLabels, ok := t.Column(b.LabelCol)
	if !ok {
		return nil, errs.Schemaf("sample: label column %q not found", b.LabelCol)
	}

	coords := make([]geom.Coord, t.Len())
	for i := range coords {
		if !isFinite(xs[i]) {
			return nil, errs.Schemaf("sample: column %q is non-numeric at record %d", b.XCol, i)
		}
		if !isFinite(ys[i]) {
			return nil, errs.Schemaf("sample: column %q is non-numeric at record %d", b.YCol, i)
		}
		coords[i] = geom.Coord{xs[i], ys[i]}
	}

	labels := make([]float64, t.Len())
	for i, v := range rawLabels {
		if v != 0 && v != 1 {
			return nil, errs.Schemaf("sample: label column %q has non-binary value at record %d", b.LabelCol, i)
		}
		labels[i] = v
	}

	return &Sample{table: t, binding: b, coords: coords, labels: labels}, nil
}

// Len returns the number of records.
func (s *Sample) Len() int { return s.table.Len() }

// SRID returns the spatial reference system identifier.
func (s *Sample) SRID() int { return s.binding.SRID }

// Binding returns the column binding the sample was constructed with.
func (s *Sample) Binding() Binding { return s.binding }

// Columns returns all column names of the underlying table.
func (s *Sample) Columns() []string { return s.table.Names() }

// Labels returns a copy of the binary label vector.
func (s *Sample) Labels() []float64 {
	out := make([]float64, len(s.labels))
	copy(out, s.labels)
	return out
}

// Coord returns the coordinate of record i.
func (s *Sample) Coord(i int) geom.Coord { return s.coords[i] }

// Bounds returns the spatial extent of the sample.
func (s *Sample) Bounds() *geom.Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range s.coords {
		minX = math.Min(minX, c.X())
		minY = math.Min(minY, c.Y())
		maxX = math.Max(maxX, c.X())
		maxY = math.Max(maxY, c.Y())
	}
	return geom.NewBounds(geom.XY).Set(minX, minY, maxX, maxY)
}

// Matrix assembles the feature matrix for the given feature columns, one
// record per row in table order.
func (s *Sample) Matrix(features []string) (*mat.Dense, error) {
	return s.MatrixRows(features, nil)
}

// MatrixRows assembles the feature matrix restricted to the given record
// indices. A nil index slice selects every record.
func (s *Sample) MatrixRows(features []string, idx []int) (*mat.Dense, error) {
	if len(features) == 0 {
		return nil, errs.Schemaf("sample: empty feature set")
	}
	cols := make([][]float64, len(features))
	for j, name := range features {
		c, ok := s.table.Column(name)
		if !ok {
			return nil, errs.Schemaf("sample: feature column %q not found", name)
		}
		cols[j] = c
	}

	n := s.Len()
	if idx != nil {
		n = len(idx)
	}
	x := mat.NewDense(n, len(features), nil)
	for r := 0; r < n; r++ {
		rec := r
		if idx != nil {
			rec = idx[r]
		}
		for j := range cols {
			x.Set(r, j, cols[j][rec])
		}
	}
	return x, nil
}

// LabelsAt returns the labels for the given record indices.
func (s *Sample) LabelsAt(idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = s.labels[r]
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
