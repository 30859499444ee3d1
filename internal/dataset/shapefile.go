package dataset

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Shapefile coordinate column names. Point geometry becomes two ordinary
// table columns so the adapter binding works the same for every source.
const (
	ShapeXCol = "x"
	ShapeYCol = "y"
)

// ReadPointShapefile reads a point shapefile into a table. The geometry of
// each record supplies the "x" and "y" columns; DBF attributes become the
// remaining columns, with non-numeric values stored as NaN. Records whose
// geometry is not a point are skipped.
func ReadPointShapefile(path string) (*Table, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	xs := []float64{}
	ys := []float64{}
	attrs := make([][]float64, len(fields))
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
		for i := range fields {
			raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			v := nan
			if f, perr := strconv.ParseFloat(raw, 64); perr == nil {
				v = f
			}
			attrs[i] = append(attrs[i], v)
		}
	}

	if skipped > 0 {
		zap.L().Debug("shapefile: skipped non-point records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(xs) == 0 {
		return nil, eris.Errorf("shapefile: no point records in %s", path)
	}

	t := NewTable()
	if err := t.AddColumn(ShapeXCol, xs); err != nil {
		return nil, err
	}
	if err := t.AddColumn(ShapeYCol, ys); err != nil {
		return nil, err
	}
	for i, name := range names {
		if err := t.AddColumn(name, attrs[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
