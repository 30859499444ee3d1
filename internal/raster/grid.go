// Package raster models gridded covariate surfaces and projects trained
// models over them to produce risk surfaces.
package raster

import (
	"github.com/twpayne/go-geom"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// Layer is one named feature surface, stored row-major with row 0 at the
// top (northern) edge, matching ESRI ASCII grid order.
type Layer struct {
	Name   string
	Values []float64
}

// Grid is a rectangular array of cells sharing one georeference, each cell
// holding one value per feature layer. Cells equal to NoData are masked.
type Grid struct {
	Rows, Cols int
	// Xll, Yll locate the lower-left corner in CRS units.
	Xll, Yll float64
	CellSize float64
	NoData   float64
	SRID     int

	layers []Layer
}

// AddLayer appends a feature layer. The value count must equal Rows*Cols.
func (g *Grid) AddLayer(name string, values []float64) error {
	if name == "" {
		return errs.Schemaf("grid: empty layer name")
	}
	if _, ok := g.Layer(name); ok {
		return errs.Schemaf("grid: duplicate layer %q", name)
	}
	if len(values) != g.Rows*g.Cols {
		return errs.Schemaf("grid: layer %q has %d values, want %d", name, len(values), g.Rows*g.Cols)
	}
	g.layers = append(g.layers, Layer{Name: name, Values: values})
	return nil
}

// Layer returns the named layer's values.
func (g *Grid) Layer(name string) ([]float64, bool) {
	for _, l := range g.layers {
		if l.Name == name {
			return l.Values, true
		}
	}
	return nil, false
}

// LayerNames returns the layer names in insertion order.
func (g *Grid) LayerNames() []string {
	names := make([]string, len(g.layers))
	for i, l := range g.layers {
		names[i] = l.Name
	}
	return names
}

// Bounds returns the spatial extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(
		g.Xll, g.Yll,
		g.Xll+float64(g.Cols)*g.CellSize,
		g.Yll+float64(g.Rows)*g.CellSize,
	)
}

// sameGeoref reports whether another grid header describes the same shape
// and placement.
func (g *Grid) sameGeoref(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols &&
		g.Xll == o.Xll && g.Yll == o.Yll && g.CellSize == o.CellSize
}
