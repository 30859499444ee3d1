package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// defaultNoData is the conventional ESRI ASCII grid NoData marker, used
// when a file omits the header entry.
const defaultNoData = -9999

// ReadASC parses an ESRI ASCII grid into a single-layer grid. The layer
// takes the given name.
func ReadASC(r io.Reader, name string) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	g := &Grid{NoData: defaultNoData}
	var (
		haveCols, haveRows bool
		values             []float64
	)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if !isNumeric(fields[0]) {
			if len(fields) != 2 {
				return nil, eris.Errorf("asc: malformed header line %q", scanner.Text())
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, eris.Wrapf(err, "asc: parse header %s", fields[0])
			}
			switch strings.ToLower(fields[0]) {
			case "ncols":
				g.Cols = int(v)
				haveCols = true
			case "nrows":
				g.Rows = int(v)
				haveRows = true
			case "xllcorner":
				g.Xll = v
			case "yllcorner":
				g.Yll = v
			case "cellsize":
				g.CellSize = v
			case "nodata_value":
				g.NoData = v
			default:
				return nil, eris.Errorf("asc: unknown header key %q", fields[0])
			}
			continue
		}

		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "asc: parse cell value %q", f)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "asc: read")
	}

	if !haveCols || !haveRows || g.CellSize <= 0 {
		return nil, eris.New("asc: incomplete header (ncols, nrows, cellsize required)")
	}
	if len(values) != g.Rows*g.Cols {
		return nil, eris.Errorf("asc: %d cell values for %dx%d grid", len(values), g.Rows, g.Cols)
	}

	if err := g.AddLayer(name, values); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadASCFile reads one .asc file; the layer is named after the file base.
func ReadASCFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "asc: open %s", path)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadASC(f, name)
}

// LoadDir reads every .asc file in a directory into one multi-layer grid.
// All files must share the same header; the merged grid is stamped with the
// given SRID.
func LoadDir(dir string, srid int) (*Grid, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.asc"))
	if err != nil {
		return nil, eris.Wrapf(err, "asc: glob %s", dir)
	}
	if len(entries) == 0 {
		return nil, eris.Errorf("asc: no .asc files in %s", dir)
	}
	sort.Strings(entries)

	var merged *Grid
	for _, path := range entries {
		g, err := ReadASCFile(path)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = g
			merged.SRID = srid
			continue
		}
		if !merged.sameGeoref(g) {
			return nil, errs.Schemaf("asc: %s georeference differs from %s", path, entries[0])
		}
		name := g.LayerNames()[0]
		vals, _ := g.Layer(name)
		if err := merged.AddLayer(name, vals); err != nil {
			return nil, err
		}
	}

	zap.L().Debug("loaded covariate grid",
		zap.String("dir", dir),
		zap.Int("layers", len(merged.layers)),
		zap.Int("rows", merged.Rows),
		zap.Int("cols", merged.Cols),
	)
	return merged, nil
}

// WriteASC writes one layer of a grid as an ESRI ASCII grid.
func WriteASC(w io.Writer, g *Grid, layer string) error {
	values, ok := g.Layer(layer)
	if !ok {
		return errs.Schemaf("asc: layer %q not found", layer)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner %g\n", g.Xll)
	fmt.Fprintf(bw, "yllcorner %g\n", g.Yll)
	fmt.Fprintf(bw, "cellsize %g\n", g.CellSize)
	fmt.Fprintf(bw, "NODATA_value %g\n", g.NoData)

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return eris.Wrap(err, "asc: write")
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(values[r*g.Cols+c], 'g', -1, 64)); err != nil {
				return eris.Wrap(err, "asc: write")
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return eris.Wrap(err, "asc: write")
		}
	}
	return eris.Wrap(bw.Flush(), "asc: flush")
}

// WriteASCFile writes one layer of a grid to disk.
func WriteASCFile(path string, g *Grid, layer string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "asc: create %s", path)
	}
	defer func() { _ = f.Close() }()
	return WriteASC(f, g, layer)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
