package raster

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/wasatch-geo/riskmodel/internal/errs"
	"github.com/wasatch-geo/riskmodel/internal/model"
)

// RiskLayer is the name of the output layer produced by PredictSurface.
const RiskLayer = "risk"

// PredictSurface applies a trained model to every cell of a covariate grid,
// producing a single-layer risk grid with the same georeference. The grid's
// layer names must match the model's feature set exactly, in any order.
//
// Cells carrying the grid's NoData marker in any layer are masked through to
// the output. A non-finite value that is not the NoData marker aborts the
// run with the offending cell coordinates: a silently corrupted risk
// surface is a worse failure than an aborted run.
func PredictSurface(ctx context.Context, m model.Model, g *Grid, workers int) (*Grid, error) {
	features := m.Features()
	if err := matchLayers(g, features); err != nil {
		return nil, err
	}

	layers := make([][]float64, len(features))
	for j, name := range features {
		layers[j], _ = g.Layer(name)
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]float64, g.Rows*g.Cols)
	start := time.Now()

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for r := 0; r < g.Rows; r++ {
		r := r
		eg.Go(func() error {
			return predictRow(m, g, layers, out, r)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("risk surface predicted",
		zap.Int("rows", g.Rows),
		zap.Int("cols", g.Cols),
		zap.Duration("elapsed", time.Since(start)),
	)

	result := &Grid{
		Rows: g.Rows, Cols: g.Cols,
		Xll: g.Xll, Yll: g.Yll,
		CellSize: g.CellSize,
		NoData:   g.NoData,
		SRID:     g.SRID,
	}
	if err := result.AddLayer(RiskLayer, out); err != nil {
		return nil, err
	}
	return result, nil
}

// predictRow scores one grid row. Rows share only read-only inputs and
// write disjoint stretches of out, so no locking is needed.
func predictRow(m model.Model, g *Grid, layers [][]float64, out []float64, r int) error {
	var cells []int // column indices of unmasked cells
	for c := 0; c < g.Cols; c++ {
		i := r*g.Cols + c
		masked := false
		for j := range layers {
			v := layers[j][i]
			if v == g.NoData {
				masked = true
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.Fitf("non-finite value in layer %q at cell (%d,%d)", m.Features()[j], r, c)
			}
		}
		if masked {
			out[i] = g.NoData
		} else {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return nil
	}

	x := mat.NewDense(len(cells), len(layers), nil)
	for k, c := range cells {
		i := r*g.Cols + c
		for j := range layers {
			x.Set(k, j, layers[j][i])
		}
	}

	probs, err := m.Predict(x)
	if err != nil {
		return err
	}
	for k, c := range cells {
		out[r*g.Cols+c] = probs[k]
	}
	return nil
}

// matchLayers checks that grid layers and model features form the same set.
func matchLayers(g *Grid, features []string) error {
	have := append([]string(nil), g.LayerNames()...)
	want := append([]string(nil), features...)
	sort.Strings(have)
	sort.Strings(want)

	if len(have) != len(want) {
		return errs.Schemaf("grid has %d layers %v, model expects %d features %v",
			len(have), have, len(want), want)
	}
	for i := range have {
		if have[i] != want[i] {
			return errs.Schemaf("grid layer %q does not match model feature %q", have[i], want[i])
		}
	}
	return nil
}
