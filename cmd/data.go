package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wasatch-geo/riskmodel/internal/dataset"
	"github.com/wasatch-geo/riskmodel/internal/feature"
	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/store"
)

// dataFlags holds the dataset flags shared by fit and crossval.
type dataFlags struct {
	data     string
	table    string
	geomCol  string
	columns  []string
	xCol     string
	yCol     string
	labelCol string
	exclude  []string
	srid     int
}

func (d *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.data, "data", "", "input dataset (.csv, .xlsx, .shp, or a postgres:// DSN)")
	cmd.Flags().StringVar(&d.table, "table", "", "postgres: point table to load")
	cmd.Flags().StringVar(&d.geomCol, "geom", "geom", "postgres: geometry column")
	cmd.Flags().StringSliceVar(&d.columns, "columns", nil, "postgres: attribute columns to load (label and features)")
	cmd.Flags().StringVar(&d.xCol, "x", "x", "x coordinate column")
	cmd.Flags().StringVar(&d.yCol, "y", "y", "y coordinate column")
	cmd.Flags().StringVar(&d.labelCol, "label", "label", "binary label column")
	cmd.Flags().StringSliceVar(&d.exclude, "exclude", nil, "additional non-predictive columns to exclude")
	cmd.Flags().IntVar(&d.srid, "srid", 0, "spatial reference system (default from config)")
	_ = cmd.MarkFlagRequired("data")
}

// isPostgres reports whether the data argument is a connection string rather
// than a file path.
func isPostgres(data string) bool {
	return strings.HasPrefix(data, "postgres://") || strings.HasPrefix(data, "postgresql://")
}

// loadTable reads the input record set, dispatching on file extension.
func loadTable(path string) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.ReadCSVFile(path)
	case ".xlsx":
		return dataset.ReadXLSXFile(path)
	case ".shp":
		return dataset.ReadPointShapefile(path)
	default:
		return nil, eris.Errorf("unsupported dataset format %q (want .csv, .xlsx, or .shp)", filepath.Ext(path))
	}
}

// load reads the dataset, binds it into a labeled spatial sample, and
// selects the predictive feature set (all columns minus coordinates, label,
// and explicit exclusions).
func (d *dataFlags) load(ctx context.Context) (*dataset.Sample, []string, error) {
	var t *dataset.Table
	var err error
	if isPostgres(d.data) {
		t, err = d.loadPostgres(ctx)
	} else {
		t, err = loadTable(d.data)
	}
	if err != nil {
		return nil, nil, err
	}

	srid := d.srid
	if srid == 0 {
		srid = cfg.Raster.SRID
	}

	s, err := dataset.NewSample(t, dataset.Binding{
		XCol:     d.xCol,
		YCol:     d.yCol,
		LabelCol: d.labelCol,
		SRID:     srid,
	})
	if err != nil {
		return nil, nil, err
	}

	exclude := append([]string{d.xCol, d.yCol, d.labelCol}, d.exclude...)
	features, err := feature.Select(s.Columns(), exclude)
	if err != nil {
		return nil, nil, err
	}
	return s, features, nil
}

// loadPostgres reads labeled points from a PostGIS table, using the data
// argument as the connection string.
func (d *dataFlags) loadPostgres(ctx context.Context) (*dataset.Table, error) {
	if d.table == "" {
		return nil, eris.New("--table is required for a postgres data source")
	}
	if len(d.columns) == 0 {
		return nil, eris.New("--columns is required for a postgres data source")
	}

	pool, err := pgxpool.New(ctx, d.data)
	if err != nil {
		return nil, eris.Wrap(err, "connect to postgres")
	}
	defer pool.Close()

	return dataset.LoadPoints(ctx, pool, dataset.PointQuery{
		Table:   d.table,
		GeomCol: d.geomCol,
		Columns: d.columns,
	})
}

// modelFlags holds the model flags shared by fit and crossval. Zero values
// defer to the configured defaults.
type modelFlags struct {
	variant     string
	trees       int
	featureRate float64
	minLeaf     int
	importance  bool
	seed        int64
	maxIter     int
	tol         float64
}

func (m *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.variant, "model", "", "model variant: logistic or forest (default from config)")
	cmd.Flags().IntVar(&m.trees, "trees", 0, "forest: number of trees")
	cmd.Flags().Float64Var(&m.featureRate, "feature-rate", 0, "forest: fraction of features tried per split (0 = sqrt heuristic)")
	cmd.Flags().IntVar(&m.minLeaf, "min-leaf", 0, "forest: minimum records per leaf")
	cmd.Flags().BoolVar(&m.importance, "importance", false, "forest: track feature importance")
	cmd.Flags().Int64Var(&m.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().IntVar(&m.maxIter, "max-iter", 0, "logistic: maximum IRLS iterations")
	cmd.Flags().Float64Var(&m.tol, "tol", 0, "logistic: convergence tolerance")
}

// toConfig merges flag overrides over the configured model defaults.
func (m *modelFlags) toConfig() model.Config {
	mc := cfg.Model.ToModel()
	if m.variant != "" {
		mc.Variant = model.Variant(m.variant)
	}
	if m.trees > 0 {
		mc.Trees = m.trees
	}
	if m.featureRate > 0 {
		mc.FeatureRate = m.featureRate
	}
	if m.minLeaf > 0 {
		mc.MinLeaf = m.minLeaf
	}
	if m.importance {
		mc.Importance = true
	}
	if m.seed != 0 {
		mc.Seed = m.seed
	}
	if m.maxIter > 0 {
		mc.MaxIter = m.maxIter
	}
	if m.tol > 0 {
		mc.Tol = m.tol
	}
	return mc
}

// openStore opens and migrates the configured run store.
func openStore(ctx context.Context) (store.Store, error) {
	s, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
