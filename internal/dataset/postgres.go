package dataset

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"

	"github.com/wasatch-geo/riskmodel/internal/db"
	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// identPattern restricts table and column names interpolated into SQL.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PointQuery describes a PostGIS point table to load as a record set.
type PointQuery struct {
	Table   string   // table name, optionally schema-qualified
	GeomCol string   // geometry column, default "geom"
	Columns []string // attribute columns to load (label and features)
}

// LoadPoints reads labeled point records from a PostGIS table. Geometry is
// decoded from WKB and becomes the "x" and "y" columns; NULL attributes
// become NaN.
func LoadPoints(ctx context.Context, pool db.Pool, q PointQuery) (*Table, error) {
	if q.GeomCol == "" {
		q.GeomCol = "geom"
	}
	if err := validateIdent(q.Table); err != nil {
		return nil, err
	}
	if err := validateIdent(q.GeomCol); err != nil {
		return nil, err
	}
	if len(q.Columns) == 0 {
		return nil, errs.Schemaf("postgres: no attribute columns requested")
	}
	for _, c := range q.Columns {
		if err := validateIdent(c); err != nil {
			return nil, err
		}
	}

	sql := fmt.Sprintf(
		`SELECT ST_AsBinary(%s), %s FROM %s`,
		q.GeomCol, strings.Join(q.Columns, ", "), q.Table,
	)

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", q.Table)
	}
	defer rows.Close()

	xs := []float64{}
	ys := []float64{}
	attrs := make([][]float64, len(q.Columns))

	for rows.Next() {
		var geomBytes []byte
		dest := make([]any, 0, len(q.Columns)+1)
		dest = append(dest, &geomBytes)
		vals := make([]*float64, len(q.Columns))
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan row from %s", q.Table)
		}

		g, err := wkb.Unmarshal(geomBytes)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: decode %s geometry", q.GeomCol)
		}
		pt, ok := g.(*geom.Point)
		if !ok {
			return nil, errs.Schemaf("postgres: %s.%s is not a point geometry", q.Table, q.GeomCol)
		}

		xs = append(xs, pt.X())
		ys = append(ys, pt.Y())
		for i, v := range vals {
			if v == nil {
				attrs[i] = append(attrs[i], math.NaN())
			} else {
				attrs[i] = append(attrs[i], *v)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: iterate %s", q.Table)
	}

	zap.L().Debug("loaded points from postgres",
		zap.String("table", q.Table),
		zap.Int("records", len(xs)),
	)

	t := NewTable()
	if err := t.AddColumn(ShapeXCol, xs); err != nil {
		return nil, err
	}
	if err := t.AddColumn(ShapeYCol, ys); err != nil {
		return nil, err
	}
	for i, name := range q.Columns {
		if err := t.AddColumn(name, attrs[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func validateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return errs.Schemaf("postgres: invalid identifier %q", name)
	}
	return nil
}
