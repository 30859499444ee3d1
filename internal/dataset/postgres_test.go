package dataset

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// fptr returns a *float64 so pgxmock rows match the *float64 scan
// destinations used by LoadPoints for nullable columns.
func fptr(v float64) *float64 { return &v }

func pointWKB(t *testing.T, x, y float64) []byte {
	t.Helper()
	b, err := wkb.Marshal(geom.NewPointFlat(geom.XY, []float64{x, y}), wkb.NDR)
	require.NoError(t, err)
	return b
}

func TestLoadPoints(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"st_asbinary", "label", "slope"}).
		AddRow(pointWKB(t, -111.9, 40.7), fptr(1.0), fptr(10.5)).
		AddRow(pointWKB(t, -111.8, 40.8), fptr(0.0), nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ST_AsBinary(geom), label, slope FROM sites`)).
		WillReturnRows(rows)

	tb, err := LoadPoints(context.Background(), mock, PointQuery{
		Table:   "sites",
		Columns: []string{"label", "slope"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, tb.Len())

	xs, _ := tb.Column(ShapeXCol)
	assert.Equal(t, []float64{-111.9, -111.8}, xs)

	label, _ := tb.Column("label")
	assert.Equal(t, []float64{1, 0}, label)

	slope, _ := tb.Column("slope")
	assert.Equal(t, 10.5, slope[0])
	assert.True(t, math.IsNaN(slope[1]))
}

func TestLoadPoints_NonPointGeometry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	line, err := wkb.Marshal(
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}), wkb.NDR)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT ST_AsBinary").WillReturnRows(
		pgxmock.NewRows([]string{"st_asbinary", "label"}).AddRow(line, fptr(1.0)))

	_, err = LoadPoints(context.Background(), mock, PointQuery{
		Table:   "sites",
		Columns: []string{"label"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}

func TestLoadPoints_InvalidIdentifier(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = LoadPoints(context.Background(), mock, PointQuery{
		Table:   "sites; DROP TABLE sites",
		Columns: []string{"label"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}

func TestLoadPoints_NoColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = LoadPoints(context.Background(), mock, PointQuery{Table: "sites"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}
