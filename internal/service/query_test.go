package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/db"
)

func newQueryService(t *testing.T) *QueryService {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.Config{Extensions: []string{}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.ExecContext(ctx, `CREATE TABLE shelters (name VARCHAR, capacity INTEGER, lon DOUBLE, lat DOUBLE, geom VARCHAR)`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `
		INSERT INTO shelters VALUES
			('North', 120, -110.98, 32.23, '{"type":"Point","coordinates":[-110.98,32.23]}'),
			('South', 80, -110.95, 32.25, '{"type":"Point","coordinates":[-110.95,32.25]}')
	`)
	require.NoError(t, err)
	return NewQueryService(conn)
}

func TestQueryServicePointFeatures(t *testing.T) {
	s := newQueryService(t)
	features, err := s.Features(context.Background(), FeatureQuery{
		SQL: "SELECT name, capacity, lon, lat FROM shelters ORDER BY name",
	})
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, "Point", features[0].Geometry.Type)
	assert.Equal(t, []float64{-110.98, 32.23}, features[0].Geometry.Coordinates)
	assert.Equal(t, "North", features[0].Properties["name"])
	assert.EqualValues(t, 120, features[0].Properties["capacity"])
	assert.NotContains(t, features[0].Properties, "lon")
}

func TestQueryServiceCustomColumns(t *testing.T) {
	s := newQueryService(t)
	features, err := s.Features(context.Background(), FeatureQuery{
		SQL: "SELECT name, lon AS x, lat AS y FROM shelters",
		Lon: "x",
		Lat: "y",
	})
	require.NoError(t, err)
	assert.Len(t, features, 2)

	_, err = s.Features(context.Background(), FeatureQuery{SQL: "SELECT name FROM shelters"})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestQueryServiceGeometryColumn(t *testing.T) {
	s := newQueryService(t)
	features, err := s.Features(context.Background(), FeatureQuery{
		SQL:      "SELECT name, geom FROM shelters ORDER BY name DESC",
		Geometry: "geom",
	})
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "South", features[0].Properties["name"])
	assert.NotContains(t, features[0].Properties, "geom")

	g, err := features[0].Geometry.Orb()
	require.NoError(t, err)
	assert.InDelta(t, 32.25, g.Bound().Min[1], 1e-9)
}

func TestQueryServiceTablesAndRun(t *testing.T) {
	s := newQueryService(t)
	ctx := context.Background()

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shelters"}, tables)

	cols, rows, err := s.Run(ctx, "SELECT name FROM shelters WHERE capacity > 100")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, cols)
	assert.Equal(t, []map[string]any{{"name": "North"}}, rows)

	_, _, err = s.Run(ctx, "SELECT nope FROM shelters")
	assert.ErrorIs(t, err, ErrQuery)
}

func TestQueryServiceWithoutDatabase(t *testing.T) {
	s := NewQueryService(nil)
	assert.False(t, s.Available())
	_, err := s.Features(context.Background(), FeatureQuery{SQL: "SELECT 1"})
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = s.Tables(context.Background())
	assert.ErrorIs(t, err, ErrNoDatabase)
}
