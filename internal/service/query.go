package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

var (
	ErrNoDatabase    = errors.New("database not available")
	ErrMissingColumn = errors.New("column missing from result")
	ErrQuery         = errors.New("query failed")
)

// FeatureQuery turns SQL rows into features. Either Geometry names a column
// holding GeoJSON geometry text (e.g. from ST_AsGeoJSON), or Lon and Lat name
// the point coordinate columns. All other columns become properties.
type FeatureQuery struct {
	SQL      string `json:"sql" required:"true" minLength:"1" doc:"SQL query" example:"SELECT name, lon, lat FROM shelters"`
	Lon      string `json:"lon,omitempty" default:"lon" doc:"Longitude column"`
	Lat      string `json:"lat,omitempty" default:"lat" doc:"Latitude column"`
	Geometry string `json:"geometry,omitempty" doc:"GeoJSON geometry column; overrides lon/lat"`
}

// QueryService runs SQL against DuckDB.
type QueryService struct {
	db *sql.DB
}

// NewQueryService creates a query service. conn may be nil, in which case
// every call fails with ErrNoDatabase.
func NewQueryService(conn *sql.DB) *QueryService {
	return &QueryService{db: conn}
}

// Available reports whether a database is attached.
func (s *QueryService) Available() bool {
	return s.db != nil
}

// Tables lists the tables in the database.
func (s *QueryService) Tables(ctx context.Context) ([]string, error) {
	_, records, err := s.run(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(records))
	for _, rec := range records {
		if name, ok := rec["name"].(string); ok {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// Run executes query and returns its rows.
func (s *QueryService) Run(ctx context.Context, query string) ([]string, []map[string]any, error) {
	columns, records, err := s.run(ctx, query)
	if records == nil {
		records = []map[string]any{}
	}
	return columns, records, err
}

func (s *QueryService) run(ctx context.Context, query string, args ...any) ([]string, []map[string]any, error) {
	if s.db == nil {
		return nil, nil, ErrNoDatabase
	}
	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return db.Rows(rs)
}

// Features runs q and converts each row to a feature.
func (s *QueryService) Features(ctx context.Context, q FeatureQuery) ([]geo.Feature, error) {
	columns, records, err := s.run(ctx, q.SQL)
	if err != nil {
		return nil, err
	}
	if q.Geometry != "" {
		return geometryFeatures(columns, records, q.Geometry)
	}
	return pointFeatures(columns, records, q)
}

func pointFeatures(columns []string, records []map[string]any, q FeatureQuery) ([]geo.Feature, error) {
	lonCol, latCol := q.Lon, q.Lat
	if lonCol == "" {
		lonCol = "lon"
	}
	if latCol == "" {
		latCol = "lat"
	}
	for _, c := range []string{lonCol, latCol} {
		if !hasColumn(columns, c) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}

	coords := make([]any, 0, len(records))
	props := make([]geo.Properties, 0, len(records))
	for i, rec := range records {
		lon, ok1 := number(rec[lonCol])
		lat, ok2 := number(rec[latCol])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("row %d: non-numeric coordinates", i)
		}
		coords = append(coords, []float64{lon, lat})
		props = append(props, properties(rec, lonCol, latCol))
	}
	return geo.FeatureCollection("Point", coords, props)
}

func geometryFeatures(columns []string, records []map[string]any, col string) ([]geo.Feature, error) {
	if !hasColumn(columns, col) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
	}
	features := make([]geo.Feature, 0, len(records))
	for i, rec := range records {
		var raw []byte
		switch v := rec[col].(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		case nil:
			continue
		default:
			return nil, fmt.Errorf("row %d: geometry column holds %T", i, v)
		}
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		features = append(features, geo.NewFeature(geo.FromOrb(g.Geometry()), properties(rec, col)))
	}
	return features, nil
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func properties(rec map[string]any, skip ...string) geo.Properties {
	props := make(geo.Properties, len(rec))
	for k, v := range rec {
		props[k] = v
	}
	for _, k := range skip {
		delete(props, k)
	}
	return props
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
