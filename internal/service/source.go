package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrInvalidName    = errors.New("invalid file name")
	ErrNotLoadable    = errors.New("file type cannot be loaded as geojson")
	ErrInvalidGeoJSON = errors.New("invalid geojson")
	ErrNotVector      = errors.New("archive does not hold vector tiles")
)

// sourceTypes maps recognized extensions to a display type.
var sourceTypes = map[string]string{
	".geojson":    "GeoJSON",
	".json":       "GeoJSON",
	".csv":        "CSV",
	".gpkg":       "GeoPackage",
	".shp":        "Shapefile",
	".parquet":    "GeoParquet",
	".geoparquet": "GeoParquet",
}

// SourceService lists and loads data files under <dataDir>/sources.
type SourceService struct {
	sourcesDir string
}

// NewSourceService creates a new source service.
func NewSourceService(dataDir string) *SourceService {
	return &SourceService{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns the recognized source files.
func (s *SourceService) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(s.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	files := []SourceFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileType, ok := sourceTypes[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
			Loadable: fileType == "GeoJSON",
		})
	}
	return files, nil
}

// Load reads a GeoJSON file as features. Bare geometries and single
// features are accepted as well as collections.
func (s *SourceService) Load(name string) ([]geo.Feature, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	if sourceTypes[strings.ToLower(filepath.Ext(name))] != "GeoJSON" {
		return nil, fmt.Errorf("%w: %q", ErrNotLoadable, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
		}
		return nil, err
	}
	return DecodeGeoJSON(data)
}

// DecodeGeoJSON decodes a FeatureCollection, a single Feature or a bare
// geometry into features.
func DecodeGeoJSON(data []byte) ([]geo.Feature, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && fc.Type == "FeatureCollection" {
		return geo.Decode(fc), nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		fc := geojson.NewFeatureCollection().Append(f)
		return geo.Decode(fc), nil
	}
	if g, err := geojson.UnmarshalGeometry(data); err == nil && g.Geometry() != nil {
		return []geo.Feature{geo.NewFeature(geo.FromOrb(g.Geometry()), nil)}, nil
	}
	return nil, ErrInvalidGeoJSON
}

// path resolves a plain file name inside the sources directory.
func (s *SourceService) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.sourcesDir, name), nil
}

// SourcesDir returns the path to the sources directory.
func (s *SourceService) SourcesDir() string {
	return s.sourcesDir
}
