// Package geo assembles GeoJSON features for map sources.
package geo

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrInputLengthMismatch is returned when coordinates and properties differ in length.
var ErrInputLengthMismatch = errors.New("coordinates and properties must have the same length")

// Properties holds the scalar attributes of a feature.
type Properties map[string]any

// Geometry is a GeoJSON geometry object. Coordinates are kept as supplied
// (a position or a nested position array) so any geometry type round-trips.
type Geometry struct {
	Type        string `json:"type" doc:"GeoJSON geometry type" example:"Point"`
	Coordinates any    `json:"coordinates" doc:"Position or nested position array"`
}

// Feature is a GeoJSON feature. Properties is omitted when nil and kept as
// {} when empty.
type Feature struct {
	Type       string     `json:"type" enum:"Feature" doc:"Always Feature"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties,omitempty"`
}

type bareFeature struct {
	Type     string   `json:"type"`
	Geometry Geometry `json:"geometry"`
}

type fullFeature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

func (f Feature) MarshalJSON() ([]byte, error) {
	if f.Properties == nil {
		return json.Marshal(bareFeature{Type: f.Type, Geometry: f.Geometry})
	}
	return json.Marshal(fullFeature{Type: f.Type, Geometry: f.Geometry, Properties: f.Properties})
}

// Collection is a GeoJSON FeatureCollection, the data member of a geojson source.
type Collection struct {
	Type     string    `json:"type" enum:"FeatureCollection"`
	Features []Feature `json:"features"`
}

// NewFeature returns a feature with the given geometry.
func NewFeature(g Geometry, props Properties) Feature {
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// NewCollection wraps features into a FeatureCollection document.
func NewCollection(features []Feature) *Collection {
	if features == nil {
		features = []Feature{}
	}
	return &Collection{Type: "FeatureCollection", Features: features}
}

// FeatureCollection pairs coordinates[i] with properties[i] into features of
// geometryType. A nil properties slice means no properties at all and the
// key is left off every feature.
func FeatureCollection(geometryType string, coordinates []any, properties []Properties) ([]Feature, error) {
	if properties != nil && len(coordinates) != len(properties) {
		return nil, fmt.Errorf("%w: %d coordinates, %d properties",
			ErrInputLengthMismatch, len(coordinates), len(properties))
	}

	features := make([]Feature, 0, len(coordinates))
	for i, c := range coordinates {
		f := NewFeature(Geometry{Type: geometryType, Coordinates: c}, nil)
		if properties != nil {
			f.Properties = properties[i]
		}
		features = append(features, f)
	}
	return features, nil
}

// PointCoordinates converts orb points to the coordinate slice expected by
// FeatureCollection.
func PointCoordinates(points []orb.Point) []any {
	out := make([]any, len(points))
	for i, p := range points {
		out[i] = []float64{p[0], p[1]}
	}
	return out
}

// FromOrb converts an orb geometry to a GeoJSON geometry.
func FromOrb(g orb.Geometry) Geometry {
	return Geometry{Type: g.GeoJSONType(), Coordinates: geojson.NewGeometry(g).Coordinates}
}

// Orb decodes the geometry into its orb representation.
func (g Geometry) Orb() (orb.Geometry, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s geometry: %w", g.Type, err)
	}
	return geom.Geometry(), nil
}

// Decode converts an orb feature collection, typically read from a file.
func Decode(fc *geojson.FeatureCollection) []Feature {
	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var props Properties
		if f.Properties != nil {
			props = make(Properties, len(f.Properties))
			for k, v := range f.Properties {
				props[k] = v
			}
		}
		features = append(features, NewFeature(FromOrb(f.Geometry), props))
	}
	return features
}
