package style

import "github.com/joeblew999/plat-mapstyle/internal/geo"

// SourceType is the kind of data provider behind a source.
type SourceType string

const (
	SourceGeoJSON SourceType = "geojson"
	SourceVector  SourceType = "vector"
)

// DefaultVectorMaxZoom is the highest zoom requested from tile servers.
const DefaultVectorMaxZoom = 14

// Source is a style-specification source document.
type Source struct {
	Type    SourceType      `json:"type" enum:"geojson,vector" doc:"Source type"`
	Data    *geo.Collection `json:"data,omitempty" doc:"Inline FeatureCollection (geojson)"`
	Tiles   []string        `json:"tiles,omitempty" doc:"Tile URL templates (vector)"`
	MinZoom int             `json:"minzoom,omitempty" doc:"Lowest available zoom (vector)"`
	MaxZoom int             `json:"maxzoom,omitempty" doc:"Highest available zoom (vector)"`
}

// GeoJSONSource wraps features in an inline geojson source.
func GeoJSONSource(features []geo.Feature) Source {
	return Source{Type: SourceGeoJSON, Data: geo.NewCollection(features)}
}

// VectorSource points a vector source at a tile URL template.
func VectorSource(url string) Source {
	return Source{Type: SourceVector, Tiles: []string{url}, MaxZoom: DefaultVectorMaxZoom}
}

// VectorSourceZoom is VectorSource with an explicit zoom range.
func VectorSourceZoom(url string, minZoom, maxZoom int) Source {
	return Source{Type: SourceVector, Tiles: []string{url}, MinZoom: minZoom, MaxZoom: maxZoom}
}

// Features returns the inline features of a geojson source.
func (s Source) Features() []geo.Feature {
	if s.Data == nil {
		return nil
	}
	return s.Data.Features
}

// Style is a style-specification root document holding the live sources
// and layers in paint order.
type Style struct {
	Version int               `json:"version" doc:"Style specification version"`
	Name    string            `json:"name,omitempty"`
	Center  []float64         `json:"center,omitempty" doc:"Initial [lng, lat]"`
	Zoom    float64           `json:"zoom" doc:"Initial zoom"`
	Sprite  string            `json:"sprite,omitempty"`
	Glyphs  string            `json:"glyphs,omitempty"`
	Sources map[string]Source `json:"sources"`
	Layers  []Layer           `json:"layers"`
}

// SpecVersion is the style specification version emitted.
const SpecVersion = 8
