// Package service holds the stateful side of the map: the live style, the
// data files it can load, and SQL-backed sources.
package service

// Resource names carried by Events.
const (
	ResourceSources = "sources"
	ResourceLayers  = "layers"
	ResourceCamera  = "camera"
	ResourceToggles = "toggles"
)

// Event actions.
const (
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionShown   = "shown"
	ActionHidden  = "hidden"
	ActionMoved   = "moved"
)

// SourceFile is a data file under the sources directory.
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"tracts.geojson"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType string `json:"fileType" doc:"File type" example:"GeoJSON"`
	Loadable bool   `json:"loadable" doc:"Whether the file can be loaded as a geojson source"`
}

// TileFile is a PMTiles archive under the tiles directory.
type TileFile struct {
	Name     string `json:"name" doc:"PMTiles file name" example:"tracts.pmtiles"`
	Size     string `json:"size" doc:"Human-readable file size" example:"5.4 MB"`
	TileType string `json:"tileType,omitempty" doc:"Tile format from the header" example:"mvt"`
	MinZoom  int    `json:"minZoom" doc:"Lowest zoom in the archive"`
	MaxZoom  int    `json:"maxZoom" doc:"Highest zoom in the archive"`
}

// SourceInfo summarizes a live source.
type SourceInfo struct {
	ID       string `json:"id" doc:"Source id"`
	Type     string `json:"type" doc:"Source type" enum:"geojson,vector"`
	Features int    `json:"features" doc:"Inline feature count (geojson)"`
	Tiles    string `json:"tiles,omitempty" doc:"Tile URL template (vector)"`
}
