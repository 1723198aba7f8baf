// Package engine defines the rendering-engine contract the map façade drives
// and provides Memory, an engine that keeps the live sources and layers as a
// style document a browser map can load.
package engine

import (
	"errors"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

var (
	ErrSourceNotFound  = errors.New("source not found")
	ErrLayerNotFound   = errors.New("layer not found")
	ErrDuplicateSource = errors.New("source already exists")
	ErrDuplicateLayer  = errors.New("layer already exists")
	ErrSourceInUse     = errors.New("source is used by layers")
)

// Engine is the imperative map API: sources, layers in paint order, layout
// properties, feature queries and the camera.
type Engine interface {
	AddSource(id string, src style.Source) error
	RemoveSource(id string) error
	GetSource(id string) (style.Source, bool)

	// AddLayer inserts the layer immediately below beforeID, or on top when
	// beforeID is empty.
	AddLayer(layer style.Layer, beforeID string) error
	RemoveLayer(id string) error
	GetLayer(id string) (style.Layer, bool)
	// Layers returns the layers in paint order, bottom first.
	Layers() []style.Layer
	SetLayoutProperty(layerID, name string, value any) error

	// QueryRenderedFeatures returns features drawn in the current viewport by
	// the named layers (all layers when nil), topmost layer first.
	QueryRenderedFeatures(layers []string, filter style.Filter) ([]geo.Feature, error)
	// QuerySourceFeatures returns every feature of a source passing filter.
	QuerySourceFeatures(sourceID, sourceLayer string, filter style.Filter) ([]geo.Feature, error)

	FlyTo(center orb.Point, zoom float64)
	FitBounds(b orb.Bound)
	Bounds() orb.Bound
	DisableRotation()

	// OnLoad runs fn once the engine is ready; immediately if it already is.
	OnLoad(fn func())
}
