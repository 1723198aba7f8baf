// Package mapview is the map façade: upserting sources and layers compiled
// from typed configs, toggling visibility, and camera and feature queries.
//
// Failures never panic. Invalid input produces a logged diagnostic and an
// error, and the engine state is left untouched.
package mapview

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/visibility"
)

// DefaultFlyZoom is the zoom FlyTo uses when none is given.
const DefaultFlyZoom = 12

var (
	// ErrMissingLayer reports a show/hide on a layer id the map does not have.
	ErrMissingLayer = errors.New("layer does not exist")
	// ErrSourceLayerOnGeoJSON reports a source-layer set on a geojson source.
	ErrSourceLayerOnGeoJSON = errors.New("source-layer cannot be used with a geojson source")
	// ErrUnknownGroup reports a toggle for an unregistered group.
	ErrUnknownGroup = errors.New("unknown toggle group")
	// ErrNoUniqueKey reports a Config without the dedup key.
	ErrNoUniqueKey = errors.New("unique key is required")
)

// Config configures a Map.
type Config struct {
	// UniqueKey is the feature property identifying a feature across tiles,
	// used to drop duplicates from query results (e.g. "geoid10").
	UniqueKey string
	// Toggles resolves toggle groups; nil means visibility.DefaultRegistry.
	Toggles *visibility.Registry
	// Logger receives diagnostics; nil means the logrus standard logger.
	Logger log.FieldLogger
}

// Map drives an engine.Engine.
type Map struct {
	engine    engine.Engine
	uniqueKey string
	toggles   *visibility.Registry
	log       log.FieldLogger
}

// New creates a Map over e.
func New(e engine.Engine, cfg Config) (*Map, error) {
	if cfg.UniqueKey == "" {
		return nil, ErrNoUniqueKey
	}
	if cfg.Toggles == nil {
		cfg.Toggles = visibility.DefaultRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	return &Map{
		engine:    e,
		uniqueKey: cfg.UniqueKey,
		toggles:   cfg.Toggles,
		log:       cfg.Logger,
	}, nil
}

// Engine returns the underlying engine.
func (m *Map) Engine() engine.Engine {
	return m.engine
}

// AddSourceWithURL upserts a vector tile source.
func (m *Map) AddSourceWithURL(sourceID, url string) error {
	return m.upsertSource(sourceID, style.VectorSource(url))
}

// AddSourceWithGeoJSON upserts a geojson source holding features.
func (m *Map) AddSourceWithGeoJSON(sourceID string, features []geo.Feature) error {
	return m.upsertSource(sourceID, style.GeoJSONSource(features))
}

// AddSource upserts an arbitrary source document.
func (m *Map) AddSource(sourceID string, src style.Source) error {
	return m.upsertSource(sourceID, src)
}

// upsertSource replaces any source with the same id. Layers drawing from it
// are detached first and re-attached at their old positions afterwards. If
// the engine fails partway the old source and every detached layer are put
// back.
func (m *Map) upsertSource(sourceID string, src style.Source) error {
	entry := m.log.WithFields(log.Fields{"op": "addSource", "source": sourceID})

	if old, exists := m.engine.GetSource(sourceID); exists {
		var dependents []style.Layer
		for _, l := range m.engine.Layers() {
			if l.Source == sourceID {
				dependents = append(dependents, l)
			}
		}
		if src.Type == style.SourceGeoJSON {
			for _, l := range dependents {
				if l.SourceLayer != "" {
					entry.WithField("layer", l.ID).Warn("dependent layer uses a source-layer")
					return fmt.Errorf("layer %q: %w", l.ID, ErrSourceLayerOnGeoJSON)
				}
			}
		}

		anchors := m.anchorsAbove(dependents)
		rollback := func(err error) error {
			entry.WithError(err).Error("replacing source")
			if _, ok := m.engine.GetSource(sourceID); !ok {
				if rerr := m.engine.AddSource(sourceID, old); rerr != nil {
					return errors.Join(err, rerr)
				}
			}
			return errors.Join(err, m.reattach(entry, dependents, anchors))
		}

		for _, l := range dependents {
			if err := m.engine.RemoveLayer(l.ID); err != nil {
				return rollback(err)
			}
		}
		if err := m.engine.RemoveSource(sourceID); err != nil {
			return rollback(err)
		}
		if err := m.engine.AddSource(sourceID, src); err != nil {
			return rollback(err)
		}
		if err := m.reattach(entry, dependents, anchors); err != nil {
			return err
		}
		entry.WithField("layers", len(dependents)).Debug("source replaced")
		return nil
	}

	if err := m.engine.AddSource(sourceID, src); err != nil {
		entry.WithError(err).Error("adding source")
		return err
	}
	entry.Debug("source added")
	return nil
}

// reattach adds back the layers that are missing, topmost first so each
// anchor is present when needed. It keeps going past failures.
func (m *Map) reattach(entry log.FieldLogger, layers []style.Layer, anchors map[string]string) error {
	var errs []error
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if _, ok := m.engine.GetLayer(l.ID); ok {
			continue
		}
		if err := m.engine.AddLayer(l, anchors[l.ID]); err != nil {
			entry.WithError(err).WithField("layer", l.ID).Error("re-attaching layer")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// anchorsAbove maps each layer to the id of the layer right above it in the
// final order, skipping nothing: the layer above may itself be a dependent,
// which is re-inserted before it.
func (m *Map) anchorsAbove(dependents []style.Layer) map[string]string {
	all := m.engine.Layers()
	anchors := make(map[string]string, len(dependents))
	for _, d := range dependents {
		for i, l := range all {
			if l.ID == d.ID {
				if i+1 < len(all) {
					anchors[d.ID] = all[i+1].ID
				}
				break
			}
		}
	}
	return anchors
}

// AddLayer compiles cfg and upserts the layer. With beforeLayerID set the
// layer is placed immediately below it, otherwise on top.
func (m *Map) AddLayer(cfg style.Config, layerType style.LayerType, beforeLayerID string) error {
	entry := m.log.WithFields(log.Fields{"op": "addLayer", "type": layerType})

	layer, err := style.BuildLayerJSON(cfg, layerType)
	if err != nil {
		entry.WithError(err).Error("compiling layer")
		return err
	}
	entry = entry.WithField("layer", layer.ID)

	src, ok := m.engine.GetSource(layer.Source)
	if !ok {
		entry.WithField("source", layer.Source).Error("source does not exist")
		return fmt.Errorf("layer %q: %w: %q", layer.ID, engine.ErrSourceNotFound, layer.Source)
	}
	if src.Type == style.SourceGeoJSON && layer.SourceLayer != "" {
		entry.Error("source-layer set on geojson source")
		return fmt.Errorf("layer %q: %w", layer.ID, ErrSourceLayerOnGeoJSON)
	}
	if beforeLayerID == layer.ID {
		beforeLayerID = m.layerAbove(layer.ID)
	}
	if beforeLayerID != "" {
		if _, ok := m.engine.GetLayer(beforeLayerID); !ok {
			entry.WithField("before", beforeLayerID).Error("before layer does not exist")
			return fmt.Errorf("before %w: %q", engine.ErrLayerNotFound, beforeLayerID)
		}
	}

	m.RemoveLayerIfExists(layer.ID)
	if err := m.engine.AddLayer(layer, beforeLayerID); err != nil {
		entry.WithError(err).Error("adding layer")
		return err
	}
	entry.Debug("layer added")
	return nil
}

func (m *Map) layerAbove(id string) string {
	all := m.engine.Layers()
	for i, l := range all {
		if l.ID == id && i+1 < len(all) {
			return all[i+1].ID
		}
	}
	return ""
}

// RemoveLayerIfExists removes a layer, doing nothing when it is absent.
func (m *Map) RemoveLayerIfExists(layerID string) {
	if _, ok := m.engine.GetLayer(layerID); ok {
		if err := m.engine.RemoveLayer(layerID); err != nil {
			m.log.WithError(err).WithField("layer", layerID).Warn("removing layer")
		}
	}
}

// RemoveSourceIfExists removes a source, doing nothing when it is absent.
// Layers still drawing from it are removed too.
func (m *Map) RemoveSourceIfExists(sourceID string) {
	if _, ok := m.engine.GetSource(sourceID); !ok {
		return
	}
	for _, l := range m.engine.Layers() {
		if l.Source == sourceID {
			m.RemoveLayerIfExists(l.ID)
		}
	}
	if err := m.engine.RemoveSource(sourceID); err != nil {
		m.log.WithError(err).WithField("source", sourceID).Warn("removing source")
	}
}

// HasSource reports whether the map has the source.
func (m *Map) HasSource(sourceID string) bool {
	_, ok := m.engine.GetSource(sourceID)
	return ok
}

// HasLayer reports whether the map has the layer.
func (m *Map) HasLayer(layerID string) bool {
	_, ok := m.engine.GetLayer(layerID)
	return ok
}

// ShowLayer makes a layer visible.
func (m *Map) ShowLayer(layerID string) error {
	return m.setVisibility("showLayer", layerID, style.Visible)
}

// HideLayer hides a layer.
func (m *Map) HideLayer(layerID string) error {
	return m.setVisibility("hideLayer", layerID, style.Hidden)
}

func (m *Map) setVisibility(op, layerID string, v style.Visibility) error {
	if _, ok := m.engine.GetLayer(layerID); !ok {
		m.log.WithFields(log.Fields{"op": op, "layer": layerID}).Warn("layer does not exist")
		return fmt.Errorf("%s %q: %w", op, layerID, ErrMissingLayer)
	}
	return m.engine.SetLayoutProperty(layerID, "visibility", v)
}

// ApplyToggle resolves a toggle event and applies its plan. Missing layers
// in the plan are reported but do not stop the others.
func (m *Map) ApplyToggle(ev visibility.Event) (visibility.Plan, error) {
	plan, ok := m.toggles.Resolve(ev)
	if !ok {
		m.log.WithFields(log.Fields{"op": "toggle", "group": ev.Group}).Warn("unknown toggle group")
		return visibility.Plan{}, fmt.Errorf("%w: %q", ErrUnknownGroup, ev.Group)
	}
	var errs []error
	for _, id := range plan.Show {
		errs = append(errs, m.ShowLayer(id))
	}
	for _, id := range plan.Hide {
		errs = append(errs, m.HideLayer(id))
	}
	return plan, errors.Join(errs...)
}

// Toggles returns the toggle registry.
func (m *Map) Toggles() *visibility.Registry {
	return m.toggles
}
