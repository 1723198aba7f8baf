package service

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/mapview"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/visibility"
)

// Marker layer and source ids used by AddMarkers.
const (
	MarkersLayerID  = "markers"
	MarkersSourceID = "markersSource"
)

// Layers returns the live layers in paint order, bottom first.
func (s *MapService) Layers() []style.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.Layers()
}

// Layer returns one live layer.
func (s *MapService) Layer(id string) (style.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.GetLayer(id)
}

// UpsertLayer compiles cfg and adds or replaces the layer it names, placing
// it below beforeID or on top.
func (s *MapService) UpsertLayer(cfg style.Config, t style.LayerType, beforeID string) (style.Layer, error) {
	if cfg == nil {
		return style.Layer{}, fmt.Errorf("%w: nil config", style.ErrUnrecognizedLayerType)
	}
	var out style.Layer
	err := s.mutate(Event{ResourceLayers, ActionUpdated, cfg.Common().LayerID}, func(v *mapview.Map) error {
		if err := v.AddLayer(cfg, t, beforeID); err != nil {
			return err
		}
		out, _ = s.mem.GetLayer(cfg.Common().LayerID)
		return nil
	})
	return out, err
}

// RemoveLayer removes a layer.
func (s *MapService) RemoveLayer(id string) error {
	return s.mutate(Event{ResourceLayers, ActionDeleted, id}, func(v *mapview.Map) error {
		if !v.HasLayer(id) {
			return fmt.Errorf("%w: %q", engine.ErrLayerNotFound, id)
		}
		v.RemoveLayerIfExists(id)
		return nil
	})
}

// ShowLayer makes a layer visible.
func (s *MapService) ShowLayer(id string) error {
	return s.mutate(Event{ResourceLayers, ActionShown, id}, func(v *mapview.Map) error {
		return v.ShowLayer(id)
	})
}

// HideLayer hides a layer.
func (s *MapService) HideLayer(id string) error {
	return s.mutate(Event{ResourceLayers, ActionHidden, id}, func(v *mapview.Map) error {
		return v.HideLayer(id)
	})
}

// Toggle applies a toggle event. Layers the plan names but the map lacks
// are reported in the error; the others are still switched, and the change
// is saved.
func (s *MapService) Toggle(ev visibility.Event) (visibility.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.view.ApplyToggle(ev)
	if len(plan.Show)+len(plan.Hide) == 0 {
		return plan, err
	}
	if saveErr := s.saveToDisk(); saveErr != nil {
		s.log.WithError(saveErr).Error("saving style")
		return plan, saveErr
	}
	action := ActionHidden
	if ev.On {
		action = ActionShown
	}
	s.bus.Publish(Event{ResourceToggles, action, ev.Group})
	return plan, err
}

// ToggleGroups returns the registered toggle groups.
func (s *MapService) ToggleGroups() []string {
	return s.view.Toggles().Groups()
}

// AddMarkers builds a point source from parallel coordinate and property
// lists and draws it with a symbol layer on top.
func (s *MapService) AddMarkers(points []orb.Point, properties []geo.Properties, cfg style.SymbolConfig) (style.Layer, error) {
	features, err := geo.FeatureCollection("Point", geo.PointCoordinates(points), properties)
	if err != nil {
		s.log.WithError(err).WithField("op", "markers").Error("building marker collection")
		return style.Layer{}, err
	}
	if err := s.UpsertGeoJSONSource(MarkersSourceID, features); err != nil {
		return style.Layer{}, err
	}
	layerCfg := style.WithIDs(cfg, MarkersLayerID, MarkersSourceID)
	return s.UpsertLayer(layerCfg, style.TypeSymbol, "")
}

func sortSources(infos []SourceInfo) {
	slices.SortFunc(infos, func(a, b SourceInfo) int { return cmp.Compare(a.ID, b.ID) })
}
