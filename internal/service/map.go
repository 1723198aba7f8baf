package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	log "github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/mapview"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tiler"
)

// ErrNotGeoJSON is returned when tiles are asked of a non-geojson source.
var ErrNotGeoJSON = errors.New("source is not geojson")

// styleFileName is the persisted style document under the data dir.
const styleFileName = "style.json"

// MapService owns the live map. Every mutation is serialized, persisted to
// disk and announced on the bus.
type MapService struct {
	dataDir string
	bus     *EventBus
	log     log.FieldLogger

	mu   sync.RWMutex
	mem  *engine.Memory
	view *mapview.Map
}

// MapConfig configures a MapService.
type MapConfig struct {
	DataDir string
	Engine  engine.Options
	View    mapview.Config
	Bus     *EventBus
}

// NewMapService creates the map and restores the last saved style, if any.
func NewMapService(cfg MapConfig) (*MapService, error) {
	if cfg.Bus == nil {
		cfg.Bus = NewEventBus()
	}
	if cfg.View.Logger == nil {
		cfg.View.Logger = log.StandardLogger()
	}

	mem := engine.NewMemory(cfg.Engine)
	view, err := mapview.New(mem, cfg.View)
	if err != nil {
		return nil, err
	}
	s := &MapService{
		dataDir: cfg.DataDir,
		bus:     cfg.Bus,
		log:     cfg.View.Logger,
		mem:     mem,
		view:    view,
	}
	if err := s.loadFromDisk(); err != nil {
		return nil, err
	}
	mem.Load()
	return s, nil
}

// Bus returns the event bus mutations are published on.
func (s *MapService) Bus() *EventBus {
	return s.bus
}

// AccessToken returns the credential handed to map clients.
func (s *MapService) AccessToken() string {
	return s.mem.AccessToken()
}

// Style returns a snapshot of the live style document.
func (s *MapService) Style() style.Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.Style()
}

// Sources summarizes the live sources, sorted by id.
func (s *MapService) Sources() []SourceInfo {
	st := s.Style()
	out := make([]SourceInfo, 0, len(st.Sources))
	for id, src := range st.Sources {
		info := SourceInfo{ID: id, Type: string(src.Type), Features: len(src.Features())}
		if len(src.Tiles) > 0 {
			info.Tiles = src.Tiles[0]
		}
		out = append(out, info)
	}
	sortSources(out)
	return out
}

// Source returns one live source.
func (s *MapService) Source(id string) (style.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.GetSource(id)
}

// UpsertGeoJSONSource adds or replaces an inline geojson source.
func (s *MapService) UpsertGeoJSONSource(id string, features []geo.Feature) error {
	return s.mutate(Event{ResourceSources, ActionUpdated, id}, func(v *mapview.Map) error {
		return v.AddSourceWithGeoJSON(id, features)
	})
}

// UpsertVectorSource adds or replaces a vector tile source.
func (s *MapService) UpsertVectorSource(id, url string) error {
	return s.mutate(Event{ResourceSources, ActionUpdated, id}, func(v *mapview.Map) error {
		return v.AddSourceWithURL(id, url)
	})
}

// UpsertSource adds or replaces a prebuilt source document.
func (s *MapService) UpsertSource(id string, src style.Source) error {
	return s.mutate(Event{ResourceSources, ActionUpdated, id}, func(v *mapview.Map) error {
		return v.AddSource(id, src)
	})
}

// RemoveSource removes a source and the layers drawing from it.
func (s *MapService) RemoveSource(id string) error {
	return s.mutate(Event{ResourceSources, ActionDeleted, id}, func(v *mapview.Map) error {
		if !v.HasSource(id) {
			return fmt.Errorf("%w: %q", engine.ErrSourceNotFound, id)
		}
		v.RemoveSourceIfExists(id)
		return nil
	})
}

// Bounds returns the viewport extent.
func (s *MapService) Bounds() orb.Bound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.DefaultBounds()
}

// FlyTo moves the camera. A zero zoom uses mapview.DefaultFlyZoom.
func (s *MapService) FlyTo(center orb.Point, zoom float64) error {
	return s.mutate(Event{ResourceCamera, ActionMoved, ""}, func(v *mapview.Map) error {
		v.FlyTo(center, zoom)
		return nil
	})
}

// FitBounds fits the camera to the box spanned by two corners.
func (s *MapService) FitBounds(a, b orb.Point) error {
	return s.mutate(Event{ResourceCamera, ActionMoved, ""}, func(v *mapview.Map) error {
		v.FitToBounds(a, b)
		return nil
	})
}

// FeaturesWithinView returns unique features drawn in the viewport.
func (s *MapService) FeaturesWithinView(layers []string, filter style.Filter) ([]geo.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.FeaturesWithinView(layers, filter)
}

// FeaturesFromSource returns unique features of a source.
func (s *MapService) FeaturesFromSource(sourceID, sourceLayer string, filter style.Filter) ([]geo.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.FeaturesFromSource(sourceID, sourceLayer, filter)
}

// VectorTile cuts a geojson source into one vector tile whose single layer
// is named after the source. A tile no feature reaches is nil.
func (s *MapService) VectorTile(id string, t maptile.Tile) ([]byte, error) {
	src, ok := s.Source(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrSourceNotFound, id)
	}
	if src.Type != style.SourceGeoJSON {
		return nil, fmt.Errorf("%w: %s", ErrNotGeoJSON, id)
	}
	return tiler.Encode(id, src.Features(), t)
}

// mutate runs fn under the write lock, then saves and publishes ev. A
// failed fn leaves the disk and the bus untouched.
func (s *MapService) mutate(ev Event, fn func(*mapview.Map) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.view); err != nil {
		return err
	}
	if err := s.saveToDisk(); err != nil {
		s.log.WithError(err).Error("saving style")
		return err
	}
	s.bus.Publish(ev)
	return nil
}

func (s *MapService) styleFile() string {
	return filepath.Join(s.dataDir, styleFileName)
}

// loadFromDisk restores the saved style. A missing file starts empty; a
// corrupt one is logged and ignored.
func (s *MapService) loadFromDisk() error {
	if s.dataDir == "" {
		return nil
	}
	data, err := os.ReadFile(s.styleFile())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var st style.Style
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.WithError(err).WithField("file", s.styleFile()).Warn("ignoring unreadable style")
		return nil
	}
	if err := s.mem.Restore(st); err != nil {
		s.log.WithError(err).WithField("file", s.styleFile()).Warn("ignoring inconsistent style")
	}
	return nil
}

func (s *MapService) saveToDisk() error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.mem.Style(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.styleFile(), data, 0644)
}
