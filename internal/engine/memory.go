package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// Options configures a Memory engine. AccessToken is the credential handed
// to clients loading the style; the engine never reads it from globals.
type Options struct {
	AccessToken string
	Name        string
	Sprite      string
	Glyphs      string
	Center      orb.Point
	Zoom        float64
	MinZoom     float64
	MaxZoom     float64
	// Width and Height are the viewport size in pixels.
	Width  int
	Height int
}

func (o *Options) applyDefaults() {
	if o.MaxZoom == 0 {
		o.MaxZoom = 22
	}
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 768
	}
}

// Memory is an Engine holding its state as a style document. It is not safe
// for concurrent use; callers serialize access.
type Memory struct {
	opts     Options
	sources  map[string]style.Source
	layers   []style.Layer
	camera   camera
	rotation bool
	loaded   bool
	onLoad   []func()
}

// NewMemory creates an engine with an empty style. Load must be called to
// fire the ready callbacks.
func NewMemory(opts Options) *Memory {
	opts.applyDefaults()
	m := &Memory{
		opts:     opts,
		sources:  make(map[string]style.Source),
		rotation: true,
	}
	m.camera = newCamera(opts)
	return m
}

// Load marks the engine ready and runs the queued OnLoad callbacks.
func (m *Memory) Load() {
	if m.loaded {
		return
	}
	m.loaded = true
	queued := m.onLoad
	m.onLoad = nil
	for _, fn := range queued {
		fn()
	}
}

// OnLoad implements Engine.
func (m *Memory) OnLoad(fn func()) {
	if m.loaded {
		fn()
		return
	}
	m.onLoad = append(m.onLoad, fn)
}

// AccessToken returns the credential clients need to fetch base tiles.
func (m *Memory) AccessToken() string {
	return m.opts.AccessToken
}

// AddSource implements Engine.
func (m *Memory) AddSource(id string, src style.Source) error {
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSource, id)
	}
	m.sources[id] = src
	return nil
}

// RemoveSource implements Engine.
func (m *Memory) RemoveSource(id string) error {
	if _, ok := m.sources[id]; !ok {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	for _, l := range m.layers {
		if l.Source == id {
			return fmt.Errorf("%w: %q by %q", ErrSourceInUse, id, l.ID)
		}
	}
	delete(m.sources, id)
	return nil
}

// GetSource implements Engine.
func (m *Memory) GetSource(id string) (style.Source, bool) {
	src, ok := m.sources[id]
	return src, ok
}

func (m *Memory) layerIndex(id string) int {
	return slices.IndexFunc(m.layers, func(l style.Layer) bool { return l.ID == id })
}

// AddLayer implements Engine.
func (m *Memory) AddLayer(layer style.Layer, beforeID string) error {
	if m.layerIndex(layer.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateLayer, layer.ID)
	}
	if _, ok := m.sources[layer.Source]; !ok {
		return fmt.Errorf("layer %q: %w: %q", layer.ID, ErrSourceNotFound, layer.Source)
	}

	at := len(m.layers)
	if beforeID != "" {
		if at = m.layerIndex(beforeID); at < 0 {
			return fmt.Errorf("before %w: %q", ErrLayerNotFound, beforeID)
		}
	}
	m.layers = slices.Insert(m.layers, at, layer.Clone())
	return nil
}

// RemoveLayer implements Engine.
func (m *Memory) RemoveLayer(id string) error {
	i := m.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrLayerNotFound, id)
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	return nil
}

// GetLayer implements Engine.
func (m *Memory) GetLayer(id string) (style.Layer, bool) {
	i := m.layerIndex(id)
	if i < 0 {
		return style.Layer{}, false
	}
	return m.layers[i].Clone(), true
}

// Layers implements Engine.
func (m *Memory) Layers() []style.Layer {
	out := make([]style.Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = l.Clone()
	}
	return out
}

// SetLayoutProperty implements Engine.
func (m *Memory) SetLayoutProperty(layerID, name string, value any) error {
	i := m.layerIndex(layerID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrLayerNotFound, layerID)
	}
	l := m.layers[i].Clone()
	if l.Layout == nil {
		l.Layout = style.Properties{}
	}
	if v, ok := value.(style.Visibility); ok {
		value = string(v)
	}
	l.Layout[name] = value
	m.layers[i] = l
	return nil
}

// QueryRenderedFeatures implements Engine. Only geojson sources hold
// features locally; vector tile layers never match.
func (m *Memory) QueryRenderedFeatures(layers []string, filter style.Filter) ([]geo.Feature, error) {
	candidates := m.layers
	if layers != nil {
		candidates = make([]style.Layer, 0, len(layers))
		for _, id := range layers {
			i := m.layerIndex(id)
			if i < 0 {
				return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, id)
			}
			candidates = append(candidates, m.layers[i])
		}
		slices.SortStableFunc(candidates, func(a, b style.Layer) int {
			return m.layerIndex(a.ID) - m.layerIndex(b.ID)
		})
	}

	view := m.camera.bounds()
	var out []geo.Feature
	for i := len(candidates) - 1; i >= 0; i-- {
		l := candidates[i]
		if l.Visibility() != style.Visible {
			continue
		}
		src := m.sources[l.Source]
		for _, f := range src.Features() {
			if !l.Filter.Match(f) || !filter.Match(f) {
				continue
			}
			g, err := f.Geometry.Orb()
			if err != nil || g == nil || !g.Bound().Intersects(view) {
				continue
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// QuerySourceFeatures implements Engine.
func (m *Memory) QuerySourceFeatures(sourceID, sourceLayer string, filter style.Filter) ([]geo.Feature, error) {
	src, ok := m.sources[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, sourceID)
	}
	var out []geo.Feature
	for _, f := range src.Features() {
		if filter.Match(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// FlyTo implements Engine.
func (m *Memory) FlyTo(center orb.Point, zoom float64) {
	m.camera.center = center
	m.camera.zoom = m.camera.clampZoom(zoom)
}

// FitBounds implements Engine.
func (m *Memory) FitBounds(b orb.Bound) {
	m.camera.fit(b)
}

// Bounds implements Engine.
func (m *Memory) Bounds() orb.Bound {
	return m.camera.bounds()
}

// Center returns the camera center and zoom.
func (m *Memory) Center() (orb.Point, float64) {
	return m.camera.center, m.camera.zoom
}

// DisableRotation implements Engine.
func (m *Memory) DisableRotation() {
	m.rotation = false
}

// RotationEnabled reports whether drag and touch rotation are allowed.
func (m *Memory) RotationEnabled() bool {
	return m.rotation
}

// Style returns a snapshot of the live state as a style document.
func (m *Memory) Style() style.Style {
	return style.Style{
		Version: style.SpecVersion,
		Name:    m.opts.Name,
		Center:  []float64{m.camera.center[0], m.camera.center[1]},
		Zoom:    m.camera.zoom,
		Sprite:  m.opts.Sprite,
		Glyphs:  m.opts.Glyphs,
		Sources: maps.Clone(m.sources),
		Layers:  m.Layers(),
	}
}

// Restore replaces sources, layers and camera with the given document.
// Layers referencing unknown sources and repeated layer ids are rejected;
// a rejected document leaves the engine unchanged.
func (m *Memory) Restore(st style.Style) error {
	seen := make(map[string]bool, len(st.Layers))
	for _, l := range st.Layers {
		if seen[l.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.ID)
		}
		seen[l.ID] = true
		if _, ok := st.Sources[l.Source]; !ok {
			return fmt.Errorf("layer %q: %w: %q", l.ID, ErrSourceNotFound, l.Source)
		}
	}
	m.sources = maps.Clone(st.Sources)
	if m.sources == nil {
		m.sources = make(map[string]style.Source)
	}
	m.layers = m.layers[:0]
	for _, l := range st.Layers {
		m.layers = append(m.layers, l.Clone())
	}
	if len(st.Center) == 2 {
		m.camera.center = orb.Point{st.Center[0], st.Center[1]}
		m.camera.zoom = m.camera.clampZoom(st.Zoom)
	}
	return nil
}

var _ Engine = (*Memory)(nil)
