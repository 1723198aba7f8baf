package mapview

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/visibility"
)

const tilesURL = "https://tiles.example.com/{z}/{x}/{y}.pbf"

func newMap(t *testing.T) (*Map, *engine.Memory, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	mem := engine.NewMemory(engine.Options{
		Center:  orb.Point{-110.982309, 32.229371},
		Zoom:    11,
		MaxZoom: 18,
	})
	m, err := New(mem, Config{UniqueKey: "geoid10", Logger: logger})
	require.NoError(t, err)
	return m, mem, hook
}

func circle(layerID, sourceID string) style.Config {
	return style.WithIDs(style.DefaultCircle(), layerID, sourceID)
}

func layerIDs(e engine.Engine) []string {
	var ids []string
	for _, l := range e.Layers() {
		ids = append(ids, l.ID)
	}
	return ids
}

func tract(id string, p orb.Point) geo.Feature {
	return geo.NewFeature(geo.FromOrb(p), geo.Properties{"geoid10": id})
}

func TestNewRequiresUniqueKey(t *testing.T) {
	_, err := New(engine.NewMemory(engine.Options{}), Config{})
	assert.ErrorIs(t, err, ErrNoUniqueKey)
}

func TestAddSourceUpsert(t *testing.T) {
	m, mem, _ := newMap(t)

	require.NoError(t, m.AddSourceWithURL("tiles", tilesURL))
	require.NoError(t, m.AddSourceWithURL("tiles", "https://other.example.com/{z}/{x}/{y}.pbf"))
	src, ok := mem.GetSource("tiles")
	require.True(t, ok)
	assert.Equal(t, []string{"https://other.example.com/{z}/{x}/{y}.pbf"}, src.Tiles)
	assert.Equal(t, style.DefaultVectorMaxZoom, src.MaxZoom)
	assert.True(t, m.HasSource("tiles"))
}

func TestAddSourceKeepsDependentLayers(t *testing.T) {
	m, mem, _ := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("a", nil))
	require.NoError(t, m.AddSourceWithGeoJSON("b", nil))
	require.NoError(t, m.AddLayer(circle("a1", "a"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("b1", "b"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("a2", "a"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("a3", "a"), style.TypeCircle, ""))

	features := []geo.Feature{tract("1", orb.Point{-110.98, 32.23})}
	require.NoError(t, m.AddSourceWithGeoJSON("a", features))

	assert.Equal(t, []string{"a1", "b1", "a2", "a3"}, layerIDs(mem))
	src, _ := mem.GetSource("a")
	assert.Len(t, src.Features(), 1)
}

func TestAddSourceRejectsSourceLayerOnGeoJSON(t *testing.T) {
	m, mem, _ := newMap(t)
	require.NoError(t, m.AddSourceWithURL("tiles", tilesURL))
	cfg := style.DefaultLine()
	cfg.LayerID, cfg.SourceID, cfg.SourceLayer = "roads", "tiles", "road"
	require.NoError(t, m.AddLayer(cfg, style.TypeLine, ""))

	err := m.AddSourceWithGeoJSON("tiles", nil)
	assert.ErrorIs(t, err, ErrSourceLayerOnGeoJSON)
	src, _ := mem.GetSource("tiles")
	assert.Equal(t, style.SourceVector, src.Type, "source left untouched")
}

func TestAddLayerUpsertAndOrder(t *testing.T) {
	m, mem, _ := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("s", nil))

	require.NoError(t, m.AddLayer(circle("a", "s"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("b", "s"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("c", "s"), style.TypeCircle, "a"))
	assert.Equal(t, []string{"c", "a", "b"}, layerIDs(mem))

	red := style.DefaultCircle()
	red.CircleColor = "#FF0000"
	require.NoError(t, m.AddLayer(style.WithIDs(red, "c", "s"), style.TypeCircle, ""))
	assert.Equal(t, []string{"a", "b", "c"}, layerIDs(mem))
	got, _ := mem.GetLayer("c")
	assert.Equal(t, "#FF0000", got.Paint["circle-color"])

	require.NoError(t, m.AddLayer(circle("b", "s"), style.TypeCircle, "b"))
	assert.Equal(t, []string{"a", "b", "c"}, layerIDs(mem), "before itself keeps the position")
}

func TestAddLayerErrors(t *testing.T) {
	m, mem, hook := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("s", nil))

	err := m.AddLayer(circle("a", "missing"), style.TypeCircle, "")
	assert.ErrorIs(t, err, engine.ErrSourceNotFound)

	err = m.AddLayer(circle("a", "s"), style.TypeLine, "")
	assert.ErrorIs(t, err, style.ErrLayerTypeMismatch)

	err = m.AddLayer(circle("a", "s"), style.LayerType("heatmap"), "")
	assert.ErrorIs(t, err, style.ErrUnrecognizedLayerType)

	err = m.AddLayer(circle("a", "s"), style.TypeCircle, "nope")
	assert.ErrorIs(t, err, engine.ErrLayerNotFound)

	cfg := style.DefaultCircle()
	cfg.LayerID, cfg.SourceID, cfg.SourceLayer = "a", "s", "points"
	err = m.AddLayer(cfg, style.TypeCircle, "")
	assert.ErrorIs(t, err, ErrSourceLayerOnGeoJSON)

	assert.Empty(t, mem.Layers())
	assert.Len(t, hook.Entries, 5)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestRemoveIfExists(t *testing.T) {
	m, mem, hook := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("s", nil))
	require.NoError(t, m.AddLayer(circle("a", "s"), style.TypeCircle, ""))

	m.RemoveLayerIfExists("nope")
	m.RemoveSourceIfExists("nope")
	assert.Empty(t, hook.Entries)

	m.RemoveSourceIfExists("s")
	assert.False(t, m.HasSource("s"))
	assert.False(t, m.HasLayer("a"))
	assert.Empty(t, mem.Layers())
}

func TestShowHideLayer(t *testing.T) {
	m, mem, hook := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("s", nil))
	require.NoError(t, m.AddLayer(circle("a", "s"), style.TypeCircle, ""))

	require.NoError(t, m.HideLayer("a"))
	got, _ := mem.GetLayer("a")
	assert.Equal(t, style.Hidden, got.Visibility())

	require.NoError(t, m.ShowLayer("a"))
	got, _ = mem.GetLayer("a")
	assert.Equal(t, style.Visible, got.Visibility())
	assert.Empty(t, hook.Entries)
}

func TestShowHideMissingLayer(t *testing.T) {
	m, mem, hook := newMap(t)
	require.NoError(t, m.AddSourceWithGeoJSON("s", nil))
	require.NoError(t, m.AddLayer(circle("a", "s"), style.TypeCircle, ""))
	before := mem.Style()

	err := m.ShowLayer("nope")
	assert.ErrorIs(t, err, ErrMissingLayer)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "nope", hook.LastEntry().Data["layer"])

	hook.Reset()
	assert.ErrorIs(t, m.HideLayer("nope"), ErrMissingLayer)
	assert.Len(t, hook.Entries, 1)

	assert.Equal(t, before, mem.Style())
}

func TestApplyToggle(t *testing.T) {
	m, mem, hook := newMap(t)
	require.NoError(t, m.AddSourceWithURL("base", tilesURL))
	for _, id := range []string{"satellite", "water", "building"} {
		require.NoError(t, m.AddLayer(circle(id, "base"), style.TypeCircle, ""))
	}

	plan, err := m.ApplyToggle(visibility.Event{Group: visibility.SatelliteGroup, On: true})
	// most overlays are not on this map
	assert.ErrorIs(t, err, ErrMissingLayer)
	assert.Equal(t, []string{"satellite"}, plan.Show)

	water, _ := mem.GetLayer("water")
	assert.Equal(t, style.Hidden, water.Visibility())
	sat, _ := mem.GetLayer("satellite")
	assert.Equal(t, style.Visible, sat.Visibility())
	assert.Len(t, hook.Entries, len(visibility.SatelliteOverlays)-2)

	_, err = m.ApplyToggle(visibility.Event{Group: visibility.SatelliteGroup, On: false})
	assert.ErrorIs(t, err, ErrMissingLayer)
	sat, _ = mem.GetLayer("satellite")
	assert.Equal(t, style.Hidden, sat.Visibility())

	_, err = m.ApplyToggle(visibility.Event{Group: "nope"})
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestApplyToggleCustomRegistry(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mem := engine.NewMemory(engine.Options{})
	reg := visibility.NewRegistry()
	reg.RegisterPrefixed("basic-ci-", "bridges")
	m, err := New(mem, Config{UniqueKey: "id", Toggles: reg, Logger: logger})
	require.NoError(t, err)

	require.NoError(t, m.AddSourceWithURL("ci", tilesURL))
	require.NoError(t, m.AddLayer(circle("basic-ci-bridges", "ci"), style.TypeCircle, ""))

	_, err = m.ApplyToggle(visibility.Event{Group: "bridges", On: false})
	require.NoError(t, err)
	l, _ := mem.GetLayer("basic-ci-bridges")
	assert.Equal(t, style.Hidden, l.Visibility())
}

var errEngine = errors.New("engine refused")

// flakyEngine fails the next AddSource or RemoveSource once.
type flakyEngine struct {
	*engine.Memory
	failAdd, failRemove bool
}

func (f *flakyEngine) AddSource(id string, src style.Source) error {
	if f.failAdd {
		f.failAdd = false
		return errEngine
	}
	return f.Memory.AddSource(id, src)
}

func (f *flakyEngine) RemoveSource(id string) error {
	if f.failRemove {
		f.failRemove = false
		return errEngine
	}
	return f.Memory.RemoveSource(id)
}

func TestAddSourceRestoresLayersOnEngineFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := &flakyEngine{Memory: engine.NewMemory(engine.Options{})}
	m, err := New(e, Config{UniqueKey: "geoid10", Logger: logger})
	require.NoError(t, err)

	require.NoError(t, m.AddSourceWithURL("a", tilesURL))
	require.NoError(t, m.AddSourceWithURL("b", tilesURL))
	require.NoError(t, m.AddLayer(circle("a1", "a"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("b1", "b"), style.TypeCircle, ""))
	require.NoError(t, m.AddLayer(circle("a2", "a"), style.TypeCircle, ""))

	e.failAdd = true
	err = m.AddSourceWithURL("a", "https://other.example.com/{z}/{x}/{y}.pbf")
	assert.ErrorIs(t, err, errEngine)
	assert.Equal(t, []string{"a1", "b1", "a2"}, layerIDs(e))
	src, ok := e.GetSource("a")
	require.True(t, ok)
	assert.Equal(t, []string{tilesURL}, src.Tiles)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)

	e.failRemove = true
	err = m.AddSourceWithURL("a", "https://other.example.com/{z}/{x}/{y}.pbf")
	assert.ErrorIs(t, err, errEngine)
	assert.Equal(t, []string{"a1", "b1", "a2"}, layerIDs(e))
}
