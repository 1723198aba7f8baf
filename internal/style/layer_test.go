package style

import (
	"reflect"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bound[T Config](cfg T) T {
	return WithIDs(cfg, "layer", "source").(T)
}

func TestBuildConfigDefaults(t *testing.T) {
	for _, lt := range LayerTypes {
		cfg, err := BuildConfig(lt)
		require.NoError(t, err)
		assert.Equal(t, lt, cfg.Kind())
		assert.Equal(t, Visible, cfg.Common().Visibility)
	}

	_, err := BuildConfig("heatmap")
	assert.ErrorIs(t, err, ErrUnrecognizedLayerType)
}

func TestCompileRequiresIDs(t *testing.T) {
	_, err := Compile(DefaultCircle())
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = Compile(WithIDs(DefaultCircle(), "only-layer", ""))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestCompilePolygonFill(t *testing.T) {
	cfg := bound(DefaultPolygon())
	cfg.FillColor = "#EE362B"
	cfg.FillOpacity = 0.7

	l, err := Compile(cfg)
	require.NoError(t, err)

	assert.Equal(t, "layer", l.ID)
	assert.Equal(t, "fill", l.Type)
	assert.Equal(t, "source", l.Source)
	assert.True(t, l.Interactive)
	assert.Equal(t, Properties{"visibility": "visible"}, l.Layout)
	assert.Equal(t, Properties{"fill-color": "#EE362B", "fill-opacity": 0.7}, l.Paint)
	assert.NotContains(t, l.Paint, "fill-pattern")
}

func TestCompilePolygonFillPattern(t *testing.T) {
	cfg := bound(DefaultPolygon())
	cfg.FillPattern = "hatch"

	l, err := Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "hatch", l.Paint["fill-pattern"])
	assert.Len(t, l.Paint, 3)
}

func TestCompilePolygonOutline(t *testing.T) {
	cfg := bound(DefaultPolygon())
	cfg.Type = PolygonOutline
	cfg.OutlineColor = "#111111"
	cfg.OutlineWidth = 2
	cfg.OutlineDashArray = []float64{2, 1}

	l, err := Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "line", l.Type)
	assert.Equal(t, Properties{
		"line-color":     "#111111",
		"line-width":     2.0,
		"line-dasharray": []float64{2, 1},
	}, l.Paint)
}

func TestCompileLine(t *testing.T) {
	l, err := Compile(bound(DefaultLine()))
	require.NoError(t, err)
	assert.Equal(t, "line", l.Type)
	assert.Equal(t, Properties{
		"line-color":     "#000000",
		"line-opacity":   1.0,
		"line-width":     3.0,
		"line-dasharray": []float64{3, 0},
	}, l.Paint)
}

func TestCompileCircle(t *testing.T) {
	cfg := bound(DefaultCircle())
	cfg.CircleRadius = 4

	l, err := Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "circle", l.Type)
	assert.Equal(t, Properties{
		"circle-color":   "#CCCCCC",
		"circle-opacity": 1.0,
		"circle-radius":  4.0,
	}, l.Paint)
}

func TestCompileSymbol(t *testing.T) {
	cfg := bound(DefaultSymbol())
	cfg.IconImage = "marker-15"
	cfg.TextField = "{name}"

	l, err := Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "symbol", l.Type)
	assert.Equal(t, Properties{
		"icon-image":         "marker-15",
		"text-field":         "{name}",
		"icon-allow-overlap": false,
		"text-allow-overlap": false,
		"text-anchor":        "center",
		"text-size":          10.0,
		"text-transform":     "uppercase",
		"visibility":         "visible",
	}, l.Layout)
	assert.Equal(t, Properties{
		"text-halo-color": "#FFFFFF",
		"text-halo-width": 2.0,
		"text-translate":  []float64{12, 0},
		"text-color":      "#43506B",
	}, l.Paint)
	assert.NotContains(t, l.Layout, "icon-rotate")
}

func TestCompileSymbolIconRotate(t *testing.T) {
	cfg := bound(DefaultSymbol())
	cfg.IconRotate = &IconRotate{Property: "bearing", Stops: [][2]float64{{0, 0}, {45, 45}}}

	l, err := Compile(cfg)
	require.NoError(t, err)

	data, err := json.Marshal(l.Layout["icon-rotate"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"property":"bearing","stops":[[0,0],[45,45]]}`, string(data))
}

func TestCompileOptionalKeys(t *testing.T) {
	cfg := bound(DefaultCircle())
	l, err := Compile(cfg)
	require.NoError(t, err)

	data, err := json.Marshal(l)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "source-layer")
	assert.NotContains(t, doc, "filter")
	assert.NotContains(t, string(data), "null")

	cfg.SourceLayer = "tracts"
	cfg.Filter = Filter{"==", "class", "school"}
	l, err = Compile(cfg)
	require.NoError(t, err)

	data, err = json.Marshal(l)
	require.NoError(t, err)
	doc = nil
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "tracts", doc["source-layer"])
	assert.Equal(t, []any{"==", "class", "school"}, doc["filter"])
}

func TestCompileDoesNotAliasConfig(t *testing.T) {
	cfg := bound(DefaultLine())
	l, err := Compile(cfg)
	require.NoError(t, err)

	cfg.LineDashArray[0] = 99
	assert.Equal(t, []float64{3, 0}, l.Paint["line-dasharray"])
}

func TestCompileRejectsInvalidValues(t *testing.T) {
	poly := bound(DefaultPolygon())
	poly.FillOpacity = 1.5
	line := bound(DefaultLine())
	line.LineWidth = 0
	circle := bound(DefaultCircle())
	circle.Visibility = "hidden"
	symbol := bound(DefaultSymbol())
	symbol.TextAnchor = "middle"
	dashes := bound(DefaultPolygon())
	dashes.OutlineDashArray = []float64{1, -1}
	kind := bound(DefaultPolygon())
	kind.Type = "extrusion"

	for name, cfg := range map[string]Config{
		"opacity": poly, "width": line, "visibility": circle,
		"anchor": symbol, "dashes": dashes, "polygon type": kind,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBuildLayerJSON(t *testing.T) {
	cfg := bound(DefaultCircle())

	l, err := BuildLayerJSON(cfg, TypeCircle)
	require.NoError(t, err)
	assert.Equal(t, "circle", l.Type)

	_, err = BuildLayerJSON(cfg, "raster")
	assert.ErrorIs(t, err, ErrUnrecognizedLayerType)

	_, err = BuildLayerJSON(cfg, TypeSymbol)
	assert.ErrorIs(t, err, ErrLayerTypeMismatch)
}

func TestWithHelpersCopy(t *testing.T) {
	orig := DefaultLine()
	hidden := WithVisibility(WithIDs(orig, "a", "b"), Hidden)

	assert.Empty(t, orig.LayerID)
	assert.Equal(t, Visible, orig.Visibility)
	assert.Equal(t, "a", hidden.Common().LayerID)
	assert.Equal(t, Hidden, hidden.Common().Visibility)

	filtered := WithFilter(hidden, Filter{"has", "name"})
	assert.Equal(t, Filter{"has", "name"}, filtered.Common().Filter)
	assert.Nil(t, hidden.Common().Filter)
}

func TestParseLayerType(t *testing.T) {
	lt, err := ParseLayerType("symbol")
	require.NoError(t, err)
	assert.Equal(t, TypeSymbol, lt)

	_, err = ParseLayerType("Symbol")
	assert.ErrorIs(t, err, ErrUnrecognizedLayerType)
}

func TestVariantSchemas(t *testing.T) {
	reg := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	for _, typ := range []reflect.Type{
		reflect.TypeFor[PolygonConfig](),
		reflect.TypeFor[LineConfig](),
		reflect.TypeFor[CircleConfig](),
		reflect.TypeFor[SymbolConfig](),
	} {
		assert.NotPanics(t, func() {
			s := reg.Schema(typ, true, typ.Name())
			assert.NotNil(t, s, typ.Name())
		}, typ.Name())
	}

	symbol := reg.Map()["SymbolConfig"]
	require.NotNil(t, symbol)
	assert.Contains(t, symbol.Properties, "textTranslate")
	assert.EqualValues(t, "center", symbol.Properties["textAnchor"].Default)
}
