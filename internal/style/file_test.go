package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layerFile = `
layers:
  - type: polygon
    config:
      layerId: tracts
      sourceId: tracts-source
      sourceLayer: tracts
      fillColor: "#3388ff"
      filter: ["==", "county", "pima"]
  - type: symbol
    before: tracts
    config:
      layerId: markers
      sourceId: markers-source
      iconImage: marker-15
      textTranslate: [0, 8]
      iconRotate:
        property: bearing
        stops: [[0, 0], [45, 45]]
  - type: circle
`

func TestParseLayerFile(t *testing.T) {
	f, err := ParseLayerFile(strings.NewReader(layerFile))
	require.NoError(t, err)
	require.Len(t, f.Layers, 3)

	poly, ok := f.Layers[0].Config.(PolygonConfig)
	require.True(t, ok)
	assert.Equal(t, "tracts", poly.LayerID)
	assert.Equal(t, "#3388ff", poly.FillColor)
	assert.Equal(t, 0.7, poly.FillOpacity, "unset fields keep defaults")
	assert.Equal(t, Filter{"==", "county", "pima"}, poly.Filter)

	sym, ok := f.Layers[1].Config.(SymbolConfig)
	require.True(t, ok)
	assert.Equal(t, "tracts", f.Layers[1].Before)
	assert.Equal(t, [2]float64{0, 8}, sym.TextTranslate)
	require.NotNil(t, sym.IconRotate)
	assert.Equal(t, [][2]float64{{0, 0}, {45, 45}}, sym.IconRotate.Stops)

	circle, ok := f.Layers[2].Config.(CircleConfig)
	require.True(t, ok)
	assert.Equal(t, DefaultCircle(), circle)
}

func TestLayerFileCompileAll(t *testing.T) {
	f, err := ParseLayerFile(strings.NewReader(layerFile))
	require.NoError(t, err)

	_, err = f.CompileAll()
	assert.ErrorIs(t, err, ErrMissingID, "third entry has no ids")

	f.Layers = f.Layers[:2]
	layers, err := f.CompileAll()
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "tracts", layers[0].SourceLayer)
	assert.Equal(t, "marker-15", layers[1].Layout["icon-image"])
}

func TestParseLayerFileUnknownType(t *testing.T) {
	_, err := ParseLayerFile(strings.NewReader("layers:\n  - type: raster\n"))
	assert.ErrorIs(t, err, ErrUnrecognizedLayerType)
}

func TestParseLayerFileEmpty(t *testing.T) {
	f, err := ParseLayerFile(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Layers)
}
