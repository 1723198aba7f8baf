package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONOverlaysDefaults(t *testing.T) {
	cfg, err := DecodeJSON(TypeLine, []byte(`{"layerId":"roads","sourceId":"osm","lineWidth":5}`))
	require.NoError(t, err)
	line, ok := cfg.(LineConfig)
	require.True(t, ok)
	assert.Equal(t, "roads", line.LayerID)
	assert.Equal(t, 5.0, line.LineWidth)
	assert.Equal(t, DefaultLine().LineColor, line.LineColor)
	assert.Equal(t, Visible, line.Visibility)

	cfg, err = DecodeJSON(TypeSymbol, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSymbol(), cfg)
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := DecodeJSON("heatmap", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnrecognizedLayerType)

	_, err = DecodeJSON(TypeCircle, []byte(`{"circleRadius":2,"bogus":1}`))
	assert.Error(t, err)

	_, err = DecodeJSON(TypeCircle, []byte(`{"circleRadius":`))
	assert.Error(t, err)
}
