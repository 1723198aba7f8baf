package tiler

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

var tucson = orb.Point{-110.98, 32.23}

func shelters() []geo.Feature {
	return []geo.Feature{
		geo.NewFeature(geo.FromOrb(tucson), geo.Properties{"name": "A"}),
		geo.NewFeature(geo.FromOrb(orb.Point{2.35, 48.85}), geo.Properties{"name": "Paris"}),
	}
}

func TestEncode(t *testing.T) {
	tile := maptile.At(tucson, 10)
	data, err := Encode("shelters", shelters(), tile)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	layers, err := mvt.Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, "shelters", layers[0].Name)
	require.Len(t, layers[0].Features, 1)
	assert.Equal(t, "A", layers[0].Features[0].Properties["name"])
}

func TestEncodeLeavesFeaturesAlone(t *testing.T) {
	features := shelters()
	_, err := Encode("shelters", features, maptile.At(tucson, 12))
	require.NoError(t, err)
	assert.Equal(t, tucson, features[0].Geometry.Coordinates)
}

func TestEncodeEmptyTile(t *testing.T) {
	data, err := Encode("shelters", shelters(), maptile.At(orb.Point{140, -30}, 8))
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = Encode("shelters", nil, maptile.New(0, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode("x", shelters(), maptile.New(0, 0, MaxZoom+1))
	assert.ErrorIs(t, err, ErrTileOutOfRange)
	_, err = Encode("x", shelters(), maptile.New(4, 0, 2))
	assert.ErrorIs(t, err, ErrTileOutOfRange)
}

func TestEncodePolygonCoveringTile(t *testing.T) {
	// a polygon much larger than the tile has no vertex inside it
	big := orb.Polygon{{{-120, 25}, {-100, 25}, {-100, 40}, {-120, 40}, {-120, 25}}}
	features := []geo.Feature{geo.NewFeature(geo.FromOrb(big), geo.Properties{"name": "region"})}

	data, err := Encode("regions", features, maptile.At(tucson, 12))
	require.NoError(t, err)
	layers, err := mvt.Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Len(t, layers[0].Features, 1)
}

func TestCovering(t *testing.T) {
	assert.Equal(t, []maptile.Tile{maptile.New(0, 0, 0)}, Covering(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}, 0))

	tiles := Covering(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}, 1)
	assert.Len(t, tiles, 4)

	for _, tile := range Covering(orb.Bound{Min: orb.Point{-111.1, 32.1}, Max: orb.Point{-110.8, 32.4}}, 10) {
		assert.True(t, tile.Bound().Intersects(orb.Bound{Min: orb.Point{-111.1, 32.1}, Max: orb.Point{-110.8, 32.4}}))
	}
}

func TestSimplifyEpsilon(t *testing.T) {
	assert.Zero(t, simplifyEpsilon(14))
	assert.Greater(t, simplifyEpsilon(3), simplifyEpsilon(12))
}
