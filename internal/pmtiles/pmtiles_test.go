package pmtiles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Header {
	return Header{
		SpecVersion:         3,
		RootOffset:          127,
		RootLength:          300,
		MetadataOffset:      427,
		MetadataLength:      60,
		TileDataOffset:      487,
		TileDataLength:      9000,
		AddressedTilesCount: 42,
		TileEntriesCount:    40,
		TileContentsCount:   38,
		Clustered:           true,
		InternalCompression: Gzip,
		TileCompression:     Gzip,
		TileType:            Mvt,
		MinZoom:             4,
		MaxZoom:             12,
		MinLonE7:            ToE7(-111.2),
		MinLatE7:            ToE7(32.0),
		MaxLonE7:            ToE7(-110.7),
		MaxLatE7:            ToE7(32.5),
		CenterZoom:          9,
		CenterLonE7:         ToE7(-110.95),
		CenterLatE7:         ToE7(32.25),
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := sample()
	got, err := Unmarshal(h.Marshal())
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderGeometry(t *testing.T) {
	h := sample()
	b := h.Bound()
	assert.InDelta(t, -111.2, b.Min[0], 1e-6)
	assert.InDelta(t, 32.5, b.Max[1], 1e-6)

	center, zoom := h.Center()
	assert.InDelta(t, -110.95, center[0], 1e-6)
	assert.Equal(t, uint8(9), zoom)
	assert.True(t, b.Contains(center))
	assert.Equal(t, "mvt", h.TileType.String())
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal(make([]byte, 10))
	assert.ErrorIs(t, err, ErrShortHeader)

	_, err = Unmarshal(make([]byte, HeaderLen))
	assert.ErrorIs(t, err, ErrNotPMTiles)

	b := sample().Marshal()
	b[7] = 2
	_, err = Unmarshal(b)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestRead(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("PMTiles")))
	assert.ErrorIs(t, err, ErrShortHeader)

	path := filepath.Join(t.TempDir(), "tracts.pmtiles")
	data := append(sample().Marshal(), make([]byte, 64)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	h, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(12), h.MaxZoom)
	center, _ := h.Center()
	assert.InDelta(t, 32.25, center[1], 1e-6)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.pmtiles"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
