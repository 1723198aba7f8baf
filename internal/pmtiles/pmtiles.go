// Package pmtiles reads PMTiles v3 archive headers so a tile archive can be
// published as a vector source with its real zoom range and extent.
//
// Only the fixed 127-byte header is decoded; tiles are served by whatever
// static file server the style points at.
//
// Spec: https://github.com/protomaps/PMTiles/blob/main/spec/v3/spec.md
package pmtiles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
)

// HeaderLen is the size of the fixed binary header.
const HeaderLen = 127

const magic = "PMTiles"

var (
	ErrShortHeader = errors.New("pmtiles: buffer too small for header")
	ErrNotPMTiles  = errors.New("pmtiles: magic number not detected")
	ErrVersion     = errors.New("pmtiles: unsupported spec version")
)

// Compression is the algorithm applied to tiles or directories.
type Compression uint8

const (
	UnknownCompression Compression = 0
	NoCompression      Compression = 1
	Gzip               Compression = 2
	Brotli             Compression = 3
	Zstd               Compression = 4
)

// TileType is the format of the tile contents.
type TileType uint8

const (
	UnknownTileType TileType = 0
	Mvt             TileType = 1
	Png             TileType = 2
	Jpeg            TileType = 3
	Webp            TileType = 4
	Avif            TileType = 5
)

func (t TileType) String() string {
	switch t {
	case Mvt:
		return "mvt"
	case Png:
		return "png"
	case Jpeg:
		return "jpeg"
	case Webp:
		return "webp"
	case Avif:
		return "avif"
	}
	return "unknown"
}

// Header is the PMTiles v3 header. Coordinates are stored as degrees * 1e7.
type Header struct {
	SpecVersion         uint8
	RootOffset          uint64
	RootLength          uint64
	MetadataOffset      uint64
	MetadataLength      uint64
	LeafDirectoryOffset uint64
	LeafDirectoryLength uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	AddressedTilesCount uint64
	TileEntriesCount    uint64
	TileContentsCount   uint64
	Clustered           bool
	InternalCompression Compression
	TileCompression     Compression
	TileType            TileType
	MinZoom             uint8
	MaxZoom             uint8
	MinLonE7            int32
	MinLatE7            int32
	MaxLonE7            int32
	MaxLatE7            int32
	CenterZoom          uint8
	CenterLonE7         int32
	CenterLatE7         int32
}

// Bound returns the archive extent in degrees.
func (h Header) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e7(h.MinLonE7), e7(h.MinLatE7)},
		Max: orb.Point{e7(h.MaxLonE7), e7(h.MaxLatE7)},
	}
}

// Center returns the suggested initial view.
func (h Header) Center() (orb.Point, uint8) {
	return orb.Point{e7(h.CenterLonE7), e7(h.CenterLatE7)}, h.CenterZoom
}

func e7(v int32) float64 { return float64(v) / 1e7 }

// ToE7 converts degrees to the header's fixed-point form.
func ToE7(deg float64) int32 { return int32(deg * 1e7) }

// Marshal encodes h. The spec version is always written as 3.
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderLen)
	le := binary.LittleEndian
	copy(b[0:7], magic)
	b[7] = 3
	for i, v := range []uint64{
		h.RootOffset, h.RootLength, h.MetadataOffset, h.MetadataLength,
		h.LeafDirectoryOffset, h.LeafDirectoryLength, h.TileDataOffset,
		h.TileDataLength, h.AddressedTilesCount, h.TileEntriesCount,
		h.TileContentsCount,
	} {
		le.PutUint64(b[8+8*i:], v)
	}
	if h.Clustered {
		b[96] = 1
	}
	b[97] = uint8(h.InternalCompression)
	b[98] = uint8(h.TileCompression)
	b[99] = uint8(h.TileType)
	b[100] = h.MinZoom
	b[101] = h.MaxZoom
	le.PutUint32(b[102:], uint32(h.MinLonE7))
	le.PutUint32(b[106:], uint32(h.MinLatE7))
	le.PutUint32(b[110:], uint32(h.MaxLonE7))
	le.PutUint32(b[114:], uint32(h.MaxLatE7))
	b[118] = h.CenterZoom
	le.PutUint32(b[119:], uint32(h.CenterLonE7))
	le.PutUint32(b[123:], uint32(h.CenterLatE7))
	return b
}

// Unmarshal decodes a header from the first HeaderLen bytes of d.
func Unmarshal(d []byte) (Header, error) {
	var h Header
	if len(d) < HeaderLen {
		return h, ErrShortHeader
	}
	if string(d[0:7]) != magic {
		return h, ErrNotPMTiles
	}
	if d[7] != 3 {
		return h, fmt.Errorf("%w: %d", ErrVersion, d[7])
	}

	le := binary.LittleEndian
	u64 := func(off int) uint64 { return le.Uint64(d[off:]) }
	i32 := func(off int) int32 { return int32(le.Uint32(d[off:])) }

	h.SpecVersion = d[7]
	h.RootOffset = u64(8)
	h.RootLength = u64(16)
	h.MetadataOffset = u64(24)
	h.MetadataLength = u64(32)
	h.LeafDirectoryOffset = u64(40)
	h.LeafDirectoryLength = u64(48)
	h.TileDataOffset = u64(56)
	h.TileDataLength = u64(64)
	h.AddressedTilesCount = u64(72)
	h.TileEntriesCount = u64(80)
	h.TileContentsCount = u64(88)
	h.Clustered = d[96] == 1
	h.InternalCompression = Compression(d[97])
	h.TileCompression = Compression(d[98])
	h.TileType = TileType(d[99])
	h.MinZoom = d[100]
	h.MaxZoom = d[101]
	h.MinLonE7 = i32(102)
	h.MinLatE7 = i32(106)
	h.MaxLonE7 = i32(110)
	h.MaxLatE7 = i32(114)
	h.CenterZoom = d[118]
	h.CenterLonE7 = i32(119)
	h.CenterLatE7 = i32(123)
	return h, nil
}

// Read decodes the header at the start of r.
func Read(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, ErrShortHeader
		}
		return Header{}, err
	}
	return Unmarshal(buf)
}

// ReadFile decodes the header of the archive at path.
func ReadFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return Read(f)
}
