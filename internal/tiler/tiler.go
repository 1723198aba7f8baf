// Package tiler cuts inline geojson features into Mapbox vector tiles on
// request, so a geojson source can also be served to vector layers.
package tiler

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

// MaxZoom is the deepest tile the tiler will cut.
const MaxZoom = 22

// ContentType is the media type of an encoded tile.
const ContentType = "application/vnd.mapbox-vector-tile"

// ErrTileOutOfRange is returned for a zoom beyond MaxZoom or an x/y
// outside the zoom's grid.
var ErrTileOutOfRange = errors.New("tile out of range")

// Encode cuts features into t under a single layer called name. A tile no
// feature reaches encodes to nil.
func Encode(name string, features []geo.Feature, t maptile.Tile) ([]byte, error) {
	if err := check(t); err != nil {
		return nil, err
	}

	bound := t.Bound()
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		g, err := f.Geometry.Orb()
		if err != nil {
			return nil, err
		}
		if !intersects(g, bound) {
			continue
		}
		// Orb decodes a fresh geometry, so clipping below never touches
		// the source features.
		out := geojson.NewFeature(g)
		for k, v := range f.Properties {
			out.Properties[k] = v
		}
		fc.Append(out)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}

	layer := mvt.NewLayer(name, fc)
	if eps := simplifyEpsilon(t.Z); eps > 0 {
		layer.Simplify(simplify.DouglasPeucker(eps))
	}
	layer.Clip(bound)
	layer.ProjectToTile(t)
	layer.RemoveEmpty(0.5, 0.5)
	if len(layer.Features) == 0 {
		return nil, nil
	}

	data, err := mvt.Marshal(mvt.Layers{layer})
	if err != nil {
		return nil, fmt.Errorf("encoding tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	return data, nil
}

// Covering lists the tiles at zoom that overlap b.
func Covering(b orb.Bound, zoom maptile.Zoom) []maptile.Tile {
	lo := maptile.At(orb.Point{b.Min[0], b.Max[1]}, zoom)
	hi := maptile.At(orb.Point{b.Max[0], b.Min[1]}, zoom)

	tiles := make([]maptile.Tile, 0, int(hi.X-lo.X+1)*int(hi.Y-lo.Y+1))
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			tiles = append(tiles, maptile.New(x, y, zoom))
		}
	}
	return tiles
}

func check(t maptile.Tile) error {
	if t.Z > MaxZoom {
		return fmt.Errorf("%w: zoom %d", ErrTileOutOfRange, t.Z)
	}
	n := uint32(1) << uint32(t.Z)
	if t.X >= n || t.Y >= n {
		return fmt.Errorf("%w: %d/%d/%d", ErrTileOutOfRange, t.Z, t.X, t.Y)
	}
	return nil
}

// intersects refines the bounding-box test for the shapes where it is cheap
// to do so. Lines whose box meets the tile are kept.
func intersects(g orb.Geometry, tb orb.Bound) bool {
	if !g.Bound().Intersects(tb) {
		return false
	}

	switch g := g.(type) {
	case orb.Point:
		return tb.Contains(g)
	case orb.MultiPoint:
		for _, p := range g {
			if tb.Contains(p) {
				return true
			}
		}
		return false
	case orb.Polygon:
		for _, ring := range g {
			for _, p := range ring {
				if tb.Contains(p) {
					return true
				}
			}
		}
		corners := []orb.Point{tb.Min, {tb.Max[0], tb.Min[1]}, tb.Max, {tb.Min[0], tb.Max[1]}, tb.Center()}
		for _, p := range corners {
			if planar.PolygonContains(g, p) {
				return true
			}
		}
		return false
	case orb.MultiPolygon:
		for _, p := range g {
			if intersects(p, tb) {
				return true
			}
		}
		return false
	case orb.MultiLineString:
		for _, ls := range g {
			if intersects(ls, tb) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// simplifyEpsilon is the Douglas-Peucker tolerance in degrees for a zoom.
// Deep zooms keep every vertex.
func simplifyEpsilon(z maptile.Zoom) float64 {
	switch {
	case z >= 14:
		return 0
	case z >= 10:
		return 0.00001
	case z >= 6:
		return 0.0001
	case z >= 4:
		return 0.0005
	default:
		return 0.001
	}
}
