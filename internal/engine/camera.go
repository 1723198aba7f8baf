package engine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// tileSize is the pixel size of one zoom-0 world tile.
const tileSize = 512

// worldMeters is the Web Mercator world width.
const worldMeters = 2 * math.Pi * 6378137

type camera struct {
	center           orb.Point
	zoom             float64
	minZoom, maxZoom float64
	width, height    float64
}

func newCamera(o Options) camera {
	c := camera{
		center:  o.Center,
		minZoom: o.MinZoom,
		maxZoom: o.MaxZoom,
		width:   float64(o.Width),
		height:  float64(o.Height),
	}
	c.zoom = c.clampZoom(o.Zoom)
	return c
}

func (c camera) clampZoom(z float64) float64 {
	return math.Max(c.minZoom, math.Min(c.maxZoom, z))
}

// metersPerPixel at the current zoom.
func (c camera) metersPerPixel(zoom float64) float64 {
	return worldMeters / (tileSize * math.Exp2(zoom))
}

// bounds returns the geographic extent of the viewport.
func (c camera) bounds() orb.Bound {
	m := project.WGS84.ToMercator(c.center)
	mpp := c.metersPerPixel(c.zoom)
	dx, dy := c.width/2*mpp, c.height/2*mpp

	sw := project.Mercator.ToWGS84(orb.Point{m[0] - dx, m[1] - dy})
	ne := project.Mercator.ToWGS84(orb.Point{m[0] + dx, m[1] + dy})
	return orb.Bound{Min: sw, Max: ne}
}

// fit centers the camera on b at the highest zoom showing all of it.
func (c *camera) fit(b orb.Bound) {
	lo := project.WGS84.ToMercator(b.Min)
	hi := project.WGS84.ToMercator(b.Max)
	c.center = project.Mercator.ToWGS84(orb.Point{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2})

	spanX, spanY := math.Abs(hi[0]-lo[0]), math.Abs(hi[1]-lo[1])
	mpp := math.Max(spanX/c.width, spanY/c.height)
	if mpp == 0 {
		c.zoom = c.maxZoom
		return
	}
	c.zoom = c.clampZoom(math.Log2(worldMeters / (tileSize * mpp)))
}
