package mapview

import (
	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// FeaturesWithinView returns the features the named layers draw in the
// current viewport, one per unique key value, topmost layer first.
func (m *Map) FeaturesWithinView(layers []string, filter style.Filter) ([]geo.Feature, error) {
	features, err := m.engine.QueryRenderedFeatures(layers, filter)
	if err != nil {
		m.log.WithError(err).WithFields(log.Fields{"op": "featuresWithinView", "layers": layers}).Warn("query failed")
		return nil, err
	}
	return geo.UniqueFeatures(features, m.uniqueKey), nil
}

// FeaturesFromSource returns the features of a source, one per unique key
// value. sourceLayer names the layer inside a vector source.
func (m *Map) FeaturesFromSource(sourceID, sourceLayer string, filter style.Filter) ([]geo.Feature, error) {
	features, err := m.engine.QuerySourceFeatures(sourceID, sourceLayer, filter)
	if err != nil {
		m.log.WithError(err).WithFields(log.Fields{"op": "featuresFromSource", "source": sourceID}).Warn("query failed")
		return nil, err
	}
	return geo.UniqueFeatures(features, m.uniqueKey), nil
}

// FeatureCollection pairs coordinates with properties into features. A
// length mismatch is logged and yields nil.
func (m *Map) FeatureCollection(geometryType string, coordinates []any, properties []geo.Properties) []geo.Feature {
	features, err := geo.FeatureCollection(geometryType, coordinates, properties)
	if err != nil {
		m.log.WithError(err).WithFields(log.Fields{
			"op":          "featureCollection",
			"coordinates": len(coordinates),
			"properties":  len(properties),
		}).Error("coordinates and properties must have the same length")
		return nil
	}
	return features
}

// BoundingBox builds a bound from its south-west and north-east corners.
func BoundingBox(swLng, swLat, neLng, neLat float64) orb.Bound {
	return orb.Bound{Min: orb.Point{swLng, swLat}, Max: orb.Point{neLng, neLat}}
}

// DefaultBounds returns the bound currently in view.
func (m *Map) DefaultBounds() orb.Bound {
	return m.engine.Bounds()
}

// FlyTo centers the camera on p. A zoom of zero means DefaultFlyZoom.
func (m *Map) FlyTo(p orb.Point, zoom float64) {
	if zoom == 0 {
		zoom = DefaultFlyZoom
	}
	m.engine.FlyTo(p, zoom)
}

// FitToBounds fits the camera to the box spanned by two corners, given in
// any order.
func (m *Map) FitToBounds(a, b orb.Point) {
	m.engine.FitBounds(orb.MultiPoint{a, b}.Bound())
}

// DisableAllRotation turns off drag and touch rotation.
func (m *Map) DisableAllRotation() {
	m.engine.DisableRotation()
}
