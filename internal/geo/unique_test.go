package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tract(id any, x float64) Feature {
	return NewFeature(Geometry{Type: "Point", Coordinates: []float64{x, 0}}, Properties{"geoid10": id})
}

func TestUniqueFeatures(t *testing.T) {
	in := []Feature{tract("a", 1), tract("b", 2), tract("a", 3), tract("c", 4), tract("b", 5)}

	out := UniqueFeatures(in, "geoid10")
	require.Len(t, out, 3)
	assert.Equal(t, []float64{1, 0}, out[0].Geometry.Coordinates)
	assert.Equal(t, []float64{2, 0}, out[1].Geometry.Coordinates)
	assert.Equal(t, []float64{4, 0}, out[2].Geometry.Coordinates)
}

func TestUniqueFeaturesIdempotent(t *testing.T) {
	in := []Feature{tract(1, 1), tract("1", 2), tract(2, 3), tract(2, 4)}

	once := UniqueFeatures(in, "geoid10")
	twice := UniqueFeatures(once, "geoid10")
	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(in))

	seen := map[any]bool{}
	for _, f := range once {
		k := featureKey(f, "geoid10")
		assert.False(t, seen[k], "duplicate key %v", k)
		seen[k] = true
	}
}

func TestUniqueFeaturesOtherKey(t *testing.T) {
	in := []Feature{
		NewFeature(Geometry{Type: "Point"}, Properties{"osm_id": 10, "geoid10": "same"}),
		NewFeature(Geometry{Type: "Point"}, Properties{"osm_id": 11, "geoid10": "same"}),
	}
	assert.Len(t, UniqueFeatures(in, "osm_id"), 2)
	assert.Len(t, UniqueFeatures(in, "geoid10"), 1)
}

func TestUniqueFeaturesMissingKeyShareBucket(t *testing.T) {
	in := []Feature{
		NewFeature(Geometry{Type: "Point"}, nil),
		NewFeature(Geometry{Type: "Point"}, Properties{"name": "x"}),
		tract("a", 0),
	}
	out := UniqueFeatures(in, "geoid10")
	assert.Len(t, out, 2)
}

func TestUniqueFeaturesEmpty(t *testing.T) {
	assert.Empty(t, UniqueFeatures(nil, "geoid10"))
}

func TestBound(t *testing.T) {
	features := []Feature{
		NewFeature(FromOrb(orb.Point{-1, 2}), nil),
		NewFeature(FromOrb(orb.LineString{{3, -4}, {5, 6}}), nil),
	}
	b, ok := Bound(features)
	require.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{-1, -4}, Max: orb.Point{5, 6}}, b)

	_, ok = Bound(nil)
	assert.False(t, ok)
}
