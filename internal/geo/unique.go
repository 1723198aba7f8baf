package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// UniqueFeatures keeps the first feature seen for each value of the key
// property and drops later duplicates, preserving order. Tiled sources split
// or repeat geometries across tile boundaries, so query results need this.
// Features without the key all share one bucket.
func UniqueFeatures(features []Feature, key string) []Feature {
	seen := make(map[string]struct{}, len(features))
	unique := make([]Feature, 0, len(features))
	for _, f := range features {
		k := featureKey(f, key)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, f)
	}
	return unique
}

// featureKey renders the key value the way an object key would be, so 7 and
// "7" collide.
func featureKey(f Feature, key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return "\x00missing"
	}
	return fmt.Sprint(v)
}

// Bound returns the bounding box of all feature geometries. ok is false when
// no geometry could be decoded.
func Bound(features []Feature) (b orb.Bound, ok bool) {
	for _, f := range features {
		g, err := f.Geometry.Orb()
		if err != nil || g == nil {
			continue
		}
		if !ok {
			b, ok = g.Bound(), true
			continue
		}
		b = b.Union(g.Bound())
	}
	return b, ok
}
