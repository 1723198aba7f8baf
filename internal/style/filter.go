package style

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

// Filter is a legacy style-spec filter expression, e.g.
// ["all", ["==", "class", "school"], [">=", "capacity", 100]].
// A nil filter matches everything.
type Filter []any

// Match reports whether the feature passes the filter. Supported operators:
// == != < <= > >= in !in has !has all any none. The keys "$type" and "$id"
// address the geometry type and the feature id property.
func (f Filter) Match(feat geo.Feature) bool {
	if len(f) == 0 {
		return true
	}
	return evaluate([]any(f), feat)
}

func evaluate(expr []any, feat geo.Feature) bool {
	if len(expr) == 0 {
		return true
	}
	op, ok := expr[0].(string)
	if !ok {
		return false
	}

	switch op {
	case "all", "any", "none":
		for _, sub := range expr[1:] {
			subExpr, ok := asExpr(sub)
			if !ok {
				return false
			}
			m := evaluate(subExpr, feat)
			switch {
			case op == "all" && !m:
				return false
			case op == "any" && m:
				return true
			case op == "none" && m:
				return false
			}
		}
		return op != "any"
	}

	if len(expr) < 2 {
		return false
	}
	key, ok := expr[1].(string)
	if !ok {
		return false
	}
	value, has := lookup(feat, key)

	switch op {
	case "has":
		return has
	case "!has":
		return !has
	case "in", "!in":
		found := false
		if has {
			for _, candidate := range expr[2:] {
				if equal(value, candidate) {
					found = true
					break
				}
			}
		}
		return found == (op == "in")
	}

	if len(expr) != 3 {
		return false
	}
	switch op {
	case "==":
		return has && equal(value, expr[2])
	case "!=":
		return !has || !equal(value, expr[2])
	case "<", "<=", ">", ">=":
		if !has {
			return false
		}
		c, ok := compare(value, expr[2])
		if !ok {
			return false
		}
		switch op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		default:
			return c >= 0
		}
	}
	return false
}

func asExpr(v any) ([]any, bool) {
	switch e := v.(type) {
	case []any:
		return e, true
	case Filter:
		return []any(e), true
	}
	return nil, false
}

func lookup(feat geo.Feature, key string) (any, bool) {
	switch key {
	case "$type":
		return baseGeometryType(feat.Geometry.Type), true
	case "$id":
		v, ok := feat.Properties["id"]
		return v, ok
	}
	v, ok := feat.Properties[key]
	return v, ok
}

// baseGeometryType folds Multi* types the way filters see them.
func baseGeometryType(t string) string {
	switch t {
	case "MultiPoint":
		return "Point"
	case "MultiLineString":
		return "LineString"
	case "MultiPolygon":
		return "Polygon"
	}
	return t
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && sameKind(a, b)
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	case nil:
		return b == nil
	}
	return false
}

func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	switch {
	case sa < sb:
		return -1, true
	case sa > sb:
		return 1, true
	}
	return 0, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
