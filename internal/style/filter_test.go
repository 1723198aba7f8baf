package style

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
)

func TestFilterMatch(t *testing.T) {
	school := geo.NewFeature(geo.Geometry{Type: "MultiPoint"}, geo.Properties{
		"class": "school", "capacity": 120.0, "open": true,
	})

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil", nil, true},
		{"eq", Filter{"==", "class", "school"}, true},
		{"eq miss", Filter{"==", "class", "park"}, false},
		{"eq int vs float", Filter{"==", "capacity", 120}, true},
		{"eq string vs number", Filter{"==", "capacity", "120"}, false},
		{"eq bool", Filter{"==", "open", true}, true},
		{"neq", Filter{"!=", "class", "park"}, true},
		{"neq absent", Filter{"!=", "missing", "x"}, true},
		{"gt", Filter{">", "capacity", 100}, true},
		{"lte", Filter{"<=", "capacity", 100}, false},
		{"lt string", Filter{"<", "class", "zoo"}, true},
		{"cmp mixed", Filter{"<", "class", 3}, false},
		{"in", Filter{"in", "class", "park", "school"}, true},
		{"!in", Filter{"!in", "class", "park", "school"}, false},
		{"has", Filter{"has", "open"}, true},
		{"!has", Filter{"!has", "open"}, false},
		{"type", Filter{"==", "$type", "Point"}, true},
		{"all", Filter{"all", []any{"==", "class", "school"}, []any{">=", "capacity", 120}}, true},
		{"all fails", Filter{"all", []any{"==", "class", "school"}, []any{">", "capacity", 120}}, false},
		{"any", Filter{"any", []any{"==", "class", "park"}, []any{"has", "open"}}, true},
		{"none", Filter{"none", []any{"==", "class", "park"}}, true},
		{"nested filter", Filter{"all", Filter{"has", "class"}}, true},
		{"unknown op", Filter{"within", "class"}, false},
		{"expression key", Filter{"==", []any{"get", "class"}, "school"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(school))
		})
	}
}
