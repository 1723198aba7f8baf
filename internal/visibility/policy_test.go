package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwap(t *testing.T) {
	p := Swap("satellite", []string{"water", "building"})

	on := p(Event{Group: "satellite", On: true})
	assert.Equal(t, []string{"satellite"}, on.Show)
	assert.Equal(t, []string{"water", "building"}, on.Hide)

	off := p(Event{Group: "satellite", On: false})
	assert.Equal(t, []string{"water", "building"}, off.Show)
	assert.Equal(t, []string{"satellite"}, off.Hide)
}

func TestSwapDoesNotShareSlices(t *testing.T) {
	overlays := []string{"water"}
	plan := Swap("satellite", overlays)(Event{On: true})
	plan.Hide[0] = "changed"
	assert.Equal(t, "water", overlays[0])
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	plan, ok := r.Resolve(Event{Group: "shelters", On: false})
	require.True(t, ok)
	assert.Equal(t, Plan{Hide: []string{"basic-ci-shelters"}}, plan)

	plan, ok = r.Resolve(Event{Group: "bridges", On: true})
	require.True(t, ok)
	assert.Equal(t, Plan{Show: []string{"basic-ci-bridges"}}, plan)

	plan, ok = r.Resolve(Event{Group: SatelliteGroup, On: true})
	require.True(t, ok)
	assert.Len(t, plan.Hide, len(SatelliteOverlays))

	_, ok = r.Resolve(Event{Group: "nope", On: true})
	assert.False(t, ok)

	assert.Len(t, r.Groups(), len(CriticalInfrastructureGroups)+1)
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("g", Single("a"))
	r.Register("g", Single("b"))

	plan, ok := r.Resolve(Event{Group: "g", On: true})
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, plan.Show)
}
