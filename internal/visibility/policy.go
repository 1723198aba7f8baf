// Package visibility turns toggle events into show/hide plans.
//
// A toggle switch in a UI reports a group id and its new state. Policies are
// pure functions from that event to the layers to show and hide, so the map
// façade never sees UI event objects.
package visibility

import "sort"

// Event is a toggle change for a layer group.
type Event struct {
	Group string `json:"group" doc:"Toggle group id" example:"satellite"`
	On    bool   `json:"on" doc:"New toggle state"`
}

// Plan lists layer ids to show and to hide.
type Plan struct {
	Show []string `json:"show"`
	Hide []string `json:"hide"`
}

// Policy maps a toggle event to a plan.
type Policy func(Event) Plan

// Swap shows primary and hides others when the toggle is on, and does the
// reverse when it is off. Used for base-map swaps such as satellite imagery.
func Swap(primary string, others []string) Policy {
	return func(ev Event) Plan {
		if ev.On {
			return Plan{Show: []string{primary}, Hide: clone(others)}
		}
		return Plan{Show: clone(others), Hide: []string{primary}}
	}
}

// Single maps the toggle straight onto one layer.
func Single(layerID string) Policy {
	return func(ev Event) Plan {
		if ev.On {
			return Plan{Show: []string{layerID}}
		}
		return Plan{Hide: []string{layerID}}
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

// Registry resolves toggle groups to policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Register binds a group id to a policy, replacing any previous one.
func (r *Registry) Register(group string, p Policy) {
	r.policies[group] = p
}

// RegisterPrefixed binds each group g to the layer prefix+g.
func (r *Registry) RegisterPrefixed(prefix string, groups ...string) {
	for _, g := range groups {
		r.Register(g, Single(prefix+g))
	}
}

// Resolve returns the plan for ev. ok is false for unknown groups.
func (r *Registry) Resolve(ev Event) (plan Plan, ok bool) {
	p, ok := r.policies[ev.Group]
	if !ok {
		return Plan{}, false
	}
	return p(ev), true
}

// Groups returns the registered group ids, sorted.
func (r *Registry) Groups() []string {
	groups := make([]string, 0, len(r.policies))
	for g := range r.policies {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
