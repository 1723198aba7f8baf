package visibility

// SatelliteGroup is the toggle swapping the satellite layer for the base-map
// overlays it would otherwise hide.
const SatelliteGroup = "satellite"

// SatelliteOverlays are the base-map layers hidden under satellite imagery.
var SatelliteOverlays = []string{
	"water", "building", "landuse_industrial", "landuse_park",
	"landuse_overlay_national_park", "landuse_wood", "landcover_snow",
	"landcover_crop", "landcover_grass", "landcover_scrub", "landcover_wood",
	"hillshade_highlight_bright", "hillshade_highlight_med",
	"hillshade_shadow_faint", "hillshade_shadow_med", "hillshade_shadow_dark",
	"hillshade_shadow_extreme",
}

// CriticalInfrastructurePrefix prefixes the layer id of every basic
// critical-infrastructure group.
const CriticalInfrastructurePrefix = "basic-ci-"

// CriticalInfrastructureGroups are the basic critical-infrastructure toggles.
var CriticalInfrastructureGroups = []string{
	"healthcare-and-public-health", "shelters", "education", "energy",
	"communication", "transportation", "law-enforcement", "fire", "water",
	"senior-facilities", "horses", "eoc", "government", "hcid-field-offices",
	"community-emergency-hubs", "recreation-centers", "bridges",
}

// DefaultRegistry wires the satellite swap and the critical-infrastructure
// groups.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SatelliteGroup, Swap("satellite", SatelliteOverlays))
	r.RegisterPrefixed(CriticalInfrastructurePrefix, CriticalInfrastructureGroups...)
	return r
}
