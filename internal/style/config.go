// Package style compiles typed layer configurations into style-specification
// layer documents.
//
// A configuration is one of four variants (PolygonConfig, LineConfig,
// CircleConfig, SymbolConfig) sharing the Base fields. Configurations are
// plain values: copy one, change fields, and hand it to Compile, which is a
// pure function returning a fresh Layer document.
//
// Struct tags serve three readers: encoding/json and yaml.v3 for layer files,
// and Huma for OpenAPI schemas, defaults and request validation.
package style

import (
	"errors"
	"fmt"
)

// LayerType tags the configuration variants.
type LayerType string

const (
	TypePolygon LayerType = "polygon"
	TypeLine    LayerType = "line"
	TypeCircle  LayerType = "circle"
	TypeSymbol  LayerType = "symbol"
)

// LayerTypes lists every supported layer type.
var LayerTypes = []LayerType{TypePolygon, TypeLine, TypeCircle, TypeSymbol}

var (
	// ErrUnrecognizedLayerType reports a layer type tag outside LayerTypes.
	// It signals a configuration bug in the caller.
	ErrUnrecognizedLayerType = errors.New("unrecognized layer type")
	// ErrLayerTypeMismatch reports a tag that disagrees with the config variant.
	ErrLayerTypeMismatch = errors.New("layer type does not match config")
	// ErrMissingID reports a config without layer or source id.
	ErrMissingID = errors.New("layer id and source id are required")
	// ErrInvalidConfig wraps every out-of-range or unknown option value.
	ErrInvalidConfig = errors.New("invalid layer config")
)

// ParseLayerType validates a layer type tag.
func ParseLayerType(s string) (LayerType, error) {
	for _, t := range LayerTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedLayerType, s)
}

// Visibility is the layout visibility of a layer.
type Visibility string

const (
	Visible Visibility = "visible"
	Hidden  Visibility = "none"
)

// PolygonType selects how a polygon layer is drawn.
type PolygonType string

const (
	PolygonFill    PolygonType = "fill"
	PolygonOutline PolygonType = "line"
)

// Anchor is the part of a label placed closest to its anchor point.
type Anchor string

const (
	AnchorCenter      Anchor = "center"
	AnchorLeft        Anchor = "left"
	AnchorRight       Anchor = "right"
	AnchorTop         Anchor = "top"
	AnchorBottom      Anchor = "bottom"
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

var anchors = []Anchor{
	AnchorCenter, AnchorLeft, AnchorRight, AnchorTop, AnchorBottom,
	AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight,
}

// TextTransform changes label case.
type TextTransform string

const (
	TransformNone      TextTransform = "none"
	TransformUppercase TextTransform = "uppercase"
	TransformLowercase TextTransform = "lowercase"
)

// Config is implemented by the four layer configuration variants.
type Config interface {
	// Kind returns the variant tag.
	Kind() LayerType
	// Common returns the fields shared by every variant.
	Common() Base
	// Validate reports the first invalid option.
	Validate() error

	sealed()
}

// Base holds the fields common to every layer.
// SourceLayer names the layer inside a vector tile source and must stay
// empty for geojson sources.
type Base struct {
	LayerID     string     `json:"layerId" yaml:"layerId" doc:"Layer identifier" example:"tracts"`
	SourceID    string     `json:"sourceId" yaml:"sourceId" doc:"Source the layer draws from" example:"tracts-source"`
	SourceLayer string     `json:"sourceLayer,omitempty" yaml:"sourceLayer,omitempty" doc:"Layer name inside a vector tile source"`
	Visibility  Visibility `json:"visibility,omitempty" yaml:"visibility,omitempty" enum:"visible,none" default:"visible" doc:"Initial visibility"`
	Filter      Filter     `json:"filter,omitempty" yaml:"filter,omitempty" doc:"Filter expression"`
}

// Common implements Config.
func (b Base) Common() Base { return b }

// PolygonConfig styles polygon geometries as a fill or as an outline.
type PolygonConfig struct {
	Base             `yaml:",inline"`
	Type             PolygonType `json:"type,omitempty" yaml:"type,omitempty" enum:"fill,line" default:"fill" doc:"Draw as fill or outline"`
	FillColor        string      `json:"fillColor,omitempty" yaml:"fillColor,omitempty" default:"#EE362B" doc:"Fill color (CSS)"`
	FillOpacity      float64     `json:"fillOpacity" yaml:"fillOpacity" minimum:"0" maximum:"1" default:"0.7" doc:"Fill opacity (0-1)"`
	FillPattern      string      `json:"fillPattern,omitempty" yaml:"fillPattern,omitempty" doc:"Sprite image used as fill pattern"`
	OutlineColor     string      `json:"outlineColor,omitempty" yaml:"outlineColor,omitempty" default:"#EE362B" doc:"Outline color (CSS)"`
	OutlineWidth     float64     `json:"outlineWidth" yaml:"outlineWidth" minimum:"0" default:"1" doc:"Outline width in pixels"`
	OutlineDashArray []float64   `json:"outlineDashArray,omitempty" yaml:"outlineDashArray,omitempty" default:"[1,0]" doc:"Outline dash pattern"`
}

// LineConfig styles line geometries.
type LineConfig struct {
	Base          `yaml:",inline"`
	LineColor     string    `json:"lineColor,omitempty" yaml:"lineColor,omitempty" default:"#000000" doc:"Line color (CSS)"`
	LineOpacity   float64   `json:"lineOpacity" yaml:"lineOpacity" minimum:"0" maximum:"1" default:"1" doc:"Line opacity (0-1)"`
	LineWidth     float64   `json:"lineWidth" yaml:"lineWidth" exclusiveMinimum:"0" default:"3" doc:"Line width in pixels"`
	LineDashArray []float64 `json:"lineDashArray,omitempty" yaml:"lineDashArray,omitempty" default:"[3,0]" doc:"Dash pattern, scaled by line width"`
}

// CircleConfig styles point geometries as circles.
type CircleConfig struct {
	Base          `yaml:",inline"`
	CircleColor   string  `json:"circleColor,omitempty" yaml:"circleColor,omitempty" default:"#CCCCCC" doc:"Circle color (CSS)"`
	CircleOpacity float64 `json:"circleOpacity" yaml:"circleOpacity" minimum:"0" maximum:"1" default:"1" doc:"Circle opacity (0-1)"`
	CircleRadius  float64 `json:"circleRadius" yaml:"circleRadius" exclusiveMinimum:"0" default:"10" doc:"Circle radius in pixels"`
}

// IconRotate rotates icons by a feature property through zoom-independent stops.
type IconRotate struct {
	Property string       `json:"property" yaml:"property" doc:"Feature property holding the input value" example:"bearing"`
	Stops    [][2]float64 `json:"stops" yaml:"stops" doc:"Input/output pairs"`
}

// SymbolConfig styles point geometries as icons and labels.
type SymbolConfig struct {
	Base             `yaml:",inline"`
	IconImage        string        `json:"iconImage,omitempty" yaml:"iconImage,omitempty" doc:"Sprite icon name"`
	IconRotate       *IconRotate   `json:"iconRotate,omitempty" yaml:"iconRotate,omitempty" doc:"Rotate icons by a property"`
	TextField        string        `json:"textField" yaml:"textField" doc:"Label text or {property} template"`
	IconAllowOverlap bool          `json:"iconAllowOverlap" yaml:"iconAllowOverlap" doc:"Draw icons over other symbols"`
	TextAllowOverlap bool          `json:"textAllowOverlap" yaml:"textAllowOverlap" doc:"Draw labels over other symbols"`
	TextAnchor       Anchor        `json:"textAnchor,omitempty" yaml:"textAnchor,omitempty" enum:"center,left,right,top,bottom,top-left,top-right,bottom-left,bottom-right" default:"center" doc:"Label anchor"`
	TextSize         float64       `json:"textSize" yaml:"textSize" exclusiveMinimum:"0" default:"10" doc:"Font size in pixels"`
	TextTransform    TextTransform `json:"textTransform,omitempty" yaml:"textTransform,omitempty" enum:"none,uppercase,lowercase" default:"uppercase" doc:"Label case"`
	TextHaloColor    string        `json:"textHaloColor,omitempty" yaml:"textHaloColor,omitempty" default:"#FFFFFF" doc:"Halo color (CSS)"`
	TextHaloWidth    float64       `json:"textHaloWidth" yaml:"textHaloWidth" minimum:"0" default:"2" doc:"Halo width in pixels"`
	TextTranslate    [2]float64    `json:"textTranslate" yaml:"textTranslate" doc:"Label offset [x, y], positive right and down; defaults to [12, 0]"`
	TextColor        string        `json:"textColor,omitempty" yaml:"textColor,omitempty" default:"#43506B" doc:"Text color (CSS)"`
}

func (PolygonConfig) Kind() LayerType { return TypePolygon }
func (LineConfig) Kind() LayerType    { return TypeLine }
func (CircleConfig) Kind() LayerType  { return TypeCircle }
func (SymbolConfig) Kind() LayerType  { return TypeSymbol }

func (PolygonConfig) sealed() {}
func (LineConfig) sealed()    {}
func (CircleConfig) sealed()  {}
func (SymbolConfig) sealed()  {}

// DefaultBase returns the shared defaults.
func DefaultBase() Base {
	return Base{Visibility: Visible}
}

// DefaultPolygon returns a red translucent fill.
func DefaultPolygon() PolygonConfig {
	return PolygonConfig{
		Base:             DefaultBase(),
		Type:             PolygonFill,
		FillColor:        "#EE362B",
		FillOpacity:      0.7,
		OutlineColor:     "#EE362B",
		OutlineWidth:     1,
		OutlineDashArray: []float64{1, 0},
	}
}

// DefaultLine returns a solid 3px black line.
func DefaultLine() LineConfig {
	return LineConfig{
		Base:          DefaultBase(),
		LineColor:     "#000000",
		LineOpacity:   1,
		LineWidth:     3,
		LineDashArray: []float64{3, 0},
	}
}

// DefaultCircle returns an opaque grey 10px circle.
func DefaultCircle() CircleConfig {
	return CircleConfig{
		Base:          DefaultBase(),
		CircleColor:   "#CCCCCC",
		CircleOpacity: 1,
		CircleRadius:  10,
	}
}

// DefaultSymbol returns an empty uppercase label with a white halo.
func DefaultSymbol() SymbolConfig {
	return SymbolConfig{
		Base:          DefaultBase(),
		TextAnchor:    AnchorCenter,
		TextSize:      10,
		TextTransform: TransformUppercase,
		TextHaloColor: "#FFFFFF",
		TextHaloWidth: 2,
		TextTranslate: [2]float64{12, 0},
		TextColor:     "#43506B",
	}
}

// BuildConfig returns the default configuration for a layer type.
func BuildConfig(t LayerType) (Config, error) {
	switch t {
	case TypePolygon:
		return DefaultPolygon(), nil
	case TypeLine:
		return DefaultLine(), nil
	case TypeCircle:
		return DefaultCircle(), nil
	case TypeSymbol:
		return DefaultSymbol(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedLayerType, t)
}

// WithIDs returns a copy of cfg bound to the given layer and source.
func WithIDs(cfg Config, layerID, sourceID string) Config {
	return withBase(cfg, func(b *Base) {
		b.LayerID = layerID
		b.SourceID = sourceID
	})
}

// WithVisibility returns a copy of cfg with the given visibility.
func WithVisibility(cfg Config, v Visibility) Config {
	return withBase(cfg, func(b *Base) { b.Visibility = v })
}

// WithFilter returns a copy of cfg with the given filter.
func WithFilter(cfg Config, f Filter) Config {
	return withBase(cfg, func(b *Base) { b.Filter = f })
}

func withBase(cfg Config, fn func(*Base)) Config {
	switch c := cfg.(type) {
	case PolygonConfig:
		fn(&c.Base)
		return c
	case LineConfig:
		fn(&c.Base)
		return c
	case CircleConfig:
		fn(&c.Base)
		return c
	case SymbolConfig:
		fn(&c.Base)
		return c
	}
	return cfg
}
