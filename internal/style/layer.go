package style

import (
	"fmt"
	"slices"
)

// Properties is a layout or paint property block keyed by style-spec name.
type Properties map[string]any

// Layer is a style-specification layer document.
type Layer struct {
	ID          string     `json:"id" doc:"Layer identifier"`
	Type        string     `json:"type" doc:"Rendering type: fill, line, circle or symbol"`
	Source      string     `json:"source" doc:"Source identifier"`
	SourceLayer string     `json:"source-layer,omitempty" doc:"Layer inside a vector tile source"`
	Interactive bool       `json:"interactive"`
	Layout      Properties `json:"layout"`
	Paint       Properties `json:"paint,omitempty"`
	Filter      Filter     `json:"filter,omitempty"`
}

// Visibility returns the layout visibility, defaulting to visible.
func (l Layer) Visibility() Visibility {
	if v, ok := l.Layout["visibility"].(Visibility); ok {
		return v
	}
	if v, ok := l.Layout["visibility"].(string); ok {
		return Visibility(v)
	}
	return Visible
}

// Clone returns a deep copy of the top-level property blocks.
func (l Layer) Clone() Layer {
	c := l
	c.Layout = cloneProps(l.Layout)
	c.Paint = cloneProps(l.Paint)
	c.Filter = slices.Clone(l.Filter)
	return c
}

func cloneProps(p Properties) Properties {
	if p == nil {
		return nil
	}
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// BuildLayerJSON compiles cfg after checking that t names its variant.
func BuildLayerJSON(cfg Config, t LayerType) (Layer, error) {
	if _, err := ParseLayerType(string(t)); err != nil {
		return Layer{}, err
	}
	if cfg == nil || cfg.Kind() != t {
		return Layer{}, fmt.Errorf("%w: tag %q", ErrLayerTypeMismatch, t)
	}
	return Compile(cfg)
}

// Compile validates cfg and translates it into a layer document. The
// document shares no memory with cfg.
func Compile(cfg Config) (Layer, error) {
	if cfg == nil {
		return Layer{}, fmt.Errorf("%w: nil config", ErrUnrecognizedLayerType)
	}
	if err := cfg.Validate(); err != nil {
		return Layer{}, err
	}

	var l Layer
	switch c := cfg.(type) {
	case PolygonConfig:
		l = base(c.Base, string(c.Type))
		switch c.Type {
		case PolygonFill:
			l.Paint = Properties{
				"fill-color":   c.FillColor,
				"fill-opacity": c.FillOpacity,
			}
			if c.FillPattern != "" {
				l.Paint["fill-pattern"] = c.FillPattern
			}
		case PolygonOutline:
			l.Paint = Properties{
				"line-color":     c.OutlineColor,
				"line-width":     c.OutlineWidth,
				"line-dasharray": dashes(c.OutlineDashArray),
			}
		}

	case LineConfig:
		l = base(c.Base, "line")
		l.Paint = Properties{
			"line-color":     c.LineColor,
			"line-opacity":   c.LineOpacity,
			"line-width":     c.LineWidth,
			"line-dasharray": dashes(c.LineDashArray),
		}

	case CircleConfig:
		l = base(c.Base, "circle")
		l.Paint = Properties{
			"circle-color":   c.CircleColor,
			"circle-opacity": c.CircleOpacity,
			"circle-radius":  c.CircleRadius,
		}

	case SymbolConfig:
		l = base(c.Base, "symbol")
		l.Layout["text-field"] = c.TextField
		l.Layout["icon-allow-overlap"] = c.IconAllowOverlap
		l.Layout["text-allow-overlap"] = c.TextAllowOverlap
		l.Layout["text-anchor"] = string(c.TextAnchor)
		l.Layout["text-size"] = c.TextSize
		l.Layout["text-transform"] = string(c.TextTransform)
		// An unset icon is left out rather than sent as an empty sprite name.
		if c.IconImage != "" {
			l.Layout["icon-image"] = c.IconImage
		}
		if c.IconRotate != nil {
			l.Layout["icon-rotate"] = Properties{
				"property": c.IconRotate.Property,
				"stops":    slices.Clone(c.IconRotate.Stops),
			}
		}
		l.Paint = Properties{
			"text-halo-color": c.TextHaloColor,
			"text-halo-width": c.TextHaloWidth,
			"text-translate":  []float64{c.TextTranslate[0], c.TextTranslate[1]},
			"text-color":      c.TextColor,
		}

	default:
		return Layer{}, fmt.Errorf("%w: %T", ErrUnrecognizedLayerType, cfg)
	}
	return l, nil
}

// base fills the keys every layer document carries.
func base(b Base, typ string) Layer {
	return Layer{
		ID:          b.LayerID,
		Type:        typ,
		Source:      b.SourceID,
		SourceLayer: b.SourceLayer,
		Interactive: true,
		Layout:      Properties{"visibility": string(b.Visibility)},
		Filter:      slices.Clone(b.Filter),
	}
}

func dashes(d []float64) []float64 {
	if d == nil {
		return []float64{}
	}
	return slices.Clone(d)
}
