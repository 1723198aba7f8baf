package style

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LayerFile is a declarative list of layers, in paint order.
//
//	layers:
//	  - type: polygon
//	    config:
//	      layerId: tracts
//	      sourceId: tracts-source
//	      fillColor: "#3388ff"
type LayerFile struct {
	Layers []LayerEntry `yaml:"layers"`
}

// LayerEntry is one typed layer inside a LayerFile. Config fields not
// present in the file keep their defaults.
type LayerEntry struct {
	Type   LayerType `yaml:"type"`
	Before string    `yaml:"before,omitempty"`
	Config Config    `yaml:"-"`
}

// UnmarshalYAML decodes the config block into the variant named by type.
func (e *LayerEntry) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Type   string    `yaml:"type"`
		Before string    `yaml:"before"`
		Config yaml.Node `yaml:"config"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	t, err := ParseLayerType(raw.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	cfg, err := decodeVariant(t, func(dst any) error {
		if raw.Config.Kind == 0 {
			return nil
		}
		return raw.Config.Decode(dst)
	})
	if err != nil {
		return fmt.Errorf("line %d: %s config: %w", node.Line, t, err)
	}

	e.Type, e.Before, e.Config = t, raw.Before, cfg
	return nil
}

// decodeVariant runs decode onto the defaults of t's variant, so fields the
// input leaves out keep their default values.
func decodeVariant(t LayerType, decode func(dst any) error) (Config, error) {
	switch t {
	case TypePolygon:
		c := DefaultPolygon()
		err := decode(&c)
		return c, err
	case TypeLine:
		c := DefaultLine()
		err := decode(&c)
		return c, err
	case TypeCircle:
		c := DefaultCircle()
		err := decode(&c)
		return c, err
	case TypeSymbol:
		c := DefaultSymbol()
		err := decode(&c)
		return c, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedLayerType, t)
}

// ParseLayerFile reads a YAML (or JSON) layer file.
func ParseLayerFile(r io.Reader) (*LayerFile, error) {
	var f LayerFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parsing layer file: %w", err)
	}
	return &f, nil
}

// CompileAll compiles every entry, stopping at the first invalid one.
func (f *LayerFile) CompileAll() ([]Layer, error) {
	layers := make([]Layer, 0, len(f.Layers))
	for i, e := range f.Layers {
		l, err := BuildLayerJSON(e.Config, e.Type)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}
