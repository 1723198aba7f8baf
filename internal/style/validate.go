package style

import (
	"fmt"
	"slices"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate checks the shared fields.
func (b Base) Validate() error {
	if b.LayerID == "" || b.SourceID == "" {
		return fmt.Errorf("%w (layer %q, source %q)", ErrMissingID, b.LayerID, b.SourceID)
	}
	if b.Visibility != Visible && b.Visibility != Hidden {
		return invalid("visibility %q", b.Visibility)
	}
	return nil
}

func checkOpacity(name string, v float64) error {
	if v < 0 || v > 1 {
		return invalid("%s %v outside [0,1]", name, v)
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if v < 0 {
		return invalid("%s %v is negative", name, v)
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if v <= 0 {
		return invalid("%s %v must be positive", name, v)
	}
	return nil
}

func checkDashes(name string, dashes []float64) error {
	for _, d := range dashes {
		if d < 0 {
			return invalid("%s has negative length %v", name, d)
		}
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate implements Config.
func (c PolygonConfig) Validate() error {
	if c.Type != PolygonFill && c.Type != PolygonOutline {
		return invalid("polygon type %q", c.Type)
	}
	return firstErr(
		c.Base.Validate(),
		checkOpacity("fill-opacity", c.FillOpacity),
		checkNonNegative("outline width", c.OutlineWidth),
		checkDashes("outline dash array", c.OutlineDashArray),
	)
}

// Validate implements Config.
func (c LineConfig) Validate() error {
	return firstErr(
		c.Base.Validate(),
		checkOpacity("line-opacity", c.LineOpacity),
		checkPositive("line-width", c.LineWidth),
		checkDashes("line-dasharray", c.LineDashArray),
	)
}

// Validate implements Config.
func (c CircleConfig) Validate() error {
	return firstErr(
		c.Base.Validate(),
		checkOpacity("circle-opacity", c.CircleOpacity),
		checkPositive("circle-radius", c.CircleRadius),
	)
}

// Validate implements Config.
func (c SymbolConfig) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if !slices.Contains(anchors, c.TextAnchor) {
		return invalid("text-anchor %q", c.TextAnchor)
	}
	switch c.TextTransform {
	case TransformNone, TransformUppercase, TransformLowercase:
	default:
		return invalid("text-transform %q", c.TextTransform)
	}
	if c.IconRotate != nil && c.IconRotate.Property == "" {
		return invalid("icon-rotate needs a property")
	}
	return firstErr(
		checkPositive("text-size", c.TextSize),
		checkNonNegative("text-halo-width", c.TextHaloWidth),
	)
}
