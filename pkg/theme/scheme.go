// Package theme resolves the visual scheme of each widget.
//
// A [Theme] maps widget identities to [Scheme] values and supplies a default
// scheme per [WidgetType]. Resolution never fails: an identity without a
// registered scheme falls back to its category default, and a theme without
// a category default falls back to a neutral built-in scheme.
package theme

import (
	"fmt"
	"maps"
	"strings"

	"github.com/go-drift/may/pkg/graphics"
)

// WidgetID identifies a widget for theme lookup, e.g. "may-widgets:Button".
type WidgetID string

// WidgetType is the category a widget belongs to. Each category has a
// default scheme.
type WidgetType int

const (
	// WidgetTypeContent is text, images and other passive content.
	WidgetTypeContent WidgetType = iota
	// WidgetTypeInteractive is buttons and other pointer targets.
	WidgetTypeInteractive
	// WidgetTypeContainer groups and decorates children.
	WidgetTypeContainer
	// WidgetTypeLayout arranges children without drawing.
	WidgetTypeLayout
)

var widgetTypeNames = []string{"content", "interactive", "container", "layout"}

// String returns a human-readable representation of the widget type.
func (t WidgetType) String() string {
	if int(t) >= 0 && int(t) < len(widgetTypeNames) {
		return widgetTypeNames[t]
	}
	return fmt.Sprintf("WidgetType(%d)", int(t))
}

// ParseWidgetType parses the lower-case name of a widget type.
func ParseWidgetType(s string) (WidgetType, error) {
	for i, name := range widgetTypeNames {
		if strings.EqualFold(s, name) {
			return WidgetType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown widget type %q", s)
}

// Semantic scheme keys shared by the bundled widgets.
const (
	KeyColor      = "color"
	KeyBackground = "background"
	KeyBorder     = "border"
	KeyHover      = "hover"
	KeyPressed    = "pressed"
)

// Scheme is a resolved set of paints keyed by semantic name.
type Scheme map[string]graphics.Paint

// Paint returns the paint stored under name.
func (s Scheme) Paint(name string) (graphics.Paint, bool) {
	p, ok := s[name]
	return p, ok
}

// PaintOr returns the paint stored under name or fallback.
func (s Scheme) PaintOr(name string, fallback graphics.Paint) graphics.Paint {
	if p, ok := s[name]; ok {
		return p
	}
	return fallback
}

// Color returns the color of the paint stored under name.
func (s Scheme) Color(name string) (graphics.Color, bool) {
	p, ok := s[name]
	return p.Color, ok
}

// ColorOr returns the color stored under name or fallback.
func (s Scheme) ColorOr(name string, fallback graphics.Color) graphics.Color {
	if p, ok := s[name]; ok {
		return p.Color
	}
	return fallback
}

// Number returns the stroke width of the paint stored under name.
func (s Scheme) Number(name string) (float32, bool) {
	p, ok := s[name]
	return p.StrokeWidth, ok
}

// Clone returns a shallow copy safe to modify.
func (s Scheme) Clone() Scheme {
	if s == nil {
		return Scheme{}
	}
	return maps.Clone(s)
}

// Merge returns a new scheme with over's entries layered on top of s.
func (s Scheme) Merge(over Scheme) Scheme {
	out := s.Clone()
	maps.Copy(out, over)
	return out
}

// WindowScheme holds the paints used outside any widget.
type WindowScheme struct {
	Background graphics.Color
}
