package theme

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/go-drift/may/pkg/graphics"
)

// Theme is the collaborator the render walk consults for each widget.
type Theme interface {
	// SchemeOf returns the scheme registered for id.
	SchemeOf(id WidgetID) (Scheme, bool)
	// DefaultSchemeOf returns the fallback scheme of a widget category.
	DefaultSchemeOf(t WidgetType) Scheme
	// WindowScheme returns the paints used outside any widget.
	WindowScheme() WindowScheme
}

// Brightness indicates if a theme is light or dark.
type Brightness int

const (
	BrightnessLight Brightness = iota
	BrightnessDark
)

// String returns a human-readable representation of the brightness.
func (b Brightness) String() string {
	switch b {
	case BrightnessLight:
		return "light"
	case BrightnessDark:
		return "dark"
	default:
		return fmt.Sprintf("Brightness(%d)", int(b))
	}
}

// neutralScheme is used when a theme has no default for a category.
var neutralScheme = Scheme{
	KeyColor:      graphics.PaintOf(graphics.ColorBlack),
	KeyBackground: graphics.PaintOf(graphics.RGB(0xE0, 0xE0, 0xE0)),
	KeyBorder:     graphics.PaintOf(graphics.RGB(0x80, 0x80, 0x80)),
}

// NeutralScheme returns a copy of the built-in last-resort scheme.
func NeutralScheme() Scheme {
	return neutralScheme.Clone()
}

// Data is the concrete, mutable Theme implementation. It is safe for
// concurrent use so a theme file watcher may replace schemes while a tick
// is reading them.
type Data struct {
	mu         sync.RWMutex
	name       string
	brightness Brightness
	window     WindowScheme
	defaults   map[WidgetType]Scheme
	schemes    map[WidgetID]Scheme
}

// NewData returns an empty theme.
func NewData(name string, brightness Brightness) *Data {
	return &Data{
		name:       name,
		brightness: brightness,
		window:     WindowScheme{Background: graphics.ColorWhite},
		defaults:   make(map[WidgetType]Scheme),
		schemes:    make(map[WidgetID]Scheme),
	}
}

// Name returns the theme name.
func (d *Data) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// Brightness returns whether the theme is light or dark.
func (d *Data) Brightness() Brightness {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.brightness
}

// SchemeOf implements Theme.
func (d *Data) SchemeOf(id WidgetID) (Scheme, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.schemes[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// DefaultSchemeOf implements Theme.
func (d *Data) DefaultSchemeOf(t WidgetType) Scheme {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.defaults[t]; ok {
		return s.Clone()
	}
	return NeutralScheme()
}

// WindowScheme implements Theme.
func (d *Data) WindowScheme() WindowScheme {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.window
}

// SetWindowScheme replaces the window scheme.
func (d *Data) SetWindowScheme(w WindowScheme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = w
}

// Register sets the scheme for a widget identity.
func (d *Data) Register(id WidgetID, s Scheme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schemes[id] = s.Clone()
}

// Unregister removes the scheme for a widget identity.
func (d *Data) Unregister(id WidgetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.schemes, id)
}

// SetDefault sets the default scheme of a category.
func (d *Data) SetDefault(t WidgetType, s Scheme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaults[t] = s.Clone()
}

// Copy returns a deep copy of the theme.
func (d *Data) Copy() *Data {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := NewData(d.name, d.brightness)
	out.window = d.window
	for t, s := range d.defaults {
		out.defaults[t] = s.Clone()
	}
	for id, s := range d.schemes {
		out.schemes[id] = s.Clone()
	}
	return out
}

// Replace swaps every scheme in d for those in other, keeping d's identity
// so holders of d observe the new values.
func (d *Data) Replace(other *Data) {
	c := other.Copy()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = c.name
	d.brightness = c.brightness
	d.window = c.window
	d.defaults = c.defaults
	d.schemes = c.schemes
}

// IDs returns the identities with a registered scheme, sorted.
func (d *Data) IDs() []WidgetID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.schemes))
}

// Resolve returns the scheme for a widget: the category default with any
// scheme registered for id layered on top. A nil theme yields the neutral
// scheme. Resolve never fails.
func Resolve(th Theme, id WidgetID, t WidgetType) Scheme {
	if th == nil {
		return NeutralScheme()
	}
	base := th.DefaultSchemeOf(t)
	if base == nil {
		base = NeutralScheme()
	}
	if specific, ok := th.SchemeOf(id); ok {
		return base.Merge(specific)
	}
	return base
}

// IsRegistered reports whether th carries a scheme for id.
func IsRegistered(th Theme, id WidgetID) bool {
	if th == nil {
		return false
	}
	_, ok := th.SchemeOf(id)
	return ok
}
