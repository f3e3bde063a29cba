package widgets

import (
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// TextID is the default theme identity of Text.
const TextID theme.WidgetID = "may-widgets:Text"

// DefaultFontSize is the font size of a new Text.
const DefaultFontSize = 16

// Text is a leaf that draws one run of text in its scheme's color.
//
// The text is either static or bound to the application state. A bound
// text is re-evaluated on every update and raises layout and draw when the
// value changes, so Render only ever sees the value captured by the last
// update.
type Text[S any] struct {
	id theme.WidgetID
	// Style is the text's layout style. Auto sizes are measured from the
	// text.
	Style layout.Style
	// FontSize is the size in logical pixels.
	FontSize float32
	// FontName selects a registry font; empty means the default font.
	FontName string

	bind func(state *S) string
	text string
	font *fonts.Font
}

// NewText returns a static text.
func NewText[S any](text string) *Text[S] {
	return &Text[S]{id: TextID, Style: layout.DefaultStyle(), FontSize: DefaultFontSize, text: text}
}

// BoundText returns a text whose value is computed from the state on every
// update. It is empty until the first update.
func BoundText[S any](fn func(state *S) string) *Text[S] {
	t := NewText[S]("")
	t.bind = fn
	return t
}

// WithID overrides the theme identity.
func (t *Text[S]) WithID(id theme.WidgetID) *Text[S] {
	t.id = id
	return t
}

// WithStyle replaces the layout style.
func (t *Text[S]) WithStyle(style layout.Style) *Text[S] {
	t.Style = style
	return t
}

// WithFontSize sets the font size.
func (t *Text[S]) WithFontSize(size float32) *Text[S] {
	t.FontSize = size
	return t
}

// WithFont selects a registry font by name.
func (t *Text[S]) WithFont(name string) *Text[S] {
	t.FontName = name
	return t
}

// SetText replaces a static text. It has no lasting effect on a bound text.
func (t *Text[S]) SetText(text string) {
	t.text = text
}

// Text returns the current value.
func (t *Text[S]) Text() string { return t.text }

// ID implements core.Widget.
func (t *Text[S]) ID() theme.WidgetID { return t.id }

// WidgetType implements core.Widget.
func (t *Text[S]) WidgetType() theme.WidgetType { return theme.WidgetTypeContent }

// Children implements core.Widget.
func (t *Text[S]) Children() []core.Widget[S] { return nil }

// StyleNode implements core.Widget.
func (t *Text[S]) StyleNode() *layout.StyleNode {
	text, size, f := t.text, t.FontSize, t.face()
	return &layout.StyleNode{
		Style: t.Style,
		Measure: func(graphics.Size) graphics.Size {
			m := measure(f, size, text)
			return graphics.Size{Width: m.Width, Height: m.Height}
		},
	}
}

// Update implements core.Widget.
func (t *Text[S]) Update(state *S, _ *layout.Node, ctx *core.Context) core.Update {
	var u core.Update
	if f := ctx.Fonts().GetOrDefault(t.FontName); f != t.font {
		if t.font != nil {
			u.Insert(core.UpdateLayout | core.UpdateDraw)
		}
		t.font = f
	}
	if t.bind != nil {
		if v := t.bind(state); v != t.text {
			t.text = v
			u.Insert(core.UpdateLayout | core.UpdateDraw)
		}
	}
	return u
}

// Render implements core.Widget. The baseline sits one ascent below the
// top of the layout node.
func (t *Text[S]) Render(scheme theme.Scheme, node *layout.Node) []graphics.Sketch {
	if t.text == "" {
		return nil
	}
	f := t.face()
	m := measure(f, t.FontSize, t.text)
	return []graphics.Sketch{graphics.TextSketch{
		Text:     t.text,
		Position: graphics.Offset{X: node.Location.X, Y: node.Location.Y + m.Ascent},
		Paint:    scheme.PaintOr(theme.KeyColor, graphics.PaintOf(graphics.ColorBlack)),
		FontSize: t.FontSize,
		Font:     f,
		Extent:   graphics.Size{Width: m.Width, Height: m.Height},
	}}
}

// face returns the font resolved by the last update, or the shared default
// before the first one.
func (t *Text[S]) face() *fonts.Font {
	if t.font != nil {
		return t.font
	}
	return fonts.Shared().GetOrDefault(t.FontName)
}

// measure falls back to an estimate when the face cannot be built.
func measure(f *fonts.Font, size float32, text string) fonts.Metrics {
	if text == "" {
		return fonts.Metrics{Height: size, Ascent: size}
	}
	m, err := f.Measure(float64(size), text)
	if err != nil {
		n := float32(len([]rune(text)))
		return fonts.Metrics{Width: n * size * 0.5, Height: size * 1.2, Ascent: size, Descent: size * 0.2}
	}
	return m
}
