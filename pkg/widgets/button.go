package widgets

import (
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// ButtonID is the default theme identity of Button.
const ButtonID theme.WidgetID = "may-widgets:Button"

// Button is a pressable surface around an optional label widget.
//
// A left-button press inside the button's last layout bounds calls
// OnPressed with the application state; the flags it returns are merged
// with the button's own. Hover and press feedback raise draw.
type Button[S any] struct {
	core.Parent[S]
	id theme.WidgetID
	// Style is the button's layout style.
	Style layout.Style
	// Radius is the corner radius.
	Radius float32
	// OnPressed is called on a left press inside the button.
	OnPressed func(state *S) core.Update

	hovered bool
	pressed bool
	// seen is set after the first update. A freshly built button takes
	// its initial hover state without raising draw.
	seen bool
}

// NewButton returns a button showing label. A nil label makes an empty
// button.
func NewButton[S any](label core.Widget[S]) *Button[S] {
	b := &Button[S]{id: ButtonID, Style: buttonStyle(), Radius: 4}
	if label != nil {
		b.Add(label)
	}
	return b
}

func buttonStyle() layout.Style {
	s := layout.DefaultStyle()
	s.Padding = layout.Symmetric(16, 8)
	s.AlignItems = layout.AlignCenter
	s.JustifyContent = layout.JustifyCenter
	return s
}

// WithOnPressed sets the press callback.
func (b *Button[S]) WithOnPressed(fn func(state *S) core.Update) *Button[S] {
	b.OnPressed = fn
	return b
}

// WithID overrides the theme identity.
func (b *Button[S]) WithID(id theme.WidgetID) *Button[S] {
	b.id = id
	return b
}

// WithStyle replaces the layout style.
func (b *Button[S]) WithStyle(style layout.Style) *Button[S] {
	b.Style = style
	return b
}

// WithRadius sets the corner radius.
func (b *Button[S]) WithRadius(radius float32) *Button[S] {
	b.Radius = radius
	return b
}

// Hovered reports whether the cursor was over the button at the last update.
func (b *Button[S]) Hovered() bool { return b.hovered }

// Pressed reports whether the button is held down.
func (b *Button[S]) Pressed() bool { return b.pressed }

// ID implements core.Widget.
func (b *Button[S]) ID() theme.WidgetID { return b.id }

// WidgetType implements core.Widget.
func (b *Button[S]) WidgetType() theme.WidgetType { return theme.WidgetTypeInteractive }

// StyleNode implements core.Widget.
func (b *Button[S]) StyleNode() *layout.StyleNode {
	return layout.NewStyleNode(b.Style, core.ChildStyles(b.Children())...)
}

// Update implements core.Widget. Before the first layout the button has no
// bounds and ignores pointer input.
func (b *Button[S]) Update(state *S, node *layout.Node, ctx *core.Context) core.Update {
	var u core.Update
	if node != nil {
		u = b.handlePointer(state, node.Bounds(), ctx.Info)
	}
	b.seen = true
	return u.Merge(core.UpdateChildren(b.Children(), state, node, ctx))
}

func (b *Button[S]) handlePointer(state *S, bounds graphics.Rect, info *core.InteractionInfo) core.Update {
	var u core.Update
	if hovered := info.Hovering(bounds); hovered != b.hovered {
		b.hovered = hovered
		if b.seen {
			u.Insert(core.UpdateDraw)
		}
	}
	if ev, ok := info.ButtonPressed(core.MouseButtonLeft); ok && bounds.Contains(ev.Position) {
		b.pressed = true
		u.Insert(core.UpdateDraw)
		if b.OnPressed != nil {
			u.Insert(b.OnPressed(state))
		}
	}
	if _, ok := info.ButtonReleased(core.MouseButtonLeft); ok && b.pressed {
		b.pressed = false
		u.Insert(core.UpdateDraw)
	}
	return u
}

// Render implements core.Widget.
func (b *Button[S]) Render(scheme theme.Scheme, node *layout.Node) []graphics.Sketch {
	fill := theme.KeyBackground
	switch {
	case b.pressed:
		if _, ok := scheme.Paint(theme.KeyPressed); ok {
			fill = theme.KeyPressed
		}
	case b.hovered:
		if _, ok := scheme.Paint(theme.KeyHover); ok {
			fill = theme.KeyHover
		}
	}
	return decoration(scheme, node.Bounds(), b.Radius, fill)
}
