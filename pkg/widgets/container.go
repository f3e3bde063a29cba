package widgets

import (
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// ContainerID is the default theme identity of Container.
const ContainerID theme.WidgetID = "may-widgets:Container"

// Container groups children and paints the background and border of its
// scheme behind them.
type Container[S any] struct {
	core.Parent[S]
	id theme.WidgetID
	// Style is the container's layout style.
	Style layout.Style
	// Radius is the corner radius of the background.
	Radius float32
}

// NewContainer returns a container owning children, laid out as a row.
func NewContainer[S any](children ...core.Widget[S]) *Container[S] {
	return &Container[S]{
		Parent: core.NewParent(children...),
		id:     ContainerID,
		Style:  layout.DefaultStyle(),
	}
}

// WithID overrides the theme identity.
func (c *Container[S]) WithID(id theme.WidgetID) *Container[S] {
	c.id = id
	return c
}

// WithStyle replaces the layout style.
func (c *Container[S]) WithStyle(style layout.Style) *Container[S] {
	c.Style = style
	return c
}

// WithRadius sets the corner radius.
func (c *Container[S]) WithRadius(radius float32) *Container[S] {
	c.Radius = radius
	return c
}

// ID implements core.Widget.
func (c *Container[S]) ID() theme.WidgetID { return c.id }

// WidgetType implements core.Widget.
func (c *Container[S]) WidgetType() theme.WidgetType { return theme.WidgetTypeContainer }

// StyleNode implements core.Widget.
func (c *Container[S]) StyleNode() *layout.StyleNode {
	return layout.NewStyleNode(c.Style, core.ChildStyles(c.Children())...)
}

// Update implements core.Widget.
func (c *Container[S]) Update(state *S, node *layout.Node, ctx *core.Context) core.Update {
	return core.UpdateChildren(c.Children(), state, node, ctx)
}

// Render implements core.Widget.
func (c *Container[S]) Render(scheme theme.Scheme, node *layout.Node) []graphics.Sketch {
	return decoration(scheme, node.Bounds(), c.Radius, theme.KeyBackground)
}

// decoration fills bounds with the paint under fill and outlines it with
// the scheme's border, when those keys are present.
func decoration(scheme theme.Scheme, bounds graphics.Rect, radius float32, fill string) []graphics.Sketch {
	var out []graphics.Sketch
	if bg, ok := scheme.Paint(fill); ok && bg.Color.A() != 0 {
		out = append(out, graphics.FillRoundedRect(bounds, radius, bg))
	}
	if border, ok := scheme.Paint(theme.KeyBorder); ok && border.StrokeWidth > 0 && border.Color.A() != 0 {
		// Keep the stroke inside the bounds.
		out = append(out, graphics.StrokeRoundedRect(bounds.Inset(border.StrokeWidth/2), radius, border))
	}
	return out
}

// ColumnStyle is a full-size column that centers its children, the usual
// root of an application.
func ColumnStyle() layout.Style {
	s := layout.DefaultStyle()
	s.Size = layout.Relative(1, 1)
	s.Direction = layout.DirectionColumn
	s.AlignItems = layout.AlignCenter
	s.JustifyContent = layout.JustifyCenter
	s.Gap = 8
	return s
}

// RowStyle is an auto-sized row that centers its children vertically.
func RowStyle() layout.Style {
	s := layout.DefaultStyle()
	s.AlignItems = layout.AlignCenter
	s.Gap = 8
	return s
}
