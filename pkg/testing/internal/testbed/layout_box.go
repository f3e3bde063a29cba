package testbed

import (
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// LayoutBoxID is the theme identity of LayoutBox.
const LayoutBoxID theme.WidgetID = "testbed:LayoutBox"

// LayoutBox is a fixed-size colored leaf for layout testing. A zero Color
// draws nothing.
type LayoutBox[S any] struct {
	Width  float32
	Height float32
	Color  graphics.Color
}

func (b *LayoutBox[S]) ID() theme.WidgetID           { return LayoutBoxID }
func (b *LayoutBox[S]) WidgetType() theme.WidgetType { return theme.WidgetTypeContent }
func (b *LayoutBox[S]) Children() []core.Widget[S]   { return nil }

func (b *LayoutBox[S]) StyleNode() *layout.StyleNode {
	s := layout.DefaultStyle()
	s.Size = layout.Fixed(b.Width, b.Height)
	return &layout.StyleNode{Style: s}
}

func (b *LayoutBox[S]) Update(*S, *layout.Node, *core.Context) core.Update {
	return core.UpdateNone
}

func (b *LayoutBox[S]) Render(_ theme.Scheme, node *layout.Node) []graphics.Sketch {
	if b.Color == 0 {
		return nil
	}
	return []graphics.Sketch{graphics.FillRect(node.Bounds(), graphics.Paint{Color: b.Color})}
}
