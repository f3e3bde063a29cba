package core

import (
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// Widget is a retained node of the UI tree over application state S.
//
// The tree is owned: a widget exclusively owns its children and none may
// appear twice. Update is the only method allowed to touch state; Render
// and StyleNode must be pure functions of the widget's fields.
type Widget[S any] interface {
	// ID returns the identity used for theme lookup. It must be stable for
	// the lifetime of the widget.
	ID() theme.WidgetID
	// WidgetType returns the category used for default-scheme fallback.
	WidgetType() theme.WidgetType
	// StyleNode returns this widget's layout constraints with one child
	// node per entry of Children, in order.
	StyleNode() *layout.StyleNode
	// Update reacts to input and state. node is the widget's layout node
	// from the last layout pass and is nil before the first one. The
	// returned flags are merged into the engine's pending set.
	Update(state *S, node *layout.Node, ctx *Context) Update
	// Render returns this widget's own sketches. Children are rendered by
	// the caller.
	Render(scheme theme.Scheme, node *layout.Node) []graphics.Sketch
	// Children returns the owned children in order.
	Children() []Widget[S]
}

// Parent stores the children of a composite widget. Embed it to get a
// Children method.
type Parent[S any] struct {
	children []Widget[S]
}

// NewParent returns a Parent owning children. It panics on a nil child.
func NewParent[S any](children ...Widget[S]) Parent[S] {
	var p Parent[S]
	for _, c := range children {
		p.Add(c)
	}
	return p
}

// Add appends a child. It panics on nil.
func (p *Parent[S]) Add(w Widget[S]) {
	if w == nil {
		panic("core: nil child widget")
	}
	p.children = append(p.children, w)
}

// Children returns the owned children.
func (p *Parent[S]) Children() []Widget[S] {
	return p.children
}

// Child returns the i-th child.
func (p *Parent[S]) Child(i int) Widget[S] {
	return p.children[i]
}

// Len returns the number of children.
func (p *Parent[S]) Len() int {
	return len(p.children)
}

// UpdateChildren runs Update on each child with its own layout node and
// returns the union of their flags.
func UpdateChildren[S any](children []Widget[S], state *S, node *layout.Node, ctx *Context) Update {
	var u Update
	for i, c := range children {
		u = u.Merge(c.Update(state, layout.ChildAt(node, i), ctx))
	}
	return u
}

// ChildStyles collects the style nodes of children in order.
func ChildStyles[S any](children []Widget[S]) []*layout.StyleNode {
	if len(children) == 0 {
		return nil
	}
	out := make([]*layout.StyleNode, len(children))
	for i, c := range children {
		out[i] = c.StyleNode()
	}
	return out
}
