// Package layout holds the style tree a widget tree describes and the
// layout tree a [Solver] computes from it.
//
// The two trees are congruent by construction: a solver returns exactly one
// [Node] for every [StyleNode], in the same order, so a widget, its style
// node and its layout node can be walked in lock-step.
package layout

import (
	"fmt"

	"github.com/go-drift/may/pkg/graphics"
)

// Unit selects how a Dimension's value is interpreted.
type Unit int

const (
	// UnitAuto lets the solver pick a size from content or stretch.
	UnitAuto Unit = iota
	// UnitPoints is an absolute size in logical pixels.
	UnitPoints
	// UnitPercent is a fraction (1 = 100%) of the parent's content box.
	UnitPercent
)

// String returns a human-readable representation of the unit.
func (u Unit) String() string {
	switch u {
	case UnitAuto:
		return "auto"
	case UnitPoints:
		return "points"
	case UnitPercent:
		return "percent"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Dimension is a length along one axis.
type Dimension struct {
	Unit  Unit
	Value float32
}

// Auto returns an automatic dimension.
func Auto() Dimension { return Dimension{} }

// Points returns an absolute dimension.
func Points(v float32) Dimension { return Dimension{Unit: UnitPoints, Value: v} }

// Percent returns a dimension relative to the parent; 1 means 100%.
func Percent(v float32) Dimension { return Dimension{Unit: UnitPercent, Value: v} }

// IsAuto reports whether the dimension is automatic.
func (d Dimension) IsAuto() bool { return d.Unit == UnitAuto }

// Resolve converts d to points against a parent length. ok is false for
// automatic dimensions.
func (d Dimension) Resolve(parent float32) (v float32, ok bool) {
	switch d.Unit {
	case UnitPoints:
		return d.Value, true
	case UnitPercent:
		return d.Value * parent, true
	default:
		return 0, false
	}
}

func (d Dimension) String() string {
	switch d.Unit {
	case UnitPoints:
		return fmt.Sprintf("%gpt", d.Value)
	case UnitPercent:
		return fmt.Sprintf("%g%%", d.Value*100)
	default:
		return "auto"
	}
}

// Dimensions pairs a width and a height.
type Dimensions struct {
	Width  Dimension
	Height Dimension
}

// Fixed returns point dimensions.
func Fixed(w, h float32) Dimensions {
	return Dimensions{Width: Points(w), Height: Points(h)}
}

// Relative returns percent dimensions.
func Relative(w, h float32) Dimensions {
	return Dimensions{Width: Percent(w), Height: Percent(h)}
}

// Edges holds per-side insets in points.
type Edges struct {
	Top, Right, Bottom, Left float32
}

// All returns equal insets on every side.
func All(v float32) Edges { return Edges{v, v, v, v} }

// Symmetric returns insets with equal horizontal and vertical values.
func Symmetric(horizontal, vertical float32) Edges {
	return Edges{Top: vertical, Right: horizontal, Bottom: vertical, Left: horizontal}
}

// Horizontal returns Left+Right.
func (e Edges) Horizontal() float32 { return e.Left + e.Right }

// Vertical returns Top+Bottom.
func (e Edges) Vertical() float32 { return e.Top + e.Bottom }

// Direction is the main axis of a flex container.
type Direction int

const (
	DirectionRow Direction = iota
	DirectionColumn
	DirectionRowReverse
	DirectionColumnReverse
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionRow:
		return "row"
	case DirectionColumn:
		return "column"
	case DirectionRowReverse:
		return "row_reverse"
	case DirectionColumnReverse:
		return "column_reverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// IsRow reports whether the main axis is horizontal.
func (d Direction) IsRow() bool { return d == DirectionRow || d == DirectionRowReverse }

// IsReverse reports whether children are placed from the end.
func (d Direction) IsReverse() bool {
	return d == DirectionRowReverse || d == DirectionColumnReverse
}

// Align positions children along the cross axis. On AlignSelf, AlignAuto
// defers to the parent's AlignItems; on AlignItems it means stretch.
type Align int

const (
	AlignAuto Align = iota
	AlignStart
	AlignEnd
	AlignCenter
	AlignStretch
)

// String returns a human-readable representation of the alignment.
func (a Align) String() string {
	switch a {
	case AlignAuto:
		return "auto"
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	case AlignCenter:
		return "center"
	case AlignStretch:
		return "stretch"
	default:
		return fmt.Sprintf("Align(%d)", int(a))
	}
}

// Justify distributes free space along the main axis.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyEnd
	JustifyCenter
	// JustifySpaceBetween puts no space before the first or after the last child.
	JustifySpaceBetween
	// JustifySpaceAround puts half-sized spaces at both ends.
	JustifySpaceAround
	// JustifySpaceEvenly puts equal space everywhere, ends included.
	JustifySpaceEvenly
)

// String returns a human-readable representation of the justification.
func (j Justify) String() string {
	switch j {
	case JustifyStart:
		return "start"
	case JustifyEnd:
		return "end"
	case JustifyCenter:
		return "center"
	case JustifySpaceBetween:
		return "space_between"
	case JustifySpaceAround:
		return "space_around"
	case JustifySpaceEvenly:
		return "space_evenly"
	default:
		return fmt.Sprintf("Justify(%d)", int(j))
	}
}

// Display controls whether a node takes part in layout. A hidden node still
// gets a zero-sized layout node so the trees stay congruent.
type Display int

const (
	DisplayFlex Display = iota
	DisplayNone
)

// Style is one node's layout constraints.
type Style struct {
	Size    Dimensions
	MinSize Dimensions
	MaxSize Dimensions

	Direction      Direction
	AlignItems     Align
	AlignSelf      Align
	JustifyContent Justify

	Padding Edges
	Margin  Edges
	// Gap is the main-axis space between adjacent children.
	Gap float32

	// FlexGrow is the share of positive free space this node takes.
	FlexGrow float32
	// FlexShrink is the share of negative free space this node gives up.
	// Zero disables shrinking.
	FlexShrink float32

	Display Display
}

// DefaultStyle returns the style widgets start from: auto sizes, row
// direction and a shrink factor of one.
func DefaultStyle() Style {
	return Style{FlexShrink: 1}
}

// MeasureFunc reports the intrinsic size of a leaf given the space its
// parent offers. It must be pure.
type MeasureFunc func(available graphics.Size) graphics.Size

// StyleNode is one node of the style tree: a widget's own constraints plus
// its children's style nodes in widget order.
type StyleNode struct {
	Style    Style
	Children []*StyleNode
	// Measure sizes leaves whose size is automatic, such as text.
	Measure MeasureFunc
}

// NewStyleNode returns a style node with the given children.
func NewStyleNode(style Style, children ...*StyleNode) *StyleNode {
	return &StyleNode{Style: style, Children: children}
}

// CountStyle returns the number of nodes in a style tree.
func CountStyle(n *StyleNode) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += CountStyle(c)
	}
	return count
}
