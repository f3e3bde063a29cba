package layout

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/graphics"
)

// Solver computes a layout tree from a style tree. Implementations must be
// pure and must return a tree congruent with root.
type Solver interface {
	Solve(root *StyleNode, available graphics.Size) (*Node, error)
}

// SolveFunc adapts a function to the Solver interface.
type SolveFunc func(root *StyleNode, available graphics.Size) (*Node, error)

// Solve implements Solver.
func (f SolveFunc) Solve(root *StyleNode, available graphics.Size) (*Node, error) {
	return f(root, available)
}

// FlexSolver is a single-pass flexbox solver. It supports row and column
// directions (and their reverses), grow and shrink factors, justification,
// cross-axis alignment, padding, margins, gaps, point and percent sizes, and
// min/max clamping. An automatic root fills the available space.
type FlexSolver struct{}

// Solve implements Solver.
func (s FlexSolver) Solve(root *StyleNode, available graphics.Size) (*Node, error) {
	if root == nil {
		return nil, errors.New("layout.Solve", errors.KindLayout, errors.ErrNoLayout)
	}
	if invalidLength(available.Width) || invalidLength(available.Height) {
		return nil, errors.New("layout.Solve", errors.KindLayout,
			fmt.Errorf("invalid available size %vx%v", available.Width, available.Height))
	}
	if err := checkChildren(root, nil); err != nil {
		return nil, err
	}
	st := root.Style
	if st.Display == DisplayNone {
		return hidden(root, graphics.Offset{}), nil
	}
	m := st.Margin
	w, ok := st.Size.Width.Resolve(available.Width)
	if !ok {
		w = available.Width - m.Horizontal()
	}
	h, ok := st.Size.Height.Resolve(available.Height)
	if !ok {
		h = available.Height - m.Vertical()
	}
	size := graphics.Size{
		Width:  clampAxis(w, st.MinSize.Width, st.MaxSize.Width, available.Width),
		Height: clampAxis(h, st.MinSize.Height, st.MaxSize.Height, available.Height),
	}
	return s.place(root, graphics.Offset{X: m.Left, Y: m.Top}, size), nil
}

// checkChildren returns a *errors.CongruenceError at the first nil child.
func checkChildren(sn *StyleNode, path []int) error {
	for i, c := range sn.Children {
		p := append(path, i)
		if c == nil {
			return &errors.CongruenceError{Path: slices.Clone(p), Got: -1}
		}
		if err := checkChildren(c, p); err != nil {
			return err
		}
	}
	return nil
}

func invalidLength(v float32) bool {
	return math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0
}

// axes maps main/cross coordinates to x/y for one direction.
type axes bool

func (a axes) main(s graphics.Size) float32 {
	if a {
		return s.Width
	}
	return s.Height
}

func (a axes) cross(s graphics.Size) float32 {
	if a {
		return s.Height
	}
	return s.Width
}

func (a axes) size(main, cross float32) graphics.Size {
	if a {
		return graphics.Size{Width: main, Height: cross}
	}
	return graphics.Size{Width: cross, Height: main}
}

func (a axes) offset(main, cross float32) graphics.Offset {
	if a {
		return graphics.Offset{X: main, Y: cross}
	}
	return graphics.Offset{X: cross, Y: main}
}

func (a axes) dims(d Dimensions) (main, cross Dimension) {
	if a {
		return d.Width, d.Height
	}
	return d.Height, d.Width
}

// margins returns leading/trailing margins on the main then cross axis.
func (a axes) margins(e Edges) (m0, m1, c0, c1 float32) {
	if a {
		return e.Left, e.Right, e.Top, e.Bottom
	}
	return e.Top, e.Bottom, e.Left, e.Right
}

type flexItem struct {
	index          int
	node           *StyleNode
	base           float32
	main           float32
	cross          float32
	m0, m1, c0, c1 float32
	align          Align
}

func (s FlexSolver) place(sn *StyleNode, origin graphics.Offset, size graphics.Size) *Node {
	n := &Node{Location: origin, Size: size}
	if len(sn.Children) == 0 {
		return n
	}
	n.Children = make([]*Node, len(sn.Children))

	st := sn.Style
	pad := st.Padding
	content := graphics.Size{
		Width:  max(0, size.Width-pad.Horizontal()),
		Height: max(0, size.Height-pad.Vertical()),
	}
	inner := graphics.Offset{X: origin.X + pad.Left, Y: origin.Y + pad.Top}
	ax := axes(st.Direction.IsRow())
	contentMain, contentCross := ax.main(content), ax.cross(content)

	items := make([]flexItem, 0, len(sn.Children))
	for i, c := range sn.Children {
		if c.Style.Display == DisplayNone {
			n.Children[i] = hidden(c, inner)
			continue
		}
		cs := c.Style
		it := flexItem{index: i, node: c}
		it.m0, it.m1, it.c0, it.c1 = ax.margins(cs.Margin)

		var intrinsic graphics.Size
		measured := false
		measure := func() graphics.Size {
			if !measured {
				intrinsic = s.measure(c, content)
				measured = true
			}
			return intrinsic
		}

		mainDim, crossDim := ax.dims(cs.Size)
		minMain, minCross := ax.dims(cs.MinSize)
		maxMain, maxCross := ax.dims(cs.MaxSize)

		base, ok := mainDim.Resolve(contentMain)
		if !ok {
			base = ax.main(measure())
		}
		it.base = clampAxis(base, minMain, maxMain, contentMain)
		it.main = it.base

		it.align = cs.AlignSelf
		if it.align == AlignAuto {
			it.align = st.AlignItems
		}
		if it.align == AlignAuto {
			it.align = AlignStretch
		}
		cross, ok := crossDim.Resolve(contentCross)
		if !ok {
			if it.align == AlignStretch {
				cross = contentCross - it.c0 - it.c1
			} else {
				cross = ax.cross(measure())
			}
		}
		it.cross = clampAxis(cross, minCross, maxCross, contentCross)
		items = append(items, it)
	}

	gaps := float32(0)
	if len(items) > 1 {
		gaps = st.Gap * float32(len(items)-1)
	}
	used := func() float32 {
		total := gaps
		for _, it := range items {
			total += it.main + it.m0 + it.m1
		}
		return total
	}

	free := contentMain - used()
	switch {
	case free > 0:
		var grow float32
		for _, it := range items {
			grow += it.node.Style.FlexGrow
		}
		if grow > 0 {
			for i := range items {
				it := &items[i]
				minMain, _ := ax.dims(it.node.Style.MinSize)
				maxMain, _ := ax.dims(it.node.Style.MaxSize)
				it.main = clampAxis(it.base+free*it.node.Style.FlexGrow/grow, minMain, maxMain, contentMain)
			}
		}
	case free < 0:
		var scaled float32
		for _, it := range items {
			scaled += it.node.Style.FlexShrink * it.base
		}
		if scaled > 0 {
			for i := range items {
				it := &items[i]
				minMain, _ := ax.dims(it.node.Style.MinSize)
				maxMain, _ := ax.dims(it.node.Style.MaxSize)
				share := it.node.Style.FlexShrink * it.base / scaled
				it.main = clampAxis(it.base+free*share, minMain, maxMain, contentMain)
			}
		}
	}

	spacing, cursor := computeSpacing(st.JustifyContent, max(0, contentMain-used()), len(items))
	for _, it := range items {
		mainPos := cursor + it.m0
		cursor = mainPos + it.main + it.m1 + st.Gap + spacing
		if st.Direction.IsReverse() {
			mainPos = contentMain - mainPos - it.main
		}
		crossPos := it.c0 + crossAxisOffset(it.align, contentCross-it.cross-it.c0-it.c1)
		at := ax.offset(mainPos, crossPos)
		at = at.Add(inner)
		n.Children[it.index] = s.place(it.node, at, ax.size(it.main, it.cross))
	}
	return n
}

// measure returns the intrinsic border-box size of sn within available.
func (s FlexSolver) measure(sn *StyleNode, available graphics.Size) graphics.Size {
	st := sn.Style
	w, wok := st.Size.Width.Resolve(available.Width)
	h, hok := st.Size.Height.Resolve(available.Height)
	if !wok || !hok {
		pad := st.Padding
		outer := available
		if wok {
			outer.Width = w
		}
		if hok {
			outer.Height = h
		}
		inner := graphics.Size{
			Width:  max(0, outer.Width-pad.Horizontal()),
			Height: max(0, outer.Height-pad.Vertical()),
		}
		var content graphics.Size
		if len(sn.Children) == 0 {
			if sn.Measure != nil {
				content = sn.Measure(inner)
			}
		} else {
			ax := axes(st.Direction.IsRow())
			var main, cross float32
			visible := 0
			for _, c := range sn.Children {
				if c.Style.Display == DisplayNone {
					continue
				}
				cs := s.measure(c, inner)
				m0, m1, c0, c1 := ax.margins(c.Style.Margin)
				main += ax.main(cs) + m0 + m1
				cross = max(cross, ax.cross(cs)+c0+c1)
				visible++
			}
			if visible > 1 {
				main += st.Gap * float32(visible-1)
			}
			content = ax.size(main, cross)
		}
		if !wok {
			w = content.Width + pad.Horizontal()
		}
		if !hok {
			h = content.Height + pad.Vertical()
		}
	}
	return graphics.Size{
		Width:  clampAxis(w, st.MinSize.Width, st.MaxSize.Width, available.Width),
		Height: clampAxis(h, st.MinSize.Height, st.MaxSize.Height, available.Height),
	}
}

// hidden lays out a DisplayNone subtree as zero-sized nodes at origin.
func hidden(sn *StyleNode, origin graphics.Offset) *Node {
	n := &Node{Location: origin}
	if len(sn.Children) > 0 {
		n.Children = make([]*Node, len(sn.Children))
		for i, c := range sn.Children {
			n.Children[i] = hidden(c, origin)
		}
	}
	return n
}

func clampAxis(v float32, lo, hi Dimension, parent float32) float32 {
	if mx, ok := hi.Resolve(parent); ok {
		v = min(v, mx)
	}
	if mn, ok := lo.Resolve(parent); ok {
		v = max(v, mn)
	}
	return max(v, 0)
}

func crossAxisOffset(align Align, free float32) float32 {
	if free <= 0 {
		return 0
	}
	switch align {
	case AlignEnd:
		return free
	case AlignCenter:
		return free * 0.5
	default:
		return 0
	}
}

func computeSpacing(justify Justify, free float32, n int) (spacing, offset float32) {
	switch justify {
	case JustifyEnd:
		offset = free
	case JustifyCenter:
		offset = free * 0.5
	case JustifySpaceBetween:
		if n > 1 {
			spacing = free / float32(n-1)
		}
	case JustifySpaceAround:
		if n > 0 {
			spacing = free / float32(n)
			offset = spacing * 0.5
		}
	case JustifySpaceEvenly:
		if n > 0 {
			spacing = free / float32(n+1)
			offset = spacing
		}
	}
	return
}
