package layout

import (
	"slices"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/graphics"
)

// Node is one node of the layout tree. Location is absolute, relative to
// the surface origin.
type Node struct {
	Location graphics.Offset
	Size     graphics.Size
	Children []*Node
}

// Bounds returns the node's rectangle.
func (n *Node) Bounds() graphics.Rect {
	if n == nil {
		return graphics.Rect{}
	}
	return graphics.RectFromOffsetSize(n.Location, n.Size)
}

// Contains reports whether p falls inside the node's rectangle.
func (n *Node) Contains(p graphics.Offset) bool {
	return n != nil && n.Bounds().Contains(p)
}

// ChildAt returns the i-th child of n, or nil when n is nil or has no such
// child. Widgets use it before the first layout pass, when n is nil.
func ChildAt(n *Node, i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Count returns the number of nodes in a layout tree.
func Count(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += Count(c)
	}
	return count
}

// Depth returns the number of levels in a layout tree.
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, c := range n.Children {
		deepest = max(deepest, Depth(c))
	}
	return deepest + 1
}

// Congruent reports whether node has the same shape as style.
func Congruent(style *StyleNode, node *Node) bool {
	return CheckCongruent(style, node) == nil
}

// CheckCongruent returns a *errors.CongruenceError describing the first
// place where node's shape departs from style's, in pre-order.
func CheckCongruent(style *StyleNode, node *Node) error {
	return checkCongruent(style, node, nil)
}

func checkCongruent(style *StyleNode, node *Node, path []int) error {
	if style == nil {
		return nil
	}
	if node == nil {
		return &errors.CongruenceError{Path: slices.Clone(path), Want: len(style.Children), Got: -1}
	}
	if len(style.Children) != len(node.Children) {
		return &errors.CongruenceError{Path: slices.Clone(path), Want: len(style.Children), Got: len(node.Children)}
	}
	for i, c := range style.Children {
		if err := checkCongruent(c, node.Children[i], append(path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits every node in pre-order. Returning false from visit skips the
// node's children.
func Walk(n *Node, visit func(n *Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
