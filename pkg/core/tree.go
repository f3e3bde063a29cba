package core

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// Walk visits the tree in pre-order, the same order style nodes, layout
// nodes and sketches are produced in. Returning false skips w's children.
func Walk[S any](root Widget[S], visit func(w Widget[S], depth int) bool) {
	walk(root, 0, visit)
}

func walk[S any](w Widget[S], depth int, visit func(Widget[S], int) bool) {
	if w == nil || !visit(w, depth) {
		return
	}
	for _, c := range w.Children() {
		walk(c, depth+1, visit)
	}
}

// Count returns the number of widgets in the tree.
func Count[S any](root Widget[S]) int {
	n := 0
	Walk(root, func(Widget[S], int) bool {
		n++
		return true
	})
	return n
}

// Depth returns the number of levels in the tree; a single leaf has depth 1.
func Depth[S any](root Widget[S]) int {
	deepest := 0
	Walk(root, func(_ Widget[S], d int) bool {
		deepest = max(deepest, d+1)
		return true
	})
	return deepest
}

// FindByID returns the first widget in pre-order with the given identity.
func FindByID[S any](root Widget[S], id theme.WidgetID) (Widget[S], bool) {
	var found Widget[S]
	Walk(root, func(w Widget[S], _ int) bool {
		if found != nil {
			return false
		}
		if w.ID() == id {
			found = w
			return false
		}
		return true
	})
	return found, found != nil
}

// Validate checks tree ownership: no nil children and no pointer widget
// reachable twice.
func Validate[S any](root Widget[S]) error {
	if root == nil {
		return errors.New("core.Validate", errors.KindLayout, fmt.Errorf("nil root widget"))
	}
	seen := make(map[any][]int)
	var check func(w Widget[S], path []int) error
	check = func(w Widget[S], path []int) error {
		if reflect.ValueOf(w).Kind() == reflect.Pointer {
			if first, dup := seen[w]; dup {
				return &errors.MayError{
					Op:     "core.Validate",
					Kind:   errors.KindLayout,
					Widget: string(w.ID()),
					Err:    fmt.Errorf("widget at %v is also at %v", path, first),
				}
			}
			seen[w] = slices.Clone(path)
		}
		for i, c := range w.Children() {
			if c == nil {
				return &errors.MayError{
					Op:     "core.Validate",
					Kind:   errors.KindLayout,
					Widget: string(w.ID()),
					Err:    fmt.Errorf("nil child %d at %v", i, path),
				}
			}
			if err := check(c, append(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root, nil)
}

// BuildStyleTree collects the style tree of root and verifies that every
// style node has one child per widget child.
func BuildStyleTree[S any](root Widget[S]) (*layout.StyleNode, error) {
	if root == nil {
		return nil, errors.New("core.BuildStyleTree", errors.KindLayout, fmt.Errorf("nil root widget"))
	}
	sn := root.StyleNode()
	if err := matchStyle(root, sn, nil); err != nil {
		return nil, err
	}
	return sn, nil
}

func matchStyle[S any](w Widget[S], sn *layout.StyleNode, path []int) error {
	children := w.Children()
	if sn == nil {
		return &errors.CongruenceError{Path: slices.Clone(path), Widget: string(w.ID()), Want: len(children), Got: -1}
	}
	if len(sn.Children) != len(children) {
		return &errors.CongruenceError{Path: slices.Clone(path), Widget: string(w.ID()), Want: len(children), Got: len(sn.Children)}
	}
	for i, c := range children {
		if err := matchStyle(c, sn.Children[i], append(path, i)); err != nil {
			return err
		}
	}
	return nil
}
