package testing

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// Match is a widget found in the tree together with its layout node from
// the last layout pass (nil before the first one) and its child-index path
// from the root.
type Match[S any] struct {
	Widget core.Widget[S]
	Node   *layout.Node
	Path   []int
}

// Finder locates widgets in the tree.
type Finder[S any] interface {
	// Evaluate returns all matches under root (depth-first pre-order).
	Evaluate(root core.Widget[S], node *layout.Node) []Match[S]
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult[S any] struct {
	matches []Match[S]
	finder  Finder[S]
}

func (r FinderResult[S]) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult[S]) First() Match[S] {
	if len(r.matches) == 0 {
		panic(fmt.Sprintf("Finder found no widgets: %s", r.describe()))
	}
	return r.matches[0]
}

// FirstOrNil returns the first matched widget, or nil if none.
func (r FinderResult[S]) FirstOrNil() core.Widget[S] {
	if len(r.matches) == 0 {
		return nil
	}
	return r.matches[0].Widget
}

// At returns the match at index. Panics if out of range.
func (r FinderResult[S]) At(index int) Match[S] {
	if index < 0 || index >= len(r.matches) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.matches), r.describe()))
	}
	return r.matches[index]
}

// All returns all matches in traversal order.
func (r FinderResult[S]) All() []Match[S] {
	return r.matches
}

// Count returns the number of matches.
func (r FinderResult[S]) Count() int {
	return len(r.matches)
}

// Exists reports whether at least one widget matched.
func (r FinderResult[S]) Exists() bool {
	return len(r.matches) > 0
}

// Widget returns the first matched widget. Panics if no matches.
func (r FinderResult[S]) Widget() core.Widget[S] {
	return r.First().Widget
}

// Node returns the layout node of the first match. It is nil before the
// first layout. Panics if no matches.
func (r FinderResult[S]) Node() *layout.Node {
	return r.First().Node
}

// collectMatches walks the widget and layout trees in lock-step. A missing
// layout node yields nil nodes for the whole subtree.
func collectMatches[S any](root core.Widget[S], node *layout.Node, fn func(core.Widget[S]) bool) []Match[S] {
	var out []Match[S]
	var walk func(w core.Widget[S], n *layout.Node, path []int)
	walk = func(w core.Widget[S], n *layout.Node, path []int) {
		if fn(w) {
			out = append(out, Match[S]{Widget: w, Node: n, Path: slices.Clone(path)})
		}
		for i, c := range w.Children() {
			walk(c, layout.ChildAt(n, i), append(path, i))
		}
	}
	if root != nil {
		walk(root, node, nil)
	}
	return out
}

// --- Concrete finders ---

// predicateFinder matches widgets satisfying a predicate.
type predicateFinder[S any] struct {
	fn   func(core.Widget[S]) bool
	desc string
}

func (f *predicateFinder[S]) Evaluate(root core.Widget[S], node *layout.Node) []Match[S] {
	return collectMatches(root, node, f.fn)
}

func (f *predicateFinder[S]) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches widgets satisfying fn.
func ByPredicate[S any](fn func(core.Widget[S]) bool) Finder[S] {
	return &predicateFinder[S]{fn: fn, desc: "ByPredicate(...)"}
}

// ByType returns a finder that matches widgets of dynamic type T.
func ByType[S any, T core.Widget[S]]() Finder[S] {
	t := reflect.TypeFor[T]()
	return &predicateFinder[S]{
		fn:   func(w core.Widget[S]) bool { return reflect.TypeOf(w) == t },
		desc: fmt.Sprintf("ByType(%s)", t),
	}
}

// ByID returns a finder that matches widgets whose theme identity is id.
func ByID[S any](id theme.WidgetID) Finder[S] {
	return &predicateFinder[S]{
		fn:   func(w core.Widget[S]) bool { return w.ID() == id },
		desc: fmt.Sprintf("ByID(%q)", id),
	}
}

// texter is implemented by widgets that display a string, such as
// widgets.Text.
type texter interface {
	Text() string
}

// ByText returns a finder that matches text widgets with exact content.
func ByText[S any](text string) Finder[S] {
	return &predicateFinder[S]{
		fn: func(w core.Widget[S]) bool {
			t, ok := w.(texter)
			return ok && t.Text() == text
		},
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining returns a finder that matches text widgets containing
// substring.
func ByTextContaining[S any](substring string) Finder[S] {
	return &predicateFinder[S]{
		fn: func(w core.Widget[S]) bool {
			t, ok := w.(texter)
			return ok && strings.Contains(t.Text(), substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// descendantFinder finds widgets matching 'matching' that are descendants
// of widgets matching 'of'.
type descendantFinder[S any] struct {
	of       Finder[S]
	matching Finder[S]
}

func (f *descendantFinder[S]) Evaluate(root core.Widget[S], node *layout.Node) []Match[S] {
	var results []Match[S]
	seen := make(map[string]bool)
	for _, ancestor := range f.of.Evaluate(root, node) {
		// Search within each ancestor's subtree, skipping the ancestor itself.
		for i, child := range ancestor.Widget.Children() {
			base := append(slices.Clone(ancestor.Path), i)
			for _, m := range f.matching.Evaluate(child, layout.ChildAt(ancestor.Node, i)) {
				m.Path = append(slices.Clone(base), m.Path...)
				key := fmt.Sprint(m.Path)
				if !seen[key] {
					seen[key] = true
					results = append(results, m)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder[S]) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches widgets satisfying matching
// that are strict descendants of a widget satisfying of.
func Descendant[S any](of, matching Finder[S]) Finder[S] {
	return &descendantFinder[S]{of: of, matching: matching}
}
