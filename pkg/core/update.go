package core

import "strings"

// Update is a set of dirty flags. Flags only escalate during a tick: every
// source is OR-merged into the pending set and nothing suppresses a flag
// another source raised.
type Update uint8

const (
	// UpdateLayout recomputes the layout tree.
	UpdateLayout Update = 1 << iota
	// UpdateDraw re-renders the frame.
	UpdateDraw
	// UpdateForce implies both layout and draw regardless of other flags.
	UpdateForce
	// UpdateEval runs the widget tree's Update pass.
	UpdateEval
)

const (
	// UpdateNone is the empty set.
	UpdateNone Update = 0
	// UpdateAll is every flag; the engine starts with it.
	UpdateAll = UpdateLayout | UpdateDraw | UpdateForce | UpdateEval
)

// Has reports whether every flag in f is set.
func (u Update) Has(f Update) bool {
	return u&f == f
}

// Intersects reports whether any flag in f is set.
func (u Update) Intersects(f Update) bool {
	return u&f != 0
}

// Insert sets the flags in f.
func (u *Update) Insert(f Update) {
	*u |= f
}

// Remove clears the flags in f.
func (u *Update) Remove(f Update) {
	*u &^= f
}

// Clear empties the set.
func (u *Update) Clear() {
	*u = 0
}

// Merge returns the union of u and f.
func (u Update) Merge(f Update) Update {
	return u | f
}

// IsEmpty reports whether no flag is set.
func (u Update) IsEmpty() bool {
	return u == 0
}

// NeedsLayout reports whether the layout phase must run.
func (u Update) NeedsLayout() bool {
	return u.Intersects(UpdateLayout | UpdateForce)
}

// NeedsDraw reports whether the render phase must run.
func (u Update) NeedsDraw() bool {
	return u.Intersects(UpdateDraw | UpdateForce)
}

// NeedsEval reports whether the update phase must run.
func (u Update) NeedsEval() bool {
	return u.Has(UpdateEval)
}

var updateNames = []string{"layout", "draw", "force", "eval"}

// String returns the set flags joined by "|", or "none".
func (u Update) String() string {
	if u == 0 {
		return "none"
	}
	var parts []string
	for i, name := range updateNames {
		if u&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
