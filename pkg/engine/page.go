package engine

import (
	"fmt"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/errors"
)

// Page declares the widget tree from application state. An engine created
// with NewPage calls Render at the start of every evaluating tick, lays the
// new tree out and then updates it, so values widgets capture when they are
// constructed always reflect the current state.
type Page[S any] interface {
	// Init runs once, before the first tick.
	Init(ctx *core.Context)
	// Render builds the widget tree for state.
	Render(ctx *core.Context, state *S) core.Widget[S]
}

// PageFunc adapts a render function to Page. Its Init does nothing.
type PageFunc[S any] func(ctx *core.Context, state *S) core.Widget[S]

// Init implements Page.
func (PageFunc[S]) Init(*core.Context) {}

// Render implements Page.
func (f PageFunc[S]) Render(ctx *core.Context, state *S) core.Widget[S] {
	return f(ctx, state)
}

// NewPage creates an engine whose tree is rebuilt by page. page.Init runs
// before NewPage returns; the root is built by the first tick.
func NewPage[S any](page Page[S], state *S, cfg Config, opts ...Option[S]) *Engine[S] {
	e := New[S](nil, state, cfg, opts...)
	e.page = page
	e.Init(page.Init)
	return e
}

// rebuild replaces the root with a fresh tree from the page. A rebuilt tree
// is always laid out and drawn.
func (e *Engine[S]) rebuild(report *Report) (core.Update, error) {
	ctx := e.newContext()
	root := e.page.Render(ctx, e.state)
	cmds := ctx.Commands()
	report.Commands += len(cmds)
	e.apply(cmds)
	if root == nil {
		return core.UpdateNone, errors.New("engine.rebuild", errors.KindCallback, fmt.Errorf("page rendered a nil widget tree"))
	}
	e.root = root
	report.Rebuilt = true
	return ctx.Flags() | core.UpdateLayout | core.UpdateDraw, nil
}
