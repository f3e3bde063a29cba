// Package engine drives the per-tick pipeline: it translates driver events
// into interaction info and update flags, runs the update, layout and
// render phases those flags ask for, and forwards queued commands to the
// host driver.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/may/pkg/config"
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// Config holds engine settings.
type Config struct {
	// Size is the initial logical surface size.
	Size graphics.Size
	// Scale is the initial device pixel ratio; zero means 1.
	Scale float32
	// CloseOnRequest turns a CloseRequested event into an exit.
	CloseOnRequest bool
	// RecoverPanics turns a panic inside Tick into a returned
	// *errors.PanicError instead of crashing the caller.
	RecoverPanics bool
	// ControlFlow is the initial scheduling policy.
	ControlFlow core.ControlFlow
	// TraceSamples is the tick trace capacity; zero uses the default.
	TraceSamples int
	// Logger receives engine diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// FromConfig converts a resolved may.yaml into engine settings.
func FromConfig(r *config.Resolved) Config {
	return Config{
		Size:           graphics.Size{Width: r.Width, Height: r.Height},
		Scale:          r.Scale,
		CloseOnRequest: r.CloseOnRequest,
		RecoverPanics:  r.RecoverPanics,
		ControlFlow:    r.ControlFlow,
		TraceSamples:   r.TraceSamples,
	}
}

// Option customizes an Engine.
type Option[S any] func(*Engine[S])

// WithTheme sets the active theme.
func WithTheme[S any](th theme.Theme) Option[S] {
	return func(e *Engine[S]) { e.theme = th }
}

// WithFonts sets the font registry.
func WithFonts[S any](reg *fonts.Registry) Option[S] {
	return func(e *Engine[S]) { e.fonts = reg }
}

// WithSolver sets the layout solver.
func WithSolver[S any](s layout.Solver) Option[S] {
	return func(e *Engine[S]) { e.solver = s }
}

// WithSurface sets the rendering surface.
func WithSurface[S any](s graphics.Surface) Option[S] {
	return func(e *Engine[S]) { e.surface = s }
}

// WithDriver sets the host driver.
func WithDriver[S any](d Driver) Option[S] {
	return func(e *Engine[S]) { e.driver = d }
}

// Report summarizes one tick.
type Report struct {
	Tick uint64
	// Pending is the flag set the tick started with.
	Pending core.Update
	// Flags is the flag set after the update phase merged its results.
	Flags     core.Update
	Evaluated bool
	LaidOut   bool
	Drawn     bool
	// Passes is the number of update passes the tick ran.
	Passes int
	// Rebuilt reports whether a page rebuilt the widget tree.
	Rebuilt  bool
	Sketches int
	Commands int
}

// Engine owns the widget tree, the application state and the per-tick
// pipeline. Tick, HandleEvent and Init must be called from one goroutine;
// RequestUpdate and SetTheme may be called from any.
type Engine[S any] struct {
	cfg    Config
	root   core.Widget[S]
	page   Page[S]
	state  *S
	fonts  *fonts.Registry
	solver layout.Solver
	driver Driver
	logger *slog.Logger

	themeMu sync.RWMutex
	theme   theme.Theme

	surface    graphics.Surface
	info       core.InteractionInfo
	pending    core.Update
	external   atomic.Uint32
	lastLayout *layout.Node
	tick       uint64
	flow       core.ControlFlow
	exited     atomic.Bool
	trace      *TraceBuffer
}

// New creates an engine for root. A nil state is replaced by a zero S.
// The first tick runs every phase.
func New[S any](root core.Widget[S], state *S, cfg Config, opts ...Option[S]) *Engine[S] {
	if state == nil {
		state = new(S)
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	e := &Engine[S]{
		cfg:     cfg,
		root:    root,
		state:   state,
		fonts:   fonts.Shared(),
		solver:  layout.FlexSolver{},
		driver:  NopDriver{},
		logger:  cfg.Logger,
		theme:   theme.Celeste(theme.BrightnessLight),
		pending: core.UpdateAll,
		flow:    cfg.ControlFlow,
		trace:   NewTraceBuffer(cfg.TraceSamples),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.surface == nil {
		e.surface = graphics.NewRecordingSurface(cfg.Size)
	}
	e.surface.SetScale(cfg.Scale)
	return e
}

// State returns the application state.
func (e *Engine[S]) State() *S { return e.state }

// Root returns the root widget.
func (e *Engine[S]) Root() core.Widget[S] { return e.root }

// Fonts returns the font registry.
func (e *Engine[S]) Fonts() *fonts.Registry { return e.fonts }

// Surface returns the rendering surface.
func (e *Engine[S]) Surface() graphics.Surface { return e.surface }

// Layout returns the layout tree of the last layout pass, or nil.
func (e *Engine[S]) Layout() *layout.Node { return e.lastLayout }

// Info returns the current interaction info.
func (e *Engine[S]) Info() *core.InteractionInfo { return &e.info }

// Pending returns the flags the next tick will start with.
func (e *Engine[S]) Pending() core.Update {
	return e.pending.Merge(core.Update(e.external.Load()))
}

// ControlFlow returns the current scheduling policy.
func (e *Engine[S]) ControlFlow() core.ControlFlow { return e.flow }

// Exited reports whether an exit command was applied.
func (e *Engine[S]) Exited() bool { return e.exited.Load() }

// Trace returns the tick trace buffer.
func (e *Engine[S]) Trace() *TraceBuffer { return e.trace }

// Theme returns the active theme.
func (e *Engine[S]) Theme() theme.Theme {
	e.themeMu.RLock()
	defer e.themeMu.RUnlock()
	return e.theme
}

// SetTheme replaces the active theme and forces the next tick to lay out
// and draw.
func (e *Engine[S]) SetTheme(th theme.Theme) {
	e.themeMu.Lock()
	e.theme = th
	e.themeMu.Unlock()
	e.RequestUpdate(core.UpdateForce)
}

// RequestUpdate raises flags for the next tick. It is safe to call from any
// goroutine.
func (e *Engine[S]) RequestUpdate(u core.Update) {
	e.external.Or(uint32(u))
}

func (e *Engine[S]) newContext() *core.Context {
	return core.NewContext(&e.info, e.surface, e.fonts, e.logger)
}

// Init runs fn once with a fresh context before the first tick. Flags it
// raises are merged into the pending set and its commands are applied.
func (e *Engine[S]) Init(fn func(ctx *core.Context)) {
	ctx := e.newContext()
	fn(ctx)
	e.pending.Insert(ctx.Flags())
	e.apply(ctx.Commands())
}

// HandleEvent records a driver event for the next tick.
func (e *Engine[S]) HandleEvent(ev Event) {
	switch ev := ev.(type) {
	case Resized:
		e.surface.Resize(ev.Size)
		e.pending.Insert(core.UpdateEval | core.UpdateLayout | core.UpdateForce)
		e.logger.Debug("surface resized", "width", ev.Size.Width, "height", ev.Size.Height)
	case ScaleFactorChanged:
		e.surface.SetScale(ev.Scale)
		e.pending.Insert(core.UpdateEval | core.UpdateForce | core.UpdateLayout)
		e.logger.Debug("scale factor changed", "scale", ev.Scale)
	case KeyboardInput:
		e.info.Keys = append(e.info.Keys, ev.Key)
		e.pending.Insert(core.UpdateEval)
	case ModifiersChanged:
		e.info.Modifiers = ev.Modifiers
		e.pending.Insert(core.UpdateEval)
	case CursorMoved:
		e.info.Cursor = ev.Position
		e.info.HasCursor = true
		e.pending.Insert(core.UpdateEval)
	case CursorLeft:
		e.info.HasCursor = false
		e.pending.Insert(core.UpdateEval)
	case MouseInput:
		e.info.Buttons = append(e.info.Buttons, core.ButtonEvent{
			Button:   ev.Button,
			State:    ev.State,
			Position: e.info.Cursor,
		})
		e.pending.Insert(core.UpdateEval)
	case MouseWheel:
		e.info.Scroll.X += ev.Delta.X
		e.info.Scroll.Y += ev.Delta.Y
		e.info.Scroll.Lines = ev.Delta.Lines
		e.pending.Insert(core.UpdateEval)
	case DroppedFile:
		e.info.DroppedFiles = append(e.info.DroppedFiles, ev.Path)
		e.info.HoveredFile = ""
		e.pending.Insert(core.UpdateEval)
	case HoveredFile:
		e.info.HoveredFile = ev.Path
		e.pending.Insert(core.UpdateEval)
	case HoveredFileCancelled:
		e.info.HoveredFile = ""
		e.pending.Insert(core.UpdateEval)
	case RedrawRequested:
		e.pending.Insert(core.UpdateDraw | core.UpdateEval)
	case CloseRequested:
		if e.cfg.CloseOnRequest {
			e.apply([]core.Command{{Kind: core.CommandExit}})
		}
	default:
		e.logger.Debug("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// maxUpdatePasses bounds the update passes of one tick.
const maxUpdatePasses = 4

// Tick runs one pipeline iteration. A structural failure (a style or
// layout tree that does not match the widget tree) aborts the tick before
// anything is drawn; the layout and draw flags are kept so the next tick
// retries. A recovered panic aborts the same way.
func (e *Engine[S]) Tick() (report Report, err error) {
	var flags core.Update
	if e.cfg.RecoverPanics {
		defer func() {
			var pe *errors.PanicError
			if errors.As(err, &pe) {
				e.abort(flags, err)
			}
		}()
		defer errors.RecoverInto("engine.Tick", &err)
	}

	e.tick++
	start := time.Now()
	flags = e.pending.Merge(core.Update(e.external.Swap(0)))
	if e.page != nil && e.root == nil {
		flags.Insert(core.UpdateEval)
	}
	report = Report{Tick: e.tick, Pending: flags}
	sample := TickSample{Tick: e.tick, Timestamp: start.UnixMilli()}

	// fresh is set while the last layout matches the current tree and
	// surface.
	fresh := false

	// Update
	if flags.NeedsEval() {
		if e.page == nil && e.lastLayout != nil && flags.NeedsLayout() {
			// Update must hit-test against the new geometry.
			if err := e.relayout(&report, &sample); err != nil {
				return report, e.abort(flags, err)
			}
			fresh = true
		}
		phase, laid := time.Now(), sample.Phases.LayoutMs
		raised, err := e.update(&report, &sample, &fresh)
		flags = flags.Merge(raised)
		if err != nil {
			return report, e.abort(flags, err)
		}
		report.Evaluated = true
		sample.Phases.UpdateMs = durationToMillis(time.Since(phase)) - (sample.Phases.LayoutMs - laid)
	}
	report.Flags = flags

	// Layout
	if !fresh && (flags.NeedsLayout() || (flags.NeedsDraw() && e.lastLayout == nil)) {
		if err := e.relayout(&report, &sample); err != nil {
			return report, e.abort(flags, err)
		}
	}

	// Render
	if flags.NeedsDraw() {
		phase := time.Now()
		th := e.Theme()
		sketches, err := core.Render(e.root, e.lastLayout, th)
		if err != nil {
			return report, e.abort(flags, err)
		}
		sample.Phases.RenderMs = durationToMillis(time.Since(phase))

		phase = time.Now()
		e.surface.Clear(background(th))
		e.surface.Draw(sketches)
		if err := e.surface.Flush(); err != nil {
			return report, e.abort(flags, errors.New("engine.Flush", errors.KindRender, err))
		}
		report.Drawn = true
		report.Sketches = len(sketches)
		sample.Counts.Sketches = len(sketches)
		sample.Phases.PresentMs = durationToMillis(time.Since(phase))
	}

	e.pending.Clear()
	e.info.ConsumeOneShot()

	sample.Flags = flags.String()
	sample.Counts.Commands = report.Commands
	sample.TickMs = durationToMillis(time.Since(start))
	e.trace.Add(sample)
	return report, nil
}

// update runs the update phase and returns the flags it raised. The first
// pass sees this tick's input. While a pass raises layout or draw, another
// pass runs with the one-shot input removed, so a widget that reads state
// changed by a widget later in pre-order still sees the new value before
// the frame is drawn. With a page, every pass rebuilds and lays out the
// tree first. A rebuilt tree reads the state directly, so one more pass
// after the input pass is enough.
func (e *Engine[S]) update(report *Report, sample *TickSample, fresh *bool) (core.Update, error) {
	var raised core.Update
	info := &e.info
	quiet := e.info.Clone()
	quiet.ConsumeOneShot()

	limit := maxUpdatePasses
	if e.page != nil {
		limit = 2
	}
	for pass := 0; pass < limit; pass++ {
		if e.page != nil {
			u, err := e.rebuild(report)
			raised = raised.Merge(u)
			if err != nil {
				return raised, err
			}
			if err := e.relayout(report, sample); err != nil {
				return raised, err
			}
			*fresh = true
		}

		ctx := core.NewContext(info, e.surface, e.fonts, e.logger)
		u := e.root.Update(e.state, e.lastLayout, ctx).Merge(ctx.Flags())
		cmds := ctx.Commands()
		report.Commands += len(cmds)
		e.apply(cmds)
		report.Passes++
		raised = raised.Merge(u)
		if u.NeedsLayout() {
			*fresh = false
		}
		if !u.Intersects(core.UpdateLayout|core.UpdateDraw) || e.Exited() {
			break
		}
		info = quiet
	}
	return raised, nil
}

func (e *Engine[S]) relayout(report *Report, sample *TickSample) error {
	phase := time.Now()
	node, err := e.layout()
	if err != nil {
		return err
	}
	e.lastLayout = node
	report.LaidOut = true
	sample.Counts.LayoutNodes = layout.Count(node)
	sample.Phases.LayoutMs += durationToMillis(time.Since(phase))
	return nil
}

func background(th theme.Theme) graphics.Color {
	if th == nil {
		return graphics.ColorWhite
	}
	return th.WindowScheme().Background
}

func (e *Engine[S]) layout() (*layout.Node, error) {
	sn, err := core.BuildStyleTree(e.root)
	if err != nil {
		return nil, err
	}
	node, err := e.solver.Solve(sn, e.surface.Size())
	if err != nil {
		return nil, err
	}
	if err := layout.CheckCongruent(sn, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (e *Engine[S]) abort(flags core.Update, err error) error {
	e.pending = flags & (core.UpdateLayout | core.UpdateDraw | core.UpdateForce)
	e.info.ConsumeOneShot()
	e.logger.Error("tick aborted", "tick", e.tick, "err", err)
	return err
}

func (e *Engine[S]) apply(cmds []core.Command) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case core.CommandExit:
			if e.exited.CompareAndSwap(false, true) {
				e.logger.Debug("exit requested", "tick", e.tick)
			}
			e.driver.Exit()
		case core.CommandSetControlFlow:
			if cmd.ControlFlow != e.flow {
				e.logger.Debug("control flow changed", "from", e.flow, "to", cmd.ControlFlow)
			}
			e.flow = cmd.ControlFlow
			e.driver.SetControlFlow(cmd.ControlFlow)
		}
	}
}

// Run drives the engine from a stream of events until an exit command is
// applied, events is closed while idle, or ctx is done. Between ticks it
// honours the current control flow: Wait blocks for the next event, Poll
// ticks continuously and WaitUntil blocks until an event or the deadline.
func (e *Engine[S]) Run(ctx context.Context, events <-chan Event) error {
	for !e.Exited() {
		if e.Pending().IsEmpty() && e.flow.Mode != core.FlowPoll {
			if events == nil && e.flow.Mode == core.FlowWait {
				return nil
			}
			ev, ok, err := e.wait(ctx, events)
			if err != nil {
				return err
			}
			switch {
			case !ok && ev == nil && events != nil:
				events = nil
				continue
			case ev != nil:
				e.HandleEvent(ev)
			}
		}

	drain:
		for events != nil {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					break drain
				}
				e.HandleEvent(ev)
			default:
				break drain
			}
		}

		if _, err := e.Tick(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// wait blocks per the control flow. It returns the received event, ok=false
// when events was closed, or raises eval when a WaitUntil deadline passes.
func (e *Engine[S]) wait(ctx context.Context, events <-chan Event) (Event, bool, error) {
	var timeout <-chan time.Time
	if e.flow.Mode == core.FlowWaitUntil {
		timer := time.NewTimer(time.Until(e.flow.Deadline))
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case ev, ok := <-events:
		return ev, ok, nil
	case <-timeout:
		e.pending.Insert(core.UpdateEval)
		return nil, true, nil
	}
}

// WatchTheme reloads the theme file at path on every change and applies it
// on the next tick. It blocks until ctx is done.
func (e *Engine[S]) WatchTheme(ctx context.Context, path string) error {
	return theme.Watch(ctx, path, func(d *theme.Data) {
		e.logger.Debug("theme reloaded", "path", path, "name", d.Name())
		e.SetTheme(d)
	})
}
