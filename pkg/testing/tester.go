package testing

import (
	"io"
	"log/slog"
	"testing"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/engine"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

const (
	// DefaultTestWidth is the default logical width for the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test surface.
	DefaultTestHeight = 600
	// DefaultScale is the default device pixel ratio.
	DefaultScale = 1.0
)

// WidgetTester provides isolated widget testing without real rendering.
// It drives a real engine over a recording surface and a recording driver.
type WidgetTester[S any] struct {
	t       testing.TB
	state   *S
	engine  *engine.Engine[S]
	surface *graphics.RecordingSurface
	driver  *engine.RecordingDriver
	size    graphics.Size
	scale   float32
	theme   theme.Theme
	fonts   *fonts.Registry
	solver  layout.Solver
	logger  *slog.Logger
	report  engine.Report

	dispatches []func(state *S)
}

// NewWidgetTester creates a tester for state with the default test
// environment. A nil state is replaced by a zero S.
func NewWidgetTester[S any](state *S) *WidgetTester[S] {
	if state == nil {
		state = new(S)
	}
	return &WidgetTester[S]{
		state:  state,
		size:   graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
		scale:  DefaultScale,
		theme:  theme.Celeste(theme.BrightnessLight),
		fonts:  fonts.Shared(),
		solver: layout.FlexSolver{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewWidgetTesterWithT creates a tester that fails t when a pump fails.
// This is the recommended constructor for tests.
func NewWidgetTesterWithT[S any](t testing.TB, state *S) *WidgetTester[S] {
	tester := NewWidgetTester(state)
	tester.t = t
	return tester
}

// SetSize sets the logical surface size. Must be called before PumpWidget.
func (t *WidgetTester[S]) SetSize(size graphics.Size) {
	t.size = size
}

// SetScale sets the device pixel ratio. Must be called before PumpWidget.
func (t *WidgetTester[S]) SetScale(scale float32) {
	t.scale = scale
}

// SetTheme replaces the theme. After PumpWidget it takes effect on the next
// pump.
func (t *WidgetTester[S]) SetTheme(th theme.Theme) {
	t.theme = th
	if t.engine != nil {
		t.engine.SetTheme(th)
	}
}

// SetFonts replaces the font registry. Must be called before PumpWidget.
func (t *WidgetTester[S]) SetFonts(reg *fonts.Registry) {
	t.fonts = reg
}

// SetSolver replaces the layout solver. Must be called before PumpWidget.
func (t *WidgetTester[S]) SetSolver(s layout.Solver) {
	t.solver = s
}

// SetLogger routes engine diagnostics to logger. Must be called before
// PumpWidget.
func (t *WidgetTester[S]) SetLogger(logger *slog.Logger) {
	t.logger = logger
}

// PumpWidget mounts (or remounts) root over the tester's state and runs
// the first tick, which evaluates, lays out and draws everything.
func (t *WidgetTester[S]) PumpWidget(root core.Widget[S]) error {
	cfg, opts := t.mount()
	t.engine = engine.New(root, t.state, cfg, opts...)
	return t.Pump()
}

// PumpPage mounts page over the tester's state and runs the first tick.
// The page renders a new tree on every tick that evaluates.
func (t *WidgetTester[S]) PumpPage(page engine.Page[S]) error {
	cfg, opts := t.mount()
	t.engine = engine.NewPage(page, t.state, cfg, opts...)
	return t.Pump()
}

func (t *WidgetTester[S]) mount() (engine.Config, []engine.Option[S]) {
	t.surface = graphics.NewRecordingSurface(t.size)
	t.driver = &engine.RecordingDriver{}
	cfg := engine.Config{
		Size:           t.size,
		Scale:          t.scale,
		CloseOnRequest: true,
		ControlFlow:    core.ControlFlowWait,
		Logger:         t.logger,
	}
	return cfg, []engine.Option[S]{
		engine.WithSurface[S](t.surface),
		engine.WithDriver[S](t.driver),
		engine.WithTheme[S](t.theme),
		engine.WithFonts[S](t.fonts),
		engine.WithSolver[S](t.solver),
	}
}

// Pump runs a single tick with whatever input and flags are pending.
// Queued dispatches run first and raise eval.
func (t *WidgetTester[S]) Pump() error {
	if t.engine == nil {
		return errNoWidget
	}
	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn(t.state)
	}
	if len(dispatches) > 0 {
		t.engine.RequestUpdate(core.UpdateEval)
	}
	report, err := t.engine.Tick()
	t.report = report
	if err != nil && t.t != nil {
		t.t.Helper()
		t.t.Fatalf("tick %d failed: %v", report.Tick, err)
	}
	return err
}

// PumpAndSettle pumps until no flags are pending, at most maxTicks times.
// Returns ErrSettleTimeout if the tree keeps raising flags.
func (t *WidgetTester[S]) PumpAndSettle(maxTicks int) error {
	for range maxTicks {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

func (t *WidgetTester[S]) needsWork() bool {
	return !t.engine.Pending().IsEmpty() || len(t.dispatches) > 0
}

// Dispatch queues fn to mutate the state before the next pump, the way an
// application goroutine hands work to the tick loop.
func (t *WidgetTester[S]) Dispatch(fn func(state *S)) {
	t.dispatches = append(t.dispatches, fn)
}

// Engine returns the engine of the mounted tree, or nil.
func (t *WidgetTester[S]) Engine() *engine.Engine[S] {
	return t.engine
}

// State returns the application state.
func (t *WidgetTester[S]) State() *S {
	return t.state
}

// Root returns the mounted root widget, or nil.
func (t *WidgetTester[S]) Root() core.Widget[S] {
	if t.engine == nil {
		return nil
	}
	return t.engine.Root()
}

// Layout returns the layout tree of the last layout pass, or nil.
func (t *WidgetTester[S]) Layout() *layout.Node {
	if t.engine == nil {
		return nil
	}
	return t.engine.Layout()
}

// LastReport returns the report of the last pump.
func (t *WidgetTester[S]) LastReport() engine.Report {
	return t.report
}

// Surface returns the recording surface, or nil before PumpWidget.
func (t *WidgetTester[S]) Surface() *graphics.RecordingSurface {
	return t.surface
}

// Driver returns the recording driver that receives drained commands.
func (t *WidgetTester[S]) Driver() *engine.RecordingDriver {
	return t.driver
}

// Sketches returns the last drawn frame.
func (t *WidgetTester[S]) Sketches() []graphics.Sketch {
	if t.surface == nil {
		return nil
	}
	return t.surface.Frame()
}

// Texts returns the text runs of the last drawn frame in draw order.
func (t *WidgetTester[S]) Texts() []string {
	var out []string
	for _, s := range t.Sketches() {
		if ts, ok := s.(graphics.TextSketch); ok {
			out = append(out, ts.Text)
		}
	}
	return out
}

// Find evaluates a finder against the current widget tree.
func (t *WidgetTester[S]) Find(finder Finder[S]) FinderResult[S] {
	if t.engine == nil {
		return FinderResult[S]{finder: finder}
	}
	return FinderResult[S]{
		matches: finder.Evaluate(t.engine.Root(), t.engine.Layout()),
		finder:  finder,
	}
}
