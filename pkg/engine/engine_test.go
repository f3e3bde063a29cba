package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/may/pkg/config"
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

type appState struct {
	items   int
	count   int
	updates int
	buttons []core.ButtonEvent
}

// recorder is a composite widget that hands every update to a callback and
// draws one rectangle.
type recorder struct {
	core.Parent[appState]
	id       theme.WidgetID
	onUpdate func(s *appState, ctx *core.Context) core.Update
	nodes    []*layout.Node
}

func newRecorder(id string, children ...core.Widget[appState]) *recorder {
	return &recorder{Parent: core.NewParent(children...), id: theme.WidgetID(id)}
}

func (p *recorder) ID() theme.WidgetID           { return p.id }
func (p *recorder) WidgetType() theme.WidgetType { return theme.WidgetTypeContainer }

func (p *recorder) StyleNode() *layout.StyleNode {
	return &layout.StyleNode{Style: layout.DefaultStyle(), Children: core.ChildStyles(p.Children())}
}

func (p *recorder) Update(s *appState, node *layout.Node, ctx *core.Context) core.Update {
	p.nodes = append(p.nodes, node)
	s.updates++
	s.buttons = append(s.buttons, ctx.Info.Buttons...)
	var u core.Update
	if p.onUpdate != nil {
		u = p.onUpdate(s, ctx)
	}
	return u.Merge(core.UpdateChildren(p.Children(), s, node, ctx))
}

func (p *recorder) Render(scheme theme.Scheme, node *layout.Node) []graphics.Sketch {
	return []graphics.Sketch{graphics.FillRect(node.Bounds(), scheme.PaintOr(theme.KeyBackground, graphics.Paint{}))}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(t *testing.T, root core.Widget[appState], cfg Config, opts ...Option[appState]) (*Engine[appState], *graphics.RecordingSurface) {
	t.Helper()
	if cfg.Size == (graphics.Size{}) {
		cfg.Size = graphics.Size{Width: 200, Height: 100}
	}
	cfg.Logger = quiet
	surface := graphics.NewRecordingSurface(cfg.Size)
	opts = append([]Option[appState]{WithSurface[appState](surface)}, opts...)
	return New(root, nil, cfg, opts...), surface
}

func mustTick(t *testing.T, e *Engine[appState]) Report {
	t.Helper()
	r, err := e.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	return r
}

func TestFirstTickRunsEveryPhase(t *testing.T) {
	e, surface := newEngine(t, newRecorder("root", newRecorder("child")), Config{})
	if got := e.Pending(); got != core.UpdateAll {
		t.Fatalf("initial Pending = %v, want %v", got, core.UpdateAll)
	}

	r := mustTick(t, e)
	if !r.Evaluated || !r.LaidOut || !r.Drawn {
		t.Errorf("first tick report = %+v, want every phase", r)
	}
	if r.Sketches != 2 || len(surface.Frame()) != 2 {
		t.Errorf("Sketches = %d, frame = %d; want 2", r.Sketches, len(surface.Frame()))
	}
	if got := e.Pending(); !got.IsEmpty() {
		t.Errorf("Pending after tick = %v, want none", got)
	}
	if n := e.Layout(); n == nil || n.Size != (graphics.Size{Width: 200, Height: 100}) {
		t.Errorf("root layout = %+v", n)
	}
}

func TestFirstUpdateSeesNoLayout(t *testing.T) {
	root := newRecorder("root")
	e, _ := newEngine(t, root, Config{})
	mustTick(t, e)
	e.RequestUpdate(core.UpdateEval)
	mustTick(t, e)

	if len(root.nodes) != 2 {
		t.Fatalf("updates = %d, want 2", len(root.nodes))
	}
	if root.nodes[0] != nil {
		t.Error("first update received a layout node")
	}
	if root.nodes[1] == nil {
		t.Error("second update did not receive the last layout")
	}
}

func TestIdleTickDoesNothing(t *testing.T) {
	e, surface := newEngine(t, newRecorder("root"), Config{})
	mustTick(t, e)

	r := mustTick(t, e)
	if r.Evaluated || r.LaidOut || r.Drawn {
		t.Errorf("idle tick report = %+v, want no phase", r)
	}
	if e.State().updates != 1 || surface.Frames() != 1 {
		t.Errorf("updates = %d, frames = %d; want 1, 1", e.State().updates, surface.Frames())
	}
}

func TestResizeForcesOneTick(t *testing.T) {
	root := newRecorder("root")
	e, _ := newEngine(t, root, Config{})
	mustTick(t, e)

	size := graphics.Size{Width: 320, Height: 240}
	e.HandleEvent(Resized{Size: size})
	if got, want := e.Pending(), core.UpdateEval|core.UpdateLayout|core.UpdateForce; got != want {
		t.Fatalf("Pending = %v, want %v", got, want)
	}

	r := mustTick(t, e)
	if !r.Evaluated || !r.LaidOut || !r.Drawn {
		t.Errorf("resize tick report = %+v", r)
	}
	if got := e.Layout().Size; got != size {
		t.Errorf("root size = %v, want %v", got, size)
	}
	if got := root.nodes[len(root.nodes)-1]; got == nil || got.Size != size {
		t.Errorf("update after resize saw node %+v, want size %v", got, size)
	}
	if r := mustTick(t, e); r.LaidOut || r.Drawn {
		t.Errorf("force leaked into the next tick: %+v", r)
	}
}

func TestUpdateResultSchedulesPhases(t *testing.T) {
	root := newRecorder("root")
	e, _ := newEngine(t, root, Config{})
	mustTick(t, e)

	root.onUpdate = func(*appState, *core.Context) core.Update { return core.UpdateDraw }
	e.RequestUpdate(core.UpdateEval)
	r := mustTick(t, e)
	if !r.Evaluated || r.LaidOut || !r.Drawn {
		t.Errorf("report = %+v, want eval and draw only", r)
	}
	if got, want := r.Flags, core.UpdateEval|core.UpdateDraw; got != want {
		t.Errorf("Flags = %v, want %v", got, want)
	}
	if r.Passes != maxUpdatePasses {
		t.Errorf("Passes = %d, want the cap %d", r.Passes, maxUpdatePasses)
	}
}

// watcher raises draw when the count it shows changes.
func watcher(shown *int) *recorder {
	w := newRecorder("watcher")
	*shown = -1
	w.onUpdate = func(s *appState, _ *core.Context) core.Update {
		if s.count == *shown {
			return core.UpdateNone
		}
		*shown = s.count
		return core.UpdateDraw
	}
	return w
}

func TestLaterWidgetChangeReachesEarlierWidget(t *testing.T) {
	var shown int
	incr := newRecorder("incr")
	incr.onUpdate = func(s *appState, ctx *core.Context) core.Update {
		if _, ok := ctx.Info.ButtonPressed(core.MouseButtonLeft); ok {
			s.count++
			return core.UpdateDraw
		}
		return core.UpdateNone
	}
	e, _ := newEngine(t, newRecorder("root", watcher(&shown), incr), Config{})
	mustTick(t, e)

	e.HandleEvent(MouseInput{Button: core.MouseButtonLeft, State: core.Pressed})
	r := mustTick(t, e)
	if e.State().count != 1 {
		t.Fatalf("count = %d, want 1", e.State().count)
	}
	if shown != 1 {
		t.Errorf("earlier widget shows %d after the tick, want 1", shown)
	}
	if r.Passes != 3 {
		t.Errorf("Passes = %d, want 3", r.Passes)
	}
	if got := e.Pending(); !got.IsEmpty() {
		t.Errorf("Pending = %v, want none", got)
	}
}

func TestContextFlagsAreMerged(t *testing.T) {
	root := newRecorder("root")
	e, _ := newEngine(t, root, Config{})
	mustTick(t, e)

	root.onUpdate = func(_ *appState, ctx *core.Context) core.Update {
		ctx.Raise(core.UpdateLayout)
		return core.UpdateNone
	}
	e.RequestUpdate(core.UpdateEval)
	if r := mustTick(t, e); !r.LaidOut || r.Drawn {
		t.Errorf("report = %+v, want layout without draw", r)
	}
}

func TestCommandsReachDriver(t *testing.T) {
	root := newRecorder("root")
	root.onUpdate = func(_ *appState, ctx *core.Context) core.Update {
		ctx.SetControlFlow(core.ControlFlowPoll)
		ctx.Exit()
		return core.UpdateNone
	}
	driver := &RecordingDriver{}
	e, _ := newEngine(t, root, Config{}, WithDriver[appState](driver))

	r := mustTick(t, e)
	if r.Commands != 2 {
		t.Errorf("Commands = %d, want 2", r.Commands)
	}
	if driver.Exits() != 1 || !e.Exited() {
		t.Errorf("Exits = %d, Exited = %v", driver.Exits(), e.Exited())
	}
	if diff := cmp.Diff([]core.ControlFlow{core.ControlFlowPoll}, driver.ControlFlows()); diff != "" {
		t.Errorf("control flows mismatch (-want +got):\n%s", diff)
	}
	if e.ControlFlow() != core.ControlFlowPoll {
		t.Errorf("ControlFlow = %v, want poll", e.ControlFlow())
	}
}

func TestInitRunsBeforeFirstTick(t *testing.T) {
	driver := &RecordingDriver{}
	e, _ := newEngine(t, newRecorder("root"), Config{}, WithDriver[appState](driver))
	deadline := time.Now().Add(time.Hour)
	e.Init(func(ctx *core.Context) {
		ctx.SetControlFlow(core.ControlFlowWaitUntil(deadline))
	})
	if e.ControlFlow().Mode != core.FlowWaitUntil {
		t.Errorf("ControlFlow = %v, want wait_until", e.ControlFlow())
	}
	if len(driver.ControlFlows()) != 1 {
		t.Errorf("driver saw %d control flows, want 1", len(driver.ControlFlows()))
	}
}

func TestCloseRequested(t *testing.T) {
	tests := []struct {
		close bool
		want  bool
	}{
		{close: true, want: true},
		{close: false, want: false},
	}
	for _, tt := range tests {
		e, _ := newEngine(t, newRecorder("root"), Config{CloseOnRequest: tt.close})
		e.HandleEvent(CloseRequested{})
		if e.Exited() != tt.want {
			t.Errorf("CloseOnRequest=%v: Exited = %v, want %v", tt.close, e.Exited(), tt.want)
		}
	}
}

func TestInputIsOneShot(t *testing.T) {
	e, _ := newEngine(t, newRecorder("root"), Config{})
	mustTick(t, e)

	e.HandleEvent(CursorMoved{Position: graphics.Offset{X: 10, Y: 20}})
	e.HandleEvent(MouseInput{Button: core.MouseButtonLeft, State: core.Pressed})
	e.HandleEvent(KeyboardInput{Key: core.KeyEvent{Key: "a", State: core.Pressed}})
	if !e.Pending().NeedsEval() {
		t.Fatal("input did not raise eval")
	}
	mustTick(t, e)

	want := []core.ButtonEvent{{Button: core.MouseButtonLeft, State: core.Pressed, Position: graphics.Offset{X: 10, Y: 20}}}
	if diff := cmp.Diff(want, e.State().buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}

	info := e.Info()
	if len(info.Buttons) != 0 || len(info.Keys) != 0 {
		t.Errorf("one-shot input survived the tick: %+v", info)
	}
	if !info.HasCursor || info.Cursor != (graphics.Offset{X: 10, Y: 20}) {
		t.Errorf("cursor did not persist: %+v", info)
	}
}

func TestScaleFactorChanged(t *testing.T) {
	e, surface := newEngine(t, newRecorder("root"), Config{})
	mustTick(t, e)
	e.HandleEvent(ScaleFactorChanged{Scale: 2})
	if surface.Scale() != 2 {
		t.Errorf("Scale = %v, want 2", surface.Scale())
	}
	if got, want := e.Pending(), core.UpdateEval|core.UpdateForce|core.UpdateLayout; got != want {
		t.Errorf("Pending = %v, want %v", got, want)
	}
}

func TestPanicRecovery(t *testing.T) {
	root := newRecorder("root")
	root.onUpdate = func(*appState, *core.Context) core.Update { panic("boom") }

	e, _ := newEngine(t, root, Config{RecoverPanics: true})
	_, err := e.Tick()
	var pe *errors.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PanicError", err)
	}
	if pe.Value != "boom" {
		t.Errorf("Value = %v, want boom", pe.Value)
	}

	e, _ = newEngine(t, root, Config{})
	defer func() {
		if recover() == nil {
			t.Error("Tick without RecoverPanics should panic")
		}
	}()
	e.Tick()
}

func TestRecoveredPanicConsumesInput(t *testing.T) {
	root := newRecorder("root")
	e, _ := newEngine(t, root, Config{RecoverPanics: true})
	mustTick(t, e)

	root.onUpdate = func(_ *appState, ctx *core.Context) core.Update {
		if len(ctx.Info.Buttons) > 0 {
			panic("click")
		}
		return core.UpdateNone
	}
	e.HandleEvent(CursorMoved{Position: graphics.Offset{X: 5, Y: 5}})
	e.HandleEvent(MouseInput{Button: core.MouseButtonLeft, State: core.Pressed})
	e.HandleEvent(KeyboardInput{Key: core.KeyEvent{Key: "a", State: core.Pressed}})

	_, err := e.Tick()
	var pe *errors.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PanicError", err)
	}
	if got := e.Pending(); got.NeedsEval() {
		t.Errorf("Pending after recovered panic = %v, want no eval", got)
	}
	if info := e.Info(); len(info.Buttons) != 0 || len(info.Keys) != 0 {
		t.Errorf("one-shot input survived the panic: %+v", info)
	}

	e.RequestUpdate(core.UpdateEval)
	if _, err := e.Tick(); err != nil {
		t.Fatalf("click was delivered again: %v", err)
	}
}

func TestIncongruentLayoutAbortsTick(t *testing.T) {
	broken := layout.SolveFunc(func(*layout.StyleNode, graphics.Size) (*layout.Node, error) {
		return &layout.Node{}, nil
	})
	e, surface := newEngine(t, newRecorder("root", newRecorder("child")), Config{}, WithSolver[appState](broken))

	r, err := e.Tick()
	var ce *errors.CongruenceError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CongruenceError", err)
	}
	if r.Drawn || surface.Frames() != 0 {
		t.Error("an aborted tick must not draw")
	}
	if got, want := e.Pending(), core.UpdateLayout|core.UpdateDraw|core.UpdateForce; got != want {
		t.Errorf("Pending after abort = %v, want %v", got, want)
	}
	if e.Layout() != nil {
		t.Error("a rejected layout must not be kept")
	}
}

func TestRenderUsesThemeSchemes(t *testing.T) {
	th := theme.NewData("test", theme.BrightnessLight)
	th.SetWindowScheme(theme.WindowScheme{Background: graphics.ColorBlack})
	th.SetDefault(theme.WidgetTypeContainer, theme.Scheme{theme.KeyBackground: graphics.PaintOf(graphics.ColorBlue)})
	th.Register("root", theme.Scheme{theme.KeyBackground: graphics.PaintOf(graphics.ColorRed)})

	e, surface := newEngine(t, newRecorder("root", newRecorder("child")), Config{}, WithTheme[appState](th))
	mustTick(t, e)

	frame := surface.Frame()
	if len(frame) != 2 {
		t.Fatalf("frame has %d sketches, want 2", len(frame))
	}
	if got := frame[0].(graphics.PathSketch).Paint.Color; got != graphics.ColorRed {
		t.Errorf("root color = %v, want red", got)
	}
	if got := frame[1].(graphics.PathSketch).Paint.Color; got != graphics.ColorBlue {
		t.Errorf("child color = %v, want category default blue", got)
	}
	if surface.ClearColor() != graphics.ColorBlack {
		t.Errorf("ClearColor = %v, want black", surface.ClearColor())
	}
}

func TestSetThemeFromAnotherGoroutine(t *testing.T) {
	e, surface := newEngine(t, newRecorder("root"), Config{})
	mustTick(t, e)

	dark := theme.Celeste(theme.BrightnessDark)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.SetTheme(dark)
	}()
	wg.Wait()

	if !e.Pending().Has(core.UpdateForce) {
		t.Fatalf("Pending = %v, want force", e.Pending())
	}
	if r := mustTick(t, e); !r.LaidOut || !r.Drawn {
		t.Errorf("report = %+v, want layout and draw", r)
	}
	if surface.ClearColor() != dark.WindowScheme().Background {
		t.Errorf("ClearColor = %v, want %v", surface.ClearColor(), dark.WindowScheme().Background)
	}
}

func TestTraceRecordsTicks(t *testing.T) {
	e, _ := newEngine(t, newRecorder("root"), Config{TraceSamples: 2})
	for range 3 {
		mustTick(t, e)
	}
	tl := e.Trace().Snapshot()
	if tl.Total != 3 || len(tl.Samples) != 2 {
		t.Fatalf("Total = %d, samples = %d; want 3, 2", tl.Total, len(tl.Samples))
	}
	if tl.Samples[0].Tick != 2 || tl.Samples[1].Tick != 3 {
		t.Errorf("samples out of order: %d, %d", tl.Samples[0].Tick, tl.Samples[1].Tick)
	}
	if tl.Samples[1].Flags != "none" {
		t.Errorf("idle sample flags = %q, want none", tl.Samples[1].Flags)
	}
}

func TestTraceBufferWraps(t *testing.T) {
	b := NewTraceBuffer(0)
	if b.Capacity() != traceSamplesDefault {
		t.Fatalf("Capacity = %d, want %d", b.Capacity(), traceSamplesDefault)
	}
	b = NewTraceBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(TickSample{Tick: uint64(i)})
	}
	var got []uint64
	for _, s := range b.Snapshot().Samples {
		got = append(got, s.Tick)
	}
	if diff := cmp.Diff([]uint64{3, 4, 5}, got); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopsOnExit(t *testing.T) {
	root := newRecorder("root")
	root.onUpdate = func(_ *appState, ctx *core.Context) core.Update {
		if ctx.Info.KeyPressed("q") {
			ctx.Exit()
		}
		return core.UpdateNone
	}
	e, _ := newEngine(t, root, Config{})

	events := make(chan Event, 1)
	events <- KeyboardInput{Key: core.KeyEvent{Key: "q", State: core.Pressed}}
	if err := e.Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !e.Exited() {
		t.Error("Run returned without exiting")
	}
}

func TestRunStopsWhenEventsClose(t *testing.T) {
	e, _ := newEngine(t, newRecorder("root"), Config{})
	events := make(chan Event, 2)
	events <- Resized{Size: graphics.Size{Width: 50, Height: 50}}
	close(events)

	if err := e.Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Layout().Size; got != (graphics.Size{Width: 50, Height: 50}) {
		t.Errorf("root size = %v, want 50x50", got)
	}
}

func TestRunWaitUntilWakesUpdate(t *testing.T) {
	root := newRecorder("root")
	root.onUpdate = func(s *appState, ctx *core.Context) core.Update {
		if s.updates == 2 {
			ctx.Exit()
		}
		return core.UpdateNone
	}
	e, _ := newEngine(t, root, Config{})
	e.Init(func(ctx *core.Context) {
		ctx.SetControlFlow(core.ControlFlowWaitUntil(time.Now().Add(10 * time.Millisecond)))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.State().updates != 2 {
		t.Errorf("updates = %d, want 2", e.State().updates)
	}
}

func TestRunHonoursContext(t *testing.T) {
	e, _ := newEngine(t, newRecorder("root"), Config{ControlFlow: core.ControlFlowPoll})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx, nil); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestFromConfig(t *testing.T) {
	r, err := config.Default().Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := FromConfig(r)
	want := Config{
		Size:           graphics.Size{Width: config.DefaultWidth, Height: config.DefaultHeight},
		Scale:          r.Scale,
		CloseOnRequest: r.CloseOnRequest,
		ControlFlow:    core.ControlFlowWait,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("FromConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestPageRebuildsTreeEachEval(t *testing.T) {
	var roots []*recorder
	page := PageFunc[appState](func(_ *core.Context, s *appState) core.Widget[appState] {
		var children []core.Widget[appState]
		for range s.items {
			children = append(children, newRecorder("item"))
		}
		root := newRecorder("page", children...)
		roots = append(roots, root)
		return root
	})
	surface := graphics.NewRecordingSurface(graphics.Size{Width: 200, Height: 100})
	e := NewPage[appState](page, nil, Config{Logger: quiet}, WithSurface[appState](surface))

	r := mustTick(t, e)
	if !r.Rebuilt || !r.LaidOut || !r.Drawn {
		t.Fatalf("first tick report = %+v, want rebuild, layout and draw", r)
	}
	if n := roots[0].nodes[0]; n == nil {
		t.Error("page widgets should see a layout on their first update")
	}
	if got := len(e.Layout().Children); got != 0 {
		t.Errorf("children = %d, want 0", got)
	}

	e.State().items = 2
	e.RequestUpdate(core.UpdateEval)
	r = mustTick(t, e)
	if !r.Rebuilt || r.Passes != 1 {
		t.Errorf("report = %+v, want one rebuilt pass", r)
	}
	if got := len(e.Layout().Children); got != 2 {
		t.Errorf("children = %d, want 2", got)
	}
	if e.Root() != roots[len(roots)-1] {
		t.Error("root is not the last rendered tree")
	}
	if surface.Frames() != 2 {
		t.Errorf("frames = %d, want 2", surface.Frames())
	}

	if r := mustTick(t, e); r.Rebuilt || r.Drawn {
		t.Errorf("idle tick report = %+v, want nothing", r)
	}
}

type flowPage struct {
	inits int
}

func (p *flowPage) Init(ctx *core.Context) {
	p.inits++
	ctx.SetControlFlow(core.ControlFlowPoll)
}

func (p *flowPage) Render(*core.Context, *appState) core.Widget[appState] {
	return newRecorder("root")
}

func TestPageInitRunsOnce(t *testing.T) {
	p := &flowPage{}
	e := NewPage[appState](p, nil, Config{Logger: quiet})
	for range 2 {
		e.RequestUpdate(core.UpdateEval)
		mustTick(t, e)
	}
	if p.inits != 1 {
		t.Errorf("Init ran %d times, want 1", p.inits)
	}
	if e.ControlFlow() != core.ControlFlowPoll {
		t.Errorf("ControlFlow = %v, want poll", e.ControlFlow())
	}
}

func TestPageNilTreeAbortsTick(t *testing.T) {
	page := PageFunc[appState](func(*core.Context, *appState) core.Widget[appState] { return nil })
	e := NewPage[appState](page, nil, Config{Logger: quiet})
	_, err := e.Tick()
	if errors.KindOf(err) != errors.KindCallback {
		t.Errorf("err = %v, want a callback error", err)
	}
}
