package testing

import (
	"testing"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/testing/internal/testbed"
	"github.com/go-drift/may/pkg/widgets"
)

type cs = testbed.CounterState

func TestNewWidgetTester_Defaults(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)

	if tester.size.Width != DefaultTestWidth || tester.size.Height != DefaultTestHeight {
		t.Errorf("expected default size %dx%d, got %vx%v", DefaultTestWidth, DefaultTestHeight, tester.size.Width, tester.size.Height)
	}
	if tester.scale != DefaultScale {
		t.Errorf("expected default scale %v, got %v", DefaultScale, tester.scale)
	}
	if tester.State() == nil {
		t.Fatal("expected a zero state")
	}
}

func TestPump_BeforePumpWidget(t *testing.T) {
	tester := NewWidgetTester[cs](nil)
	if err := tester.Pump(); err != errNoWidget {
		t.Errorf("Pump() = %v, want errNoWidget", err)
	}
	if tester.Find(ByText[cs]("x")).Exists() {
		t.Error("Find on an empty tester should match nothing")
	}
}

func TestPumpWidget_MountsTree(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)

	if err := tester.PumpWidget(widgets.NewText[cs]("hello")); err != nil {
		t.Fatal(err)
	}
	if tester.Root() == nil || tester.Layout() == nil {
		t.Fatal("expected root widget and layout after PumpWidget")
	}
	r := tester.LastReport()
	if !r.Evaluated || !r.LaidOut || !r.Drawn {
		t.Errorf("first pump report = %+v, want every phase", r)
	}
	if got := tester.Texts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("Texts() = %v, want [hello]", got)
	}
}

func TestPumpWidget_Remount(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)

	tester.PumpWidget(widgets.NewText[cs]("first"))
	first := tester.Engine()

	tester.PumpWidget(widgets.NewText[cs]("second"))
	second := tester.Engine()

	if first == second {
		t.Error("expected a new engine after remount")
	}
	if !tester.Find(ByText[cs]("second")).Exists() {
		t.Error("remounted tree not found")
	}
}

func TestSetSize(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.SetSize(graphics.Size{Width: 375, Height: 667})

	tester.PumpWidget(&testbed.LayoutBox[cs]{Width: 375, Height: 667})

	size := tester.Layout().Size
	if size.Width != 375 || size.Height != 667 {
		t.Errorf("expected size 375x667, got %vx%v", size.Width, size.Height)
	}
}

func TestPumpAndSettle_IdleWidget(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(widgets.NewText[cs]("static"))

	if err := tester.PumpAndSettle(10); err != nil {
		t.Errorf("expected settle for static widget, got: %v", err)
	}
}

// restless raises eval on every update.
type restless struct{ *testbed.LayoutBox[cs] }

func (restless) Update(*cs, *layout.Node, *core.Context) core.Update { return core.UpdateEval }

func TestPumpAndSettle_Timeout(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(restless{&testbed.LayoutBox[cs]{Width: 1, Height: 1}})

	if err := tester.PumpAndSettle(3); err != ErrSettleTimeout {
		t.Errorf("PumpAndSettle = %v, want ErrSettleTimeout", err)
	}
}

func TestDispatch(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(testbed.Counter())

	called := false
	tester.Dispatch(func(s *cs) {
		called = true
		s.Count = 41
	})

	if called {
		t.Error("dispatch should not run until Pump")
	}

	tester.Pump()

	if !called {
		t.Error("dispatch should have run after Pump")
	}
	if !tester.Find(ByText[cs]("41")).Exists() {
		t.Error("bound text should reflect the dispatched state")
	}
}
