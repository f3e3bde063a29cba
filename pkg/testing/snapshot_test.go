package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/testing/internal/testbed"
)

func TestCaptureSnapshot_NotNil(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(&testbed.LayoutBox[cs]{
		Width: 200, Height: 100,
		Color: graphics.RGB(255, 0, 0),
	})

	snap := tester.CaptureSnapshot()
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.LayoutTree == nil {
		t.Fatal("expected non-nil layout tree")
	}
	if len(snap.Sketches) != 1 || snap.Sketches[0].Op != "fillPath" {
		t.Errorf("Sketches = %+v, want one fillPath", snap.Sketches)
	}
}

func TestCaptureSnapshot_LayoutTreeStructure(t *testing.T) {
	tester := pumpCounter(t)

	root := tester.CaptureSnapshot().LayoutTree
	if root.ID != "may-widgets:Container#0" || root.Type != "container" {
		t.Errorf("root = %s (%s)", root.ID, root.Type)
	}
	if root.Size != [2]float64{DefaultTestWidth, DefaultTestHeight} {
		t.Errorf("root size = %v", root.Size)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(root.Children))
	}
	if got := root.Children[1].Children[0].ID; got != "may-widgets:Text#1" {
		t.Errorf("second label ID = %s, want may-widgets:Text#1", got)
	}
}

func TestSnapshot_Diff_Equal(t *testing.T) {
	tester := pumpCounter(t)
	a := tester.CaptureSnapshot()
	b := tester.CaptureSnapshot()

	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff, got:\n%s", diff)
	}
}

func TestSnapshot_Diff_Different(t *testing.T) {
	tester := pumpCounter(t)
	before := tester.CaptureSnapshot()

	tester.Tap(ByID[cs](testbed.IncreaseID))
	after := tester.CaptureSnapshot()

	if after.Diff(before) == "" {
		t.Error("expected a diff after the count changed")
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := pumpCounter(t)
	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "nested", "counter.snapshot.json")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatal(err)
	}
	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(&testbed.LayoutBox[cs]{Width: 50, Height: 50})
	snap := tester.CaptureSnapshot()

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, filepath.Join(t.TempDir(), "missing.json"))

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewWidgetTesterWithT[cs](t, nil)

	tester.PumpWidget(&testbed.LayoutBox[cs]{Width: 50, Height: 50, Color: graphics.RGB(255, 0, 0)})
	first := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := first.UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	tester.PumpWidget(&testbed.LayoutBox[cs]{Width: 99, Height: 99, Color: graphics.RGB(0, 0, 255)})
	second := tester.CaptureSnapshot()

	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	second.MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	tester := NewWidgetTesterWithT[cs](t, nil)
	tester.PumpWidget(&testbed.LayoutBox[cs]{Width: 60, Height: 30})
	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "update.snapshot.json")

	t.Setenv(UpdateSnapshotsEnv, "1")
	snap.MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
