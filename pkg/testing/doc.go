// Package testing provides a headless widget testing harness for may.
//
// # Quick Start
//
// Create a tester, pump a widget tree, and make assertions:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := maytest.NewWidgetTesterWithT(t, &State{})
//	    tester.PumpWidget(myTree())
//
//	    // Simulate input; every gesture pumps the ticks it needs.
//	    tester.Tap(maytest.ByText[State]("Submit"))
//
//	    // Assert on the widget tree or on the last frame.
//	    if !tester.Find(maytest.ByText[State]("Submitted")).Exists() {
//	        t.Error("expected 'Submitted' text")
//	    }
//	}
//
// The tester drives a real engine.Engine over a recording surface, so the
// update, layout and render phases run exactly as they do in an
// application; only rasterization is skipped.
//
// # Snapshot Testing
//
// Capture and compare layout and sketch snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/my_widget.snapshot.json")
//
// Update snapshots with:
//
//	MAY_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import maytest "github.com/go-drift/may/pkg/testing"
package testing
