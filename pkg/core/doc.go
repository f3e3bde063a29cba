// Package core defines the widget contract and the per-tick pipeline
// primitives of may.
//
// # Widgets
//
// A [Widget] is a retained, owned node of the UI tree. The tree is built
// once and lives for the whole process; widgets keep their own caches and
// are mutated in place by their Update method. The application state is a
// single value of type S owned by the engine and lent to Update only.
//
//	type counter struct{ count int }
//
//	root := widgets.NewContainer[counter](
//	    widgets.NewButton[counter](widgets.NewText[counter]("Increase")).
//	        OnPressed(func(s *counter) core.Update {
//	            s.count++
//	            return core.UpdateDraw
//	        }),
//	    widgets.BindText(func(s *counter) string { return strconv.Itoa(s.count) }),
//	)
//
// # Ticks
//
// Each tick the engine consults its pending [Update] flags. With eval set,
// the root's Update runs and may raise more flags. With layout or force
// set, [BuildStyleTree] collects the style tree and a layout solver turns it
// into a congruent layout tree. With draw or force set, [Render] walks the
// widget and layout trees in lock-step and returns the frame as an ordered
// list of sketches. Flags are then cleared.
//
// # Context
//
// A [Context] is created for a single phase and never retained. It exposes
// a snapshot of user input, the font registry and the surface, and queues
// commands such as [Context.Exit] that the engine drains after the phase.
package core
