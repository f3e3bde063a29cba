// Package widgets provides the stock widgets: Container, Button and Text.
//
// Every widget is generic over the application state S and is built with a
// constructor plus WithX chaining:
//
//	root := widgets.NewContainer[State](
//	    widgets.NewButton[State](widgets.NewText[State]("Increase")).
//	        WithOnPressed(func(s *State) core.Update {
//	            s.Count++
//	            return core.UpdateDraw
//	        }),
//	    widgets.BoundText(func(s *State) string { return strconv.Itoa(s.Count) }),
//	).WithStyle(widgets.ColumnStyle())
//
// Widgets are looked up in the theme by identities of the form
// "may-widgets:<Type>". WithID overrides the identity of a single instance.
package widgets
