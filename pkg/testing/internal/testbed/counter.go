// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"strconv"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/theme"
	"github.com/go-drift/may/pkg/widgets"
)

// Identities of the counter's buttons.
const (
	IncreaseID theme.WidgetID = "testbed:Increase"
	DecreaseID theme.WidgetID = "testbed:Decrease"
)

// CounterState is the state of the counter tree.
type CounterState struct {
	Count int
	// Taps records the count after every press.
	Taps []int
}

// Counter returns a column with an increase button, a decrease button and
// a text bound to the count.
func Counter() core.Widget[CounterState] {
	step := func(delta int) func(*CounterState) core.Update {
		return func(s *CounterState) core.Update {
			s.Count += delta
			s.Taps = append(s.Taps, s.Count)
			return core.UpdateDraw
		}
	}
	return widgets.NewContainer[CounterState](
		widgets.NewButton[CounterState](widgets.NewText[CounterState]("Increase")).
			WithID(IncreaseID).
			WithOnPressed(step(1)),
		widgets.NewButton[CounterState](widgets.NewText[CounterState]("Decrease")).
			WithID(DecreaseID).
			WithOnPressed(step(-1)),
		widgets.BoundText(func(s *CounterState) string { return strconv.Itoa(s.Count) }),
	).WithStyle(widgets.ColumnStyle())
}
