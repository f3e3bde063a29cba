package testing

import (
	"fmt"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/engine"
	"github.com/go-drift/may/pkg/graphics"
)

// Tap simulates a left click at the center of the first widget matched by
// finder.
func (t *WidgetTester[S]) Tap(finder Finder[S]) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Tap: finder matched no widgets: %s", finder.Description())
	}
	node := result.Node()
	if node == nil {
		return fmt.Errorf("Tap: widget has no layout node: %s", finder.Description())
	}
	return t.TapAt(node.Bounds().Center())
}

// TapAt simulates a left click at the given logical position: the cursor
// moves there, the button goes down and up, one tick per transition.
func (t *WidgetTester[S]) TapAt(pos graphics.Offset) error {
	if err := t.SendPointerDown(pos); err != nil {
		return err
	}
	return t.SendPointerUp(pos)
}

// SendPointerMove moves the cursor and pumps.
func (t *WidgetTester[S]) SendPointerMove(pos graphics.Offset) error {
	return t.send(engine.CursorMoved{Position: pos})
}

// SendPointerDown moves the cursor, presses the left button and pumps.
func (t *WidgetTester[S]) SendPointerDown(pos graphics.Offset) error {
	return t.send(
		engine.CursorMoved{Position: pos},
		engine.MouseInput{Button: core.MouseButtonLeft, State: core.Pressed},
	)
}

// SendPointerUp moves the cursor, releases the left button and pumps.
func (t *WidgetTester[S]) SendPointerUp(pos graphics.Offset) error {
	return t.send(
		engine.CursorMoved{Position: pos},
		engine.MouseInput{Button: core.MouseButtonLeft, State: core.Released},
	)
}

// SendPointerLeave reports that the cursor left the surface and pumps.
func (t *WidgetTester[S]) SendPointerLeave() error {
	return t.send(engine.CursorLeft{})
}

// PressKey sends a key press and release, pumping after each.
func (t *WidgetTester[S]) PressKey(key string) error {
	if err := t.send(engine.KeyboardInput{Key: core.KeyEvent{Key: key, Text: key, State: core.Pressed}}); err != nil {
		return err
	}
	return t.send(engine.KeyboardInput{Key: core.KeyEvent{Key: key, State: core.Released}})
}

// Scroll sends a wheel delta in logical pixels and pumps.
func (t *WidgetTester[S]) Scroll(dx, dy float32) error {
	return t.send(engine.MouseWheel{Delta: core.ScrollDelta{X: dx, Y: dy}})
}

// Resize changes the surface size and pumps.
func (t *WidgetTester[S]) Resize(size graphics.Size) error {
	t.size = size
	return t.send(engine.Resized{Size: size})
}

// RequestClose sends a close request and pumps. The tester's engine exits
// on close requests.
func (t *WidgetTester[S]) RequestClose() error {
	return t.send(engine.CloseRequested{})
}

// Send delivers raw driver events and pumps once.
func (t *WidgetTester[S]) Send(events ...engine.Event) error {
	return t.send(events...)
}

func (t *WidgetTester[S]) send(events ...engine.Event) error {
	if t.engine == nil {
		return errNoWidget
	}
	for _, ev := range events {
		t.engine.HandleEvent(ev)
	}
	return t.Pump()
}
