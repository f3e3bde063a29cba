package engine

import (
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
)

// Event is a driver-level input the engine translates into interaction
// info and update flags.
type Event interface {
	event()
}

// Resized reports a new logical surface size.
type Resized struct{ Size graphics.Size }

// ScaleFactorChanged reports a new device pixel ratio.
type ScaleFactorChanged struct{ Scale float32 }

// KeyboardInput reports a key transition.
type KeyboardInput struct{ Key core.KeyEvent }

// ModifiersChanged reports the held modifier keys.
type ModifiersChanged struct{ Modifiers core.Modifiers }

// CursorMoved reports the cursor position in logical pixels.
type CursorMoved struct{ Position graphics.Offset }

// CursorLeft reports that the cursor left the surface.
type CursorLeft struct{}

// MouseInput reports a pointer button transition at the current cursor.
type MouseInput struct {
	Button core.MouseButton
	State  core.ElementState
}

// MouseWheel reports wheel movement.
type MouseWheel struct{ Delta core.ScrollDelta }

// DroppedFile reports a file dropped on the surface.
type DroppedFile struct{ Path string }

// HoveredFile reports a file dragged over the surface.
type HoveredFile struct{ Path string }

// HoveredFileCancelled reports that a dragged file left the surface.
type HoveredFileCancelled struct{}

// RedrawRequested asks for the frame to be drawn again.
type RedrawRequested struct{}

// CloseRequested reports that the user asked to close the window.
type CloseRequested struct{}

func (Resized) event()              {}
func (ScaleFactorChanged) event()   {}
func (KeyboardInput) event()        {}
func (ModifiersChanged) event()     {}
func (CursorMoved) event()          {}
func (CursorLeft) event()           {}
func (MouseInput) event()           {}
func (MouseWheel) event()           {}
func (DroppedFile) event()          {}
func (HoveredFile) event()          {}
func (HoveredFileCancelled) event() {}
func (RedrawRequested) event()      {}
func (CloseRequested) event()       {}
