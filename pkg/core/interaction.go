package core

import (
	"fmt"
	"slices"

	"github.com/go-drift/may/pkg/graphics"
)

// ElementState is whether a key or button went down or up.
type ElementState int

const (
	Pressed ElementState = iota
	Released
)

// String returns a human-readable representation of the state.
func (s ElementState) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("ElementState(%d)", int(s))
	}
}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonBack
	MouseButtonForward
	MouseButtonOther
)

// String returns a human-readable representation of the button.
func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonBack:
		return "back"
	case MouseButtonForward:
		return "forward"
	case MouseButtonOther:
		return "other"
	default:
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
}

// Modifiers is the set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Has reports whether every modifier in m is held.
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// KeyEvent is one keyboard transition.
type KeyEvent struct {
	// Key is the logical key name, e.g. "a", "Enter", "ArrowLeft".
	Key string
	// Code is the platform scan code.
	Code uint32
	// Text is the text the key produced, if any.
	Text   string
	State  ElementState
	Repeat bool
}

// ButtonEvent is one pointer button transition. Position is the cursor
// location when the transition happened.
type ButtonEvent struct {
	Button   MouseButton
	State    ElementState
	Position graphics.Offset
}

// ScrollDelta is accumulated wheel movement. Lines is true when the delta is
// in lines rather than logical pixels.
type ScrollDelta struct {
	X, Y  float32
	Lines bool
}

// InteractionInfo is the snapshot of user input a tick sees. Keys, Buttons,
// Scroll and DroppedFiles are one-shot: the engine clears them after every
// tick. Cursor, Modifiers and HoveredFile persist until they change.
type InteractionInfo struct {
	Keys         []KeyEvent
	Buttons      []ButtonEvent
	Cursor       graphics.Offset
	HasCursor    bool
	Modifiers    Modifiers
	Scroll       ScrollDelta
	DroppedFiles []string
	HoveredFile  string
}

// Clone returns a deep copy.
func (info *InteractionInfo) Clone() *InteractionInfo {
	if info == nil {
		return &InteractionInfo{}
	}
	c := *info
	c.Keys = slices.Clone(info.Keys)
	c.Buttons = slices.Clone(info.Buttons)
	c.DroppedFiles = slices.Clone(info.DroppedFiles)
	return &c
}

// ConsumeOneShot clears the per-tick input.
func (info *InteractionInfo) ConsumeOneShot() {
	info.Keys = info.Keys[:0]
	info.Buttons = info.Buttons[:0]
	info.Scroll = ScrollDelta{}
	info.DroppedFiles = info.DroppedFiles[:0]
}

// ButtonPressed returns the first press of b this tick.
func (info *InteractionInfo) ButtonPressed(b MouseButton) (ButtonEvent, bool) {
	return info.button(b, Pressed)
}

// ButtonReleased returns the first release of b this tick.
func (info *InteractionInfo) ButtonReleased(b MouseButton) (ButtonEvent, bool) {
	return info.button(b, Released)
}

func (info *InteractionInfo) button(b MouseButton, state ElementState) (ButtonEvent, bool) {
	if info == nil {
		return ButtonEvent{}, false
	}
	for _, ev := range info.Buttons {
		if ev.Button == b && ev.State == state {
			return ev, true
		}
	}
	return ButtonEvent{}, false
}

// KeyPressed reports whether key went down this tick.
func (info *InteractionInfo) KeyPressed(key string) bool {
	if info == nil {
		return false
	}
	for _, ev := range info.Keys {
		if ev.Key == key && ev.State == Pressed {
			return true
		}
	}
	return false
}

// Hovering reports whether the cursor is inside node's rectangle.
func (info *InteractionInfo) Hovering(r graphics.Rect) bool {
	return info != nil && info.HasCursor && r.Contains(info.Cursor)
}
