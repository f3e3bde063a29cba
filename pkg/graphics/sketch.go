package graphics

import (
	"fmt"

	"github.com/go-drift/may/pkg/fonts"
)

// PathMode selects whether a path sketch is filled or stroked.
type PathMode int

const (
	// PathModeFill fills the path interior.
	PathModeFill PathMode = iota
	// PathModeStroke draws only the outline using Paint.StrokeWidth.
	PathModeStroke
)

// String returns a human-readable representation of the path mode.
func (m PathMode) String() string {
	switch m {
	case PathModeFill:
		return "fill"
	case PathModeStroke:
		return "stroke"
	default:
		return fmt.Sprintf("PathMode(%d)", int(m))
	}
}

// Sketch is one immutable draw primitive of a frame. A frame is an ordered
// []Sketch painted front to back (later sketches cover earlier ones).
type Sketch interface {
	// Bounds returns the area the sketch may touch.
	Bounds() Rect
	sketch()
}

// PathSketch fills or strokes a vector path.
type PathSketch struct {
	path  *Path
	Paint Paint
	Mode  PathMode
}

// NewPathSketch returns a sketch owning a copy of path.
func NewPathSketch(path *Path, paint Paint, mode PathMode) PathSketch {
	return PathSketch{path: path.Clone(), Paint: paint, Mode: mode}
}

// FillRect is shorthand for a filled rectangle sketch.
func FillRect(r Rect, paint Paint) PathSketch {
	p := NewPath()
	p.AddRect(r)
	return PathSketch{path: p, Paint: paint, Mode: PathModeFill}
}

// FillRoundedRect is shorthand for a filled rounded rectangle sketch.
func FillRoundedRect(r Rect, radius float32, paint Paint) PathSketch {
	p := NewPath()
	p.AddRoundedRect(r, radius)
	return PathSketch{path: p, Paint: paint, Mode: PathModeFill}
}

// StrokeRoundedRect is shorthand for an outlined rounded rectangle sketch.
func StrokeRoundedRect(r Rect, radius float32, paint Paint) PathSketch {
	p := NewPath()
	p.AddRoundedRect(r, radius)
	return PathSketch{path: p, Paint: paint, Mode: PathModeStroke}
}

// Path returns a copy of the sketch's path.
func (s PathSketch) Path() *Path {
	return s.path.Clone()
}

// Commands exposes the recorded commands for backends. Callers must not
// modify the returned slice.
func (s PathSketch) Commands() []PathCommand {
	if s.path == nil {
		return nil
	}
	return s.path.Commands
}

// Bounds implements Sketch.
func (s PathSketch) Bounds() Rect {
	if s.path.IsEmpty() {
		return Rect{}
	}
	b := s.path.Bounds()
	if s.Mode == PathModeStroke {
		half := s.Paint.StrokeWidth / 2
		b = b.Inset(-half)
	}
	return b
}

func (PathSketch) sketch() {}

// TextSketch draws a single run of text with its baseline at Position.
type TextSketch struct {
	Text     string
	Position Offset
	Paint    Paint
	FontSize float32
	// Font is the face to draw with; nil means the backend's default.
	Font *fonts.Font
	// Extent is the measured size of the run, used for Bounds.
	Extent Size
}

// Bounds implements Sketch.
func (s TextSketch) Bounds() Rect {
	return RectFromLTWH(s.Position.X, s.Position.Y-s.FontSize, s.Extent.Width, s.Extent.Height)
}

func (TextSketch) sketch() {}
