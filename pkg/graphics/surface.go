package graphics

import "slices"

// Surface is the drawing target a backend exposes to the pipeline. The
// engine clears it, hands it one frame of sketches and flushes it; the
// pipeline never inspects rasterized output.
type Surface interface {
	// Size returns the logical size of the surface.
	Size() Size
	// Resize changes the logical size of the surface.
	Resize(size Size)
	// Scale returns the device pixel ratio.
	Scale() float32
	// SetScale changes the device pixel ratio.
	SetScale(scale float32)
	// Clear fills the whole surface with color.
	Clear(color Color)
	// Draw paints sketches in order.
	Draw(sketches []Sketch)
	// Flush presents the frame.
	Flush() error
}

// RecordingSurface is a Surface that keeps the last flushed frame instead of
// rasterizing it.
type RecordingSurface struct {
	size       Size
	scale      float32
	clearColor Color
	pending    []Sketch
	frame      []Sketch
	frames     int
}

// NewRecordingSurface returns a recording surface of the given logical size.
func NewRecordingSurface(size Size) *RecordingSurface {
	return &RecordingSurface{size: size, scale: 1}
}

// Size implements Surface.
func (s *RecordingSurface) Size() Size { return s.size }

// Resize implements Surface.
func (s *RecordingSurface) Resize(size Size) { s.size = size }

// Scale implements Surface.
func (s *RecordingSurface) Scale() float32 { return s.scale }

// SetScale implements Surface.
func (s *RecordingSurface) SetScale(scale float32) { s.scale = scale }

// Clear implements Surface.
func (s *RecordingSurface) Clear(color Color) {
	s.clearColor = color
	s.pending = s.pending[:0]
}

// Draw implements Surface.
func (s *RecordingSurface) Draw(sketches []Sketch) {
	s.pending = append(s.pending, sketches...)
}

// Flush implements Surface.
func (s *RecordingSurface) Flush() error {
	s.frame = slices.Clone(s.pending)
	s.pending = s.pending[:0]
	s.frames++
	return nil
}

// Frame returns the sketches of the last flushed frame.
func (s *RecordingSurface) Frame() []Sketch {
	return s.frame
}

// Frames returns how many frames have been flushed.
func (s *RecordingSurface) Frames() int {
	return s.frames
}

// ClearColor returns the color of the last Clear call.
func (s *RecordingSurface) ClearColor() Color {
	return s.clearColor
}
