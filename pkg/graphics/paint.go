package graphics

// Paint describes how to draw a sketch.
type Paint struct {
	Color       Color
	StrokeWidth float32 // Width of stroke in pixels; used with PathModeStroke
	AntiAlias   bool
}

// PaintOf returns an antialiased paint of the given color.
func PaintOf(c Color) Paint {
	return Paint{Color: c, StrokeWidth: 1, AntiAlias: true}
}

// WithColor returns a copy of p with the color replaced.
func (p Paint) WithColor(c Color) Paint {
	p.Color = c
	return p
}

// WithStrokeWidth returns a copy of p with the stroke width replaced.
func (p Paint) WithStrokeWidth(w float32) Paint {
	p.StrokeWidth = w
	return p
}
