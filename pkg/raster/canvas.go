// Package raster is a software rendering backend. A Canvas implements
// graphics.Surface over an in-memory RGBA image: paths are rasterized with
// golang.org/x/image/vector and text is drawn with the font registry's
// faces.
package raster

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
)

// curveSteps is the number of line segments a curve is flattened into when
// stroking.
const curveSteps = 16

// Canvas is a graphics.Surface backed by an *image.RGBA.
type Canvas struct {
	size   graphics.Size
	scale  float32
	fonts  *fonts.Registry
	image  *image.RGBA
	front  *image.RGBA
	ras    *vector.Rasterizer
	frames int
	err    error
}

// NewCanvas returns a canvas of the given logical size. A nil registry uses
// fonts.Shared().
func NewCanvas(size graphics.Size, reg *fonts.Registry) *Canvas {
	if reg == nil {
		reg = fonts.Shared()
	}
	c := &Canvas{size: size, scale: 1, fonts: reg, ras: &vector.Rasterizer{}}
	c.realloc()
	return c
}

func (c *Canvas) realloc() {
	w := int(math32.Ceil(c.size.Width * c.scale))
	h := int(math32.Ceil(c.size.Height * c.scale))
	c.image = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
}

// Size implements graphics.Surface.
func (c *Canvas) Size() graphics.Size { return c.size }

// Resize implements graphics.Surface.
func (c *Canvas) Resize(size graphics.Size) {
	if c.size == size {
		return
	}
	c.size = size
	c.realloc()
}

// Scale implements graphics.Surface.
func (c *Canvas) Scale() float32 { return c.scale }

// SetScale implements graphics.Surface.
func (c *Canvas) SetScale(scale float32) {
	if scale <= 0 || c.scale == scale {
		return
	}
	c.scale = scale
	c.realloc()
}

// Clear implements graphics.Surface.
func (c *Canvas) Clear(color graphics.Color) {
	draw.Draw(c.image, c.image.Bounds(), image.NewUniform(color.NRGBA()), image.Point{}, draw.Src)
	c.err = nil
}

// Draw implements graphics.Surface. Unknown sketch types are skipped.
func (c *Canvas) Draw(sketches []graphics.Sketch) {
	for _, s := range sketches {
		switch s := s.(type) {
		case graphics.PathSketch:
			c.drawPath(s)
		case graphics.TextSketch:
			c.drawText(s)
		}
	}
}

// Flush implements graphics.Surface. It publishes the drawn image as the
// front buffer and returns the first text error of the frame, if any.
func (c *Canvas) Flush() error {
	if c.front == nil || c.front.Bounds() != c.image.Bounds() {
		c.front = image.NewRGBA(c.image.Bounds())
	}
	copy(c.front.Pix, c.image.Pix)
	c.frames++
	err := c.err
	c.err = nil
	return err
}

// Image returns the last flushed frame. It is nil before the first Flush.
func (c *Canvas) Image() *image.RGBA { return c.front }

// Frames returns how many frames have been flushed.
func (c *Canvas) Frames() int { return c.frames }

// WritePNG encodes the last flushed frame as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	if c.front == nil {
		return errors.New("raster.WritePNG", errors.KindRender, errNoFrame)
	}
	if err := png.Encode(w, c.front); err != nil {
		return errors.New("raster.WritePNG", errors.KindRender, err)
	}
	return nil
}

// SavePNG writes the last flushed frame to path.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("raster.SavePNG", errors.KindRender, err)
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.New("raster.SavePNG", errors.KindRender, err)
	}
	return nil
}

func (c *Canvas) begin() {
	b := c.image.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
}

func (c *Canvas) paint(p graphics.Paint) {
	src := image.NewUniform(p.Color.NRGBA())
	c.ras.Draw(c.image, c.image.Bounds(), src, image.Point{})
}

func (c *Canvas) drawPath(s graphics.PathSketch) {
	cmds := s.Commands()
	if len(cmds) == 0 || s.Paint.Color.A() == 0 {
		return
	}
	c.begin()
	switch s.Mode {
	case graphics.PathModeStroke:
		w := s.Paint.StrokeWidth
		if w <= 0 {
			w = 1
		}
		for _, line := range flatten(cmds) {
			c.strokePolyline(line, w*c.scale/2)
		}
	default:
		c.fill(cmds)
	}
	c.paint(s.Paint)
}

func (c *Canvas) fill(cmds []graphics.PathCommand) {
	k := c.scale
	open := false
	for _, cmd := range cmds {
		a := cmd.Args
		switch cmd.Op {
		case graphics.PathOpMoveTo:
			if open {
				c.ras.ClosePath()
			}
			c.ras.MoveTo(a[0]*k, a[1]*k)
			open = true
		case graphics.PathOpLineTo:
			c.ras.LineTo(a[0]*k, a[1]*k)
		case graphics.PathOpQuadTo:
			c.ras.QuadTo(a[0]*k, a[1]*k, a[2]*k, a[3]*k)
		case graphics.PathOpCubicTo:
			c.ras.CubeTo(a[0]*k, a[1]*k, a[2]*k, a[3]*k, a[4]*k, a[5]*k)
		case graphics.PathOpClose:
			c.ras.ClosePath()
			open = false
		}
	}
	if open {
		c.ras.ClosePath()
	}
}

// strokePolyline adds one quad per segment. Every quad is wound the same
// way so overlapping coverage saturates instead of cancelling.
func (c *Canvas) strokePolyline(pts []graphics.Offset, half float32) {
	k := c.scale
	for i := 1; i < len(pts); i++ {
		x0, y0 := pts[i-1].X*k, pts[i-1].Y*k
		x1, y1 := pts[i].X*k, pts[i].Y*k
		dx, dy := x1-x0, y1-y0
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Extend each segment by half the width so corners are covered.
		ex, ey := dx/l*half, dy/l*half
		nx, ny := -ey, ex
		x0, y0 = x0-ex, y0-ey
		x1, y1 = x1+ex, y1+ey
		c.ras.MoveTo(x0+nx, y0+ny)
		c.ras.LineTo(x1+nx, y1+ny)
		c.ras.LineTo(x1-nx, y1-ny)
		c.ras.LineTo(x0-nx, y0-ny)
		c.ras.ClosePath()
	}
}

// flatten converts path commands into polylines in logical coordinates.
func flatten(cmds []graphics.PathCommand) [][]graphics.Offset {
	var (
		out   [][]graphics.Offset
		cur   []graphics.Offset
		start graphics.Offset
		pen   graphics.Offset
	)
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, cmd := range cmds {
		a := cmd.Args
		switch cmd.Op {
		case graphics.PathOpMoveTo:
			flush()
			pen = graphics.Offset{X: a[0], Y: a[1]}
			start = pen
			cur = []graphics.Offset{pen}
		case graphics.PathOpLineTo:
			pen = graphics.Offset{X: a[0], Y: a[1]}
			cur = append(cur, pen)
		case graphics.PathOpQuadTo:
			p0 := pen
			for i := 1; i <= curveSteps; i++ {
				t := float32(i) / curveSteps
				u := 1 - t
				cur = append(cur, graphics.Offset{
					X: u*u*p0.X + 2*u*t*a[0] + t*t*a[2],
					Y: u*u*p0.Y + 2*u*t*a[1] + t*t*a[3],
				})
			}
			pen = graphics.Offset{X: a[2], Y: a[3]}
		case graphics.PathOpCubicTo:
			p0 := pen
			for i := 1; i <= curveSteps; i++ {
				t := float32(i) / curveSteps
				u := 1 - t
				cur = append(cur, graphics.Offset{
					X: u*u*u*p0.X + 3*u*u*t*a[0] + 3*u*t*t*a[2] + t*t*t*a[4],
					Y: u*u*u*p0.Y + 3*u*u*t*a[1] + 3*u*t*t*a[3] + t*t*t*a[5],
				})
			}
			pen = graphics.Offset{X: a[4], Y: a[5]}
		case graphics.PathOpClose:
			cur = append(cur, start)
			pen = start
			flush()
		}
	}
	flush()
	return out
}

func (c *Canvas) drawText(s graphics.TextSketch) {
	if s.Text == "" || s.Paint.Color.A() == 0 {
		return
	}
	f := s.Font
	if f == nil {
		f = c.fonts.Default()
	}
	src := image.NewUniform(s.Paint.Color.NRGBA())
	k := c.scale
	err := f.DrawString(c.image, src, s.Position.X*k, s.Position.Y*k, float64(s.FontSize*k), s.Text)
	if err != nil && c.err == nil {
		c.err = errors.New("raster.DrawText", errors.KindFont, err)
	}
}
