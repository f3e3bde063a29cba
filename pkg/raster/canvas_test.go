package raster

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/may/pkg/graphics"
)

func flushed(t *testing.T, c *Canvas, bg graphics.Color, sketches ...graphics.Sketch) {
	t.Helper()
	c.Clear(bg)
	c.Draw(sketches)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func near(got, want uint8) bool {
	d := int(got) - int(want)
	return d >= -3 && d <= 3
}

func assertPixel(t *testing.T, c *Canvas, x, y int, want graphics.Color) {
	t.Helper()
	got := c.Image().RGBAAt(x, y)
	if !near(got.R, want.R()) || !near(got.G, want.G()) || !near(got.B, want.B()) {
		t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

func TestCanvasFillRect(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 10, Height: 10}, nil)
	flushed(t, c, graphics.ColorWhite, graphics.FillRect(graphics.RectFromLTWH(2, 2, 4, 4), graphics.PaintOf(graphics.ColorRed)))

	assertPixel(t, c, 3, 3, graphics.ColorRed)
	assertPixel(t, c, 0, 0, graphics.ColorWhite)
	assertPixel(t, c, 7, 7, graphics.ColorWhite)
}

func TestCanvasLaterSketchesCoverEarlier(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 10, Height: 10}, nil)
	flushed(t, c, graphics.ColorWhite,
		graphics.FillRect(graphics.RectFromLTWH(0, 0, 10, 10), graphics.PaintOf(graphics.ColorRed)),
		graphics.FillRect(graphics.RectFromLTWH(0, 0, 5, 10), graphics.PaintOf(graphics.ColorBlue)),
	)
	assertPixel(t, c, 2, 5, graphics.ColorBlue)
	assertPixel(t, c, 7, 5, graphics.ColorRed)
}

func TestCanvasStroke(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 12, Height: 12}, nil)
	stroke := graphics.StrokeRoundedRect(graphics.RectFromLTWH(2, 2, 8, 8), 0, graphics.PaintOf(graphics.ColorBlack).WithStrokeWidth(2))
	flushed(t, c, graphics.ColorWhite, stroke)

	assertPixel(t, c, 2, 6, graphics.ColorBlack)
	assertPixel(t, c, 6, 6, graphics.ColorWhite)
	assertPixel(t, c, 2, 2, graphics.ColorBlack)
}

func TestCanvasScale(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 10, Height: 5}, nil)
	c.SetScale(2)
	flushed(t, c, graphics.ColorWhite, graphics.FillRect(graphics.RectFromLTWH(5, 0, 5, 5), graphics.PaintOf(graphics.ColorRed)))

	if got := c.Image().Bounds().Size(); got.X != 20 || got.Y != 10 {
		t.Fatalf("image size = %v, want 20x10", got)
	}
	assertPixel(t, c, 15, 5, graphics.ColorRed)
	assertPixel(t, c, 5, 5, graphics.ColorWhite)
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 10, Height: 10}, nil)
	c.Resize(graphics.Size{Width: 30, Height: 20})
	flushed(t, c, graphics.ColorBlack)
	if got := c.Image().Bounds().Size(); got.X != 30 || got.Y != 20 {
		t.Errorf("image size = %v, want 30x20", got)
	}
}

func TestCanvasText(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 40, Height: 20}, nil)
	flushed(t, c, graphics.ColorWhite, graphics.TextSketch{
		Text:     "Hi",
		Position: graphics.Offset{X: 2, Y: 15},
		Paint:    graphics.PaintOf(graphics.ColorBlack),
		FontSize: 14,
	})

	dark := 0
	img := c.Image()
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("text left no ink on the canvas")
	}
}

func TestCanvasFrontBufferIsStable(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 4, Height: 4}, nil)
	flushed(t, c, graphics.ColorRed)
	c.Clear(graphics.ColorBlue)
	assertPixel(t, c, 1, 1, graphics.ColorRed)
	if c.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", c.Frames())
	}
}

func TestCanvasPNG(t *testing.T) {
	c := NewCanvas(graphics.Size{Width: 8, Height: 6}, nil)
	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err == nil {
		t.Error("WritePNG before Flush should fail")
	}

	flushed(t, c, graphics.ColorGreen)
	buf.Reset()
	if err := c.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c.Image().Bounds(), img.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}

	if err := c.SavePNG(filepath.Join(t.TempDir(), "frame.png")); err != nil {
		t.Errorf("SavePNG: %v", err)
	}
}

func TestFlattenClosesSubpaths(t *testing.T) {
	p := graphics.NewPath()
	p.AddRect(graphics.RectFromLTWH(0, 0, 2, 2))
	lines := flatten(p.Commands)
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	line := lines[0]
	if line[0] != line[len(line)-1] {
		t.Errorf("subpath not closed: %v", line)
	}
}
