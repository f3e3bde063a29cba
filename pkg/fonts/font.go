// Package fonts provides the process-wide font registry.
//
// A [Registry] maps names to parsed fonts and always carries a default
// entry (Go Regular). It is safe for concurrent use: fonts may be inserted
// from asset-loading goroutines while a tick is reading them.
package fonts

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultName is the registry name of the built-in font.
const DefaultName = "default"

// Font is a parsed font plus a cache of sized faces.
//
// Faces produced by opentype are not safe for concurrent use, so every
// operation that touches one holds mu.
type Font struct {
	name string
	data []byte
	sfnt *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// Parse parses TrueType or OpenType data into a Font.
func Parse(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	return &Font{name: name, data: data, sfnt: f}, nil
}

// Name returns the name the font was parsed under.
func (f *Font) Name() string {
	return f.name
}

// Data returns the raw font bytes.
func (f *Font) Data() []byte {
	return f.data
}

// NumGlyphs reports the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.sfnt.NumGlyphs()
}

// faceLocked returns the cached face for size. Caller holds f.mu.
func (f *Font) faceLocked(size float64) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.sfnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("face %q size %v: %w", f.name, size, err)
	}
	if f.faces == nil {
		f.faces = make(map[float64]font.Face)
	}
	f.faces[size] = face
	return face, nil
}

// Metrics holds the measured extent of a run of text.
type Metrics struct {
	Width   float32
	Height  float32
	Ascent  float32
	Descent float32
}

// Measure returns the advance width and line metrics of text at size.
func (f *Font) Measure(size float64, text string) (Metrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	face, err := f.faceLocked(size)
	if err != nil {
		return Metrics{}, err
	}
	m := face.Metrics()
	return Metrics{
		Width:   fixedToFloat(font.MeasureString(face, text)),
		Height:  fixedToFloat(m.Height),
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
	}, nil
}

// DrawString draws text onto dst with its baseline starting at (x, y).
func (f *Font) DrawString(dst draw.Image, src image.Image, x, y float32, size float64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	face, err := f.faceLocked(size)
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(text)
	return nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
