package theme

import (
	"strings"

	"github.com/go-drift/may/pkg/graphics"
)

// Celeste palette.
var (
	celestePrimary   = graphics.RGB(95, 90, 120)
	celesteLightBase = graphics.RGB(0xF7, 0xF6, 0xFB)
	celesteDarkBase  = graphics.RGB(0x1B, 0x1A, 0x22)
)

// Celeste returns the built-in theme in the requested brightness.
func Celeste(b Brightness) *Data {
	if b == BrightnessDark {
		return celeste("celeste-dark", b, celesteDarkBase, graphics.RGB(0xEC, 0xEB, 0xF2))
	}
	return celeste("celeste-light", b, celesteLightBase, graphics.RGB(0x1E, 0x1D, 0x24))
}

func celeste(name string, b Brightness, base, fg graphics.Color) *Data {
	d := NewData(name, b)
	d.window.Background = base

	surface := base.Lighten(0.06)
	if b == BrightnessLight {
		surface = base.Lighten(-0.04)
	}

	d.defaults[WidgetTypeContent] = Scheme{
		KeyColor: graphics.PaintOf(fg),
	}
	d.defaults[WidgetTypeInteractive] = Scheme{
		KeyColor:      graphics.PaintOf(graphics.ColorWhite),
		KeyBackground: graphics.PaintOf(celestePrimary),
		KeyHover:      graphics.PaintOf(celestePrimary.Lighten(0.08)),
		KeyPressed:    graphics.PaintOf(celestePrimary.Lighten(-0.08)),
		KeyBorder:     graphics.PaintOf(celestePrimary.Lighten(-0.15)).WithStrokeWidth(1),
	}
	d.defaults[WidgetTypeContainer] = Scheme{
		KeyColor:      graphics.PaintOf(fg),
		KeyBackground: graphics.PaintOf(surface),
		KeyBorder:     graphics.PaintOf(fg.WithAlpha(0.12)).WithStrokeWidth(1),
	}
	d.defaults[WidgetTypeLayout] = Scheme{
		KeyColor: graphics.PaintOf(fg),
	}
	return d
}

// Named returns a fresh copy of a built-in theme by name. Names are
// "celeste-light" and "celeste-dark"; "celeste" is an alias of the light
// variant.
func Named(name string) (*Data, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "celeste", "celeste-light", "light":
		return Celeste(BrightnessLight), true
	case "celeste-dark", "dark":
		return Celeste(BrightnessDark), true
	}
	return nil, false
}
