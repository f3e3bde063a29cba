package theme

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/graphics"
)

// FileVersion is the theme file format version written by this package.
const FileVersion = "v1.0.0"

// File is the YAML representation of a theme.
//
//	version: v1.0.0
//	name: dusk
//	extends: celeste-dark
//	window:
//	  background: "#1b1a22"
//	defaults:
//	  interactive:
//	    background: "#5f5a78"
//	    border: {color: "#000000", width: 2}
//	schemes:
//	  "may-widgets:Text":
//	    color: "#f0f0f0"
type File struct {
	Version    string                          `yaml:"version"`
	Name       string                          `yaml:"name,omitempty"`
	Brightness string                          `yaml:"brightness,omitempty"`
	Extends    string                          `yaml:"extends,omitempty"`
	Window     WindowFile                      `yaml:"window,omitempty"`
	Defaults   map[string]map[string]PaintFile `yaml:"defaults,omitempty"`
	Schemes    map[string]map[string]PaintFile `yaml:"schemes,omitempty"`
}

// WindowFile is the YAML representation of a WindowScheme.
type WindowFile struct {
	Background string `yaml:"background,omitempty"`
}

// PaintFile is a paint written either as a bare color string or as a
// mapping with color, width and antialias keys.
type PaintFile struct {
	Color     string   `yaml:"color"`
	Width     *float32 `yaml:"width,omitempty"`
	AntiAlias *bool    `yaml:"antialias,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *PaintFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Color = node.Value
		return nil
	}
	type plain PaintFile
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = PaintFile(v)
	return nil
}

func (p PaintFile) paint() (graphics.Paint, error) {
	c, err := graphics.ParseColor(p.Color)
	if err != nil {
		return graphics.Paint{}, err
	}
	out := graphics.PaintOf(c)
	if p.Width != nil {
		if *p.Width < 0 {
			return graphics.Paint{}, fmt.Errorf("negative width %v", *p.Width)
		}
		out.StrokeWidth = *p.Width
	}
	if p.AntiAlias != nil {
		out.AntiAlias = *p.AntiAlias
	}
	return out, nil
}

// Load reads and parses a theme file.
func Load(path string) (*Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("theme.Load", errors.KindTheme, fmt.Errorf("failed to read %s: %w", path, err))
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errors.New("theme.Load", errors.KindTheme, fmt.Errorf("%s: %w", path, err))
	}
	return d, nil
}

// Parse decodes a YAML theme.
func Parse(data []byte) (*Data, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	return f.Build()
}

// Build validates f and converts it to a theme.
func (f *File) Build() (*Data, error) {
	if err := checkVersion(f.Version); err != nil {
		return nil, err
	}

	brightness := BrightnessLight
	switch strings.ToLower(strings.TrimSpace(f.Brightness)) {
	case "", "light":
	case "dark":
		brightness = BrightnessDark
	default:
		return nil, fmt.Errorf("unknown brightness %q", f.Brightness)
	}

	var d *Data
	if f.Extends != "" {
		base, ok := Named(f.Extends)
		if !ok {
			return nil, fmt.Errorf("unknown base theme %q", f.Extends)
		}
		d = base
		if f.Brightness == "" {
			brightness = base.Brightness()
		}
	} else {
		d = NewData("", brightness)
	}
	d.name = f.Name
	d.brightness = brightness

	if f.Window.Background != "" {
		c, err := graphics.ParseColor(f.Window.Background)
		if err != nil {
			return nil, fmt.Errorf("window.background: %w", err)
		}
		d.window.Background = c
	}

	var errs []error
	for category, entries := range f.Defaults {
		t, err := ParseWidgetType(category)
		if err != nil {
			errs = append(errs, fmt.Errorf("defaults: %w", err))
			continue
		}
		s, err := buildScheme(entries)
		if err != nil {
			errs = append(errs, fmt.Errorf("defaults.%s: %w", category, err))
			continue
		}
		d.defaults[t] = d.defaults[t].Merge(s)
	}
	for id, entries := range f.Schemes {
		if id == "" {
			errs = append(errs, stderrors.New("schemes: empty widget id"))
			continue
		}
		s, err := buildScheme(entries)
		if err != nil {
			errs = append(errs, fmt.Errorf("schemes.%s: %w", id, err))
			continue
		}
		d.schemes[WidgetID(id)] = d.schemes[WidgetID(id)].Merge(s)
	}
	if err := stderrors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

func buildScheme(entries map[string]PaintFile) (Scheme, error) {
	s := make(Scheme, len(entries))
	for key, pf := range entries {
		p, err := pf.paint()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s[key] = p
	}
	return s, nil
}

// checkVersion accepts any v1 file version. An empty version is treated as
// the current one.
func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid theme version %q", v)
	}
	if semver.Major(v) != semver.Major(FileVersion) {
		return fmt.Errorf("unsupported theme version %s (want %s.x)", v, semver.Major(FileVersion))
	}
	return nil
}

// Encode returns the YAML form of d.
func Encode(d *Data) ([]byte, error) {
	d.mu.RLock()
	f := File{
		Version:    FileVersion,
		Name:       d.name,
		Brightness: d.brightness.String(),
		Window:     WindowFile{Background: d.window.Background.Hex()},
		Defaults:   make(map[string]map[string]PaintFile, len(d.defaults)),
		Schemes:    make(map[string]map[string]PaintFile, len(d.schemes)),
	}
	for t, s := range d.defaults {
		f.Defaults[t.String()] = encodeScheme(s)
	}
	for id, s := range d.schemes {
		f.Schemes[string(id)] = encodeScheme(s)
	}
	d.mu.RUnlock()
	return yaml.Marshal(&f)
}

func encodeScheme(s Scheme) map[string]PaintFile {
	out := make(map[string]PaintFile, len(s))
	for key, p := range s {
		w, aa := p.StrokeWidth, p.AntiAlias
		out[key] = PaintFile{Color: p.Color.Hex(), Width: &w, AntiAlias: &aa}
	}
	return out
}
