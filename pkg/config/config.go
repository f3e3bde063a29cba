// Package config loads the optional may.yaml application configuration.
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/theme"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "may.yaml"

// Version is the configuration format version.
const Version = "v1.0.0"

// Defaults applied by Resolve.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultTitle  = "may_app"
)

// Config represents the optional may.yaml configuration.
type Config struct {
	Version  string         `yaml:"version,omitempty"`
	Window   WindowConfig   `yaml:"window"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Fonts    FontsConfig    `yaml:"fonts"`
	Engine   EngineConfig   `yaml:"engine"`
}

// WindowConfig describes the host window.
type WindowConfig struct {
	Title          string  `yaml:"title,omitempty"`
	Width          float32 `yaml:"width,omitempty"`
	Height         float32 `yaml:"height,omitempty"`
	Resizable      *bool   `yaml:"resizable,omitempty"`
	CloseOnRequest *bool   `yaml:"close_on_request,omitempty"`
	Scale          float32 `yaml:"scale,omitempty"`
}

// GraphicsConfig selects the theme and rendering quality.
type GraphicsConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file.
	Theme      string `yaml:"theme,omitempty"`
	Brightness string `yaml:"brightness,omitempty"`
	AntiAlias  *bool  `yaml:"antialias,omitempty"`
}

// FontsConfig lists fonts to register at startup.
type FontsConfig struct {
	// Dir is scanned for .ttf and .otf files, registered by base name.
	Dir string `yaml:"dir,omitempty"`
	// Files maps registry names to font file paths.
	Files map[string]string `yaml:"files,omitempty"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	RecoverPanics bool   `yaml:"recover_panics,omitempty"`
	ControlFlow   string `yaml:"control_flow,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	TraceSamples  int    `yaml:"trace_samples,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string

	Title          string
	Width          float32
	Height         float32
	Resizable      bool
	CloseOnRequest bool
	Scale          float32

	ThemeName  string
	ThemePath  string
	Brightness theme.Brightness
	AntiAlias  bool

	FontDir   string
	FontFiles map[string]string

	RecoverPanics bool
	ControlFlow   core.ControlFlow
	LogLevel      slog.Level
	TraceSamples  int
}

// LoadOptional reads may.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("config.Load", errors.KindConfig, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err))
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.New("config.Load", errors.KindConfig, fmt.Errorf("%s: %w", filepath.Base(path), err))
	}
	return cfg, nil
}

// Parse decodes YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := checkVersion(cfg.Version); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Resolve uses when no file exists.
func Default() *Config {
	return &Config{Version: Version}
}

// Resolve loads may.yaml (if present) from dir and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve fills defaults relative to the project directory dir and
// validates the result.
func (c *Config) Resolve(dir string) (*Resolved, error) {
	r := &Resolved{
		Root:           dir,
		ModulePath:     modulePath(dir),
		Title:          strings.TrimSpace(c.Window.Title),
		Width:          c.Window.Width,
		Height:         c.Window.Height,
		Resizable:      boolOr(c.Window.Resizable, true),
		CloseOnRequest: boolOr(c.Window.CloseOnRequest, true),
		Scale:          c.Window.Scale,
		AntiAlias:      boolOr(c.Graphics.AntiAlias, true),
		FontFiles:      make(map[string]string, len(c.Fonts.Files)),
		RecoverPanics:  c.Engine.RecoverPanics,
		TraceSamples:   c.Engine.TraceSamples,
	}
	if r.Title == "" {
		r.Title = defaultTitle(r.ModulePath, dir)
	}
	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	if r.Scale == 0 {
		r.Scale = 1
	}

	var errs []error
	if r.Width < 0 || r.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %vx%v must be positive", r.Width, r.Height))
	}
	if r.Scale < 0 {
		errs = append(errs, fmt.Errorf("window scale %v must be positive", r.Scale))
	}

	switch strings.ToLower(strings.TrimSpace(c.Graphics.Brightness)) {
	case "", "light":
		r.Brightness = theme.BrightnessLight
	case "dark":
		r.Brightness = theme.BrightnessDark
	default:
		errs = append(errs, fmt.Errorf("unknown brightness %q", c.Graphics.Brightness))
	}

	if name := strings.TrimSpace(c.Graphics.Theme); name != "" {
		if _, ok := theme.Named(name); ok {
			r.ThemeName = name
		} else {
			r.ThemePath = resolvePath(dir, name)
		}
	}

	if c.Fonts.Dir != "" {
		r.FontDir = resolvePath(dir, c.Fonts.Dir)
	}
	for name, path := range c.Fonts.Files {
		if name == "" || name == fonts.DefaultName {
			errs = append(errs, fmt.Errorf("reserved font name %q", name))
			continue
		}
		r.FontFiles[name] = resolvePath(dir, path)
	}

	cf, err := core.ParseControlFlow(c.Engine.ControlFlow)
	if err != nil {
		errs = append(errs, err)
	}
	r.ControlFlow = cf

	if lvl := strings.TrimSpace(c.Engine.LogLevel); lvl != "" {
		if err := r.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			errs = append(errs, fmt.Errorf("log_level: %w", err))
		}
	}

	if err := stderrors.Join(errs...); err != nil {
		return nil, errors.New("config.Resolve", errors.KindConfig, err)
	}
	return r, nil
}

// LoadTheme returns the configured theme: a theme file, a named built-in,
// or Celeste in the configured brightness.
func (r *Resolved) LoadTheme() (*theme.Data, error) {
	if r.ThemePath != "" {
		return theme.Load(r.ThemePath)
	}
	if r.ThemeName != "" {
		if d, ok := theme.Named(r.ThemeName); ok {
			return d, nil
		}
	}
	return theme.Celeste(r.Brightness), nil
}

// LoadFonts registers the configured fonts into reg and returns the names
// that were loaded.
func (r *Resolved) LoadFonts(ctx context.Context, reg *fonts.Registry) ([]string, error) {
	var loaded []string
	if r.FontDir != "" {
		names, err := reg.LoadDir(ctx, r.FontDir)
		loaded = append(loaded, names...)
		if err != nil {
			return loaded, err
		}
	}
	for name, path := range r.FontFiles {
		if _, err := reg.LoadFile(name, path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// directory holding may.yaml or go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found", FileName)
		}
		dir = parent
	}
}

func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid config version %q", v)
	}
	if semver.Major(v) != semver.Major(Version) {
		return fmt.Errorf("unsupported config version %s (want %s.x)", v, semver.Major(Version))
	}
	return nil
}

// modulePath returns the module path declared in dir/go.mod, or "".
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultTitle(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return DefaultTitle
	}
	return base
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
