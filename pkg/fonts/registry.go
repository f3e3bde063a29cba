package fonts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/may/pkg/errors"
)

// loadConcurrency bounds the number of font files parsed at once by LoadDir.
const loadConcurrency = 4

var defaultFont = sync.OnceValue(func() *Font {
	f, err := Parse(DefaultName, goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("fonts: embedded default font: %v", err))
	}
	return f
})

var shared = sync.OnceValue(NewRegistry)

// Shared returns the process-wide registry. Engines use it unless given
// their own.
func Shared() *Registry {
	return shared()
}

// Registry is a concurrency-safe mapping from name to font with a fixed
// default entry.
type Registry struct {
	mu    sync.RWMutex
	fonts map[string]*Font
	def   *Font
}

// NewRegistry creates a registry holding only the default font.
func NewRegistry() *Registry {
	return &Registry{
		fonts: make(map[string]*Font),
		def:   defaultFont(),
	}
}

// Insert registers f under name, replacing any previous entry.
// The default entry cannot be replaced.
func (r *Registry) Insert(name string, f *Font) error {
	if name == "" || name == DefaultName {
		return errors.New("fonts.Insert", errors.KindFont, fmt.Errorf("reserved font name %q", name))
	}
	if f == nil {
		return errors.New("fonts.Insert", errors.KindFont, fmt.Errorf("nil font for %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fonts[name] = f
	return nil
}

// Get returns the font registered under name. The default name always
// resolves.
func (r *Registry) Get(name string) (*Font, bool) {
	if name == DefaultName {
		return r.def, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fonts[name]
	return f, ok
}

// Lookup is like Get but returns errors.ErrUnknownFont for missing names.
func (r *Registry) Lookup(name string) (*Font, error) {
	if f, ok := r.Get(name); ok {
		return f, nil
	}
	return nil, errors.New("fonts.Lookup", errors.KindFont, fmt.Errorf("%w: %q", errors.ErrUnknownFont, name))
}

// GetOrDefault returns the named font, or the default when name is unknown
// or empty.
func (r *Registry) GetOrDefault(name string) *Font {
	if name == "" {
		return r.def
	}
	if f, ok := r.Get(name); ok {
		return f
	}
	return r.def
}

// Remove deletes name from the registry and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fonts[name]; !ok {
		return false
	}
	delete(r.fonts, name)
	return true
}

// Default returns the built-in font.
func (r *Registry) Default() *Font {
	return r.def
}

// Names returns the registered names in sorted order, default excluded.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.fonts))
	for name := range r.fonts {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Len returns the number of registered fonts, default excluded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fonts)
}

// Parse parses data and registers it under name.
func (r *Registry) Parse(name string, data []byte) (*Font, error) {
	f, err := Parse(name, data)
	if err != nil {
		return nil, errors.New("fonts.Parse", errors.KindFont, err)
	}
	if err := r.Insert(name, f); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadFile reads and registers the font at path under name.
func (r *Registry) LoadFile(name, path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("fonts.LoadFile", errors.KindFont, err)
	}
	return r.Parse(name, data)
}

// LoadDir registers every .ttf and .otf file in dir, named after the file
// without its extension. Files are parsed concurrently; the first error
// cancels the remaining loads. A file whose name is reserved is skipped and
// reported through the global error handler.
func (r *Registry) LoadDir(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New("fonts.LoadDir", errors.KindFont, err)
	}

	var (
		mu     sync.Mutex
		loaded []string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if name == "" || name == DefaultName {
			errors.Report(errors.New("fonts.LoadDir", errors.KindFont,
				fmt.Errorf("%s: reserved font name %q", path, name)))
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := r.LoadFile(name, path); err != nil {
				return err
			}
			mu.Lock()
			loaded = append(loaded, name)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	slices.Sort(loaded)
	return loaded, err
}
