package theme

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/may/pkg/errors"
)

// Watch reloads the theme file at path whenever it is written, created or
// renamed into place, and passes each successfully parsed theme to onChange.
// Parse failures are reported through the errors handler and the previous
// theme stays active. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Data)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.New("theme.Watch", errors.KindTheme, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("theme.Watch", errors.KindTheme, fmt.Errorf("failed to create watcher: %w", err))
	}
	defer w.Close()

	// Editors often replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.New("theme.Watch", errors.KindTheme, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			d, err := Load(abs)
			if err != nil {
				errors.Report(asMayError(err))
				continue
			}
			onChange(d)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			errors.Report(errors.New("theme.Watch", errors.KindTheme, err))
		}
	}
}

func asMayError(err error) *errors.MayError {
	var me *errors.MayError
	if errors.As(err, &me) {
		return me
	}
	return errors.New("theme.Watch", errors.KindTheme, err)
}
