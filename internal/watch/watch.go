// Package watch feeds edits made to a file on disk into an analysis session.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/quill/internal/document"
)

// Watcher reports the content of one file each time it changes.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// New starts watching path. The parent directory is watched so that editors
// that save by renaming a temp file are still seen.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		if cerr := fsw.Close(); cerr != nil {
			// Best-effort close on watch failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{path: abs, watcher: fsw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done, calling onText with the file content after
// each write and onErr for read or watch failures.
func (w *Watcher) Run(ctx context.Context, onText func(string), onErr func(error)) error {
	defer func() {
		if cerr := w.watcher.Close(); cerr != nil {
			// Best-effort watcher close.
			_ = cerr
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			text, err := document.Load(w.path)
			if err != nil {
				// The file can vanish between a rename and the next create.
				report(onErr, err)
				continue
			}
			onText(text)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			report(onErr, fmt.Errorf("watch %s: %w", w.path, err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func report(onErr func(error), err error) {
	if onErr != nil {
		onErr(err)
	}
}
