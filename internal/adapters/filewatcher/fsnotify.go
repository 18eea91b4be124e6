// Package filewatcher provides file system monitoring adapters.
// Adapter implementing ports.FileWatcher, used to reindex the source
// document when it changes on disk.
package filewatcher

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/teknokeras/perso/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// fsnotify watches directories, so the watcher registers the file's parent
// directory and filters events down to the one file.
type FSNotifyWatcher struct {
	watcher *fsnotify.Watcher
}

// NewFSNotifyWatcher creates a new file watcher.
func NewFSNotifyWatcher() (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FSNotifyWatcher{watcher: w}, nil
}

// Watch starts monitoring the file at path and emits events for it.
func (w *FSNotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileEvent, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Has(fsnotify.Create):
					op = ports.FileCreated
				case event.Has(fsnotify.Write):
					op = ports.FileModified
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: path, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[ERROR] watching %s: %v", path, err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}
