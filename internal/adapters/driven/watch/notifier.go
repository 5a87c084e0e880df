// Package watch implements driven.ChangeNotifier with fsnotify.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.ChangeNotifier = (*Notifier)(nil)

// Notifier reports writes to a single file.
//
// The parent directory is watched rather than the file itself, so editors and
// downloaders that replace the file by rename keep being observed.
type Notifier struct{}

// NewNotifier creates a notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Watch emits a value each time the file at path is written or replaced.
// Bursts of events coalesce into one pending signal.
func (n *Notifier) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !isChange(ev, abs) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", abs, err)
			}
		}
	}()
	return out, nil
}

// isChange reports whether ev writes or replaces the watched file.
func isChange(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
