// Package reload watches a mesh file and asks the render thread to reload it.
package reload

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Poster runs functions on the render thread, e.g. host.Viewport.
type Poster interface {
	Post(fn func())
}

type Watcher struct {
	path     string
	debounce time.Duration
	poster   Poster
	onChange func(path string)
	watcher  *fsnotify.Watcher
}

// New watches path. Bursts of writes within debounce of each other result in a single
// onChange call, posted through poster.
func New(path string, debounce time.Duration, poster Poster, onChange func(path string)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watch the directory so editors that replace the file are still seen
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		poster:   poster,
		onChange: onChange,
		watcher:  fw,
	}, nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Run delivers change notifications until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("reload: watcher error: %v", err)
		case <-fire:
			fire = nil
			path := w.path
			w.poster.Post(func() { w.onChange(path) })
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
