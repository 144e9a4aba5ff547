// Package watch reloads a map file whenever it changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gridchase/internal/grid"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// MapWatcher parses the watched map file after every change and delivers the
// result on Maps. Files that fail to parse are reported on Errors and the
// previous map stays in use.
type MapWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	Maps   chan *grid.MapData
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewMapWatcher watches the directory holding path, so files replaced by a
// rename are still picked up.
func NewMapWatcher(path string, debounce time.Duration) (*MapWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &MapWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		Maps:     make(chan *grid.MapData, 1),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched
func (w *MapWatcher) Path() string {
	return w.path
}

// Close stops the watcher. Maps and Errors are closed once it returns.
func (w *MapWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *MapWatcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Maps)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *MapWatcher) reload() {
	data, err := grid.LoadMap(w.path)
	if err != nil {
		w.report(err)
		return
	}
	select {
	case w.Maps <- data:
	case <-w.closeCh:
	}
}

// report drops errors nobody is reading instead of stalling the watcher.
func (w *MapWatcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
