// Package watch reports when the file open in the editor changes on disk.
package watch

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kobzarvs/qtext/internal/logger"
)

var ErrClosed = errors.New("watcher closed")

// DefaultDelay coalesces the burst of events a single save produces.
const DefaultDelay = 50 * time.Millisecond

// Event says Path was written, created, replaced or removed.
type Event struct {
	Path    string
	Removed bool
}

// Watcher follows one file at a time. It watches the parent directory so
// that editors which save by rename are still seen.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	path    string
	dir     string
	delay   time.Duration
	pending *time.Timer
	removed bool
	closed  bool

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
}

func New(delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	w := &Watcher{
		fsw:    fsw,
		delay:  delay,
		events: make(chan Event, 4),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Watch switches to path. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	abs := ""
	if path != "" {
		var err error
		if abs, err = filepath.Abs(path); err != nil {
			return err
		}
	}
	if abs == w.path {
		return nil
	}
	if w.dir != "" {
		_ = w.fsw.Remove(w.dir)
	}
	w.path, w.dir = abs, ""
	if abs == "" {
		return nil
	}
	dir := filepath.Dir(abs)
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	err := w.fsw.Close()
	close(w.done)
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	// A later create cancels an earlier remove: that is a rename-over save.
	w.removed = ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	path := w.path
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.delay, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if w.closed || path != w.path {
		w.mu.Unlock()
		return
	}
	ev := Event{Path: path, Removed: w.removed}
	w.pending = nil
	w.mu.Unlock()
	select {
	case w.events <- ev:
	default:
		logger.Debug("dropping file event", "path", path)
	}
}
