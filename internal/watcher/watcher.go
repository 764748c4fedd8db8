// Package watcher turns fsnotify notifications under the watch root into
// pipeline events. It only filters and converts; it makes no decisions about
// what to do with a path.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vmunix/arrpush/internal/layout"
)

// DefaultSettle is the quiet period before an event is emitted.
const DefaultSettle = 2 * time.Second

// DefaultSkipFiles are basenames never reported.
var DefaultSkipFiles = []string{".DS_Store", "Thumbs.db", "desktop.ini"}

// Config contains watcher settings.
type Config struct {
	Settle    time.Duration // 0 emits immediately
	SkipFiles []string
}

// Watcher monitors the watch root recursively.
type Watcher struct {
	layout layout.Layout
	settle time.Duration
	skip   map[string]bool
	sink   Sink
	log    *slog.Logger

	fs *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool
}

type pendingEvent struct {
	event Event
	timer *time.Timer
	last  time.Time // latest activity on the path or below it
}

// New creates a Watcher that pushes to sink.
func New(l layout.Layout, cfg Config, sink Sink, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]bool, len(cfg.SkipFiles))
	for _, name := range cfg.SkipFiles {
		skip[name] = true
	}
	return &Watcher{
		layout:  l,
		settle:  cfg.Settle,
		skip:    skip,
		sink:    sink,
		log:     logger.With("component", "watcher"),
		pending: make(map[string]*pendingEvent),
	}
}

// Run watches until ctx is cancelled. Events still settling at shutdown are
// dropped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fs = fw
	defer func() {
		w.stop()
		_ = fw.Close()
	}()

	if err := w.addTree(w.layout.Root()); err != nil {
		return err
	}
	w.log.Info("watching", "root", w.layout.Root(), "settle", w.settle)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

// handle converts and filters one notification.
func (w *Watcher) handle(ev fsnotify.Event) {
	var kind Kind
	switch {
	case ev.Has(fsnotify.Create):
		kind = Created
	case ev.Has(fsnotify.Write):
		kind = Modified
	default:
		return
	}

	path := filepath.Clean(ev.Name)
	if w.ignored(path) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		w.log.Debug("path vanished before it could be inspected", "path", path)
		return
	}
	if info.IsDir() {
		if kind == Modified {
			return
		}
		if err := w.addTree(path); err != nil {
			w.log.Warn("failed to watch new directory", "path", path, "error", err)
		}
	}

	w.schedule(Event{Path: path, Kind: kind, IsDir: info.IsDir()})
}

// ignored reports whether path is hidden, skipped or a reserved root.
func (w *Watcher) ignored(path string) bool {
	if w.layout.IsReservedRoot(path) {
		return true
	}
	rel, err := w.layout.Rel(path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return w.skip[filepath.Base(path)]
}

func (w *Watcher) schedule(e Event) {
	if w.settle <= 0 {
		w.sink.Push(e)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	now := time.Now()
	// A folder is not settled while anything inside it is still changing.
	for dir := filepath.Dir(e.Path); dir != w.layout.Root() && w.layout.Contains(dir); dir = filepath.Dir(dir) {
		if p, ok := w.pending[dir]; ok {
			p.last = now
			p.timer.Reset(w.settle)
		}
	}

	if p, ok := w.pending[e.Path]; ok {
		p.event = p.event.Merge(e)
		p.last = now
		p.timer.Reset(w.settle)
		return
	}
	p := &pendingEvent{event: e, last: now}
	p.timer = time.AfterFunc(w.settle, func() { w.fire(e.Path) })
	w.pending[e.Path] = p
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	// The timer may have expired just as new activity arrived.
	if quiet := time.Since(p.last); quiet < w.settle {
		p.timer.Reset(w.settle - quiet)
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.log.Debug("event settled", "path", path, "kind", p.event.Kind.String())
	w.sink.Push(p.event)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
