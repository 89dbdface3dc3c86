// Package intake turns course posting files dropped into watched directories into courses
// and push runs.
package intake

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

const defaultDebounce = 400 * time.Millisecond

// DefaultExtensions are the posting formats the intake understands.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// Watcher reports created or rewritten posting files once their writes settle.
type Watcher struct {
	dirs       []string
	extensions []string
	debounce   time.Duration
	onChange   func(path string)
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	pending  map[string]*time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must stay quiet before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions restricts the files reported. Empty means DefaultExtensions.
func WithExtensions(exts []string) WatcherOption {
	return func(w *Watcher) {
		if len(exts) > 0 {
			w.extensions = exts
		}
	}
}

// NewWatcher returns a watcher over dirs and their subdirectories.
func NewWatcher(dirs []string, onChange func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dirs:       dirs,
		extensions: DefaultExtensions,
		debounce:   defaultDebounce,
		onChange:   onChange,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = utils.OrNop(w.logger)
	return w
}

// Start begins watching. Missing directories are created. It returns once the watches are
// in place; events are handled until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := addTree(fsw, dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	w.logger.Info("watching course postings", zap.Strings("directories", w.dirs), zap.Strings("extensions", w.extensions))
	go w.loop(ctx, fsw)
	return nil
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.cancel(ev.Name)
		}
		return
	}
	w.logger.Debug("posting event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if err := addTree(fsw, ev.Name); err != nil {
			w.logger.Warn("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
		}
		w.scan(ev.Name)
		return
	}
	if hasExtension(ev.Name, w.extensions) {
		w.schedule(ev.Name)
	}
}

func hasExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range exts {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// schedule restarts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.onChange(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// SyncExisting reports every posting already present in the watched directories.
func (w *Watcher) SyncExisting() {
	for _, dir := range w.dirs {
		w.scan(dir)
	}
}

func (w *Watcher) scan(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("failed to scan posting directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() && hasExtension(path, w.extensions) {
			w.onChange(path)
		}
		return nil
	})
}

// Stop releases the watches. Pending debounced callbacks are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		fsw := w.fsw
		w.fsw = nil
		w.mu.Unlock()
		if fsw != nil {
			_ = fsw.Close()
		}
		close(w.done)
	})
}
