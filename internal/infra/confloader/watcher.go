package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event on
// a file before reporting it. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a set of configuration files.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	files   map[string]struct{}
	pending map[string]*time.Timer
	subs    []func(string)

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = logger
	}
}

// WithDebounce sets the quiet period before a change is reported. Zero
// reports every event immediately.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher. Call Watch for each file, then Start.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		debounce: DefaultDebounce,
		log:      slog.Default(),
		files:    make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers path. Its directory is what fsnotify watches, so the
// file may be replaced by rename.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[path] = struct{}{}
	w.mu.Unlock()

	w.log.Debug("watching config file", "path", path)
	return nil
}

// OnChange registers fn, called with the changed file's path.
func (w *Watcher) OnChange(fn func(string)) {
	w.mu.Lock()
	w.subs = append(w.subs, fn)
	w.mu.Unlock()
}

// Start processes events until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync runs Start in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends event processing and drops pending notifications. It is
// safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()

		w.mu.Lock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
	})
	return err
}

// schedule reports path once no further event for it arrives within
// the debounce period.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	if w.debounce <= 0 {
		go w.notify(path)
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.notify(path)
	})
}

func (w *Watcher) notify(path string) {
	select {
	case <-w.done:
		return
	default:
	}

	w.mu.Lock()
	subs := make([]func(string), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	w.log.Debug("config file changed", "path", path)
	for _, fn := range subs {
		fn(path)
	}
}
