package confloader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/yndnr/authclient/internal/telemetry/logger"
)

// Watcher watches configuration files for changes.
//
// Editors often produce several events per save. Events are coalesced:
// a change is reported once no further event arrived for the settle delay,
// and two reports are at least one coalesce window apart. The last event of
// a burst is always followed by a report.
type Watcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]struct{}
	callbacks []func(string)
	mu        sync.RWMutex
	done      chan struct{}
	stopOnce  sync.Once
	logger    logger.Logger

	limiter *rate.Limiter
	settle  time.Duration

	pendingMu sync.Mutex
	timer     *time.Timer
	due       time.Time
	pending   string
	seq       uint64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithCoalesce sets the minimum interval between two reported changes and
// the settle delay before a change is reported.
func WithCoalesce(window, settle time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.limiter = rate.NewLimiter(rate.Every(window), 1)
		w.settle = settle
	}
}

// NewWatcher creates a new configuration file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		files:   make(map[string]struct{}),
		done:    make(chan struct{}),
		logger:  logger.Default(),
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		settle:  100 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch adds a file to watch.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Watch the directory, not the file, to catch vim-style renames
	dir := filepath.Dir(abs)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch directory", "path", dir, "error", err)
		return err
	}

	w.mu.Lock()
	w.files[abs] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug("watching directory for changes", "path", dir, "file", filepath.Base(abs))
	return nil
}

// OnChange registers a callback to be called when a watched file changes.
// The callback receives the path of the changed file.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start starts watching for changes.
// This function blocks until Stop() is called.
func (w *Watcher) Start() {
	w.logger.Debug("configuration watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			w.logger.Debug("configuration file changed", "file", event.Name, "op", event.Op.String())
			w.schedule(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

// schedule arranges a report for name. A pending report is pushed back so
// it fires settle after the latest event; otherwise a new one is timed by
// the limiter.
func (w *Watcher) schedule(name string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending = name
	now := time.Now()
	if w.timer != nil && w.timer.Stop() {
		delay := max(w.due.Sub(now), w.settle)
		w.due = now.Add(delay)
		w.timer.Reset(delay)
		return
	}

	w.seq++
	seq := w.seq
	w.due = now.Add(w.limiter.Reserve().Delay() + w.settle)
	w.timer = time.AfterFunc(w.due.Sub(now), func() { w.fire(seq) })
}

// fire reports the pending change. A timer superseded by a newer schedule
// does nothing.
func (w *Watcher) fire(seq uint64) {
	w.pendingMu.Lock()
	if seq != w.seq {
		w.pendingMu.Unlock()
		return
	}
	name := w.pending
	w.timer = nil
	w.pendingMu.Unlock()

	select {
	case <-w.done:
	default:
		w.notifyCallbacks(name)
	}
}

func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[abs]
	return ok
}

// notifyCallbacks calls all registered callbacks.
func (w *Watcher) notifyCallbacks(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}
