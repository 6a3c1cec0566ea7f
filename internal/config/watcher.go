package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher monitors a single configuration file and invokes a handler
// when it changes. The parent directory is watched so atomic saves
// (write-to-temp then rename) are still observed. Changes are debounced.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	handler  func()
	onError  func(error)
	debounce time.Duration

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a FileWatcher.
type WatcherOption func(*FileWatcher)

// WithDebounce sets the quiet period before the handler fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets a callback for watch errors.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *FileWatcher) {
		w.onError = fn
	}
}

// WatchFile starts watching path and calls handler after each change.
func WatchFile(path string, handler func(), opts ...WatcherOption) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &FileWatcher{
		watcher:  fsw,
		path:     abs,
		handler:  handler,
		debounce: 200 * time.Millisecond,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Close stops the watcher. Safe to call more than once.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	return w.watcher.Close()
}

// processLoop handles incoming fsnotify events.
func (w *FileWatcher) processLoop() {
	defer w.wg.Done()

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-w.closeCh:
			debounce.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce.Reset(w.debounce)
			pending = true

		case <-debounce.C:
			if pending {
				pending = false
				w.handler()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
