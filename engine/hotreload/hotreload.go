// Package hotreload watches shader sources on disk and hands changed paths back to the thread
// that owns the graphics context. File events are collected in the background; nothing is
// rebuilt until Poll is called.
package hotreload

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Reloader rebuilds whatever depends on a changed path. shader.Registry implements it.
type Reloader interface {
	// ReloadPath reloads the resource registered for path.
	//
	// Returns:
	//   - bool: false if nothing is registered for path
	//   - error: the rebuild errors
	ReloadPath(path string) (bool, error)
}

// watcher is the implementation of the Watcher interface.
type watcher struct {
	reloader Reloader
	fs       *fsnotify.Watcher
	debounce time.Duration
	now      func() time.Time

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	pending map[string]time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// Watcher queues changes to watched files and applies them to a Reloader on Poll.
type Watcher interface {
	// Add starts watching path. The file's directory is watched so editors that replace files
	// on save are still seen.
	//
	// Parameters:
	//   - path: the file to watch
	//
	// Returns:
	//   - error: an error if the directory cannot be watched
	Add(path string) error

	// Remove stops watching path.
	Remove(path string) error

	// Pending returns the number of queued changes.
	Pending() int

	// Poll reloads every queued path whose last change is older than the debounce interval.
	// It must be called from the thread that owns the graphics context.
	//
	// Returns:
	//   - int: the number of paths reloaded
	//   - error: the joined reload errors
	Poll() (int, error)

	// Close stops watching and discards queued changes.
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher that applies changes to r.
//
// Parameters:
//   - r: the reloader changes are applied to
//   - options: a variadic list of WatcherBuilderOption functions to configure the Watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the platform watcher cannot be created
func NewWatcher(r Reloader, options ...WatcherBuilderOption) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("hotreload: %w", err)
	}
	w := &watcher{
		reloader: r,
		fs:       fsw,
		debounce: 100 * time.Millisecond,
		now:      time.Now,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.queue(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("hot reload watch error", "error", err)
		}
	}
}

func (w *watcher) queue(path string) {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[path] {
		w.pending[path] = w.now()
	}
}

func (w *watcher) Add(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[path] {
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("hotreload: watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[path] = true
	return nil
}

func (w *watcher) Remove(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return nil
	}
	delete(w.files, path)
	delete(w.pending, path)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fs.Remove(dir); err != nil {
		return fmt.Errorf("hotreload: unwatch %s: %w", dir, err)
	}
	return nil
}

func (w *watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// due removes and returns the queued paths that settled, in sorted order.
func (w *watcher) due() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	var paths []string
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			paths = append(paths, p)
			delete(w.pending, p)
		}
	}
	slices.Sort(paths)
	return paths
}

func (w *watcher) Poll() (int, error) {
	var errs []error
	n := 0
	for _, p := range w.due() {
		ok, err := w.reloader.ReloadPath(p)
		if ok {
			n++
		}
		if err != nil {
			errs = append(errs, err)
		}
		common.Logger().Info("hot reload", "path", p, "registered", ok, "ok", err == nil)
	}
	return n, errors.Join(errs...)
}

func (w *watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()

	w.mu.Lock()
	clear(w.pending)
	w.mu.Unlock()
	return err
}
