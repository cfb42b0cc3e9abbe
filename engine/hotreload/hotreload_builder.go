package hotreload

import "time"

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce is an option builder that sets how long a file must stay unchanged before Poll
// reloads it. Editors often write a file in several steps. The default is 100ms.
//
// Parameters:
//   - d: the debounce interval, negative values are treated as zero
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		w.debounce = max(d, 0)
	}
}
