package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"
)

// Watcher polls sound files and reports the ones modified since they were
// last seen.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	watched      map[string]time.Time
	pollInterval time.Duration
	onChange     func(path string)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a sound file watcher.
func NewWatcher(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:       logger,
		watched:      make(map[string]time.Time),
		pollInterval: 2 * time.Second,
	}
}

// SetPollInterval sets the polling interval.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetChangeCallback sets the function called with each changed path.
func (w *Watcher) SetChangeCallback(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Watch adds path, remembering its current modification time.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	var mod time.Time
	if info, err := os.Stat(path); err == nil {
		mod = info.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.watched[path] = mod
}

// Unwatch removes path.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, path)
}

// Start begins polling in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.pollInterval
	w.mu.Unlock()

	go w.watchLoop(ctx, interval)
	return nil
}

// Stop stops polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
}

func (w *Watcher) watchLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

func (w *Watcher) checkForChanges() {
	w.mu.RLock()
	paths := maps.Clone(w.watched)
	callback := w.onChange
	w.mu.RUnlock()

	for path, last := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().After(last) {
			continue
		}

		w.mu.Lock()
		if _, still := w.watched[path]; still {
			w.watched[path] = info.ModTime()
		}
		w.mu.Unlock()

		w.logger.Debug("sound file changed", "path", path)
		if callback != nil {
			callback(path)
		}
	}
}
