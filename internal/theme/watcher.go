package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Watcher polls a theme's XML files and reloads it when they change.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	theme        *Theme
	pollInterval time.Duration

	onChangeCallback func(*Theme)

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a watcher for theme.
func NewWatcher(theme *Theme, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		logger:       logger,
		theme:        theme,
		pollInterval: 2 * time.Second,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets the polling interval for file changes.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetChangeCallback sets the callback invoked with the reloaded theme.
func (w *Watcher) SetChangeCallback(callback func(*Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
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

	w.logger.Debug("theme watcher started", "root", w.theme.Root, "interval", interval)
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
	w.logger.Debug("theme watcher stopped")
}

// Theme returns the most recently loaded theme.
func (w *Watcher) Theme() *Theme {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.theme
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
	current := w.theme
	callback := w.onChangeCallback
	w.mu.RUnlock()

	if current == nil || !current.Changed() {
		return
	}

	reloaded, err := Load(current.Root)
	if err != nil {
		w.logger.Warn("failed to reload theme", "root", current.Root, "error", err)
		// Keep the old theme but stop retrying until the files change again.
		w.mu.Lock()
		stale := *current
		stale.ModTime = newestModTime(VariablesPath(current.Root), ColorSchemePath(current.Root))
		w.theme = &stale
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.theme = reloaded
	w.mu.Unlock()

	w.logger.Info("theme changed, reloading", "root", reloaded.Root, "accent", reloaded.Accent)
	if callback != nil {
		callback(reloaded)
	}
}
