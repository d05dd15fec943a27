package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/menu"
)

// MenuSetup is a resolved menu configuration ready for the overlay.
type MenuSetup struct {
	Config *config.Config
	Items  []menu.Item
	Hints  []menu.Hint
}

// ResolveMenu combines menu.toml and bindings.toml. When bindings are given
// they supply the items and the hint bar; otherwise the items come from
// menu.toml and the hint bar is derived from them, led by confirm.
func ResolveMenu(cfg *config.Config, bindings *config.Bindings, confirm menu.Hint) (*MenuSetup, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	setup := &MenuSetup{Config: cfg}

	if bindings != nil && len(bindings.Menu) > 0 {
		items, err := bindings.MenuItems()
		if err != nil {
			return nil, err
		}
		setup.Items = items
		setup.Hints = bindings.HintBar()
		return setup, nil
	}

	items, err := cfg.Menu.MenuItems()
	if err != nil {
		return nil, err
	}
	setup.Items = items
	setup.Hints = config.HintsForItems(confirm, items)
	return setup, nil
}

// ConfirmHint is the hint shown for the select button when no bindings file
// names one.
func ConfirmHint(label string) menu.Hint {
	return menu.Hint{Button: buttons.A, Label: label}
}

// ConfigWatcher polls menu.toml and bindings.toml and delivers a freshly
// resolved MenuSetup when either changes and the result validates.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	menuPath     string
	bindingsPath string
	confirm      menu.Hint

	lastModTimes map[string]time.Time
	current      *MenuSetup

	pollInterval time.Duration

	onReloadCallback func(*MenuSetup)
	onErrorCallback  func(error)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewConfigWatcher watches the given files. Either path may be empty.
func NewConfigWatcher(menuPath, bindingsPath string, confirm menu.Hint, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		logger:       logger,
		menuPath:     menuPath,
		bindingsPath: bindingsPath,
		confirm:      confirm,
		lastModTimes: make(map[string]time.Time),
		pollInterval: time.Second,
	}
}

// SetPollInterval sets the polling interval for file changes.
func (w *ConfigWatcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetReloadCallback sets the callback invoked with each valid reload.
func (w *ConfigWatcher) SetReloadCallback(callback func(*MenuSetup)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback invoked when a changed file is rejected.
func (w *ConfigWatcher) SetErrorCallback(callback func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// Start begins watching. initial is the setup currently in use.
func (w *ConfigWatcher) Start(ctx context.Context, initial *MenuSetup) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.current = initial
	for _, p := range w.paths() {
		if info, err := os.Stat(p); err == nil {
			w.lastModTimes[p] = info.ModTime()
		}
	}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.pollInterval
	w.mu.Unlock()

	go w.watchLoop(ctx, interval)

	w.logger.Debug("config watcher started", "menu", w.menuPath, "bindings", w.bindingsPath, "interval", interval)
	return nil
}

// Stop stops watching and waits for the poll goroutine.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("config watcher stopped")
}

// Current returns the last valid setup.
func (w *ConfigWatcher) Current() *MenuSetup {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) paths() []string {
	var out []string
	for _, p := range []string{w.menuPath, w.bindingsPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (w *ConfigWatcher) watchLoop(ctx context.Context, interval time.Duration) {
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

func (w *ConfigWatcher) checkForChanges() {
	changed := false
	for _, p := range w.paths() {
		info, err := os.Stat(p)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Debug("failed to stat config file", "path", p, "error", err)
			}
			continue
		}
		w.mu.Lock()
		if info.ModTime().After(w.lastModTimes[p]) {
			w.lastModTimes[p] = info.ModTime()
			changed = true
			w.logger.Debug("config file changed", "path", p, "modTime", info.ModTime())
		}
		w.mu.Unlock()
	}
	if !changed {
		return
	}

	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	setup, err := w.load()
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	w.current = setup
	w.mu.Unlock()

	w.logger.Info("menu config reloaded", "items", len(setup.Items))
	if reloadCallback != nil {
		reloadCallback(setup)
	}
}

func (w *ConfigWatcher) load() (*MenuSetup, error) {
	cfg := config.DefaultConfig()
	if w.menuPath != "" {
		loaded, err := config.Load(w.menuPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if loaded != nil {
			cfg = loaded
		}
	}

	var bindings *config.Bindings
	if w.bindingsPath != "" {
		b, err := config.LoadBindings(w.bindingsPath, w.logger)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to reload bindings: %w", err)
		}
		bindings = b
	}
	return ResolveMenu(cfg, bindings, w.confirm)
}
