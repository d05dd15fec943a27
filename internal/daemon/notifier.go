package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/cheevo/internal/command"
)

// InternalNotifier shows toasts about cheevod's own events (reloads, load
// errors). The same key is not repeated within minInterval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	post func(command.Command)

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a notifier posting popups through post,
// usually Inbox.PostCommand.
func NewInternalNotifier(post func(command.Command), logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		post:           post,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal toasts.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between toasts with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify posts a toast unless disabled or rate-limited. It reports whether
// the toast was posted.
func (n *InternalNotifier) Notify(key, title, description string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled || n.post == nil {
		return false
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("internal notification rate-limited", "key", key)
		return false
	}
	n.lastNotifyTime[key] = now

	n.logger.Debug("sending internal notification", "key", key, "title", title)
	n.post(command.NewPopup(title, description))
	return true
}

// NotifyConfigReloaded reports a successful menu config reload.
func (n *InternalNotifier) NotifyConfigReloaded() bool {
	return n.Notify("config-reload", "Menu reloaded", "The quick menu configuration was reloaded.")
}

// NotifyConfigError reports a rejected menu config.
func (n *InternalNotifier) NotifyConfigError(err error) bool {
	return n.Notify("config-error", "Menu config error", err.Error())
}

// NotifyThemeReloaded reports a theme change.
func (n *InternalNotifier) NotifyThemeReloaded(root string) bool {
	return n.Notify("theme-reload", "Theme reloaded", root)
}
