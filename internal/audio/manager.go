package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/cheevo/internal/config"
)

// Effect is a UI sound.
type Effect int

const (
	Scroll Effect = iota
	Select
	Back
	Achievement
)

// AchievementSound is the fixed file played for unlocks.
const AchievementSound = "achievement.wav"

func (e Effect) String() string {
	switch e {
	case Scroll:
		return "scroll"
	case Select:
		return "select"
	case Back:
		return "back"
	case Achievement:
		return "achievement"
	default:
		return "unknown"
	}
}

// Manager maps effects to sound files under a sounds directory.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher

	dir     string
	enabled bool
	sounds  map[Effect]string
}

// NewManager creates a manager for sounds in dir, configured from the menu
// sound names and the overlay volume.
func NewManager(player *Player, dir string, menu config.MenuConfig, overlay config.OverlayConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if player == nil {
		player = NewPlayer(logger)
	}

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(logger),
		dir:     dir,
	}
	m.watcher.SetChangeCallback(m.soundChanged)
	m.configure(menu, overlay)
	return m
}

func (m *Manager) configure(menu config.MenuConfig, overlay config.OverlayConfig) {
	names := map[Effect]string{
		Scroll:      menu.SoundScroll,
		Select:      menu.SoundSelect,
		Back:        menu.SoundBack,
		Achievement: AchievementSound,
	}

	sounds := make(map[Effect]string, len(names))
	for effect, name := range names {
		if name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.dir, name)
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Debug("sound file not found", "effect", effect, "path", path)
			continue
		}
		sounds[effect] = path
	}

	m.player.SetVolume(float64(overlay.Volume) / 100)

	m.mu.Lock()
	m.enabled = overlay.Sounds
	m.sounds = sounds
	m.mu.Unlock()
}

// Path returns the file used for effect, if any.
func (m *Manager) Path(effect Effect) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sounds[effect]
	return p, ok
}

func (m *Manager) snapshot() map[Effect]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.sounds)
}

// Start preloads every sound and starts watching them for changes.
func (m *Manager) Start(ctx context.Context) error {
	sounds := m.snapshot()
	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
	if err := m.watcher.Start(ctx); err != nil {
		return err
	}
	m.logger.Info("audio manager started", "sounds", len(sounds), "dir", m.dir)
	return nil
}

// Stop stops the watcher and closes the player.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
}

// Play plays the sound for effect. Missing sounds and disabled audio are
// silently skipped; playback errors are logged.
func (m *Manager) Play(effect Effect) {
	m.mu.RLock()
	path, ok := m.sounds[effect]
	enabled := m.enabled
	m.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	if err := m.player.Play(path); err != nil {
		m.logger.Warn("failed to play sound", "effect", effect, "path", path, "error", err)
	}
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(menu config.MenuConfig, overlay config.OverlayConfig) {
	old := m.snapshot()
	m.configure(menu, overlay)

	for _, path := range old {
		m.watcher.Unwatch(path)
	}
	for _, path := range m.snapshot() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
	m.logger.Debug("audio config updated")
}

// soundChanged re-decodes a sound whose file changed on disk.
func (m *Manager) soundChanged(path string) {
	m.player.Invalidate(path)
	if err := m.player.Preload(path); err != nil {
		m.logger.Warn("failed to reload sound", "path", path, "error", err)
	}
}
