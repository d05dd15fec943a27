// Package surface defines where rendered frames go: a window, a headless
// sink, or PNG snapshots on disk.
package surface

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/cheevo/internal/render"
)

// Surface receives whole frames from the tick loop.
type Surface interface {
	// Present shows frame, making the surface visible if it was hidden.
	Present(frame *render.Frame) error
	// Hide makes the surface invisible.
	Hide() error
	Close() error
}

// Headless tracks visibility and logs transitions.
type Headless struct {
	logger *slog.Logger

	mu       sync.Mutex
	visible  bool
	presents int
	last     *render.Frame
}

// NewHeadless creates a headless surface.
func NewHeadless(logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{logger: logger}
}

func (h *Headless) Present(frame *render.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		h.logger.Debug("surface shown", "width", frame.Width, "height", frame.Height)
	}
	h.visible = true
	h.presents++
	h.last = frame
	return nil
}

func (h *Headless) Hide() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.visible {
		h.logger.Debug("surface hidden")
	}
	h.visible = false
	return nil
}

func (h *Headless) Close() error { return h.Hide() }

// Visible reports whether the last call was Present.
func (h *Headless) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// Presents returns how many frames were presented.
func (h *Headless) Presents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

// Last returns the most recently presented frame.
func (h *Headless) Last() *render.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Snapshot writes presented frames as PNG files, at most once per interval
// and only when the content changed. It wraps another surface.
type Snapshot struct {
	dir      string
	interval time.Duration
	next     Surface
	logger   *slog.Logger

	mu       sync.Mutex
	lastSave time.Time
	lastHash uint64
	count    int
	now      func() time.Time
}

// NewSnapshot creates dir if needed and wraps next (which may be nil).
func NewSnapshot(dir string, interval time.Duration, next Surface, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Snapshot{
		dir:      dir,
		interval: interval,
		next:     next,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Snapshot) Present(frame *render.Frame) error {
	if s.next != nil {
		if err := s.next.Present(frame); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.lastSave.IsZero() && now.Sub(s.lastSave) < s.interval {
		return nil
	}
	h := frameHash(frame)
	if s.count > 0 && h == s.lastHash {
		return nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame-%05d.png", s.count))
	if err := imaging.Save(frame.Image(), path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.lastSave, s.lastHash = now, h
	s.count++
	s.logger.Debug("saved snapshot", "path", path)
	return nil
}

func (s *Snapshot) Hide() error {
	if s.next != nil {
		return s.next.Hide()
	}
	return nil
}

func (s *Snapshot) Close() error {
	if s.next != nil {
		return s.next.Close()
	}
	return nil
}

// Count returns how many snapshots were written.
func (s *Snapshot) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func frameHash(f *render.Frame) uint64 {
	h := fnv.New64a()
	var b [4]byte
	for _, p := range f.Pix {
		b[0], b[1], b[2], b[3] = byte(p), byte(p>>8), byte(p>>16), byte(p>>24)
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}
