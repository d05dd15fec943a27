package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/cheevo/internal/model"
)

// AchievementHandler receives parsed unlocks.
type AchievementHandler func(*model.Achievement)

// LogWatcher follows a log file from its current end and reports unlock
// lines. It survives truncation and recreation of the file.
type LogWatcher struct {
	path    string
	handler AchievementHandler
	logger  *slog.Logger

	waitInterval time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Owned by the run goroutine.
	file    *os.File
	info    os.FileInfo
	offset  int64
	partial string
}

// NewLogWatcher creates a watcher for the log at path.
func NewLogWatcher(path string, handler AchievementHandler, logger *slog.Logger) *LogWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWatcher{
		path:         path,
		handler:      handler,
		logger:       logger,
		waitInterval: 2 * time.Second,
		pollInterval: 5 * time.Second,
	}
}

// SetIntervals sets how often to check for the file to appear and how often
// to re-read it when no events arrive.
func (w *LogWatcher) SetIntervals(wait, poll time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waitInterval = wait
	w.pollInterval = poll
}

// Start begins watching in a goroutine.
func (w *LogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(ctx, w.waitInterval, w.pollInterval)
	return nil
}

// Stop stops watching and waits for the goroutine to exit.
func (w *LogWatcher) Stop() {
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

func (w *LogWatcher) run(ctx context.Context, wait, poll time.Duration) {
	defer close(w.doneCh)
	defer w.closeFile()

	if !w.waitForFile(ctx, wait) {
		return
	}
	if err := w.openAtEnd(); err != nil {
		w.logger.Error("failed to open log", "path", w.path, "error", err)
		return
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("failed to create file watcher", "error", err)
		return
	}
	defer func() { _ = fw.Close() }()

	// Watch the directory so rotation and recreation are seen.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Error("failed to watch log directory", "path", w.path, "error", err)
		return
	}
	w.logger.Info("watching log for achievements", "path", w.path)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.readNew()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("log watcher error", "error", err)
		case <-ticker.C:
			w.readNew()
		}
	}
}

// waitForFile polls until the log exists. It returns false if stopped first.
func (w *LogWatcher) waitForFile(ctx context.Context, interval time.Duration) bool {
	logged := false
	for {
		if _, err := os.Stat(w.path); err == nil {
			return true
		}
		if !logged {
			w.logger.Info("waiting for log file", "path", w.path)
			logged = true
		}
		select {
		case <-ctx.Done():
			return false
		case <-w.stopCh:
			return false
		case <-time.After(interval):
		}
	}
}

func (w *LogWatcher) openAtEnd() error {
	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file, w.info, w.offset, w.partial = f, info, info.Size(), ""
	return nil
}

func (w *LogWatcher) openAtStart() error {
	if err := w.openAtEnd(); err != nil {
		return err
	}
	w.offset = 0
	return nil
}

func (w *LogWatcher) closeFile() {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
}

// readNew reads lines appended since the last read.
func (w *LogWatcher) readNew() {
	info, err := os.Stat(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("failed to stat log", "error", err)
		}
		return
	}

	switch {
	case w.file == nil || !os.SameFile(info, w.info):
		w.closeFile()
		if err := w.openAtStart(); err != nil {
			w.logger.Warn("failed to reopen log", "error", err)
			return
		}
		w.logger.Debug("log recreated, reading from start", "path", w.path)
	case info.Size() < w.offset:
		w.offset, w.partial = 0, ""
		w.logger.Debug("log truncated, reading from start", "path", w.path)
	}

	if err := w.readFrom(); err != nil {
		w.logger.Warn("failed to read log", "error", err)
	}
}

func (w *LogWatcher) readFrom() error {
	if _, err := w.file.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	data, err := io.ReadAll(w.file)
	if err != nil {
		return err
	}
	w.offset += int64(len(data))

	buf := w.partial + string(data)
	lines := strings.Split(buf, "\n")
	w.partial = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		w.handleLine(strings.TrimRight(line, "\r"))
	}
	return nil
}

func (w *LogWatcher) handleLine(line string) {
	parsed, ok := ParseLine(line)
	if !ok {
		return
	}
	a, err := model.NewAchievement(parsed.Source, parsed.Title, parsed.Description)
	if err != nil {
		w.logger.Warn("failed to create achievement", "error", err)
		return
	}
	w.logger.Info("achievement unlocked", "title", a.Title, "id", a.ID)
	if w.handler != nil {
		w.handler(a)
	}
}
