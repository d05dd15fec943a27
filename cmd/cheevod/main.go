// Package main is the entry point for the cheevod overlay daemon.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/audio"
	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/daemon"
	"github.com/jmylchreest/cheevo/internal/history"
	"github.com/jmylchreest/cheevo/internal/retroarch"
	"github.com/jmylchreest/cheevo/internal/surface"
	"github.com/jmylchreest/cheevo/internal/theme"
	"github.com/jmylchreest/cheevo/internal/watcher"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
)

var opts struct {
	logPath          string
	socketPath       string
	themeRoot        string
	snapshotDir      string
	snapshotInterval time.Duration
	verbose          bool
	quiet            bool
	noHistory        bool
}

var rootCmd = &cobra.Command{
	Use:   "cheevod",
	Short: "Achievement toast and quick menu overlay daemon",
	Long: `cheevod watches the RetroArch log for unlocked achievements and shows them
as toasts, and drives the in-game quick menu from commands received on its
unix socket or the D-Bus session bus.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.logPath, "log", "", "RetroArch log file to watch (default: overlay.log_path)")
	f.StringVar(&opts.socketPath, "socket", "", "Control socket path (default: overlay.socket_path)")
	f.StringVar(&opts.themeRoot, "theme-root", "", "EmulationStation theme root (default: auto-detected)")
	f.StringVar(&opts.snapshotDir, "snapshot-dir", "", "Write PNG snapshots of presented frames to this directory")
	f.DurationVar(&opts.snapshotInterval, "snapshot-interval", 500*time.Millisecond, "Minimum time between snapshots")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&opts.quiet, "quiet", false, "Do not show toasts about config and theme reloads")
	f.BoolVar(&opts.noHistory, "no-history", false, "Do not record achievements to the history file")
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	started := time.Now()

	root := opts.themeRoot
	if root == "" {
		root = config.ThemeRoot()
	}
	logger.Info("starting cheevod", "version", version, "theme_root", root)

	cfg, menuPath := config.FindAndLoad(root, logger)
	bindings, bindingsPath := config.FindBindings(root, logger)
	if bindingsPath == "" {
		bindings = nil
	}
	if opts.logPath != "" {
		cfg.Overlay.LogPath = opts.logPath
	}
	if opts.socketPath != "" {
		cfg.Overlay.SocketPath = opts.socketPath
	}

	res := daemon.LoadResources(root, cfg.Overlay, logger)
	setup, err := daemon.ResolveMenu(cfg, bindings, res.ConfirmHint())
	if err != nil {
		return fmt.Errorf("failed to resolve menu: %w", err)
	}
	var current atomic.Pointer[daemon.MenuSetup]
	current.Store(setup)
	var resources atomic.Pointer[daemon.Resources]
	resources.Store(res)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inbox := daemon.NewInbox(daemon.DefaultInboxSize, logger)
	notifier := daemon.NewInternalNotifier(inbox.PostCommand, logger)
	notifier.SetEnabled(!opts.quiet)

	// Audio
	player := audio.NewPlayer(logger)
	defer player.Close()
	sounds := audio.NewManager(player, config.SoundsDir(root), cfg.Menu, cfg.Overlay, logger)
	if err := sounds.Start(ctx); err != nil {
		logger.Warn("failed to start sound watcher", "error", err)
	}
	defer sounds.Stop()

	// Surface
	var surf surface.Surface = surface.NewHeadless(logger)
	if opts.snapshotDir != "" {
		snap, err := surface.NewSnapshot(opts.snapshotDir, opts.snapshotInterval, surf, logger)
		if err != nil {
			return err
		}
		surf = snap
		logger.Info("writing frame snapshots", "dir", opts.snapshotDir)
	}
	defer func() { _ = surf.Close() }()

	ra := retroarch.NewClient(cfg.Menu.RetroArch.Addr(), logger)
	overlay := daemon.NewOverlay(daemon.Options{
		Setup:      setup,
		Compositor: res.Compositor(cfg.Menu),
		Surface:    surf,
		Inbox:      inbox,
		Dispatcher: daemon.NewDispatcher(ra, logger),
		Sounds:     sounds,
		Status:     ra,
		Logger:     logger,
	})

	// Achievement source
	onAchievement := inbox.PostAchievement
	if cfg.Overlay.History && !opts.noHistory {
		hist, err := history.Open(cfg.Overlay.HistoryFile())
		if err != nil {
			logger.Warn("achievement history disabled", "error", err)
		} else {
			defer func() { _ = hist.Close() }()
			onAchievement = history.Tee(hist, inbox.PostAchievement, logger)
			logger.Debug("recording achievements", "path", hist.Path())
		}
	}
	logWatcher := watcher.NewLogWatcher(cfg.Overlay.LogPath, onAchievement, logger)
	if err := logWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start log watcher: %w", err)
	}
	defer logWatcher.Stop()

	// Command sources
	listener := command.NewListener(cfg.Overlay.SocketPath, inbox.PostCommand, logger)
	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start command listener: %w", err)
	}
	defer listener.Stop()

	if cfg.Overlay.DBus {
		bus := command.NewBusService(inbox.PostCommand, logger)
		if err := bus.Start(); err != nil {
			logger.Warn("D-Bus service unavailable", "error", err)
		} else {
			defer func() { _ = bus.Stop() }()
		}
	}

	// Hot reload
	if menuPath != "" || bindingsPath != "" {
		configWatcher := daemon.NewConfigWatcher(menuPath, bindingsPath, res.ConfirmHint(), logger)
		configWatcher.SetReloadCallback(func(s *daemon.MenuSetup) {
			current.Store(s)
			overlay.Reload(s)
			overlay.SetCompositor(resources.Load().Compositor(s.Config.Menu))
			sounds.UpdateConfig(s.Config.Menu, s.Config.Overlay)
			notifier.NotifyConfigReloaded()
		})
		configWatcher.SetErrorCallback(func(err error) {
			notifier.NotifyConfigError(err)
		})
		if err := configWatcher.Start(ctx, setup); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}
		defer configWatcher.Stop()
	}

	themeWatcher := theme.NewWatcher(res.Theme, logger)
	themeWatcher.SetChangeCallback(func(*theme.Theme) {
		s := current.Load()
		fresh := daemon.LoadResources(root, s.Config.Overlay, logger)
		resources.Store(fresh)
		overlay.SetCompositor(fresh.Compositor(s.Config.Menu))
		notifier.NotifyThemeReloaded(root)
	})
	if err := themeWatcher.Start(ctx); err != nil {
		logger.Warn("failed to start theme watcher", "error", err)
	}
	defer themeWatcher.Stop()

	logger.Info("cheevod ready",
		"socket", cfg.Overlay.SocketPath,
		"log", cfg.Overlay.LogPath,
		"items", len(setup.Items),
		"fps", cfg.Overlay.FPS,
	)

	err = overlay.Run(ctx)
	logger.Info("cheevod stopped",
		"uptime", humanize.RelTime(started, time.Now(), "", ""),
		"dropped_events", inbox.Dropped(),
	)
	return err
}
