// Package main provides the cheevo CLI: it drives a running overlay, renders
// previews and inspects configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		verbose   bool
		socket    string
		themeRoot string
		dbus      bool
	}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cheevo",
	Short: "Control the achievement and quick menu overlay",
	Long: `cheevo controls the cheevod overlay.

It sends menu commands and test popups over the overlay's unix socket (or
D-Bus with --dbus), renders preview images of the overlay, and shows the
resolved configuration.

Running cheevo without a subcommand launches the interactive remote pad.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPad(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.socket, "socket", "",
		"Overlay control socket (default: overlay.socket_path from menu.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.themeRoot, "theme-root", "",
		"EmulationStation theme root (default: $"+config.ThemeRootEnv+" or auto-detected)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.dbus, "dbus", false,
		"Send commands over the D-Bus session bus instead of the socket")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func themeRoot() string {
	if globalOpts.themeRoot != "" {
		return globalOpts.themeRoot
	}
	return config.ThemeRoot()
}

// loadConfig resolves menu.toml through the search chain.
func loadConfig() (*config.Config, string) {
	return config.FindAndLoad(themeRoot(), logger)
}

func socketPath() string {
	if globalOpts.socket != "" {
		return globalOpts.socket
	}
	cfg, _ := loadConfig()
	return cfg.Overlay.SocketPath
}

// sendFunc returns the transport selected by the global flags, plus a
// description of where it sends.
func sendFunc() (func(ctx context.Context, cmds ...command.Command) error, string) {
	if globalOpts.dbus {
		return func(_ context.Context, cmds ...command.Command) error {
			return command.BusSend(cmds...)
		}, "dbus:" + command.BusName
	}
	path := socketPath()
	return func(ctx context.Context, cmds ...command.Command) error {
		return command.Send(ctx, path, cmds...)
	}, path
}
