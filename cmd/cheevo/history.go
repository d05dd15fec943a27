package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/history"
	"github.com/jmylchreest/cheevo/internal/model"
)

var historyOpts struct {
	file     string
	since    string
	limit    int
	format   string
	template string
}

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List achievements the overlay has shown",
	Long: `List achievements recorded by cheevod, newest first.

Examples:
  # Everything from the last day
  cheevo history --since 24h

  # The ten most recent as JSON
  cheevo history --limit 10 --format json

  # Custom line format
  cheevo history --template '{{.RelativeTime}}: {{.Title}}'`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old achievements from history",
	Long: `Remove old achievements from the history file.

Examples:
  # Remove achievements older than 30 days
  cheevo history prune --older-than 30d

  # Keep only the 200 most recent
  cheevo history prune --keep 200

  # Preview what would be removed
  cheevo history prune --older-than 1w --dry-run`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every achievement from history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := openHistory()
		if err != nil {
			return err
		}
		defer l.Close()
		if err := l.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", l.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd, historyClearCmd)

	historyCmd.PersistentFlags().StringVar(&historyOpts.file, "file", "",
		"History file (default: overlay.history_path or $XDG_DATA_HOME/cheevo/history.jsonl)")

	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Only show achievements newer than this (e.g. 48h, 7d, 1w)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Show at most N achievements (0=unlimited)")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format: plain, json, yaml")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Go template for plain output (fields: .Index .ID .Title .Description .Source .RelativeTime)")

	historyPruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove achievements older than this (e.g. 48h, 7d, 1w)")
	historyPruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent achievements (0=unlimited)")
	historyPruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without removing it")
}

func historyPath() string {
	if historyOpts.file != "" {
		return historyOpts.file
	}
	cfg, _ := loadConfig()
	return cfg.Overlay.HistoryFile()
}

func openHistory() (*history.Log, error) {
	return history.Open(historyPath())
}

func runHistory(cmd *cobra.Command, args []string) error {
	age, err := history.ParseAge(historyOpts.since)
	if err != nil {
		return err
	}
	f, err := history.NewFormatter(history.FormatType(historyOpts.format), history.FormatterOptions{
		Template:   historyOpts.template,
		ShowSource: true,
		DescMaxLen: 100,
	})
	if err != nil {
		return err
	}

	l, err := openHistory()
	if err != nil {
		return err
	}
	defer l.Close()

	entries, err := l.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	entries = history.Since(entries, age, time.Now())
	if historyOpts.limit > 0 && len(entries) > historyOpts.limit {
		entries = entries[:historyOpts.limit]
	}

	return f.Format(cmd.OutOrStdout(), entries)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}
	age, err := history.ParseAge(pruneOpts.olderThan)
	if err != nil {
		return err
	}

	l, err := openHistory()
	if err != nil {
		return err
	}
	defer l.Close()

	entries, err := l.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	out := cmd.OutOrStdout()
	kept, removed := history.Prune(entries, history.PruneOptions{OlderThan: age, Keep: pruneOpts.keep}, time.Now())
	if len(removed) == 0 {
		_, _ = fmt.Fprintln(out, "No achievements to remove")
		return nil
	}

	if pruneOpts.dryRun {
		_, _ = fmt.Fprintf(out, "Would remove %d achievement(s):\n", len(removed))
		listRemoved(cmd, removed)
		return nil
	}

	// The file is append-ordered; keep it oldest first.
	slices.Reverse(kept)
	if err := l.Rewrite(kept); err != nil {
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Removed %d achievement(s), %d remaining\n", len(removed), len(kept))
	return nil
}

func listRemoved(cmd *cobra.Command, removed []model.Achievement) {
	const shown = 10
	f, _ := history.NewPlainFormatter(history.FormatterOptions{})
	if len(removed) > shown {
		_ = f.Format(cmd.OutOrStdout(), removed[:shown])
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  ... and %d more\n", len(removed)-shown)
		return
	}
	_ = f.Format(cmd.OutOrStdout(), removed)
}
