package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/cheevo/internal/config"
)

var configOpts struct {
	format string
	force  bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the overlay configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved menu configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the menu.toml and bindings.toml search chains",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default menu.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)

	configShowCmd.Flags().StringVarP(&configOpts.format, "format", "f", "toml",
		"Output format (toml, yaml)")
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path := loadConfig()
	if path == "" {
		path = "built-in defaults"
	}
	out := cmd.OutOrStdout()

	switch configOpts.format {
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "# source: %s\n%s", path, data)
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "# source: %s\n%s", path, data)
	default:
		return fmt.Errorf("unknown format %q (want toml or yaml)", configOpts.format)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	root := themeRoot()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "theme root: %s\n", root)

	list := func(title string, paths []string) {
		_, _ = fmt.Fprintln(out, title+":")
		for _, p := range paths {
			mark := " "
			if _, err := os.Stat(p); err == nil {
				mark = "*"
			}
			_, _ = fmt.Fprintf(out, "  %s %s\n", mark, p)
		}
	}
	list("menu.toml", config.MenuCandidates(root))
	list("bindings.toml", config.BindingsCandidates(root))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(config.UserDir, "menu.toml")
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !configOpts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	return nil
}
