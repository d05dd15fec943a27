package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/retroarch"
)

var retroarchOpts struct {
	addr string
}

var retroarchCmd = &cobra.Command{
	Use:   "retroarch",
	Short: "Talk to RetroArch's network command interface",
}

var retroarchSendCmd = &cobra.Command{
	Use:   "send <COMMAND>",
	Short: "Send a network command such as PAUSE_TOGGLE or SAVE_STATE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := retroarchClient()
		if !client.Send(strings.ToUpper(args[0])) {
			return fmt.Errorf("failed to send %s to %s", args[0], client.Addr())
		}
		return nil
	},
}

var retroarchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what RetroArch is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := retroarchClient()
		ctx, cancel := context.WithTimeout(cmd.Context(), retroarch.DefaultTimeout)
		defer cancel()

		st, err := client.Status(ctx)
		if err != nil {
			return fmt.Errorf("no status from %s: %w", client.Addr(), err)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "State: %s\n", st.State)
		if st.Playing() {
			_, _ = fmt.Fprintf(out, "  Core: %s\n", st.Core)
			_, _ = fmt.Fprintf(out, "  Game: %s\n", st.Game)
			if st.CRC32 != "" {
				_, _ = fmt.Fprintf(out, "  CRC32: %s\n", st.CRC32)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retroarchCmd)
	retroarchCmd.AddCommand(retroarchSendCmd, retroarchStatusCmd)

	retroarchCmd.PersistentFlags().StringVar(&retroarchOpts.addr, "addr", "",
		"RetroArch host:port (default: menu.retroarch from menu.toml)")
}

func retroarchClient() *retroarch.Client {
	addr := retroarchOpts.addr
	if addr == "" {
		cfg, _ := loadConfig()
		addr = cfg.Menu.RetroArch.Addr()
	}
	return retroarch.NewClient(addr, logger)
}
