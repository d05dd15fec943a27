package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/command"
)

var sendCmd = &cobra.Command{
	Use:   "send <COMMAND>...",
	Short: "Send control lines to the overlay",
	Long: `Send one or more control lines to the running overlay.

Each argument is one line of the control protocol:

  MENU_TOGGLE, MENU_UP, MENU_DOWN, MENU_SELECT, MENU_BACK
  POPUP title|description
  BIND <button>, HOLD_START <button>, HOLD_RELEASE <button>

Examples:
  cheevo send MENU_TOGGLE
  cheevo send MENU_DOWN MENU_SELECT
  cheevo send "HOLD_START y"
  cheevo --dbus send MENU_BACK`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var popupCmd = &cobra.Command{
	Use:   "popup <title> [description]",
	Short: "Show a test achievement popup",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := ""
		if len(args) > 1 {
			desc = args[1]
		}
		return deliver(cmd, command.NewPopup(args[0], desc))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(popupCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cmds := make([]command.Command, 0, len(args))
	for _, arg := range args {
		c, err := command.ParseStrict(arg)
		if err != nil {
			return err
		}
		cmds = append(cmds, c)
	}
	return deliver(cmd, cmds...)
}

func deliver(cmd *cobra.Command, cmds ...command.Command) error {
	send, target := sendFunc()
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if err := send(ctx, cmds...); err != nil {
		if errors.Is(err, command.ErrNotRunning) {
			return fmt.Errorf("%w (target %s)", err, target)
		}
		return err
	}
	logger.Debug("sent commands", "target", target, "count", len(cmds))
	return nil
}
