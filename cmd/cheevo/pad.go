package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/cheevo/internal/locale"
	"github.com/jmylchreest/cheevo/internal/pad"
)

var padCmd = &cobra.Command{
	Use:   "pad",
	Short: "Interactive remote pad for the overlay",
	Long: `Drive the overlay from the keyboard.

Arrow keys (or j/k) move the cursor, enter selects, esc goes back and m or
tab toggles the menu. y, x and s press and release the hold buttons; p
shows a test popup.`,
	RunE: runPad,
}

func init() {
	rootCmd.AddCommand(padCmd)
}

func runPad(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig()
	strs, err := locale.New(cfg.Overlay.Language)
	if err != nil {
		logger.Warn("unsupported language, using english", "language", cfg.Overlay.Language)
		strs = nil
	}
	send, target := sendFunc()
	return pad.Run(pad.SendFunc(send), target, strs)
}
