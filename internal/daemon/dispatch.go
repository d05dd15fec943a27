package daemon

import (
	"log/slog"
	"os/exec"

	"github.com/jmylchreest/cheevo/internal/menu"
)

// CommandSender delivers RetroArch network commands.
type CommandSender interface {
	Send(cmd string) bool
}

// Dispatcher performs the side effects of executed menu items.
type Dispatcher struct {
	retroarch CommandSender
	logger    *slog.Logger

	// shell starts command without waiting for it.
	shell func(command string) error
}

// NewDispatcher creates a dispatcher sending RetroArch actions through ra,
// which may be nil when RetroArch is unreachable by design.
func NewDispatcher(ra CommandSender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{retroarch: ra, logger: logger}
	d.shell = d.startShell
	return d
}

// Dispatch executes a. A nil action does nothing.
func (d *Dispatcher) Dispatch(a *menu.Action) {
	if a == nil {
		return
	}
	d.logger.Debug("dispatching action", "item", a.ItemID, "action", a.String())

	switch a.Kind {
	case menu.Dismiss:
	case menu.RetroArch:
		if d.retroarch == nil {
			d.logger.Warn("no retroarch client, dropping command", "command", a.Command)
			return
		}
		if !d.retroarch.Send(a.Command) {
			d.logger.Warn("retroarch command not sent", "command", a.Command)
		}
	case menu.Shell:
		if err := d.shell(a.Command); err != nil {
			d.logger.Warn("failed to start shell action", "command", a.Command, "error", err)
		}
	default:
		d.logger.Warn("unknown action kind", "item", a.ItemID, "kind", a.Kind)
	}
}

func (d *Dispatcher) startShell(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			d.logger.Debug("shell action exited", "command", command, "error", err)
		}
	}()
	return nil
}
