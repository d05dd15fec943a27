// Package pad is a terminal remote control for the overlay. Key presses
// become overlay commands sent over the unix socket or D-Bus.
package pad

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/locale"
)

// SendFunc delivers commands to the overlay.
type SendFunc func(ctx context.Context, cmds ...command.Command) error

// SendTimeout bounds each send.
const SendTimeout = 2 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	heldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// holdButtons are the buttons the pad can hold, in display order.
var holdButtons = []buttons.Button{buttons.Y, buttons.X, buttons.Start}

// Model is the pad's bubbletea model.
type Model struct {
	send    SendFunc
	target  string
	strings *locale.Strings
	now     func() time.Time

	keys KeyMap
	help help.Model

	held map[buttons.Button]bool

	sent     int
	last     string
	lastAt   time.Time
	lastErr  error
	width    int
	quitting bool
}

// New creates a pad sending through send. target names the destination in
// the header.
func New(send SendFunc, target string, strs *locale.Strings) Model {
	if strs == nil {
		strs = locale.MustNew("en")
	}
	return Model{
		send:    send,
		target:  target,
		strings: strs,
		now:     time.Now,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		held:    make(map[buttons.Button]bool),
	}
}

type sentMsg struct {
	cmds []command.Command
	at   time.Time
	err  error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the clock that refreshes the relative time in the status line.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case sentMsg:
		m.lastAt = msg.at
		m.lastErr = msg.err
		names := make([]string, len(msg.cmds))
		for i, c := range msg.cmds {
			names[i] = c.String()
		}
		m.last = strings.Join(names, ", ")
		if msg.err == nil {
			m.sent += len(msg.cmds)
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		release := m.releaseAll()
		if len(release) == 0 {
			return m, tea.Quit
		}
		m.quitting = true
		return m, m.dispatch(release...)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		return m, m.dispatch(command.Command{Kind: command.Toggle})
	case key.Matches(msg, m.keys.Up):
		return m, m.dispatch(command.Command{Kind: command.Up})
	case key.Matches(msg, m.keys.Down):
		return m, m.dispatch(command.Command{Kind: command.Down})
	case key.Matches(msg, m.keys.Select):
		return m, m.dispatch(command.Command{Kind: command.Select})
	case key.Matches(msg, m.keys.Back):
		return m, m.dispatch(command.Command{Kind: command.Back})
	case key.Matches(msg, m.keys.Popup):
		return m, m.dispatch(command.NewPopup("Test achievement", "Sent from the remote pad"))
	case key.Matches(msg, m.keys.HoldY):
		return m.toggleHold(buttons.Y)
	case key.Matches(msg, m.keys.HoldX):
		return m.toggleHold(buttons.X)
	case key.Matches(msg, m.keys.HoldStart):
		return m.toggleHold(buttons.Start)
	}
	return m, nil
}

// toggleHold presses button on the first key and releases it on the next.
// A terminal sees no key-up events.
func (m Model) toggleHold(b buttons.Button) (tea.Model, tea.Cmd) {
	held := maps.Clone(m.held)
	if held == nil {
		held = make(map[buttons.Button]bool)
	}
	kind := command.HoldStart
	if held[b] {
		kind = command.HoldRelease
		delete(held, b)
	} else {
		held[b] = true
	}
	m.held = held
	return m, m.dispatch(command.Command{Kind: kind, Button: b})
}

func (m Model) releaseAll() []command.Command {
	var out []command.Command
	for _, b := range holdButtons {
		if m.held[b] {
			out = append(out, command.Command{Kind: command.HoldRelease, Button: b})
		}
	}
	return out
}

// Held returns the buttons currently held, in display order.
func (m Model) Held() []buttons.Button {
	var out []buttons.Button
	for _, b := range holdButtons {
		if m.held[b] {
			out = append(out, b)
		}
	}
	return out
}

func (m Model) dispatch(cmds ...command.Command) tea.Cmd {
	send, now := m.send, m.now
	cmds = slices.Clone(cmds)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
		defer cancel()
		var err error
		if send != nil {
			err = send(ctx, cmds...)
		} else {
			err = command.ErrNotRunning
		}
		return sentMsg{cmds: cmds, at: now(), err: err}
	}
}

// View renders the pad.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("cheevo pad"))
	b.WriteString(targetStyle.Render(m.target))
	b.WriteString("\n\n")

	for _, btn := range holdButtons {
		label := fmt.Sprintf("[%s]", btn)
		if m.held[btn] {
			b.WriteString(heldStyle.Render(label + " held"))
		} else {
			b.WriteString(idleStyle.Render(label))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	if m.last == "" {
		return idleStyle.Render("nothing sent yet")
	}
	when := humanize.RelTime(m.lastAt, m.now(), "ago", "from now")
	if m.lastErr != nil {
		return errStyle.Render(fmt.Sprintf("%s failed %s: %v", m.last, when, m.lastErr))
	}
	return okStyle.Render(fmt.Sprintf("%s sent %s", m.last, when)) +
		idleStyle.Render("  ("+m.strings.Plural(locale.CommandsSent, m.sent)+")")
}

// Run starts the pad on the terminal.
func Run(send SendFunc, target string, strs *locale.Strings) error {
	p := tea.NewProgram(New(send, target, strs))
	_, err := p.Run()
	return err
}
