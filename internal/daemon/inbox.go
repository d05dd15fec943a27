package daemon

import (
	"log/slog"
	"sync/atomic"

	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/model"
)

// DefaultInboxSize is the event buffer used by cheevod.
const DefaultInboxSize = 64

// EventKind tells which field of an Event is set.
type EventKind int

const (
	EventAchievement EventKind = iota
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventAchievement:
		return "achievement"
	case EventCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event is something that happened outside the tick loop.
type Event struct {
	Kind        EventKind
	Achievement *model.Achievement
	Command     command.Command
}

// Inbox hands events from producer goroutines to the tick loop.
type Inbox struct {
	ch      chan Event
	logger  *slog.Logger
	dropped atomic.Uint64
}

// NewInbox creates an inbox buffering up to size events.
func NewInbox(size int, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{ch: make(chan Event, size), logger: logger}
}

// Post queues ev without blocking. When the buffer is full the event is
// dropped and false is returned.
func (i *Inbox) Post(ev Event) bool {
	select {
	case i.ch <- ev:
		return true
	default:
		i.dropped.Add(1)
		i.logger.Warn("inbox full, dropping event", "kind", ev.Kind, "dropped", i.dropped.Load())
		return false
	}
}

// PostAchievement queues an achievement. It matches watcher.AchievementHandler.
func (i *Inbox) PostAchievement(a *model.Achievement) {
	if a == nil {
		return
	}
	i.Post(Event{Kind: EventAchievement, Achievement: a})
}

// PostCommand queues a command. It matches command.Handler.
func (i *Inbox) PostCommand(c command.Command) {
	i.Post(Event{Kind: EventCommand, Command: c})
}

// Drain calls fn for every buffered event and returns how many there were.
// It never waits for new events.
func (i *Inbox) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-i.ch:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Len returns the number of buffered events.
func (i *Inbox) Len() int { return len(i.ch) }

// Dropped returns how many events were discarded because the inbox was full.
func (i *Inbox) Dropped() uint64 { return i.dropped.Load() }
