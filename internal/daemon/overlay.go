package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/cheevo/internal/audio"
	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/menu"
	"github.com/jmylchreest/cheevo/internal/popup"
	"github.com/jmylchreest/cheevo/internal/render"
	"github.com/jmylchreest/cheevo/internal/retroarch"
	"github.com/jmylchreest/cheevo/internal/surface"
)

// StatusPollInterval is how often the running game is queried while the
// menu is visible.
const StatusPollInterval = 5 * time.Second

// SoundPlayer plays UI sound effects.
type SoundPlayer interface {
	Play(effect audio.Effect)
}

// StatusQuerier reports what RetroArch is running.
type StatusQuerier interface {
	Status(ctx context.Context) (retroarch.Status, error)
}

// Options wire an Overlay. Compositor, Surface and Inbox are required.
type Options struct {
	Setup      *MenuSetup
	Compositor *render.Compositor
	Surface    surface.Surface
	Inbox      *Inbox
	Dispatcher *Dispatcher
	Sounds     SoundPlayer
	Status     StatusQuerier
	Logger     *slog.Logger
}

// Overlay is the tick loop. The menu and popup queue belong to the
// goroutine running Run (or calling Step); everything else reaches them
// through the inbox or the pending setters.
type Overlay struct {
	logger     *slog.Logger
	inbox      *Inbox
	surface    surface.Surface
	dispatcher *Dispatcher
	sounds     SoundPlayer
	status     StatusQuerier

	cfg        *config.Config
	menu       *menu.Menu
	hints      []menu.Hint
	queue      *popup.Queue
	compositor *render.Compositor
	shown      bool

	lastPoll time.Time
	polling  atomic.Bool
	game     atomic.Value // string

	mu                sync.Mutex
	pendingSetup      *MenuSetup
	pendingCompositor *render.Compositor
}

// NewOverlay creates an overlay with a closed menu and an empty queue.
func NewOverlay(opts Options) *Overlay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	setup := opts.Setup
	if setup == nil {
		setup, _ = ResolveMenu(nil, nil, ConfirmHint("Select"))
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher(nil, logger)
	}

	o := &Overlay{
		logger:     logger,
		inbox:      opts.Inbox,
		surface:    opts.Surface,
		dispatcher: dispatcher,
		sounds:     opts.Sounds,
		status:     opts.Status,
		cfg:        setup.Config,
		menu:       menu.New(setup.Items),
		hints:      setup.Hints,
		queue:      popup.NewQueue(),
		compositor: opts.Compositor,
	}
	o.queue.SetLimit(o.cfg.Overlay.MaxQueued)
	o.game.Store("")
	return o
}

// Menu returns the menu. Only the tick goroutine may use it.
func (o *Overlay) Menu() *menu.Menu { return o.menu }

// Queue returns the popup queue. Only the tick goroutine may use it.
func (o *Overlay) Queue() *popup.Queue { return o.queue }

// Game returns the last known running game name.
func (o *Overlay) Game() string { return o.game.Load().(string) }

// Reload schedules a new menu setup. It is applied on the first tick that
// finds the menu closed. Safe for concurrent use.
func (o *Overlay) Reload(setup *MenuSetup) {
	if setup == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingSetup = setup
}

// SetCompositor schedules a compositor swap, e.g. after a theme change.
// Safe for concurrent use.
func (o *Overlay) SetCompositor(c *render.Compositor) {
	if c == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingCompositor = c
}

// Run ticks at the configured frame rate until ctx is cancelled, then hides
// the surface.
func (o *Overlay) Run(ctx context.Context) error {
	interval := o.cfg.Overlay.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.logger.Info("overlay running", "fps", o.cfg.Overlay.FPS, "items", len(o.menu.Items()))

	for {
		select {
		case <-ctx.Done():
			if o.shown {
				if err := o.surface.Hide(); err != nil {
					o.logger.Warn("failed to hide surface", "error", err)
				}
				o.shown = false
			}
			return nil
		case now := <-ticker.C:
			o.Step(ctx, now)
		}
	}
}

// Step runs one tick at now.
func (o *Overlay) Step(ctx context.Context, now time.Time) {
	o.applyPending()

	o.inbox.Drain(func(ev Event) { o.handle(ev, now) })

	o.queue.Tick(now)
	o.menu.Tick(now)
	if a := o.menu.CheckHolds(now); a != nil {
		o.play(audio.Select)
		o.dispatcher.Dispatch(a)
	}

	if o.menu.IsVisible() {
		o.pollStatus(ctx, now)
	}

	o.present(now)
}

func (o *Overlay) applyPending() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pendingCompositor != nil {
		o.compositor = o.pendingCompositor
		o.pendingCompositor = nil
	}
	if o.pendingSetup != nil && o.menu.SetItems(o.pendingSetup.Items) {
		o.cfg = o.pendingSetup.Config
		o.hints = o.pendingSetup.Hints
		o.queue.SetLimit(o.cfg.Overlay.MaxQueued)
		o.logger.Debug("applied menu setup", "items", len(o.pendingSetup.Items))
		o.pendingSetup = nil
	}
}

func (o *Overlay) handle(ev Event, now time.Time) {
	switch ev.Kind {
	case EventAchievement:
		o.enqueue(popup.FromAchievement(ev.Achievement, now))
	case EventCommand:
		o.apply(ev.Command, now)
	}
}

func (o *Overlay) enqueue(p *popup.Popup) {
	if dropped := o.queue.Push(p); dropped != nil {
		o.logger.Warn("popup queue full, dropped oldest", "title", dropped.Title)
	}
	o.logger.Info("achievement queued", "title", p.Title, "queued", o.queue.Len())
	o.play(audio.Achievement)
}

func (o *Overlay) apply(c command.Command, now time.Time) {
	o.logger.Debug("applying command", "command", c.Kind, "state", o.menu.State())

	switch c.Kind {
	case command.Toggle:
		before := o.menu.State()
		o.menu.Toggle(now)
		switch {
		case before == menu.Closed && o.menu.State() == menu.Opening:
			o.lastPoll = time.Time{}
			o.play(audio.Select)
		case o.menu.State() == menu.Closing && before != menu.Closing:
			o.play(audio.Back)
		}
	case command.Up, command.Down:
		before := o.menu.Cursor()
		if c.Kind == command.Up {
			o.menu.MoveUp()
		} else {
			o.menu.MoveDown()
		}
		if o.menu.Cursor() != before {
			o.play(audio.Scroll)
		}
	case command.Select:
		before := o.menu.State()
		a := o.menu.Select(now)
		if a != nil || o.menu.State() != before {
			o.play(audio.Select)
		}
		o.dispatcher.Dispatch(a)
	case command.Back:
		before := o.menu.State()
		o.menu.Back(now)
		if o.menu.State() != before {
			o.play(audio.Back)
		}
	case command.Popup:
		o.enqueue(popup.New(c.Title, c.Description, now))
	case command.Bind:
		if a := o.menu.ActivateBind(c.Button, now); a != nil {
			o.play(audio.Select)
			o.dispatcher.Dispatch(a)
		}
	case command.HoldStart:
		o.menu.HoldStart(c.Button, now)
	case command.HoldRelease:
		o.menu.HoldRelease(c.Button)
	}
}

func (o *Overlay) play(e audio.Effect) {
	if o.sounds != nil {
		o.sounds.Play(e)
	}
}

// pollStatus refreshes the game name in the background so a slow or absent
// RetroArch never stalls a frame.
func (o *Overlay) pollStatus(ctx context.Context, now time.Time) {
	if o.status == nil {
		return
	}
	if !o.lastPoll.IsZero() && now.Sub(o.lastPoll) < StatusPollInterval {
		return
	}
	if !o.polling.CompareAndSwap(false, true) {
		return
	}
	o.lastPoll = now

	go func() {
		defer o.polling.Store(false)
		qctx, cancel := context.WithTimeout(ctx, retroarch.DefaultTimeout)
		defer cancel()

		st, err := o.status.Status(qctx)
		if err != nil {
			o.logger.Debug("retroarch status unavailable", "error", err)
			o.game.Store("")
			return
		}
		game := ""
		if st.Playing() {
			game = st.Game
		}
		o.game.Store(game)
	}()
}

func (o *Overlay) present(now time.Time) {
	current := o.queue.Current()
	visible := o.menu.IsVisible() || (current != nil && !current.IsDone())

	if !visible {
		if o.shown {
			if err := o.surface.Hide(); err != nil {
				o.logger.Warn("failed to hide surface", "error", err)
			}
			o.shown = false
		}
		return
	}

	frame := o.compositor.Render(render.Scene{
		Popup: current,
		Menu:  o.menu,
		Hints: o.hints,
		Game:  o.Game(),
		Now:   now,
	}, o.cfg.Overlay.ScreenWidth, o.cfg.Overlay.ScreenHeight)

	if err := o.surface.Present(frame); err != nil {
		o.logger.Warn("failed to present frame", "error", err)
		return
	}
	o.shown = true
	o.menu.ClearDirty()
}
