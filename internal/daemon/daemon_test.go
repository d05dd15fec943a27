package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/audio"
	"github.com/jmylchreest/cheevo/internal/buttons"
	"github.com/jmylchreest/cheevo/internal/command"
	"github.com/jmylchreest/cheevo/internal/config"
	"github.com/jmylchreest/cheevo/internal/menu"
	"github.com/jmylchreest/cheevo/internal/model"
	"github.com/jmylchreest/cheevo/internal/popup"
	"github.com/jmylchreest/cheevo/internal/render"
	"github.com/jmylchreest/cheevo/internal/retroarch"
	"github.com/jmylchreest/cheevo/internal/surface"
)

var t0 = time.Date(2026, 3, 14, 21, 5, 0, 0, time.UTC)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(cmd string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	return true
}

func (f *fakeSender) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeSounds struct {
	played []audio.Effect
}

func (f *fakeSounds) Play(e audio.Effect) { f.played = append(f.played, e) }

type fakeStatus struct {
	status retroarch.Status
	err    error
}

func (f fakeStatus) Status(context.Context) (retroarch.Status, error) { return f.status, f.err }

type harness struct {
	overlay *Overlay
	inbox   *Inbox
	surface *surface.Headless
	sender  *fakeSender
	sounds  *fakeSounds
}

func newHarness(t *testing.T, status StatusQuerier) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Overlay.ScreenWidth = 800
	cfg.Overlay.ScreenHeight = 480

	setup, err := ResolveMenu(cfg, nil, ConfirmHint("Select"))
	require.NoError(t, err)

	h := &harness{
		inbox:   NewInbox(8, nil),
		surface: surface.NewHeadless(nil),
		sender:  &fakeSender{},
		sounds:  &fakeSounds{},
	}
	h.overlay = NewOverlay(Options{
		Setup:      setup,
		Compositor: render.New(render.Options{Menu: cfg.Menu}),
		Surface:    h.surface,
		Inbox:      h.inbox,
		Dispatcher: NewDispatcher(h.sender, nil),
		Sounds:     h.sounds,
		Status:     status,
	})
	return h
}

func (h *harness) step(at time.Time) {
	h.overlay.Step(context.Background(), at)
}

func (h *harness) send(kind command.Kind) {
	h.inbox.PostCommand(command.Command{Kind: kind})
}

func TestInbox_DropsWhenFull(t *testing.T) {
	in := NewInbox(2, nil)
	assert.True(t, in.Post(Event{Kind: EventCommand, Command: command.Command{Kind: command.Up}}))
	assert.True(t, in.Post(Event{Kind: EventCommand, Command: command.Command{Kind: command.Down}}))
	assert.False(t, in.Post(Event{Kind: EventCommand, Command: command.Command{Kind: command.Back}}))
	assert.Equal(t, uint64(1), in.Dropped())
	assert.Equal(t, 2, in.Len())

	var kinds []command.Kind
	n := in.Drain(func(ev Event) { kinds = append(kinds, ev.Command.Kind) })
	assert.Equal(t, 2, n)
	assert.Equal(t, []command.Kind{command.Up, command.Down}, kinds)
	assert.Zero(t, in.Drain(func(Event) {}))
}

func TestInbox_IgnoresNilAchievement(t *testing.T) {
	in := NewInbox(1, nil)
	in.PostAchievement(nil)
	assert.Zero(t, in.Len())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "achievement", EventAchievement.String())
	assert.Equal(t, "command", EventCommand.String())
	assert.Equal(t, "unknown", EventKind(9).String())
}

func TestDispatcher(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)
	var shells []string
	d.shell = func(c string) error {
		shells = append(shells, c)
		return nil
	}

	d.Dispatch(nil)
	d.Dispatch(&menu.Action{Kind: menu.Dismiss, ItemID: "resume"})
	d.Dispatch(&menu.Action{Kind: menu.RetroArch, Command: "SAVE_STATE"})
	d.Dispatch(&menu.Action{Kind: menu.Shell, Command: "echo hi"})

	assert.Equal(t, []string{"SAVE_STATE"}, sender.commands())
	assert.Equal(t, []string{"echo hi"}, shells)
}

func TestDispatcher_ShellRunsAsync(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	d := NewDispatcher(nil, nil)
	d.Dispatch(&menu.Action{Kind: menu.Shell, Command: "touch " + marker})

	assert.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_NoRetroArchClient(t *testing.T) {
	d := NewDispatcher(nil, nil)
	assert.NotPanics(t, func() {
		d.Dispatch(&menu.Action{Kind: menu.RetroArch, Command: "QUIT"})
	})
}

func TestInternalNotifier_RateLimits(t *testing.T) {
	var posted []command.Command
	n := NewInternalNotifier(func(c command.Command) { posted = append(posted, c) }, nil)
	clock := t0
	n.now = func() time.Time { return clock }

	assert.True(t, n.NotifyConfigReloaded())
	assert.False(t, n.NotifyConfigReloaded(), "same key within the interval")
	assert.True(t, n.NotifyConfigError(errors.New("bad width")), "different key")

	clock = clock.Add(6 * time.Second)
	assert.True(t, n.NotifyConfigReloaded())

	require.Len(t, posted, 3)
	assert.Equal(t, command.Popup, posted[0].Kind)
	assert.Equal(t, "Menu reloaded", posted[0].Title)
	assert.Equal(t, "bad width", posted[1].Description)

	n.SetEnabled(false)
	clock = clock.Add(time.Minute)
	assert.False(t, n.NotifyThemeReloaded("/themes/x"))
}

func TestResolveMenu(t *testing.T) {
	confirm := ConfirmHint("Select")

	t.Run("menu.toml items", func(t *testing.T) {
		setup, err := ResolveMenu(nil, nil, confirm)
		require.NoError(t, err)
		require.Len(t, setup.Items, 4)
		assert.Equal(t, "resume", setup.Items[0].ID)
		require.NotEmpty(t, setup.Hints)
		assert.Equal(t, confirm, setup.Hints[0])
	})

	t.Run("bindings win", func(t *testing.T) {
		b := config.DefaultBindings()
		setup, err := ResolveMenu(config.DefaultConfig(), b, confirm)
		require.NoError(t, err)
		assert.Len(t, setup.Items, len(b.Menu))
		assert.Equal(t, b.HintBar(), setup.Hints)
	})
}

func TestConfigWatcher_ReloadsAndRejects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.toml")
	require.NoError(t, os.WriteFile(path, []byte("[menu]\ntitle = \"ONE\"\n"), 0o644))

	w := NewConfigWatcher(path, "", ConfirmHint("Select"), nil)
	w.SetPollInterval(10 * time.Millisecond)
	reloads := make(chan *MenuSetup, 4)
	errs := make(chan error, 4)
	w.SetReloadCallback(func(s *MenuSetup) { reloads <- s })
	w.SetErrorCallback(func(err error) { errs <- err })

	require.NoError(t, w.Start(context.Background(), nil))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[menu]\ntitle = \"TWO\"\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case s := <-reloads:
		assert.Equal(t, "TWO", s.Config.Menu.Title)
		assert.Same(t, s, w.Current())
	case <-time.After(2 * time.Second):
		t.Fatal("reload not reported")
	}

	require.NoError(t, os.WriteFile(path, []byte("[menu]\nwidth = 5\n"), 0o644))
	later := future.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case err := <-errs:
		var ve *config.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "TWO", w.Current().Config.Menu.Title, "last valid setup is kept")
	case <-time.After(2 * time.Second):
		t.Fatal("validation error not reported")
	}
}

func TestOverlay_IdleStaysHidden(t *testing.T) {
	h := newHarness(t, nil)
	h.step(t0)
	assert.False(t, h.surface.Visible())
	assert.Zero(t, h.surface.Presents())
}

func TestOverlay_AchievementLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	a, err := model.NewAchievement(model.SourceLog, "First Blood", "Defeat a boss")
	require.NoError(t, err)
	h.inbox.PostAchievement(a)

	h.step(t0)
	assert.True(t, h.surface.Visible())
	assert.Equal(t, []audio.Effect{audio.Achievement}, h.sounds.played)
	require.NotNil(t, h.overlay.Queue().Current())
	assert.Equal(t, "First Blood", h.overlay.Queue().Current().Title)

	h.step(t0.Add(popup.TotalDuration + time.Millisecond))
	assert.False(t, h.surface.Visible())
	assert.Zero(t, h.overlay.Queue().Len())
}

func TestOverlay_MenuNavigationDispatches(t *testing.T) {
	h := newHarness(t, nil)

	h.send(command.Toggle)
	h.step(t0)
	assert.Equal(t, menu.Opening, h.overlay.Menu().State())
	assert.True(t, h.surface.Visible())

	now := t0.Add(menu.OpenDuration + time.Millisecond)
	h.step(now)
	require.Equal(t, menu.Open, h.overlay.Menu().State())

	h.send(command.Down)
	h.send(command.Select)
	h.step(now.Add(time.Millisecond))

	assert.Equal(t, []string{"SAVE_STATE"}, h.sender.commands())
	assert.Equal(t, menu.Closing, h.overlay.Menu().State())
	assert.Equal(t, []audio.Effect{audio.Select, audio.Scroll, audio.Select}, h.sounds.played)

	h.step(now.Add(time.Second))
	assert.Equal(t, menu.Closed, h.overlay.Menu().State())
	assert.False(t, h.surface.Visible())
}

func TestOverlay_ConfirmAndBack(t *testing.T) {
	h := newHarness(t, nil)
	h.send(command.Toggle)
	h.step(t0)
	now := t0.Add(time.Second)
	h.step(now)

	h.send(command.Up) // wraps to quit, which needs confirmation
	h.send(command.Select)
	h.step(now)
	assert.Equal(t, menu.Confirming, h.overlay.Menu().State())
	assert.Empty(t, h.sender.commands())

	h.send(command.Back)
	h.step(now)
	assert.Equal(t, menu.Open, h.overlay.Menu().State())
	assert.Equal(t, 3, h.overlay.Menu().Cursor())

	h.send(command.Back)
	h.step(now)
	assert.Equal(t, menu.Closing, h.overlay.Menu().State())
	assert.Equal(t,
		[]audio.Effect{audio.Select, audio.Scroll, audio.Select, audio.Back, audio.Back},
		h.sounds.played)
}

func TestOverlay_HoldFires(t *testing.T) {
	h := newHarness(t, nil)
	h.send(command.Toggle)
	h.step(t0)
	now := t0.Add(time.Second)
	h.step(now)

	h.inbox.PostCommand(command.Command{Kind: command.HoldStart, Button: buttons.Y})
	h.step(now)
	h.step(now.Add(menu.DefaultHoldDuration / 2))
	assert.Empty(t, h.sender.commands())

	h.step(now.Add(menu.DefaultHoldDuration))
	assert.Equal(t, []string{"SAVE_STATE"}, h.sender.commands())
}

func TestOverlay_BindAndPopupCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.send(command.Toggle)
	h.step(t0)
	now := t0.Add(time.Second)
	h.step(now)

	h.inbox.PostCommand(command.NewPopup("Hello", "World"))
	h.inbox.PostCommand(command.Command{Kind: command.Bind, Button: buttons.B})
	h.step(now)

	assert.Equal(t, menu.Closing, h.overlay.Menu().State(), "b resumes")
	assert.Equal(t, 1, h.overlay.Queue().Len())
	assert.Empty(t, h.sender.commands(), "resume is a dismiss action")
}

func TestOverlay_ReloadWaitsForClosedMenu(t *testing.T) {
	h := newHarness(t, nil)
	h.send(command.Toggle)
	h.step(t0)

	cfg := config.DefaultConfig()
	cfg.Overlay.ScreenWidth = 800
	cfg.Overlay.ScreenHeight = 480
	cfg.Menu.Items = cfg.Menu.Items[:1]
	setup, err := ResolveMenu(cfg, nil, ConfirmHint("Select"))
	require.NoError(t, err)
	h.overlay.Reload(setup)

	h.step(t0.Add(time.Second))
	assert.Len(t, h.overlay.Menu().Items(), 4, "not swapped while open")

	h.send(command.Toggle)
	h.step(t0.Add(2 * time.Second))
	h.step(t0.Add(3 * time.Second))
	require.Equal(t, menu.Closed, h.overlay.Menu().State())

	h.step(t0.Add(4 * time.Second))
	assert.Len(t, h.overlay.Menu().Items(), 1)
}

func TestOverlay_PollsGameWhileMenuVisible(t *testing.T) {
	h := newHarness(t, fakeStatus{status: retroarch.Status{State: "PLAYING", Core: "genesis", Game: "Sonic, the Hedgehog"}})
	h.step(t0)
	assert.Empty(t, h.overlay.Game(), "not polled while hidden")

	h.send(command.Toggle)
	h.step(t0)
	assert.Eventually(t, func() bool {
		return h.overlay.Game() == "Sonic, the Hedgehog"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOverlay_RunHidesOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.send(command.Toggle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.overlay.Run(ctx) }()

	assert.Eventually(t, func() bool { return h.surface.Presents() > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, h.surface.Visible())
}

func TestLoadResources_FallsBackToBuiltins(t *testing.T) {
	root := t.TempDir()
	overlay := config.DefaultConfig().Overlay
	overlay.Language = "xx-invalid-!!"

	r := LoadResources(root, overlay, nil)
	require.NotNil(t, r.Theme)
	require.NotNil(t, r.Fonts)
	require.NotNil(t, r.Strings)
	require.NotNil(t, r.Icons)
	assert.Zero(t, r.Icons.Len())
	assert.Nil(t, r.Badge)
	assert.Equal(t, buttons.A, r.ConfirmHint().Button)
	assert.NotNil(t, r.Compositor(config.DefaultConfig().Menu))
}
