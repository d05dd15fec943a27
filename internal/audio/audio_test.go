package audio

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/config"
)

type fakeOutput struct {
	mu     sync.Mutex
	inits  int
	plays  int
	closed bool
}

func (f *fakeOutput) Init(beep.SampleRate, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	return nil
}

func (f *fakeOutput) Play(beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
}

func (f *fakeOutput) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeOutput) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays
}

func writeWAV(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(2205), format))
}

func TestPlayer_CacheAndInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blip.wav")
	writeWAV(t, path)

	out := &fakeOutput{}
	p := NewPlayerWithOutput(out, nil)
	require.NoError(t, p.Preload(path))
	assert.True(t, p.Cached(path))
	assert.Equal(t, 1, out.inits)

	require.NoError(t, p.Play(path))
	require.NoError(t, p.Play(path))
	assert.Equal(t, 2, out.playCount())
	assert.Equal(t, 1, out.inits, "output is initialized once")

	p.Invalidate(path)
	assert.False(t, p.Cached(path))

	p.Close()
	assert.True(t, out.closed)
}

func TestPlayer_Errors(t *testing.T) {
	p := NewPlayerWithOutput(&fakeOutput{}, nil)
	assert.NoError(t, p.Play(""))
	assert.Error(t, p.Play(filepath.Join(t.TempDir(), "missing.wav")))

	txt := filepath.Join(t.TempDir(), "sound.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	assert.ErrorContains(t, p.Preload(txt), "unsupported audio format")
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayerWithOutput(&fakeOutput{}, nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())

	assert.InDelta(t, -1.0, volumeToExponent(0.5), 1e-9)
	assert.InDelta(t, -2.0, volumeToExponent(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToExponent(0))
}

func TestManager_PlaysConfiguredEffects(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "scroll.wav"))
	writeWAV(t, filepath.Join(dir, "confirm.wav"))
	writeWAV(t, filepath.Join(dir, AchievementSound))

	cfg := config.DefaultConfig()
	out := &fakeOutput{}
	m := NewManager(NewPlayerWithOutput(out, nil), dir, cfg.Menu, cfg.Overlay, nil)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	_, ok := m.Path(Back)
	assert.False(t, ok, "back.wav is missing and skipped")

	m.Play(Scroll)
	m.Play(Select)
	m.Play(Back)
	m.Play(Achievement)
	assert.Equal(t, 3, out.playCount())

	cfg.Overlay.Sounds = false
	m.UpdateConfig(cfg.Menu, cfg.Overlay)
	m.Play(Scroll)
	assert.Equal(t, 3, out.playCount(), "disabled sounds do not play")
}

func TestWatcher_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scroll.wav")
	writeWAV(t, path)

	w := NewWatcher(nil)
	w.SetPollInterval(10 * time.Millisecond)
	changed := make(chan string, 1)
	w.SetChangeCallback(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})
	w.Watch(path)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case got := <-changed:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("change not reported")
	}
}

func TestEffectString(t *testing.T) {
	assert.Equal(t, "scroll", Scroll.String())
	assert.Equal(t, "achievement", Achievement.String())
	assert.Equal(t, "unknown", Effect(42).String())
}
