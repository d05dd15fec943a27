package surface

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/render"
)

func TestHeadless(t *testing.T) {
	h := NewHeadless(nil)
	assert.False(t, h.Visible())

	f := render.NewFrame(4, 4)
	require.NoError(t, h.Present(f))
	assert.True(t, h.Visible())
	assert.Same(t, f, h.Last())
	assert.Equal(t, 1, h.Presents())

	require.NoError(t, h.Hide())
	assert.False(t, h.Visible())
	require.NoError(t, h.Close())
}

func TestSnapshot_ThrottlesAndSkipsDuplicates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	inner := NewHeadless(nil)
	s, err := NewSnapshot(dir, 100*time.Millisecond, inner, nil)
	require.NoError(t, err)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	a := render.NewFrame(8, 8)
	a.Pix[0] = 0xFF00FF00
	require.NoError(t, s.Present(a))
	assert.Equal(t, 1, s.Count())

	// Too soon.
	b := render.NewFrame(8, 8)
	require.NoError(t, s.Present(b))
	assert.Equal(t, 1, s.Count())

	// Unchanged content.
	clock = clock.Add(time.Second)
	require.NoError(t, s.Present(a))
	assert.Equal(t, 1, s.Count())

	clock = clock.Add(time.Second)
	require.NoError(t, s.Present(b))
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 4, inner.Presents(), "every frame reaches the wrapped surface")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	img, err := imaging.Open(filepath.Join(dir, "frame-00000.png"))
	require.NoError(t, err)
	r, g, _, alpha := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), alpha)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Zero(t, r)

	require.NoError(t, s.Hide())
	assert.False(t, inner.Visible())
}
