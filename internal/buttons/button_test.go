package buttons

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Button
		ok   bool
	}{
		{"a", A, true},
		{"B", B, true},
		{" y ", Y, true},
		{"l1", LB, true},
		{"lb", LB, true},
		{"r2", RT, true},
		{"start", Start, true},
		{"back", Select, true},
		{"dpad_up", DpadUp, true},
		{"left", DpadLeft, true},
		{"", None, false},
		{"turbo", None, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestConfigNameRoundTrip(t *testing.T) {
	for _, b := range All {
		got, ok := Parse(b.ConfigName())
		require.True(t, ok, b.String())
		assert.Equal(t, b, got)
	}
	assert.Equal(t, "none", None.String())
}

func TestUnmarshalText(t *testing.T) {
	var b Button
	require.NoError(t, b.UnmarshalText([]byte("start")))
	assert.Equal(t, Start, b)

	require.NoError(t, b.UnmarshalText([]byte("")))
	assert.Equal(t, None, b)

	err := b.UnmarshalText([]byte("turbo"))
	var unknown *UnknownButtonError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "turbo", unknown.Name)
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
		ok   bool
	}{
		{"playstation", PlayStation, true},
		{"PS", PlayStation, true},
		{"nintendo", Switch, true},
		{"steam", SteamDeck, true},
		{"xbox", Xbox, true},
		{"sega", Xbox, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStyle(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestStyleFromDeviceName(t *testing.T) {
	tests := []struct {
		name string
		want Style
	}{
		{"Sony Interactive Entertainment Wireless Controller", PlayStation},
		{"DualSense Wireless Controller", PlayStation},
		{"Steam Deck", SteamDeck},
		{"Valve Software Steam Controller", SteamDeck},
		{"Nintendo Switch Pro Controller", Switch},
		{"Joy-Con (L/R)", Switch},
		{"Xbox Wireless Controller", Xbox},
		{"", Xbox},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StyleFromDeviceName(tt.name))
		})
	}
}

func TestDetectStyle_EnvOverride(t *testing.T) {
	t.Setenv(StyleEnv, "switch")
	assert.Equal(t, Switch, DetectStyle(filepath.Join(t.TempDir(), "missing.cfg")))
}

func TestDetectStyle_LastDeviceWins(t *testing.T) {
	t.Setenv(StyleEnv, "")
	cfg := `<?xml version="1.0"?>
<inputList>
  <inputConfig type="joystick" deviceName="Xbox Wireless Controller" deviceGUID="0300">
  </inputConfig>
  <inputConfig type="joystick" deviceName="DualSense Wireless Controller" deviceGUID="0500">
  </inputConfig>
</inputList>`
	p := filepath.Join(t.TempDir(), "es_input.cfg")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o644))

	assert.Equal(t, PlayStation, DetectStyle(p))
}

func TestDetectStyle_MissingFileDefaultsToXbox(t *testing.T) {
	t.Setenv(StyleEnv, "")
	assert.Equal(t, Xbox, DetectStyle(filepath.Join(t.TempDir(), "missing.cfg")))
}

func TestIconFile(t *testing.T) {
	assert.Equal(t, "xbox/xbox_button_a.svg", IconFile(A, Xbox))
	assert.Equal(t, "playstation/playstation_button_cross.svg", IconFile(A, PlayStation))
	assert.Equal(t, "steamdeck/steamdeck_button_a.svg", IconFile(A, SteamDeck))
	assert.Equal(t, "switch/switch_button_b.svg", IconFile(A, Switch))
	assert.Equal(t, "", IconFile(None, Xbox))

	for _, s := range []Style{Xbox, PlayStation, SteamDeck, Switch} {
		for _, b := range All {
			assert.NotEmpty(t, IconFile(b, s), "%s/%s", s, b)
		}
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", Label(A, Xbox))
	assert.Equal(t, "X", Label(A, PlayStation))
	assert.Equal(t, "T", Label(Y, PlayStation))
	assert.Equal(t, "B", Label(A, Switch))
	assert.Equal(t, "A", Label(A, SteamDeck))
	assert.Equal(t, "", Label(None, Xbox))
}

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<circle cx="5" cy="5" r="5" fill="#ff0000"/>
</svg>`

func TestRasterizeSVG(t *testing.T) {
	img, err := RasterizeSVG(strings.NewReader(testSVG), 16, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	center := img.RGBAAt(8, 8)
	assert.Greater(t, center.R, uint8(200))
	assert.Greater(t, center.A, uint8(200))

	corner := img.RGBAAt(0, 0)
	assert.Less(t, corner.A, uint8(64))
}

func TestLoadIcons(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "xbox"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xbox", "xbox_button_a.svg"), []byte(testSVG), 0o644))

	set, err := LoadIcons(dir, Xbox, 24)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.NotNil(t, set.Get(A))
	assert.Nil(t, set.Get(B), "missing icons are skipped")

	var empty *IconSet
	assert.Nil(t, empty.Get(A))
}
