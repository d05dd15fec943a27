package theme

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"E94560", Color{0xE9, 0x45, 0x60, 0xFF}, true},
		{"#E9456080", Color{0xE9, 0x45, 0x60, 0x80}, true},
		{"  1a1a2eff ", Color{0x1A, 0x1A, 0x2E, 0xFF}, true},
		{"fff", Color{}, false},
		{"zzzzzz", Color{}, false},
		{"", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColor_ARGBAndString(t *testing.T) {
	c := Color{R: 0x12, G: 0x34, B: 0x56, A: 0x78}
	assert.Equal(t, uint32(0x78123456), c.ARGB())
	assert.Equal(t, "#12345678", c.String())
	assert.Equal(t, uint8(0x10), c.WithAlpha(0x10).A)
}

func TestParseVariables(t *testing.T) {
	doc := `<?xml version="1.0"?>
<theme>
	<variables>
		<fgColor>EEEEEE</fgColor>
		<mainColor>
			00FF00
		</mainColor>
		<nested><inner>x</inner></nested>
	</variables>
	<view name="system">
		<text name="t"><color>123456</color></text>
	</view>
	<variables>
		<fgColor>DDDDDD</fgColor>
	</variables>
</theme>`

	vars, err := ParseVariables(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "DDDDDD", vars["fgColor"], "later blocks override")
	assert.Equal(t, "00FF00", vars["mainColor"])
	assert.NotContains(t, vars, "color", "elements outside <variables> are ignored")
	assert.NotContains(t, vars, "inner")
}

func writeTheme(t *testing.T, root, variables, scheme string) {
	t.Helper()
	if variables != "" {
		require.NoError(t, os.WriteFile(VariablesPath(root), []byte(variables), 0o644))
	}
	if scheme != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(ColorSchemePath(root)), 0o755))
		require.NoError(t, os.WriteFile(ColorSchemePath(root), []byte(scheme), 0o644))
	}
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	th, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "#ffffffff", th.Fg.String())
	assert.Equal(t, "#1a1a2eff", th.Bg.String())
	assert.Equal(t, "#e94560ff", th.Accent.String())
	assert.Equal(t, "#16213eff", th.Card.String())
	assert.Equal(t, "#000000ff", th.Shadow.String())
	assert.Equal(t, filepath.Join(root, "assets/fonts/Inter/Inter-Bold.otf"), th.FontDisplay)
	assert.Equal(t, filepath.Join(root, "assets/fonts/Inter/Inter-Regular.otf"), th.FontBody)
	assert.Equal(t, filepath.Join(root, "assets/fonts/Inter/Inter-Light.otf"), th.FontLight)
	assert.Equal(t, Default(root).Accent, th.Accent)
}

func TestLoad_ColorSchemeWins(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root,
		`<theme><variables>
			<mainColor>111111</mainColor>
			<cardColor>222222</cardColor>
			<fontBody>./fonts/Body.ttf</fontBody>
		</variables></theme>`,
		`<theme><variables>
			<mainColor>#333333</mainColor>
			<bgColor>notacolor</bgColor>
		</variables></theme>`)

	th, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, Color{0x33, 0x33, 0x33, 0xFF}, th.Accent, "color scheme beats variables.xml")
	assert.Equal(t, Color{0x22, 0x22, 0x22, 0xFF}, th.Card, "variables.xml beats defaults")
	assert.Equal(t, "#1a1a2eff", th.Bg.String(), "unparsable values fall back")
	assert.Equal(t, filepath.Join(root, "fonts", "Body.ttf"), th.FontBody, "leading ./ is stripped")
	assert.False(t, th.ModTime.IsZero())
}

func TestChangedAndWatcher(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root, `<theme><variables><mainColor>111111</mainColor></variables></theme>`, "")

	th, err := Load(root)
	require.NoError(t, err)
	assert.False(t, th.Changed())

	w := NewWatcher(th, nil)
	w.SetPollInterval(10 * time.Millisecond)
	changed := make(chan *Theme, 1)
	w.SetChangeCallback(func(nt *Theme) {
		select {
		case changed <- nt:
		default:
		}
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeTheme(t, root, `<theme><variables><mainColor>222222</mainColor></variables></theme>`, "")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(VariablesPath(root), future, future))

	select {
	case nt := <-changed:
		assert.Equal(t, Color{0x22, 0x22, 0x22, 0xFF}, nt.Accent)
		assert.Same(t, nt, w.Theme())
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
