package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrings_English(t *testing.T) {
	s, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "ACHIEVEMENT UNLOCKED", s.AchievementHeader())
	assert.Equal(t, "Press again to confirm", s.ConfirmPrompt())
	assert.Equal(t, "Select", s.Select())
	assert.Equal(t, "Back", s.Back())
	assert.Equal(t, "Hold Save", s.HoldLabel("Save"))
}

func TestStrings_Translated(t *testing.T) {
	tests := []struct {
		lang   string
		header string
	}{
		{"es", "LOGRO DESBLOQUEADO"},
		{"fr", "SUCCÈS DÉBLOQUÉ"},
		{"es-MX", "LOGRO DESBLOQUEADO"},
		{"de", "ACHIEVEMENT UNLOCKED"},
		{"", "ACHIEVEMENT UNLOCKED"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			s, err := New(tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.header, s.AchievementHeader())
		})
	}
}

func TestStrings_InvalidLanguage(t *testing.T) {
	_, err := New("not a language!")
	assert.Error(t, err)
}

func TestStrings_Plural(t *testing.T) {
	s := MustNew("en")
	assert.Equal(t, "Sent 1 command", s.Plural(CommandsSent, 1))
	assert.Equal(t, "Sent 3 commands", s.Plural(CommandsSent, 3))
}

func TestStrings_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.toml"),
		[]byte(`AchievementUnlocked = "ERFOLG FREIGESCHALTET"`+"\n"), 0o644))

	s := MustNew("de")
	require.NoError(t, s.LoadDir(dir))
	assert.Equal(t, "ERFOLG FREIGESCHALTET", s.AchievementHeader())
	assert.Equal(t, "Select", s.Select(), "untranslated messages fall back to English")

	require.NoError(t, s.LoadDir(filepath.Join(dir, "missing")))
}
