// Package locale provides the overlay's fixed UI strings in the configured language.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messageFS embed.FS

// Messages with their English fallback text.
var (
	AchievementUnlocked = &i18n.Message{ID: "AchievementUnlocked", Other: "ACHIEVEMENT UNLOCKED"}
	ConfirmPrompt       = &i18n.Message{ID: "ConfirmPrompt", Other: "Press again to confirm"}
	HintSelect          = &i18n.Message{ID: "HintSelect", Other: "Select"}
	HintBack            = &i18n.Message{ID: "HintBack", Other: "Back"}
	HoldToActivate      = &i18n.Message{ID: "HoldToActivate", Other: "Hold {{.Label}}"}
	CommandsSent        = &i18n.Message{ID: "CommandsSent", One: "Sent {{.Count}} command", Other: "Sent {{.Count}} commands"}
)

// Strings localizes messages for one language.
type Strings struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      language.Tag
}

// New builds the embedded bundle and a localizer for lang, falling back to
// English. An unparsable language code is an error.
func New(lang string) (*Strings, error) {
	tag := language.English
	if lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("failed to parse language %q: %w", lang, err)
		}
		tag = parsed
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(messageFS, "messages")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded messages: %w", err)
	}
	for _, e := range entries {
		data, err := messageFS.ReadFile(path.Join("messages", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
	}

	return &Strings{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
		lang:      tag,
	}, nil
}

// MustNew is New for callers with a known-good language code.
func MustNew(lang string) *Strings {
	s, err := New(lang)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadDir adds every *.toml message file in dir, letting a theme override or
// add translations. A missing directory is not an error.
func (s *Strings) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read locale directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		if _, err := s.bundle.LoadMessageFile(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", e.Name(), err)
		}
	}
	s.localizer = i18n.NewLocalizer(s.bundle, s.lang.String(), language.English.String())
	return nil
}

// Language returns the requested language tag.
func (s *Strings) Language() language.Tag {
	return s.lang
}

// Localize renders msg with optional template data. go-i18n reports a
// missing translation as an error while still rendering the default text, so
// only an empty result falls back to the raw English string.
func (s *Strings) Localize(msg *i18n.Message, data map[string]any) string {
	out, err := s.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: msg,
		TemplateData:   data,
	})
	if err != nil && out == "" {
		return msg.Other
	}
	return out
}

// Plural renders a message selecting the plural form for count.
func (s *Strings) Plural(msg *i18n.Message, count int) string {
	out, err := s.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: msg,
		PluralCount:    count,
		TemplateData:   map[string]any{"Count": count},
	})
	if err != nil && out == "" {
		return msg.Other
	}
	return out
}

func (s *Strings) AchievementHeader() string { return s.Localize(AchievementUnlocked, nil) }
func (s *Strings) ConfirmPrompt() string     { return s.Localize(ConfirmPrompt, nil) }
func (s *Strings) Select() string            { return s.Localize(HintSelect, nil) }
func (s *Strings) Back() string              { return s.Localize(HintBack, nil) }

// HoldLabel renders "Hold <label>".
func (s *Strings) HoldLabel(label string) string {
	return s.Localize(HoldToActivate, map[string]any{"Label": label})
}
