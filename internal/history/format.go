package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/cheevo/internal/model"
)

// Formatter writes achievements for `cheevo history`.
type Formatter interface {
	Format(w io.Writer, entries []model.Achievement) error
}

// FormatType is an output format name.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// FormatterOptions configure plain output.
type FormatterOptions struct {
	Template   string // text/template applied per entry
	ShowIndex  bool
	ShowSource bool
	DescMaxLen int // 0 = unlimited
	Now        func() time.Time
}

// NewFormatter returns the formatter for format. Unknown names are an error.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatYAML:
		return yamlFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want plain, json or yaml)", format)
	}
}

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, entries []model.Achievement) error {
	if entries == nil {
		entries = []model.Achievement{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, entries []model.Achievement) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

// PlainFormatter prints one line per achievement plus an indented
// description line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// templateData is what a custom plain template sees.
type templateData struct {
	Index int
	*model.Achievement
	RelativeTime string
}

// NewPlainFormatter parses the optional template.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("plain").Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes every entry.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Achievement) error {
	now := f.opts.Now()
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i], now); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, a *model.Achievement, now time.Time) error {
	when := humanize.RelTime(a.ReceivedAt, now, "ago", "from now")

	if f.template != nil {
		if err := f.template.Execute(w, templateData{Index: index, Achievement: a, RelativeTime: when}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowSource {
		fmt.Fprintf(&sb, "<%s> ", a.Source)
	}
	fmt.Fprintf(&sb, "%s (%s)\n", a.Title, when)

	if a.Description != "" {
		desc := strings.ReplaceAll(a.Description, "\n", " ")
		if r := []rune(desc); f.opts.DescMaxLen > 3 && len(r) > f.opts.DescMaxLen {
			desc = string(r[:f.opts.DescMaxLen-3]) + "..."
		}
		sb.WriteString("    " + desc + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
