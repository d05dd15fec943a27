package history

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/model"
)

func sample() []model.Achievement {
	first := entry("01A", 3*time.Hour)
	first.Description = "Defeat the first boss\nwithout dying"
	second := entry("01B", 10*time.Second)
	second.Source = model.SourceCLI
	return []model.Achievement{second, first}
}

func fixedNow() time.Time { return now }

func TestPlainFormatter(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{ShowIndex: true, ShowSource: true, Now: fixedNow})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sample()))
	assert.Equal(t,
		"[1] <cli> Achievement 01B (10 seconds ago)\n"+
			"[2] <log> Achievement 01A (3 hours ago)\n"+
			"    Defeat the first boss without dying\n",
		buf.String())
}

func TestPlainFormatterTruncatesDescription(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{DescMaxLen: 10, Now: fixedNow})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sample()[1:]))
	assert.Contains(t, buf.String(), "    Defeat ...\n")
}

func TestPlainFormatterTemplate(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{Template: "{{.Index}}:{{.ID}}:{{.Title}}:{{.RelativeTime}}", Now: fixedNow})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sample()[:1]))
	assert.Equal(t, "1:01B:Achievement 01B:10 seconds ago\n", buf.String())

	_, err = NewPlainFormatter(FormatterOptions{Template: "{{.Title"})
	assert.ErrorContains(t, err, "invalid template")
}

func TestStructuredFormatters(t *testing.T) {
	f, err := NewFormatter(FormatJSON, FormatterOptions{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sample()))

	var decoded []model.Achievement
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)

	buf.Reset()
	require.NoError(t, f.Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	f, err = NewFormatter(FormatYAML, FormatterOptions{})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, f.Format(&buf, sample()))
	assert.Contains(t, buf.String(), "- id: 01B")
	assert.Contains(t, buf.String(), "source: cli")

	_, err = NewFormatter("xml", FormatterOptions{})
	assert.Error(t, err)
}
