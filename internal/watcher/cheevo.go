// Package watcher tails RetroArch's log for RetroAchievements unlocks.
package watcher

import (
	"strings"

	"github.com/jmylchreest/cheevo/internal/model"
)

// awardMarker precedes every unlock line, e.g.
//
//	[INFO] [RCHEEVOS]: awarding cheevo 12345: First Blood (Defeat the first boss)
const awardMarker = "[RCHEEVOS]: awarding cheevo"

// ParseLine extracts an unlock from a log line. The returned achievement
// has Source, Title and Description set; the ID is left for the caller.
func ParseLine(line string) (model.Achievement, bool) {
	idx := strings.Index(line, awardMarker)
	if idx < 0 {
		return model.Achievement{}, false
	}
	after := line[idx+len(awardMarker):]

	// Skip the numeric id.
	colon := strings.Index(after, ": ")
	if colon < 0 {
		return model.Achievement{}, false
	}
	rest := strings.TrimSpace(after[colon+2:])

	paren := strings.Index(rest, " (")
	if paren < 0 {
		return model.Achievement{Source: model.SourceLog, Title: rest}, true
	}
	end := strings.LastIndex(rest, ")")
	if end < paren+2 {
		return model.Achievement{}, false
	}
	return model.Achievement{
		Source:      model.SourceLog,
		Title:       strings.TrimSpace(rest[:paren]),
		Description: strings.TrimSpace(rest[paren+2 : end]),
	}, true
}
