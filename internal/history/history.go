package history

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/cheevo/internal/model"
)

// ParseAge parses a lookback like "48h", "7d" or "2w". "" and "0" mean no
// limit.
func ParseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, found := strings.CutSuffix(s, suffix); found {
			v, err := strconv.Atoi(n)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("invalid duration: %s", s)
			}
			return time.Duration(v) * unit, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return d, nil
}

// Newest returns entries sorted newest first. The input is not modified.
func Newest(entries []model.Achievement) []model.Achievement {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.Achievement) int {
		return b.ReceivedAt.Compare(a.ReceivedAt)
	})
	return out
}

// Since returns the entries received within age of now, newest first.
// A zero age keeps everything.
func Since(entries []model.Achievement, age time.Duration, now time.Time) []model.Achievement {
	sorted := Newest(entries)
	if age <= 0 {
		return sorted
	}
	cutoff := now.Add(-age)
	n := 0
	for _, a := range sorted {
		if a.ReceivedAt.Before(cutoff) {
			break
		}
		n++
	}
	return sorted[:n]
}

// PruneOptions select entries to remove. Zero values disable a rule.
type PruneOptions struct {
	OlderThan time.Duration
	Keep      int
}

// Prune splits entries into those kept and those removed, both newest first.
func Prune(entries []model.Achievement, opts PruneOptions, now time.Time) (kept, removed []model.Achievement) {
	cutoff := time.Time{}
	if opts.OlderThan > 0 {
		cutoff = now.Add(-opts.OlderThan)
	}

	for _, a := range Newest(entries) {
		tooOld := !cutoff.IsZero() && a.ReceivedAt.Before(cutoff)
		overCap := opts.Keep > 0 && len(kept) >= opts.Keep
		if tooOld || overCap {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	return kept, removed
}

// Tee returns a handler that appends each achievement to l before passing
// it on to next. Write failures are logged and never block delivery.
func Tee(l *Log, next func(*model.Achievement), logger *slog.Logger) func(*model.Achievement) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(a *model.Achievement) {
		if a == nil {
			return
		}
		if err := l.Append(*a); err != nil {
			logger.Warn("failed to record achievement", "title", a.Title, "error", err)
		}
		next(a)
	}
}
