// Package popup implements the achievement toast lifecycle and its display queue.
//
// All timing is driven by the caller's clock: every method that depends on
// elapsed time takes the current tick time explicitly.
package popup

import (
	"image"
	"math"
	"time"

	"github.com/jmylchreest/cheevo/internal/model"
)

// Phase durations.
const (
	SlideInDuration = 300 * time.Millisecond
	HoldDuration    = 4000 * time.Millisecond
	FadeOutDuration = 500 * time.Millisecond

	// TotalDuration is the time from start until a popup is Done.
	TotalDuration = SlideInDuration + HoldDuration + FadeOutDuration
)

// Phase is a stage of the popup animation.
type Phase int

const (
	PhaseSlideIn Phase = iota
	PhaseHold
	PhaseFadeOut
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseSlideIn:
		return "slide-in"
	case PhaseHold:
		return "hold"
	case PhaseFadeOut:
		return "fade-out"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Popup is one toast notification.
type Popup struct {
	ID          string
	Title       string
	Description string
	// Badge is an optional decoded image drawn on the leading edge of the card.
	Badge image.Image

	started   time.Time
	phase     Phase
	forceHold bool
}

// New creates a popup whose animation starts at now.
func New(title, description string, now time.Time) *Popup {
	return &Popup{
		Title:       title,
		Description: description,
		started:     now,
		phase:       PhaseSlideIn,
	}
}

// FromAchievement creates a popup for an achievement event.
func FromAchievement(a *model.Achievement, now time.Time) *Popup {
	p := New(a.Title, a.Description, now)
	p.ID = a.ID
	return p
}

// Started returns the time the current animation started.
func (p *Popup) Started() time.Time {
	return p.started
}

// Phase returns the phase computed by the last Tick.
func (p *Popup) Phase() Phase {
	return p.phase
}

// ForceHold pins the popup to the Hold phase regardless of elapsed time.
func (p *Popup) ForceHold() {
	p.forceHold = true
	p.phase = PhaseHold
}

// restart resets the animation clock.
func (p *Popup) restart(now time.Time) {
	p.started = now
	if !p.forceHold {
		p.phase = PhaseSlideIn
	}
}

func (p *Popup) elapsed(now time.Time) time.Duration {
	e := now.Sub(p.started)
	if e < 0 {
		return 0
	}
	return e
}

// Tick recomputes the phase from elapsed time. It is idempotent.
func (p *Popup) Tick(now time.Time) {
	if p.forceHold {
		p.phase = PhaseHold
		return
	}
	p.phase = phaseAt(p.elapsed(now))
}

func phaseAt(elapsed time.Duration) Phase {
	switch {
	case elapsed < SlideInDuration:
		return PhaseSlideIn
	case elapsed < SlideInDuration+HoldDuration:
		return PhaseHold
	case elapsed < TotalDuration:
		return PhaseFadeOut
	default:
		return PhaseDone
	}
}

// IsDone reports whether the popup finished its animation at the last Tick.
func (p *Popup) IsDone() bool {
	return p.phase == PhaseDone
}

// Opacity returns the popup opacity in [0, 1] for the current phase.
func (p *Popup) Opacity(now time.Time) float64 {
	elapsed := p.elapsed(now)
	switch p.phase {
	case PhaseSlideIn:
		return math.Min(ratio(elapsed, SlideInDuration), 1)
	case PhaseHold:
		return 1
	case PhaseFadeOut:
		fade := elapsed - SlideInDuration - HoldDuration
		if fade < 0 {
			fade = 0
		}
		return 1 - math.Min(ratio(fade, FadeOutDuration), 1)
	default:
		return 0
	}
}

// SlideOffset returns the horizontal slide offset: 1 is fully off-screen, 0 is settled.
// Only non-zero during SlideIn, easing out with a cubic curve.
func (p *Popup) SlideOffset(now time.Time) float64 {
	if p.phase != PhaseSlideIn {
		return 0
	}
	t := math.Min(ratio(p.elapsed(now), SlideInDuration), 1)
	return 1 - (1 - math.Pow(1-t, 3))
}

func ratio(d, total time.Duration) float64 {
	return float64(d) / float64(total)
}
