package popup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cheevo/internal/model"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestPopup_PhaseTransitions(t *testing.T) {
	tests := []struct {
		ms   int
		want Phase
	}{
		{0, PhaseSlideIn},
		{299, PhaseSlideIn},
		{300, PhaseHold},
		{4299, PhaseHold},
		{4300, PhaseFadeOut},
		{4799, PhaseFadeOut},
		{4800, PhaseDone},
		{60000, PhaseDone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			p := New("t", "d", t0)
			p.Tick(at(tt.ms))
			assert.Equal(t, tt.want, p.Phase(), "at %dms", tt.ms)
		})
	}
}

func TestPopup_OpacityValues(t *testing.T) {
	p := New("t", "d", t0)

	p.Tick(at(150))
	assert.InDelta(t, 0.5, p.Opacity(at(150)), 1e-9)

	p.Tick(at(1000))
	assert.Equal(t, 1.0, p.Opacity(at(1000)))

	p.Tick(at(4550))
	assert.InDelta(t, 0.5, p.Opacity(at(4550)), 1e-9)

	p.Tick(at(4800))
	assert.Equal(t, 0.0, p.Opacity(at(4800)))
}

func TestPopup_OpacityMonotonicPerPhase(t *testing.T) {
	p := New("t", "d", t0)
	prev := -1.0
	prevPhase := PhaseSlideIn

	for ms := 0; ms <= 6000; ms += 7 {
		now := at(ms)
		p.Tick(now)
		op := p.Opacity(now)

		require.GreaterOrEqual(t, op, 0.0)
		require.LessOrEqual(t, op, 1.0)

		if p.Phase() != prevPhase {
			prev = op
			prevPhase = p.Phase()
			continue
		}
		switch p.Phase() {
		case PhaseSlideIn:
			assert.GreaterOrEqual(t, op, prev, "slide-in must not decrease at %dms", ms)
		case PhaseHold:
			assert.Equal(t, 1.0, op)
		case PhaseFadeOut:
			assert.LessOrEqual(t, op, prev, "fade-out must not increase at %dms", ms)
		case PhaseDone:
			assert.Equal(t, 0.0, op)
		}
		prev = op
	}
}

func TestPopup_SlideOffset(t *testing.T) {
	p := New("t", "d", t0)

	p.Tick(t0)
	assert.Equal(t, 1.0, p.SlideOffset(t0))

	p.Tick(at(150))
	// 1 - (1 - 0.5^3) = 0.125
	assert.InDelta(t, 0.125, p.SlideOffset(at(150)), 1e-9)

	p.Tick(at(300))
	assert.Equal(t, 0.0, p.SlideOffset(at(300)))

	p.Tick(at(4500))
	assert.Equal(t, 0.0, p.SlideOffset(at(4500)))
}

func TestPopup_TickIdempotent(t *testing.T) {
	p := New("t", "d", t0)
	p.Tick(at(400))
	first := p.Phase()
	p.Tick(at(400))
	assert.Equal(t, first, p.Phase())
}

func TestPopup_ClockBeforeStart(t *testing.T) {
	p := New("t", "d", t0)
	p.Tick(t0.Add(-time.Second))
	assert.Equal(t, PhaseSlideIn, p.Phase())
	assert.Equal(t, 0.0, p.Opacity(t0.Add(-time.Second)))
}

func TestPopup_ForceHold(t *testing.T) {
	p := New("t", "d", t0)
	p.ForceHold()

	for _, ms := range []int{0, 100, 5000, 100000} {
		p.Tick(at(ms))
		assert.Equal(t, PhaseHold, p.Phase())
		assert.Equal(t, 1.0, p.Opacity(at(ms)))
		assert.Equal(t, 0.0, p.SlideOffset(at(ms)))
	}
}

func TestFromAchievement(t *testing.T) {
	a, err := model.NewAchievement(model.SourceLog, "First Blood", "Defeat the boss")
	require.NoError(t, err)

	p := FromAchievement(a, t0)
	assert.Equal(t, a.ID, p.ID)
	assert.Equal(t, "First Blood", p.Title)
	assert.Equal(t, "Defeat the boss", p.Description)
	assert.Equal(t, t0, p.Started())
}
