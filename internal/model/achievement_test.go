package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAchievement(t *testing.T) {
	before := time.Now().Add(-time.Second)
	a, err := NewAchievement(SourceLog, "First Blood", "Defeat the first boss")
	require.NoError(t, err)

	assert.Len(t, a.ID, 26)
	assert.Equal(t, SourceLog, a.Source)
	assert.Equal(t, "First Blood", a.Title)
	assert.Equal(t, "Defeat the first boss", a.Description)
	assert.True(t, a.ReceivedAt.After(before))
	assert.WithinDuration(t, a.ReceivedAt, a.ULIDTime(), time.Second)
}

func TestNewAchievement_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		a, err := NewAchievement(SourceSocket, "x", "")
		require.NoError(t, err)
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}

func TestAchievement_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Achievement)
		wantErr error
	}{
		{
			name:    "valid achievement",
			modify:  func(a *Achievement) {},
			wantErr: nil,
		},
		{
			name:    "empty id",
			modify:  func(a *Achievement) { a.ID = "" },
			wantErr: ErrEmptyID,
		},
		{
			name:    "empty source",
			modify:  func(a *Achievement) { a.Source = "" },
			wantErr: ErrEmptySource,
		},
		{
			name:    "blank title",
			modify:  func(a *Achievement) { a.Title = "   " },
			wantErr: ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAchievement(SourceCLI, "Speed Demon", "")
			require.NoError(t, err)
			tt.modify(a)
			assert.ErrorIs(t, a.Validate(), tt.wantErr)
		})
	}
}

func TestAchievement_ULIDTime_InvalidID(t *testing.T) {
	a := &Achievement{ID: "not-a-ulid"}
	assert.True(t, a.ULIDTime().IsZero())
}

func TestAchievement_String(t *testing.T) {
	assert.Equal(t, "Welcome", (&Achievement{Title: "Welcome"}).String())
	assert.Equal(t, "First Blood (Defeat the boss)",
		(&Achievement{Title: "First Blood", Description: "Defeat the boss"}).String())
}
