// Package model defines the event values shared between the overlay's producers and the tick loop.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sources an achievement can arrive from.
const (
	SourceLog    = "log"
	SourceSocket = "socket"
	SourceDBus   = "dbus"
	SourceCLI    = "cli"
)

// Achievement is a single "achievement unlocked" event.
type Achievement struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source" yaml:"source"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	ReceivedAt  time.Time `json:"received_at" yaml:"received_at"`
}

// Validation errors.
var (
	ErrEmptyID     = errors.New("id cannot be empty")
	ErrEmptySource = errors.New("source cannot be empty")
	ErrEmptyTitle  = errors.New("title cannot be empty")
)

// NewAchievement creates an Achievement with a generated ULID.
func NewAchievement(source, title, description string) (*Achievement, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Achievement{
		ID:          id.String(),
		Source:      source,
		Title:       title,
		Description: description,
		ReceivedAt:  now,
	}, nil
}

// Validate checks that the achievement has all required fields.
func (a *Achievement) Validate() error {
	if a.ID == "" {
		return ErrEmptyID
	}
	if a.Source == "" {
		return ErrEmptySource
	}
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// ULIDTime returns the timestamp encoded in the ID, or the zero time if the ID is not a ULID.
func (a *Achievement) ULIDTime() time.Time {
	id, err := ulid.Parse(a.ID)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(id.Time())
}

// String returns a short human-readable form for logs.
func (a *Achievement) String() string {
	if a.Description == "" {
		return a.Title
	}
	return a.Title + " (" + a.Description + ")"
}
