package menu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsStaleNeverGenerated(t *testing.T) {
	assert.True(t, IsStale(nil, EpochFloor))
	assert.True(t, IsStale(nil, time.Now()))
}

func TestIsStaleContentNewerThanGeneration(t *testing.T) {
	generated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	change := generated.Add(time.Minute)

	assert.True(t, IsStale(&generated, change))
}

func TestIsStaleGenerationUpToDate(t *testing.T) {
	change := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	generated := change.Add(time.Minute)

	assert.False(t, IsStale(&generated, change))

	// Exactly equal timestamps count as fresh.
	assert.False(t, IsStale(&change, change))
}

func TestIsStaleCardWithoutChildren(t *testing.T) {
	// A childless card contributes only its own updated_at; the epoch floor
	// for the empty aggregates must never win against a real generation.
	generated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsStale(&generated, EpochFloor))
}
