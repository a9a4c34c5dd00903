package menu

import "time"

// EpochFloor substitutes for empty updated_at aggregates so staleness
// comparisons never deal with a missing value.
var EpochFloor = time.Unix(0, 0)

// IsStale reports whether a generated document is outdated relative to the
// newest content change. A card that was never generated is always stale.
func IsStale(lastGeneratedAt *time.Time, lastChange time.Time) bool {
	if lastGeneratedAt == nil {
		return true
	}
	return lastChange.After(*lastGeneratedAt)
}
