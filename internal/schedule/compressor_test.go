package schedule

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langhaus/website-backend/internal/models"
)

func row(weekday string, category, start, end *string) models.OpeningTime {
	return models.OpeningTime{
		Weekday:   weekday,
		Category:  category,
		StartTime: start,
		EndTime:   end,
	}
}

func str(s string) *string { return &s }

func TestCompressContiguousRange(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00:00"), str("12:00:00")),
		row(Tuesday, nil, str("09:00:00"), str("12:00:00")),
		row(Wednesday, nil, str("09:00:00"), str("12:00:00")),
	}

	entries := Compress(rows)

	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Category)
	assert.Equal(t, []string{"Mon–Wed"}, entries[0].Weekdays)
	assert.False(t, entries[0].Closed)
	assert.Equal(t, []string{"09:00–12:00"}, entries[0].Times)
}

func TestCompressNonContiguousSamePattern(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00"), str("12:00")),
		row(Wednesday, nil, str("09:00"), str("12:00")),
	}

	entries := Compress(rows)

	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Mon", "Wed"}, entries[0].Weekdays)
	assert.Equal(t, []string{"09:00–12:00"}, entries[0].Times)
}

func TestCompressClosedDay(t *testing.T) {
	rows := []models.OpeningTime{
		row(Sunday, nil, nil, nil),
	}

	entries := Compress(rows)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Closed)
	assert.Equal(t, []string{"Sun"}, entries[0].Weekdays)
	assert.Equal(t, []string{"closed"}, entries[0].Times)
}

func TestCompressMultipleSpansPerDay(t *testing.T) {
	rows := []models.OpeningTime{
		// Afternoon block stored before the morning block on purpose.
		row(Friday, nil, str("13:30:00"), str("18:00:00")),
		row(Friday, nil, str("09:00:00"), str("12:00:00")),
		row(Saturday, nil, str("09:00:00"), str("12:00:00")),
		row(Saturday, nil, str("13:30:00"), str("18:00:00")),
	}

	entries := Compress(rows)

	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Fri–Sat"}, entries[0].Weekdays)
	assert.Equal(t, []string{"09:00–12:00", "13:30–18:00"}, entries[0].Times)
}

func TestCompressSplitsByCategory(t *testing.T) {
	kitchen := str("Küche")
	bar := str("Bar")

	rows := []models.OpeningTime{
		row(Monday, kitchen, str("11:00"), str("14:00")),
		row(Monday, bar, str("17:00"), str("23:00")),
	}

	entries := Compress(rows)

	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Category)
	assert.Equal(t, "Küche", *entries[0].Category)
	require.NotNil(t, entries[1].Category)
	assert.Equal(t, "Bar", *entries[1].Category)
}

func TestCompressEmptyCategoryIsDefaultBucket(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, str(""), str("09:00"), str("12:00")),
		row(Tuesday, nil, str("09:00"), str("12:00")),
	}

	entries := Compress(rows)

	// "" and nil land in the same bucket, emitted as null.
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Category)
	assert.Equal(t, []string{"Mon–Tue"}, entries[0].Weekdays)
}

func TestCompressAbsentWeekdaysNeverEmitted(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00"), str("12:00")),
		row(Sunday, nil, nil, nil),
	}

	entries := Compress(rows)

	seen := map[string]bool{}
	for _, e := range entries {
		for _, wd := range e.Weekdays {
			seen[wd] = true
		}
	}
	assert.Equal(t, map[string]bool{"Mon": true, "Sun": true}, seen)
}

func TestCompressEveryInputWeekdayAppearsExactlyOnce(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00"), str("12:00")),
		row(Tuesday, nil, str("09:00"), str("12:00")),
		row(Wednesday, nil, nil, nil),
		row(Thursday, nil, str("10:00"), str("15:00")),
		row(Friday, nil, str("09:00"), str("12:00")),
		row(Saturday, nil, nil, nil),
	}

	entries := Compress(rows)

	counts := map[string]int{}
	for _, e := range entries {
		for _, r := range e.Weekdays {
			for _, wd := range expandRange(t, r) {
				counts[wd]++
			}
		}
	}

	for _, wd := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		assert.Equal(t, 1, counts[wd], "weekday %s", wd)
	}
	assert.Zero(t, counts["Sun"])
}

func TestCompressOrderIndependent(t *testing.T) {
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00"), str("12:00")),
		row(Tuesday, nil, str("09:00"), str("12:00")),
		row(Thursday, nil, str("14:00"), str("18:00")),
		row(Sunday, nil, nil, nil),
	}

	want := Compress(rows)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.OpeningTime, len(rows))
		copy(shuffled, rows)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assert.Equal(t, want, Compress(shuffled))
	}
}

func TestCompressPartialPairCountsAsClosed(t *testing.T) {
	// Legacy rows with only one side of the pair must not leak a half range.
	rows := []models.OpeningTime{
		row(Monday, nil, str("09:00"), nil),
	}

	entries := Compress(rows)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Closed)
}

func TestCompressEmptyInput(t *testing.T) {
	assert.Empty(t, Compress(nil))
}

func TestWeekdayIndex(t *testing.T) {
	idx, ok := WeekdayIndex("Mon")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = WeekdayIndex("Sun")
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	_, ok = WeekdayIndex("Funday")
	assert.False(t, ok)
}

// expandRange turns "Mon–Wed" back into its member weekdays.
func expandRange(t *testing.T, r string) []string {
	t.Helper()

	parts := strings.SplitN(r, "–", 2)

	startIdx, ok := WeekdayIndex(parts[0])
	require.True(t, ok)
	endIdx := startIdx
	if len(parts) == 2 {
		endIdx, ok = WeekdayIndex(parts[1])
		require.True(t, ok)
	}

	var out []string
	for i := startIdx; i <= endIdx; i++ {
		out = append(out, weekOrder[i])
	}
	return out
}
