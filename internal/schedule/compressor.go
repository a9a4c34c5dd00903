package schedule

import (
	"sort"
	"strings"

	"github.com/langhaus/website-backend/internal/models"
)

// ClosedPattern is the sentinel pattern key for a weekday that is stored but
// has no time ranges.
const ClosedPattern = "closed"

// patternDelimiter joins the spans of one weekday into its pattern key. It
// never occurs inside a rendered time span.
const patternDelimiter = " | "

// Entry is one compressed line of the public opening-hours response, e.g.
//
//	{category: null, weekdays: ["Mon–Fri"], closed: false, times: ["09:00–12:00", "13:30–18:00"]}
type Entry struct {
	Category *string  `json:"category"`
	Weekdays []string `json:"weekdays"`
	Closed   bool     `json:"closed"`
	Times    []string `json:"times"`
}

type span struct {
	start string
	end   string
}

func (s span) render() string {
	return truncateClock(s.start) + "–" + truncateClock(s.end)
}

// patternGroup collects the weekdays of one category that share an identical
// time pattern.
type patternGroup struct {
	key     string
	times   []string
	dayIdxs []int
}

type categoryBucket struct {
	key  string // "" is the default bucket, emitted as null
	days map[int][]span
	seen map[int]bool
}

// Compress turns raw opening-time rows into the minimal grouped
// representation: per category, weekdays with identical time patterns are
// grouped together and consecutive weekdays collapse into ranges.
//
// Weekdays absent from the input are never synthesized; a weekday stored
// without times yields a closed entry. Categories are emitted in first-seen
// input order, so callers wanting deterministic output pre-sort by category.
func Compress(rows []models.OpeningTime) []Entry {
	var categories []*categoryBucket
	byKey := map[string]*categoryBucket{}

	for _, row := range rows {
		idx, ok := WeekdayIndex(row.Weekday)
		if !ok {
			continue
		}

		key := ""
		if row.Category != nil {
			key = strings.TrimSpace(*row.Category)
		}

		bucket, ok := byKey[key]
		if !ok {
			bucket = &categoryBucket{
				key:  key,
				days: map[int][]span{},
				seen: map[int]bool{},
			}
			byKey[key] = bucket
			categories = append(categories, bucket)
		}

		bucket.seen[idx] = true
		// A row with a missing start or end carries no usable range and
		// counts as closed.
		if row.StartTime != nil && row.EndTime != nil && *row.StartTime != "" && *row.EndTime != "" {
			bucket.days[idx] = append(bucket.days[idx], span{start: *row.StartTime, end: *row.EndTime})
		}
	}

	var entries []Entry
	for _, bucket := range categories {
		entries = append(entries, compressCategory(bucket)...)
	}
	return entries
}

func compressCategory(bucket *categoryBucket) []Entry {
	var groups []*patternGroup
	byPattern := map[string]*patternGroup{}

	// Canonical week order keeps both the group emission order and the day
	// lists deterministic regardless of input row order.
	for idx := 0; idx < len(weekOrder); idx++ {
		if !bucket.seen[idx] {
			continue
		}

		key, times := dayPattern(bucket.days[idx])

		group, ok := byPattern[key]
		if !ok {
			group = &patternGroup{key: key, times: times}
			byPattern[key] = group
			groups = append(groups, group)
		}
		group.dayIdxs = append(group.dayIdxs, idx)
	}

	var category *string
	if bucket.key != "" {
		cat := bucket.key
		category = &cat
	}

	entries := make([]Entry, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, Entry{
			Category: category,
			Weekdays: compressRanges(g.dayIdxs),
			Closed:   g.key == ClosedPattern,
			Times:    g.times,
		})
	}
	return entries
}

// dayPattern computes the canonical pattern key of one weekday plus its
// rendered time spans. An empty span list is the closed sentinel.
func dayPattern(spans []span) (string, []string) {
	if len(spans) == 0 {
		return ClosedPattern, []string{ClosedPattern}
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return truncateClock(sorted[i].start) < truncateClock(sorted[j].start)
	})

	times := make([]string, 0, len(sorted))
	for _, s := range sorted {
		times = append(times, s.render())
	}
	return strings.Join(times, patternDelimiter), times
}

// compressRanges collapses sorted weekday indices into contiguous ranges.
// Single days render as "Mon", runs as "Mon–Fri". One linear pass.
func compressRanges(idxs []int) []string {
	var out []string
	if len(idxs) == 0 {
		return out
	}

	start := idxs[0]
	prev := idxs[0]
	flush := func() {
		if start == prev {
			out = append(out, weekOrder[start])
		} else {
			out = append(out, weekOrder[start]+"–"+weekOrder[prev])
		}
	}

	for _, idx := range idxs[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()
	return out
}

// truncateClock drops seconds from a stored time-of-day ("09:00:00" → "09:00").
func truncateClock(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
