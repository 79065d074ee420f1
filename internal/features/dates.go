package features

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// daysPerYear converts merged interval durations to years.
const daysPerYear = 365.25

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// interval is a closed-open span of employment.
type interval struct {
	start time.Time
	end   time.Time
}

// parseDate accepts YYYY-MM-DD, YYYY-MM or YYYY.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD, YYYY-MM or YYYY)", s)
}

// isOpenEnded reports whether an end date means "still ongoing".
func isOpenEnded(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "present", "current", "now":
		return true
	}
	return false
}

// mergeIntervals sorts by start and merges overlapping or touching intervals.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].start.Equal(sorted[j].start) {
			return sorted[i].start.Before(sorted[j].start)
		}
		return sorted[i].end.Before(sorted[j].end)
	})

	merged := []interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !cur.start.After(last.end) {
			if cur.end.After(last.end) {
				last.end = cur.end
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// totalYears sums merged interval durations in years.
func totalYears(in []interval) float64 {
	var total time.Duration
	for _, iv := range mergeIntervals(in) {
		total += iv.end.Sub(iv.start)
	}
	return total.Hours() / 24 / daysPerYear
}
