package analytics

import (
	"fmt"
	"sort"
	"time"

	"thesisrepo/internal/models"
)

// Granularity selects the bucket size of a view series.
type Granularity int

const (
	Day Granularity = iota
	Month
)

// Window bounds per granularity.
const (
	DefaultDayWindow   = 30
	MaxDayWindow       = 365
	DefaultMonthWindow = 12
	MaxMonthWindow     = 60
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// BucketCount is one point of a view series.
type BucketCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DefaultWindow returns the window used when the caller gives none.
func DefaultWindow(g Granularity) int {
	if g == Month {
		return DefaultMonthWindow
	}
	return DefaultDayWindow
}

// ClampWindow bounds window to [1,365] days or [1,60] months.
func ClampWindow(g Granularity, window int) int {
	upper := MaxDayWindow
	if g == Month {
		upper = MaxMonthWindow
	}
	if window < 1 {
		return 1
	}
	if window > upper {
		return upper
	}
	return window
}

// WindowStart is the earliest instant included in a series ending at now.
// The window is clamped first.
func WindowStart(g Granularity, window int, now time.Time) time.Time {
	window = ClampWindow(g, window)
	now = now.UTC()
	if g == Month {
		return now.AddDate(0, -window, 0)
	}
	return now.AddDate(0, 0, -window)
}

// Truncate returns the UTC start of the bucket containing t.
func Truncate(g Granularity, t time.Time) time.Time {
	t = t.UTC()
	if g == Month {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ViewsBucketed counts events with viewed_at >= WindowStart per bucket, in
// ascending bucket order. Empty buckets are not emitted.
func ViewsBucketed(events []models.ViewEvent, g Granularity, window int, now time.Time) []BucketCount {
	since := WindowStart(g, window, now)

	counts := make(map[time.Time]int)
	for i := range events {
		at := events[i].ViewedAt
		if at.Before(since) {
			continue
		}
		counts[Truncate(g, at)]++
	}

	out := make([]BucketCount, 0, len(counts))
	for bucket, n := range counts {
		out = append(out, BucketCount{Date: bucket, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
