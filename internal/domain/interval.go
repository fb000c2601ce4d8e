package domain

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval rejects empty and inverted ranges.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: interval start %s must be before end %s",
			ErrValidation, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsEmpty reports whether the interval contains no instant.
func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Covers reports whether other lies entirely within i.
func (i Interval) Covers(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Overlaps reports whether two half-open intervals share an instant.
// Back-to-back intervals do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// MergeIntervals returns the minimal sorted set of disjoint intervals covering
// the input. Overlapping and adjacent intervals are coalesced; empty ones dropped.
func MergeIntervals(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, in := range intervals {
		if !in.IsEmpty() {
			sorted = append(sorted, in)
		}
	}
	if len(sorted) == 0 {
		return []Interval{}
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, in := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !in.Start.After(last.End) {
			if in.End.After(last.End) {
				last.End = in.End
			}
			continue
		}
		merged = append(merged, in)
	}

	return merged
}

// SubtractIntervals returns the parts of base not covered by busy, in order.
func SubtractIntervals(base Interval, busy []Interval) []Interval {
	gaps := []Interval{}
	if base.IsEmpty() {
		return gaps
	}

	cursor := base.Start
	for _, b := range MergeIntervals(busy) {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(base.End) {
			break
		}
		if b.Start.After(cursor) {
			gaps = append(gaps, Interval{Start: cursor, End: b.Start})
		}
		cursor = b.End
		if !cursor.Before(base.End) {
			return gaps
		}
	}

	if cursor.Before(base.End) {
		gaps = append(gaps, Interval{Start: cursor, End: base.End})
	}

	return gaps
}
