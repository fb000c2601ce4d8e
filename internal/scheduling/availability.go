// Package scheduling holds the pure booking algorithms: free-slot
// computation, representative slot selection and conflict detection.
package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AvailabilityInput describes one availability computation.
type AvailabilityInput struct {
	BusinessHours []domain.Interval
	Busy          []domain.Interval
	Span          time.Duration
	LeadTime      time.Duration
	Granularity   time.Duration
	Now           time.Time
	// Zone defines local midnight for grid alignment. Nil means the zone
	// each gap start carries.
	Zone *time.Location
}

// ComputeAvailability returns every start time at which an appointment of
// Span fits in business hours without touching a busy interval. Starts are
// aligned to Granularity counted from midnight in Zone of the gap's day and
// are never earlier than Now+LeadTime. The result is ascending and unique.
func ComputeAvailability(in AvailabilityInput) []time.Time {
	starts := []time.Time{}
	if in.Span <= 0 || in.Granularity <= 0 || len(in.BusinessHours) == 0 {
		return starts
	}

	earliest := in.Now.Add(in.LeadTime)
	busy := domain.MergeIntervals(in.Busy)

	var last time.Time
	for _, open := range domain.MergeIntervals(in.BusinessHours) {
		for _, gap := range domain.SubtractIntervals(open, busy) {
			if gap.Duration() < in.Span {
				continue
			}
			for start := alignUp(localize(gap.Start, in.Zone), in.Granularity); !start.Add(in.Span).After(gap.End); start = start.Add(in.Granularity) {
				if start.Before(earliest) {
					continue
				}
				if len(starts) > 0 && !start.After(last) {
					continue
				}
				starts = append(starts, start)
				last = start
			}
		}
	}

	return starts
}

func localize(t time.Time, zone *time.Location) time.Time {
	if zone == nil {
		return t
	}
	return t.In(zone)
}

// alignUp rounds t up to the next multiple of granularity since local midnight.
func alignUp(t time.Time, granularity time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	rem := t.Sub(midnight) % granularity
	if rem == 0 {
		return t
	}
	return t.Add(granularity - rem)
}

// SlotsFromStarts pairs each start with the end of the span it would occupy.
func SlotsFromStarts(starts []time.Time, span time.Duration) []domain.AvailableSlot {
	slots := make([]domain.AvailableSlot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, domain.AvailableSlot{StartAt: s, EndAt: s.Add(span)})
	}
	return slots
}
