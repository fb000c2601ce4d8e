package scheduling

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var day = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func iv(startHour, startMin, endHour, endMin int) domain.Interval {
	return domain.Interval{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func stepTimes(from, to time.Time, step time.Duration) []time.Time {
	var out []time.Time
	for t := from; !t.After(to); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

func TestComputeAvailability_WorkedExample(t *testing.T) {
	got := ComputeAvailability(AvailabilityInput{
		BusinessHours: []domain.Interval{iv(9, 0, 17, 0)},
		Busy:          []domain.Interval{iv(10, 0, 11, 0)},
		Span:          30 * time.Minute,
		Granularity:   15 * time.Minute,
		Now:           at(0, 0),
	})

	want := append(
		stepTimes(at(9, 0), at(9, 30), 15*time.Minute),
		stepTimes(at(11, 0), at(16, 30), 15*time.Minute)...,
	)
	assert.Equal(t, want, got)

	busy := iv(10, 0, 11, 0)
	for _, start := range got {
		assert.False(t, domain.Overlaps(domain.Interval{Start: start, End: start.Add(30 * time.Minute)}, busy))
	}
}

func TestComputeAvailability_AlignsToGranularityFromMidnight(t *testing.T) {
	got := ComputeAvailability(AvailabilityInput{
		BusinessHours: []domain.Interval{iv(9, 0, 12, 0)},
		Busy:          []domain.Interval{iv(9, 0, 9, 50)},
		Span:          30 * time.Minute,
		Granularity:   30 * time.Minute,
		Now:           at(0, 0),
	})

	assert.Equal(t, []time.Time{at(10, 0), at(10, 30), at(11, 0), at(11, 30)}, got)
}

func TestComputeAvailability_AlignsInZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	local := func(hour, minute int) time.Time {
		return time.Date(2026, 5, 4, hour, minute, 0, 0, kolkata)
	}

	// busy comes back from storage in UTC, 10:00-11:00 local
	got := ComputeAvailability(AvailabilityInput{
		BusinessHours: []domain.Interval{{Start: local(9, 0), End: local(17, 0)}},
		Busy:          []domain.Interval{{Start: local(10, 0).UTC(), End: local(11, 0).UTC()}},
		Span:          30 * time.Minute,
		Granularity:   60 * time.Minute,
		Now:           at(0, 0).Add(-24 * time.Hour),
		Zone:          kolkata,
	})

	clocks := make([]string, 0, len(got))
	for _, s := range got {
		clocks = append(clocks, s.In(kolkata).Format("15:04"))
	}
	assert.Equal(t, []string{"09:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, clocks)
}

func TestComputeAvailability_LeadTime(t *testing.T) {
	got := ComputeAvailability(AvailabilityInput{
		BusinessHours: []domain.Interval{iv(9, 0, 12, 0)},
		Span:          60 * time.Minute,
		LeadTime:      60 * time.Minute,
		Granularity:   60 * time.Minute,
		Now:           at(9, 10),
	})

	assert.Equal(t, []time.Time{at(11, 0)}, got)
}

func TestComputeAvailability_OverlappingBusinessHoursMerged(t *testing.T) {
	got := ComputeAvailability(AvailabilityInput{
		BusinessHours: []domain.Interval{iv(9, 0, 10, 0), iv(9, 30, 11, 0), iv(11, 0, 11, 30)},
		Span:          60 * time.Minute,
		Granularity:   30 * time.Minute,
		Now:           at(0, 0),
	})

	assert.Equal(t, []time.Time{at(9, 0), at(9, 30), at(10, 0), at(10, 30)}, got)
}

func TestComputeAvailability_EmptyCases(t *testing.T) {
	base := AvailabilityInput{
		BusinessHours: []domain.Interval{iv(9, 0, 10, 0)},
		Span:          30 * time.Minute,
		Granularity:   15 * time.Minute,
		Now:           at(0, 0),
	}

	tests := []struct {
		name   string
		mutate func(in *AvailabilityInput)
	}{
		{name: "no business hours", mutate: func(in *AvailabilityInput) { in.BusinessHours = nil }},
		{name: "span exceeds every gap", mutate: func(in *AvailabilityInput) { in.Span = 2 * time.Hour }},
		{name: "zero span", mutate: func(in *AvailabilityInput) { in.Span = 0 }},
		{name: "zero granularity", mutate: func(in *AvailabilityInput) { in.Granularity = 0 }},
		{name: "fully busy", mutate: func(in *AvailabilityInput) { in.Busy = []domain.Interval{iv(8, 0, 12, 0)} }},
		{name: "lead time past closing", mutate: func(in *AvailabilityInput) { in.Now = at(9, 45) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			got := ComputeAvailability(in)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, at(9, 15), alignUp(at(9, 1), 15*time.Minute))
	assert.Equal(t, at(9, 15), alignUp(at(9, 15), 15*time.Minute))
	assert.Equal(t, at(10, 0), alignUp(at(9, 50), 20*time.Minute))
}

func TestSlotsFromStarts(t *testing.T) {
	slots := SlotsFromStarts([]time.Time{at(9, 0)}, 45*time.Minute)
	assert.Equal(t, []domain.AvailableSlot{{StartAt: at(9, 0), EndAt: at(9, 45)}}, slots)
}
