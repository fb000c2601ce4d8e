package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// TimeRange is one opening window of a day, [Open, Close) in local wall-clock time.
type TimeRange struct {
	Open  types.TimeString
	Close types.TimeString
}

func (r TimeRange) Validate() error {
	if err := r.Open.Validate(); err != nil {
		return fmt.Errorf("%w: open time %q: %v", ErrValidation, r.Open, err)
	}
	if err := r.Close.Validate(); err != nil {
		return fmt.Errorf("%w: close time %q: %v", ErrValidation, r.Close, err)
	}
	if !r.Open.Before(r.Close) {
		return fmt.Errorf("%w: open time %s must be before close time %s", ErrValidation, r.Open, r.Close)
	}
	return nil
}

// WeeklyHours maps a weekday to its opening windows. Missing days are closed.
type WeeklyHours map[time.Weekday][]TimeRange

// Location is a place where services are delivered.
type Location struct {
	ID            int64
	Name          string
	Timezone      string // IANA name
	BusinessHours WeeklyHours
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var zoneCache sync.Map

// TimeLocation resolves the location's IANA timezone.
func (l *Location) TimeLocation() (*time.Location, error) {
	if cached, ok := zoneCache.Load(l.Timezone); ok {
		return cached.(*time.Location), nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: location %d has unknown timezone %q", ErrValidation, l.ID, l.Timezone)
	}
	zoneCache.Store(l.Timezone, loc)
	return loc, nil
}

// BusinessIntervals returns the opening windows on the calendar day that
// contains day in the location's timezone.
func (l *Location) BusinessIntervals(day time.Time) ([]Interval, error) {
	loc, err := l.TimeLocation()
	if err != nil {
		return nil, err
	}

	local := day.In(loc)
	ranges := l.BusinessHours[local.Weekday()]
	out := make([]Interval, 0, len(ranges))
	for _, r := range ranges {
		if r.Validate() != nil {
			continue
		}
		out = append(out, Interval{Start: r.Open.On(local, loc), End: r.Close.On(local, loc)})
	}
	return out, nil
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Service is a bookable offering with a fixed duration and optional buffers.
type Service struct {
	ID              int64
	LocationID      int64
	Name            string
	DurationMin     int
	BufferBeforeMin int
	BufferAfterMin  int
	Active          bool
}

// TotalSpan is the time an appointment for this service occupies.
func (s *Service) TotalSpan() time.Duration {
	return time.Duration(s.BufferBeforeMin+s.DurationMin+s.BufferAfterMin) * time.Minute
}

// Employee is staff that can be assigned to appointments.
type Employee struct {
	ID         int64
	LocationID int64
	Name       string
	Active     bool
}

// Resource is equipment or a room. Capacity is informational only.
type Resource struct {
	ID         int64
	LocationID int64
	Name       string
	Capacity   int
	Active     bool
}
