package domain

import "time"

// AvailableSlot is a bookable start time together with the end of the span it would occupy.
type AvailableSlot struct {
	StartAt time.Time
	EndAt   time.Time
}

func (s AvailableSlot) Interval() Interval {
	return Interval{Start: s.StartAt, End: s.EndAt}
}
