package domain

import (
	"fmt"
	"time"
)

// SchedulingPolicy tunes slot generation and booking windows.
// Lookup order:
// 1. Service at the location (location_id, service_id)
// 2. Location-wide (location_id, NULL)
// 3. Configured defaults
type SchedulingPolicy struct {
	ID                 int64
	LocationID         int64
	ServiceID          *int64 // NULL = policy for all services of the location
	GranularityMinutes int
	MinLeadMinutes     int
	AdvanceBookingDays int // 0 = unlimited
	MaxSuggestions     int // 0 = return every slot
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsLocationWide returns true if the policy applies to every service of the location
func (p *SchedulingPolicy) IsLocationWide() bool {
	return p.ServiceID == nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p *SchedulingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

func (p *SchedulingPolicy) Granularity() time.Duration {
	return time.Duration(p.GranularityMinutes) * time.Minute
}

func (p *SchedulingPolicy) MinLead() time.Duration {
	return time.Duration(p.MinLeadMinutes) * time.Minute
}

// BookingHorizon is the latest instant a booking may start, or zero time when unlimited.
func (p *SchedulingPolicy) BookingHorizon(now time.Time, loc *time.Location) time.Time {
	if !p.HasAdvanceBookingLimit() {
		return time.Time{}
	}
	return StartOfDay(now, loc).AddDate(0, 0, p.AdvanceBookingDays+1)
}

// Validate checks the policy against the allowed bounds.
func (p *SchedulingPolicy) Validate() error {
	if p.LocationID <= 0 {
		return fmt.Errorf("%w: location id must be positive", ErrValidation)
	}
	if p.ServiceID != nil && *p.ServiceID <= 0 {
		return fmt.Errorf("%w: service id must be positive", ErrValidation)
	}
	if p.GranularityMinutes < MinGranularityMinutes || p.GranularityMinutes > MaxGranularityMinutes {
		return fmt.Errorf("%w: granularity must be between %d and %d minutes",
			ErrValidation, MinGranularityMinutes, MaxGranularityMinutes)
	}
	if p.MinLeadMinutes < MinLeadMinutes || p.MinLeadMinutes > MaxLeadMinutes {
		return fmt.Errorf("%w: minimum lead time must be between %d and %d minutes",
			ErrValidation, MinLeadMinutes, MaxLeadMinutes)
	}
	if p.AdvanceBookingDays < MinAdvanceBookingDays || p.AdvanceBookingDays > MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advance booking days must be between %d and %d",
			ErrValidation, MinAdvanceBookingDays, MaxAdvanceBookingDays)
	}
	if p.MaxSuggestions < MinSuggestions || p.MaxSuggestions > MaxSuggestions {
		return fmt.Errorf("%w: max suggestions must be between %d and %d",
			ErrValidation, MinSuggestions, MaxSuggestions)
	}
	return nil
}
