package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrTooSoon is returned when a booking starts before now + minimum lead time.
	ErrTooSoon = fmt.Errorf("%w: booking starts too soon", domain.ErrValidation)

	// ErrTooFarAhead is returned when a booking starts beyond the advance booking horizon.
	ErrTooFarAhead = fmt.Errorf("%w: booking starts too far in the future", domain.ErrValidation)

	// ErrOutsideBusinessHours is returned when the booking does not fit in one opening window.
	ErrOutsideBusinessHours = fmt.Errorf("%w: booking is outside business hours", domain.ErrValidation)
)

// CheckBookingWindow validates candidate against the policy's lead time and
// horizon and the location's business hours from the candidate's local day.
func CheckBookingWindow(location *domain.Location, policy *domain.SchedulingPolicy, candidate domain.Interval, now time.Time) error {
	zone, err := location.TimeLocation()
	if err != nil {
		return err
	}

	if earliest := now.Add(policy.MinLead()); candidate.Start.Before(earliest) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooSoon, policy.MinLeadMinutes)
	}

	if horizon := policy.BookingHorizon(now, zone); !horizon.IsZero() && !candidate.Start.Before(horizon) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrTooFarAhead, policy.AdvanceBookingDays)
	}

	hours, err := OpeningHours(location, candidate.Start)
	if err != nil {
		return err
	}
	for _, open := range hours {
		if open.Covers(candidate) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s - %s", ErrOutsideBusinessHours,
		candidate.Start.In(zone).Format(domain.TimeFormat), candidate.End.In(zone).Format(domain.TimeFormat))
}

// OpeningHours returns the merged business windows of day's local date and
// the date after it, so a window closing at 24:00 runs on into one opening
// at 00:00 the next day.
func OpeningHours(location *domain.Location, day time.Time) ([]domain.Interval, error) {
	zone, err := location.TimeLocation()
	if err != nil {
		return nil, err
	}

	y, m, d := day.In(zone).Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, zone)

	today, err := location.BusinessIntervals(noon)
	if err != nil {
		return nil, err
	}
	tomorrow, err := location.BusinessIntervals(noon.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return domain.MergeIntervals(append(today, tomorrow...)), nil
}
