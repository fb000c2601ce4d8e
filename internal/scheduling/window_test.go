package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func TestCheckBookingWindow(t *testing.T) {
	location := &domain.Location{
		ID:       1,
		Timezone: "UTC",
		BusinessHours: domain.WeeklyHours{
			time.Monday: {
				{Open: "09:00", Close: "12:00"},
				{Open: "12:00", Close: "14:00"},
				{Open: "15:00", Close: "17:00"},
			},
		},
	}
	policy := &domain.SchedulingPolicy{LocationID: 1, GranularityMinutes: 15, MinLeadMinutes: 60, AdvanceBookingDays: 7}

	// понедельник, 08:00
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2026, 5, day, hour, minute, 0, 0, time.UTC)
	}
	span := func(start time.Time, d time.Duration) domain.Interval {
		return domain.Interval{Start: start, End: start.Add(d)}
	}

	tests := []struct {
		name      string
		candidate domain.Interval
		wantErr   error
	}{
		{name: "fits morning window", candidate: span(at(4, 9, 0), time.Hour)},
		{name: "spans adjacent windows", candidate: span(at(4, 11, 30), time.Hour)},
		{name: "ends exactly at close", candidate: span(at(4, 16, 0), time.Hour)},
		{name: "inside lead time", candidate: span(at(4, 8, 30), 30*time.Minute), wantErr: ErrTooSoon},
		{name: "crosses lunch gap", candidate: span(at(4, 14, 30), time.Hour), wantErr: ErrOutsideBusinessHours},
		{name: "past close", candidate: span(at(4, 16, 30), time.Hour), wantErr: ErrOutsideBusinessHours},
		{name: "closed day", candidate: span(at(5, 10, 0), time.Hour), wantErr: ErrOutsideBusinessHours},
		{name: "next week monday within horizon", candidate: span(at(11, 9, 0), time.Hour)},
		{name: "beyond horizon", candidate: span(at(18, 9, 0), time.Hour), wantErr: ErrTooFarAhead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBookingWindow(location, policy, tt.candidate, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCheckBookingWindow_AcrossMidnight(t *testing.T) {
	location := &domain.Location{
		ID:       2,
		Timezone: "Europe/Moscow",
		BusinessHours: domain.WeeklyHours{
			time.Friday:   {{Open: "22:00", Close: "24:00"}},
			time.Saturday: {{Open: "00:00", Close: "02:00"}},
			time.Sunday:   {{Open: "00:00", Close: "02:00"}},
		},
	}
	policy := &domain.SchedulingPolicy{LocationID: 2, GranularityMinutes: 15, AdvanceBookingDays: 7}

	moscow, err := location.TimeLocation()
	assert.NoError(t, err)
	local := func(day, hour, minute int) time.Time {
		return time.Date(2026, 5, day, hour, minute, 0, 0, moscow)
	}
	// понедельник
	now := local(4, 8, 0)

	tests := []struct {
		name    string
		start   time.Time
		length  time.Duration
		wantErr error
	}{
		{name: "friday night into saturday", start: local(8, 23, 0), length: 2 * time.Hour},
		{name: "after midnight only", start: local(9, 0, 30), length: time.Hour},
		{name: "past saturday close", start: local(8, 23, 0), length: 4 * time.Hour, wantErr: ErrOutsideBusinessHours},
		{name: "saturday has no evening window", start: local(9, 23, 0), length: 2 * time.Hour, wantErr: ErrOutsideBusinessHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBookingWindow(location, policy, domain.Interval{Start: tt.start, End: tt.start.Add(tt.length)}, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpeningHours_JoinsNextDay(t *testing.T) {
	location := &domain.Location{
		Timezone: "UTC",
		BusinessHours: domain.WeeklyHours{
			time.Monday:  {{Open: "20:00", Close: "24:00"}},
			time.Tuesday: {{Open: "00:00", Close: "03:00"}, {Open: "09:00", Close: "10:00"}},
		},
	}

	got, err := OpeningHours(location, time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, []domain.Interval{
		{Start: time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC), End: time.Date(2026, 5, 5, 3, 0, 0, 0, time.UTC)},
		{Start: time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC), End: time.Date(2026, 5, 5, 10, 0, 0, 0, time.UTC)},
	}, got)
}
