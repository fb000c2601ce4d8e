package domain

// Default scheduling policy values, used when neither the location nor the
// configuration overrides them.
const (
	DefaultGranularityMinutes = 15
	DefaultMinLeadMinutes     = 60
	DefaultAdvanceBookingDays = 0 // 0 = unlimited
	DefaultMaxSuggestions     = 0 // 0 = all slots
)

// Business validation constants
const (
	MinGranularityMinutes       = 5
	MaxGranularityMinutes       = 240
	MinLeadMinutes              = 0
	MaxLeadMinutes              = 10080 // 1 week
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365
	MinSuggestions              = 0
	MaxSuggestions              = 100
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxCustomerNameLength       = 200
	MaxAvailabilityRangeDays    = 31
	MaxListRangeDays            = 93
)

// RescheduledReason is recorded on the original appointment of a reschedule.
const RescheduledReason = "rescheduled"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
