package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is returned when a wall-clock time cannot be parsed.
var ErrInvalidFormat = errors.New("invalid time string format")

const minutesPerDay = 24 * 60

// TimeString is a wall-clock time of day in "HH:MM" form.
// "24:00" is accepted as the end of the day so that a range can close at midnight.
type TimeString string

// NewTimeString builds a TimeString from the hour and minute of t.
func NewTimeString(t time.Time) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
}

// NewTimeStringFromMinutes builds a TimeString from minutes since midnight.
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return "", fmt.Errorf("%w: %d minutes is out of day range", ErrInvalidFormat, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// ParseTimeString parses "HH:MM" or "HH:MM:SS" (seconds are dropped).
func ParseTimeString(s string) (TimeString, error) {
	minutes, err := parseMinutes(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return NewTimeStringFromMinutes(minutes)
}

func parseMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidFormat
	}
	for _, p := range parts {
		if len(p) != 2 {
			return 0, ErrInvalidFormat
		}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidFormat
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 {
		return 0, ErrInvalidFormat
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, ErrInvalidFormat
		}
		if hours == 24 && seconds != 0 {
			return 0, ErrInvalidFormat
		}
	}
	if hours == 24 && minutes != 0 {
		return 0, ErrInvalidFormat
	}

	return hours*60 + minutes, nil
}

// Validate reports whether the value is a well-formed wall-clock time.
func (t TimeString) Validate() error {
	_, err := parseMinutes(string(t))
	return err
}

// Minutes returns minutes since midnight. Invalid values yield -1.
func (t TimeString) Minutes() int {
	m, err := parseMinutes(string(t))
	if err != nil {
		return -1
	}
	return m
}

func (t TimeString) IsZero() bool {
	return t == ""
}

func (t TimeString) Before(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeString) After(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// On anchors the wall-clock time to the calendar date of day in loc.
// Day overflow ("24:00") rolls into the next day.
func (t TimeString) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	minutes := t.Minutes()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

func (t TimeString) String() string {
	return string(t)
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeString) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidFormat, src)
	}

	parsed, err := ParseTimeString(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}
