// Package localtime answers wall-clock questions (which day, which hour) in the
// academy's reference timezone, independent of the host's zone.
package localtime

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// DateLayout is the calendar date format used for all stored dates.
const DateLayout = "2006-01-02"

var ErrBadDate = errors.New("invalid calendar date")

// Zone converts instants to and from local calendar dates in a fixed location.
type Zone struct {
	loc *time.Location
}

// Load returns a Zone for an IANA timezone name such as "Europe/Berlin".
func Load(name string) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

func New(loc *time.Location) *Zone {
	return &Zone{loc: loc}
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

// Date returns the local calendar date of t.
func (z *Zone) Date(t time.Time) string {
	return t.In(z.loc).Format(DateLayout)
}

// Hour returns the local hour of day (0-23) of t.
func (z *Zone) Hour(t time.Time) int {
	return t.In(z.loc).Hour()
}

// MidnightUTC returns the UTC instant of local midnight starting date.
func (z *Zone) MidnightUTC(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, z.loc).UTC(), nil
}

// DayBounds returns the half-open UTC range [start, end) covering the local date.
func (z *Zone) DayBounds(date string) (time.Time, time.Time, error) {
	start, err := z.MidnightUTC(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	next, err := AddDays(date, 1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := z.MidnightUTC(next)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// AddDays shifts a calendar date by n days (n may be negative).
func AddDays(date string, n int) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

// Kitchen formats the local time of t for display, e.g. "2:30 PM".
func (z *Zone) Kitchen(t time.Time) string {
	return t.In(z.loc).Format("3:04 PM")
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
