package value_objects

import (
	"errors"
	"time"
)

// DeadlineLayout is the text form of a Deadline.
const DeadlineLayout = "2006-01-02"

var ErrInvalidDeadline = errors.New("deadline must be a calendar date formatted YYYY-MM-DD")

// Deadline is a calendar date with no time of day and no zone.
type Deadline struct {
	date time.Time // midnight UTC
}

// NewDeadline builds a date, rejecting out-of-range components such as February 30.
func NewDeadline(year int, month time.Month, day int) (Deadline, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Deadline{}, ErrInvalidDeadline
	}
	return Deadline{date: t}, nil
}

// ParseDeadline reads the YYYY-MM-DD form.
func ParseDeadline(s string) (Deadline, error) {
	t, err := time.Parse(DeadlineLayout, s)
	if err != nil {
		return Deadline{}, ErrInvalidDeadline
	}
	return Deadline{date: t}, nil
}

// DeadlineOn takes the calendar date t falls on in its own location.
func DeadlineOn(t time.Time) Deadline {
	y, m, d := t.Date()
	return Deadline{date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Date returns the date components.
func (d Deadline) Date() (year int, month time.Month, day int) {
	return d.date.Date()
}

// Time returns midnight UTC of the date.
func (d Deadline) Time() time.Time { return d.date }

func (d Deadline) IsZero() bool { return d.date.IsZero() }

func (d Deadline) Before(other Deadline) bool { return d.date.Before(other.date) }

func (d Deadline) Equal(other Deadline) bool { return d.date.Equal(other.date) }

func (d Deadline) String() string {
	return d.date.Format(DeadlineLayout)
}
