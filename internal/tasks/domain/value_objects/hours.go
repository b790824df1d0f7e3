package value_objects

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MinEstimatedHours = 1
	MaxEstimatedHours = 24

	unknownHoursText = "unknown"
)

var ErrInvalidHours = errors.New("estimated hours must be between 1 and 24, or unknown")

// EstimatedHours is a whole-hour estimate in [1,24] or the Unknown sentinel.
// The zero value is Unknown.
type EstimatedHours struct {
	hours int
}

// UnknownHours is the "no estimate provided" sentinel.
func UnknownHours() EstimatedHours {
	return EstimatedHours{}
}

// NewEstimatedHours rejects values outside [1,24].
func NewEstimatedHours(hours int) (EstimatedHours, error) {
	if hours < MinEstimatedHours || hours > MaxEstimatedHours {
		return EstimatedHours{}, ErrInvalidHours
	}
	return EstimatedHours{hours: hours}, nil
}

// ParseEstimatedHours accepts a decimal hour count or "unknown".
func ParseEstimatedHours(s string) (EstimatedHours, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, unknownHoursText) {
		return UnknownHours(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return EstimatedHours{}, ErrInvalidHours
	}
	return NewEstimatedHours(n)
}

// RestoreEstimatedHours decodes the stored integer form. Zero and anything
// outside [1,24] read back as Unknown; older documents used the largest
// integer as their sentinel.
func RestoreEstimatedHours(stored int64) EstimatedHours {
	if stored < MinEstimatedHours || stored > MaxEstimatedHours {
		return UnknownHours()
	}
	return EstimatedHours{hours: int(stored)}
}

// IsUnknown reports whether this is the sentinel.
func (h EstimatedHours) IsUnknown() bool { return h.hours == 0 }

// Hours returns the estimate and false for the sentinel.
func (h EstimatedHours) Hours() (int, bool) {
	return h.hours, !h.IsUnknown()
}

// Stored returns the integer persisted for this value; 0 encodes Unknown.
func (h EstimatedHours) Stored() int { return h.hours }

func (h EstimatedHours) String() string {
	if h.IsUnknown() {
		return unknownHoursText
	}
	return strconv.Itoa(h.hours)
}
