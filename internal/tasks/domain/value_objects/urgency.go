package value_objects

import (
	"errors"
	"strings"
)

// Urgency places a task on the urgent/important grid. Only three of the four
// quadrants are offered; urgent-but-unimportant work is not tracked.
type Urgency int

const (
	UrgencyUrgentImportant Urgency = iota + 1
	UrgencyNotUrgentImportant
	UrgencyNotUrgentNotImportant
)

var ErrInvalidUrgency = errors.New("urgency must be one of urgent-important, not-urgent-important, not-urgent-not-important")

var urgencyCodes = map[Urgency]string{
	UrgencyUrgentImportant:       "urgent-important",
	UrgencyNotUrgentImportant:    "not-urgent-important",
	UrgencyNotUrgentNotImportant: "not-urgent-not-important",
}

var urgencyLabels = map[Urgency]string{
	UrgencyUrgentImportant:       "Urgent and important",
	UrgencyNotUrgentImportant:    "Not urgent but important",
	UrgencyNotUrgentNotImportant: "Neither urgent nor important",
}

var urgencyAliases = map[string]Urgency{
	"緊急且重要":   UrgencyUrgentImportant,
	"不緊急但重要":  UrgencyNotUrgentImportant,
	"不重要也不緊急": UrgencyNotUrgentNotImportant,
}

// Urgencies lists every urgency from most to least pressing.
func Urgencies() []Urgency {
	return []Urgency{UrgencyUrgentImportant, UrgencyNotUrgentImportant, UrgencyNotUrgentNotImportant}
}

// ParseUrgency accepts a code in any case (underscores allowed for dashes)
// or a legacy label.
func ParseUrgency(s string) (Urgency, error) {
	s = strings.TrimSpace(s)
	if u, ok := urgencyAliases[s]; ok {
		return u, nil
	}
	normalized := strings.ReplaceAll(strings.ToLower(s), "_", "-")
	for u, code := range urgencyCodes {
		if normalized == code {
			return u, nil
		}
	}
	return 0, ErrInvalidUrgency
}

func (u Urgency) String() string {
	if code, ok := urgencyCodes[u]; ok {
		return code
	}
	return "invalid"
}

func (u Urgency) Label() string {
	if label, ok := urgencyLabels[u]; ok {
		return label
	}
	return "Invalid"
}

func (u Urgency) IsValid() bool {
	_, ok := urgencyCodes[u]
	return ok
}
