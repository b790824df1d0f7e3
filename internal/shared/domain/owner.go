package domain

import "strings"

// OwnerID identifies the authenticated user that owns a record.
// The zero value means "no session".
type OwnerID struct {
	value string
}

// NewOwnerID wraps an identifier issued by the credential service.
// Surrounding whitespace is dropped.
func NewOwnerID(value string) OwnerID {
	return OwnerID{value: strings.TrimSpace(value)}
}

func (o OwnerID) String() string { return o.value }

// IsEmpty reports whether no owner is present.
func (o OwnerID) IsEmpty() bool { return o.value == "" }

func (o OwnerID) Equals(other OwnerID) bool { return o.value == other.value }
