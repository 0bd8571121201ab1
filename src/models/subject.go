package models

import (
	"artbook/src/types"
	"time"
)

// Subject is a bookable venue or event.
type Subject struct {
	ID        string            `gorm:"primarykey" json:"id"`
	Kind      types.SubjectKind `gorm:"index" json:"kind"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Total     int               `json:"total"`
	Remaining int               `json:"remaining"`
	Prices    map[string]int64  `gorm:"serializer:json" json:"prices"`
	OpensAt   string            `json:"opens_at,omitempty"`
	ClosesAt  string            `json:"closes_at,omitempty"`
	StartsAt  *time.Time        `json:"starts_at,omitempty"`

	types.Timestamps
}

func (s Subject) GetID() string {
	return s.ID
}

func (s Subject) IsVenue() bool {
	return s.Kind == types.SUBJECT_VENUE
}

// Clamped returns a copy with Remaining forced into [0, Total].
func (s Subject) Clamped() Subject {
	if s.Total < 0 {
		s.Total = 0
	}
	if s.Remaining < 0 {
		s.Remaining = 0
	}
	if s.Remaining > s.Total {
		s.Remaining = s.Total
	}
	return s
}
