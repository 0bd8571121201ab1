package models

import (
	"artbook/src/types"
	"time"
)

type Registration struct {
	ID               string                   `gorm:"primarykey;type:uuid" json:"id"`
	SubjectID        string                   `gorm:"index" json:"subject_id"`
	UserID           string                   `gorm:"index" json:"user_id"`
	Kind             types.SubjectKind        `json:"kind"`
	Quantity         int                      `json:"quantity"`
	Tickets          map[string]int           `gorm:"serializer:json" json:"tickets,omitempty"`
	TotalMinor       int64                    `json:"total_minor"`
	Currency         string                   `json:"currency"`
	ConfirmationCode string                   `gorm:"uniqueIndex" json:"confirmation_code"`
	PaymentRef       string                   `json:"payment_ref,omitempty"`
	SlotStart        *time.Time               `json:"slot_start,omitempty"`
	Status           types.RegistrationStatus `json:"status"`

	types.Timestamps
}

func (r Registration) GetID() string {
	return r.ID
}

func (r Registration) Active() bool {
	return r.Status == types.REGISTRATION_CONFIRMED
}
