package models

import "artbook/src/types"

type WaitlistEntry struct {
	ID        string `gorm:"primarykey;type:uuid" json:"id"`
	SubjectID string `gorm:"index" json:"subject_id"`
	UserID    string `gorm:"index" json:"user_id"`
	Quantity  int    `json:"quantity"`

	types.Timestamps
}

func (w WaitlistEntry) GetID() string {
	return w.ID
}
