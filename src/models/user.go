package models

import "artbook/src/types"

type User struct {
	ID    string `gorm:"primarykey" json:"id"`
	Email string `gorm:"uniqueIndex" json:"email"`
	Name  string `json:"name,omitempty"`

	types.Timestamps
}
