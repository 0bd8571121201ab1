package models

import (
	"artbook/src/types"
	"fmt"
)

// PaymentMethod is the user's default card. ID equals UserID.
type PaymentMethod struct {
	ID         string `gorm:"primarykey" json:"id"`
	UserID     string `gorm:"uniqueIndex" json:"user_id"`
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	GatewayRef string `json:"gateway_ref,omitempty"`
	// CustomerRef is the gateway customer the card is attached to.
	CustomerRef string `json:"customer_ref,omitempty"`

	types.Timestamps
}

func (p PaymentMethod) GetID() string {
	return p.ID
}

func (p PaymentMethod) Label() string {
	return fmt.Sprintf("%s •••• %s", p.Brand, p.Last4)
}
