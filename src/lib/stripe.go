package lib

import (
	"artbook/src/config"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	stripeClient = stripe.NewClient(config.Get().StripeSecretKey)
	return stripeClient
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}
