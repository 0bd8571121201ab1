package payment

import (
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

type StripeGateway struct {
	sc *stripe.Client
}

func NewStripeGateway(sc *stripe.Client) *StripeGateway {
	return &StripeGateway{sc: sc}
}

// CreatePaymentMethod registers the card and attaches it to the user's
// customer so it can be charged again later.
func (g *StripeGateway) CreatePaymentMethod(ctx context.Context, d MethodDetails) (Method, error) {
	customer := d.CustomerRef
	if customer == "" {
		cparams := &stripe.CustomerCreateParams{}
		cparams.AddMetadata("user_id", d.UserID)
		cus, err := g.sc.V1Customers.Create(ctx, cparams)
		if err != nil {
			return Method{}, fmt.Errorf("stripe: could not create customer: %w", err)
		}
		customer = cus.ID
	}
	params := &stripe.PaymentMethodCreateParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCreateCardParams{
			Token: stripe.String(d.Token),
		},
	}
	pm, err := g.sc.V1PaymentMethods.Create(ctx, params)
	if err != nil {
		return Method{}, err
	}
	pm, err = g.sc.V1PaymentMethods.Attach(ctx, pm.ID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customer),
	})
	if err != nil {
		return Method{}, fmt.Errorf("stripe: could not attach payment method: %w", err)
	}
	m := Method{Ref: pm.ID, CustomerRef: customer, Brand: d.Brand, Last4: d.Last4, ExpMonth: d.ExpMonth, ExpYear: d.ExpYear}
	if pm.Card != nil {
		m.Brand = string(pm.Card.Brand)
		m.Last4 = pm.Card.Last4
		m.ExpMonth = int(pm.Card.ExpMonth)
		m.ExpYear = int(pm.Card.ExpYear)
	}
	return m, nil
}

func (g *StripeGateway) Authorize(ctx context.Context, req AuthorizeRequest) (Outcome, error) {
	if err := validate(req); err != nil {
		return Outcome{}, err
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.MethodRef),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && isDefinitive(se) {
			ref := ""
			if se.PaymentIntent != nil {
				ref = se.PaymentIntent.ID
			}
			zap.S().Infof("[stripe] payment declined: %s %s", se.Code, se.Msg)
			return Outcome{Status: types.PAYMENT_FAILED, Reference: ref, Message: se.Msg}, nil
		}
		return Outcome{}, fmt.Errorf("stripe: %w", err)
	}
	return outcomeOf(pi), nil
}

func (g *StripeGateway) Void(ctx context.Context, reference string) error {
	_, err := g.sc.V1Refunds.Create(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(reference),
	})
	return err
}

func isDefinitive(se *stripe.Error) bool {
	return se.Type == stripe.ErrorTypeCard || se.Type == stripe.ErrorTypeInvalidRequest
}

func outcomeOf(pi *stripe.PaymentIntent) Outcome {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		return Outcome{Status: types.PAYMENT_SUCCEEDED, Reference: pi.ID}
	default:
		msg := fmt.Sprintf("payment intent is %s", pi.Status)
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			msg = pi.LastPaymentError.Msg
		}
		return Outcome{Status: types.PAYMENT_FAILED, Reference: pi.ID, Message: msg}
	}
}
