package payment

import (
	"artbook/src/types"
	"context"
	"errors"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrMissingMethod = errors.New("payment method reference is required")
)

// MethodDetails describes a card to register. An empty CustomerRef creates
// a new gateway customer for UserID.
type MethodDetails struct {
	UserID      string
	CustomerRef string
	Token       string
	Brand       string
	Last4       string
	ExpMonth    int
	ExpYear     int
}

// Method is a card registered with the gateway.
type Method struct {
	Ref         string
	CustomerRef string
	Brand       string
	Last4       string
	ExpMonth    int
	ExpYear     int
}

type AuthorizeRequest struct {
	AmountMinor    int64
	Currency       string
	MethodRef      string
	CustomerRef    string
	IdempotencyKey string
	Description    string
}

type Outcome struct {
	Status    types.PaymentStatus
	Reference string
	Message   string
}

func (o Outcome) Succeeded() bool {
	return o.Status == types.PAYMENT_SUCCEEDED
}

// Gateway moves money. Authorize reports a definitive decline as a failed
// Outcome with a nil error; a non-nil error means the gateway could not be
// reached and the call may be retried with the same idempotency key.
type Gateway interface {
	CreatePaymentMethod(ctx context.Context, d MethodDetails) (Method, error)
	Authorize(ctx context.Context, req AuthorizeRequest) (Outcome, error)
	Void(ctx context.Context, reference string) error
}

func validate(req AuthorizeRequest) error {
	if req.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if req.MethodRef == "" {
		return ErrMissingMethod
	}
	return nil
}
