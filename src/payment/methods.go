package payment

import (
	"artbook/src/models"
	"context"
)

type MethodRecords interface {
	Get(ctx context.Context, id string) (models.PaymentMethod, error)
	Save(ctx context.Context, v models.PaymentMethod) error
}

// Methods keeps one default payment method per user.
type Methods struct {
	records MethodRecords
}

func NewMethods(records MethodRecords) *Methods {
	return &Methods{records: records}
}

func (m *Methods) Default(ctx context.Context, userID string) (models.PaymentMethod, bool) {
	pm, err := m.records.Get(ctx, userID)
	if err != nil || pm.GatewayRef == "" {
		return models.PaymentMethod{}, false
	}
	return pm, true
}

func (m *Methods) Put(ctx context.Context, userID string, method Method) (models.PaymentMethod, error) {
	pm := models.PaymentMethod{
		ID:          userID,
		UserID:      userID,
		Brand:       method.Brand,
		Last4:       method.Last4,
		ExpMonth:    method.ExpMonth,
		ExpYear:     method.ExpYear,
		GatewayRef:  method.Ref,
		CustomerRef: method.CustomerRef,
	}
	if err := m.records.Save(ctx, pm); err != nil {
		return models.PaymentMethod{}, err
	}
	return pm, nil
}
