package payment

import (
	"artbook/src/types"
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeGateway is an in-memory Gateway. Outcomes are deterministic and
// driven by its exported fields.
type FakeGateway struct {
	mu sync.Mutex

	Decline bool
	Err     error
	Delay   time.Duration

	Requests []AuthorizeRequest
	Charges  int
	Voided   []string

	byKey     map[string]Outcome
	seq       int
	customers int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{byKey: map[string]Outcome{}}
}

func (f *FakeGateway) CreatePaymentMethod(_ context.Context, d MethodDetails) (Method, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return Method{}, f.Err
	}
	customer := d.CustomerRef
	if customer == "" {
		f.customers++
		customer = fmt.Sprintf("cus_fake_%d", f.customers)
	}
	f.seq++
	return Method{Ref: fmt.Sprintf("pm_fake_%d", f.seq), CustomerRef: customer, Brand: d.Brand, Last4: d.Last4, ExpMonth: d.ExpMonth, ExpYear: d.ExpYear}, nil
}

func (f *FakeGateway) Authorize(ctx context.Context, req AuthorizeRequest) (Outcome, error) {
	if err := validate(req); err != nil {
		return Outcome{}, err
	}
	f.mu.Lock()
	delay := f.Delay
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return Outcome{}, f.Err
	}
	if prev, ok := f.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return prev, nil
	}
	f.seq++
	ref := fmt.Sprintf("pi_fake_%d", f.seq)
	out := Outcome{Status: types.PAYMENT_SUCCEEDED, Reference: ref}
	if f.Decline {
		out = Outcome{Status: types.PAYMENT_FAILED, Reference: ref, Message: "card declined"}
	} else {
		f.Charges++
	}
	if req.IdempotencyKey != "" {
		f.byKey[req.IdempotencyKey] = out
	}
	return out, nil
}

func (f *FakeGateway) Void(_ context.Context, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Voided = append(f.Voided, reference)
	if f.Charges > 0 {
		f.Charges--
	}
	return nil
}

func (f *FakeGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
