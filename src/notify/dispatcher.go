package notify

import (
	"artbook/src/types"
	"context"
	"errors"
	"time"
)

// Template is the data a confirmation message is rendered from.
type Template struct {
	Kind             types.NotificationKind `json:"kind"`
	UserID           string                 `json:"user_id"`
	SubjectID        string                 `json:"subject_id"`
	SubjectName      string                 `json:"subject_name"`
	RegistrationID   string                 `json:"registration_id,omitempty"`
	ConfirmationCode string                 `json:"confirmation_code,omitempty"`
	Quantity         int                    `json:"quantity"`
	Tickets          map[string]int         `json:"tickets,omitempty"`
	Total            string                 `json:"total,omitempty"`
	SlotStart        *time.Time             `json:"slot_start,omitempty"`
	SentAt           time.Time              `json:"sent_at"`
}

// Dispatcher delivers booking notifications. Callers treat every error as
// non-fatal.
type Dispatcher interface {
	Send(ctx context.Context, userID string, t Template) error
}

type Nop struct{}

func (Nop) Send(context.Context, string, Template) error {
	return nil
}

// Fanout sends through every dispatcher and joins their errors.
type Fanout []Dispatcher

func (f Fanout) Send(ctx context.Context, userID string, t Template) error {
	var errs []error
	for _, d := range f {
		if err := d.Send(ctx, userID, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
