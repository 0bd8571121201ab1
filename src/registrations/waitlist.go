package registrations

import (
	"artbook/src/models"
	"artbook/src/store"
	"context"
	"errors"
	"sort"
	"time"
)

type Entries interface {
	Create(ctx context.Context, v models.WaitlistEntry) (models.WaitlistEntry, error)
	Get(ctx context.Context, id string) (models.WaitlistEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.WaitlistEntry, error)
}

type Waitlist struct {
	entries Entries
	now     func() time.Time
}

func NewWaitlist(entries Entries) *Waitlist {
	return &Waitlist{entries: entries, now: time.Now}
}

// Join adds the user to the subject's waitlist. Joining twice returns the
// original entry.
func (w *Waitlist) Join(ctx context.Context, subjectID, userID string, qty int) (models.WaitlistEntry, error) {
	if qty <= 0 {
		qty = 1
	}
	id := WaitlistID(subjectID, userID)
	if e, err := w.entries.Get(ctx, id); err == nil {
		return e, nil
	}
	e := models.WaitlistEntry{ID: id, SubjectID: subjectID, UserID: userID, Quantity: qty}
	e.CreatedAt = w.now()
	return w.entries.Create(ctx, e)
}

func (w *Waitlist) Leave(ctx context.Context, subjectID, userID string) error {
	err := w.entries.Delete(ctx, WaitlistID(subjectID, userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// ForSubject returns the subject's queue, oldest first.
func (w *Waitlist) ForSubject(ctx context.Context, subjectID string) ([]models.WaitlistEntry, error) {
	all, err := w.entries.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.WaitlistEntry, 0)
	for _, e := range all {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
