package registrations

import (
	"artbook/src/models"
	"artbook/src/store"
	"artbook/src/types"
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidRecord = errors.New("registration is missing subject, user or quantity")

type Records interface {
	Create(ctx context.Context, v models.Registration) (models.Registration, error)
	Get(ctx context.Context, id string) (models.Registration, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Registration, error)
}

// Store holds confirmed registrations and reservations.
type Store struct {
	records Records
	now     func() time.Time
}

func NewStore(records Records) *Store {
	return &Store{records: records, now: time.Now}
}

// Create persists r. If a record with the same id is already active it is
// returned unchanged.
func (s *Store) Create(ctx context.Context, r models.Registration) (models.Registration, error) {
	if r.SubjectID == "" || r.UserID == "" || r.Quantity <= 0 || r.ID == "" {
		return models.Registration{}, ErrInvalidRecord
	}
	if existing, err := s.records.Get(ctx, r.ID); err == nil && existing.Active() {
		zap.S().Infof("[registrations] %s already exists, reusing %s", r.ID, existing.ConfirmationCode)
		return existing, nil
	}
	if r.ConfirmationCode == "" {
		code, err := s.uniqueCode(ctx)
		if err != nil {
			return models.Registration{}, err
		}
		r.ConfirmationCode = code
	}
	if r.Status == "" {
		r.Status = types.REGISTRATION_CONFIRMED
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	return s.records.Create(ctx, r)
}

func (s *Store) uniqueCode(ctx context.Context) (string, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return "", err
	}
	used := make(map[string]struct{}, len(all))
	for _, r := range all {
		used[r.ConfirmationCode] = struct{}{}
	}
	for {
		code := NewConfirmationCode()
		if _, taken := used[code]; !taken {
			return code, nil
		}
	}
}

func (s *Store) Get(ctx context.Context, id string) (models.Registration, error) {
	return s.records.Get(ctx, id)
}

// FindActiveEvent returns the user's active registration for an event.
func (s *Store) FindActiveEvent(ctx context.Context, subjectID, userID string) (models.Registration, bool) {
	r, err := s.records.Get(ctx, EventRegistrationID(subjectID, userID))
	if err != nil || !r.Active() {
		return models.Registration{}, false
	}
	return r, true
}

// ListByUser returns the user's records, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Registration, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Registration, 0)
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes the record. A missing record is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.records.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
