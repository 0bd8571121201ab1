package ledger

import (
	"artbook/src/models"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
)

// SubjectStore is the persistence the ledger writes through.
type SubjectStore interface {
	Get(ctx context.Context, id string) (models.Subject, error)
	Save(ctx context.Context, v models.Subject) error
	List(ctx context.Context) ([]models.Subject, error)
}

// Ledger owns remaining-capacity bookkeeping. Reserve and Release are the
// only writers of Subject.Remaining and are serialised under one lock.
type Ledger struct {
	mu       sync.Mutex
	store    SubjectStore
	subjects map[string]models.Subject
}

func New(s SubjectStore) *Ledger {
	return &Ledger{store: s, subjects: map[string]models.Subject{}}
}

// Load fills the in-memory view from the store.
func (l *Ledger) Load(ctx context.Context) error {
	items, err := l.store.List(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range items {
		l.subjects[s.ID] = s.Clamped()
	}
	zap.S().Infof("[ledger] loaded %d subjects", len(items))
	return nil
}

// Seed registers catalog subjects that the ledger does not know yet.
// Known subjects keep their current remaining capacity.
func (l *Ledger) Seed(ctx context.Context, subjects []models.Subject) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	added := 0
	for _, s := range subjects {
		if _, ok := l.lookup(ctx, s.ID); ok {
			continue
		}
		s = s.Clamped()
		if err := l.store.Save(ctx, s); err != nil {
			return added, fmt.Errorf("seeding %s: %w", s.ID, err)
		}
		l.subjects[s.ID] = s
		added++
	}
	return added, nil
}

// lookup finds a subject in memory or in the store. Caller holds l.mu.
func (l *Ledger) lookup(ctx context.Context, id string) (models.Subject, bool) {
	if s, ok := l.subjects[id]; ok {
		return s, true
	}
	s, err := l.store.Get(ctx, id)
	if err != nil {
		return models.Subject{}, false
	}
	s = s.Clamped()
	l.subjects[id] = s
	return s, true
}

func (l *Ledger) Get(ctx context.Context, id string) (models.Subject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.lookup(ctx, id)
	if !ok {
		return models.Subject{}, ErrSubjectNotFound
	}
	return s, nil
}

func (l *Ledger) List(ctx context.Context) []models.Subject {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Subject, 0, len(l.subjects))
	for _, s := range l.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remaining is a hint for display. Only Reserve is authoritative.
func (l *Ledger) Remaining(ctx context.Context, id string) (int, error) {
	s, err := l.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.Remaining, nil
}

// Reserve takes qty seats from the subject or fails without changing it.
func (l *Ledger) Reserve(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.lookup(ctx, id)
	if !ok {
		return ErrSubjectNotFound
	}
	if s.Remaining < qty {
		return ErrInsufficientCapacity
	}
	next := s
	next.Remaining -= qty
	if err := l.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persisting reservation on %s: %w", id, err)
	}
	l.subjects[id] = next
	zap.S().Infof("[ledger] reserved %d on %s, %d/%d left", qty, id, next.Remaining, next.Total)
	return nil
}

// Release returns qty seats. Remaining never rises above Total.
func (l *Ledger) Release(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.lookup(ctx, id)
	if !ok {
		return ErrSubjectNotFound
	}
	next := s
	next.Remaining += qty
	if next.Remaining > next.Total {
		zap.S().Warnf("[ledger] release of %d on %s would exceed total %d, clamping", qty, id, next.Total)
		next.Remaining = next.Total
	}
	if err := l.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persisting release on %s: %w", id, err)
	}
	l.subjects[id] = next
	zap.S().Infof("[ledger] released %d on %s, %d/%d left", qty, id, next.Remaining, next.Total)
	return nil
}
