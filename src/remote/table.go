package remote

import (
	"artbook/src/models/scopes"
	"artbook/src/store"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Table is the remote backend for one gorm model.
type Table[T store.Entity] struct {
	db *gorm.DB
}

func NewTable[T store.Entity](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	err := t.db.WithContext(ctx).Scopes(scopes.WithID(id)).Take(&v).Error
	return v, Classify(err)
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	var vs []T
	err := t.db.WithContext(ctx).Find(&vs).Error
	return vs, Classify(err)
}

func (t *Table[T]) Create(ctx context.Context, v T) error {
	return Classify(t.db.WithContext(ctx).Create(&v).Error)
}

func (t *Table[T]) Save(ctx context.Context, v T) error {
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&v).
		Error
	return Classify(err)
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	var v T
	return Classify(t.db.WithContext(ctx).Scopes(scopes.WithID(id)).Delete(&v).Error)
}

const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// Classify maps a gorm/postgres error onto the store error set. Missing
// tables and columns count as an unavailable backend, same as a dropped
// connection.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return store.ErrConflict
		case pgUndefinedTable, pgUndefinedColumn:
			return fmt.Errorf("%w: schema missing: %s", store.ErrUnavailable, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
