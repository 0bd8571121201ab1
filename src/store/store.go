package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record already exists")
	ErrUnavailable = errors.New("remote backend unavailable")
)

// Local is the device-local key-value store. It survives restarts and is
// the read cache and fallback write target for every entity.
type Local interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type Entity interface {
	GetID() string
}

// Remote is the CRUD surface of the remote backend for one entity type.
// Implementations return ErrNotFound, ErrConflict, or an error wrapping
// ErrUnavailable.
type Remote[T Entity] interface {
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) error
	Save(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
}

// Lister is implemented by remotes that can enumerate their records.
type Lister[T Entity] interface {
	List(ctx context.Context) ([]T, error)
}
