package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type pendingOp string

const (
	opSave   pendingOp = "save"
	opDelete pendingOp = "delete"
)

const pendingPrefix = "pending:"

// DualPath writes to the remote backend first and falls back to the local
// store when the remote is unreachable. Reads are served from the local
// store and only reach the remote on a local miss. Writes that could not
// reach the remote leave a pending marker for Flush.
type DualPath[T Entity] struct {
	kind    string
	remote  Remote[T]
	local   Local
	timeout time.Duration

	// mu orders local writes against Flush clearing a pending marker.
	mu sync.Mutex
}

// NewDualPath builds a store for one entity kind. A nil remote keeps the
// store local-only.
func NewDualPath[T Entity](kind string, remote Remote[T], local Local, timeout time.Duration) *DualPath[T] {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DualPath[T]{kind: kind, remote: remote, local: local, timeout: timeout}
}

func (d *DualPath[T]) Name() string {
	return d.kind
}

func (d *DualPath[T]) key(id string) string {
	return d.kind + ":" + id
}

func (d *DualPath[T]) pendingKey(id string) string {
	return pendingPrefix + d.kind + ":" + id
}

func (d *DualPath[T]) remoteCall(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return fn(ctx)
}

func (d *DualPath[T]) remoteGet(ctx context.Context, id string) (T, error) {
	var v T
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		var err error
		v, err = d.remote.Get(ctx, id)
		return err
	})
	return v, err
}

// Create stores a new record. If the remote already holds a record with the
// same id, that record wins and is returned in place of v.
func (d *DualPath[T]) Create(ctx context.Context, v T) (T, error) {
	if d.remote == nil {
		return v, d.putLocal(ctx, v)
	}
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		return d.remote.Create(ctx, v)
	})
	switch {
	case err == nil:
		if lerr := d.putLocal(ctx, v); lerr != nil {
			d.undoRemoteCreate(ctx, v.GetID())
			return v, lerr
		}
		return v, nil
	case errors.Is(err, ErrConflict):
		existing, gerr := d.remoteGet(ctx, v.GetID())
		if gerr != nil {
			zap.S().Warnf("[dualpath] %s %s exists remotely but could not be read back: %s", d.kind, v.GetID(), gerr.Error())
			return v, d.putLocal(ctx, v)
		}
		zap.S().Infof("[dualpath] %s %s already exists remotely, reusing it", d.kind, v.GetID())
		return existing, d.putLocal(ctx, existing)
	default:
		zap.S().Warnf("[dualpath] remote create of %s %s failed, keeping it local: %s", d.kind, v.GetID(), err.Error())
		return v, d.putLocalPending(ctx, v)
	}
}

func (d *DualPath[T]) undoRemoteCreate(ctx context.Context, id string) {
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		return d.remote.Delete(ctx, id)
	})
	if err != nil {
		zap.S().Errorf("[dualpath] could not undo remote create of %s %s: %s", d.kind, id, err.Error())
	}
}

// Save upserts v.
func (d *DualPath[T]) Save(ctx context.Context, v T) error {
	if d.remote == nil {
		return d.putLocal(ctx, v)
	}
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		return d.remote.Save(ctx, v)
	})
	if err != nil {
		zap.S().Warnf("[dualpath] remote save of %s %s failed, keeping it local: %s", d.kind, v.GetID(), err.Error())
		return d.putLocalPending(ctx, v)
	}
	return d.putLocal(ctx, v)
}

// Delete removes the record. Deleting a missing record is not an error.
func (d *DualPath[T]) Delete(ctx context.Context, id string) error {
	if d.remote == nil {
		return d.local.Delete(ctx, d.key(id))
	}
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		return d.remote.Delete(ctx, id)
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		zap.S().Warnf("[dualpath] remote delete of %s %s failed, deleting locally: %s", d.kind, id, err.Error())
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.local.Set(ctx, d.pendingKey(id), []byte(opDelete)); err != nil {
			return err
		}
		return d.local.Delete(ctx, d.key(id))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.local.Delete(ctx, d.key(id)); err != nil {
		return err
	}
	return d.local.Delete(ctx, d.pendingKey(id))
}

// Get reads from the local store, then from the remote on a miss. Remote
// failures are reported as ErrNotFound.
func (d *DualPath[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	b, err := d.local.Get(ctx, d.key(id))
	if err == nil {
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return zero, fmt.Errorf("decoding %s %s: %w", d.kind, id, err)
		}
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		zap.S().Warnf("[dualpath] local read of %s %s failed: %s", d.kind, id, err.Error())
	}
	if d.remote == nil || d.pendingOp(ctx, id) == opDelete {
		return zero, ErrNotFound
	}
	v, rerr := d.remoteGet(ctx, id)
	if rerr != nil {
		if !errors.Is(rerr, ErrNotFound) {
			zap.S().Warnf("[dualpath] remote read of %s %s failed: %s", d.kind, id, rerr.Error())
		}
		return zero, ErrNotFound
	}
	if err := d.putLocal(ctx, v); err != nil {
		zap.S().Warnf("[dualpath] could not cache %s %s: %s", d.kind, id, err.Error())
	}
	return v, nil
}

// List returns every locally known record of this kind.
func (d *DualPath[T]) List(ctx context.Context) ([]T, error) {
	keys, err := d.local.Keys(ctx, d.kind+":")
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		b, err := d.local.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			zap.S().Warnf("[dualpath] skipping undecodable %s: %s", k, err.Error())
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Warm copies the remote's records into the local store when the remote can
// list them. Records already present locally are left untouched.
func (d *DualPath[T]) Warm(ctx context.Context) (int, error) {
	lister, ok := d.remote.(Lister[T])
	if d.remote == nil || !ok {
		return 0, nil
	}
	var items []T
	err := d.remoteCall(ctx, func(ctx context.Context) error {
		var err error
		items, err = lister.List(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range items {
		if _, err := d.local.Get(ctx, d.key(v.GetID())); err == nil {
			continue
		}
		if err := d.putLocal(ctx, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Pending returns the ids waiting to be replayed to the remote.
func (d *DualPath[T]) Pending(ctx context.Context) ([]string, error) {
	keys, err := d.local.Keys(ctx, pendingPrefix+d.kind+":")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, pendingPrefix+d.kind+":"))
	}
	return ids, nil
}

// Flush replays pending local writes to the remote. It stops at the first
// transport failure and reports how many records were synced. A record
// written again while its replay was in flight stays pending for the next
// pass.
func (d *DualPath[T]) Flush(ctx context.Context) (int, error) {
	if d.remote == nil {
		return 0, nil
	}
	ids, err := d.Pending(ctx)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, id := range ids {
		mark, err := d.local.Get(ctx, d.pendingKey(id))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return synced, err
		}
		var (
			payload []byte
			rerr    error
		)
		switch pendingOp(mark) {
		case opDelete:
			rerr = d.remoteCall(ctx, func(ctx context.Context) error {
				return d.remote.Delete(ctx, id)
			})
			if errors.Is(rerr, ErrNotFound) {
				rerr = nil
			}
		default:
			b, lerr := d.local.Get(ctx, d.key(id))
			if errors.Is(lerr, ErrNotFound) {
				break
			}
			if lerr != nil {
				return synced, lerr
			}
			payload = b
			var v T
			if err := json.Unmarshal(b, &v); err != nil {
				return synced, err
			}
			rerr = d.remoteCall(ctx, func(ctx context.Context) error {
				return d.remote.Save(ctx, v)
			})
		}
		if rerr != nil {
			return synced, rerr
		}
		cleared, err := d.clearPending(ctx, id, mark, payload)
		if err != nil {
			return synced, err
		}
		if !cleared {
			zap.S().Infof("[dualpath] %s %s changed during flush, keeping it pending", d.kind, id)
			continue
		}
		synced++
	}
	return synced, nil
}

// clearPending drops the marker for id when neither the marker nor the
// local payload changed since Flush read them.
func (d *DualPath[T]) clearPending(ctx context.Context, id string, mark, payload []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, err := d.local.Get(ctx, d.pendingKey(id))
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !bytes.Equal(cur, mark) {
		return false, nil
	}
	if pendingOp(mark) != opDelete {
		now, err := d.local.Get(ctx, d.key(id))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}
		if !bytes.Equal(now, payload) {
			return false, nil
		}
	}
	return true, d.local.Delete(ctx, d.pendingKey(id))
}

func (d *DualPath[T]) pendingOp(ctx context.Context, id string) pendingOp {
	b, err := d.local.Get(ctx, d.pendingKey(id))
	if err != nil {
		return ""
	}
	return pendingOp(b)
}

func (d *DualPath[T]) putLocal(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.local.Set(ctx, d.key(v.GetID()), b)
}

func (d *DualPath[T]) putLocalPending(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.local.Set(ctx, d.key(v.GetID()), b); err != nil {
		return err
	}
	return d.local.Set(ctx, d.pendingKey(v.GetID()), []byte(opSave))
}
