package store

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type Syncer interface {
	Name() string
	Flush(ctx context.Context) (int, error)
}

// Reconciler periodically pushes writes that only reached the local store.
type Reconciler struct {
	syncers []Syncer
	timeout time.Duration
}

func NewReconciler(timeout time.Duration, syncers ...Syncer) *Reconciler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reconciler{syncers: syncers, timeout: timeout}
}

// RunOnce flushes every syncer and returns the number of records synced.
// A failing syncer does not stop the others.
func (r *Reconciler) RunOnce() int {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	total := 0
	for _, s := range r.syncers {
		n, err := s.Flush(ctx)
		total += n
		if err != nil {
			zap.S().Warnf("[reconcile] %s: synced %d before failing: %s", s.Name(), n, err.Error())
			continue
		}
		if n > 0 {
			zap.S().Infof("[reconcile] %s: synced %d pending records", s.Name(), n)
		}
	}
	return total
}

func (r *Reconciler) Schedule(s gocron.Scheduler, every time.Duration) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { r.RunOnce() }),
		gocron.WithName("reconcile-remote"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}
