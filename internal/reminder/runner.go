package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"teamtodo-backend/internal/task/domain"
)

// Runner feeds task snapshots to a Reconciler one pass at a time. Snapshots
// that arrive during a pass collapse into the newest one, which runs next.
type Runner struct {
	reconciler *Reconciler
	resync     time.Duration

	mu       sync.Mutex
	latest   []*domain.Task
	observed bool
	wake     chan struct{}

	// held for the duration of a pass
	passMu sync.Mutex
}

// NewRunner creates a runner; resync <= 0 disables the periodic pass.
func NewRunner(reconciler *Reconciler, resync time.Duration) *Runner {
	return &Runner{
		reconciler: reconciler,
		resync:     resync,
		wake:       make(chan struct{}, 1),
	}
}

// Submit records the latest observed task list. It never blocks.
func (r *Runner) Submit(tasks []*domain.Task) {
	snapshot := make([]*domain.Task, len(tasks))
	copy(snapshot, tasks)

	r.mu.Lock()
	r.latest = snapshot
	r.observed = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run processes snapshots until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.resync > 0 {
		ticker := time.NewTicker(r.resync)
		defer ticker.Stop()
		tick = ticker.C
	}

	log.Printf("[Reminder] Runner started (resync: %s)", r.resync)
	for {
		select {
		case <-ctx.Done():
			log.Println("[Reminder] Runner stopped")
			return
		case <-r.wake:
			r.pass(ctx)
		case <-tick:
			r.pass(ctx)
		}
	}
}

// RunOnce records tasks as the latest snapshot and reconciles it synchronously.
// It is safe to call while Run is active; the passes do not overlap.
func (r *Runner) RunOnce(ctx context.Context, tasks []*domain.Task) (Result, error) {
	snapshot := make([]*domain.Task, len(tasks))
	copy(snapshot, tasks)

	r.mu.Lock()
	r.latest = snapshot
	r.observed = true
	r.mu.Unlock()

	return r.reconcileLatest(ctx)
}

func (r *Runner) pass(ctx context.Context) {
	res, err := r.reconcileLatest(ctx)
	if err != nil {
		log.Printf("[Reminder] Reconciliation pass failed: %v", err)
		return
	}
	if res.Operations() > 0 || res.Failed > 0 {
		log.Printf("[Reminder] Reconciled: %s", res)
	}
}

func (r *Runner) reconcileLatest(ctx context.Context) (Result, error) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	r.mu.Lock()
	tasks, observed := r.latest, r.observed
	r.mu.Unlock()

	// nothing observed yet; reconciling an empty list would cancel everything
	if !observed {
		return Result{}, nil
	}
	return r.reconciler.Reconcile(ctx, tasks)
}
