// Package engine is the single writer over tasks, staff and history.
//
// Commands are serialized by a weighted semaphore with a bounded wait. Each
// command validates on copies, persists every changed entity to its
// repository, then applies all of them to memory under the snapshot lock so
// that readers never see a task transition without its staff counter update.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kazz187/housekeeping/internal/eventbus"
	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/metrics"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

type Config struct {
	// LockTimeout bounds the wait for the writer lock; zero waits for ctx only.
	LockTimeout time.Duration
	// IncludeBusy lets auto-assign pick busy staff that are still under capacity.
	IncludeBusy bool
	Now         func() time.Time
}

type Engine struct {
	tasks   *task.Store
	staff   *staff.Registry
	history *history.Recorder
	bus     *eventbus.Bus
	metrics *metrics.Metrics

	writer      *semaphore.Weighted
	lockTimeout time.Duration
	includeBusy bool
	now         func() time.Time

	// snapMu makes the in-memory apply of one commit atomic for Snapshot.
	snapMu sync.RWMutex
}

// New wires an engine over loaded stores. bus and m may be nil.
func New(tasks *task.Store, registry *staff.Registry, recorder *history.Recorder, bus *eventbus.Bus, m *metrics.Metrics, cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		tasks:       tasks,
		staff:       registry,
		history:     recorder,
		bus:         bus,
		metrics:     m,
		writer:      semaphore.NewWeighted(1),
		lockTimeout: cfg.LockTimeout,
		includeBusy: cfg.IncludeBusy,
		now:         now,
	}
	e.observeCounts()
	return e
}

func (e *Engine) lock(ctx context.Context) (func(), error) {
	waitCtx := ctx
	if e.lockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, e.lockTimeout)
		defer cancel()
	}
	if err := e.writer.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, cerr.NewError(cerr.Canceled, "request cancelled", ctx.Err())
		}
		return nil, cerr.NewError(cerr.Busy, "engine busy, retry", err)
	}
	return func() { e.writer.Release(1) }, nil
}

type taskChange struct {
	prev *task.Task // nil for a new task
	next *task.Task
}

type staffChange struct {
	prev *staff.Staff
	next *staff.Staff
}

// change is everything one command writes.
type change struct {
	tasks  []taskChange
	staff  []staffChange
	record *history.Record
}

func (e *Engine) commit(ctx context.Context, ch *change) error {
	var undo []func(context.Context) error
	rollback := func(cause error) error {
		rctx := context.WithoutCancel(ctx)
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](rctx); err != nil {
				slog.ErrorContext(ctx, "rollback failed, storage may diverge from memory", "error", err, "cause", cause)
			}
		}
		return cause
	}

	for _, c := range ch.tasks {
		if err := e.tasks.Persist(ctx, c.next); err != nil {
			return rollback(err)
		}
		undo = append(undo, func(ctx context.Context) error { return e.tasks.Revert(ctx, c.next.ID, c.prev) })
	}
	for _, c := range ch.staff {
		if err := e.staff.Persist(ctx, c.next); err != nil {
			return rollback(err)
		}
		undo = append(undo, func(ctx context.Context) error { return e.staff.Revert(ctx, c.prev) })
	}
	if ch.record != nil {
		if err := e.history.Persist(ctx, ch.record); err != nil {
			return rollback(err)
		}
		undo = append(undo, func(ctx context.Context) error { return e.history.Revert(ctx, ch.record) })
	}

	e.snapMu.Lock()
	err := e.check(ch)
	if err == nil {
		err = e.apply(ch)
	}
	e.snapMu.Unlock()
	if err != nil {
		return rollback(err)
	}
	return nil
}

func (e *Engine) check(ch *change) error {
	for _, c := range ch.tasks {
		if err := e.tasks.Check(c.next); err != nil {
			return err
		}
	}
	for _, c := range ch.staff {
		if err := e.staff.Check(c.next); err != nil {
			return err
		}
	}
	return nil
}

// apply runs after check under snapMu, so a failure here is a bug.
func (e *Engine) apply(ch *change) error {
	for _, c := range ch.tasks {
		if err := e.tasks.Apply(c.next); err != nil {
			return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("apply task %s after check: %w", c.next.ID, err))
		}
	}
	for _, c := range ch.staff {
		if err := e.staff.Apply(c.next); err != nil {
			return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("apply staff %s after check: %w", c.next.ID, err))
		}
	}
	if ch.record != nil {
		e.history.Append(ch.record)
	}
	return nil
}

// Snapshot is a consistent view of tasks and staff taken at one instant.
type Snapshot struct {
	Tasks []*task.Task
	Staff []*staff.Staff
}

func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return Snapshot{
		Tasks: e.tasks.List(),
		Staff: e.staff.List(),
	}
}

func (e *Engine) GetTask(id string) (*task.Task, error) {
	return e.tasks.Get(id)
}

func (e *Engine) GetStaff(id string) (*staff.Staff, error) {
	return e.staff.Get(id)
}

func (e *Engine) History() []*history.Record {
	return e.history.List()
}

func (e *Engine) observeCounts() {
	if e.metrics == nil {
		return
	}
	counts := make(map[string]int, len(task.Statuses))
	for _, s := range task.Statuses {
		counts[string(s)] = 0
	}
	for _, t := range e.tasks.List() {
		counts[string(t.Status)]++
	}
	e.metrics.TaskCounts(counts)
}

// observeErr counts a failed command by its error code.
func (e *Engine) observeErr(command string, err error) {
	if err != nil {
		e.metrics.CommandError(command, cerr.CodeOf(err).String())
	}
}
