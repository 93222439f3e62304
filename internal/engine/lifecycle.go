package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kazz187/housekeeping/internal/eventbus"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/clog"
)

type CreateTaskInput struct {
	RoomNumber string
	RoomType   string
	// Priority defaults to medium when empty.
	Priority task.Priority
	Notes    string
}

func (e *Engine) CreateTask(ctx context.Context, in CreateTaskInput) (_ *task.Task, err error) {
	defer func() { e.observeErr("create", err) }()
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return e.createLocked(ctx, in, "manual")
}

func (e *Engine) createLocked(ctx context.Context, in CreateTaskInput, source string) (*task.Task, error) {
	if in.Priority == "" {
		in.Priority = task.PriorityMedium
	}
	t, err := task.New(e.tasks.NextID(), in.RoomNumber, in.RoomType, in.Priority, e.now())
	if err != nil {
		return nil, err
	}
	t.Notes = strings.TrimSpace(in.Notes)
	if err := e.commit(ctx, &change{tasks: []taskChange{{next: t}}}); err != nil {
		return nil, err
	}

	clog.AddTask(ctx, t.ID, "")
	slog.InfoContext(ctx, "task created", "task_id", t.ID, "room", t.RoomNumber, "priority", t.Priority, "source", source)
	e.metrics.Transition(string(task.StatusPending))
	e.observeCounts()
	e.bus.PublishNew(eventbus.TaskCreated, t.ID, map[string]string{
		"room":     t.RoomNumber,
		"priority": string(t.Priority),
		"source":   source,
	})
	return t, nil
}

// StartTask moves a pending task to in-progress under staffID.
func (e *Engine) StartTask(ctx context.Context, taskID, staffID string) (_ *task.Task, err error) {
	defer func() { e.observeErr("start", err) }()
	if strings.TrimSpace(staffID) == "" {
		return nil, cerr.NewError(cerr.InvalidInput, "staff id is required", nil)
	}
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return e.startLocked(ctx, taskID, staffID, "manual")
}

// Assign is the manual assignment command; it has start semantics.
func (e *Engine) Assign(ctx context.Context, taskID, staffID string) (*task.Task, error) {
	return e.StartTask(ctx, taskID, staffID)
}

func (e *Engine) startLocked(ctx context.Context, taskID, staffID, by string) (*task.Task, error) {
	cur, err := e.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	next, err := cur.Start(staffID, e.now())
	if err != nil {
		return nil, err
	}
	member, err := e.staff.CheckCanAccept(staffID)
	if err != nil {
		return nil, err
	}
	ch := &change{
		tasks: []taskChange{{prev: cur, next: next}},
		staff: []staffChange{{prev: member, next: member.Assign()}},
	}
	if err := e.commit(ctx, ch); err != nil {
		return nil, err
	}
	e.transitioned(ctx, cur, next, eventbus.TaskStarted, by)
	return next, nil
}

func (e *Engine) CompleteTask(ctx context.Context, taskID string) (_ *task.Task, err error) {
	defer func() { e.observeErr("complete", err) }()
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := e.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	next, err := cur.Complete(e.now())
	if err != nil {
		return nil, err
	}
	if err := e.close(ctx, cur, next, eventbus.TaskCompleted); err != nil {
		return nil, err
	}
	return next, nil
}

func (e *Engine) ReportException(ctx context.Context, taskID, reason string) (_ *task.Task, err error) {
	defer func() { e.observeErr("exception", err) }()
	if strings.TrimSpace(reason) == "" {
		return nil, cerr.NewError(cerr.InvalidInput, "exception reason is required", nil).
			AddDetailMessageWithCode("reason must not be empty", "reason.required")
	}
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := e.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	next, err := cur.Except(reason, e.now())
	if err != nil {
		return nil, err
	}
	if err := e.close(ctx, cur, next, eventbus.TaskExcepted); err != nil {
		return nil, err
	}
	return next, nil
}

// close commits a terminal transition together with the staff release and
// the history record.
func (e *Engine) close(ctx context.Context, cur, next *task.Task, ev eventbus.EventType) error {
	ch := &change{tasks: []taskChange{{prev: cur, next: next}}}
	var staffName string
	if next.AssignedStaff != "" {
		prev, err := e.staff.Get(next.AssignedStaff)
		if err != nil {
			return cerr.NewError(cerr.Internal, "server error", err)
		}
		released, err := e.staff.Release(ctx, prev.ID, next.Status == task.StatusCompleted)
		if err != nil {
			return err
		}
		staffName = prev.Name
		ch.staff = append(ch.staff, staffChange{prev: prev, next: released})
	}
	rec, err := e.history.Build(next, staffName)
	if err != nil {
		return err
	}
	ch.record = rec
	if err := e.commit(ctx, ch); err != nil {
		return err
	}
	e.transitioned(ctx, cur, next, ev, "manual")
	e.bus.PublishNew(eventbus.HistoryRecorded, rec.ID, map[string]string{"task_id": next.ID})
	return nil
}

func (e *Engine) transitioned(ctx context.Context, cur, next *task.Task, ev eventbus.EventType, by string) {
	clog.AddTask(ctx, next.ID, next.AssignedStaff)
	slog.InfoContext(ctx, "task transitioned",
		"task_id", next.ID,
		"staff_id", next.AssignedStaff,
		"from", cur.Status,
		"to", next.Status,
		"by", by,
	)
	e.metrics.Transition(string(next.Status))
	e.observeCounts()
	e.bus.PublishNew(ev, next.ID, map[string]string{
		"room":     next.RoomNumber,
		"staff_id": next.AssignedStaff,
		"from":     string(cur.Status),
		"to":       string(next.Status),
	})
}

func (e *Engine) SetPriority(ctx context.Context, taskID string, p task.Priority) (_ *task.Task, err error) {
	defer func() { e.observeErr("priority", err) }()
	return e.update(ctx, taskID, func(t *task.Task) (*task.Task, error) { return t.WithPriority(p) })
}

func (e *Engine) SetNotes(ctx context.Context, taskID, notes string) (_ *task.Task, err error) {
	defer func() { e.observeErr("notes", err) }()
	return e.update(ctx, taskID, func(t *task.Task) (*task.Task, error) { return t.WithNotes(notes) })
}

func (e *Engine) update(ctx context.Context, taskID string, fn func(*task.Task) (*task.Task, error)) (*task.Task, error) {
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := e.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if err := e.commit(ctx, &change{tasks: []taskChange{{prev: cur, next: next}}}); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, next.ID, "")
	slog.InfoContext(ctx, "task updated", "task_id", next.ID, "priority", next.Priority)
	e.bus.PublishNew(eventbus.TaskUpdated, next.ID, nil)
	return next, nil
}

// SetStaffStatus applies a manual override (available or break).
func (e *Engine) SetStaffStatus(ctx context.Context, staffID string, status staff.Status) (_ *staff.Staff, err error) {
	defer func() { e.observeErr("staff_status", err) }()
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := e.staff.Get(staffID)
	if err != nil {
		return nil, err
	}
	next, err := cur.WithStatus(status)
	if err != nil {
		return nil, err
	}
	if err := e.commit(ctx, &change{staff: []staffChange{{prev: cur, next: next}}}); err != nil {
		return nil, err
	}
	clog.AddStaff(ctx, staffID)
	slog.InfoContext(ctx, "staff status changed", "staff_id", staffID, "from", cur.Status, "to", next.Status)
	e.bus.PublishNew(eventbus.StaffStatusChanged, staffID, map[string]string{
		"from": string(cur.Status),
		"to":   string(next.Status),
	})
	return next, nil
}

// ResetDailyCounters zeroes completedToday for every staff member and returns
// how many records changed.
func (e *Engine) ResetDailyCounters(ctx context.Context) (_ int, err error) {
	defer func() { e.observeErr("daily_reset", err) }()
	unlock, err := e.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	ch := &change{}
	for _, s := range e.staff.List() {
		if next := s.ResetCompletedToday(); next != nil {
			ch.staff = append(ch.staff, staffChange{prev: s, next: next})
		}
	}
	if len(ch.staff) == 0 {
		return 0, nil
	}
	if err := e.commit(ctx, ch); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "daily counters reset", "staff", len(ch.staff))
	e.bus.PublishNew(eventbus.CountersReset, "", nil)
	return len(ch.staff), nil
}

// ReconcileWorkload sets every staff member's assignedRooms to the number of
// open tasks assigned to them. Used after seeding or importing data.
func (e *Engine) ReconcileWorkload(ctx context.Context) (_ int, err error) {
	defer func() { e.observeErr("reconcile", err) }()
	unlock, err := e.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	open := e.tasks.OpenCountByStaff()
	ch := &change{}
	for _, s := range e.staff.List() {
		if next := s.WithWorkload(open[s.ID]); next != nil {
			ch.staff = append(ch.staff, staffChange{prev: s, next: next})
		}
	}
	if len(ch.staff) == 0 {
		return 0, nil
	}
	if err := e.commit(ctx, ch); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "staff workload reconciled", "staff", len(ch.staff))
	return len(ch.staff), nil
}
