package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
)

type Assignment struct {
	TaskID  string `json:"taskId"`
	StaffID string `json:"staffId"`
}

type Skip struct {
	TaskID string `json:"taskId"`
	Reason string `json:"reason"`
}

type AssignResult struct {
	Assignments []Assignment `json:"assignments"`
	Skipped     []Skip       `json:"skipped"`
}

// AssignmentOrder sorts pending tasks by priority descending, then createdAt
// ascending, then id.
func AssignmentOrder(list []*task.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// AutoAssign gives every pending task to the eligible staff member with the
// fewest open rooms. Each task is committed on its own, so a failure only
// skips that task; workload from earlier assignments in the run counts
// toward later choices.
func (e *Engine) AutoAssign(ctx context.Context) (*AssignResult, error) {
	var pending []*task.Task
	for _, t := range e.tasks.List() {
		if t.Status == task.StatusPending {
			pending = append(pending, t)
		}
	}
	AssignmentOrder(pending)

	res := &AssignResult{Assignments: []Assignment{}, Skipped: []Skip{}}
	for i, t := range pending {
		if err := ctx.Err(); err != nil {
			for _, rest := range pending[i:] {
				res.Skipped = append(res.Skipped, Skip{TaskID: rest.ID, Reason: "auto-assign cancelled"})
			}
			break
		}
		staffID, reason := e.autoAssignOne(ctx, t.ID)
		if staffID == "" {
			res.Skipped = append(res.Skipped, Skip{TaskID: t.ID, Reason: reason})
			slog.InfoContext(ctx, "auto-assign skipped task", "task_id", t.ID, "reason", reason)
			continue
		}
		res.Assignments = append(res.Assignments, Assignment{TaskID: t.ID, StaffID: staffID})
	}

	e.metrics.AutoAssign(len(res.Assignments), len(res.Skipped))
	slog.InfoContext(ctx, "auto-assign finished", "assigned", len(res.Assignments), "skipped", len(res.Skipped))
	return res, nil
}

// autoAssignOne returns the chosen staff id, or "" and the reason for skipping.
func (e *Engine) autoAssignOne(ctx context.Context, taskID string) (string, string) {
	unlock, err := e.lock(ctx)
	if err != nil {
		return "", err.Error()
	}
	defer unlock()

	// the task may have been handled since the run listed it
	cur, err := e.tasks.Get(taskID)
	if err != nil {
		return "", "task no longer exists"
	}
	if cur.Status != task.StatusPending {
		return "", fmt.Sprintf("already handled (%s)", cur.Status)
	}
	member, ok := e.pickStaff()
	if !ok {
		return "", "no eligible staff"
	}
	if _, err := e.startLocked(ctx, taskID, member.ID, "auto-assign"); err != nil {
		e.observeErr("auto_assign", err)
		return "", err.Error()
	}
	return member.ID, ""
}

func (e *Engine) eligible(s *staff.Staff) bool {
	switch s.Status {
	case staff.StatusAvailable:
	case staff.StatusBusy:
		if !e.includeBusy {
			return false
		}
	default:
		return false
	}
	return e.staff.Capacity().Allows(s.AssignedRooms)
}

// pickStaff returns the eligible staff member with the fewest assigned rooms,
// lowest id first on ties.
func (e *Engine) pickStaff() (*staff.Staff, bool) {
	var best *staff.Staff
	for _, s := range e.staff.List() {
		if !e.eligible(s) {
			continue
		}
		if best == nil || s.AssignedRooms < best.AssignedRooms {
			best = s
		}
	}
	return best, best != nil
}
