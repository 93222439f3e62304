package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusException  Status = "exception"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusException}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusException:
		return true
	}
	return false
}

// IsTerminal reports whether no transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusException
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities; higher is more urgent and 0 means invalid.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown priority %q", s), nil).
			AddDetailMessageWithCode("priority must be one of low, medium, high", "priority.in")
	}
	return p, nil
}

type Task struct {
	ID              string     `yaml:"id" json:"id"`
	RoomNumber      string     `yaml:"room_number" json:"roomNumber"`
	RoomType        string     `yaml:"room_type" json:"roomType"`
	Status          Status     `yaml:"status" json:"status"`
	Priority        Priority   `yaml:"priority" json:"priority"`
	AssignedStaff   string     `yaml:"assigned_staff,omitempty" json:"assignedStaff,omitempty"`
	CreatedAt       time.Time  `yaml:"created_at" json:"createdAt"`
	StartedAt       *time.Time `yaml:"started_at,omitempty" json:"startedAt,omitempty"`
	CompletedAt     *time.Time `yaml:"completed_at,omitempty" json:"completedAt,omitempty"`
	Notes           string     `yaml:"notes,omitempty" json:"notes,omitempty"`
	ExceptionReason string     `yaml:"exception_reason,omitempty" json:"exceptionReason,omitempty"`
	// Version increases by one with every stored change.
	Version int64 `yaml:"version" json:"version"`
}

// New builds a pending task. It is not stored until the engine commits it.
func New(id, roomNumber, roomType string, priority Priority, now time.Time) (*Task, error) {
	roomNumber = strings.TrimSpace(roomNumber)
	roomType = strings.TrimSpace(roomType)
	if roomNumber == "" || roomType == "" {
		e := cerr.NewError(cerr.InvalidInput, "room number and room type are required", nil)
		if roomNumber == "" {
			e.AddDetailMessageWithCode("room_number must not be empty", "room_number.required")
		}
		if roomType == "" {
			e.AddDetailMessageWithCode("room_type must not be empty", "room_type.required")
		}
		return nil, e
	}
	if !priority.Valid() {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown priority %q", priority), nil)
	}
	return &Task{
		ID:         id,
		RoomNumber: roomNumber,
		RoomType:   roomType,
		Status:     StatusPending,
		Priority:   priority,
		CreatedAt:  now,
		Version:    1,
	}, nil
}

func (t *Task) Clone() *Task {
	c := *t
	if t.StartedAt != nil {
		v := *t.StartedAt
		c.StartedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}

func (t *Task) IsTerminal() bool {
	return t.Status.IsTerminal()
}

func (t *Task) next() *Task {
	n := t.Clone()
	n.Version++
	return n
}

// notBefore keeps lifecycle timestamps non-decreasing even if the clock steps back.
func notBefore(now, floor time.Time) time.Time {
	if now.Before(floor) {
		return floor
	}
	return now
}

func (t *Task) transitionError(action string) error {
	return cerr.NewError(cerr.InvalidTransition,
		fmt.Sprintf("cannot %s: task %s is %s", action, t.ID, t.Status), nil)
}

// Start returns the in-progress successor of t assigned to staffID.
func (t *Task) Start(staffID string, now time.Time) (*Task, error) {
	if t.Status != StatusPending {
		return nil, t.transitionError("start")
	}
	if strings.TrimSpace(staffID) == "" {
		return nil, cerr.NewError(cerr.InvalidInput, "staff id is required", nil)
	}
	n := t.next()
	started := notBefore(now, t.CreatedAt)
	n.Status = StatusInProgress
	n.AssignedStaff = staffID
	n.StartedAt = &started
	return n, nil
}

func (t *Task) Complete(now time.Time) (*Task, error) {
	if t.Status != StatusInProgress {
		return nil, t.transitionError("complete")
	}
	n := t.next()
	done := notBefore(now, *t.StartedAt)
	n.Status = StatusCompleted
	n.CompletedAt = &done
	return n, nil
}

// Except closes t with reason. completedAt records the closure time.
func (t *Task) Except(reason string, now time.Time) (*Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, cerr.NewError(cerr.InvalidInput, "exception reason is required", nil).
			AddDetailMessageWithCode("reason must not be empty", "reason.required")
	}
	if t.IsTerminal() {
		return nil, t.transitionError("report exception")
	}
	floor := t.CreatedAt
	if t.StartedAt != nil {
		floor = *t.StartedAt
	}
	n := t.next()
	closed := notBefore(now, floor)
	n.Status = StatusException
	n.ExceptionReason = reason
	n.CompletedAt = &closed
	return n, nil
}

func (t *Task) WithPriority(p Priority) (*Task, error) {
	if !p.Valid() {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown priority %q", p), nil)
	}
	if t.IsTerminal() {
		return nil, t.transitionError("change priority")
	}
	n := t.next()
	n.Priority = p
	return n, nil
}

func (t *Task) WithNotes(notes string) (*Task, error) {
	if t.IsTerminal() {
		return nil, t.transitionError("edit notes")
	}
	n := t.next()
	n.Notes = strings.TrimSpace(notes)
	return n, nil
}
