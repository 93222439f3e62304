package staff

import (
	"fmt"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusBreak     Status = "break"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusBreak:
		return true
	}
	return false
}

type Staff struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	Role           string `yaml:"role" json:"role"`
	Status         Status `yaml:"status" json:"status"`
	AssignedRooms  int    `yaml:"assigned_rooms" json:"assignedRooms"`
	CompletedToday int    `yaml:"completed_today" json:"completedToday"`
	Version        int64  `yaml:"version" json:"version"`
}

func (s *Staff) Clone() *Staff {
	c := *s
	return &c
}

func (s *Staff) next() *Staff {
	n := s.Clone()
	n.Version++
	return n
}

func derived(assigned int) Status {
	if assigned > 0 {
		return StatusBusy
	}
	return StatusAvailable
}

// Assign returns s with one more open task. Assignment ends a break.
func (s *Staff) Assign() *Staff {
	n := s.next()
	n.AssignedRooms++
	n.Status = StatusBusy
	return n
}

// Release returns s with one fewer open task; completed also bumps CompletedToday.
// A break survives until the last assignment clears.
func (s *Staff) Release(completed bool) (*Staff, error) {
	if s.AssignedRooms <= 0 {
		return nil, cerr.NewError(cerr.Internal, "server error",
			fmt.Errorf("assigned rooms underflow for staff %s (assigned=%d)", s.ID, s.AssignedRooms))
	}
	n := s.next()
	n.AssignedRooms--
	if completed {
		n.CompletedToday++
	}
	if n.Status != StatusBreak || n.AssignedRooms == 0 {
		n.Status = derived(n.AssignedRooms)
	}
	return n, nil
}

// WithStatus applies a manual override. Only available and break can be set;
// available falls back to the derived busy/available state.
func (s *Staff) WithStatus(status Status) (*Staff, error) {
	var target Status
	switch status {
	case StatusBreak:
		target = StatusBreak
	case StatusAvailable:
		target = derived(s.AssignedRooms)
	default:
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("status %q cannot be set manually", status), nil).
			AddDetailMessageWithCode("status must be one of available, break", "status.in")
	}
	n := s.next()
	n.Status = target
	return n, nil
}

// WithWorkload returns s with AssignedRooms set to open and status re-derived,
// or nil if nothing changes.
func (s *Staff) WithWorkload(open int) *Staff {
	status := derived(open)
	if s.Status == StatusBreak {
		status = StatusBreak
	}
	if s.AssignedRooms == open && s.Status == status {
		return nil
	}
	n := s.next()
	n.AssignedRooms = open
	n.Status = status
	return n
}

func (s *Staff) ResetCompletedToday() *Staff {
	if s.CompletedToday == 0 {
		return nil
	}
	n := s.next()
	n.CompletedToday = 0
	return n
}
