package query

import (
	"fmt"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

// Source is the read side of the engine.
type Source interface {
	Snapshot() engine.Snapshot
	History() []*history.Record
}

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Service answers read-only queries from engine snapshots. It never mutates state.
type Service struct {
	src  Source
	conf Config
}

func NewService(src Source, conf Config) *Service {
	if conf.DefaultPageSize <= 0 {
		conf.DefaultPageSize = 10
	}
	if conf.MaxPageSize < conf.DefaultPageSize {
		conf.MaxPageSize = max(conf.DefaultPageSize, 100)
	}
	return &Service{src: src, conf: conf}
}

func (s *Service) pageSize(n int) int {
	if n <= 0 {
		return s.conf.DefaultPageSize
	}
	return min(n, s.conf.MaxPageSize)
}

// TaskView is a task with its assigned staff member's name resolved.
type TaskView struct {
	*task.Task
	AssignedStaffName string `json:"assignedStaffName,omitempty"`
}

func (s *Service) QueryTasks(f TaskFilter, page, pageSize int) (Page[TaskView], error) {
	if err := f.validate(); err != nil {
		return Page[TaskView]{}, err
	}
	snap := s.src.Snapshot()
	names := staffNames(snap.Staff)

	views := make([]TaskView, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		name := names[t.AssignedStaff]
		if f.match(t, name) {
			views = append(views, TaskView{Task: t, AssignedStaffName: name})
		}
	}
	sortTasks(views, f.Sort)
	return Paginate(views, page, s.pageSize(pageSize)), nil
}

func (s *Service) ListByStatus(status task.Status, page, pageSize int) (Page[TaskView], error) {
	return s.QueryTasks(TaskFilter{Status: string(status)}, page, pageSize)
}

// ListByStaff returns every task ever assigned to staffID, open or closed.
func (s *Service) ListByStaff(staffID string, page, pageSize int) (Page[TaskView], error) {
	found := false
	for _, m := range s.src.Snapshot().Staff {
		if m.ID == staffID {
			found = true
			break
		}
	}
	if !found {
		return Page[TaskView]{}, cerr.NewError(cerr.NotFound, fmt.Sprintf("staff %s not found", staffID), nil)
	}
	return s.QueryTasks(TaskFilter{StaffID: staffID}, page, pageSize)
}

func (s *Service) QueryHistory(f HistoryFilter, page, pageSize int) (Page[*history.Record], error) {
	if err := f.validate(); err != nil {
		return Page[*history.Record]{}, err
	}
	all := s.src.History()
	matched := make([]*history.Record, 0, len(all))
	for _, r := range all {
		if f.match(r) {
			matched = append(matched, r)
		}
	}
	if f.Newest {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	return Paginate(matched, page, s.pageSize(pageSize)), nil
}

// ListStaff lists staff ordered by id, optionally filtered by status.
func (s *Service) ListStaff(status staff.Status, page, pageSize int) (Page[*staff.Staff], error) {
	if status != "" && !status.Valid() {
		return Page[*staff.Staff]{}, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown staff status %q", status), nil)
	}
	var list []*staff.Staff
	for _, m := range s.src.Snapshot().Staff {
		if status == "" || m.Status == status {
			list = append(list, m)
		}
	}
	return Paginate(list, page, s.pageSize(pageSize)), nil
}

// Summary holds the dashboard's headline numbers.
type Summary struct {
	Pending        int `json:"pending"`
	InProgress     int `json:"inProgress"`
	Completed      int `json:"completed"`
	Exception      int `json:"exception"`
	AvailableStaff int `json:"availableStaff"`
	BusyStaff      int `json:"busyStaff"`
	OnBreak        int `json:"onBreak"`
}

func (s *Service) Summary() Summary {
	snap := s.src.Snapshot()
	var sum Summary
	for _, t := range snap.Tasks {
		switch t.Status {
		case task.StatusPending:
			sum.Pending++
		case task.StatusInProgress:
			sum.InProgress++
		case task.StatusCompleted:
			sum.Completed++
		case task.StatusException:
			sum.Exception++
		}
	}
	for _, m := range snap.Staff {
		switch m.Status {
		case staff.StatusAvailable:
			sum.AvailableStaff++
		case staff.StatusBusy:
			sum.BusyStaff++
		case staff.StatusBreak:
			sum.OnBreak++
		}
	}
	return sum
}

func staffNames(list []*staff.Staff) map[string]string {
	names := make(map[string]string, len(list))
	for _, m := range list {
		names[m.ID] = m.Name
	}
	return names
}
