package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

const StatusAll = "all"

type TaskSort string

const (
	SortCreatedAsc  TaskSort = "created"
	SortCreatedDesc TaskSort = "-created"
	SortPriority    TaskSort = "priority"
)

// TaskFilter selects tasks. Search is a case-insensitive substring matched
// against room number, room type or assigned staff name; the other fields
// must match exactly when set.
type TaskFilter struct {
	Search   string
	Status   string // "" or "all" for every status
	Priority task.Priority
	StaffID  string
	Sort     TaskSort
}

func (f TaskFilter) validate() error {
	if f.Status != "" && f.Status != StatusAll && !task.Status(f.Status).Valid() {
		return cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown status filter %q", f.Status), nil).
			AddDetailMessageWithCode("status must be all, pending, in-progress, completed or exception", "status.in")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown priority filter %q", f.Priority), nil)
	}
	switch f.Sort {
	case "", SortCreatedAsc, SortCreatedDesc, SortPriority:
	default:
		return cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown sort %q", f.Sort), nil)
	}
	return nil
}

func (f TaskFilter) match(t *task.Task, staffName string) bool {
	if f.Status != "" && f.Status != StatusAll && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.StaffID != "" && t.AssignedStaff != f.StaffID {
		return false
	}
	return matchAny(f.Search, t.RoomNumber, t.RoomType, staffName)
}

func matchAny(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// sortTasks orders views; every order ends in an id tiebreak so pages are stable.
func sortTasks(views []TaskView, by TaskSort) {
	less := func(a, b *task.Task) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	switch by {
	case SortCreatedDesc:
		sort.SliceStable(views, func(i, j int) bool { return less(views[j].Task, views[i].Task) })
	case SortPriority:
		sort.SliceStable(views, func(i, j int) bool {
			a, b := views[i].Task, views[j].Task
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
			return less(a, b)
		})
	default:
		sort.SliceStable(views, func(i, j int) bool { return less(views[i].Task, views[j].Task) })
	}
}

type HistoryFilter struct {
	Search  string // room number or staff name
	Status  string // "", "all", "completed" or "exception"
	StaffID string
	Newest  bool // newest first instead of oldest first
}

func (f HistoryFilter) validate() error {
	switch task.Status(f.Status) {
	case "", StatusAll, task.StatusCompleted, task.StatusException:
		return nil
	}
	return cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown history status %q", f.Status), nil)
}

func (f HistoryFilter) match(r *history.Record) bool {
	if f.Status != "" && f.Status != StatusAll && string(r.Status) != f.Status {
		return false
	}
	if f.StaffID != "" && r.StaffID != f.StaffID {
		return false
	}
	return matchAny(f.Search, r.RoomNumber, r.Staff)
}
