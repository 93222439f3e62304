package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

type fakeSource struct {
	snap    engine.Snapshot
	records []*history.Record
}

func (f *fakeSource) Snapshot() engine.Snapshot   { return f.snap }
func (f *fakeSource) History() []*history.Record { return f.records }

var t0 = time.Date(2024, 12, 4, 8, 0, 0, 0, time.UTC)

func board() *fakeSource {
	mk := func(id, room, roomType string, status task.Status, p task.Priority, staffID string, minute int) *task.Task {
		return &task.Task{ID: id, RoomNumber: room, RoomType: roomType, Status: status, Priority: p,
			AssignedStaff: staffID, CreatedAt: t0.Add(time.Duration(minute) * time.Minute)}
	}
	return &fakeSource{
		snap: engine.Snapshot{
			Tasks: []*task.Task{
				mk("TK-001", "101", "Standard", task.StatusPending, task.PriorityHigh, "", 0),
				mk("TK-002", "102", "Deluxe", task.StatusInProgress, task.PriorityMedium, "ST-001", 15),
				mk("TK-003", "103", "Suite", task.StatusCompleted, task.PriorityHigh, "ST-002", 30),
				mk("TK-004", "201", "Standard", task.StatusPending, task.PriorityLow, "", 60),
				mk("TK-005", "202", "Deluxe", task.StatusException, task.PriorityHigh, "ST-003", 20),
				mk("TK-006", "203", "Suite", task.StatusInProgress, task.PriorityMedium, "ST-004", 70),
			},
			Staff: []*staff.Staff{
				{ID: "ST-001", Name: "Maria Garcia", Status: staff.StatusBusy, AssignedRooms: 1},
				{ID: "ST-002", Name: "John Smith", Status: staff.StatusAvailable},
				{ID: "ST-003", Name: "Sarah Johnson", Status: staff.StatusAvailable},
				{ID: "ST-004", Name: "Mike Chen", Status: staff.StatusBusy, AssignedRooms: 1},
				{ID: "ST-005", Name: "Lisa Wong", Status: staff.StatusBreak},
			},
		},
		records: []*history.Record{
			{ID: "HT-001", RoomNumber: "101", Staff: "John Smith", StaffID: "ST-002", Status: task.StatusCompleted, EndTime: t0.Add(45 * time.Minute)},
			{ID: "HT-002", RoomNumber: "102", Staff: "Maria Garcia", StaffID: "ST-001", Status: task.StatusCompleted, EndTime: t0.Add(75 * time.Minute)},
			{ID: "HT-003", RoomNumber: "202", Staff: "Sarah Johnson", StaffID: "ST-003", Status: task.StatusException, EndTime: t0.Add(90 * time.Minute)},
		},
	}
}

func ids(p Page[TaskView]) []string {
	out := []string{}
	for _, v := range p.Items {
		out = append(out, v.ID)
	}
	return out
}

func TestQueryTasks_Search(t *testing.T) {
	svc := NewService(board(), Config{})

	cases := []struct {
		name   string
		filter TaskFilter
		want   []string
	}{
		{"all by created", TaskFilter{}, []string{"TK-001", "TK-002", "TK-005", "TK-003", "TK-004", "TK-006"}},
		{"room number", TaskFilter{Search: "20"}, []string{"TK-005", "TK-004", "TK-006"}},
		{"room type case-insensitive", TaskFilter{Search: "SUITE"}, []string{"TK-003", "TK-006"}},
		{"staff name", TaskFilter{Search: "garcia"}, []string{"TK-002"}},
		{"search and status", TaskFilter{Search: "deluxe", Status: "in-progress"}, []string{"TK-002"}},
		{"status all", TaskFilter{Status: StatusAll, Search: "standard"}, []string{"TK-001", "TK-004"}},
		{"priority", TaskFilter{Priority: task.PriorityHigh}, []string{"TK-001", "TK-005", "TK-003"}},
		{"no match", TaskFilter{Search: "penthouse"}, []string{}},
		{"newest first", TaskFilter{Status: "pending", Sort: SortCreatedDesc}, []string{"TK-004", "TK-001"}},
		{"priority sort", TaskFilter{Sort: SortPriority}, []string{"TK-001", "TK-005", "TK-003", "TK-002", "TK-006", "TK-004"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := svc.QueryTasks(tc.filter, 0, 50)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(p))
		})
	}
}

func TestQueryTasks_ResolvesStaffName(t *testing.T) {
	p, err := NewService(board(), Config{}).QueryTasks(TaskFilter{Search: "mike"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Mike Chen", p.Items[0].AssignedStaffName)
	assert.Equal(t, 10, p.PageSize, "default page size")
}

func TestQueryTasks_StatusSubsetOfAll(t *testing.T) {
	svc := NewService(board(), Config{})
	all, err := svc.QueryTasks(TaskFilter{Status: StatusAll}, 0, 100)
	require.NoError(t, err)
	inAll := map[string]bool{}
	for _, id := range ids(all) {
		inAll[id] = true
	}
	for _, st := range task.Statuses {
		p, err := svc.ListByStatus(st, 0, 100)
		require.NoError(t, err)
		for _, v := range p.Items {
			assert.Equal(t, st, v.Status)
			assert.True(t, inAll[v.ID])
		}
	}
}

func TestQueryTasks_Pagination(t *testing.T) {
	svc := NewService(board(), Config{DefaultPageSize: 4, MaxPageSize: 4})
	p, err := svc.QueryTasks(TaskFilter{}, 7, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, p.PageSize, "page size capped")
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 1, p.Page, "page clamped")
	assert.Equal(t, []string{"TK-004", "TK-006"}, ids(p))

	empty, err := svc.QueryTasks(TaskFilter{Search: "nothing"}, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestQueryTasks_InvalidFilter(t *testing.T) {
	svc := NewService(board(), Config{})
	_, err := svc.QueryTasks(TaskFilter{Status: "done"}, 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
	_, err = svc.QueryTasks(TaskFilter{Priority: "urgent"}, 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
	_, err = svc.QueryTasks(TaskFilter{Sort: "room"}, 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestListByStaff(t *testing.T) {
	svc := NewService(board(), Config{})
	p, err := svc.ListByStaff("ST-002", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"TK-003"}, ids(p))

	p, err = svc.ListByStaff("ST-005", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, p.Items)

	_, err = svc.ListByStaff("ST-404", 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestQueryHistory(t *testing.T) {
	svc := NewService(board(), Config{})

	p, err := svc.QueryHistory(HistoryFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, p.Items, 3)
	assert.Equal(t, "HT-001", p.Items[0].ID)

	p, err = svc.QueryHistory(HistoryFilter{Newest: true}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "HT-003", p.Items[0].ID)
	assert.Equal(t, 2, p.TotalPages)

	p, err = svc.QueryHistory(HistoryFilter{Status: "exception"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "202", p.Items[0].RoomNumber)

	p, err = svc.QueryHistory(HistoryFilter{Search: "smith"}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, p.Items, 1)

	_, err = svc.QueryHistory(HistoryFilter{Status: "pending"}, 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestListStaff(t *testing.T) {
	svc := NewService(board(), Config{})
	p, err := svc.ListStaff(staff.StatusBusy, 0, 10)
	require.NoError(t, err)
	assert.Len(t, p.Items, 2)

	p, err = svc.ListStaff("", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalPages)

	_, err = svc.ListStaff("sleeping", 0, 10)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, Summary{
		Pending:        2,
		InProgress:     2,
		Completed:      1,
		Exception:      1,
		AvailableStaff: 2,
		BusyStaff:      2,
		OnBreak:        1,
	}, NewService(board(), Config{}).Summary())
}
