package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
)

func TestAssignmentOrder(t *testing.T) {
	mk := func(id string, p task.Priority, minute int) *task.Task {
		return &task.Task{ID: id, Priority: p, CreatedAt: t0.Add(time.Duration(minute) * time.Minute)}
	}
	list := []*task.Task{
		mk("TK-005", task.PriorityLow, 0),
		mk("TK-004", task.PriorityHigh, 5),
		mk("TK-003", task.PriorityMedium, 1),
		mk("TK-002", task.PriorityHigh, 5),
		mk("TK-001", task.PriorityHigh, 9),
	}
	AssignmentOrder(list)
	var ids []string
	for _, tk := range list {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"TK-002", "TK-004", "TK-001", "TK-003", "TK-005"}, ids)
}

func TestAutoAssign_PriorityAndLeastLoaded(t *testing.T) {
	ctx := context.Background()
	onBreak := member("ST-3", "Lisa Wong")
	onBreak.Status = staff.StatusBreak
	f := newFixture(t, nil, staff.Capacity{}, Config{},
		member("ST-2", "John Smith"), member("ST-1", "Maria Garcia"), onBreak)

	low := f.create(t, "101", task.PriorityLow)
	high := f.create(t, "102", task.PriorityHigh)
	medium := f.create(t, "103", task.PriorityMedium)

	res, err := f.engine.AutoAssign(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{
		{TaskID: high.ID, StaffID: "ST-1"},
		{TaskID: medium.ID, StaffID: "ST-2"},
	}, res.Assignments)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, low.ID, res.Skipped[0].TaskID)
	assert.Equal(t, "no eligible staff", res.Skipped[0].Reason)

	got, err := f.engine.GetTask(low.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, got.Status, "skipped task stays pending")
	assert.Equal(t, 0, f.staffOf(t, "ST-3").AssignedRooms, "staff on break is never chosen")
	assertWorkloadConsistent(t, f.engine.Snapshot())
}

func TestAutoAssign_IncludeBusyRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, staff.Capacity{MaxConcurrentRooms: 2}, Config{IncludeBusy: true},
		member("ST-1", "Maria Garcia"), member("ST-2", "John Smith"))
	for _, room := range []string{"101", "102", "103", "104", "105"} {
		f.create(t, room, task.PriorityMedium)
	}

	res, err := f.engine.AutoAssign(ctx)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 4)
	assert.Equal(t, []string{"ST-1", "ST-2", "ST-1", "ST-2"}, []string{
		res.Assignments[0].StaffID, res.Assignments[1].StaffID,
		res.Assignments[2].StaffID, res.Assignments[3].StaffID,
	}, "workload from earlier assignments in the run is honoured")
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "TK-005", res.Skipped[0].TaskID)

	assert.Equal(t, 2, f.staffOf(t, "ST-1").AssignedRooms)
	assert.Equal(t, 2, f.staffOf(t, "ST-2").AssignedRooms)
	assertWorkloadConsistent(t, f.engine.Snapshot())
}

func TestAutoAssign_NothingToDo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, staff.Capacity{}, Config{})

	res, err := f.engine.AutoAssign(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Empty(t, res.Skipped)

	f.create(t, "101", task.PriorityHigh)
	res, err = f.engine.AutoAssign(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Len(t, res.Skipped, 1, "no staff at all is a skip, not an error")
}

func TestAutoAssign_RevalidatesBeforeCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, staff.Capacity{}, Config{}, member("ST-1", "Maria Garcia"), member("ST-2", "John Smith"))
	tk := f.create(t, "101", task.PriorityHigh)

	// a manual assignment lands between listing and committing
	_, err := f.engine.StartTask(ctx, tk.ID, "ST-2")
	require.NoError(t, err)
	staffID, reason := f.engine.autoAssignOne(ctx, tk.ID)
	assert.Empty(t, staffID)
	assert.Contains(t, reason, "already handled")

	staffID, reason = f.engine.autoAssignOne(ctx, "TK-404")
	assert.Empty(t, staffID)
	assert.Equal(t, "task no longer exists", reason)
	assertWorkloadConsistent(t, f.engine.Snapshot())
}

func TestAutoAssign_CancelledRunSkipsRest(t *testing.T) {
	f := newFixture(t, nil, staff.Capacity{}, Config{}, member("ST-1", "Maria Garcia"))
	f.create(t, "101", task.PriorityHigh)
	f.create(t, "102", task.PriorityHigh)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := f.engine.AutoAssign(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Len(t, res.Skipped, 2)
}
