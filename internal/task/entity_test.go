package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *Task {
	t.Helper()
	tk, err := New("TK-001", "101", "Deluxe Suite", PriorityHigh, t0)
	require.NoError(t, err)
	return tk
}

func TestNew(t *testing.T) {
	tk := newPending(t)
	assert.Equal(t, StatusPending, tk.Status)
	assert.Equal(t, t0, tk.CreatedAt)
	assert.Nil(t, tk.StartedAt)
	assert.Nil(t, tk.CompletedAt)
	assert.Empty(t, tk.AssignedStaff)
	assert.EqualValues(t, 1, tk.Version)

	_, err := New("TK-002", " ", "Suite", PriorityLow, t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
	_, err = New("TK-002", "102", "", PriorityLow, t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
	_, err = New("TK-002", "102", "Suite", Priority("urgent"), t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestLifecycle_HappyPath(t *testing.T) {
	tk := newPending(t)

	started, err := tk.Start("ST-001", t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)
	assert.Equal(t, "ST-001", started.AssignedStaff)
	require.NotNil(t, started.StartedAt)
	assert.EqualValues(t, 2, started.Version)
	// the original is untouched
	assert.Equal(t, StatusPending, tk.Status)

	done, err := started.Complete(t0.Add(40 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, t0.Add(40*time.Minute), *done.CompletedAt)
	assert.Equal(t, *started.StartedAt, *done.StartedAt)
}

func TestLifecycle_OnlyDefinedTransitions(t *testing.T) {
	pending := newPending(t)
	inProgress, err := pending.Start("ST-001", t0)
	require.NoError(t, err)
	completed, err := inProgress.Complete(t0)
	require.NoError(t, err)
	excepted, err := pending.Except("guest refusal", t0)
	require.NoError(t, err)

	for name, tk := range map[string]*Task{"completed": completed, "exception": excepted} {
		t.Run(name, func(t *testing.T) {
			_, err := tk.Start("ST-002", t0)
			assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))
			_, err = tk.Complete(t0)
			assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))
			_, err = tk.Except("again", t0)
			assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))
			_, err = tk.WithPriority(PriorityLow)
			assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))
		})
	}

	_, err = pending.Complete(t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidTransition), "complete requires in-progress")
	_, err = inProgress.Start("ST-002", t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))

	fromProgress, err := inProgress.Except("maintenance required", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusException, fromProgress.Status)
	assert.Equal(t, "maintenance required", fromProgress.ExceptionReason)
}

func TestExcept_RequiresReason(t *testing.T) {
	_, err := newPending(t).Except("   ", t0)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestTimestampsNeverDecrease(t *testing.T) {
	tk := newPending(t)
	started, err := tk.Start("ST-001", t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, t0, *started.StartedAt)

	done, err := started.Complete(t0.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, done.CompletedAt.Before(*done.StartedAt))
}

func TestClone_IsDeep(t *testing.T) {
	started, err := newPending(t).Start("ST-001", t0)
	require.NoError(t, err)
	c := started.Clone()
	*c.StartedAt = t0.Add(time.Hour)
	assert.Equal(t, t0, *started.StartedAt)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())

	_, err = ParsePriority("urgent")
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}
