package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/internal/task/repositoryimpl"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/storage"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*task.Store, *repositoryimpl.YAMLRepository) {
	t.Helper()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	return task.NewStore(repo), repo
}

func commit(t *testing.T, s *task.Store, tk *task.Task) {
	t.Helper()
	require.NoError(t, s.Persist(context.Background(), tk))
	require.NoError(t, s.Apply(tk))
}

func TestStore_NextID(t *testing.T) {
	s, _ := newStore(t)
	assert.Equal(t, "TK-001", s.NextID())

	for _, id := range []string{"TK-001", "TK-007", "legacy"} {
		tk, err := task.New(id, "101", "Suite", task.PriorityLow, t0)
		require.NoError(t, err)
		commit(t, s, tk)
	}
	assert.Equal(t, "TK-008", s.NextID())
}

func TestStore_ApplyIsCompareAndSwap(t *testing.T) {
	s, _ := newStore(t)
	tk, err := task.New("TK-001", "101", "Suite", task.PriorityLow, t0)
	require.NoError(t, err)
	commit(t, s, tk)

	a, err := tk.Start("ST-001", t0)
	require.NoError(t, err)
	b, err := tk.Start("ST-002", t0)
	require.NoError(t, err)

	require.NoError(t, s.Apply(a))
	err = s.Apply(b)
	assert.True(t, cerr.IsCode(err, cerr.InvalidTransition))

	got, err := s.Get("TK-001")
	require.NoError(t, err)
	assert.Equal(t, "ST-001", got.AssignedStaff)
}

func TestStore_GetReturnsCopies(t *testing.T) {
	s, _ := newStore(t)
	tk, err := task.New("TK-001", "101", "Suite", task.PriorityLow, t0)
	require.NoError(t, err)
	commit(t, s, tk)

	got, err := s.Get("TK-001")
	require.NoError(t, err)
	got.Status = task.StatusCompleted

	again, err := s.Get("TK-001")
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, again.Status)

	_, err = s.Get("TK-404")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestStore_LoadAndQueries(t *testing.T) {
	ctx := context.Background()
	s, repo := newStore(t)

	older, _ := task.New("TK-002", "201", "Standard", task.PriorityMedium, t0)
	newer, _ := task.New("TK-001", "101", "Suite", task.PriorityHigh, t0.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	started, err := newer.Start("ST-001", t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, started))

	require.NoError(t, s.Load(ctx))
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "TK-002", list[0].ID)
	assert.Equal(t, "TK-001", list[1].ID)

	open, ok := s.OpenTaskForRoom("101")
	require.True(t, ok)
	assert.Equal(t, "TK-001", open.ID)
	_, ok = s.OpenTaskForRoom("999")
	assert.False(t, ok)

	assert.Equal(t, map[string]int{"ST-001": 1}, s.OpenCountByStaff())
}

func TestStore_Revert(t *testing.T) {
	ctx := context.Background()
	s, repo := newStore(t)
	tk, _ := task.New("TK-001", "101", "Suite", task.PriorityLow, t0)
	require.NoError(t, s.Persist(ctx, tk))
	require.NoError(t, s.Revert(ctx, tk.ID, nil))
	_, err := repo.Get(ctx, tk.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
