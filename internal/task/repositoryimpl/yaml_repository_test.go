package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(local)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tk, err := task.New("TK-001", "101", "Deluxe Suite", task.PriorityHigh, created)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tk))

	err = repo.Create(ctx, tk)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	started, err := tk.Start("ST-001", created.Add(5*time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, started))

	got, err := repo.Get(ctx, "TK-001")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "ST-001", got.AssignedStaff)
	require.NotNil(t, got.StartedAt)
	assert.True(t, got.StartedAt.Equal(created.Add(5*time.Minute)))
	assert.EqualValues(t, 2, got.Version)

	raw, err := local.Read(ctx, "tasks/TK-001.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "room_number: \"101\"")

	ghost, _ := task.New("TK-404", "404", "Suite", task.PriorityLow, created)
	assert.True(t, cerr.IsCode(repo.Update(ctx, ghost), cerr.NotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "TK-001"))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, "TK-001"), cerr.NotFound))
}
