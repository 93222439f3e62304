package staff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/staff/repositoryimpl"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/storage"
)

func newRegistry(t *testing.T, capacity staff.Capacity, members ...*staff.Staff) *staff.Registry {
	t.Helper()
	r := staff.NewRegistry(repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage()), capacity)
	for _, m := range members {
		require.NoError(t, r.Add(context.Background(), m))
	}
	return r
}

func TestRegistry_CanAcceptTask(t *testing.T) {
	r := newRegistry(t, staff.Capacity{MaxConcurrentRooms: 2},
		&staff.Staff{ID: "ST-001", Name: "Maria Garcia", Status: staff.StatusAvailable},
		&staff.Staff{ID: "ST-002", Name: "John Smith", Status: staff.StatusBreak},
		&staff.Staff{ID: "ST-003", Name: "Sarah Johnson", AssignedRooms: 2},
	)

	assert.True(t, r.CanAcceptTask("ST-001"))

	_, err := r.CheckCanAccept("ST-002")
	assert.True(t, cerr.IsCode(err, cerr.StaffUnavailable))

	_, err = r.CheckCanAccept("ST-003")
	assert.True(t, cerr.IsCode(err, cerr.StaffUnavailable))

	_, err = r.CheckCanAccept("ST-404")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.False(t, r.CanAcceptTask("ST-404"))

	s3, err := r.Get("ST-003")
	require.NoError(t, err)
	assert.Equal(t, staff.StatusBusy, s3.Status, "missing status is derived from workload")
}

func TestRegistry_ApplyAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	r := staff.NewRegistry(repo, staff.Capacity{})
	require.NoError(t, r.Add(ctx, &staff.Staff{ID: "ST-002", Name: "John Smith"}))
	require.NoError(t, r.Add(ctx, &staff.Staff{ID: "ST-001", Name: "Maria Garcia"}))

	cur, err := r.Get("ST-001")
	require.NoError(t, err)
	next := cur.Assign()
	require.NoError(t, r.Persist(ctx, next))
	require.NoError(t, r.Apply(next))

	err = r.Apply(cur.Assign())
	assert.True(t, cerr.IsCode(err, cerr.InvalidTransition), "stale version")

	reloaded := staff.NewRegistry(repo, staff.Capacity{})
	require.NoError(t, reloaded.Load(ctx))
	list := reloaded.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ST-001", list[0].ID)
	assert.Equal(t, 1, list[0].AssignedRooms)
}

func TestRegistry_ReleaseUnderflow(t *testing.T) {
	r := newRegistry(t, staff.Capacity{}, &staff.Staff{ID: "ST-001", Name: "Maria Garcia"})
	_, err := r.Release(context.Background(), "ST-001", true)
	assert.True(t, cerr.IsCode(err, cerr.Internal))

	_, err = r.Release(context.Background(), "ST-404", true)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestRegistry_AddValidates(t *testing.T) {
	r := newRegistry(t, staff.Capacity{})
	err := r.Add(context.Background(), &staff.Staff{ID: "ST-001"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}
