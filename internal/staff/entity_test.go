package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

func TestAssignRelease(t *testing.T) {
	s := &Staff{ID: "ST-001", Name: "Maria Garcia", Status: StatusAvailable, Version: 1}

	one := s.Assign()
	assert.Equal(t, 1, one.AssignedRooms)
	assert.Equal(t, StatusBusy, one.Status)
	assert.EqualValues(t, 2, one.Version)

	two := one.Assign()
	back, err := two.Release(true)
	require.NoError(t, err)
	assert.Equal(t, 1, back.AssignedRooms)
	assert.Equal(t, StatusBusy, back.Status)
	assert.Equal(t, 1, back.CompletedToday)

	idle, err := back.Release(false)
	require.NoError(t, err)
	assert.Equal(t, 0, idle.AssignedRooms)
	assert.Equal(t, StatusAvailable, idle.Status)
	assert.Equal(t, 1, idle.CompletedToday, "exceptions do not count as completed")
}

func TestRelease_Underflow(t *testing.T) {
	_, err := (&Staff{ID: "ST-001", Status: StatusAvailable}).Release(true)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestBreakOverride(t *testing.T) {
	busy := (&Staff{ID: "ST-001", Status: StatusAvailable}).Assign().Assign()

	onBreak, err := busy.WithStatus(StatusBreak)
	require.NoError(t, err)
	assert.Equal(t, StatusBreak, onBreak.Status)

	// break holds while assignments remain
	still, err := onBreak.Release(true)
	require.NoError(t, err)
	assert.Equal(t, StatusBreak, still.Status)

	// and clears with the last one
	cleared, err := still.Release(true)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, cleared.Status)

	back, err := onBreak.WithStatus(StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, StatusBusy, back.Status, "available resolves to the derived state")

	_, err = busy.WithStatus(StatusBusy)
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestWithWorkload(t *testing.T) {
	s := &Staff{ID: "ST-001", Status: StatusAvailable, Version: 1}
	assert.Nil(t, s.WithWorkload(0))

	n := s.WithWorkload(2)
	require.NotNil(t, n)
	assert.Equal(t, 2, n.AssignedRooms)
	assert.Equal(t, StatusBusy, n.Status)

	drifted := &Staff{ID: "ST-002", Status: StatusBusy, AssignedRooms: 3}
	fixed := drifted.WithWorkload(0)
	assert.Equal(t, StatusAvailable, fixed.Status)
}

func TestCapacity(t *testing.T) {
	assert.True(t, Capacity{}.Allows(1000))
	assert.True(t, Capacity{MaxConcurrentRooms: 2}.Allows(1))
	assert.False(t, Capacity{MaxConcurrentRooms: 2}.Allows(2))
}
