package room

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

const sampleFeed = `rooms:
  - room_id: "101"
    room_type: Standard
    needs_cleaning: true
    urgency: urgent
  - room_id: "102"
    room_type: Deluxe
    needs_cleaning: false
`

func TestParseFeed(t *testing.T) {
	rooms, err := ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, Descriptor{RoomID: "101", RoomType: "Standard", NeedsCleaning: true, Urgency: UrgencyUrgent}, rooms[0])
	assert.False(t, rooms[1].NeedsCleaning)

	_, err = ParseFeed([]byte("rooms: [oops"))
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestUrgencyPriority(t *testing.T) {
	cases := map[Urgency]task.Priority{
		UrgencyLow:    task.PriorityLow,
		"":            task.PriorityMedium,
		UrgencyNormal: task.PriorityMedium,
		UrgencyHigh:   task.PriorityHigh,
		"URGENT":      task.PriorityHigh,
	}
	for u, want := range cases {
		got, err := u.Priority()
		require.NoError(t, err, u)
		assert.Equal(t, want, got, u)
	}
	_, err := Urgency("whenever").Priority()
	assert.True(t, cerr.IsCode(err, cerr.InvalidInput))
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))

	got := make(chan []Descriptor, 8)
	w := NewWatcher(path, func(_ context.Context, rooms []Descriptor) error {
		got <- rooms
		return nil
	})
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case rooms := <-got:
		assert.Len(t, rooms, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not delivered")
	}

	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - room_id: \"301\"\n    room_type: Suite\n    needs_cleaning: true\n"), 0o644))
	select {
	case rooms := <-got:
		require.Len(t, rooms, 1)
		assert.Equal(t, "301", rooms[0].RoomID)
	case <-time.After(5 * time.Second):
		t.Fatal("change not delivered")
	}

	cancel()
	require.NoError(t, <-done)
}
