package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(4)

	b.PublishNew(TaskCreated, "TK-001", map[string]string{"room": "101"})
	ev := <-ch
	assert.Equal(t, TaskCreated, ev.Type)
	assert.Equal(t, "TK-001", ev.ResourceID)
	assert.Equal(t, "101", ev.Metadata["room"])
	assert.Len(t, ev.ID, 26)

	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestBus_DropsWhenFull(t *testing.T) {
	b := New()
	_, ch := b.Subscribe(1)
	b.PublishNew(TaskCreated, "TK-001", nil)
	b.PublishNew(TaskCreated, "TK-002", nil)

	require.Len(t, ch, 1)
	assert.Equal(t, "TK-001", (<-ch).ResourceID)
	assert.Equal(t, uint64(1), b.Dropped())
}

func TestBus_NilIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.PublishNew(TaskCreated, "TK-001", nil) })
}

func TestBus_FiltersByType(t *testing.T) {
	b := New()
	_, ch := b.Subscribe(4, TaskCompleted)
	b.PublishNew(TaskCreated, "TK-001", nil)
	b.PublishNew(TaskCompleted, "TK-002", nil)

	require.Len(t, ch, 1)
	assert.Equal(t, "TK-002", (<-ch).ResourceID)
	assert.Zero(t, b.Dropped())
}
