package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

type subscription struct {
	ch    chan *Event
	types map[EventType]bool // nil means every type
}

func (s *subscription) wants(t EventType) bool {
	return s.types == nil || s.types[t]
}

// Bus fans engine events out to in-process listeners: the auto-assign
// orchestrator and the event journal.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]*subscription
	dropped atomic.Uint64
}

func New() *Bus {
	return &Bus{subs: make(map[string]*subscription)}
}

// Subscribe registers a listener with a buffer of bufSize. When types are
// given, only events of those types are delivered.
func (b *Bus) Subscribe(bufSize int, types ...EventType) (string, <-chan *Event) {
	sub := &subscription{ch: make(chan *Event, bufSize)}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	id := ulid.Make().String()
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()
	return id, sub.ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Publish never blocks; a subscriber with a full buffer misses the event and
// the miss is counted in Dropped.
func (b *Bus) Publish(event *Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Bus) PublishNew(eventType EventType, resourceID string, metadata map[string]string) {
	b.Publish(&Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	})
}

// Dropped is the number of deliveries lost to full subscriber buffers.
func (b *Bus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}
