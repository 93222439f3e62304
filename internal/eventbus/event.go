package eventbus

import "time"

type EventType string

const (
	TaskCreated        EventType = "task.created"
	TaskStarted        EventType = "task.started"
	TaskCompleted      EventType = "task.completed"
	TaskExcepted       EventType = "task.exception"
	TaskUpdated        EventType = "task.updated"
	StaffStatusChanged EventType = "staff.status_changed"
	HistoryRecorded    EventType = "history.recorded"
	CountersReset      EventType = "staff.counters_reset"
)

type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ResourceID string            `json:"resourceId"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}
