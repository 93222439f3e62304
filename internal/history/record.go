package history

import (
	"fmt"
	"math"
	"time"

	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

// Record is the immutable audit entry written when a task closes.
type Record struct {
	ID         string      `yaml:"id" json:"id"`
	TaskID     string      `yaml:"task_id" json:"taskId"`
	RoomNumber string      `yaml:"room_number" json:"roomNumber"`
	StaffID    string      `yaml:"staff_id,omitempty" json:"staffId,omitempty"`
	Staff      string      `yaml:"staff,omitempty" json:"staff,omitempty"`
	StartTime  *time.Time  `yaml:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime    time.Time   `yaml:"end_time" json:"endTime"`
	Status     task.Status `yaml:"status" json:"status"`
	Notes      string      `yaml:"notes,omitempty" json:"notes,omitempty"`
	// DurationKnown is false when the task closed without ever starting;
	// DurationMinutes is then zero and must not be read as a real duration.
	DurationMinutes int  `yaml:"duration_minutes" json:"durationMinutes"`
	DurationKnown   bool `yaml:"duration_known" json:"durationKnown"`
}

func (r *Record) Clone() *Record {
	c := *r
	if r.StartTime != nil {
		v := *r.StartTime
		c.StartTime = &v
	}
	return &c
}

// newRecord derives the audit entry for a closed task.
func newRecord(id string, t *task.Task, staffName string) (*Record, error) {
	if !t.IsTerminal() || t.CompletedAt == nil {
		return nil, cerr.NewError(cerr.Internal, "server error",
			fmt.Errorf("history requested for open task %s (%s)", t.ID, t.Status))
	}
	rec := &Record{
		ID:         id,
		TaskID:     t.ID,
		RoomNumber: t.RoomNumber,
		StaffID:    t.AssignedStaff,
		Staff:      staffName,
		EndTime:    *t.CompletedAt,
		Status:     t.Status,
		Notes:      t.Notes,
	}
	if t.Status == task.StatusException {
		rec.Notes = t.ExceptionReason
	}
	if t.StartedAt != nil {
		start := *t.StartedAt
		rec.StartTime = &start
		rec.DurationMinutes = int(math.Round(t.CompletedAt.Sub(start).Minutes()))
		rec.DurationKnown = true
	}
	return rec, nil
}
