package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kazz187/housekeeping/internal/room"
	"github.com/kazz187/housekeeping/internal/task"
)

type RoomOutcome struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type GenerateResult struct {
	Created []*task.Task  `json:"created"`
	Skipped []RoomOutcome `json:"skipped"`
	Failed  []RoomOutcome `json:"failed"`
}

// AutoGenerate creates one pending task per room that needs cleaning and has
// no open task yet. Re-running with the same feed creates nothing new.
func (e *Engine) AutoGenerate(ctx context.Context, rooms []room.Descriptor) (*GenerateResult, error) {
	res := &GenerateResult{Created: []*task.Task{}, Skipped: []RoomOutcome{}, Failed: []RoomOutcome{}}
	for _, r := range rooms {
		id := strings.TrimSpace(r.RoomID)
		if !r.NeedsCleaning {
			res.Skipped = append(res.Skipped, RoomOutcome{RoomID: id, Reason: "does not need cleaning"})
			continue
		}
		priority, err := r.Urgency.Priority()
		if err != nil {
			res.Failed = append(res.Failed, RoomOutcome{RoomID: id, Reason: err.Error()})
			continue
		}
		t, skipped, err := e.generateOne(ctx, id, r.RoomType, priority)
		switch {
		case err != nil:
			e.observeErr("auto_generate", err)
			res.Failed = append(res.Failed, RoomOutcome{RoomID: id, Reason: err.Error()})
		case skipped != "":
			res.Skipped = append(res.Skipped, RoomOutcome{RoomID: id, Reason: skipped})
		default:
			res.Created = append(res.Created, t)
		}
	}

	e.metrics.Generated(len(res.Created), len(res.Failed))
	slog.InfoContext(ctx, "auto-generate finished",
		"rooms", len(rooms), "created", len(res.Created), "skipped", len(res.Skipped), "failed", len(res.Failed))
	return res, nil
}

func (e *Engine) generateOne(ctx context.Context, roomID, roomType string, priority task.Priority) (*task.Task, string, error) {
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	if roomID != "" {
		if open, ok := e.tasks.OpenTaskForRoom(roomID); ok {
			return nil, fmt.Sprintf("open task %s exists", open.ID), nil
		}
	}
	t, err := e.createLocked(ctx, CreateTaskInput{RoomNumber: roomID, RoomType: roomType, Priority: priority}, "auto-generate")
	if err != nil {
		return nil, "", err
	}
	return t, "", nil
}
