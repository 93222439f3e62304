package orchestrator

import (
	"context"
	"log/slog"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/eventbus"
	"github.com/kazz187/housekeeping/pkg/panicerr"
)

type Assigner interface {
	AutoAssign(ctx context.Context) (*engine.AssignResult, error)
}

// Orchestrator runs auto-assign whenever work or capacity appears: a new
// task, a closed task freeing a staff member, or a staff status change.
type Orchestrator struct {
	eventBus *eventbus.Bus
	assigner Assigner
}

func New(eventBus *eventbus.Bus, assigner Assigner) *Orchestrator {
	return &Orchestrator{
		eventBus: eventBus,
		assigner: assigner,
	}
}

// Start subscribes to the event bus and processes events.
// It blocks until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	subID, ch := o.eventBus.Subscribe(256, triggers...)
	defer o.eventBus.Unsubscribe(subID)

	slog.InfoContext(ctx, "orchestrator started")
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "orchestrator stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			// collapse a burst of events into one run
			drain(ch)
			panicerr.Run(ctx, "auto-assign", func(ctx context.Context) error {
				res, err := o.assigner.AutoAssign(ctx)
				if err != nil {
					return err
				}
				if len(res.Assignments) > 0 {
					slog.InfoContext(ctx, "orchestrator: tasks assigned", "trigger", event.Type, "assigned", len(res.Assignments))
				}
				return nil
			})
		}
	}
}

// Events that can make a pending task assignable.
var triggers = []eventbus.EventType{
	eventbus.TaskCreated,
	eventbus.TaskCompleted,
	eventbus.TaskExcepted,
	eventbus.StaffStatusChanged,
}

func drain(ch <-chan *eventbus.Event) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
