package daily

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type CounterResetter interface {
	ResetDailyCounters(ctx context.Context) (int, error)
}

// Resetter zeroes completedToday on a cron schedule (seconds field included).
type Resetter struct {
	target CounterResetter
	cron   *cron.Cron
}

func New(target CounterResetter, schedule string, loc *time.Location) (*Resetter, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Resetter{
		target: target,
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid daily reset schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Resetter) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := r.target.ResetDailyCounters(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "daily counter reset failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "daily counters reset", "staff", n)
}

// Start runs the scheduler until ctx is cancelled, then waits for a running job.
func (r *Resetter) Start(ctx context.Context) {
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
}
