package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kazz187/housekeeping/internal/eventbus"
)

// Journal appends every bus event to a daily NDJSON file (events_YYYY-MM-DD.ndjson).
type Journal struct {
	dir string
	mu  sync.Mutex
}

type entry struct {
	*eventbus.Event
	LoggedAt time.Time `json:"loggedAt"`
}

func NewJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}
	return &Journal{dir: dir}, nil
}

func (j *Journal) path(day time.Time) string {
	return filepath.Join(j.dir, fmt.Sprintf("events_%s.ndjson", day.Format("2006-01-02")))
}

func (j *Journal) Write(e *eventbus.Event) error {
	data, err := json.Marshal(entry{Event: e, LoggedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path(e.CreatedAt), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	return nil
}

// Start subscribes to bus and writes events until ctx is cancelled.
func (j *Journal) Start(ctx context.Context, bus *eventbus.Bus) {
	subID, ch := bus.Subscribe(1024)
	defer bus.Unsubscribe(subID)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := j.Write(e); err != nil {
				slog.ErrorContext(ctx, "failed to journal event", "event_id", e.ID, "type", e.Type, "error", err)
			}
		}
	}
}

// Read returns the events journaled for day, oldest first. Undecodable lines are skipped.
func (j *Journal) Read(day time.Time) ([]*eventbus.Event, error) {
	data, err := os.ReadFile(j.path(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*eventbus.Event{}, nil
		}
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	events := []*eventbus.Event{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var en entry
		if err := json.Unmarshal(line, &en); err != nil || en.Event == nil {
			slog.Warn("skipping malformed event log line", "file", j.path(day), "error", err)
			continue
		}
		events = append(events, en.Event)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan event log: %w", err)
	}
	return events, nil
}
