package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kazz187/housekeeping/internal/task"
)

const idPrefix = "HT-"

// Recorder owns the append-only history log.
type Recorder struct {
	repo Repository
	// appendMu serializes Record; the engine serializes its own commits.
	appendMu sync.Mutex

	mu      sync.RWMutex
	records []*Record
	lastSeq int
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Load(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return err
	}
	sortRecords(list)
	last := 0
	for _, rec := range list {
		var n int
		if _, err := fmt.Sscanf(rec.ID, idPrefix+"%d", &n); err == nil && n > last {
			last = n
		}
	}
	r.mu.Lock()
	r.records = list
	r.lastSeq = last
	r.mu.Unlock()
	return nil
}

// Build derives the record for a closed task with the next HT- id.
// Nothing is stored until Persist and Append.
func (r *Recorder) Build(t *task.Task, staffName string) (*Record, error) {
	r.mu.RLock()
	seq := r.lastSeq + 1
	r.mu.RUnlock()
	return newRecord(fmt.Sprintf("%s%03d", idPrefix, seq), t, staffName)
}

func (r *Recorder) Persist(ctx context.Context, rec *Record) error {
	return r.repo.Create(ctx, rec)
}

func (r *Recorder) Revert(ctx context.Context, rec *Record) error {
	return r.repo.Delete(ctx, rec.ID)
}

// Append makes a persisted record visible.
func (r *Recorder) Append(rec *Record) {
	var n int
	_, _ = fmt.Sscanf(rec.ID, idPrefix+"%d", &n)
	r.mu.Lock()
	r.records = append(r.records, rec.Clone())
	if n > r.lastSeq {
		r.lastSeq = n
	}
	r.mu.Unlock()
}

// Record builds, stores and appends in one step, for callers outside the engine.
func (r *Recorder) Record(ctx context.Context, t *task.Task, staffName string) (*Record, error) {
	r.appendMu.Lock()
	defer r.appendMu.Unlock()
	rec, err := r.Build(t, staffName)
	if err != nil {
		return nil, err
	}
	if err := r.Persist(ctx, rec); err != nil {
		return nil, err
	}
	r.Append(rec)
	return rec, nil
}

// List returns copies ordered by end time, then id.
func (r *Recorder) List() []*Record {
	r.mu.RLock()
	list := make([]*Record, len(r.records))
	for i, rec := range r.records {
		list[i] = rec.Clone()
	}
	r.mu.RUnlock()
	sortRecords(list)
	return list
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func sortRecords(list []*Record) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].EndTime.Equal(list[j].EndTime) {
			return list[i].EndTime.Before(list[j].EndTime)
		}
		return list[i].ID < list[j].ID
	})
}
