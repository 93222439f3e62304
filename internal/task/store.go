package task

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

const idPrefix = "TK-"

// Store is the authoritative set of tasks. Reads are served from memory;
// writes go to the repository first (Persist) and become visible with Apply.
type Store struct {
	repo Repository

	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewStore(repo Repository) *Store {
	return &Store{
		repo:  repo,
		tasks: make(map[string]*Task),
	}
}

// Load replaces the in-memory state with the repository contents.
func (s *Store) Load(ctx context.Context) error {
	list, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	tasks := make(map[string]*Task, len(list))
	for _, t := range list {
		tasks[t.ID] = t
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("task %s not found", id), nil)
	}
	return t.Clone(), nil
}

// List returns copies of all tasks ordered by creation time, then id.
func (s *Store) List() []*Task {
	s.mu.RLock()
	list := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		list = append(list, t.Clone())
	}
	s.mu.RUnlock()
	SortByCreated(list)
	return list
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// SortByCreated orders tasks by createdAt ascending with id as tiebreak.
func SortByCreated(list []*Task) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// NextID returns TK-<max+1>. Callers must hold the engine's writer lock.
func (s *Store) NextID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	maxID := 0
	for id := range s.tasks {
		var n int
		if _, err := fmt.Sscanf(id, idPrefix+"%d", &n); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("%s%03d", idPrefix, maxID+1)
}

// OpenTaskForRoom returns the non-terminal task for room, if any.
func (s *Store) OpenTaskForRoom(room string) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.RoomNumber == room && !t.IsTerminal() {
			return t.Clone(), true
		}
	}
	return nil, false
}

// OpenCountByStaff counts non-terminal tasks per assigned staff id.
func (s *Store) OpenCountByStaff() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, t := range s.tasks {
		if t.AssignedStaff != "" && !t.IsTerminal() {
			counts[t.AssignedStaff]++
		}
	}
	return counts
}

// Persist writes t to the repository without touching the in-memory view.
func (s *Store) Persist(ctx context.Context, t *Task) error {
	if t.Version == 1 {
		return s.repo.Create(ctx, t)
	}
	return s.repo.Update(ctx, t)
}

// Revert undoes a Persist. prev is the version that was stored before, nil for a new task.
func (s *Store) Revert(ctx context.Context, id string, prev *Task) error {
	if prev == nil {
		return s.repo.Delete(ctx, id)
	}
	return s.repo.Update(ctx, prev)
}

// Check reports whether next is the direct successor of the stored version.
func (s *Store) Check(next *Task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(next)
}

func (s *Store) check(next *Task) error {
	cur, ok := s.tasks[next.ID]
	switch {
	case !ok && next.Version == 1:
		return nil
	case ok && cur.Version+1 == next.Version:
		return nil
	}
	return cerr.NewError(cerr.InvalidTransition,
		fmt.Sprintf("task %s was modified concurrently", next.ID), nil)
}

// Apply makes next visible if it is the direct successor of the stored version.
func (s *Store) Apply(next *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(next); err != nil {
		return err
	}
	s.tasks[next.ID] = next.Clone()
	return nil
}
