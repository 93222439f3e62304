package staff

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

// Capacity limits how many open tasks one staff member may hold.
// Zero means unlimited.
type Capacity struct {
	MaxConcurrentRooms int
}

func (c Capacity) Allows(assigned int) bool {
	return c.MaxConcurrentRooms <= 0 || assigned < c.MaxConcurrentRooms
}

// Registry owns staff records. Only the engine writes to it.
type Registry struct {
	repo     Repository
	capacity Capacity

	mu    sync.RWMutex
	staff map[string]*Staff
}

func NewRegistry(repo Repository, capacity Capacity) *Registry {
	return &Registry{
		repo:     repo,
		capacity: capacity,
		staff:    make(map[string]*Staff),
	}
}

func (r *Registry) Capacity() Capacity {
	return r.capacity
}

func (r *Registry) Load(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return err
	}
	staff := make(map[string]*Staff, len(list))
	for _, s := range list {
		staff[s.ID] = s
	}
	r.mu.Lock()
	r.staff = staff
	r.mu.Unlock()
	return nil
}

// Add stores a new staff member directly; used for seeding.
func (r *Registry) Add(ctx context.Context, s *Staff) error {
	if s.ID == "" || s.Name == "" {
		return cerr.NewError(cerr.InvalidInput, "staff id and name are required", nil)
	}
	s = s.Clone()
	if !s.Status.Valid() {
		s.Status = derived(s.AssignedRooms)
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}
	r.mu.Lock()
	r.staff[s.ID] = s
	r.mu.Unlock()
	return nil
}

func (r *Registry) Get(id string) (*Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.staff[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("staff %s not found", id), nil)
	}
	return s.Clone(), nil
}

// List returns copies ordered by id.
func (r *Registry) List() []*Staff {
	r.mu.RLock()
	list := make([]*Staff, 0, len(r.staff))
	for _, s := range r.staff {
		list = append(list, s.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// CheckCanAccept returns the current record if id may take another task.
func (r *Registry) CheckCanAccept(id string) (*Staff, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusBreak {
		return nil, cerr.NewError(cerr.StaffUnavailable, fmt.Sprintf("staff %s is on break", id), nil)
	}
	if !r.capacity.Allows(s.AssignedRooms) {
		return nil, cerr.NewError(cerr.StaffUnavailable,
			fmt.Sprintf("staff %s already holds %d rooms (max %d)", id, s.AssignedRooms, r.capacity.MaxConcurrentRooms), nil)
	}
	return s, nil
}

func (r *Registry) CanAcceptTask(id string) bool {
	_, err := r.CheckCanAccept(id)
	return err == nil
}

// Release computes the record after one of id's tasks closes. An underflow
// is an invariant violation: it is logged and returned, never clamped.
func (r *Registry) Release(ctx context.Context, id string, completed bool) (*Staff, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error",
			fmt.Errorf("closed task references unknown staff %s: %w", id, err))
	}
	n, err := s.Release(completed)
	if err != nil {
		slog.ErrorContext(ctx, "staff workload invariant violated", "staff_id", id, "assigned_rooms", s.AssignedRooms, "error", err)
		return nil, err
	}
	return n, nil
}

func (r *Registry) Persist(ctx context.Context, s *Staff) error {
	return r.repo.Update(ctx, s)
}

func (r *Registry) Revert(ctx context.Context, prev *Staff) error {
	return r.repo.Update(ctx, prev)
}

func (r *Registry) Check(next *Staff) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.check(next)
}

func (r *Registry) check(next *Staff) error {
	cur, ok := r.staff[next.ID]
	if !ok {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("staff %s not found", next.ID), nil)
	}
	if cur.Version+1 != next.Version {
		return cerr.NewError(cerr.InvalidTransition,
			fmt.Sprintf("staff %s was modified concurrently", next.ID), nil)
	}
	return nil
}

func (r *Registry) Apply(next *Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(next); err != nil {
		return err
	}
	r.staff[next.ID] = next.Clone()
	return nil
}
