package history

import "context"

// Repository is append-only apart from Delete, which exists solely to undo
// a write whose surrounding commit failed.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	List(ctx context.Context) ([]*Record, error)
	Delete(ctx context.Context, id string) error
}
