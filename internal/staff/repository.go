package staff

import "context"

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	Get(ctx context.Context, id string) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
	Update(ctx context.Context, s *Staff) error
}
