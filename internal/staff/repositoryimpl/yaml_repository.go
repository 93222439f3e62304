package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/storage"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func key(id string) string {
	return storage.Key(storage.Staff, id)
}

func (r *YAMLRepository) Create(ctx context.Context, s *staff.Staff) error {
	exists, err := r.storage.Exists(ctx, key(s.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("staff", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, fmt.Sprintf("staff %s already exists", s.ID), nil)
	}
	return r.write(ctx, s)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*staff.Staff, error) {
	data, err := r.storage.Read(ctx, key(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("staff", err)
	}
	var s staff.Staff
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal staff: %w", err))
	}
	return &s, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*staff.Staff, error) {
	paths, err := r.storage.List(ctx, storage.Staff)
	if err != nil {
		return nil, cerr.WrapStorageReadError("staff", err)
	}
	all := make([]*staff.Staff, 0, len(paths))
	for _, p := range paths {
		if _, ok := storage.IDFromKey(storage.Staff, p); !ok {
			continue
		}
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			return nil, cerr.WrapStorageReadError("staff", err)
		}
		var s staff.Staff
		if err := yaml.Unmarshal(data, &s); err != nil {
			slog.ErrorContext(ctx, "skipping unreadable staff record", "path", p, "error", err)
			continue
		}
		all = append(all, &s)
	}
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, s *staff.Staff) error {
	exists, err := r.storage.Exists(ctx, key(s.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("staff", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("staff %s not found", s.ID), nil)
	}
	return r.write(ctx, s)
}

func (r *YAMLRepository) write(ctx context.Context, s *staff.Staff) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal staff: %w", err))
	}
	if err := r.storage.Write(ctx, key(s.ID), data); err != nil {
		return cerr.WrapStorageWriteError("staff", err)
	}
	return nil
}
