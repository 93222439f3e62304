package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/housekeeping/internal/history"
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
	return storage.Key(storage.History, id)
}

func (r *YAMLRepository) Create(ctx context.Context, rec *history.Record) error {
	exists, err := r.storage.Exists(ctx, key(rec.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("history record", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, fmt.Sprintf("history record %s already exists", rec.ID), nil)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal history record: %w", err))
	}
	if err := r.storage.Write(ctx, key(rec.ID), data); err != nil {
		return cerr.WrapStorageWriteError("history record", err)
	}
	return nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*history.Record, error) {
	paths, err := r.storage.List(ctx, storage.History)
	if err != nil {
		return nil, cerr.WrapStorageReadError("history", err)
	}
	all := make([]*history.Record, 0, len(paths))
	for _, p := range paths {
		if _, ok := storage.IDFromKey(storage.History, p); !ok {
			continue
		}
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			return nil, cerr.WrapStorageReadError("history record", err)
		}
		var rec history.Record
		if err := yaml.Unmarshal(data, &rec); err != nil {
			slog.ErrorContext(ctx, "skipping unreadable history record", "path", p, "error", err)
			continue
		}
		all = append(all, &rec)
	}
	return all, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, key(id)); err != nil {
		return cerr.WrapStorageDeleteError("history record", err)
	}
	return nil
}
