package cerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/kazz187/housekeeping/pkg/storage"
)

type storageOp string

const (
	opRead   storageOp = "read"
	opWrite  storageOp = "write"
	opDelete storageOp = "delete"
)

// wrapStorage classifies a storage failure. Missing keys surface as NotFound
// on read and delete; a cancelled or expired context keeps its own code so
// callers can tell a slow backend from a broken one.
func wrapStorage(op storageOp, target string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case op != opWrite && errors.Is(err, storage.ErrNotFound):
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(DeadlineExceeded, fmt.Sprintf("timed out trying to %s %s", op, target), err)
	case errors.Is(err, context.Canceled):
		return NewError(Canceled, fmt.Sprintf("%s %s canceled", op, target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to %s %s: %w", op, target, err))
}

func WrapStorageReadError(target string, err error) error {
	return wrapStorage(opRead, target, err)
}

func WrapStorageWriteError(target string, err error) error {
	return wrapStorage(opWrite, target, err)
}

func WrapStorageDeleteError(target string, err error) error {
	return wrapStorage(opDelete, target, err)
}
