// Package storage is the key/value blob layer the repositories serialize
// entities into. Keys look like "tasks/TK-001.yaml"; List returns the direct
// children of a prefix in lexical order.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// Collections the repositories keep their records under.
const (
	Tasks   = "tasks"
	Staff   = "staff"
	History = "history"
)

const recordExt = ".yaml"

// Storage is implemented by every backend selectable through STORAGE_TYPE.
// Write replaces the whole value; backends never expose partial writes.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Key returns the key of record id inside collection.
func Key(collection, id string) string {
	return collection + "/" + id + recordExt
}

// IDFromKey is the inverse of Key. ok is false for keys outside collection.
func IDFromKey(collection, key string) (id string, ok bool) {
	rest, found := strings.CutPrefix(key, collection+"/")
	if !found {
		return "", false
	}
	id, found = strings.CutSuffix(rest, recordExt)
	if !found || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
