package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBoltBucket = "housekeeping"

// BoltStorage implements Storage on a single bbolt bucket keyed by path.
type BoltStorage struct {
	db     *bolt.DB
	bucket []byte
}

// NewBoltStorage opens (creating if needed) the database file at path.
func NewBoltStorage(path string) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db %s: %w", path, err)
	}
	bucket := []byte(defaultBoltBucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}
	return &BoltStorage{db: db, bucket: bucket}, nil
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) Read(_ context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(normalize(path)))
		if v == nil {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		// bolt values are only valid inside the transaction
		data = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BoltStorage) Write(_ context.Context, path string, data []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(normalize(path)), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *BoltStorage) Delete(_ context.Context, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		key := []byte(normalize(path))
		if b.Get(key) == nil {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		if err := b.Delete(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		return nil
	})
}

func (s *BoltStorage) List(_ context.Context, prefix string) ([]string, error) {
	dir := []byte(normalize(prefix) + "/")
	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.Seek(dir); k != nil && bytes.HasPrefix(k, dir); k, _ = c.Next() {
			if bytes.IndexByte(k[len(dir):], '/') >= 0 {
				continue
			}
			paths = append(paths, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return paths, nil
}

func (s *BoltStorage) Exists(_ context.Context, path string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(s.bucket).Get([]byte(normalize(path))) != nil
		return nil
	})
	return ok, err
}
