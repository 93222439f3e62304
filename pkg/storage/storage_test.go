package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	bolt, err := NewBoltStorage(filepath.Join(t.TempDir(), "data", "housekeeping.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })
	s3s, err := NewS3StorageWithClient(newFakeS3(), "hk-bucket", "hotel-1")
	require.NoError(t, err)
	return map[string]Storage{
		"s3":     s3s,
		"memory": NewMemoryStorage(),
		"local":  local,
		"bolt":   bolt,
	}
}

func TestStorage_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(ctx, "tasks/TK-001.yaml")
			require.ErrorIs(t, err, ErrNotFound)

			ok, err := s.Exists(ctx, "tasks/TK-001.yaml")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Write(ctx, "tasks/TK-002.yaml", []byte("id: TK-002\n")))
			require.NoError(t, s.Write(ctx, "tasks/TK-001.yaml", []byte("id: TK-001\n")))
			require.NoError(t, s.Write(ctx, "tasks/archive/TK-000.yaml", []byte("id: TK-000\n")))
			require.NoError(t, s.Write(ctx, "staff/ST-001.yaml", []byte("id: ST-001\n")))

			data, err := s.Read(ctx, "tasks/TK-001.yaml")
			require.NoError(t, err)
			assert.Equal(t, "id: TK-001\n", string(data))

			paths, err := s.List(ctx, "tasks")
			require.NoError(t, err)
			assert.Equal(t, []string{"tasks/TK-001.yaml", "tasks/TK-002.yaml"}, paths)

			paths, err = s.List(ctx, "history")
			require.NoError(t, err)
			assert.Empty(t, paths)

			require.NoError(t, s.Delete(ctx, "tasks/TK-001.yaml"))
			require.ErrorIs(t, s.Delete(ctx, "tasks/TK-001.yaml"), ErrNotFound)

			ok, err = s.Exists(ctx, "tasks/TK-002.yaml")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	buf := []byte("a")
	require.NoError(t, s.Write(ctx, "k/v", buf))
	buf[0] = 'b'
	data, err := s.Read(ctx, "k/v")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tasks/TK-001.yaml", Key(Tasks, "TK-001"))

	id, ok := IDFromKey(Staff, Key(Staff, "ST-004"))
	assert.True(t, ok)
	assert.Equal(t, "ST-004", id)

	for _, k := range []string{"tasks/TK-001.yaml", "staff/ST-001.json", "staff/.yaml", "staff/old/ST-001.yaml"} {
		_, ok := IDFromKey(Staff, k)
		assert.False(t, ok, k)
	}
}
