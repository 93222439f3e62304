package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	env, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "local", env.Env)
	assert.Equal(t, ":3100", env.Addr())
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.Equal(t, 0, env.MaxConcurrentRooms)
	assert.Equal(t, 2*time.Second, env.LockTimeout)
	assert.Equal(t, 10, env.DefaultPageSize)
	assert.Equal(t, 100, env.MaxPageSize)
	assert.True(t, env.Seed)
	assert.False(t, env.AutoAssignIncludeBusy)
}

func TestLoadEnv_FromProcessAndFile(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("HOUSEKEEPING_MAX_CONCURRENT_ROOMS=3\nHOUSEKEEPING_HTTP_PORT=9000\n"), 0o600))
	t.Setenv("HOUSEKEEPING_HTTP_PORT", "8080")
	t.Setenv("HOUSEKEEPING_STORAGE_TYPE", "memory")
	t.Setenv("HOUSEKEEPING_LOCK_TIMEOUT", "250ms")
	// registers cleanup for the variable godotenv will set
	t.Setenv("HOUSEKEEPING_MAX_CONCURRENT_ROOMS", "")
	require.NoError(t, os.Unsetenv("HOUSEKEEPING_MAX_CONCURRENT_ROOMS"))

	env, err := LoadEnv(dotenv)
	require.NoError(t, err)
	assert.Equal(t, 3, env.MaxConcurrentRooms)
	assert.Equal(t, "8080", env.HTTPPort)
	assert.Equal(t, "memory", env.StorageEnv.Type)
	assert.Equal(t, 250*time.Millisecond, env.LockTimeout)
}

func TestLoadEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"storage type": {"HOUSEKEEPING_STORAGE_TYPE": "tape"},
		"s3 bucket":    {"HOUSEKEEPING_STORAGE_TYPE": "s3"},
		"negative cap": {"HOUSEKEEPING_MAX_CONCURRENT_ROOMS": "-1"},
		"page sizes":   {"HOUSEKEEPING_DEFAULT_PAGE_SIZE": "50", "HOUSEKEEPING_MAX_PAGE_SIZE": "20"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&BaseEnv{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelDebug, (&BaseEnv{LogLevel: "nonsense"}).SlogLevel())
	assert.Equal(t, slog.LevelDebug, (*BaseEnv)(nil).SlogLevel())
}
