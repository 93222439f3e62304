package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".housekeeping/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"housekeeping/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// bolt settings (used when Type == "bolt")
	BoltPath string `envconfig:"BOLT_PATH" default:".housekeeping/housekeeping.db"`
	// redis settings (used when Type == "redis")
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"housekeeping"`
}

type EngineEnv struct {
	MaxConcurrentRooms    int           `envconfig:"MAX_CONCURRENT_ROOMS" default:"0"`
	LockTimeout           time.Duration `envconfig:"LOCK_TIMEOUT" default:"2s"`
	AutoAssignIncludeBusy bool          `envconfig:"AUTO_ASSIGN_INCLUDE_BUSY" default:"false"`
	AutoAssignOnChange    bool          `envconfig:"AUTO_ASSIGN_ON_CHANGE" default:"false"`
	DefaultPageSize       int           `envconfig:"DEFAULT_PAGE_SIZE" default:"10"`
	MaxPageSize           int           `envconfig:"MAX_PAGE_SIZE" default:"100"`
	Seed                  bool          `envconfig:"SEED" default:"true"`
	RoomFeedFile          string        `envconfig:"ROOM_FEED_FILE" default:""`
	DailyResetSchedule    string        `envconfig:"DAILY_RESET_SCHEDULE" default:"0 0 0 * * *"`
	EventLogDir           string        `envconfig:"EVENT_LOG_DIR" default:""`
}

type Env struct {
	BaseEnv
	StorageEnv
	EngineEnv
}

const namespace = "HOUSEKEEPING"

// LoadEnv reads an optional .env file and then the HOUSEKEEPING_* variables.
// Variables already present in the process environment win over the file.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	switch e.StorageEnv.Type {
	case "memory", "local", "s3", "bolt", "redis":
	default:
		return fmt.Errorf("unknown storage type %q", e.StorageEnv.Type)
	}
	if e.StorageEnv.Type == "s3" && e.S3Bucket == "" {
		return errors.New("HOUSEKEEPING_S3_BUCKET is required for s3 storage")
	}
	if e.MaxConcurrentRooms < 0 {
		return errors.New("HOUSEKEEPING_MAX_CONCURRENT_ROOMS must not be negative")
	}
	if e.DefaultPageSize <= 0 || e.MaxPageSize < e.DefaultPageSize {
		return errors.New("page sizes must satisfy 0 < DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE")
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}

func (e *BaseEnv) Addr() string {
	return net.JoinHostPort(e.HTTPHost, e.HTTPPort)
}
