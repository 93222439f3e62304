package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/kazz187/housekeeping/internal/config"
	"github.com/kazz187/housekeeping/internal/daily"
	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/eventbus"
	"github.com/kazz187/housekeeping/internal/eventlog"
	"github.com/kazz187/housekeeping/internal/history"
	historyrepo "github.com/kazz187/housekeeping/internal/history/repositoryimpl"
	"github.com/kazz187/housekeeping/internal/metrics"
	"github.com/kazz187/housekeeping/internal/orchestrator"
	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/internal/room"
	"github.com/kazz187/housekeeping/internal/seed"
	"github.com/kazz187/housekeeping/internal/server"
	"github.com/kazz187/housekeeping/internal/staff"
	staffrepo "github.com/kazz187/housekeeping/internal/staff/repositoryimpl"
	"github.com/kazz187/housekeeping/internal/task"
	taskrepo "github.com/kazz187/housekeeping/internal/task/repositoryimpl"
	"github.com/kazz187/housekeeping/pkg/clog"
	"github.com/kazz187/housekeeping/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.IsLocal() {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	if err := run(env); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(env *config.Env) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup storage
	store, err := openStorage(ctx, env.StorageEnv)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	staffRepo := staffrepo.NewYAMLRepository(store)
	historyRepo := historyrepo.NewYAMLRepository(store)

	seeded := false
	if env.Seed {
		data, err := seed.Default()
		if err != nil {
			return err
		}
		if seeded, err = seed.Apply(ctx, seed.Repositories{Tasks: taskRepo, Staff: staffRepo, History: historyRepo}, data); err != nil {
			return err
		}
	}

	// Load stores
	tasks := task.NewStore(taskRepo)
	registry := staff.NewRegistry(staffRepo, staff.Capacity{MaxConcurrentRooms: env.MaxConcurrentRooms})
	recorder := history.NewRecorder(historyRepo)
	if err := tasks.Load(ctx); err != nil {
		return err
	}
	if err := registry.Load(ctx); err != nil {
		return err
	}
	if err := recorder.Load(ctx); err != nil {
		return err
	}
	slog.Info("state loaded", "tasks", tasks.Len(), "staff", len(registry.List()), "history", recorder.Len(), "seeded", seeded)

	// Setup engine
	m := metrics.New()
	bus := eventbus.New()
	m.WatchDroppedEvents(bus.Dropped)
	eng := engine.New(tasks, registry, recorder, bus, m, engine.Config{
		LockTimeout: env.LockTimeout,
		IncludeBusy: env.AutoAssignIncludeBusy,
	})
	if seeded {
		if _, err := eng.ReconcileWorkload(ctx); err != nil {
			return err
		}
	}

	q := query.NewService(eng, query.Config{
		DefaultPageSize: env.DefaultPageSize,
		MaxPageSize:     env.MaxPageSize,
	})
	srv := server.NewServer(env, eng, q, m)

	resetter, err := daily.New(eng, env.DailyResetSchedule, time.Local)
	if err != nil {
		return err
	}

	wg := conc.NewWaitGroup()
	if env.EventLogDir != "" {
		journal, err := eventlog.NewJournal(env.EventLogDir)
		if err != nil {
			return err
		}
		wg.Go(func() { journal.Start(ctx, bus) })
	}
	if env.AutoAssignOnChange {
		orch := orchestrator.New(bus, eng)
		wg.Go(func() { orch.Start(ctx) })
	}
	if env.RoomFeedFile != "" {
		w := room.NewWatcher(env.RoomFeedFile, func(ctx context.Context, rooms []room.Descriptor) error {
			_, err := eng.AutoGenerate(ctx, rooms)
			return err
		})
		wg.Go(func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("room feed watcher stopped", "path", env.RoomFeedFile, "error", err)
			}
		})
	}
	wg.Go(func() { resetter.Start(ctx) })
	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	wg.Wait()
	return nil
}

func openStorage(ctx context.Context, env config.StorageEnv) (storage.Storage, error) {
	switch env.Type {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "s3":
		return storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
	case "bolt":
		return storage.NewBoltStorage(env.BoltPath)
	case "redis":
		return storage.NewRedisStorage(ctx, env.RedisURL, env.RedisPrefix)
	default:
		return storage.NewLocalStorage(env.BaseDir)
	}
}
