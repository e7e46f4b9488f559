package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/scenedraw/internal/adapters/http"
	natsadapter "github.com/samirrijal/scenedraw/internal/adapters/nats"
	"github.com/samirrijal/scenedraw/internal/adapters/postgres"
	"github.com/samirrijal/scenedraw/internal/adapters/sqlite"
	temporaladapter "github.com/samirrijal/scenedraw/internal/adapters/temporal"
	"github.com/samirrijal/scenedraw/internal/adapters/valkey"
	"github.com/samirrijal/scenedraw/internal/adapters/view"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
	"github.com/samirrijal/scenedraw/internal/pkg/config"
	"github.com/samirrijal/scenedraw/internal/pkg/logging"
	"github.com/samirrijal/scenedraw/internal/pkg/telemetry"
)

// sceneStore is a scene repository that can report its reachability.
type sceneStore interface {
	ports.SceneRepository
	http.Pinger
}

func main() {
	cfg, err := config.Load("scenedraw-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Scene storage
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	deps := &http.Dependencies{Store: store}

	// Draft cache
	var drafts ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, drafts disabled", "error", err)
	} else {
		defer cache.Close()
		drafts = cache
		deps.Cache = cache
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, scene events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
		deps.NATS = pub.Conn()
	}

	// Temporal
	var dispatcher ports.ImportDispatcher
	if cfg.Temporal.Enabled {
		tc, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			slog.Warn("temporal unavailable, imports disabled", "error", err)
		} else {
			defer tc.Close()
			dispatcher = temporaladapter.NewDispatcher(tc, cfg.Temporal.TaskQueue)
		}
	}

	loc, err := cfg.Scene.Location()
	if err != nil {
		log.Fatalf("scene.display_tz: %v", err)
	}

	sessions := usecases.NewSessionService(store, drafts, events, dispatcher,
		func(string) ports.View { return view.NewRemote() },
		usecases.SessionOptions{
			SeedDefault: cfg.Scene.SeedDefault,
			DraftTTL:    cfg.Scene.DraftTTL,
			Location:    loc,
		})
	deps.Sessions = sessions

	// Run-status reports from the import pipeline
	if deps.NATS != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeRunStatus(ctx, sessions.ReportRunStatus); err != nil {
				slog.Warn("subscribe run status failed", "error", err)
			}
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "SceneDraw API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions}, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Disposition, Link, Location",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped", "sessions_open", sessions.Count())
}

// openStore opens the configured scene repository.
func openStore(ctx context.Context, cfg *config.Config) (sceneStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo := sqlite.NewSceneRepo(db)
		if err := repo.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		go db.ReportPoolStats(ctx, 15*time.Second)
		return postgres.NewSceneRepo(db), db.Close, nil
	}
}

var (
	_ sceneStore             = (*postgres.SceneRepo)(nil)
	_ sceneStore             = (*sqlite.SceneRepo)(nil)
	_ ports.CacheService     = (*valkey.Cache)(nil)
	_ ports.EventPublisher   = (*natsadapter.Publisher)(nil)
	_ ports.EventSubscriber  = (*natsadapter.Subscriber)(nil)
	_ ports.ImportDispatcher = (*temporaladapter.Dispatcher)(nil)
)
