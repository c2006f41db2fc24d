package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"doctransfer/internal/cache"
	"doctransfer/internal/cache/redis"
	"doctransfer/internal/config"
	"doctransfer/internal/database"
	"doctransfer/internal/database/migration"
	"doctransfer/internal/events"
	handlers "doctransfer/internal/http/handler"
	"doctransfer/internal/http/middleware"
	"doctransfer/internal/identity"
	"doctransfer/internal/logger"
	"doctransfer/internal/otel"
	"doctransfer/internal/repository"
	"doctransfer/internal/repository/postgres"
	"doctransfer/internal/scheduler"
	"doctransfer/internal/service"
	"doctransfer/internal/storage"
)

const startupTimeout = 30 * time.Second

func newDatabase(lc fx.Lifecycle, cfg *config.AppConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		db.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}

func newCache(lc fx.Lifecycle, cfg *config.AppConfig) (cache.Cache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newObjectStore(cfg *config.AppConfig) (*storage.MinIOStore, error) {
	return storage.NewMinIO(cfg.MinIO)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newDirectory(users repository.UserRepository, c cache.Cache, cfg *config.AppConfig, log *zap.Logger) identity.Directory {
	return identity.NewDirectory(users, c, time.Duration(cfg.Redis.UsersTTLSec)*time.Second, log)
}

func newAuditLog(repo repository.AuditRepository, cfg *config.AppConfig, log *zap.Logger) service.AuditLog {
	return service.NewAuditLog(repo, cfg.Auth.AdminRole, log)
}

func newDocumentService(
	repo repository.DocumentRepository,
	store storage.ObjectStore,
	audit service.AuditLog,
	cfg *config.AppConfig,
	log *zap.Logger,
) service.DocumentService {
	policy := service.NewSharePolicy(cfg.Lifecycle.DeniedRecipients)
	return service.NewDocumentService(repo, store, audit, policy, cfg.Lifecycle.PrivateNamespace, log)
}

func newIngestService(
	repo repository.DocumentRepository,
	store storage.ObjectStore,
	directory identity.Directory,
	audit service.AuditLog,
	cfg *config.AppConfig,
	log *zap.Logger,
) service.IngestService {
	return service.NewIngestService(repo, store, directory, audit, service.LifecycleOptions{
		PrivateNamespace: cfg.Lifecycle.PrivateNamespace,
		SecureNamespace:  cfg.Lifecycle.SecureNamespace,
		Retention:        cfg.Lifecycle.Retention(),
	}, log)
}

func newScheduler(sweeper service.Sweeper, cfg *config.AppConfig, reg *prometheus.Registry, log *zap.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(sweeper, cfg.Lifecycle.SweepSchedule, reg, log)
}

func newListener(store *storage.MinIOStore, dispatcher *events.Dispatcher, cfg *config.AppConfig, log *zap.Logger) *events.Listener {
	return events.NewListener(store, dispatcher, cfg.Lifecycle.PrivateNamespace+"/", log)
}

type serverParams struct {
	fx.In

	Config     *config.AppConfig
	Log        *zap.Logger
	Registry   *prometheus.Registry
	DB         *sql.DB
	Documents  service.DocumentService
	Audit      service.AuditLog
	Directory  identity.Directory
	Resolver   *identity.TokenResolver
	Dispatcher *events.Dispatcher
}

// NewFiberServer builds the Fiber app with global middleware and routes.
func NewFiberServer(p serverParams) (*fiber.App, error) {
	metrics, err := middleware.NewPrometheusMiddleware(p.Registry)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(p.Log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          p.DB,
		Documents:   p.Documents,
		Audit:       p.Audit,
		Directory:   p.Directory,
		Resolver:    p.Resolver,
		Dispatcher:  p.Dispatcher,
		EventsToken: p.Config.Auth.EventsToken,
		Gatherer:    p.Registry,
		Log:         p.Log,
	})
	return app, nil
}

// StartServer runs Fiber in a goroutine and shuts it down with the app.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.AppConfig, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				addr := ":" + cfg.Port
				log.Info("http server listening", zap.String("addr", addr))
				if err := app.Listen(addr); err != nil {
					log.Error("failed to start server", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// StartTracing installs the tracer provider and flushes it on stop.
func StartTracing(lc fx.Lifecycle, log *zap.Logger) error {
	shutdown, err := otel.Init(context.Background(), log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}

// StartSweeper runs the expiration sweep on its cron schedule.
func StartSweeper(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// StartListener subscribes to bucket notifications when enabled.
func StartListener(lc fx.Lifecycle, l *events.Listener, cfg *config.AppConfig, log *zap.Logger) {
	if !cfg.MinIO.ListenEvents {
		log.Info("bucket notification listener disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			l.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Stop()
			return nil
		},
	})
}

// @title Document Transfer API
// @version 1.0
// @BasePath /
func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			logger.New,
			newDatabase,
			newCache,
			newRegistry,
			newObjectStore,

			postgres.NewDocumentPostgres,
			postgres.NewAuditPostgres,
			postgres.NewUserPostgres,

			func(cfg *config.AppConfig) *identity.TokenResolver {
				return identity.NewTokenResolver(cfg.Auth.JWTSecret)
			},
			newDirectory,
			newAuditLog,
			newDocumentService,
			newIngestService,
			service.NewSweeper,
			events.NewDispatcher,
			newListener,
			newScheduler,
			NewFiberServer,

			// Interface adapters
			func(s *storage.MinIOStore) storage.ObjectStore { return s },
			func(r *postgres.DocumentPostgres) repository.DocumentRepository { return r },
			func(r *postgres.AuditPostgres) repository.AuditRepository { return r },
			func(r *postgres.UserPostgres) repository.UserRepository { return r },
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			StartTracing,
			StartServer,
			StartSweeper,
			StartListener,
		),
	)

	app.Run()
}
