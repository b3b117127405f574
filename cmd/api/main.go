package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/course-enrollment-service/internal/api/http"
	"github.com/spec-kit/course-enrollment-service/internal/api/http/handlers"
	"github.com/spec-kit/course-enrollment-service/internal/cache"
	"github.com/spec-kit/course-enrollment-service/internal/catalog"
	"github.com/spec-kit/course-enrollment-service/internal/config"
	"github.com/spec-kit/course-enrollment-service/internal/domain"
	"github.com/spec-kit/course-enrollment-service/internal/events"
	"github.com/spec-kit/course-enrollment-service/internal/observability"
	"github.com/spec-kit/course-enrollment-service/internal/persistence"
	"github.com/spec-kit/course-enrollment-service/internal/repository"
	"github.com/spec-kit/course-enrollment-service/internal/service"
	"github.com/spec-kit/course-enrollment-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	var enrollmentRepo repository.EnrollmentRepository
	if pool != nil {
		enrollmentRepo = repository.NewEnrollmentPostgresRepository(pool)
	} else {
		logger.Warn("running with in-memory enrollment store; data will not survive restarts")
		enrollmentRepo = repository.NewEnrollmentMemoryRepository()
	}

	var catalogLookup domain.CatalogLookup
	switch cfg.Catalog.Mode {
	case config.CatalogModeHTTP:
		catalogLookup = catalog.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout())
	case config.CatalogModePostgres:
		if pool == nil {
			logger.Fatal("CATALOG_MODE=postgres requires POSTGRES_DSN")
		}
		catalogLookup = catalog.NewPostgresCatalog(pool)
	}

	dispatcher := events.NewInMemoryDispatcher()
	counts := cache.NewCountCache(redis.Client, cfg.Redis.CacheTTL())

	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		EnrollmentRepo: enrollmentRepo,
		Catalog:        catalogLookup,
		CountCache:     counts,
		Dispatcher:     dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	enrollmentsHandler := handlers.NewEnrollmentsHandler(enrollmentService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      healthHandler,
		Enrollments: enrollmentsHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
