package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/events"
	v1 "github.com/shenikar/emergency_dispatch/internal/handler/http/v1"
	"github.com/shenikar/emergency_dispatch/internal/repository"
	"github.com/shenikar/emergency_dispatch/internal/repository/memory"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/pkg/logger"
	"github.com/shenikar/emergency_dispatch/pkg/postgres"
	redisclient "github.com/shenikar/emergency_dispatch/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/emergency_dispatch/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

// @title Emergency Dispatch API
// @version 1.0
// @description Emergency dispatch coordinator: incident intake, provider matching and lifecycle.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
	log.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// Хранилище
	var store service.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if err := runMigrations(cfg, log); err != nil {
			return err
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
		store = repository.NewStore(dbpool)
	default:
		log.Warn("Using in-memory storage, data is lost on restart")
		store = memory.New()
	}

	// Redis нужен кэшу и очереди событий
	var redisClient *goredis.Client
	if cfg.StorageDriver == config.StoragePostgres || cfg.EventsDriver == config.EventsRedis {
		client, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		log.Info("Successfully connected to Redis")
		redisClient = client
	}

	var cache service.IncidentCache
	if redisClient != nil && cfg.CacheTTL > 0 {
		cache = repository.NewIncidentCache(redisClient, cfg.CacheTTL)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Издатель событий
	var publisher events.Publisher = events.NopPublisher{}
	switch cfg.EventsDriver {
	case config.EventsRedis:
		publisher = events.NewRedisPublisher(redisClient)
		worker := events.NewWebhookWorker(redisClient, log, cfg)
		g.Go(func() error { return worker.Run(gctx) })
	case config.EventsNATS:
		conn, err := events.NewNATSConn(cfg.NATSURL, "emergency-dispatch", cfg.StoreTimeout)
		if err != nil {
			return err
		}
		defer conn.Close()
		log.WithField("url", conn.ConnectedUrlRedacted()).Info("Successfully connected to NATS")
		publisher = events.NewNATSPublisher(conn)
	}

	dispatchService := service.NewDispatchService(store, cache, log, cfg, publisher)
	handler := v1.NewHandler(dispatchService, log, cfg)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestID(), v1.RequestLogger(log), v1.CORS(cfg.CORSAllowedOrigins))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
