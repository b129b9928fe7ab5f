// API server entry point for VitaQuote.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/VitaQuote/internal/application/auth"
	"github.com/turtacn/VitaQuote/internal/application/export"
	"github.com/turtacn/VitaQuote/internal/application/ingest"
	"github.com/turtacn/VitaQuote/internal/application/quotation"
	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitaQuote/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/VitaQuote/internal/interfaces/http"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/handlers"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	outputs := []string{"stdout"}
	if cfg.Output != "" {
		outputs = []string{cfg.Output}
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: outputs,
	})
}

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger.Info("starting vitaquote apiserver",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	metrics := prometheus.New()

	// PostgreSQL and schema.
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
		return err
	}

	// Redis: sessions and the catalog read-through cache.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	catalogRepo := repositories.NewPostgresCatalogRepo(conn, logger)
	userRepo := repositories.NewPostgresUserRepo(conn, logger)

	cache := redis.NewCatalogCache(redisClient, cfg.Catalog.CacheTTL, catalogRepo.List, logger)
	cache.SetHooks(
		func() { metrics.CatalogCacheHits.Inc() },
		func() { metrics.CatalogCacheMisses.Inc() },
	)

	sessions := redis.NewSessionStore(redisClient, cfg.Session.TTL, logger)
	authSvc := auth.NewService(userRepo, sessions, cfg.Session.BcryptCost, logger)
	authSvc.OnLogin(func(result string) {
		metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	})

	// Kafka audit events; disabled deployments quote without a broker.
	var producer *kafka.Producer
	var publisher quotation.EventPublisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		publisher = producer
	}

	// MinIO PDF archive.
	archive, err := minio.NewArchive(cfg.MinIO, logger)
	if err != nil {
		return err
	}
	exportSvc := export.NewService(archive, logger)
	exportSvc.OnExport(func(status string) {
		metrics.PDFExportsTotal.WithLabelValues(status).Inc()
	})

	quoteSvc := quotation.NewService(cache, publisher, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog ingestion: HTTP imports and the workbook watcher share one
	// importer so both invalidate the cache the same way.
	importer := ingest.NewImporter(catalogRepo, cfg.Catalog.SheetName, logger)
	importer.OnImported(func(summary catalog.ImportSummary) {
		metrics.CatalogImportsTotal.WithLabelValues("import", "ok").Inc()
		metrics.CatalogRowsLoaded.Set(float64(summary.RowsLoaded))
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn("failed to invalidate catalog cache", logging.Err(err))
		}
	})

	if cfg.Catalog.WatchPath != "" {
		watcher := ingest.NewWatcher(importer, cfg.Catalog.WatchPath, cfg.Catalog.ReloadDebounce, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("catalog watcher stopped", logging.Err(err))
			}
		}()
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authSvc),
		QuoteHandler:   handlers.NewQuoteHandler(quoteSvc, exportSvc),
		CatalogHandler: handlers.NewCatalogHandler(importer, catalogRepo),
		HealthHandler: handlers.NewHealthHandler(version, map[string]handlers.Pinger{
			"postgres": conn,
			"redis":    redisClient,
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(authSvc, logger),
		CORS:           middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		Logger:         logger,
		Metrics:        metrics,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	logger.Info("apiserver stopped")
	return nil
}
