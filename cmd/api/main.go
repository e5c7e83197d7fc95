package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admissions_portal_backend/internal/adapters"
	"admissions_portal_backend/internal/adapters/storage"
	"admissions_portal_backend/internal/applications"
	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/handler"
	"admissions_portal_backend/internal/applications/service"
	"admissions_portal_backend/internal/commission"
	"admissions_portal_backend/internal/email"
	"admissions_portal_backend/internal/events"
	apphttp "admissions_portal_backend/internal/http"
	"admissions_portal_backend/internal/http/router"
	"admissions_portal_backend/internal/notification"
	"admissions_portal_backend/internal/partners"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/db"
	"admissions_portal_backend/platform/logger"
	"admissions_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage is optional: without it presigned uploads and document
	// generation are disabled but the workflow itself still runs.
	var (
		docs     service.DocumentGenerator
		presign  handler.UploadPresigner
		storeSvc *storage.Service
	)
	if cfg.IsMinIOEnabled() {
		storeSvc, err = storage.New(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storeSvc, "application-documents", cfg.GetMinioBucketApplicationDocuments())
		ensureBucket(ctx, log, storeSvc, "generated-documents", cfg.GetMinioBucketGeneratedDocuments())
		log.Info("storage service initialized",
			"applicationDocumentsBucket", cfg.GetMinioBucketApplicationDocuments(),
			"generatedDocumentsBucket", cfg.GetMinioBucketGeneratedDocuments(),
		)

		presign = adapters.NewDocumentPresigner(storeSvc, cfg.GetMinioBucketApplicationDocuments())
		docs = adapters.NewDocumentGenerator(storeSvc, cfg.GetMinioBucketGeneratedDocuments())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; uploads and document generation disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	registry := domain.MustNewRegistry()

	partnersRepo := partners.New(pool)

	commissionsRepo := commission.New(pool)
	calculator, err := commission.NewCalculator(commissionsRepo, partnersRepo, cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize commission calculator", "error", err)
		panic("failed to initialize commission calculator: " + err.Error())
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.NewModule(eventBus, sender, partnersRepo, cfg, log)

	applicationsModule := applications.NewModule(
		pool,
		registry,
		cfg.GetSLAIdleThreshold(),
		docs,
		calculator,
		presign,
		eventBus,
		log,
		val,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			applicationsModule,
			commission.NewModule(commissionsRepo, eventBus, log),
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, store *storage.Service, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
