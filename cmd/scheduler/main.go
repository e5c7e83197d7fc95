package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admissions_portal_backend/internal/applications"
	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/commission"
	"admissions_portal_backend/internal/email"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/internal/notification"
	"admissions_portal_backend/internal/partners"
	"admissions_portal_backend/internal/scheduler"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/db"
	"admissions_portal_backend/platform/logger"
	"admissions_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Worker-side workflow wiring: the same application service as the API,
	// minus HTTP handlers. Automation moves publish events, so notifications
	// and commission payouts run here too.
	registry := domain.MustNewRegistry()
	partnersRepo := partners.New(pool)

	calculator, err := commission.NewCalculator(commission.New(pool), partnersRepo, cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize commission calculator", "error", err)
		panic("failed to initialize commission calculator: " + err.Error())
	}

	notification.NewModule(eventBus, sender, partnersRepo, cfg, log)

	applicationsModule := applications.NewModule(
		pool,
		registry,
		cfg.GetSLAIdleThreshold(),
		nil, // document generation requires storage; API handles those effects
		calculator,
		nil,
		eventBus,
		log,
		validator.New(),
	)

	worker, err := scheduler.NewWorker(cfg, applicationsModule.Service, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	scanner, err := scheduler.NewSLAScanner(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize sla scanner", "error", err)
		panic("failed to initialize sla scanner: " + err.Error())
	}
	defer func() { _ = scanner.Close() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		scanner.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped", "error", err)
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
