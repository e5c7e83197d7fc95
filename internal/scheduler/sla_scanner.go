package scheduler

import (
	"context"
	"time"

	"admissions_portal_backend/internal/applications/repository"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const slaScanBatchSize = 100

// SLAScanner periodically finds non-terminal high-priority applications that
// have idled past the threshold and queues an SLA check for each.
type SLAScanner struct {
	client        *Client
	repo          *repository.Repository
	scanInterval  time.Duration
	idleThreshold time.Duration
	log           *logger.Logger
}

func NewSLAScanner(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*SLAScanner, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetSLAScanInterval()
	if interval <= 0 {
		interval = time.Hour
	}

	threshold := cfg.GetSLAIdleThreshold()
	if threshold <= 0 {
		threshold = 72 * time.Hour
	}

	return &SLAScanner{
		client:        client,
		repo:          repository.New(pool),
		scanInterval:  interval,
		idleThreshold: threshold,
		log:           log,
	}, nil
}

func (s *SLAScanner) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SLAScanner) Run(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.scan(ctx)
	}
}

func (s *SLAScanner) scan(ctx context.Context) {
	cutoff := time.Now().Add(-s.idleThreshold)

	ids, err := s.repo.ListIdleHighPriority(ctx, cutoff, slaScanBatchSize)
	if err != nil {
		s.log.Warn("sla scan failed", "error", err)
		return
	}

	for _, id := range ids {
		if err := s.client.EnqueueSLACheck(ctx, SLACheckPayload{ApplicationID: id.String()}); err != nil {
			s.log.Warn("sla task enqueue failed", "application_id", id, "error", err)
		}
	}

	if len(ids) > 0 {
		s.log.Info("sla scan queued checks", "count", len(ids))
	}
}
