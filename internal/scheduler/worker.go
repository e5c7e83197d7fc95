package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/service"
	"admissions_portal_backend/platform/apperr"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// conflictRetryDelay spaces out retries after a version conflict, giving the
// competing writer time to finish.
const conflictRetryDelay = 30 * time.Second

// Worker consumes queued workflow tasks. SLA checks and deferred automation
// events run through the same application service as user transitions, so
// every mutation goes through the versioned commit path.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	client *Client
	apps   *service.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, apps *service.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		client: client,
		apps:   apps,
		log:    log,
	}

	mux.HandleFunc(TaskSLACheck, w.handleSLACheck)
	mux.HandleFunc(TaskAutomationEvent, w.handleAutomationEvent)

	return w, nil
}

func (w *Worker) handleSLACheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSLACheckPayload(task)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(payload.ApplicationID)
	if err != nil {
		return err
	}

	_, err = w.apps.ProcessAutomationEvent(ctx, id, domain.AutomationEvent{
		Name: domain.EventSchedule,
	})
	return w.rescheduleOnConflict(ctx, AutomationEventPayload{
		ApplicationID: payload.ApplicationID,
		Event:         domain.EventSchedule,
	}, err)
}

func (w *Worker) handleAutomationEvent(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAutomationEventPayload(task)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(payload.ApplicationID)
	if err != nil {
		return err
	}

	_, err = w.apps.ProcessAutomationEvent(ctx, id, domain.AutomationEvent{
		Name:     payload.Event,
		Metadata: payload.Metadata,
	})
	return w.rescheduleOnConflict(ctx, payload, err)
}

// rescheduleOnConflict converts a version-conflict failure into a delayed
// retry of the same automation event. Other errors go back to asynq's own
// retry policy unchanged.
func (w *Worker) rescheduleOnConflict(ctx context.Context, payload AutomationEventPayload, err error) error {
	if err == nil || apperr.GetKind(err) != apperr.KindConflict {
		return err
	}

	runAt := time.Now().Add(conflictRetryDelay)
	if schedErr := w.client.ScheduleAutomationEvent(ctx, payload, runAt); schedErr != nil {
		return errors.Join(err, schedErr)
	}

	w.log.Info("automation event rescheduled after version conflict",
		"application_id", payload.ApplicationID, "event", payload.Event, "run_at", runAt)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
		if err := w.client.Close(); err != nil {
			w.log.Warn("scheduler client close failed", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
