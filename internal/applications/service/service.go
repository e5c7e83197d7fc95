// Package service implements the application workflow use cases: creation,
// transition attempts, automation processing and queries.
package service

import (
	"context"
	"fmt"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/repository"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/platform/apperr"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. Implemented by
// repository.Repository; tests substitute fakes.
type Store interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	CommitTransition(ctx context.Context, app *domain.Application, expectedVersion int64) error
	AddDocument(ctx context.Context, applicationID uuid.UUID, doc *domain.Document) error
	AppendAudit(ctx context.Context, entry *repository.AuditEntry) error
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]*domain.Application, error)
}

// DocumentGenerator renders a workflow document (offer letter, payment
// request) and stores the file, returning the document record to persist.
type DocumentGenerator interface {
	Generate(ctx context.Context, app *domain.Application, templateKey string, docType domain.DocumentType) (*domain.Document, error)
}

// CommissionCalculator computes and records the partner payout for an
// application entering the commission stage.
type CommissionCalculator interface {
	Calculate(ctx context.Context, app *domain.Application) error
}

// Service orchestrates the workflow domain: authority, rules, composition,
// automation, persistence and effects.
type Service struct {
	store      Store
	reg        *domain.Registry
	auth       *domain.AuthorityChecker
	pipeline   *domain.Pipeline
	composer   *domain.StageComposer
	automation *domain.AutomationEngine

	docs        DocumentGenerator
	commissions CommissionCalculator
	bus         events.Bus
	log         *logger.Logger

	now func() time.Time
}

// New wires the workflow service. docs and commissions may be nil when the
// corresponding adapters are disabled; their effects are then logged and
// skipped.
func New(
	store Store,
	reg *domain.Registry,
	pipeline *domain.Pipeline,
	automation *domain.AutomationEngine,
	docs DocumentGenerator,
	commissions CommissionCalculator,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		store:       store,
		reg:         reg,
		auth:        domain.NewAuthorityChecker(reg),
		pipeline:    pipeline,
		composer:    domain.NewStageComposer(reg),
		automation:  automation,
		docs:        docs,
		commissions: commissions,
		bus:         bus,
		log:         log,
		now:         time.Now,
	}
}

// WithAutomation replaces the default automation engine. Used by the
// composition root to share one engine between API and scheduler.
func (s *Service) WithAutomation(engine *domain.AutomationEngine) *Service {
	s.automation = engine
	return s
}

// WithClock fixes the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateInput is the data needed to open a new application.
type CreateInput struct {
	StudentName  string
	Program      string
	University   string
	PartnerID    uuid.UUID
	TuitionCents int64
	Priority     domain.Priority
}

// CreateApplication opens a new application at the intake entry status and
// runs the submission automation, which normally advances it straight to
// documents_required.
func (s *Service) CreateApplication(ctx context.Context, input CreateInput) (*domain.Application, error) {
	now := s.now()
	entry := s.reg.EntryStatus(domain.StageIntake)
	def, ok := s.reg.Lookup(domain.StageIntake, entry)
	if !ok {
		return nil, apperr.Internal("intake entry status is not registered")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	app := &domain.Application{
		ID:         uuid.New(),
		Version:    1,
		Stage:      domain.StageIntake,
		Status:     entry,
		NextActor:  def.WaitingOn,
		NextAction: def.NextAction,

		StudentName:  input.StudentName,
		Program:      input.Program,
		University:   input.University,
		PartnerID:    input.PartnerID,
		TuitionCents: input.TuitionCents,
		Priority:     priority,

		StageHistory: []domain.HistoryEntry{{
			Stage:     domain.StageIntake,
			Status:    entry,
			Actor:     domain.ActorPartner,
			Timestamp: now,
		}},

		StageEnteredAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, app); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ApplicationCreated{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		PartnerID:     app.PartnerID,
		StudentName:   app.StudentName,
		Program:       app.Program,
		University:    app.University,
	})

	// The entry status announces itself like any other status the record
	// lands on.
	s.interpretEffects(ctx, app, domain.NotifyEffects(def, ""))

	if _, err := s.runAutomation(ctx, app, domain.AutomationEvent{Name: domain.EventApplicationSubmitted}); err != nil {
		// The record exists; a failed automation commit only means it rests
		// at the entry status until the next event.
		s.log.Error("submission automation failed", "application_id", app.ID, "error", err)
	}

	return app, nil
}

// GetApplication loads one application with documents and history.
func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return s.store.GetByID(ctx, id)
}

// ListApplications returns a partner's applications, newest first.
func (s *Service) ListApplications(ctx context.Context, partnerID uuid.UUID) ([]*domain.Application, error) {
	return s.store.ListByPartner(ctx, partnerID)
}

// TargetOption describes one transition available to an actor, with the
// input requirements the client must satisfy.
type TargetOption struct {
	Target               string
	RequiresReason       bool
	RequiresConfirmation bool
	RequiresDate         bool
	RequiresTracking     bool
	RequiredDocuments    []domain.DocumentType
}

// AvailableTransitions returns the actor's options from the application's
// current status. Terminal statuses yield an empty list for every actor.
func (s *Service) AvailableTransitions(ctx context.Context, id uuid.UUID, actor domain.Actor) ([]TargetOption, error) {
	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	targets := s.auth.AvailableTargets(app.Stage, app.Status, actor)
	options := make([]TargetOption, 0, len(targets))
	for _, target := range targets {
		def, ok := s.reg.Lookup(app.Stage, target)
		if !ok {
			s.log.ConfigurationError("registry",
				fmt.Errorf("transition target %q missing from stage %d", target, app.Stage))
			continue
		}
		options = append(options, TargetOption{
			Target:               target,
			RequiresReason:       def.RequiresReason,
			RequiresConfirmation: def.RequiresConfirmation,
			RequiresDate:         def.RequiresDate,
			RequiresTracking:     def.RequiresTracking,
			RequiredDocuments:    def.RequiredDocuments,
		})
	}

	return options, nil
}

// TransitionResult is the structured outcome of a transition attempt.
// Expected failures (no authority, validation errors) land here instead of
// in the error return; the error return is reserved for not-found, version
// conflicts and internal failures.
type TransitionResult struct {
	Applied     bool
	Denial      domain.Decision
	Outcome     domain.Outcome
	Application *domain.Application
}

// AttemptTransition validates, composes and commits one transition. Every
// attempt, allowed or denied, appends an audit row. Commits use the version
// the application was loaded with; concurrent writers produce a conflict
// error and the caller retries against the fresh record.
func (s *Service) AttemptTransition(ctx context.Context, id uuid.UUID, actor domain.Actor, target string, aux domain.AuxData) (*TransitionResult, error) {
	now := s.now()

	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := s.auth.ValidateTransition(app.Stage, app.Status, target, actor)
	if !decision.Allowed {
		if decision.Code == domain.DenialUnknownStatus {
			s.log.ConfigurationError("registry",
				fmt.Errorf("application %s rests on unregistered status (%d, %s)", app.ID, app.Stage, app.Status))
			return nil, apperr.Internal("application status is not registered")
		}

		s.log.TransitionDenied(app.ID.String(), string(actor), target, decision.Reason)
		s.audit(ctx, app.ID, actor, app.Stage, app.Status, target, false, string(decision.Code), []string{decision.Reason}, now)
		s.publishDenied(ctx, app, actor, target, string(decision.Code), []string{decision.Reason})

		return &TransitionResult{Denial: decision, Application: app}, nil
	}

	outcome := s.pipeline.Evaluate(app, actor, target, aux, now)
	if outcome.ConfigurationError {
		s.log.ConfigurationError("rule_pipeline",
			fmt.Errorf("application %s target %q: %v", app.ID, target, outcome.Errors))
	}
	if !outcome.CanProceed {
		s.audit(ctx, app.ID, actor, app.Stage, app.Status, target, false, "validation_failed", outcome.Errors, now)
		s.publishDenied(ctx, app, actor, target, "validation_failed", outcome.Errors)
		return &TransitionResult{Outcome: outcome, Application: app}, nil
	}

	change, effects, err := s.composer.Compose(app, actor, target, aux, now)
	if err != nil {
		s.log.ConfigurationError("stage_composer", err)
		return nil, apperr.Internal("stage composition failed")
	}

	fromStage, fromStatus := app.Stage, app.Status
	expected := app.Version
	domain.ApplyChange(app, change, now)

	if err := s.store.CommitTransition(ctx, app, expected); err != nil {
		return nil, err
	}

	s.log.Transition(app.ID.String(), string(actor), int(fromStage), fromStatus, int(app.Stage), app.Status)
	s.audit(ctx, app.ID, actor, fromStage, fromStatus, target, true, "", nil, now)
	s.publishChanged(ctx, app, actor, fromStage, fromStatus, aux.Reason)
	s.interpretEffects(ctx, app, effects)

	return &TransitionResult{Applied: true, Outcome: outcome, Application: app}, nil
}

// ConfirmDocumentUpload records an uploaded document and runs the
// documents_uploaded automation, which may advance upload statuses.
func (s *Service) ConfirmDocumentUpload(ctx context.Context, id uuid.UUID, actor domain.Actor, doc *domain.Document) (*domain.Application, error) {
	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = s.now()
	}
	doc.UploadedBy = actor

	if err := s.store.AddDocument(ctx, app.ID, doc); err != nil {
		return nil, err
	}
	app.Documents = append(app.Documents, *doc)

	s.bus.Publish(ctx, events.DocumentUploaded{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		DocumentID:    doc.ID,
		DocumentType:  string(doc.Type),
		FileName:      doc.FileName,
		FileKey:       doc.FileKey,
		UploadedBy:    string(actor),
	})

	if _, err := s.runAutomation(ctx, app, domain.AutomationEvent{Name: domain.EventDocumentsUploaded}); err != nil {
		return nil, err
	}

	return app, nil
}

// ProcessAutomationEvent loads the application, runs the automation engine
// for the named event and commits any resulting moves. Used by the scheduler.
func (s *Service) ProcessAutomationEvent(ctx context.Context, id uuid.UUID, ev domain.AutomationEvent) (domain.AutomationOutcome, error) {
	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.AutomationOutcome{}, err
	}
	return s.runAutomation(ctx, app, ev)
}

func (s *Service) runAutomation(ctx context.Context, app *domain.Application, ev domain.AutomationEvent) (domain.AutomationOutcome, error) {
	now := s.now()
	fromStage, fromStatus := app.Stage, app.Status
	expected := app.Version

	outcome := s.automation.Process(app, ev, now)

	for _, action := range outcome.Actions {
		s.dispatchAction(ctx, app, action)
	}

	if !outcome.Changed {
		return outcome, nil
	}

	if err := s.store.CommitTransition(ctx, app, expected); err != nil {
		return outcome, err
	}

	s.publishChanged(ctx, app, domain.ActorSystem, fromStage, fromStatus, "")
	s.interpretEffects(ctx, app, outcome.Effects)
	return outcome, nil
}

// interpretEffects executes the side effects of a committed transition.
// Effects are best-effort: a failed document generation or commission
// calculation is logged and surfaced operationally, never rolled back into
// the state machine.
func (s *Service) interpretEffects(ctx context.Context, app *domain.Application, effects []domain.Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case domain.EffectGenerateDocument:
			s.generateDocument(ctx, app, effect)
		case domain.EffectCalculateCommission:
			s.calculateCommission(ctx, app)
		case domain.EffectNotify:
			s.bus.Publish(ctx, events.NotificationRequested{
				BaseEvent:     events.NewBaseEvent(),
				ApplicationID: app.ID,
				PartnerID:     app.PartnerID,
				Audience:      effect.Audience,
				TemplateKey:   effect.TemplateKey,
				StudentName:   app.StudentName,
				Stage:         int(app.Stage),
				Status:        app.Status,
				Reason:        effect.Reason,
			})
		default:
			s.log.ConfigurationError("effects", fmt.Errorf("unknown effect kind %q", effect.Kind))
		}
	}
}

func (s *Service) generateDocument(ctx context.Context, app *domain.Application, effect domain.Effect) {
	if s.docs == nil {
		s.log.Warn("document generation skipped, no generator configured", "template", effect.TemplateKey)
		return
	}

	doc, err := s.docs.Generate(ctx, app, effect.TemplateKey, effect.DocumentType)
	if err != nil {
		s.log.Error("document generation failed",
			"application_id", app.ID, "template", effect.TemplateKey, "error", err)
		return
	}

	if err := s.store.AddDocument(ctx, app.ID, doc); err != nil {
		s.log.Error("failed to record generated document",
			"application_id", app.ID, "template", effect.TemplateKey, "error", err)
		return
	}
	app.Documents = append(app.Documents, *doc)

	s.bus.Publish(ctx, events.DocumentGenerated{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		DocumentID:    doc.ID,
		DocumentType:  string(doc.Type),
		TemplateKey:   effect.TemplateKey,
		FileKey:       doc.FileKey,
	})
}

func (s *Service) calculateCommission(ctx context.Context, app *domain.Application) {
	if s.commissions == nil {
		s.log.Warn("commission calculation skipped, no calculator configured", "application_id", app.ID)
		return
	}
	if err := s.commissions.Calculate(ctx, app); err != nil {
		s.log.Error("commission calculation failed", "application_id", app.ID, "error", err)
		return
	}

	// The payout is on record; the effect_completed automation now advances
	// commission_pending to commission_calculated in its own commit.
	if _, err := s.runAutomation(ctx, app, domain.AutomationEvent{Name: domain.EventEffectCompleted}); err != nil {
		s.log.Error("commission auto-progress failed", "application_id", app.ID, "error", err)
	}
}

func (s *Service) dispatchAction(ctx context.Context, app *domain.Application, action domain.Action) {
	switch action.Name {
	case "notify_sla_breach":
		s.bus.Publish(ctx, events.SLABreached{
			BaseEvent:     events.NewBaseEvent(),
			ApplicationID: app.ID,
			Stage:         int(app.Stage),
			Status:        app.Status,
			IdleFor:       action.Params["idle"],
		})
	default:
		s.log.Warn("unhandled rule action", "action", action.Name)
	}
}

func (s *Service) audit(ctx context.Context, appID uuid.UUID, actor domain.Actor, fromStage domain.Stage, fromStatus, target string, allowed bool, denialCode string, errs []string, now time.Time) {
	entry := &repository.AuditEntry{
		ID:            uuid.New(),
		ApplicationID: appID,
		Actor:         string(actor),
		FromStage:     int(fromStage),
		FromStatus:    fromStatus,
		Target:        target,
		Allowed:       allowed,
		DenialCode:    denialCode,
		Errors:        errs,
		CreatedAt:     now,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.log.Error("failed to append audit entry", "application_id", appID, "error", err)
	}
}

func (s *Service) publishChanged(ctx context.Context, app *domain.Application, actor domain.Actor, fromStage domain.Stage, fromStatus, reason string) {
	s.bus.Publish(ctx, events.StatusChanged{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		PartnerID:     app.PartnerID,
		Actor:         string(actor),
		OldStage:      int(fromStage),
		OldStatus:     fromStatus,
		NewStage:      int(app.Stage),
		NewStatus:     app.Status,
		Reason:        reason,
	})

	if app.Stage != fromStage {
		s.bus.Publish(ctx, events.StageAdvanced{
			BaseEvent:     events.NewBaseEvent(),
			ApplicationID: app.ID,
			PartnerID:     app.PartnerID,
			FromStage:     int(fromStage),
			ToStage:       int(app.Stage),
			EntryStatus:   app.Status,
		})
	}
}

func (s *Service) publishDenied(ctx context.Context, app *domain.Application, actor domain.Actor, target, code string, errs []string) {
	s.bus.Publish(ctx, events.TransitionDenied{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		Actor:         string(actor),
		FromStatus:    app.Status,
		Target:        target,
		DenialCode:    code,
		Errors:        errs,
	})
}
