package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/repository"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/platform/apperr"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

// fakeStore keeps applications in memory with the same compare-and-swap
// commit semantics as the SQL repository.
type fakeStore struct {
	mu        sync.Mutex
	apps      map[uuid.UUID]*domain.Application
	persisted map[uuid.UUID]int64
	docs      map[uuid.UUID][]domain.Document
	audits    []repository.AuditEntry
	commitErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:      make(map[uuid.UUID]*domain.Application),
		persisted: make(map[uuid.UUID]int64),
		docs:      make(map[uuid.UUID][]domain.Document),
	}
}

func copyApp(app *domain.Application) *domain.Application {
	c := *app
	c.Documents = append([]domain.Document(nil), app.Documents...)
	c.StageHistory = append([]domain.HistoryEntry(nil), app.StageHistory...)
	return &c
}

func (s *fakeStore) Create(_ context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = copyApp(app)
	s.persisted[app.ID] = app.Version
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperr.NotFound("application not found")
	}
	out := copyApp(app)
	out.Documents = append([]domain.Document(nil), s.docs[id]...)
	return out, nil
}

func (s *fakeStore) CommitTransition(_ context.Context, app *domain.Application, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	current, ok := s.persisted[app.ID]
	if !ok {
		return apperr.NotFound("application not found")
	}
	if current != expectedVersion {
		return apperr.Conflict("application was modified concurrently, reload and retry")
	}
	s.apps[app.ID] = copyApp(app)
	s.persisted[app.ID] = app.Version
	return nil
}

func (s *fakeStore) AddDocument(_ context.Context, applicationID uuid.UUID, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[applicationID] = append(s.docs[applicationID], *doc)
	return nil
}

func (s *fakeStore) ListByPartner(_ context.Context, partnerID uuid.UUID) ([]*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Application
	for _, app := range s.apps {
		if app.PartnerID == partnerID {
			out = append(out, copyApp(app))
		}
	}
	return out, nil
}

func (s *fakeStore) AppendAudit(_ context.Context, entry *repository.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *entry)
	return nil
}

func (s *fakeStore) lastAudit(t *testing.T) repository.AuditEntry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.audits) == 0 {
		t.Fatal("no audit entries recorded")
	}
	return s.audits[len(s.audits)-1]
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) count(name string) int {
	return len(b.byName(name))
}

func (b *recordingBus) byName(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			matched = append(matched, e)
		}
	}
	return matched
}

type fakeDocGen struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (g *fakeDocGen) Generate(_ context.Context, _ *domain.Application, templateKey string, docType domain.DocumentType) (*domain.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.calls = append(g.calls, templateKey)
	return &domain.Document{
		ID:          uuid.New(),
		Type:        docType,
		FileName:    templateKey + ".txt",
		FileKey:     "generated/" + templateKey,
		UploadedBy:  domain.ActorSystem,
		GeneratedBy: templateKey,
		UploadedAt:  testNow,
	}, nil
}

type fakeCalculator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *fakeCalculator) Calculate(context.Context, *domain.Application) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func newTestService(store *fakeStore, bus *recordingBus, gen *fakeDocGen, calc *fakeCalculator) *Service {
	reg := domain.MustNewRegistry()
	pipeline := domain.NewPipeline(reg)
	automation := domain.NewAutomationEngine(reg, 72*time.Hour)
	log := logger.New("test")
	return New(store, reg, pipeline, automation, gen, calc, bus, log).
		WithClock(func() time.Time { return testNow })
}

func seedApp(t *testing.T, store *fakeStore, stage domain.Stage, status string) *domain.Application {
	t.Helper()
	app := &domain.Application{
		ID:           uuid.New(),
		Version:      1,
		Stage:        stage,
		Status:       status,
		StudentName:  "Amina Yusuf",
		Program:      "MSc Data Science",
		University:   "Leiden University",
		PartnerID:    uuid.New(),
		TuitionCents: 1_200_000,
		Priority:     domain.PriorityNormal,
		StageHistory: []domain.HistoryEntry{{
			Stage:     stage,
			Status:    status,
			Actor:     domain.ActorPartner,
			Timestamp: testNow.Add(-time.Hour),
		}},
		StageEnteredAt: testNow.Add(-time.Hour),
		CreatedAt:      testNow.Add(-time.Hour),
		UpdatedAt:      testNow.Add(-time.Hour),
	}
	if err := store.Create(context.Background(), app); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return app
}

func TestCreateApplicationRunsSubmissionAutomation(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})

	app, err := svc.CreateApplication(context.Background(), CreateInput{
		StudentName:  "Amina Yusuf",
		Program:      "MSc Data Science",
		University:   "Leiden University",
		PartnerID:    uuid.New(),
		TuitionCents: 1_200_000,
	})
	if err != nil {
		t.Fatalf("CreateApplication failed: %v", err)
	}

	// The intake start rule moves the fresh record to documents_required in
	// the same call.
	if app.Stage != domain.StageIntake || app.Status != domain.StatusDocumentsRequired {
		t.Fatalf("application = (%d, %s), want (1, documents_required)", app.Stage, app.Status)
	}
	if app.Version != 2 || len(app.StageHistory) != 2 {
		t.Errorf("version = %d, history = %d, want 2 and 2", app.Version, len(app.StageHistory))
	}
	if app.Priority != domain.PriorityNormal {
		t.Errorf("priority = %q, want the normal default", app.Priority)
	}

	if bus.count("applications.created") != 1 {
		t.Error("expected an applications.created event")
	}
	if bus.count("applications.status.changed") != 1 {
		t.Error("expected a status.changed event for the automation move")
	}

	// Both statuses the record passed through declare a notification:
	// new_application notifies the admin, documents_required the partner.
	if got := bus.count("notification.requested"); got != 2 {
		t.Errorf("notification.requested events = %d, want 2", got)
	}

	stored, err := store.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("stored application missing: %v", err)
	}
	if stored.Version != 2 {
		t.Errorf("persisted version = %d, want 2", stored.Version)
	}
}

func TestAttemptTransitionDeniedByAuthority(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsUnderReview)

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorPartner, domain.StatusDocumentsApproved, domain.AuxData{})
	if err != nil {
		t.Fatalf("denial must be a structured result, not an error: %v", err)
	}
	if result.Applied {
		t.Fatal("unauthorized transition applied")
	}
	if result.Denial.Code != domain.DenialNoAuthority {
		t.Errorf("denial code = %q, want no_authority", result.Denial.Code)
	}

	audit := store.lastAudit(t)
	if audit.Allowed || audit.DenialCode != string(domain.DenialNoAuthority) {
		t.Errorf("audit = %+v, want a denied entry", audit)
	}
	if audit.FromStatus != domain.StatusDocumentsUnderReview {
		t.Errorf("audit from status = %q", audit.FromStatus)
	}
	if bus.count("applications.transition.denied") != 1 {
		t.Error("expected a transition.denied event")
	}

	// Nothing persisted.
	stored, _ := store.GetByID(context.Background(), app.ID)
	if stored.Version != 1 || stored.Status != domain.StatusDocumentsUnderReview {
		t.Errorf("denied attempt mutated the record: %+v", stored)
	}
}

func TestAttemptTransitionValidationFailure(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsUnderReview)

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusDocumentsRejected, domain.AuxData{Reason: "bad"})
	if err != nil {
		t.Fatalf("validation failure must be a structured result, not an error: %v", err)
	}
	if result.Applied || result.Outcome.CanProceed {
		t.Fatal("short reason passed validation")
	}

	audit := store.lastAudit(t)
	if audit.Allowed || audit.DenialCode != "validation_failed" {
		t.Errorf("audit = %+v, want validation_failed", audit)
	}
	if len(audit.Errors) == 0 {
		t.Error("audit entry carries no validation errors")
	}
}

func TestAttemptTransitionRejectionNotifiesWithReason(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsUnderReview)

	reason := "passport scan is illegible, please rescan"
	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusDocumentsRejected, domain.AuxData{Reason: reason})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transition not applied: denial=%+v outcome=%+v", result.Denial, result.Outcome)
	}

	requested := bus.byName("notification.requested")
	if len(requested) != 1 {
		t.Fatalf("notification.requested events = %d, want 1", len(requested))
	}
	e, ok := requested[0].(events.NotificationRequested)
	if !ok {
		t.Fatalf("unexpected event type %T", requested[0])
	}
	if e.TemplateKey != "documents_rejected" || e.Audience != "partner" {
		t.Errorf("notification = %+v, want partner documents_rejected", e)
	}
	if e.Reason != reason {
		t.Errorf("notification reason = %q, want %q", e.Reason, reason)
	}
}

func TestAttemptTransitionComposesStageCompletion(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsApproved)

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusApprovedStage1, domain.AuxData{})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transition not applied: denial=%+v outcome=%+v", result.Denial, result.Outcome)
	}

	got := result.Application
	if got.Stage != domain.StageUniversity || got.Status != domain.StatusSentToUniversity {
		t.Fatalf("application = (%d, %s), want (2, sent_to_university)", got.Stage, got.Status)
	}
	if int(got.Version) != len(got.StageHistory) {
		t.Errorf("version %d out of step with history %d", got.Version, len(got.StageHistory))
	}

	// approved_stage1 never appears in history; the composed pair does.
	for _, e := range got.StageHistory {
		if e.Status == domain.StatusApprovedStage1 {
			t.Error("intermediate completion status leaked into history")
		}
	}

	if bus.count("applications.stage.advanced") != 1 {
		t.Error("expected a stage.advanced event")
	}
	if bus.count("notification.requested") == 0 {
		t.Error("expected the stage-2 entry notification")
	}

	audit := store.lastAudit(t)
	if !audit.Allowed || audit.FromStage != 1 || audit.FromStatus != domain.StatusDocumentsApproved {
		t.Errorf("audit = %+v, want an allowed entry from (1, documents_approved)", audit)
	}
}

func TestAttemptTransitionOfferLetterGeneratesDocuments(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	gen := &fakeDocGen{}
	svc := newTestService(store, bus, gen, &fakeCalculator{})
	app := seedApp(t, store, domain.StageUniversity, domain.StatusUniversityApproved)

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusOfferLetterIssued, domain.AuxData{})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transition not applied: %+v", result.Outcome)
	}
	if result.Application.Stage != domain.StageVisa || result.Application.Status != domain.StatusWaitingVisaPayment {
		t.Fatalf("application = (%d, %s), want (3, waiting_visa_payment)", result.Application.Stage, result.Application.Status)
	}

	if len(gen.calls) != 2 {
		t.Fatalf("generator calls = %v, want offer_letter and visa_payment_request", gen.calls)
	}
	if bus.count("applications.document.generated") != 2 {
		t.Error("expected two document.generated events")
	}
	if len(store.docs[app.ID]) != 2 {
		t.Errorf("persisted documents = %d, want 2", len(store.docs[app.ID]))
	}
}

func TestAttemptTransitionEnrollmentCalculatesCommissionOnce(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	calc := &fakeCalculator{}
	svc := newTestService(store, bus, &fakeDocGen{}, calc)
	app := seedApp(t, store, domain.StageArrival, domain.StatusEnrollmentInProgress)
	store.docs[app.ID] = []domain.Document{{ID: uuid.New(), Type: domain.DocEnrollmentLetter, FileName: "enrollment.pdf"}}

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorUniversity, domain.StatusEnrollmentConfirmed, domain.AuxData{})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transition not applied: %+v", result.Outcome)
	}

	// Composition lands on commission_pending; once the calculator records
	// the payout, the effect_completed automation advances the record to
	// commission_calculated in its own commit.
	got := result.Application
	if got.Stage != domain.StageCommission || got.Status != domain.StatusCommissionCalculated {
		t.Fatalf("application = (%d, %s), want (5, commission_calculated)", got.Stage, got.Status)
	}
	if int(got.Version) != len(got.StageHistory) {
		t.Errorf("version %d out of step with history %d", got.Version, len(got.StageHistory))
	}
	if calc.calls != 1 {
		t.Errorf("calculator calls = %d, want exactly 1", calc.calls)
	}

	// Both statuses are on record, pending before calculated.
	hist := got.StageHistory
	if len(hist) < 2 {
		t.Fatalf("history = %d entries, want at least 2", len(hist))
	}
	if hist[len(hist)-2].Status != domain.StatusCommissionPending || hist[len(hist)-1].Status != domain.StatusCommissionCalculated {
		t.Errorf("history tail = %q then %q, want commission_pending then commission_calculated",
			hist[len(hist)-2].Status, hist[len(hist)-1].Status)
	}

	stored, err := store.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("stored application missing: %v", err)
	}
	if stored.Status != domain.StatusCommissionCalculated {
		t.Errorf("persisted status = %q, want commission_calculated", stored.Status)
	}
}

func TestCalculatorFailureLeavesCommissionPending(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	calc := &fakeCalculator{err: errors.New("payout store unavailable")}
	svc := newTestService(store, bus, &fakeDocGen{}, calc)
	app := seedApp(t, store, domain.StageArrival, domain.StatusEnrollmentInProgress)
	store.docs[app.ID] = []domain.Document{{ID: uuid.New(), Type: domain.DocEnrollmentLetter, FileName: "enrollment.pdf"}}

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorUniversity, domain.StatusEnrollmentConfirmed, domain.AuxData{})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatalf("transition not applied: %+v", result.Outcome)
	}
	if calc.calls != 1 {
		t.Errorf("calculator calls = %d, want exactly 1", calc.calls)
	}

	// No payout on record, so the application must not claim calculation
	// happened. It rests at commission_pending until a retry succeeds.
	stored, err := store.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("stored application missing: %v", err)
	}
	if stored.Stage != domain.StageCommission || stored.Status != domain.StatusCommissionPending {
		t.Fatalf("persisted application = (%d, %s), want (5, commission_pending)", stored.Stage, stored.Status)
	}
	if int(stored.Version) != len(stored.StageHistory) {
		t.Errorf("version %d out of step with history %d", stored.Version, len(stored.StageHistory))
	}
}

func TestAttemptTransitionVersionConflict(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsApproved)

	// A concurrent writer advanced the persisted version after our load.
	store.mu.Lock()
	store.persisted[app.ID] = 2
	store.mu.Unlock()

	_, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusApprovedStage1, domain.AuxData{})
	if err == nil {
		t.Fatal("stale version must surface as an error")
	}
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("error kind = %v, want conflict: %v", apperr.GetKind(err), err)
	}
}

func TestAttemptTransitionUnknownApplication(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{}, &fakeDocGen{}, &fakeCalculator{})

	_, err := svc.AttemptTransition(context.Background(), uuid.New(), domain.ActorAdmin, domain.StatusDocumentsRequired, domain.AuxData{})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not found", apperr.GetKind(err))
	}
}

func TestAttemptTransitionUnregisteredStatusIsInternal(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{}, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, "no_such_status")

	_, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusDocumentsRequired, domain.AuxData{})
	if apperr.GetKind(err) != apperr.KindInternal {
		t.Errorf("error kind = %v, want internal (configuration error)", apperr.GetKind(err))
	}
}

func TestConfirmDocumentUploadAdvancesUploadStatus(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsRequired)
	store.docs[app.ID] = []domain.Document{
		{ID: uuid.New(), Type: domain.DocPassport},
		{ID: uuid.New(), Type: domain.DocTranscript},
	}

	got, err := svc.ConfirmDocumentUpload(context.Background(), app.ID, domain.ActorPartner, &domain.Document{
		Type:     domain.DocEnglishTest,
		FileName: "ielts.pdf",
		FileKey:  "applications/x/english_test/ielts.pdf",
	})
	if err != nil {
		t.Fatalf("ConfirmDocumentUpload failed: %v", err)
	}

	if got.Status != domain.StatusDocumentsSubmitted {
		t.Fatalf("status = %q, want documents_submitted after the last required upload", got.Status)
	}
	if bus.count("applications.document.uploaded") != 1 {
		t.Error("expected a document.uploaded event")
	}
	if len(store.docs[app.ID]) != 3 {
		t.Errorf("persisted documents = %d, want 3", len(store.docs[app.ID]))
	}

	last := store.docs[app.ID][2]
	if last.UploadedBy != domain.ActorPartner || last.ID == uuid.Nil {
		t.Errorf("uploaded document not stamped: %+v", last)
	}
}

func TestProcessAutomationEventScheduleEscalates(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageUniversity, domain.StatusSentToUniversity)

	store.mu.Lock()
	store.apps[app.ID].Priority = domain.PriorityHigh
	store.apps[app.ID].StageEnteredAt = testNow.Add(-100 * time.Hour)
	store.mu.Unlock()

	outcome, err := svc.ProcessAutomationEvent(context.Background(), app.ID, domain.AutomationEvent{Name: domain.EventSchedule})
	if err != nil {
		t.Fatalf("ProcessAutomationEvent failed: %v", err)
	}
	if outcome.Changed {
		t.Error("sla escalation must not change status")
	}
	if bus.count("applications.sla.breached") != 1 {
		t.Error("expected an sla.breached event")
	}
}

func TestAvailableTransitionsDescribesRequirements(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{}, &fakeDocGen{}, &fakeCalculator{})
	app := seedApp(t, store, domain.StageIntake, domain.StatusDocumentsRequired)

	options, err := svc.AvailableTransitions(context.Background(), app.ID, domain.ActorPartner)
	if err != nil {
		t.Fatalf("AvailableTransitions failed: %v", err)
	}
	if len(options) != 1 || options[0].Target != domain.StatusDocumentsSubmitted {
		t.Fatalf("options = %+v, want documents_submitted only", options)
	}
	if len(options[0].RequiredDocuments) != 3 {
		t.Errorf("required documents = %v, want the intake set", options[0].RequiredDocuments)
	}
}

func TestGeneratorFailureDoesNotRollBackTransition(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	gen := &fakeDocGen{err: errors.New("bucket unavailable")}
	svc := newTestService(store, bus, gen, &fakeCalculator{})
	app := seedApp(t, store, domain.StageUniversity, domain.StatusUniversityApproved)

	result, err := svc.AttemptTransition(context.Background(), app.ID, domain.ActorAdmin, domain.StatusOfferLetterIssued, domain.AuxData{})
	if err != nil {
		t.Fatalf("AttemptTransition failed: %v", err)
	}
	if !result.Applied {
		t.Fatal("effect failure must not block the committed transition")
	}

	stored, _ := store.GetByID(context.Background(), app.ID)
	if stored.Status != domain.StatusWaitingVisaPayment {
		t.Errorf("persisted status = %q, want waiting_visa_payment", stored.Status)
	}
	if bus.count("applications.document.generated") != 0 {
		t.Error("failed generation still published document.generated")
	}
}
