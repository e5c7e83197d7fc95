package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

// testApp builds an application resting on (stage, status) with one history
// entry per version, the shape every persisted record has.
func testApp(stage Stage, status string) *Application {
	now := testNow.Add(-2 * time.Hour)
	return &Application{
		ID:           uuid.New(),
		Version:      1,
		Stage:        stage,
		Status:       status,
		StudentName:  "Amina Yusuf",
		Program:      "MSc Data Science",
		University:   "Leiden University",
		PartnerID:    uuid.New(),
		TuitionCents: 1_200_000,
		Priority:     PriorityNormal,
		StageHistory: []HistoryEntry{{
			Stage:     stage,
			Status:    status,
			Actor:     ActorPartner,
			Timestamp: now,
		}},
		StageEnteredAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func hasErrorContaining(out Outcome, substr string) bool {
	for _, e := range out.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestPipelineRequiresSubstantiveReason(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageIntake, StatusDocumentsUnderReview)

	out := p.Evaluate(app, ActorAdmin, StatusDocumentsRejected, AuxData{Reason: "bad scan"}, testNow)
	if out.CanProceed {
		t.Fatal("nine-character reason should not pass")
	}
	if !hasErrorContaining(out, "requires a reason") {
		t.Errorf("errors = %v, want a reason-length error", out.Errors)
	}

	out = p.Evaluate(app, ActorAdmin, StatusDocumentsRejected, AuxData{Reason: "passport scan is illegible"}, testNow)
	if !out.CanProceed {
		t.Fatalf("substantive reason rejected: %v", out.Errors)
	}
}

func TestPipelineRequiredDocuments(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageIntake, StatusDocumentsRequired)
	app.Documents = []Document{
		{ID: uuid.New(), Type: DocPassport, FileName: "passport.pdf"},
		{ID: uuid.New(), Type: DocTranscript, FileName: "transcript.pdf"},
	}

	out := p.Evaluate(app, ActorPartner, StatusDocumentsSubmitted, AuxData{}, testNow)
	if out.CanProceed {
		t.Fatal("submission without the english test should fail")
	}
	if !hasErrorContaining(out, string(DocEnglishTest)) {
		t.Errorf("errors = %v, want the missing english_test named", out.Errors)
	}

	app.Documents = append(app.Documents, Document{ID: uuid.New(), Type: DocEnglishTest, FileName: "ielts.pdf"})
	out = p.Evaluate(app, ActorPartner, StatusDocumentsSubmitted, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("complete document set rejected: %v", out.Errors)
	}
}

func TestPipelineDateFormat(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageArrival, StatusArrivalDatePlanning)

	cases := []struct {
		date string
		ok   bool
	}{
		{"", false},
		{"15-09-2026", false},
		{"2026-13-40", false},
		{"2026-09-15", true},
	}

	for _, tc := range cases {
		out := p.Evaluate(app, ActorPartner, StatusArrivalDateConfirmed, AuxData{ArrivalDate: tc.date}, testNow)
		if out.CanProceed != tc.ok {
			t.Errorf("date %q: canProceed = %v, want %v (errors: %v)", tc.date, out.CanProceed, tc.ok, out.Errors)
		}
	}
}

func TestPipelineDateFallsBackToStoredValue(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageArrival, StatusArrivalDatePlanning)
	app.ArrivalDate = "2026-09-15"

	out := p.Evaluate(app, ActorPartner, StatusArrivalDateConfirmed, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("stored arrival date should satisfy the rule: %v", out.Errors)
	}
}

func TestPipelineReceiptExtensions(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageVisa, StatusWaitingVisaPayment)

	cases := []struct {
		file string
		ok   bool
	}{
		{"", false},
		{"receipt", false},
		{".pdf", false},
		{"receipt.exe", false},
		{"receipt.pdf", true},
		{"Receipt.JPG", true},
		{"scan.jpeg", true},
		{"photo.png", true},
	}

	for _, tc := range cases {
		out := p.Evaluate(app, ActorPartner, StatusPaymentReceived, AuxData{ReceiptFileName: tc.file}, testNow)
		if out.CanProceed != tc.ok {
			t.Errorf("receipt %q: canProceed = %v, want %v (errors: %v)", tc.file, out.CanProceed, tc.ok, out.Errors)
		}
	}
}

func TestPipelineTrackingNumber(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageVisa, StatusVisaDocsPreparation)

	out := p.Evaluate(app, ActorAdmin, StatusSubmittedToImmigration, AuxData{TrackingNumber: "AB1"}, testNow)
	if out.CanProceed {
		t.Fatal("three-character tracking number should fail")
	}

	out = p.Evaluate(app, ActorAdmin, StatusSubmittedToImmigration, AuxData{TrackingNumber: "IMM-2026-0042"}, testNow)
	if !out.CanProceed {
		t.Fatalf("valid tracking number rejected: %v", out.Errors)
	}

	// A number recorded on an earlier transition counts too.
	app.TrackingNumber = "IMM-2026-0042"
	out = p.Evaluate(app, ActorAdmin, StatusSubmittedToImmigration, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("stored tracking number rejected: %v", out.Errors)
	}
}

func TestPipelineFilenameSanity(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageIntake, StatusDocumentsRequired)
	app.Documents = []Document{
		{ID: uuid.New(), Type: DocPassport},
		{ID: uuid.New(), Type: DocTranscript},
		{ID: uuid.New(), Type: DocEnglishTest},
	}

	bad := [][]string{
		{"ok.pdf", "a"},
		{"../../etc/passwd"},
		{"dir/file.pdf"},
		{"name\x00.pdf"},
	}
	for _, names := range bad {
		out := p.Evaluate(app, ActorPartner, StatusDocumentsSubmitted, AuxData{DocumentNames: names}, testNow)
		if out.CanProceed {
			t.Errorf("document names %q should fail", names)
		}
	}

	out := p.Evaluate(app, ActorPartner, StatusDocumentsSubmitted, AuxData{DocumentNames: []string{"passport.pdf", "ielts score.pdf"}}, testNow)
	if !out.CanProceed {
		t.Fatalf("sane document names rejected: %v", out.Errors)
	}
}

// Re-entering the current status stays a hard block. This has caught client
// retry loops before; do not soften it to a warning.
func TestPipelineDuplicateStatusAlwaysBlocks(t *testing.T) {
	p := NewPipeline(MustNewRegistry(), WithDisabledRules(func(id string) bool {
		return id != "duplicate_status"
	}))
	app := testApp(StageIntake, StatusDocumentsRequired)

	out := p.Evaluate(app, ActorAdmin, StatusDocumentsRequired, AuxData{}, testNow)
	if out.CanProceed {
		t.Fatal("duplicate status transition must be blocked")
	}
	if !hasErrorContaining(out, "already in status") {
		t.Errorf("errors = %v, want the duplicate-status error", out.Errors)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("duplicate status produced warnings %v, must be an error", out.Warnings)
	}
}

func TestPipelineUnknownCurrentStatusIsConfigurationError(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageIntake, "no_such_status")

	out := p.Evaluate(app, ActorAdmin, StatusDocumentsRequired, AuxData{}, testNow)
	if out.CanProceed {
		t.Fatal("unknown current status must not proceed")
	}
	if !out.ConfigurationError {
		t.Error("unknown current status must be flagged as a configuration error")
	}
}

type panickingRule struct{}

func (panickingRule) ID() string                 { return "panicking" }
func (panickingRule) Type() RuleType             { return RuleTypeNotification }
func (panickingRule) Priority() int              { return 90 }
func (panickingRule) AppliesTo(RuleContext) bool { return true }
func (panickingRule) Evaluate(RuleContext) RuleResult {
	panic("boom")
}

func TestPipelineRecoversPanickingRule(t *testing.T) {
	p := NewPipeline(MustNewRegistry(), WithExtraRules(panickingRule{}))
	app := testApp(StageIntake, StatusNewApplication)

	out := p.Evaluate(app, ActorAdmin, StatusDocumentsRequired, AuxData{}, testNow)
	if out.CanProceed {
		t.Fatal("a panicking rule must block the transition")
	}
	if !out.ConfigurationError {
		t.Error("a panicking rule must be flagged as a configuration error")
	}
	if !hasErrorContaining(out, `internal error in rule "panicking"`) {
		t.Errorf("errors = %v, want the panic surfaced as an internal rule error", out.Errors)
	}
}

func TestPipelinePermissionFailureDoesNotShortCircuit(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	// Partner has no authority over the review status; the sequential rule
	// must still run and report its own error.
	app := testApp(StageIntake, StatusDocumentsUnderReview)

	out := p.Evaluate(app, ActorPartner, StatusDocumentsApproved, AuxData{}, testNow)
	if out.CanProceed {
		t.Fatal("unauthorized transition must not proceed")
	}
	if len(out.Errors) < 2 {
		t.Errorf("errors = %v, want both the authority and sequential errors", out.Errors)
	}
}

func TestPipelineWarningsDoNotBlock(t *testing.T) {
	p := NewPipeline(MustNewRegistry())
	app := testApp(StageIntake, StatusDocumentsApproved)
	app.University = ""

	out := p.Evaluate(app, ActorAdmin, StatusApprovedStage1, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("warnings must not block: %v", out.Errors)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a missing-university warning")
	}
}

func TestPipelineSLAWarning(t *testing.T) {
	p := NewPipeline(MustNewRegistry(), WithSLAIdleThreshold(72*time.Hour))
	app := testApp(StageUniversity, StatusSentToUniversity)
	app.Priority = PriorityHigh
	app.StageEnteredAt = testNow.Add(-100 * time.Hour)

	out := p.Evaluate(app, ActorUniversity, StatusUniversityUnderReview, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("sla breach is a warning, not a block: %v", out.Errors)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected an idle warning")
	}

	found := false
	for _, a := range out.Actions {
		if a.Name == "notify_sla_breach" {
			found = true
		}
	}
	if !found {
		t.Errorf("actions = %v, want notify_sla_breach", out.Actions)
	}

	// Under the threshold there is nothing to report.
	app.StageEnteredAt = testNow.Add(-10 * time.Hour)
	out = p.Evaluate(app, ActorUniversity, StatusUniversityUnderReview, AuxData{}, testNow)
	if len(out.Warnings) != 0 || len(out.Actions) != 0 {
		t.Errorf("idle under threshold still reported: warnings=%v actions=%v", out.Warnings, out.Actions)
	}
}

func TestPipelineDisabledRules(t *testing.T) {
	p := NewPipeline(MustNewRegistry(), WithDisabledRules(func(id string) bool {
		return id == "required_reason"
	}))
	app := testApp(StageIntake, StatusDocumentsUnderReview)

	out := p.Evaluate(app, ActorAdmin, StatusDocumentsRejected, AuxData{}, testNow)
	if !out.CanProceed {
		t.Fatalf("disabled reason rule still fired: %v", out.Errors)
	}
}
