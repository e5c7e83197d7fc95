package domain

import "testing"

func TestValidateTransitionDenialCodes(t *testing.T) {
	auth := NewAuthorityChecker(MustNewRegistry())

	cases := []struct {
		name   string
		stage  Stage
		status string
		target string
		actor  Actor
		want   DenialCode
	}{
		{
			name:   "admin requests documents",
			stage:  StageIntake,
			status: StatusNewApplication,
			target: StatusDocumentsRequired,
			actor:  ActorAdmin,
			want:   DenialNone,
		},
		{
			name:   "unknown current status",
			stage:  StageIntake,
			status: "no_such_status",
			target: StatusDocumentsRequired,
			actor:  ActorAdmin,
			want:   DenialUnknownStatus,
		},
		{
			name:   "partner cannot review documents",
			stage:  StageIntake,
			status: StatusDocumentsUnderReview,
			target: StatusDocumentsApproved,
			actor:  ActorPartner,
			want:   DenialNoAuthority,
		},
		{
			name:   "admin cannot skip intake review",
			stage:  StageIntake,
			status: StatusNewApplication,
			target: StatusDocumentsApproved,
			actor:  ActorAdmin,
			want:   DenialTargetNotAllowed,
		},
		{
			name:   "university decides its own review",
			stage:  StageUniversity,
			status: StatusUniversityUnderReview,
			target: StatusUniversityApproved,
			actor:  ActorUniversity,
			want:   DenialNone,
		},
		{
			name:   "immigration owns visa processing",
			stage:  StageVisa,
			status: StatusSubmittedToImmigration,
			target: StatusVisaIssued,
			actor:  ActorImmigration,
			want:   DenialNone,
		},
		{
			name:   "admin cannot act for immigration",
			stage:  StageVisa,
			status: StatusSubmittedToImmigration,
			target: StatusVisaIssued,
			actor:  ActorAdmin,
			want:   DenialNoAuthority,
		},
		{
			name:   "no one leaves a terminal status",
			stage:  StageIntake,
			status: StatusRejectedStage1,
			target: StatusNewApplication,
			actor:  ActorAdmin,
			want:   DenialNoAuthority,
		},
	}

	for _, tc := range cases {
		d := auth.ValidateTransition(tc.stage, tc.status, tc.target, tc.actor)
		if d.Code != tc.want {
			t.Errorf("%s: code = %q, want %q (reason: %s)", tc.name, d.Code, tc.want, d.Reason)
		}
		if (tc.want == DenialNone) != d.Allowed {
			t.Errorf("%s: allowed = %v, want %v", tc.name, d.Allowed, tc.want == DenialNone)
		}
		if !d.Allowed && d.Reason == "" {
			t.Errorf("%s: denial carries no reason", tc.name)
		}
	}
}

func TestAvailableTargets(t *testing.T) {
	auth := NewAuthorityChecker(MustNewRegistry())

	targets := auth.AvailableTargets(StageIntake, StatusNewApplication, ActorAdmin)
	if len(targets) != 2 {
		t.Fatalf("admin targets from new_application = %v, want 2 entries", targets)
	}

	if got := auth.AvailableTargets(StageIntake, StatusRejectedStage1, ActorAdmin); len(got) != 0 {
		t.Errorf("terminal status yielded targets %v", got)
	}
	if got := auth.AvailableTargets(StageIntake, "no_such_status", ActorAdmin); got != nil {
		t.Errorf("unknown status yielded targets %v", got)
	}
	if got := auth.AvailableTargets(StageIntake, StatusNewApplication, ActorImmigration); len(got) != 0 {
		t.Errorf("immigration has no business in intake, got %v", got)
	}
}

func TestCanActorTransition(t *testing.T) {
	auth := NewAuthorityChecker(MustNewRegistry())

	if !auth.CanActorTransition(StageIntake, StatusDocumentsRequired, ActorPartner) {
		t.Error("partner should be able to move documents_required")
	}
	if auth.CanActorTransition(StageIntake, StatusDocumentsRequired, ActorUniversity) {
		t.Error("university should not be able to move documents_required")
	}
	if auth.CanActorTransition(StageIntake, "no_such_status", ActorAdmin) {
		t.Error("unknown status should never be movable")
	}
}
