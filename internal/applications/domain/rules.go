package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// authorityRule re-runs the registry authority check inside the pipeline.
// The service layer checks authority before evaluating rules, but the
// pipeline must stay correct when called directly.
type authorityRule struct {
	auth *AuthorityChecker
}

func (r *authorityRule) ID() string                 { return "authority" }
func (r *authorityRule) Type() RuleType             { return RuleTypePermission }
func (r *authorityRule) Priority() int              { return 200 }
func (r *authorityRule) AppliesTo(RuleContext) bool { return true }

func (r *authorityRule) Evaluate(ctx RuleContext) RuleResult {
	d := r.auth.ValidateTransition(ctx.App.Stage, ctx.App.Status, ctx.Target, ctx.Actor)
	if !d.Allowed {
		return Fail(d.Reason)
	}
	return OK()
}

// duplicateStatusRule blocks transitions whose target equals the current
// status. Re-entering a status is never meaningful here and historically
// this check has caught retry loops in upstream clients, so it stays a
// hard block rather than a warning.
type duplicateStatusRule struct{}

func (r *duplicateStatusRule) ID() string     { return "duplicate_status" }
func (r *duplicateStatusRule) Type() RuleType { return RuleTypeValidation }
func (r *duplicateStatusRule) Priority() int  { return 180 }

func (r *duplicateStatusRule) AppliesTo(ctx RuleContext) bool {
	return ctx.Target == ctx.App.Status
}

func (r *duplicateStatusRule) Evaluate(ctx RuleContext) RuleResult {
	return Fail(fmt.Sprintf("application is already in status %q", ctx.App.Status))
}

const minReasonLength = 10

// requiredReasonRule demands a substantive reason for rejections, disputes
// and any other status flagged RequiresReason.
type requiredReasonRule struct{}

func (r *requiredReasonRule) ID() string     { return "required_reason" }
func (r *requiredReasonRule) Type() RuleType { return RuleTypeValidation }
func (r *requiredReasonRule) Priority() int  { return 150 }

func (r *requiredReasonRule) AppliesTo(ctx RuleContext) bool {
	if ctx.TargetKnown && ctx.TargetDef.RequiresReason {
		return true
	}
	return strings.Contains(ctx.Target, "rejected") || strings.Contains(ctx.Target, "disputed")
}

func (r *requiredReasonRule) Evaluate(ctx RuleContext) RuleResult {
	if len(strings.TrimSpace(ctx.Aux.Reason)) < minReasonLength {
		return Fail(fmt.Sprintf("status %q requires a reason of at least %d characters", ctx.Target, minReasonLength))
	}
	return OK()
}

// requiredDocumentsRule checks that every document type the target status
// demands is already recorded on the application.
type requiredDocumentsRule struct{}

func (r *requiredDocumentsRule) ID() string     { return "required_documents" }
func (r *requiredDocumentsRule) Type() RuleType { return RuleTypeValidation }
func (r *requiredDocumentsRule) Priority() int  { return 150 }

func (r *requiredDocumentsRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown && len(ctx.TargetDef.RequiredDocuments) > 0
}

func (r *requiredDocumentsRule) Evaluate(ctx RuleContext) RuleResult {
	missing := ctx.App.MissingDocuments(ctx.TargetDef.RequiredDocuments)
	if len(missing) == 0 {
		return OK()
	}

	names := make([]string, len(missing))
	for i, t := range missing {
		names[i] = string(t)
	}
	return Fail(fmt.Sprintf("status %q requires documents: %s", ctx.Target, strings.Join(names, ", ")))
}

// requiredConfirmationRule guards statuses that demand an explicit operator
// confirmation flag, such as marking a commission paid.
type requiredConfirmationRule struct{}

func (r *requiredConfirmationRule) ID() string     { return "required_confirmation" }
func (r *requiredConfirmationRule) Type() RuleType { return RuleTypeValidation }
func (r *requiredConfirmationRule) Priority() int  { return 145 }

func (r *requiredConfirmationRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown && ctx.TargetDef.RequiresConfirmation
}

func (r *requiredConfirmationRule) Evaluate(ctx RuleContext) RuleResult {
	if !ctx.Aux.Confirmed {
		return Fail(fmt.Sprintf("status %q requires explicit confirmation", ctx.Target))
	}
	return OK()
}

// dateFormatRule validates the arrival date for statuses that fix one.
type dateFormatRule struct{}

func (r *dateFormatRule) ID() string     { return "date_format" }
func (r *dateFormatRule) Type() RuleType { return RuleTypeValidation }
func (r *dateFormatRule) Priority() int  { return 140 }

func (r *dateFormatRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown && ctx.TargetDef.RequiresDate
}

func (r *dateFormatRule) Evaluate(ctx RuleContext) RuleResult {
	date := ctx.Aux.ArrivalDate
	if date == "" {
		date = ctx.App.ArrivalDate
	}
	if date == "" {
		return Fail(fmt.Sprintf("status %q requires a date in YYYY-MM-DD format", ctx.Target))
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Fail(fmt.Sprintf("date %q is not in YYYY-MM-DD format", date))
	}
	return OK()
}

var allowedReceiptExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// receiptSchemaRule requires a plausibly-named payment receipt file for
// statuses that record a payment.
type receiptSchemaRule struct{}

func (r *receiptSchemaRule) ID() string     { return "receipt_schema" }
func (r *receiptSchemaRule) Type() RuleType { return RuleTypeValidation }
func (r *receiptSchemaRule) Priority() int  { return 140 }

func (r *receiptSchemaRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown && ctx.TargetDef.PaymentStatus
}

func (r *receiptSchemaRule) Evaluate(ctx RuleContext) RuleResult {
	name := strings.TrimSpace(ctx.Aux.ReceiptFileName)
	if name == "" {
		return Fail(fmt.Sprintf("status %q requires a payment receipt", ctx.Target))
	}

	dot := strings.LastIndex(name, ".")
	if dot < 1 || !allowedReceiptExtensions[strings.ToLower(name[dot:])] {
		return Fail(fmt.Sprintf("receipt %q must be a pdf, jpg, jpeg or png file", name))
	}
	return OK()
}

const minTrackingLength = 5

// trackingNumberRule validates the immigration tracking number where the
// target status requires one. The number may have been recorded on an
// earlier transition, so the application's stored value counts too.
type trackingNumberRule struct{}

func (r *trackingNumberRule) ID() string     { return "tracking_number" }
func (r *trackingNumberRule) Type() RuleType { return RuleTypeValidation }
func (r *trackingNumberRule) Priority() int  { return 135 }

func (r *trackingNumberRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown && ctx.TargetDef.RequiresTracking
}

func (r *trackingNumberRule) Evaluate(ctx RuleContext) RuleResult {
	tracking := strings.TrimSpace(ctx.Aux.TrackingNumber)
	if tracking == "" {
		tracking = strings.TrimSpace(ctx.App.TrackingNumber)
	}
	if len(tracking) < minTrackingLength {
		return Fail(fmt.Sprintf("status %q requires a tracking number of at least %d characters", ctx.Target, minTrackingLength))
	}
	return OK()
}

// filenameSanityRule rejects document names that would break storage keys
// or smell like path traversal.
type filenameSanityRule struct{}

func (r *filenameSanityRule) ID() string     { return "filename_sanity" }
func (r *filenameSanityRule) Type() RuleType { return RuleTypeValidation }
func (r *filenameSanityRule) Priority() int  { return 130 }

func (r *filenameSanityRule) AppliesTo(ctx RuleContext) bool {
	return len(ctx.Aux.DocumentNames) > 0
}

func (r *filenameSanityRule) Evaluate(ctx RuleContext) RuleResult {
	var result RuleResult
	for _, name := range ctx.Aux.DocumentNames {
		if err := checkFileName(name); err != "" {
			result.Errors = append(result.Errors, err)
		}
	}
	return result
}

func checkFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 {
		return fmt.Sprintf("document name %q is too short", name)
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return fmt.Sprintf("document name %q contains path characters", name)
	}
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			return fmt.Sprintf("document name %q contains control characters", name)
		}
	}
	return ""
}

// sequentialStatusRule enforces the registry's transition edges a second
// time for the early stages, where skipping review steps has the highest
// cost. Later stages rely on the authority rule alone.
type sequentialStatusRule struct{}

func (r *sequentialStatusRule) ID() string     { return "sequential_status" }
func (r *sequentialStatusRule) Type() RuleType { return RuleTypeValidation }
func (r *sequentialStatusRule) Priority() int  { return 120 }

func (r *sequentialStatusRule) AppliesTo(ctx RuleContext) bool {
	return ctx.App.Stage <= StageUniversity
}

func (r *sequentialStatusRule) Evaluate(ctx RuleContext) RuleResult {
	if !ctx.CurrentDef.AllowsTarget(ctx.Actor, ctx.Target) {
		return Fail(fmt.Sprintf("status %q does not follow %q in stage %d", ctx.Target, ctx.App.Status, ctx.App.Stage))
	}
	return OK()
}

// stageConsistencyRule raises warnings when the application record looks
// incomplete for where it is heading. Warnings never block.
type stageConsistencyRule struct{}

func (r *stageConsistencyRule) ID() string     { return "stage_consistency" }
func (r *stageConsistencyRule) Type() RuleType { return RuleTypeValidation }
func (r *stageConsistencyRule) Priority() int  { return 50 }

func (r *stageConsistencyRule) AppliesTo(ctx RuleContext) bool {
	return ctx.TargetKnown
}

func (r *stageConsistencyRule) Evaluate(ctx RuleContext) RuleResult {
	var result RuleResult

	if ctx.App.University == "" {
		switch ctx.Target {
		case StatusApprovedStage1, StatusUniversityApproved, StatusOfferLetterIssued:
			result.Warnings = append(result.Warnings, "no university recorded on the application")
		}
	}

	if ctx.TargetDef.PaymentStatus && ctx.App.TuitionCents == 0 {
		result.Warnings = append(result.Warnings, "tuition amount is not recorded")
	}

	if ctx.Target == StatusEnrollmentConfirmed && ctx.App.Program == "" {
		result.Warnings = append(result.Warnings, "no program recorded on the application")
	}

	if ctx.App.Stage == StageCommission && ctx.App.PartnerID == uuid.Nil {
		result.Warnings = append(result.Warnings, "no partner on record for commission payout")
	}

	return result
}

// slaWarningRule flags high-priority applications that have sat in one
// stage past the idle threshold.
type slaWarningRule struct {
	idleThreshold time.Duration
}

func (r *slaWarningRule) ID() string     { return "sla_warning" }
func (r *slaWarningRule) Type() RuleType { return RuleTypeNotification }
func (r *slaWarningRule) Priority() int  { return 40 }

func (r *slaWarningRule) AppliesTo(ctx RuleContext) bool {
	return ctx.App.Priority == PriorityHigh
}

func (r *slaWarningRule) Evaluate(ctx RuleContext) RuleResult {
	idle := ctx.App.IdleIn(ctx.Now)
	if idle <= r.idleThreshold {
		return OK()
	}

	result := Warn(fmt.Sprintf("high-priority application idle in stage %d for %s", ctx.App.Stage, idle.Round(time.Hour)))
	result.Actions = append(result.Actions, Action{
		Name: "notify_sla_breach",
		Params: map[string]string{
			"application_id": ctx.App.ID.String(),
			"stage":          fmt.Sprintf("%d", ctx.App.Stage),
			"idle":           idle.Round(time.Hour).String(),
		},
	})
	return result
}
